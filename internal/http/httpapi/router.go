package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"server/internal/guard"
	"server/internal/http/handlers"
	"server/internal/infra"
	mw "server/internal/middleware"
)

// NewRouter wires the HTTP surface. Content and generation routes sit
// behind the approval gate; the admin panel requires the admin role. The
// auth endpoints carry an extra per-IP throttle against brute force.
func NewRouter(app *handlers.App, cfg *infra.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(
		mw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		mw.Logger(app.Logger),
		mw.CORS(cfg.CORSOrigins),
		mw.Locale("de"),
		mw.Authenticate(app.Auth),
	)

	r.Get("/v1/healthz", app.Health)

	// catalog URLs are /files/<path> when the filesystem store is active
	if app.Files != nil {
		r.Handle("/files/*", app.Files)
	}

	r.Route("/v1/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(mw.Throttle(cfg.RateLimitPerMin, time.Minute))
			r.Post("/register", app.Register)
			r.Post("/login", app.Login)
		})
		r.Post("/logout", app.Logout)
		r.Get("/me", app.Me)
		r.Post("/profile/refresh", app.RefreshProfile)
	})

	r.Group(func(r chi.Router) {
		r.Use(app.Protect(guard.RequireApproved))
		r.Get("/v1/pdfs", app.ListPDFs)
		r.Post("/v1/tests/generate", app.GenerateQuestions)
		r.Get("/v1/tests/rate-limit", app.RateLimitStatus)
		r.Get("/v1/tests/history", app.GenerationHistory)
	})

	r.Route("/v1/admin", func(r chi.Router) {
		r.Use(app.Protect(guard.RequireAdmin))
		r.Get("/users", app.AdminListUsers)
		r.Put("/users/{id}/approval", app.AdminSetApproval)
		r.Delete("/users/{id}", app.AdminDeleteUser)
	})

	return r
}
