package handlers

import (
	"net/http"

	"server/internal/auth"
	"server/internal/guard"
	"server/internal/middleware"
)

// Protect resolves the caller's auth state and applies the route access
// policy before the handler runs. The policy verdicts map to HTTP as:
// loading -> 503 with Retry-After, no user -> 401 with a login redirect
// hint, pending approval and missing role -> 403 with distinct codes.
func (a *App) Protect(req guard.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := middleware.SessionFromContext(r.Context())
			st := auth.ResolveState(a.Auth, sess)

			switch guard.Decide(st, req) {
			case guard.ShowLoading:
				w.Header().Set("Retry-After", "1")
				a.error(w, http.StatusServiceUnavailable, "state_pending",
					msg(r.Context(), "Anmeldestatus wird geprüft. Bitte erneut versuchen.", "Auth state is still settling. Please retry."))
			case guard.RedirectToLogin:
				a.json(w, http.StatusUnauthorized, map[string]any{
					"error":    errorBody{Code: "unauthorized", Message: msg(r.Context(), "Bitte melde dich an.", "Please sign in.")},
					"redirect": "/login",
				})
			case guard.ShowPendingApproval:
				a.error(w, http.StatusForbidden, "approval_pending",
					msg(r.Context(),
						"Dein Konto wurde noch nicht freigegeben. Bitte warte auf die Freigabe durch einen Administrator.",
						"Your account has not been approved yet. Please wait for an administrator."))
			case guard.ShowForbidden:
				a.error(w, http.StatusForbidden, "forbidden",
					msg(r.Context(), "Du hast keine Berechtigung für diesen Bereich.", "You are not allowed to access this area."))
			case guard.RenderChildren:
				next.ServeHTTP(w, r)
			}
		})
	}
}
