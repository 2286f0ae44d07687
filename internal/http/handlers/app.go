// Package handlers holds the HTTP surface. Handlers translate between
// the JSON API and the services; user-facing messages are German with an
// English fallback negotiated from Accept-Language.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"server/internal/auth"
	"server/internal/catalog"
	"server/internal/domain"
	"server/internal/generation"
	"server/internal/middleware"
)

type App struct {
	Auth     *auth.Service
	Catalog  *catalog.Service
	Workflow *generation.Workflow
	Limiter  *generation.RateLimiter
	Profiles domain.ProfileRepository
	Logger   zerolog.Logger

	// Files serves the PDF objects themselves when the catalog's public
	// URLs point back at this process (filesystem store). Nil when an
	// external endpoint serves the bucket.
	Files http.Handler
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]errorBody{"error": {Code: errCode, Message: message}})
}

// msg picks the localized variant for the negotiated request locale.
func msg(ctx context.Context, de, en string) string {
	if middleware.LocaleFromContext(ctx) == "en" {
		return en
	}
	return de
}

type profileDTO struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsApproved bool   `json:"is_approved"`
	CreatedAt  string `json:"created_at"`
}

func newProfileDTO(p *domain.UserProfile) *profileDTO {
	if p == nil {
		return nil
	}
	return &profileDTO{
		ID:         p.ID,
		Email:      p.Email,
		Role:       string(p.Role),
		IsApproved: p.IsApproved,
		CreatedAt:  p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}
