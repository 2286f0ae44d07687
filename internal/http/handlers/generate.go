package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"server/internal/domain"
	"server/internal/generation"
	"server/internal/middleware"
)

type generateRequest struct {
	PDFName string `json:"pdf_name"`
}

// GenerateQuestions runs the full test-question workflow for one
// document: quota check, chunk selection, model call, recording.
func (a *App) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", msg(r.Context(), "Ungültige Anfrage.", "Invalid payload."))
		return
	}
	req.PDFName = strings.TrimSpace(req.PDFName)
	if req.PDFName == "" {
		a.error(w, http.StatusBadRequest, "bad_request", msg(r.Context(), "pdf_name ist erforderlich.", "pdf_name is required."))
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	res, err := a.Workflow.Run(r.Context(), userID, req.PDFName)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRateLimited):
			a.rateLimited(w, r, res)
		case errors.Is(err, domain.ErrNoChunks):
			a.error(w, http.StatusNotFound, "no_chunks",
				msg(r.Context(),
					"Für dieses Dokument sind keine Inhalte verfügbar. Es wurde möglicherweise noch nicht verarbeitet.",
					"No content is available for this document. It may not have been processed yet."))
		case errors.Is(err, domain.ErrInvalidResponse):
			a.error(w, http.StatusBadGateway, "invalid_model_response",
				msg(r.Context(), "Die AI-Antwort konnte nicht verarbeitet werden. Bitte versuche es erneut.", "The AI response could not be processed. Please try again."))
		case errors.Is(err, domain.ErrNoValidQuestions):
			a.error(w, http.StatusBadGateway, "no_valid_questions",
				msg(r.Context(), "Keine gültigen Testfragen wurden generiert.", "No valid test questions were generated."))
		default:
			a.Logger.Error().Err(err).Str("pdf", req.PDFName).Msg("question generation failed")
			a.error(w, http.StatusInternalServerError, "internal",
				msg(r.Context(), "Testfragen konnten nicht erstellt werden. Bitte versuche es erneut.", "Could not generate test questions. Please try again."))
		}
		return
	}

	a.json(w, http.StatusOK, res)
}

// RateLimitStatus reports the caller's derived quota state together with
// a human-readable reset hint.
func (a *App) RateLimitStatus(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	status := a.Limiter.Check(r.Context(), userID)

	body := map[string]any{"rate_limit": status}
	if status.ResetTime != nil {
		body["resets_in"] = generation.FormatUntilReset(*status.ResetTime, time.Now())
	}
	a.json(w, http.StatusOK, body)
}

// GenerationHistory lists the caller's in-window generations.
func (a *App) GenerationHistory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	records := a.Limiter.History(r.Context(), userID)
	if records == nil {
		records = []domain.GenerationRecord{}
	}
	a.json(w, http.StatusOK, map[string]any{
		"generations": records,
		"count":       len(records),
	})
}

func (a *App) rateLimited(w http.ResponseWriter, r *http.Request, res *generation.Result) {
	message := msg(r.Context(),
		"Du hast dein Limit von %d Testfragen-Generierungen pro Stunde erreicht.",
		"You have reached your limit of %d question generations per hour.")
	message = fmt.Sprintf(message, res.RateLimit.Limit)

	if res.RateLimit.ResetTime != nil {
		now := time.Now()
		until := generation.FormatUntilReset(*res.RateLimit.ResetTime, now)
		message = fmt.Sprintf("%s %s", message,
			fmt.Sprintf(msg(r.Context(), "Nächste Generierung möglich in: %s.", "Next generation possible in: %s."), until))

		if secs := int(res.RateLimit.ResetTime.Sub(now).Seconds()); secs > 0 {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", secs))
		}
	}

	a.json(w, http.StatusTooManyRequests, map[string]any{
		"error":      errorBody{Code: "rate_limited", Message: message},
		"rate_limit": res.RateLimit,
	})
}
