package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
	"server/internal/middleware"
)

// AdminListUsers returns profiles newest first. The optional filter
// narrows to pending or approved accounts; admins never count as
// pending since they bypass approval entirely.
func (a *App) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := a.Profiles.List(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("user listing failed")
		a.error(w, http.StatusInternalServerError, "internal",
			msg(r.Context(), "Benutzer konnten nicht geladen werden.", "Could not load users."))
		return
	}

	filter := r.URL.Query().Get("filter")
	users := make([]*profileDTO, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		switch filter {
		case "pending":
			if p.IsApproved || p.IsAdmin() {
				continue
			}
		case "approved":
			if !p.IsApproved {
				continue
			}
		}
		users = append(users, newProfileDTO(p))
	}
	a.json(w, http.StatusOK, map[string]any{
		"users":  users,
		"count":  len(users),
		"filter": filter,
	})
}

type approvalRequest struct {
	Approved bool `json:"approved"`
}

// AdminSetApproval grants or revokes a user's approval.
func (a *App) AdminSetApproval(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", msg(r.Context(), "Ungültige Anfrage.", "Invalid payload."))
		return
	}

	if err := a.Profiles.SetApproval(r.Context(), id, req.Approved); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", msg(r.Context(), "Benutzer nicht gefunden.", "User not found."))
			return
		}
		a.Logger.Error().Err(err).Str("user_id", id).Msg("approval update failed")
		a.error(w, http.StatusInternalServerError, "internal",
			msg(r.Context(), "Freigabe konnte nicht aktualisiert werden.", "Could not update approval."))
		return
	}

	a.Logger.Info().Str("user_id", id).Bool("approved", req.Approved).Msg("approval updated")
	profile, err := a.Profiles.GetByID(r.Context(), id)
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"user": newProfileDTO(profile)})
}

// AdminDeleteUser removes an account. Admins cannot delete themselves;
// losing the last admin would lock the panel.
func (a *App) AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == middleware.UserIDFromContext(r.Context()) {
		a.error(w, http.StatusBadRequest, "self_delete",
			msg(r.Context(), "Du kannst dein eigenes Konto nicht löschen.", "You cannot delete your own account."))
		return
	}

	if err := a.Profiles.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", msg(r.Context(), "Benutzer nicht gefunden.", "User not found."))
			return
		}
		a.Logger.Error().Err(err).Str("user_id", id).Msg("user deletion failed")
		a.error(w, http.StatusInternalServerError, "internal",
			msg(r.Context(), "Benutzer konnte nicht gelöscht werden.", "Could not delete user."))
		return
	}

	a.Logger.Info().Str("user_id", id).Msg("user deleted")
	w.WriteHeader(http.StatusNoContent)
}
