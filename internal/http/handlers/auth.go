package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"server/internal/auth"
	"server/internal/domain"
	"server/internal/middleware"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *profileDTO `json:"user,omitempty"`
}

// Register creates an account. The new profile starts unapproved; the
// caller can sign in immediately but the approval gate keeps content
// closed until an admin flips the bit.
func (a *App) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", msg(r.Context(), "Ungültige Anfrage.", "Invalid payload."))
		return
	}

	sess, err := a.Auth.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			a.error(w, http.StatusConflict, "email_taken",
				msg(r.Context(), "Diese E-Mail-Adresse ist bereits registriert.", "This email address is already registered."))
		case errors.Is(err, domain.ErrInvalidCredentials):
			a.error(w, http.StatusBadRequest, "invalid_input",
				msg(r.Context(), "Passwort muss mindestens 6 Zeichen lang sein.", "Password must be at least 6 characters."))
		default:
			a.Logger.Error().Err(err).Msg("registration failed")
			a.error(w, http.StatusInternalServerError, "internal",
				msg(r.Context(), "Registrierung fehlgeschlagen. Bitte versuche es erneut.", "Registration failed. Please try again."))
		}
		return
	}

	a.sessionResponse(w, r, sess, http.StatusCreated)
}

// Login authenticates by email and password.
func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", msg(r.Context(), "Ungültige Anfrage.", "Invalid payload."))
		return
	}

	sess, err := a.Auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			a.error(w, http.StatusUnauthorized, "invalid_credentials",
				msg(r.Context(), "Ungültige E-Mail oder Passwort. Bitte überprüfe deine Eingaben.", "Invalid email or password."))
		default:
			a.Logger.Error().Err(err).Msg("login failed")
			a.error(w, http.StatusInternalServerError, "internal",
				msg(r.Context(), "Login fehlgeschlagen. Bitte versuche es erneut.", "Login failed. Please try again."))
		}
		return
	}

	a.sessionResponse(w, r, sess, http.StatusOK)
}

// Logout ends the presented session. Tokens are stateless, so the
// response confirms the client should drop its copy.
func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		a.error(w, http.StatusUnauthorized, "unauthorized", msg(r.Context(), "Nicht angemeldet.", "Not signed in."))
		return
	}
	if err := a.Auth.SignOut(r.Context(), sess.Token); err != nil {
		a.Logger.Error().Err(err).Msg("logout failed")
		a.error(w, http.StatusInternalServerError, "internal",
			msg(r.Context(), "Abmeldung fehlgeschlagen.", "Sign-out failed."))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me resolves the caller's auth state: identity plus profile, with the
// profile fetch bounded so a slow profile store cannot hang the request.
func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		a.error(w, http.StatusUnauthorized, "unauthorized", msg(r.Context(), "Nicht angemeldet.", "Not signed in."))
		return
	}

	st := auth.ResolveState(a.Auth, sess)
	a.json(w, http.StatusOK, map[string]any{
		"phase": st.Phase,
		"user": map[string]string{
			"id":    sess.UserID,
			"email": sess.Email,
		},
		"profile":     newProfileDTO(st.Profile),
		"is_admin":    st.IsAdmin(),
		"is_approved": st.IsApproved(),
	})
}

// RefreshProfile re-fetches the caller's profile row, e.g. after an
// admin approved the account.
func (a *App) RefreshProfile(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		a.error(w, http.StatusUnauthorized, "unauthorized", msg(r.Context(), "Nicht angemeldet.", "Not signed in."))
		return
	}

	profile, err := a.Auth.ProfileByID(r.Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", msg(r.Context(), "Profil nicht gefunden.", "Profile not found."))
			return
		}
		a.Logger.Error().Err(err).Msg("profile refresh failed")
		a.error(w, http.StatusInternalServerError, "internal",
			msg(r.Context(), "Profil konnte nicht geladen werden.", "Could not load profile."))
		return
	}
	a.json(w, http.StatusOK, map[string]any{"profile": newProfileDTO(profile)})
}

func (a *App) sessionResponse(w http.ResponseWriter, r *http.Request, sess *domain.Session, code int) {
	profile, err := a.Auth.ProfileByID(r.Context(), sess.UserID)
	if err != nil {
		// The session is valid either way; the profile is best-effort here.
		a.Logger.Warn().Err(err).Str("user_id", sess.UserID).Msg("profile fetch after auth failed")
		profile = nil
	}
	a.json(w, code, sessionResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User:      newProfileDTO(profile),
	})
}
