package middleware

import (
	"context"
	"net/http"
	"strings"

	"server/internal/domain"
)

type sessionKey string

const sessionCtxKey sessionKey = "session"

// TokenVerifier resolves a bearer token to its session.
type TokenVerifier interface {
	VerifyToken(token string) (*domain.Session, error)
}

// Authenticate parses an optional bearer token and stores the resolved
// session in the request context. It never rejects: routes decide for
// themselves whether an anonymous request may pass, so a missing or bad
// token simply yields no session.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			sess, err := verifier.VerifyToken(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), sess)))
		})
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func ContextWithSession(ctx context.Context, sess *domain.Session) context.Context {
	if sess == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionCtxKey, sess)
}

// SessionFromContext returns the authenticated session, or nil for an
// anonymous request.
func SessionFromContext(ctx context.Context) *domain.Session {
	if v, ok := ctx.Value(sessionCtxKey).(*domain.Session); ok {
		return v
	}
	return nil
}

// UserIDFromContext is a convenience over SessionFromContext.
func UserIDFromContext(ctx context.Context) string {
	if sess := SessionFromContext(ctx); sess != nil {
		return sess.UserID
	}
	return ""
}
