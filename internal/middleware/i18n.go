package middleware

import (
	"context"
	"net/http"

	"golang.org/x/text/language"
)

type localeContextKey struct{}

var LocaleKey = localeContextKey{}

// supported locales, German first: the product copy is German and error
// messages fall back to it.
var localeMatcher = language.NewMatcher([]language.Tag{
	language.German,
	language.English,
})

// Locale negotiates the response language from the Accept-Language
// header and stores the base tag ("de" or "en") in the request context.
func Locale(defaultLocale string) func(http.Handler) http.Handler {
	if defaultLocale == "" {
		defaultLocale = "de"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := defaultLocale
			if accept := r.Header.Get("Accept-Language"); accept != "" {
				tag, _ := language.MatchStrings(localeMatcher, accept)
				base, _ := tag.Base()
				locale = base.String()
			}
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok {
		return v
	}
	return "de"
}
