package middleware

import (
	"net/http"
	"strings"
)

// The API surface is GET and POST only, so preflight answers advertise
// exactly that.
const (
	corsMethods = "GET,POST,OPTIONS"
	corsHeaders = "Content-Type, Authorization"
)

// corsPolicy is resolved once from configuration at construction time.
type corsPolicy struct {
	allowAll bool
	origins  map[string]struct{}
}

// CORS lets the configured browser origins call the API and answers OPTIONS
// preflights directly. A "*" entry allows every origin, without credentials.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	policy := corsPolicy{origins: make(map[string]struct{}, len(allowedOrigins))}
	for _, origin := range allowedOrigins {
		if origin == "*" {
			policy.allowAll = true
			continue
		}
		policy.origins[strings.ToLower(origin)] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			policy.apply(w, origin)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (p corsPolicy) apply(w http.ResponseWriter, origin string) {
	h := w.Header()
	if p.allowAll {
		h.Set("Access-Control-Allow-Origin", "*")
	} else {
		if _, ok := p.origins[strings.ToLower(origin)]; !ok {
			return
		}
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Vary", "Origin")
		h.Set("Access-Control-Allow-Credentials", "true")
	}
	h.Set("Access-Control-Allow-Methods", corsMethods)
	h.Set("Access-Control-Allow-Headers", corsHeaders)
}
