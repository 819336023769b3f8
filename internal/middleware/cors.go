package middleware

import (
	"net/http"
	"strings"
)

var (
	corsAllowMethods  = strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodOptions}, ",")
	corsAllowHeaders  = strings.Join([]string{"Content-Type", requestIDHeader}, ", ")
	corsExposeHeaders = strings.Join([]string{"Content-Disposition", requestIDHeader, "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"}, ", ")
)

const corsMaxAge = "600"

// CORS lets the front-end origins call the API with credentials. Requests
// from other origins get no CORS headers, which the browser treats as a
// refusal. Preflights are answered here and never reach the router.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			origin := r.Header.Get("Origin")
			if origin != "" {
				h.Add("Vary", "Origin")
			}
			preflight := r.Method == http.MethodOptions

			if origins[origin] {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				if preflight {
					h.Set("Access-Control-Allow-Methods", corsAllowMethods)
					h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
					h.Set("Access-Control-Max-Age", corsMaxAge)
				} else {
					h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
				}
			}
			if preflight {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
