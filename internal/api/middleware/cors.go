package middleware

import (
	"net/http"
	"slices"
)

const (
	corsMethods = "GET, POST, OPTIONS"
	corsHeaders = "Accept, Content-Type, Range"
	// Players reading audio_url cross-origin need these to seek.
	corsExpose = "Accept-Ranges, Content-Length, Content-Range"
)

// CORS tags responses for the configured origins ("*" allows any) and
// short-circuits preflight requests with 204.
func CORS(origins []string) func(http.Handler) http.Handler {
	wildcard := slices.Contains(origins, "*")

	allowed := func(origin string) string {
		if origin == "" {
			return ""
		}
		if wildcard {
			return "*"
		}
		if slices.Contains(origins, origin) {
			return origin
		}
		return ""
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if v := allowed(r.Header.Get("Origin")); v != "" {
				h.Set("Access-Control-Allow-Origin", v)
				h.Set("Access-Control-Expose-Headers", corsExpose)
				if v != "*" {
					h.Add("Vary", "Origin")
				}
			}

			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
			if !preflight {
				next.ServeHTTP(w, r)
				return
			}
			h.Set("Access-Control-Allow-Methods", corsMethods)
			h.Set("Access-Control-Allow-Headers", corsHeaders)
			h.Set("Access-Control-Max-Age", "3600")
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
