package middleware

import (
	"net/http"

	ghandlers "github.com/gorilla/handlers"
)

// CORS allows cross-origin GETs from the given origins. With no origins the
// handler is returned unchanged. Only preflights from an allowed origin are
// answered here; any other OPTIONS request reaches next, so the router's 405
// still applies.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	cors := ghandlers.CORS(
		ghandlers.AllowedOrigins(origins),
		ghandlers.AllowedMethods([]string{http.MethodGet, http.MethodHead, http.MethodOptions}),
		ghandlers.AllowedHeaders([]string{"Content-Type", RequestIDHeader}),
	)

	return func(next http.Handler) http.Handler {
		withCORS := cors(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions && !isPreflight(r, origins) {
				next.ServeHTTP(w, r)
				return
			}
			withCORS.ServeHTTP(w, r)
		})
	}
}

func isPreflight(r *http.Request, origins []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || r.Header.Get("Access-Control-Request-Method") == "" {
		return false
	}
	for _, o := range origins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}
