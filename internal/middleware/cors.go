package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

const corsMaxAge = 300

// CORS returns router middleware that lets browser clients on origins call
// the API. origins is a comma separated list; "*" allows any origin.
func CORS(origins string) func(http.Handler) http.Handler {
	allowed := make([]string, 0)

	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowed = append(allowed, origin)
		}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{"Location", RequestIDHeader},
		MaxAge:         corsMaxAge,
	})
}
