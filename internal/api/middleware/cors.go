package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS admits browser clients from any origin. Session and request ids
// travel in headers, so both are allowed in and exposed back.
func CORS() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Session-ID", "X-Request-ID"},
		ExposedHeaders: []string{"X-Session-ID", "X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	})
}
