package server

import (
	"net/http"

	"github.com/go-chi/cors"
)

// publicCORS opens the read-only feed to any origin and answers preflight
// requests with 204.
func publicCORS() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})
}
