package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// NewCORS allows credentialed requests from the configured frontend origins.
func NewCORS(allowedOrigins []string, debug bool) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", csrfHeaderName},
		ExposedHeaders:   []string{csrfHeaderName, requestIDHeader},
		AllowCredentials: true,
		MaxAge:           86400,
		Debug:            debug,
	})
}
