package api

import (
	"net/http"

	"github.com/rs/cors"
)

// WrapCorsIfEnabled - lets browsers on the given origins call the API. No origins, no CORS
func WrapCorsIfEnabled(chain http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		return chain
	}

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodHead, http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", "Request-Timeout"},
	})
	log.Debug("CORS enabled", "origins", origins)

	return c.Handler(chain)
}
