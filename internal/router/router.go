package router

import (
	"net/http"

	"stayfinder-api/internal/handlers"
)

// Setup configures and returns the HTTP router with all application routes.
func Setup(h *handlers.Handler) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", h.HandleHealth)

	// Image search endpoints
	mux.HandleFunc("GET /api/images", h.HandleImages)
	mux.HandleFunc("GET /api/image/{id}", h.HandleImageRefresh)

	return mux
}
