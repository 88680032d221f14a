package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Health check (no auth required, used by load balancers)
	r.Get("/health", s.handleHealth)

	// WebSocket sits outside the keyed group because browser WebSocket
	// clients cannot set headers; the handler accepts the API key from
	// either the X-API-Key header or the `key` query parameter.
	r.Get("/api/ws", s.handleWebSocket)

	// Every /api route requires the shared API key
	r.Route("/api", func(r chi.Router) {
		r.Use(s.apiKeyMiddleware)

		// Telemetry
		r.Post("/data", s.handleIngestData)
		r.Route("/data/{deviceID}", func(r chi.Router) {
			r.Get("/latest", s.handleLatestData)
			r.Get("/history", s.handleDataHistory)
		})

		// Command queue
		r.Route("/commands", func(r chi.Router) {
			r.Post("/", s.handleCreateCommand)
			r.Get("/", s.handleListCommands)
			r.Post("/confirm", s.handleConfirmCommand)
		})

		// House registry
		r.Route("/maisons", func(r chi.Router) {
			r.Post("/", s.handleCreateHouse)
			r.Get("/", s.handleListHouses)
			r.Get("/{deviceID}", s.handleGetHouse)
		})

		// Users
		r.Post("/login", s.handleLogin)
		r.Get("/users", s.handleListUsers)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   s.version,
	})
}
