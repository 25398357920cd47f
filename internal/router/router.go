package router

import (
	"log/slog"
	"net/http"

	"github.com/rs/cors"

	"github.com/inaiurai/leaderboard/internal/middleware"
	"github.com/inaiurai/leaderboard/internal/web"
)

// New returns the application handler: HTML pages at the root, the JSON API
// under /api/v1 with CORS, and a health check. Every request gets a request
// ID, a trace span and an access log line.
func New(h *web.Handler, allowedOrigins []string, log *slog.Logger) http.Handler {
	api := http.NewServeMux()
	base := "/api/v1"
	api.HandleFunc("GET "+base+"/leaderboard", h.LeaderboardJSON)
	api.HandleFunc("GET "+base+"/agents", h.ListAgentsJSON)
	api.HandleFunc("GET "+base+"/agents/{id}", h.GetAgentJSON)
	api.HandleFunc("GET "+base+"/stats", h.StatsJSON)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}).Handler(api)

	mux := http.NewServeMux()
	mux.Handle(base+"/", corsHandler)
	mux.HandleFunc("GET /{$}", h.Leaderboard)
	mux.HandleFunc("GET /agents/{id}", h.Agent)
	mux.HandleFunc("GET /healthz", h.Health)

	return middleware.RequestID(middleware.Tracing(middleware.AccessLog(log)(mux)))
}
