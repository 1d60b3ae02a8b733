package server

import (
	"log/slog"
	"net/http"
)

// Config contains server configuration options.
type Config struct {
	// AllowedOrigins is the list of allowed CORS origins.
	AllowedOrigins []string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		AllowedOrigins: []string{"*"},
	}
}

// NewRouter creates a new HTTP router with all routes configured.
// It uses Go 1.22+ ServeMux with method-based routing.
func NewRouter(h *Handlers, logger *slog.Logger, cfg Config) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)

	mux.HandleFunc("POST /generations", h.CreateGeneration)
	mux.HandleFunc("GET /generation", h.GetGeneration)

	mux.HandleFunc("GET /videos", h.ListVideos)
	mux.HandleFunc("GET /videos/{id}", h.GetVideo)
	mux.HandleFunc("POST /videos/{id}/select", h.SelectVideo)
	mux.HandleFunc("GET /videos/{id}/content", h.GetVideoContent)
	mux.HandleFunc("GET /videos/{id}/poster", h.GetVideoPoster)

	mux.HandleFunc("GET /credential", h.GetCredential)
	mux.HandleFunc("PUT /credential", h.PutCredential)
	mux.HandleFunc("POST /credential/prompt", h.PromptCredential)

	chain := ChainMiddleware(
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
		CORSMiddleware(cfg.AllowedOrigins),
	)

	return chain(mux)
}
