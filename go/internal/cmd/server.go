package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const apiVersion = "1.0"

func setupServer(cfg *Config, services *Services) *http.Server {
	return &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: setupHandler(cfg, services),
	}
}

func setupHandler(cfg *Config, services *Services) http.Handler {
	mux := http.NewServeMux()

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{requestIDHeader},
	})

	// Register services
	registerServices(mux, services)

	// Add info, health and metrics endpoints
	setupInfo(mux)
	setupHealthCheck(mux, services)

	// Wrap with request logging and CORS
	handler := c.Handler(requestLogger(mux))

	// Setup HTTP/2 cleartext
	return h2c.NewHandler(handler, &http2.Server{})
}

func registerServices(mux *http.ServeMux, services *Services) {
	// The draft routes are served both at the root and under /api/v1.
	api := http.NewServeMux()
	services.DraftPicks.RegisterRoutes(api)
	api.HandleFunc("GET /{$}", handleV1Index)

	mux.Handle("/drafts", api)
	mux.Handle("/drafts/", api)
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", api))
}

func setupInfo(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		writeInfo(w, map[string]any{
			"message":         "Draft API",
			"versions":        map[string]string{"v1": "/api/v1/"},
			"current_version": apiVersion,
		})
	})
}

// handleV1Index serves GET /api/v1/. It is only reachable under the prefix.
func handleV1Index(w http.ResponseWriter, r *http.Request) {
	writeInfo(w, map[string]any{
		"message": "Draft API v1",
		"version": apiVersion,
		"endpoints": map[string]string{
			"drafts": "/api/v1/drafts",
			"drift":  "/api/v1/drafts/drift",
		},
	})
}

func writeInfo(w http.ResponseWriter, info map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(info); err != nil {
		log.Error().Err(err).Msg("failed to write info response")
	}
}

func setupHealthCheck(mux *http.ServeMux, services *Services) {
	mux.Handle("GET /health", services.Health)
	mux.Handle("GET /metrics", NewPrometheusExporter(services.Health, services.Metrics))
}
