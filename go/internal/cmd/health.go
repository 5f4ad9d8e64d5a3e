package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type HealthStatus struct {
	Healthy           bool
	DatabaseConnected bool
	NATSConnected     bool
	Errors            []string
}

type pinger interface {
	Ping(ctx context.Context) error
}

type connection interface {
	IsConnected() bool
}

type HealthChecker struct {
	db   pinger
	nats connection // nil when the mirrors are not backed by NATS
}

func NewHealthChecker(db pinger) *HealthChecker {
	return &HealthChecker{db: db}
}

// WithNATS adds the NATS connection to the checks.
func (h *HealthChecker) WithNATS(conn connection) *HealthChecker {
	h.nats = conn
	return h
}

func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Healthy: true,
		Errors:  []string{},
	}

	if err := h.db.Ping(ctx); err != nil {
		status.Healthy = false
		status.Errors = append(status.Errors, fmt.Sprintf("database ping failed: %v", err))
	} else {
		status.DatabaseConnected = true
	}

	if h.nats != nil {
		status.NATSConnected = h.nats.IsConnected()
		if !status.NATSConnected {
			status.Healthy = false
			status.Errors = append(status.Errors, "NATS disconnected")
		}
	}

	return status
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)

	response := map[string]interface{}{
		"healthy":            status.Healthy,
		"database_connected": status.DatabaseConnected,
		"nats_connected":     status.NATSConnected,
		"errors":             status.Errors,
	}

	w.Header().Set("Content-Type", "application/json")

	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().Err(err).Msg("failed to write health response")
	}
}

// stageExporter is satisfied by draftpick.StageMetrics.
type stageExporter interface {
	Export() string
}

// PrometheusExporter renders health gauges followed by pipeline stage counters.
type PrometheusExporter struct {
	checker *HealthChecker
	stages  stageExporter
}

func NewPrometheusExporter(checker *HealthChecker, stages stageExporter) *PrometheusExporter {
	return &PrometheusExporter{checker: checker, stages: stages}
}

func (e *PrometheusExporter) Export(ctx context.Context) string {
	status := e.checker.Check(ctx)

	var b strings.Builder
	fmt.Fprintf(&b, `# HELP draftmirror_healthy Whether the service is healthy
# TYPE draftmirror_healthy gauge
draftmirror_healthy %d

# HELP draftmirror_database_connected Whether the authority database is reachable
# TYPE draftmirror_database_connected gauge
draftmirror_database_connected %d

# HELP draftmirror_nats_connected Whether NATS is connected
# TYPE draftmirror_nats_connected gauge
draftmirror_nats_connected %d

`,
		gauge(status.Healthy),
		gauge(status.DatabaseConnected),
		gauge(status.NATSConnected),
	)
	b.WriteString(e.stages.Export())
	return b.String()
}

func (e *PrometheusExporter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	if _, err := w.Write([]byte(e.Export(ctx))); err != nil {
		log.Error().Err(err).Msg("failed to write metrics response")
	}
}

func gauge(b bool) int {
	if b {
		return 1
	}
	return 0
}
