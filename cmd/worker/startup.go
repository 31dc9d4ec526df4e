// cmd/worker/startup.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"catalog-importer/internal/infrastructure/queue"
	"catalog-importer/pkg/container"
)

// startServices performs health checks, then starts the worker, the
// scheduler and the health endpoint.
func startServices(ctx context.Context, c *container.Container, srv *asynqServer, scheduler *queue.Scheduler) error {
	log.Info().Str("addr", c.Config.Redis.Host).Msg("Catalog worker starting")

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status, healthy := c.HealthCheck(checkCtx)
	for name, state := range status {
		log.Info().Str("check", name).Str("state", state).Msg("Startup check")
	}
	if !healthy {
		return fmt.Errorf("dependencies unhealthy: %v", status)
	}

	if err := srv.Start(); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	go startHealthCheckServer(c)
	return nil
}

// startHealthCheckServer serves /health and /ready for liveness checks
func startHealthCheckServer(c *container.Container) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "UP", "service": "catalog-worker"})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		status, healthy := c.HealthCheck(r.Context())
		code := http.StatusOK
		if !healthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, status)
	})

	addr := c.Config.Queue.HealthAddr
	log.Info().Str("addr", addr).Msg("[Health] Starting health check server")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("[Health] Failed to start")
	}
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
