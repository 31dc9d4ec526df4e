package main

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"catalog-importer/internal/infrastructure/queue"
	"catalog-importer/pkg/container"
)

// asynqServer wraps asynq.Server with its mux
type asynqServer struct {
	*asynq.Server
	mux *asynq.ServeMux
}

// setupAsynqServer creates and configures the Asynq server
func setupAsynqServer(c *container.Container, handlers *HandlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	srv := asynq.NewServer(
		c.RedisClientOpt(),
		asynq.Config{
			Queues:      queue.Queues,
			Concurrency: c.Config.Queue.Concurrency,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error().Err(err).Str("type", task.Type()).Msg("[Asynq] Task failed")
			}),
		},
	)

	return &asynqServer{Server: srv, mux: mux}
}

// Start runs the server in the background.
func (s *asynqServer) Start() error {
	log.Info().Msg("[Worker] Starting...")
	return s.Server.Start(s.mux)
}

// Shutdown waits for in-flight tasks up to the server's shutdown timeout.
func (s *asynqServer) Shutdown() {
	log.Info().Msg("[Worker] Shutting down...")
	s.Server.Shutdown()
	log.Info().Msg("[Worker] Gracefully stopped")
}
