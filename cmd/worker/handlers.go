package main

import (
	"github.com/hibiken/asynq"

	mediaJob "catalog-importer/internal/domains/media/job"
	"catalog-importer/internal/infrastructure/queue"
	"catalog-importer/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	generateVariants *mediaJob.GenerateVariantsHandler
	sweepVariants    *mediaJob.SweepVariantsHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		generateVariants: mediaJob.NewGenerateVariantsHandler(c.VariantService),
		sweepVariants:    mediaJob.NewSweepVariantsHandler(c.VariantService),
	}
}

// RegisterHandlers binds task types to handlers
func (r *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(queue.TypeGenerateVariants, r.generateVariants.ProcessTask)
	mux.HandleFunc(queue.TypeSweepVariants, r.sweepVariants.ProcessTask)
}
