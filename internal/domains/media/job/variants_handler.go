package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"catalog-importer/internal/domains/media/model"
	"catalog-importer/internal/domains/media/service"
	"catalog-importer/internal/infrastructure/queue"
)

type GenerateVariantsHandler struct {
	variants *service.VariantService
}

func NewGenerateVariantsHandler(v *service.VariantService) *GenerateVariantsHandler {
	return &GenerateVariantsHandler{variants: v}
}

// ProcessTask handles media:generate_variants.
func (h *GenerateVariantsHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p queue.GenerateVariantsPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	id, err := uuid.Parse(p.AssetID)
	if err != nil {
		return fmt.Errorf("invalid asset id %q: %w", p.AssetID, asynq.SkipRetry)
	}

	err = h.variants.Process(ctx, id)
	if errors.Is(err, model.ErrAssetNotFound) {
		log.Warn().Str("asset_id", p.AssetID).Msg("asset vanished before variant processing")
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if err != nil {
		return err
	}

	log.Info().Str("asset_id", p.AssetID).Msg("variants generated")
	return nil
}

type SweepVariantsHandler struct {
	variants *service.VariantService
}

func NewSweepVariantsHandler(v *service.VariantService) *SweepVariantsHandler {
	return &SweepVariantsHandler{variants: v}
}

// ProcessTask handles media:sweep_variants.
func (h *SweepVariantsHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	p := queue.SweepVariantsPayload{Limit: 100}
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	processed, failed, err := h.variants.Sweep(ctx, p.Limit)
	if err != nil {
		return err
	}

	log.Info().Int("processed", processed).Int("failed", failed).Msg("variant sweep finished")
	return nil
}
