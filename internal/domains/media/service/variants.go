package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"catalog-importer/internal/domains/media/model"
	"catalog-importer/internal/domains/media/repository"
	"catalog-importer/internal/infrastructure/queue"
)

// VariantGenerator produces (or schedules) the derived sizes of an asset.
type VariantGenerator interface {
	Generate(ctx context.Context, asset *model.Asset) error
}

// ImageResizer is satisfied by *storage.ImageProcessor.
type ImageResizer interface {
	ProcessImage(data []byte) (map[string][]byte, error)
}

// VariantService renders variants from the stored original.
type VariantService struct {
	repo      repository.Repository
	storage   ObjectStorage
	processor ImageResizer
}

func NewVariantService(repo repository.Repository, storage ObjectStorage, processor ImageResizer) *VariantService {
	return &VariantService{repo: repo, storage: storage, processor: processor}
}

// Process downloads the original of assetID, writes every variant and
// records the result. The asset is marked failed on any error.
func (s *VariantService) Process(ctx context.Context, assetID uuid.UUID) error {
	asset, err := s.repo.GetByID(ctx, assetID)
	if err != nil {
		return err
	}
	if asset.VariantStatus == model.VariantReady {
		return nil
	}

	variants, err := s.render(ctx, asset)
	if err != nil {
		if uerr := s.repo.UpdateVariants(ctx, asset.ID, asset.Variants, model.VariantFailed); uerr != nil {
			log.Error().Err(uerr).Str("asset_id", asset.ID.String()).Msg("Failed to mark variants failed")
		}
		return err
	}

	return s.repo.UpdateVariants(ctx, asset.ID, variants, model.VariantReady)
}

func (s *VariantService) render(ctx context.Context, asset *model.Asset) (map[string]string, error) {
	data, err := s.storage.Download(ctx, asset.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("download original: %w", err)
	}

	rendered, err := s.processor.ProcessImage(data)
	if err != nil {
		return nil, fmt.Errorf("process image: %w", err)
	}

	keys := make(map[string]string, len(rendered))
	for name, body := range rendered {
		key := model.VariantKeyFor(asset.ID, asset.FileName, name)
		if _, err := s.storage.Upload(ctx, key, body, "image/jpeg"); err != nil {
			return nil, fmt.Errorf("upload variant %s: %w", name, err)
		}
		keys[name] = key
	}
	return keys, nil
}

// Sweep reprocesses up to limit assets whose variants are pending or failed.
func (s *VariantService) Sweep(ctx context.Context, limit int) (processed, failed int, err error) {
	assets, err := s.repo.ListByVariantStatus(ctx, []model.VariantStatus{model.VariantPending, model.VariantFailed}, limit)
	if err != nil {
		return 0, 0, err
	}

	for _, a := range assets {
		if err := s.Process(ctx, a.ID); err != nil {
			failed++
			log.Warn().Err(err).Str("asset_id", a.ID.String()).Msg("variant sweep: asset failed")
			continue
		}
		processed++
	}
	return processed, failed, nil
}

// ================================================
// GENERATORS
// ================================================

// InlineVariants renders during acquisition.
type InlineVariants struct {
	Service *VariantService
}

func (g InlineVariants) Generate(ctx context.Context, asset *model.Asset) error {
	return g.Service.Process(ctx, asset.ID)
}

// QueuedVariants defers rendering to the worker.
type QueuedVariants struct {
	Client queue.Enqueuer
	Repo   repository.Repository
}

func (g QueuedVariants) Generate(ctx context.Context, asset *model.Asset) error {
	if err := queue.EnqueueGenerateVariants(ctx, g.Client, queue.GenerateVariantsPayload{AssetID: asset.ID.String()}); err != nil {
		return err
	}
	return g.Repo.UpdateVariants(ctx, asset.ID, asset.Variants, model.VariantQueued)
}

// NoopVariants leaves assets without derived sizes.
type NoopVariants struct{}

func (NoopVariants) Generate(context.Context, *model.Asset) error { return nil }
