package repository

import (
	"context"

	"github.com/google/uuid"

	"catalog-importer/internal/domains/media/model"
)

type Repository interface {
	// FindByOriginURL returns model.ErrAssetNotFound on a miss.
	FindByOriginURL(ctx context.Context, originURL string) (*model.Asset, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Asset, error)
	// Create returns model.ErrDuplicateOrigin when the origin URL is taken.
	Create(ctx context.Context, asset *model.Asset) error
	UpdateVariants(ctx context.Context, id uuid.UUID, variants map[string]string, status model.VariantStatus) error
	ListByVariantStatus(ctx context.Context, statuses []model.VariantStatus, limit int) ([]*model.Asset, error)
}
