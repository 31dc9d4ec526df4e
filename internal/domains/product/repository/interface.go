package repository

import (
	"context"

	"catalog-importer/internal/domains/product/model"
)

// Repository persists products keyed by SKU.
type Repository interface {
	// FindBySKU returns model.ErrProductNotFound when no product has sku.
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)

	// Save writes the product row, category memberships, attribute terms,
	// attribute table and metadata atomically. SKU is only written on insert.
	Save(ctx context.Context, p *model.Product) error
}
