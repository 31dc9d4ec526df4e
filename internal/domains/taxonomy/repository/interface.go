package repository

import (
	"context"

	"catalog-importer/internal/domains/taxonomy/model"
)

type Repository interface {
	FindTerm(ctx context.Context, taxonomy, name string) (*model.Term, error)
	// CreateTerm inserts term or, when (taxonomy, name) already exists,
	// returns the stored one.
	CreateTerm(ctx context.Context, term *model.Term) (*model.Term, error)

	FindAttribute(ctx context.Context, slug string) (*model.Attribute, error)
	// CreateAttribute behaves like CreateTerm, keyed by slug.
	CreateAttribute(ctx context.Context, attr *model.Attribute) (*model.Attribute, error)
}
