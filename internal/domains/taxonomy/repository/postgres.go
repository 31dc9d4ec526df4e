package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"catalog-importer/internal/domains/taxonomy/model"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) FindTerm(ctx context.Context, taxonomy, name string) (*model.Term, error) {
	t := &model.Term{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, taxonomy, name, slug, parent_id, created_at
		FROM terms
		WHERE taxonomy = $1 AND name = $2
	`, taxonomy, name).Scan(&t.ID, &t.Taxonomy, &t.Name, &t.Slug, &t.ParentID, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrTermNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find term %s/%s: %w", taxonomy, name, err)
	}
	return t, nil
}

func (r *postgresRepository) CreateTerm(ctx context.Context, term *model.Term) (*model.Term, error) {
	created := &model.Term{}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO terms (id, taxonomy, name, slug, parent_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (taxonomy, name) DO NOTHING
		RETURNING id, taxonomy, name, slug, parent_id, created_at
	`, term.ID, term.Taxonomy, term.Name, term.Slug, term.ParentID,
	).Scan(&created.ID, &created.Taxonomy, &created.Name, &created.Slug, &created.ParentID, &created.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		// lost a race; the other writer's row wins
		return r.FindTerm(ctx, term.Taxonomy, term.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("create term %s/%s: %w", term.Taxonomy, term.Name, err)
	}
	return created, nil
}

func (r *postgresRepository) FindAttribute(ctx context.Context, slug string) (*model.Attribute, error) {
	a := &model.Attribute{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, slug, type, created_at FROM attributes WHERE slug = $1
	`, slug).Scan(&a.ID, &a.Name, &a.Slug, &a.Type, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrAttributeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find attribute %s: %w", slug, err)
	}
	return a, nil
}

func (r *postgresRepository) CreateAttribute(ctx context.Context, attr *model.Attribute) (*model.Attribute, error) {
	created := &model.Attribute{}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO attributes (id, name, slug, type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (slug) DO NOTHING
		RETURNING id, name, slug, type, created_at
	`, attr.ID, attr.Name, attr.Slug, attr.Type,
	).Scan(&created.ID, &created.Name, &created.Slug, &created.Type, &created.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return r.FindAttribute(ctx, attr.Slug)
	}
	if err != nil {
		return nil, fmt.Errorf("create attribute %s: %w", attr.Slug, err)
	}
	return created, nil
}
