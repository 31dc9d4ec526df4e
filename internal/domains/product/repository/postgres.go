package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"catalog-importer/internal/domains/product/model"
	"catalog-importer/pkg/database"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	query := `
		SELECT
			p.id, p.sku, p.name, p.price, p.description, p.status, p.image_id,
			p.attributes, p.created_at, p.updated_at,
			ARRAY(
				SELECT pc.term_id::text FROM product_categories pc
				WHERE pc.product_id = p.id ORDER BY pc.term_id
			) AS category_ids,
			ARRAY(
				SELECT t.name FROM product_categories pc
				JOIN terms t ON t.id = pc.term_id
				WHERE pc.product_id = p.id ORDER BY t.name
			) AS category_names,
			ARRAY(
				SELECT pt.term_id::text FROM product_terms pt
				WHERE pt.product_id = p.id ORDER BY pt.term_id
			) AS term_ids
		FROM products p
		WHERE p.sku = $1
	`

	p := &model.Product{}
	var (
		status      string
		attrs       []byte
		categoryIDs []string
		termIDs     []string
	)
	err := r.pool.QueryRow(ctx, query, sku).Scan(
		&p.ID, &p.SKU, &p.Name, &p.Price, &p.Description, &status, &p.ImageID,
		&attrs, &p.CreatedAt, &p.UpdatedAt,
		pq.Array(&categoryIDs), pq.Array(&p.CategoryNames), pq.Array(&termIDs),
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product %s: %w", sku, err)
	}
	p.Status = model.Status(status)

	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &p.Attributes); err != nil {
			return nil, fmt.Errorf("decode attributes of %s: %w", sku, err)
		}
	}
	if p.CategoryIDs, err = parseUUIDs(categoryIDs); err != nil {
		return nil, err
	}
	if p.AttributeTermIDs, err = parseUUIDs(termIDs); err != nil {
		return nil, err
	}

	if p.Meta, err = r.loadMeta(ctx, p.ID); err != nil {
		return nil, err
	}

	return p, nil
}

func (r *postgresRepository) loadMeta(ctx context.Context, productID uuid.UUID) (map[string]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT meta_key, meta_value FROM product_meta WHERE product_id = $1`, productID)
	if err != nil {
		return nil, fmt.Errorf("load meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan meta: %w", err)
		}
		meta[k] = v
	}
	return meta, rows.Err()
}

func (r *postgresRepository) Save(ctx context.Context, p *model.Product) error {
	if p.SKU == "" {
		return model.ErrEmptySKU
	}

	attrs, err := json.Marshal(p.Attributes)
	if err != nil {
		return fmt.Errorf("encode attributes: %w", err)
	}
	if p.Attributes == nil {
		attrs = []byte("[]")
	}

	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		// sku is part of the insert only; updates never touch it
		err := tx.QueryRow(ctx, `
			INSERT INTO products (id, sku, name, price, description, status, image_id, attributes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET
				name        = EXCLUDED.name,
				price       = EXCLUDED.price,
				description = EXCLUDED.description,
				status      = EXCLUDED.status,
				image_id    = EXCLUDED.image_id,
				attributes  = EXCLUDED.attributes,
				updated_at  = NOW()
			RETURNING created_at, updated_at
		`, p.ID, p.SKU, p.Name, p.Price, p.Description, string(p.Status), p.ImageID, attrs,
		).Scan(&p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}

		batch := &pgx.Batch{}
		batch.Queue(`DELETE FROM product_categories WHERE product_id = $1`, p.ID)
		for _, id := range p.CategoryIDs {
			batch.Queue(`INSERT INTO product_categories (product_id, term_id) VALUES ($1, $2)`, p.ID, id)
		}
		for _, id := range p.AttributeTermIDs {
			batch.Queue(`
				INSERT INTO product_terms (product_id, term_id) VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, p.ID, id)
		}
		for k, v := range p.Meta {
			batch.Queue(`
				INSERT INTO product_meta (product_id, meta_key, meta_value) VALUES ($1, $2, $3)
				ON CONFLICT (product_id, meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value
			`, p.ID, k, v)
		}

		results := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("save associations of %s (statement %d): %w", p.SKU, i, err)
			}
		}
		return results.Close()
	})
}

func parseUUIDs(ss []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(ss))
	for _, s := range ss {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse uuid %q: %w", s, err)
		}
		out = append(out, id)
	}
	return out, nil
}
