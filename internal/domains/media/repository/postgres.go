package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"catalog-importer/internal/domains/media/model"
)

const uniqueViolation = "23505"

const assetColumns = `
	id, origin_url, storage_key, url, file_name, mime_type, size_bytes,
	width, height, variants, variant_status, created_at, updated_at
`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func scanAsset(row pgx.Row) (*model.Asset, error) {
	a := &model.Asset{}
	var (
		variants []byte
		status   string
	)
	err := row.Scan(
		&a.ID, &a.OriginURL, &a.StorageKey, &a.URL, &a.FileName, &a.MimeType, &a.SizeBytes,
		&a.Width, &a.Height, &variants, &status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.VariantStatus = model.VariantStatus(status)
	a.Variants = map[string]string{}
	if len(variants) > 0 {
		if err := json.Unmarshal(variants, &a.Variants); err != nil {
			return nil, fmt.Errorf("decode variants: %w", err)
		}
	}
	return a, nil
}

func (r *postgresRepository) FindByOriginURL(ctx context.Context, originURL string) (*model.Asset, error) {
	a, err := scanAsset(r.pool.QueryRow(ctx,
		`SELECT `+assetColumns+` FROM media_assets WHERE origin_url = $1 LIMIT 1`, originURL))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find asset by origin: %w", err)
	}
	return a, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Asset, error) {
	a, err := scanAsset(r.pool.QueryRow(ctx,
		`SELECT `+assetColumns+` FROM media_assets WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get asset %s: %w", id, err)
	}
	return a, nil
}

func (r *postgresRepository) Create(ctx context.Context, a *model.Asset) error {
	variants, err := json.Marshal(a.Variants)
	if err != nil {
		return fmt.Errorf("encode variants: %w", err)
	}
	if a.Variants == nil {
		variants = []byte("{}")
	}

	err = r.pool.QueryRow(ctx, `
		INSERT INTO media_assets (
			id, origin_url, storage_key, url, file_name, mime_type, size_bytes,
			width, height, variants, variant_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`,
		a.ID, a.OriginURL, a.StorageKey, a.URL, a.FileName, a.MimeType, a.SizeBytes,
		a.Width, a.Height, variants, string(a.VariantStatus),
	).Scan(&a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.ErrDuplicateOrigin
		}
		return fmt.Errorf("create asset: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdateVariants(ctx context.Context, id uuid.UUID, variants map[string]string, status model.VariantStatus) error {
	data, err := json.Marshal(variants)
	if err != nil {
		return fmt.Errorf("encode variants: %w", err)
	}
	if variants == nil {
		data = []byte("{}")
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE media_assets SET variants = $2, variant_status = $3, updated_at = NOW()
		WHERE id = $1
	`, id, data, string(status))
	if err != nil {
		return fmt.Errorf("update variants of %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAssetNotFound
	}
	return nil
}

func (r *postgresRepository) ListByVariantStatus(ctx context.Context, statuses []model.VariantStatus, limit int) ([]*model.Asset, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+assetColumns+` FROM media_assets
		WHERE variant_status = ANY($1)
		ORDER BY created_at
		LIMIT $2
	`, pq.Array(names), limit)
	if err != nil {
		return nil, fmt.Errorf("list assets by variant status: %w", err)
	}
	defer rows.Close()

	var out []*model.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
