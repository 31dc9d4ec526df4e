package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"catalog-importer/internal/domains/media/model"
	"catalog-importer/internal/domains/media/repository"
	"catalog-importer/internal/shared/utils"
	"catalog-importer/pkg/httpclient"
)

// ObjectStorage is the blob store the media service writes to.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// DimensionReader decodes image dimensions without a full decode.
type DimensionReader interface {
	Dimensions(data []byte) (width, height int, format string, err error)
}

type MediaService interface {
	// Acquire returns the id of the asset for imageURL, downloading and
	// storing it only when no asset with that origin URL exists.
	Acquire(ctx context.Context, imageURL string) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Asset, error)
}

type Options struct {
	MaxBytes int64
}

type mediaService struct {
	repo       repository.Repository
	storage    ObjectStorage
	fetcher    httpclient.Fetcher
	dimensions DimensionReader
	variants   VariantGenerator
	maxBytes   int64
}

func NewMediaService(
	repo repository.Repository,
	storage ObjectStorage,
	fetcher httpclient.Fetcher,
	dimensions DimensionReader,
	variants VariantGenerator,
	opts Options,
) MediaService {
	if variants == nil {
		variants = NoopVariants{}
	}
	return &mediaService{
		repo:       repo,
		storage:    storage,
		fetcher:    fetcher,
		dimensions: dimensions,
		variants:   variants,
		maxBytes:   opts.MaxBytes,
	}
}

func (s *mediaService) Get(ctx context.Context, id uuid.UUID) (*model.Asset, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *mediaService) Acquire(ctx context.Context, imageURL string) (uuid.UUID, error) {
	origin := utils.SanitizeURL(imageURL)
	if origin == "" {
		return uuid.Nil, model.ErrEmptyReference
	}

	// 1. Dedup by origin URL, no network I/O on a hit
	existing, err := s.repo.FindByOriginURL(ctx, origin)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, model.ErrAssetNotFound) {
		return uuid.Nil, err
	}

	// 2. Fetch
	resp, err := s.fetcher.Get(ctx, origin, s.maxBytes)
	if errors.Is(err, httpclient.ErrBodyTooLarge) {
		return uuid.Nil, fmt.Errorf("%w: over %d bytes", model.ErrTooLarge, s.maxBytes)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", model.ErrFetchFailed, err)
	}
	if resp.StatusCode != 200 {
		return uuid.Nil, fmt.Errorf("%w: %d", model.ErrBadStatus, resp.StatusCode)
	}
	if !strings.Contains(strings.ToLower(resp.ContentType), "image/") {
		return uuid.Nil, fmt.Errorf("%w: content-type %q", model.ErrNotImage, resp.ContentType)
	}
	if len(resp.Body) == 0 {
		return uuid.Nil, model.ErrEmptyBody
	}

	// 3. Filename and type, checked before anything is written
	fileName := fileNameFromURL(origin)
	mimeType, ok := model.MimeTypeForFile(fileName)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: %s", model.ErrFileTypeNotAllowed, fileName)
	}

	asset := &model.Asset{
		ID:            uuid.New(),
		OriginURL:     origin,
		FileName:      fileName,
		MimeType:      mimeType,
		SizeBytes:     int64(len(resp.Body)),
		Variants:      map[string]string{},
		VariantStatus: model.VariantPending,
	}
	asset.StorageKey = model.StorageKeyFor(asset.ID, fileName)

	if s.dimensions != nil {
		if w, h, _, err := s.dimensions.Dimensions(resp.Body); err == nil {
			asset.Width, asset.Height = &w, &h
		} else {
			log.Debug().Err(err).Str("url", origin).Msg("could not read image dimensions")
		}
	}

	// 4. Store bytes, then the record
	publicURL, err := s.storage.Upload(ctx, asset.StorageKey, resp.Body, mimeType)
	if err != nil {
		return uuid.Nil, fmt.Errorf("store image: %w", err)
	}
	asset.URL = publicURL

	if err := s.repo.Create(ctx, asset); err != nil {
		s.discard(ctx, asset.StorageKey)
		if errors.Is(err, model.ErrDuplicateOrigin) {
			// concurrent acquisition of the same origin
			if winner, ferr := s.repo.FindByOriginURL(ctx, origin); ferr == nil {
				return winner.ID, nil
			}
		}
		return uuid.Nil, fmt.Errorf("create asset record: %w", err)
	}

	log.Info().
		Str("asset_id", asset.ID.String()).
		Str("origin_url", origin).
		Int64("size", asset.SizeBytes).
		Msg("Image upload successful")

	// 5. Derived representations, best effort
	if err := s.variants.Generate(ctx, asset); err != nil {
		log.Warn().Err(err).Str("asset_id", asset.ID.String()).Msg("Failed to generate image variants")
	}

	return asset.ID, nil
}

func (s *mediaService) discard(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to remove orphaned upload")
	}
}

// fileNameFromURL is the sanitised last path segment of raw.
func fileNameFromURL(raw string) string {
	name := ""
	if u, err := url.Parse(raw); err == nil {
		name = path.Base(u.Path)
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	name = sanitizeFileName(name)
	if name == "" || name == "." || name == "/" {
		return "image"
	}
	return name
}

func sanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), ".-")
}
