package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	mediaModel "catalog-importer/internal/domains/media/model"
	mediaRepo "catalog-importer/internal/domains/media/repository"
)

type MediaRepository struct {
	mu       sync.RWMutex
	byID     map[uuid.UUID]*mediaModel.Asset
	byOrigin map[string]uuid.UUID
	failNext error
}

var _ mediaRepo.Repository = (*MediaRepository)(nil)

func NewMediaRepository() *MediaRepository {
	return &MediaRepository{
		byID:     make(map[uuid.UUID]*mediaModel.Asset),
		byOrigin: make(map[string]uuid.UUID),
	}
}

func cloneAsset(a *mediaModel.Asset) *mediaModel.Asset {
	c := *a
	c.Variants = make(map[string]string, len(a.Variants))
	for k, v := range a.Variants {
		c.Variants[k] = v
	}
	return &c
}

func (r *MediaRepository) FindByOriginURL(_ context.Context, originURL string) (*mediaModel.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byOrigin[originURL]
	if !ok {
		return nil, mediaModel.ErrAssetNotFound
	}
	return cloneAsset(r.byID[id]), nil
}

func (r *MediaRepository) GetByID(_ context.Context, id uuid.UUID) (*mediaModel.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, mediaModel.ErrAssetNotFound
	}
	return cloneAsset(a), nil
}

func (r *MediaRepository) Create(_ context.Context, a *mediaModel.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.failNext; err != nil {
		r.failNext = nil
		return err
	}
	if _, ok := r.byOrigin[a.OriginURL]; ok {
		return mediaModel.ErrDuplicateOrigin
	}

	now := time.Now()
	a.CreatedAt, a.UpdatedAt = now, now
	r.byID[a.ID] = cloneAsset(a)
	r.byOrigin[a.OriginURL] = a.ID
	return nil
}

func (r *MediaRepository) UpdateVariants(_ context.Context, id uuid.UUID, variants map[string]string, status mediaModel.VariantStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return mediaModel.ErrAssetNotFound
	}
	a.Variants = make(map[string]string, len(variants))
	for k, v := range variants {
		a.Variants[k] = v
	}
	a.VariantStatus = status
	a.UpdatedAt = time.Now()
	return nil
}

func (r *MediaRepository) ListByVariantStatus(_ context.Context, statuses []mediaModel.VariantStatus, limit int) ([]*mediaModel.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := make(map[mediaModel.VariantStatus]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}

	var out []*mediaModel.Asset
	for _, a := range r.byID {
		if want[a.VariantStatus] {
			out = append(out, cloneAsset(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FailNextCreate makes the next Create return err.
func (r *MediaRepository) FailNextCreate(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failNext = err
}

// Count returns the number of stored assets.
func (r *MediaRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// ================================================
// BLOB STORAGE
// ================================================

// BlobStorage keeps uploaded objects in a map.
type BlobStorage struct {
	mu      sync.RWMutex
	objects map[string]blob
	baseURL string
	uploads int
}

type blob struct {
	data        []byte
	contentType string
}

func NewBlobStorage(baseURL string) *BlobStorage {
	return &BlobStorage{objects: make(map[string]blob), baseURL: baseURL}
}

func (s *BlobStorage) Upload(_ context.Context, key string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[key] = blob{data: append([]byte(nil), data...), contentType: contentType}
	s.uploads++
	return fmt.Sprintf("%s/%s", s.baseURL, key), nil
}

func (s *BlobStorage) Download(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return append([]byte(nil), b.data...), nil
}

func (s *BlobStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Uploads counts every Upload call.
func (s *BlobStorage) Uploads() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uploads
}

// Has reports whether key is stored.
func (s *BlobStorage) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok
}

// Len returns the number of stored objects.
func (s *BlobStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
