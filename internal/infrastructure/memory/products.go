// Package memory holds process-local implementations of the store contracts.
// They back STORE_DRIVER=memory and the service tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	productModel "catalog-importer/internal/domains/product/model"
	productRepo "catalog-importer/internal/domains/product/repository"
	taxonomyModel "catalog-importer/internal/domains/taxonomy/model"
)

// ProductRepository is safe for concurrent use.
type ProductRepository struct {
	mu       sync.RWMutex
	bySKU    map[string]*productModel.Product
	terms    *TermRepository // optional, resolves category names
	creates  int
	saves    int
	now      func() time.Time
	failSave error
}

var _ productRepo.Repository = (*ProductRepository)(nil)

// NewProductRepository builds an empty store. terms may be nil.
func NewProductRepository(terms *TermRepository) *ProductRepository {
	return &ProductRepository{
		bySKU: make(map[string]*productModel.Product),
		terms: terms,
		now:   time.Now,
	}
}

func (r *ProductRepository) FindBySKU(_ context.Context, sku string) (*productModel.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.bySKU[sku]
	if !ok {
		return nil, productModel.ErrProductNotFound
	}
	return r.hydrate(p.Clone()), nil
}

func (r *ProductRepository) Save(_ context.Context, p *productModel.Product) error {
	if p.SKU == "" {
		return productModel.ErrEmptySKU
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failSave != nil {
		return r.failSave
	}

	now := r.now()
	stored := p.Clone()

	if existing, ok := r.bySKU[p.SKU]; ok && existing.ID != p.ID {
		return productModel.ErrDuplicateSKU
	}

	if prev, ok := r.findByID(p.ID); ok {
		// sku is immutable after insert
		stored.SKU = prev.SKU
		stored.CreatedAt = prev.CreatedAt
		delete(r.bySKU, prev.SKU)
		// terms are additive, meta keys merge
		stored.AttributeTermIDs = mergeIDs(prev.AttributeTermIDs, stored.AttributeTermIDs)
		merged := make(map[string]string, len(prev.Meta)+len(stored.Meta))
		for k, v := range prev.Meta {
			merged[k] = v
		}
		for k, v := range stored.Meta {
			merged[k] = v
		}
		stored.Meta = merged
	} else {
		stored.CreatedAt = now
		r.creates++
	}
	stored.UpdatedAt = now
	stored.CategoryNames = nil

	r.bySKU[stored.SKU] = stored
	r.saves++

	p.CreatedAt, p.UpdatedAt = stored.CreatedAt, stored.UpdatedAt
	return nil
}

func (r *ProductRepository) findByID(id uuid.UUID) (*productModel.Product, bool) {
	for _, p := range r.bySKU {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

func (r *ProductRepository) hydrate(p *productModel.Product) *productModel.Product {
	if r.terms == nil {
		return p
	}
	p.CategoryNames = p.CategoryNames[:0]
	for _, id := range p.CategoryIDs {
		if t, ok := r.terms.byID(id); ok && t.Taxonomy == taxonomyModel.TaxonomyCategory {
			p.CategoryNames = append(p.CategoryNames, t.Name)
		}
	}
	return p
}

// Count returns the number of stored products.
func (r *ProductRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySKU)
}

// Creates returns how many inserts (not updates) happened.
func (r *ProductRepository) Creates() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.creates
}

// FailSaves makes every subsequent Save return err; nil restores.
func (r *ProductRepository) FailSaves(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failSave = err
}

func mergeIDs(a, b []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(a)+len(b))
	out := make([]uuid.UUID, 0, len(a)+len(b))
	for _, list := range [][]uuid.UUID{a, b} {
		for _, id := range list {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out
}
