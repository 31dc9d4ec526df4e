package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	taxonomyModel "catalog-importer/internal/domains/taxonomy/model"
	taxonomyRepo "catalog-importer/internal/domains/taxonomy/repository"
)

// TermRepository stores terms and attribute definitions.
type TermRepository struct {
	mu          sync.RWMutex
	terms       map[string]*taxonomyModel.Term // taxonomy\x00name
	ids         map[uuid.UUID]*taxonomyModel.Term
	attributes  map[string]*taxonomyModel.Attribute
	termCreates int
	attrCreates int
	findCalls   int
}

var _ taxonomyRepo.Repository = (*TermRepository)(nil)

func NewTermRepository() *TermRepository {
	return &TermRepository{
		terms:      make(map[string]*taxonomyModel.Term),
		ids:        make(map[uuid.UUID]*taxonomyModel.Term),
		attributes: make(map[string]*taxonomyModel.Attribute),
	}
}

func key(taxonomy, name string) string { return taxonomy + "\x00" + name }

func (r *TermRepository) FindTerm(_ context.Context, taxonomy, name string) (*taxonomyModel.Term, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++

	t, ok := r.terms[key(taxonomy, name)]
	if !ok {
		return nil, taxonomyModel.ErrTermNotFound
	}
	c := *t
	return &c, nil
}

func (r *TermRepository) CreateTerm(_ context.Context, term *taxonomyModel.Term) (*taxonomyModel.Term, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(term.Taxonomy, term.Name)
	if t, ok := r.terms[k]; ok {
		c := *t
		return &c, nil
	}

	stored := *term
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	stored.CreatedAt = time.Now()
	r.terms[k] = &stored
	r.ids[stored.ID] = &stored
	r.termCreates++

	c := stored
	return &c, nil
}

func (r *TermRepository) FindAttribute(_ context.Context, slug string) (*taxonomyModel.Attribute, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.attributes[slug]
	if !ok {
		return nil, taxonomyModel.ErrAttributeNotFound
	}
	c := *a
	return &c, nil
}

func (r *TermRepository) CreateAttribute(_ context.Context, attr *taxonomyModel.Attribute) (*taxonomyModel.Attribute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.attributes[attr.Slug]; ok {
		c := *a
		return &c, nil
	}

	stored := *attr
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	stored.CreatedAt = time.Now()
	r.attributes[stored.Slug] = &stored
	r.attrCreates++

	c := stored
	return &c, nil
}

func (r *TermRepository) byID(id uuid.UUID) (*taxonomyModel.Term, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.ids[id]
	return t, ok
}

// Terms lists every term of taxonomy.
func (r *TermRepository) Terms(taxonomy string) []taxonomyModel.Term {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []taxonomyModel.Term
	for _, t := range r.terms {
		if t.Taxonomy == taxonomy {
			out = append(out, *t)
		}
	}
	return out
}

// TermCreates counts successful term inserts.
func (r *TermRepository) TermCreates() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.termCreates
}

// AttributeCreates counts successful attribute inserts.
func (r *TermRepository) AttributeCreates() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.attrCreates
}

// FindCalls counts FindTerm lookups.
func (r *TermRepository) FindCalls() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findCalls
}
