package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"catalog-importer/internal/domains/taxonomy/model"
	"catalog-importer/internal/domains/taxonomy/repository"
	"catalog-importer/internal/shared/utils"
)

// ResolvedAttribute is one non-blank attribute after its term was ensured.
type ResolvedAttribute struct {
	Def      model.AttributeDef
	Term     *model.Term
	Position int
}

// AttributeSet is the outcome of ResolveAttributes.
type AttributeSet struct {
	Entries []ResolvedAttribute
}

func (s *AttributeSet) TermIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.Entries))
	for _, e := range s.Entries {
		ids = append(ids, e.Term.ID)
	}
	return ids
}

type TaxonomyService interface {
	// EnsureCategory returns the id of the category term name under parentID,
	// creating it on first use.
	EnsureCategory(ctx context.Context, name string, parentID *uuid.UUID) (uuid.UUID, error)
	EnsureAttribute(ctx context.Context, def model.AttributeDef) (*model.Attribute, error)
	EnsureAttributeValue(ctx context.Context, def model.AttributeDef, value string) (*model.Term, error)
	// ResolveAttributes ensures terms for every non-blank value, in order.
	ResolveAttributes(ctx context.Context, in model.AttributeInput) (*AttributeSet, error)
}

type taxonomyService struct {
	repo repository.Repository

	mu         sync.Mutex
	terms      map[string]*model.Term
	attributes map[string]*model.Attribute
}

func NewTaxonomyService(repo repository.Repository) TaxonomyService {
	return &taxonomyService{
		repo:       repo,
		terms:      make(map[string]*model.Term),
		attributes: make(map[string]*model.Attribute),
	}
}

func termKey(taxonomy, name string) string {
	return taxonomy + "\x00" + name
}

func (s *taxonomyService) EnsureCategory(ctx context.Context, name string, parentID *uuid.UUID) (uuid.UUID, error) {
	term, err := s.ensureTerm(ctx, model.TaxonomyCategory, name, parentID)
	if err != nil {
		return uuid.Nil, err
	}
	return term.ID, nil
}

func (s *taxonomyService) EnsureAttribute(ctx context.Context, def model.AttributeDef) (*model.Attribute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a, ok := s.attributes[def.Slug]; ok {
		return a, nil
	}

	a, err := s.repo.FindAttribute(ctx, def.Slug)
	if errors.Is(err, model.ErrAttributeNotFound) {
		a, err = s.repo.CreateAttribute(ctx, &model.Attribute{
			ID:   uuid.New(),
			Name: def.Name,
			Slug: def.Slug,
			Type: model.AttributeTypeSelect,
		})
		if err == nil {
			log.Info().Str("slug", a.Slug).Msg("Created attribute")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("ensure attribute %s: %w", def.Slug, err)
	}

	s.attributes[def.Slug] = a
	return a, nil
}

func (s *taxonomyService) EnsureAttributeValue(ctx context.Context, def model.AttributeDef, value string) (*model.Term, error) {
	value = utils.SanitizeText(value)
	if value == "" {
		return nil, model.ErrEmptyTermName
	}
	if _, err := s.EnsureAttribute(ctx, def); err != nil {
		return nil, err
	}
	return s.ensureTerm(ctx, def.Slug, value, nil)
}

func (s *taxonomyService) ResolveAttributes(ctx context.Context, in model.AttributeInput) (*AttributeSet, error) {
	set := &AttributeSet{}
	for _, av := range in.Ordered() {
		if strings.TrimSpace(av.Value) == "" {
			continue
		}
		term, err := s.EnsureAttributeValue(ctx, av.Def, av.Value)
		if errors.Is(err, model.ErrEmptyTermName) {
			continue
		}
		if err != nil {
			return nil, err
		}
		set.Entries = append(set.Entries, ResolvedAttribute{
			Def:      av.Def,
			Term:     term,
			Position: len(set.Entries),
		})
	}
	return set, nil
}

// ensureTerm is lookup-then-create under a single lock, so one process never
// issues two creates for the same (taxonomy, name).
func (s *taxonomyService) ensureTerm(ctx context.Context, taxonomy, name string, parentID *uuid.UUID) (*model.Term, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ErrEmptyTermName
	}

	key := termKey(taxonomy, name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.terms[key]; ok {
		return t, nil
	}

	t, err := s.repo.FindTerm(ctx, taxonomy, name)
	if errors.Is(err, model.ErrTermNotFound) {
		t, err = s.repo.CreateTerm(ctx, &model.Term{
			ID:       uuid.New(),
			Taxonomy: taxonomy,
			Name:     name,
			Slug:     utils.GenerateSlug(name),
			ParentID: parentID,
		})
		if err == nil {
			log.Info().
				Str("term_id", t.ID.String()).
				Str("taxonomy", taxonomy).
				Str("name", name).
				Msg("Created new term")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("ensure term %s/%s: %w", taxonomy, name, err)
	}

	s.terms[key] = t
	return t, nil
}
