package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Product is a catalog entity keyed by SKU (the stock number).
// SKU is set once on creation and never rewritten by Save.
type Product struct {
	ID          uuid.UUID        `json:"id"`
	SKU         string           `json:"sku"`
	Name        string           `json:"name"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Description string           `json:"description"`
	Status      Status           `json:"status"`
	ImageID     *uuid.UUID       `json:"image_id,omitempty"`

	CategoryIDs      []uuid.UUID           `json:"category_ids"`
	CategoryNames    []string              `json:"category_names,omitempty"` // read-only, filled by the repository
	AttributeTermIDs []uuid.UUID           `json:"attribute_term_ids"`
	Attributes       []AttributeDescriptor `json:"attributes"`
	Meta             map[string]string     `json:"meta"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AttributeDescriptor is one row of the product's attribute table.
type AttributeDescriptor struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Position    int    `json:"position"`
	IsVisible   bool   `json:"is_visible"`
	IsVariation bool   `json:"is_variation"`
	IsTaxonomy  bool   `json:"is_taxonomy"`
}

func NewProduct(sku string) *Product {
	return &Product{
		ID:     uuid.New(),
		SKU:    sku,
		Status: StatusDraft,
		Meta:   make(map[string]string),
	}
}

// IsNew reports whether the product has never been persisted.
func (p *Product) IsNew() bool {
	return p.CreatedAt.IsZero()
}

func (p *Product) HasImage() bool {
	return p.ImageID != nil && *p.ImageID != uuid.Nil
}

func (p *Product) SetImage(id uuid.UUID) {
	p.ImageID = &id
}

// SetCategories replaces all category memberships.
func (p *Product) SetCategories(ids ...uuid.UUID) {
	p.CategoryIDs = dedupe(nil, ids)
}

// AddAttributeTerms associates terms without dropping existing ones.
func (p *Product) AddAttributeTerms(ids ...uuid.UUID) {
	p.AttributeTermIDs = dedupe(p.AttributeTermIDs, ids)
}

// SetAttributes replaces the attribute table.
func (p *Product) SetAttributes(attrs []AttributeDescriptor) {
	p.Attributes = append([]AttributeDescriptor(nil), attrs...)
}

func (p *Product) SetMeta(key, value string) {
	if p.Meta == nil {
		p.Meta = make(map[string]string)
	}
	p.Meta[key] = value
}

func (p *Product) GetMeta(key string) string {
	return p.Meta[key]
}

func (p *Product) InCategory(name string) bool {
	for _, n := range p.CategoryNames {
		if n == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (p *Product) Clone() *Product {
	c := *p
	if p.Price != nil {
		price := *p.Price
		c.Price = &price
	}
	if p.ImageID != nil {
		id := *p.ImageID
		c.ImageID = &id
	}
	c.CategoryIDs = append([]uuid.UUID(nil), p.CategoryIDs...)
	c.CategoryNames = append([]string(nil), p.CategoryNames...)
	c.AttributeTermIDs = append([]uuid.UUID(nil), p.AttributeTermIDs...)
	c.Attributes = append([]AttributeDescriptor(nil), p.Attributes...)
	c.Meta = make(map[string]string, len(p.Meta))
	for k, v := range p.Meta {
		c.Meta[k] = v
	}
	return &c
}

func dedupe(base, add []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(base)+len(add))
	out := make([]uuid.UUID, 0, len(base)+len(add))
	for _, list := range [][]uuid.UUID{base, add} {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
