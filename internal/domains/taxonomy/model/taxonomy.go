package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	// TaxonomyCategory holds the hierarchical product categories.
	TaxonomyCategory = "product_cat"

	AttributeTypeSelect = "select"
)

// Term is a named node inside a taxonomy; unique per (Taxonomy, Name).
type Term struct {
	ID        uuid.UUID  `json:"id"`
	Taxonomy  string     `json:"taxonomy"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Attribute is a selectable attribute definition. Its Slug doubles as the
// taxonomy name of its value terms.
type Attribute struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// AttributeDef binds a catalog column to an attribute taxonomy.
type AttributeDef struct {
	Name string // display name, also the source column
	Slug string
}

var (
	AttrColor      = AttributeDef{Name: "Color", Slug: "pa_color"}
	AttrClarity    = AttributeDef{Name: "Clarity", Slug: "pa_clarity"}
	AttrFancyColor = AttributeDef{Name: "FancyColor", Slug: "pa_fancycolor"}
)

// AttributeInput carries the raw values for the fixed attribute set.
type AttributeInput struct {
	Color      string
	Clarity    string
	FancyColor string
}

// AttributeValue pairs a definition with a value.
type AttributeValue struct {
	Def   AttributeDef
	Value string
}

// Ordered returns the values in the fixed order Color, Clarity, FancyColor.
func (in AttributeInput) Ordered() []AttributeValue {
	return []AttributeValue{
		{Def: AttrColor, Value: in.Color},
		{Def: AttrClarity, Value: in.Clarity},
		{Def: AttrFancyColor, Value: in.FancyColor},
	}
}
