package service

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"catalog-importer/internal/domains/importer/model"
	taxonomyModel "catalog-importer/internal/domains/taxonomy/model"
)

const nameSeparator = " - "

// DisplayName joins the non-blank naming fields of rec in catalog order:
// carat, color, fancy intensity, fancy color, clarity, cut and shape.
func DisplayName(rec *model.ProductRecord) string {
	parts := make([]string, 0, 6)
	add := func(format, value string) {
		if value == "" {
			return
		}
		parts = append(parts, strings.Replace(format, "%s", value, 1))
	}

	add("%s Carat", rec.Core.Carat)
	add("%s", rec.Grading.Color)
	add("%s", rec.Grading.FancyColorIntensity)
	add("%s", rec.Grading.FancyColor)
	add("%s", rec.Grading.Clarity)
	add("Cut - %s", rec.Core.Shape)

	return strings.Join(parts, nameSeparator)
}

var titleCaser = cases.Title(language.English)

// ShapeCategoryName normalises a Shape value into its category name,
// "ROUND" and " round " both become "Round".
func ShapeCategoryName(shape string) string {
	shape = strings.Join(strings.Fields(shape), " ")
	if shape == "" {
		return ""
	}
	return titleCaser.String(strings.ToLower(shape))
}

// ParsePrice reads a Total Amount value. Currency symbols, thousand
// separators and spaces are ignored.
func ParsePrice(raw string) (decimal.Decimal, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, raw)
	if cleaned == "" {
		return decimal.Zero, false
	}

	price, err := decimal.NewFromString(cleaned)
	if err != nil || price.IsNegative() {
		return decimal.Zero, false
	}
	return price, true
}

// AttributeInputFor picks the taxonomy-backed attributes of rec.
func AttributeInputFor(rec *model.ProductRecord) taxonomyModel.AttributeInput {
	return taxonomyModel.AttributeInput{
		Color:      rec.Grading.Color,
		Clarity:    rec.Grading.Clarity,
		FancyColor: rec.Grading.FancyColor,
	}
}
