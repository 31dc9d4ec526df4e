package model

import (
	"strings"

	"catalog-importer/internal/shared/utils"
)

// Meta keys written by the importer and read by the detail view.
const (
	MetaStockNo          = "Stock #"
	MetaLab              = "Lab"
	MetaReportNo         = "Report #"
	MetaCertificateURL   = "Certificate Url"
	MetaTotalAmount      = "Total Amount"
	MetaShape            = "Shape"
	MetaCarat            = "Carat"
	MetaColor            = "Color"
	MetaFancyColor       = "FancyColor"
	MetaFancyIntensity   = "FancyColorIntensity"
	MetaClarity          = "Clarity"
	MetaCut              = "Cut"
	MetaPolish           = "Pol"
	MetaSymmetry         = "Sym"
	MetaMeasurement      = "Measurement"
	MetaTable            = "Table"
	MetaDepth            = "Depth"
	MetaCrownHeight      = "CrownHeight"
	MetaCrownAngle       = "Crown Angle"
	MetaPavilionDepth    = "PavilionDepth"
	MetaPavilionAngle    = "Pavilion Angle"
	MetaKeyToSymbols     = "KeyToSymbols"
	MetaGirdleThin       = "GirdleThin"
	MetaGirdleThick      = "GirdleThick"
	MetaGirdleCondition  = "Girdle Condition"
	MetaCuletSize        = "CuletSize"
	MetaGirdlePercent    = "Girdle Percent"
	MetaVideoLink        = "video_link"
	CategoryDiamond      = "Diamond"
	placeholder          = "-"
	degree               = "°"
	percent              = "%"
	girdleRangeSeparator = " to "
)

// DetailRow is one label/value line of a detail table.
type DetailRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Link  string `json:"link,omitempty"`
}

// DetailView is the presentation snapshot of a product page.
type DetailView struct {
	SKU            string        `json:"sku"`
	Name           string        `json:"name"`
	VideoURL       string        `json:"video_url,omitempty"`
	HideQuantity   bool          `json:"hide_quantity"`
	StoneDetails   []DetailRow   `json:"stone_details,omitempty"`
	GradingPrimary []DetailRow   `json:"grading_primary,omitempty"`
	GradingSecond  []DetailRow   `json:"grading_secondary,omitempty"`
	Measurements   [][]DetailRow `json:"measurements,omitempty"`
}

// BuildDetailView turns stored metadata into display sections. Sections whose
// source fields are all empty are omitted.
func BuildDetailView(p *Product) *DetailView {
	m := p.GetMeta
	v := &DetailView{
		SKU:          p.SKU,
		Name:         p.Name,
		HideQuantity: p.InCategory(CategoryDiamond),
	}

	if video := m(MetaVideoLink); video != "" {
		v.VideoURL = utils.ForceHTTPS(video)
	}

	v.StoneDetails = nonEmpty([]DetailRow{
		{Label: "Stone No", Value: m(MetaStockNo)},
		{Label: "Lab", Value: m(MetaLab)},
		{Label: "Certificate No", Value: m(MetaReportNo), Link: m(MetaCertificateURL)},
		{Label: "Price", Value: m(MetaTotalAmount)},
	})

	v.GradingPrimary = nonEmpty([]DetailRow{
		{Label: "Shape", Value: m(MetaShape)},
		{Label: "Carat", Value: m(MetaCarat)},
		{Label: "Color", Value: m(MetaColor)},
		{Label: "Fancy Color", Value: m(MetaFancyColor)},
		{Label: "Fancy Color Intensity", Value: m(MetaFancyIntensity)},
		{Label: "Clarity", Value: m(MetaClarity)},
	})
	v.GradingSecond = nonEmpty([]DetailRow{
		{Label: "Cut", Value: m(MetaCut)},
		{Label: "Polish", Value: m(MetaPolish)},
		{Label: "Symmetry", Value: m(MetaSymmetry)},
	})

	if anySet(p, MetaMeasurement, MetaTable, MetaDepth, MetaCrownHeight, MetaCrownAngle,
		MetaPavilionDepth, MetaPavilionAngle, MetaKeyToSymbols, MetaGirdleThin, MetaGirdleThick,
		MetaGirdleCondition, MetaCuletSize, MetaGirdlePercent) {
		v.Measurements = [][]DetailRow{
			{
				{Label: "Measurement", Value: orDash(m(MetaMeasurement))},
				{Label: "Table %", Value: suffixOrDash(m(MetaTable), percent)},
				{Label: "Depth %", Value: suffixOrDash(m(MetaDepth), percent)},
				{Label: "CA-CH", Value: pairOrDash(m(MetaCrownHeight), m(MetaCrownAngle))},
				{Label: "PA-PH", Value: pairOrDash(m(MetaPavilionAngle), m(MetaPavilionDepth))},
				{Label: "Key To Symbols", Value: orDash(m(MetaKeyToSymbols))},
			},
			{
				{Label: "Girdle", Value: girdle(m(MetaGirdleThick), m(MetaGirdleThin))},
				{Label: "Girdle %", Value: suffixOrDash(m(MetaGirdlePercent), percent)},
				{Label: "Girdle Condition", Value: orDash(m(MetaGirdleCondition))},
				{Label: "Culet Size", Value: orDash(m(MetaCuletSize))},
			},
		}
	}

	return v
}

func nonEmpty(rows []DetailRow) []DetailRow {
	out := rows[:0]
	for _, r := range rows {
		if strings.TrimSpace(r.Value) != "" {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func anySet(p *Product, keys ...string) bool {
	for _, k := range keys {
		if p.GetMeta(k) != "" {
			return true
		}
	}
	return false
}

func orDash(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}

func suffixOrDash(s, suffix string) string {
	if s == "" {
		return placeholder
	}
	return s + suffix
}

func pairOrDash(a, b string) string {
	if a == "" || b == "" {
		return placeholder
	}
	return a + degree + "-" + b + degree
}

func girdle(thick, thin string) string {
	switch {
	case thick != "" && thin != "":
		return thick + girdleRangeSeparator + thin
	case thick != "":
		return thick
	case thin != "":
		return thin
	default:
		return placeholder
	}
}
