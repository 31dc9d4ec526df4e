package model

import (
	"strings"
)

// ========================================
// CATALOG ROW GROUPS
// ========================================

type CoreFields struct {
	StockNo      string
	Availability string
	TotalAmount  string
	Shape        string
	Carat        string
}

type GradingFields struct {
	Color               string
	FancyColor          string
	FancyColorIntensity string
	Clarity             string
	Cut                 string
	Polish              string
	Symmetry            string
	Treatment           string
	KeyToSymbols        string
}

type MeasurementFields struct {
	Measurement     string
	Table           string
	Depth           string
	CrownHeight     string
	CrownAngle      string
	PavilionDepth   string
	PavilionAngle   string
	GirdleThin      string
	GirdleThick     string
	GirdleCondition string
	CuletSize       string
	GirdlePercent   string
}

type CertificateFields struct {
	Lab              string
	ReportNo         string
	CertComment      string
	CertificateURL   string
	LaserInscription string
}

type MediaFields struct {
	DiamondImage string
	VideoLink    string
}

// ProductRecord is one catalog row mapped onto typed groups.
type ProductRecord struct {
	Row         int // 1-based data row number, header excluded
	Core        CoreFields
	Grading     GradingFields
	Measurement MeasurementFields
	Certificate CertificateFields
	Media       MediaFields

	present map[string]bool
}

// Has reports whether column was part of the file header.
func (r *ProductRecord) Has(column string) bool {
	return r.present[column]
}

// ========================================
// COLUMN TABLE
// ========================================

// Column names as they appear in the catalog header.
const (
	ColStockNo             = "Stock #"
	ColAvailability        = "Availability"
	ColLab                 = "Lab"
	ColReportNo            = "Report #"
	ColTreatment           = "Treatment"
	ColTotalAmount         = "Total Amount"
	ColFancyColor          = "FancyColor"
	ColFancyColorIntensity = "FancyColorIntensity"
	ColShape               = "Shape"
	ColCarat               = "Carat"
	ColColor               = "Color"
	ColClarity             = "Clarity"
	ColCut                 = "Cut"
	ColPolish              = "Pol"
	ColSymmetry            = "Sym"
	ColMeasurement         = "Measurement"
	ColTable               = "Table"
	ColDepth               = "Depth"
	ColCrownHeight         = "CrownHeight"
	ColCrownAngle          = "Crown Angle"
	ColPavilionDepth       = "PavilionDepth"
	ColPavilionAngle       = "Pavilion Angle"
	ColKeyToSymbols        = "KeyToSymbols"
	ColGirdleThin          = "GirdleThin"
	ColGirdleThick         = "GirdleThick"
	ColGirdleCondition     = "Girdle Condition"
	ColCuletSize           = "CuletSize"
	ColGirdlePercent       = "Girdle Percent"
	ColCertComment         = "Cert comment"
	ColCertificateURL      = "Certificate Url"
	ColLaserInscription    = "Laser Inscription"
	ColDiamondImage        = "DiamondImage"
	ColVideoLink           = "Video Link"

	// MetaVideoLink is the metadata key of the URL-sanitised video link.
	MetaVideoLink = "video_link"
)

type column struct {
	name  string
	meta  bool // copied verbatim into product metadata
	field func(r *ProductRecord) *string
}

// columns is the allow-listed mapping, in metadata order.
var columns = []column{
	{ColStockNo, true, func(r *ProductRecord) *string { return &r.Core.StockNo }},
	{ColAvailability, true, func(r *ProductRecord) *string { return &r.Core.Availability }},
	{ColLab, true, func(r *ProductRecord) *string { return &r.Certificate.Lab }},
	{ColReportNo, true, func(r *ProductRecord) *string { return &r.Certificate.ReportNo }},
	{ColTreatment, true, func(r *ProductRecord) *string { return &r.Grading.Treatment }},
	{ColTotalAmount, true, func(r *ProductRecord) *string { return &r.Core.TotalAmount }},
	{ColFancyColor, true, func(r *ProductRecord) *string { return &r.Grading.FancyColor }},
	{ColFancyColorIntensity, true, func(r *ProductRecord) *string { return &r.Grading.FancyColorIntensity }},
	{ColShape, true, func(r *ProductRecord) *string { return &r.Core.Shape }},
	{ColCarat, true, func(r *ProductRecord) *string { return &r.Core.Carat }},
	{ColColor, true, func(r *ProductRecord) *string { return &r.Grading.Color }},
	{ColClarity, true, func(r *ProductRecord) *string { return &r.Grading.Clarity }},
	{ColCut, true, func(r *ProductRecord) *string { return &r.Grading.Cut }},
	{ColPolish, true, func(r *ProductRecord) *string { return &r.Grading.Polish }},
	{ColSymmetry, true, func(r *ProductRecord) *string { return &r.Grading.Symmetry }},
	{ColMeasurement, true, func(r *ProductRecord) *string { return &r.Measurement.Measurement }},
	{ColTable, true, func(r *ProductRecord) *string { return &r.Measurement.Table }},
	{ColDepth, true, func(r *ProductRecord) *string { return &r.Measurement.Depth }},
	{ColCrownHeight, true, func(r *ProductRecord) *string { return &r.Measurement.CrownHeight }},
	{ColCrownAngle, true, func(r *ProductRecord) *string { return &r.Measurement.CrownAngle }},
	{ColPavilionDepth, true, func(r *ProductRecord) *string { return &r.Measurement.PavilionDepth }},
	{ColPavilionAngle, true, func(r *ProductRecord) *string { return &r.Measurement.PavilionAngle }},
	{ColKeyToSymbols, true, func(r *ProductRecord) *string { return &r.Grading.KeyToSymbols }},
	{ColGirdleThin, true, func(r *ProductRecord) *string { return &r.Measurement.GirdleThin }},
	{ColGirdleThick, true, func(r *ProductRecord) *string { return &r.Measurement.GirdleThick }},
	{ColGirdleCondition, true, func(r *ProductRecord) *string { return &r.Measurement.GirdleCondition }},
	{ColCuletSize, true, func(r *ProductRecord) *string { return &r.Measurement.CuletSize }},
	{ColGirdlePercent, true, func(r *ProductRecord) *string { return &r.Measurement.GirdlePercent }},
	{ColCertComment, true, func(r *ProductRecord) *string { return &r.Certificate.CertComment }},
	{ColCertificateURL, true, func(r *ProductRecord) *string { return &r.Certificate.CertificateURL }},
	{ColLaserInscription, true, func(r *ProductRecord) *string { return &r.Certificate.LaserInscription }},
	{ColDiamondImage, false, func(r *ProductRecord) *string { return &r.Media.DiamondImage }},
	{ColVideoLink, false, func(r *ProductRecord) *string { return &r.Media.VideoLink }},
}

var columnsByName = func() map[string]int {
	m := make(map[string]int, len(columns))
	for i, c := range columns {
		m[c.name] = i
	}
	return m
}()

// MetaEntry is one key/value copied into product metadata.
type MetaEntry struct {
	Key   string
	Value string
}

// MetaEntries returns the allow-listed metadata of columns present in the
// header, in allow-list order. Values are raw; callers sanitise.
func (r *ProductRecord) MetaEntries() []MetaEntry {
	out := make([]MetaEntry, 0, len(columns))
	for _, c := range columns {
		if c.meta && r.present[c.name] {
			out = append(out, MetaEntry{Key: c.name, Value: *c.field(r)})
		}
	}
	return out
}

// metaKeys is the metadata allow-list.
func metaKeys() []string {
	keys := make([]string, 0, len(columns))
	for _, c := range columns {
		if c.meta {
			keys = append(keys, c.name)
		}
	}
	return keys
}

// ========================================
// HEADER
// ========================================

// ColumnMap binds header positions to known columns.
type ColumnMap struct {
	width   int
	index   map[int]int // header position => columns index
	unknown []string
}

const utf8BOM = "\uFEFF"

// NewColumnMap validates header. Names are trimmed and matched exactly;
// unknown columns are ignored.
func NewColumnMap(header []string) (*ColumnMap, error) {
	cm := &ColumnMap{width: len(header), index: make(map[int]int)}

	nonBlank := false
	for i, raw := range header {
		name := raw
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		nonBlank = true

		if ci, ok := columnsByName[name]; ok {
			if _, dup := cm.lookup(ci); !dup {
				cm.index[i] = ci
			}
			continue
		}
		cm.unknown = append(cm.unknown, name)
	}

	if !nonBlank {
		return nil, ErrEmptyHeader
	}
	return cm, nil
}

func (cm *ColumnMap) lookup(ci int) (int, bool) {
	for pos, c := range cm.index {
		if c == ci {
			return pos, true
		}
	}
	return 0, false
}

// Width is the number of header columns.
func (cm *ColumnMap) Width() int { return cm.width }

// Unknown lists header names outside the column table.
func (cm *ColumnMap) Unknown() []string { return cm.unknown }

// Map turns one raw row into a record. Rows whose width differs from the
// header or that contain only blanks are rejected.
func (cm *ColumnMap) Map(row int, fields []string) (*ProductRecord, error) {
	if IsBlank(fields) {
		return nil, ErrBlankRow
	}
	if len(fields) != cm.width {
		return nil, ErrColumnMismatch
	}

	rec := &ProductRecord{Row: row, present: make(map[string]bool, len(cm.index))}
	for pos, ci := range cm.index {
		c := columns[ci]
		*c.field(rec) = strings.TrimSpace(fields[pos])
		rec.present[c.name] = true
	}
	return rec, nil
}

// Importable reports whether fields would pass Map's shape checks.
func (cm *ColumnMap) Importable(fields []string) bool {
	return len(fields) == cm.width && !IsBlank(fields)
}

// IsBlank reports whether every field is empty after trimming.
func IsBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
