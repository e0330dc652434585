package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// PeriodAll is the period sentinel that disables period filtering
const PeriodAll = "All"

const (
	// PeriodLayout formats the month-level period label, e.g. "January 2024"
	PeriodLayout = "January 2006"
	// DateLayout formats dates shown in popups and tables
	DateLayout = "02-01-2006"
)

// Category is the measurement category of a record
type Category string

const (
	CategoryRouteTest  Category = "Route Test"
	CategoryStaticTest Category = "Static Test"
)

// Categories lists the measurement categories in display order
var Categories = []Category{CategoryRouteTest, CategoryStaticTest}

// Slug returns the URL form of the category
func (c Category) Slug() string {
	switch c {
	case CategoryRouteTest:
		return "route"
	case CategoryStaticTest:
		return "static"
	default:
		return ""
	}
}

// CategoryFromSlug resolves a URL slug back to a category
func CategoryFromSlug(slug string) (Category, bool) {
	for _, c := range Categories {
		if c.Slug() == slug {
			return c, true
		}
	}
	return "", false
}

// Operator is a mobile network provider with a value column in the dataset
type Operator string

const (
	OperatorTelkomsel Operator = "Telkomsel"
	OperatorIOH       Operator = "IOH"
	OperatorXLAxiata  Operator = "XL Axiata"
)

// KnownOperators is the fixed operator list, in aggregation order
var KnownOperators = []Operator{OperatorTelkomsel, OperatorIOH, OperatorXLAxiata}

// Value is a single operator cell. Null cells carry no value at all.
type Value struct {
	Raw     string
	Number  float64
	Numeric bool
	Null    bool
}

// String formats numeric values with two decimals and returns other values verbatim
func (v Value) String() string {
	if v.Null {
		return ""
	}
	if v.Numeric {
		return fmt.Sprintf("%.2f", v.Number)
	}
	return v.Raw
}

// MarshalJSON emits numbers as JSON numbers, text as strings and nulls as null
func (v Value) MarshalJSON() ([]byte, error) {
	switch {
	case v.Null:
		return []byte("null"), nil
	case v.Numeric:
		return json.Marshal(v.Number)
	default:
		return json.Marshal(v.Raw)
	}
}

// Record is one measurement row of the uploaded file
type Record struct {
	Row            int                `json:"row"`
	Timestamp      time.Time          `json:"timestamp"`
	Period         string             `json:"period"`
	Region         string             `json:"region,omitempty"`
	Location       string             `json:"location"`
	Latitude       float64            `json:"latitude"`
	Longitude      float64            `json:"longitude"`
	HasCoordinates bool               `json:"has_coordinates"`
	Category       Category           `json:"category"`
	Parameter      string             `json:"parameter"`
	Values         map[Operator]Value `json:"values"`
}

// Date returns the display date of the record
func (r Record) Date() string {
	return r.Timestamp.Format(DateLayout)
}

// Value returns the operator cell, reporting false for null or absent cells
func (r Record) Value(op Operator) (Value, bool) {
	v, ok := r.Values[op]
	if !ok || v.Null {
		return Value{}, false
	}
	return v, true
}

// Warning is a non-fatal condition detected while loading a dataset
type Warning struct {
	Code    string `json:"code"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

const (
	WarningRegionColumnMissing   = "region_column_missing"
	WarningOperatorColumnMissing = "operator_column_missing"
)

// Dataset is an ordered, immutable collection of records sharing one schema.
// Filtering produces a new Dataset and never touches the source records.
type Dataset struct {
	ID          string     `json:"id"`
	Fingerprint string     `json:"fingerprint"`
	FileName    string     `json:"file_name"`
	Format      string     `json:"format"`
	Columns     []string   `json:"columns"`
	HasRegion   bool       `json:"has_region"`
	Operators   []Operator `json:"operators"`
	Warnings    []Warning  `json:"warnings,omitempty"`
	LoadedAt    time.Time  `json:"loaded_at"`
	Records     []Record   `json:"-"`
}

// Len returns the number of records
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// IsEmpty reports whether the dataset holds no records
func (d *Dataset) IsEmpty() bool {
	return d.Len() == 0
}

// WithRecords returns a view sharing this dataset's schema over the given records
func (d *Dataset) WithRecords(records []Record) *Dataset {
	view := *d
	view.Records = records
	return &view
}

// Clone returns a session copy with its own identity and record slice
func (d *Dataset) Clone(id string, loadedAt time.Time) *Dataset {
	c := d.WithRecords(append([]Record(nil), d.Records...))
	c.ID = id
	c.LoadedAt = loadedAt
	return c
}

// HasOperator reports whether the operator column is present
func (d *Dataset) HasOperator(op Operator) bool {
	for _, o := range d.Operators {
		if o == op {
			return true
		}
	}
	return false
}

// Summary describes a dataset without its records
func (d *Dataset) Summary() DatasetSummary {
	return DatasetSummary{
		ID:          d.ID,
		Fingerprint: d.Fingerprint,
		FileName:    d.FileName,
		Format:      d.Format,
		Columns:     d.Columns,
		HasRegion:   d.HasRegion,
		Operators:   d.Operators,
		RecordCount: len(d.Records),
		Warnings:    d.Warnings,
		LoadedAt:    d.LoadedAt,
	}
}

// DatasetSummary is the API representation of a loaded dataset
type DatasetSummary struct {
	ID          string     `json:"id"`
	Fingerprint string     `json:"fingerprint"`
	FileName    string     `json:"file_name"`
	Format      string     `json:"format"`
	Columns     []string   `json:"columns"`
	HasRegion   bool       `json:"has_region"`
	Operators   []Operator `json:"operators"`
	RecordCount int        `json:"record_count"`
	Warnings    []Warning  `json:"warnings,omitempty"`
	LoadedAt    time.Time  `json:"loaded_at"`
}

// FilterSelection is the user's current period, region and location choice
type FilterSelection struct {
	Period    string   `json:"period"`
	Regions   []string `json:"regions"`
	Locations []string `json:"locations"`
}
