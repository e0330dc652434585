package dataprocessing

import (
	"strings"

	"qoedash/pkg/contracts/domain"
)

// Column names of the measurement file. Matching is exact and case-sensitive.
const (
	ColumnDate            = "Tanggal"
	ColumnMeasurementType = "Jenis Pengukuran"
	ColumnLatitude        = "Latitude"
	ColumnLongitude       = "Longitude"
	ColumnLocation        = "Alamat"
	ColumnParameter       = "Parameter"
	ColumnRegion          = "Kabupaten/Kota"
)

// RequiredColumns must all be present for a file to be processed
var RequiredColumns = []string{
	ColumnDate,
	ColumnMeasurementType,
	ColumnLatitude,
	ColumnLongitude,
	ColumnLocation,
	ColumnParameter,
}

// nullTokens are cell values treated as missing
var nullTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"NaN":  {},
	"nan":  {},
	"-nan": {},
	"null": {},
	"NULL": {},
	"None": {},
	"#N/A": {},
	"<NA>": {},
}

// measurementRow is the csvutil mapping of one file row. Columns missing from
// the header decode as empty strings.
type measurementRow struct {
	Date            string `csv:"Tanggal"`
	MeasurementType string `csv:"Jenis Pengukuran"`
	Latitude        string `csv:"Latitude"`
	Longitude       string `csv:"Longitude"`
	Location        string `csv:"Alamat"`
	Parameter       string `csv:"Parameter"`
	Region          string `csv:"Kabupaten/Kota"`
	Telkomsel       string `csv:"Telkomsel"`
	XLAxiata        string `csv:"XL Axiata"`
	IOH             string `csv:"IOH"`
}

func (r measurementRow) operatorCell(op domain.Operator) string {
	switch op {
	case domain.OperatorTelkomsel:
		return r.Telkomsel
	case domain.OperatorXLAxiata:
		return r.XLAxiata
	case domain.OperatorIOH:
		return r.IOH
	default:
		return ""
	}
}

// ParseValue classifies a raw cell as null, numeric or text
func ParseValue(raw string) domain.Value {
	trimmed := strings.TrimSpace(raw)
	if _, ok := nullTokens[trimmed]; ok {
		return domain.Value{Raw: raw, Null: true}
	}
	if n, ok := parseFloat(trimmed); ok {
		return domain.Value{Raw: raw, Number: n, Numeric: true}
	}
	return domain.Value{Raw: raw}
}

func hasColumn(columns []string, name string) bool {
	for _, c := range columns {
		if c == name {
			return true
		}
	}
	return false
}
