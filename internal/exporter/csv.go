package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jszwec/csvutil"

	"qoedash/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes headers and records to w
func WriteCSV(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// observationRow is the CSV layout of one long-form observation
type observationRow struct {
	Category  string `csv:"category"`
	Parameter string `csv:"parameter"`
	Row       int    `csv:"row"`
	Date      string `csv:"date"`
	Period    string `csv:"period"`
	Region    string `csv:"region"`
	Location  string `csv:"location"`
	Operator  string `csv:"operator"`
	Value     string `csv:"value"`
}

// WriteObservations writes the observations of every long form to w. The
// header is written even when there are no observations. Only BOMPrefix of
// options is used.
func WriteObservations(w io.Writer, options WriteOptions, forms ...domain.LongForm) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	enc := csvutil.NewEncoder(writer)
	if err := enc.EncodeHeader(observationRow{}); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for _, lf := range forms {
		for _, o := range lf.Observations {
			row := observationRow{
				Category:  string(o.Category),
				Parameter: o.Parameter,
				Row:       o.Row,
				Date:      o.Date,
				Period:    o.Period,
				Region:    o.Region,
				Location:  o.Location,
				Operator:  string(o.Operator),
				Value:     formatValue(o.Value),
			}
			if err := enc.Encode(row); err != nil {
				return fmt.Errorf("failed to write observation row %d: %w", o.Row, err)
			}
		}
	}

	writer.Flush()
	return writer.Error()
}
