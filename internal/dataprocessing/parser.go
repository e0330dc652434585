package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/xuri/excelize/v2"

	"qoedash/pkg/contracts/domain"
)

// Supported upload formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var (
	// ErrEmptyFile is returned when an upload has no header row
	ErrEmptyFile = errors.New("file is empty")
	// ErrUnsupportedFormat is returned for content that is neither CSV nor XLSX
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// dateLayouts are tried in order. Slash dates are month first; day first is
// the fallback when the month would be out of range.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"2006/01/02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-Jan-2006",
	"2 January 2006",
}

// ParseError reports content that could not be decoded
type ParseError struct {
	Stage  string
	Row    int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Row > 0 && e.Column != "" {
		return fmt.Sprintf("%s failed at row %d, column %q: %v", e.Stage, e.Row, e.Column, e.Err)
	}
	if e.Row > 0 {
		return fmt.Sprintf("%s failed at row %d: %v", e.Stage, e.Row, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parser decodes measurement files into datasets
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser. A nil logger falls back to slog.Default().
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger.With("component", "parser")}
}

// DetectFormat picks the decoder from the file extension, falling back to
// content sniffing when the extension is unknown.
func DetectFormat(name string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}

	if bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		return FormatXLSX, nil
	}
	if strings.HasPrefix(http.DetectContentType(data), "text/") {
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
}

// Parse decodes the upload, validates its schema and converts every row to a
// record. The returned dataset has no ID; callers assign one per session.
func (p *Parser) Parse(name string, data []byte) (*domain.Dataset, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	format, err := DetectFormat(name, data)
	if err != nil {
		return nil, err
	}

	var source func() ([]string, error)
	switch format {
	case FormatXLSX:
		rows, err := readWorkbook(data)
		if err != nil {
			return nil, &ParseError{Stage: "open workbook", Err: err}
		}
		source = sliceSource(rows)
	default:
		r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
		r.FieldsPerRecord = -1
		r.LazyQuotes = true
		source = r.Read
	}

	dec, err := csvutil.NewDecoder(&tableReader{read: source, width: -1})
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, &ParseError{Stage: "read header", Err: err}
	}

	header := dec.Header()
	if err := ValidateSchema(header); err != nil {
		p.logger.Warn("schema validation failed",
			slog.String("file", name),
			slog.Any("columns", header),
			slog.String("error", err.Error()))
		return nil, err
	}

	ds := &domain.Dataset{
		FileName:  name,
		Format:    format,
		Columns:   header,
		HasRegion: hasColumn(header, ColumnRegion),
		Operators: PresentOperators(header),
		Warnings:  SchemaWarnings(header),
	}

	for row := 1; ; row++ {
		var m measurementRow
		if err := dec.Decode(&m); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &ParseError{Stage: "decode", Row: row, Err: err}
		}

		rec, err := toRecord(row, m, ds, format == FormatXLSX)
		if err != nil {
			return nil, err
		}
		ds.Records = append(ds.Records, rec)
	}

	p.logger.Info("dataset parsed",
		slog.String("file", name),
		slog.String("format", format),
		slog.Int("records", len(ds.Records)),
		slog.Int("operators", len(ds.Operators)),
		slog.Bool("has_region", ds.HasRegion),
		slog.Int("warnings", len(ds.Warnings)))

	return ds, nil
}

func toRecord(row int, m measurementRow, ds *domain.Dataset, excelDates bool) (domain.Record, error) {
	ts, err := parseDate(m.Date, excelDates)
	if err != nil {
		return domain.Record{}, &ParseError{Stage: "parse date", Row: row, Column: ColumnDate, Err: err}
	}

	rec := domain.Record{
		Row:       row,
		Timestamp: ts,
		Period:    ts.Format(domain.PeriodLayout),
		Location:  m.Location,
		Category:  domain.Category(m.MeasurementType),
		Parameter: m.Parameter,
		Values:    make(map[domain.Operator]domain.Value, len(ds.Operators)),
	}
	if ds.HasRegion {
		rec.Region = m.Region
	}

	lat, latOK := parseCoordinate(m.Latitude, 90)
	lon, lonOK := parseCoordinate(m.Longitude, 180)
	if latOK && lonOK {
		rec.Latitude, rec.Longitude, rec.HasCoordinates = lat, lon, true
	}

	for _, op := range ds.Operators {
		rec.Values[op] = ParseValue(m.operatorCell(op))
	}
	return rec, nil
}

func parseDate(raw string, excelSerial bool) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if excelSerial {
		if serial, ok := parseFloat(s); ok {
			return excelize.ExcelDateToTime(serial, false)
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

func parseCoordinate(raw string, limit float64) (float64, bool) {
	v, ok := parseFloat(strings.TrimSpace(raw))
	if !ok || math.Abs(v) > limit {
		return 0, false
	}
	return v, true
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func readWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
}

func sliceSource(rows [][]string) func() ([]string, error) {
	i := 0
	return func() ([]string, error) {
		if i >= len(rows) {
			return nil, io.EOF
		}
		i++
		return rows[i-1], nil
	}
}

// tableReader adapts a row source to csvutil. It trims header names, skips
// blank rows and pads short rows to the header width.
type tableReader struct {
	read  func() ([]string, error)
	width int
}

func (t *tableReader) Read() ([]string, error) {
	for {
		rec, err := t.read()
		if err != nil {
			return nil, err
		}
		if isBlankRow(rec) {
			continue
		}

		if t.width < 0 {
			header := make([]string, len(rec))
			for i, name := range rec {
				header[i] = strings.TrimSpace(name)
			}
			t.width = len(header)
			return header, nil
		}

		switch {
		case len(rec) < t.width:
			padded := make([]string, t.width)
			copy(padded, rec)
			return padded, nil
		case len(rec) > t.width:
			if !isBlankRow(rec[t.width:]) {
				return nil, fmt.Errorf("expected %d fields, found %d", t.width, len(rec))
			}
			return rec[:t.width], nil
		}
		return rec, nil
	}
}

func isBlankRow(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
