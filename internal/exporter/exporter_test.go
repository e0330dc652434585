package exporter

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"qoedash/internal/dataprocessing"
	"qoedash/pkg/contracts/domain"
)

func numeric(v float64) domain.Value {
	return domain.Value{Raw: formatFloat(v), Number: v, Numeric: true}
}

func sampleLongForm() domain.LongForm {
	ts := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	obs := []domain.Observation{
		{Row: 1, Location: "Bandung", Region: "Jabar", Timestamp: ts, Date: "2024-01-15", Period: "Jan 2024",
			Category: domain.CategoryRouteTest, Parameter: "RSRP", Operator: domain.OperatorTelkomsel, Value: numeric(-85.5)},
		{Row: 1, Location: "Bandung", Region: "Jabar", Timestamp: ts, Date: "2024-01-15", Period: "Jan 2024",
			Category: domain.CategoryRouteTest, Parameter: "RSRP", Operator: domain.OperatorIOH, Value: numeric(-90)},
	}
	return domain.LongForm{
		Category:     domain.CategoryRouteTest,
		Parameter:    "RSRP",
		Numeric:      true,
		Observations: obs,
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, WriteOptions{
		Headers:   []string{"a", "b"},
		Records:   [][]string{{"1", "x,y"}},
		BOMPrefix: true,
	})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))
	assert.Equal(t, "a,b\n1,\"x,y\"\n", string(bytes.TrimPrefix(buf.Bytes(), utf8BOM)))
}

func TestWriteObservations(t *testing.T) {
	t.Run("rows in observation order", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteObservations(&buf, WriteOptions{}, sampleLongForm()))

		rows, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, []string{"category", "parameter", "row", "date", "period", "region", "location", "operator", "value"}, rows[0])
		assert.Equal(t, []string{"Route Test", "RSRP", "1", "2024-01-15", "Jan 2024", "Jabar", "Bandung", "Telkomsel", "-85.5"}, rows[1])
		assert.Equal(t, "IOH", rows[2][7])
		assert.Equal(t, "-90", rows[2][8])
	})

	t.Run("header only when empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteObservations(&buf, WriteOptions{BOMPrefix: true}, domain.LongForm{Empty: true}))

		rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(buf.Bytes(), utf8BOM))).ReadAll()
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("text values written verbatim", func(t *testing.T) {
		lf := sampleLongForm()
		lf.Observations[0].Value = domain.Value{Raw: "N/A"}

		var buf bytes.Buffer
		require.NoError(t, WriteObservations(&buf, WriteOptions{}, lf))
		assert.Contains(t, buf.String(), "N/A")
	})
}

func TestWriteComparisonWorkbook(t *testing.T) {
	route := domain.ComparisonTable{
		Category:  domain.CategoryRouteTest,
		Parameter: "RSRP",
		Rows: []domain.ComparisonRow{{
			Operator: domain.OperatorTelkomsel, Parameter: "RSRP", Category: domain.CategoryRouteTest,
			MaxValue: -80, MaxLocation: "Bandung", MaxDate: "2024-01-15",
			MinValue: -95, MinLocation: "Bogor", MinDate: "2024-01-16",
		}},
	}
	static := domain.ComparisonTable{
		Category: domain.CategoryStaticTest,
		Empty:    true,
		Message:  "no comparison data",
		Rows:     []domain.ComparisonRow{},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteComparisonWorkbook(&buf, route, static))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Route Test", "Static Test"}, f.GetSheetList())

	rows, err := f.GetRows("Route Test")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, ComparisonHeaders, rows[0])
	assert.Equal(t, "Telkomsel", rows[1][0])
	assert.Equal(t, "-80", rows[1][2])
	assert.Equal(t, "Bogor", rows[1][6])

	msg, err := f.GetCellValue("Static Test", "A2")
	require.NoError(t, err)
	assert.Equal(t, "no comparison data", msg)
}

func TestRenderChart(t *testing.T) {
	palette := dataprocessing.DefaultPalette()

	t.Run("svg", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderChart(&buf, sampleLongForm(), palette, ChartSVG))
		assert.Contains(t, buf.String(), "<svg")
	})

	t.Run("png", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderChart(&buf, sampleLongForm(), palette, ChartPNG))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
	})

	t.Run("empty long form", func(t *testing.T) {
		err := RenderChart(&bytes.Buffer{}, domain.LongForm{Empty: true}, palette, ChartSVG)
		assert.ErrorIs(t, err, ErrNoChartData)
	})

	t.Run("non numeric", func(t *testing.T) {
		lf := sampleLongForm()
		lf.Numeric = false
		assert.ErrorIs(t, RenderChart(&bytes.Buffer{}, lf, palette, ChartSVG), ErrNonNumericChart)
	})

	t.Run("unknown format", func(t *testing.T) {
		assert.ErrorIs(t, RenderChart(&bytes.Buffer{}, sampleLongForm(), palette, "gif"), ErrUnknownChartFormat)
	})
}

func TestParseChartFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ChartFormat
		wantErr bool
	}{
		{in: "svg", want: ChartSVG},
		{in: ".PNG", want: ChartPNG},
		{in: "jpg", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseChartFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownChartFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got.ContentType())
		})
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", formatValue(domain.Value{Null: true}))
	assert.Equal(t, "12.345", formatValue(domain.Value{Number: 12.345, Numeric: true}))
	assert.Equal(t, "n/a", formatValue(domain.Value{Raw: "n/a"}))
	assert.Equal(t, "13.40", formatFloat(13.4))
}
