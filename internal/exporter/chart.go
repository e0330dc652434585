package exporter

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"qoedash/internal/dataprocessing"
	"qoedash/pkg/contracts/domain"
)

// ChartFormat selects the image encoding of a rendered chart
type ChartFormat string

// Supported chart formats
const (
	ChartSVG ChartFormat = "svg"
	ChartPNG ChartFormat = "png"
)

// Chart geometry
const (
	chartHeight   = 480
	chartMinWidth = 640
	barWidth      = 24
	barSpacing    = 8
)

var (
	// ErrNoChartData is returned for long forms without observations
	ErrNoChartData = errors.New("no data to chart")
	// ErrNonNumericChart is returned for long forms holding text values
	ErrNonNumericChart = errors.New("values are not numeric")
	// ErrUnknownChartFormat is returned for unsupported image formats
	ErrUnknownChartFormat = errors.New("unknown chart format")
)

// ParseChartFormat resolves a file extension to a chart format
func ParseChartFormat(ext string) (ChartFormat, error) {
	switch f := ChartFormat(strings.ToLower(strings.TrimPrefix(ext, "."))); f {
	case ChartSVG, ChartPNG:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownChartFormat, ext)
	}
}

// ContentType returns the MIME type of the format
func (f ChartFormat) ContentType() string {
	if f == ChartPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// RenderChart draws one bar per observation of lf, labeled with its location
// and date and filled with its operator's color.
func RenderChart(w io.Writer, lf domain.LongForm, palette dataprocessing.Palette, format ChartFormat) error {
	if lf.Empty || len(lf.Observations) == 0 {
		return ErrNoChartData
	}
	if !lf.Numeric {
		return ErrNonNumericChart
	}

	var provider chart.RendererProvider
	switch format {
	case ChartSVG:
		provider = chart.SVG
	case ChartPNG:
		provider = chart.PNG
	default:
		return fmt.Errorf("%w: %q", ErrUnknownChartFormat, format)
	}

	bars := make([]chart.Value, 0, len(lf.Observations))
	lo, hi := 0.0, 0.0
	for _, o := range lf.Observations {
		color := hexColor(palette.Swatch(o.Operator).Hex)
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%s %s (%s)", o.Location, o.Date, o.Operator),
			Value: o.Value.Number,
			Style: chart.Style{
				FillColor:   color,
				StrokeColor: color,
				StrokeWidth: 1,
			},
		})
		lo = math.Min(lo, o.Value.Number)
		hi = math.Max(hi, o.Value.Number)
	}
	if hi == lo {
		hi = lo + 1
	}

	width := len(bars)*(barWidth+barSpacing) + 2*barSpacing
	if width < chartMinWidth {
		width = chartMinWidth
	}

	graph := chart.BarChart{
		Title:      title(lf),
		TitleStyle: chart.Style{FontSize: 12},
		Width:      width,
		Height:     chartHeight,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.Style{
			FontSize:            7,
			TextRotationDegrees: 45,
		},
		YAxis: chart.YAxis{
			Name:  lf.Parameter,
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return formatFloat(f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	if err := graph.Render(provider, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func title(lf domain.LongForm) string {
	if lf.Category == "" {
		return lf.Parameter
	}
	return fmt.Sprintf("%s: %s (%s observations)", lf.Category, lf.Parameter, formatInt(len(lf.Observations)))
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
