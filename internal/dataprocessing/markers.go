package dataprocessing

import (
	"fmt"
	"html"
	"strings"

	"qoedash/pkg/contracts/domain"
)

// DefaultZoom is the initial zoom level of the marker map
const DefaultZoom = 8

// markerStyle is the per-category icon template
type markerStyle struct {
	shape       string
	animation   string
	period      float64
	delayBucket int
	delayStep   float64
	anchor      [2]int
}

var markerStyles = map[domain.Category]markerStyle{
	domain.CategoryRouteTest: {
		shape:       "map-marker",
		animation:   "pulse",
		period:      1.5,
		delayBucket: 5,
		delayStep:   0.2,
		anchor:      [2]int{15, 30},
	},
	domain.CategoryStaticTest: {
		shape:       "wifi",
		animation:   "pulse-fast",
		period:      0.8,
		delayBucket: 3,
		delayStep:   0.3,
		anchor:      [2]int{15, 15},
	},
}

// BuildMarkers converts the route and static records measuring the requested
// parameters into marker descriptors. Records without coordinates are skipped.
// When neither subset has data the map is reported unavailable.
func BuildMarkers(route, static *domain.Dataset, routeParameter, staticParameter string, palette Palette) domain.MarkerMap {
	m := domain.MarkerMap{
		Zoom:            DefaultZoom,
		RouteParameter:  routeParameter,
		StaticParameter: staticParameter,
		Markers:         []domain.Marker{},
		Legend:          BuildLegend(palette),
	}

	routeView := FilterByParameter(route, routeParameter)
	staticView := FilterByParameter(static, staticParameter)
	if routeView.IsEmpty() && staticView.IsEmpty() {
		m.Message = "no data for the selected parameters"
		return m
	}

	center, ok := meanCenter(routeView.Records, staticView.Records)
	if !ok {
		m.Message = "no records with valid coordinates"
		return m
	}
	m.Center = center
	m.Available = true

	m.Markers = appendMarkers(m.Markers, routeView, domain.CategoryRouteTest, palette)
	m.Markers = appendMarkers(m.Markers, staticView, domain.CategoryStaticTest, palette)
	return m
}

// BuildLegend describes operator colors and category icons
func BuildLegend(palette Palette) domain.Legend {
	legend := domain.Legend{Operators: palette.Legend()}
	for _, c := range domain.Categories {
		s := markerStyles[c]
		legend.Categories = append(legend.Categories, domain.LegendCategory{
			Category:  c,
			Shape:     s.shape,
			Animation: s.animation,
		})
	}
	return legend
}

func meanCenter(sets ...[]domain.Record) (domain.LatLng, bool) {
	var lat, lng float64
	n := 0
	for _, records := range sets {
		for _, r := range records {
			if !r.HasCoordinates {
				continue
			}
			lat += r.Latitude
			lng += r.Longitude
			n++
		}
	}
	if n == 0 {
		return domain.LatLng{}, false
	}
	return domain.LatLng{Lat: lat / float64(n), Lng: lng / float64(n)}, true
}

func appendMarkers(markers []domain.Marker, ds *domain.Dataset, category domain.Category, palette Palette) []domain.Marker {
	style := markerStyles[category]
	for _, op := range ds.Operators {
		icon := domain.IconStyle{
			Shape:         style.shape,
			Animation:     style.animation,
			PeriodSeconds: style.period,
			DelaySeconds:  float64(DelayBucket(op, style.delayBucket)) * style.delayStep,
			Size:          [2]int{30, 30},
			Anchor:        style.anchor,
		}
		color := palette.Color(op)

		for _, r := range ds.Records {
			v, ok := r.Value(op)
			if !ok || !r.HasCoordinates {
				continue
			}
			markers = append(markers, domain.Marker{
				Position:  domain.LatLng{Lat: r.Latitude, Lng: r.Longitude},
				Category:  category,
				Operator:  op,
				Color:     color,
				Icon:      icon,
				Popup:     popupHTML(r, category, op, v, ds.HasRegion),
				Tooltip:   fmt.Sprintf("%s: %s - %s", category, op, r.Location),
				Location:  r.Location,
				Region:    r.Region,
				Parameter: r.Parameter,
				Value:     v.String(),
				Date:      r.Date(),
				Cluster:   true,
			})
		}
	}
	return markers
}

func popupHTML(r domain.Record, category domain.Category, op domain.Operator, v domain.Value, withRegion bool) string {
	var b strings.Builder
	line := func(label, value string) {
		fmt.Fprintf(&b, "<b>%s:</b> %s<br>", label, html.EscapeString(value))
	}

	line(ColumnMeasurementType, string(category))
	line("Lokasi", r.Location)
	if withRegion {
		line(ColumnRegion, r.Region)
	}
	line("Operator", string(op))
	line(ColumnParameter, r.Parameter)
	line("Nilai", v.String())
	line(ColumnDate, r.Date())

	return strings.TrimSuffix(b.String(), "<br>")
}
