package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"qoedash/internal/dataprocessing"
	apierrors "qoedash/internal/errors"
	"qoedash/internal/infrastructure"
	"qoedash/pkg/contracts/domain"
)

// Record page bounds
const (
	DefaultRecordLimit = 100
	MaxRecordLimit     = 1000
)

// DatasetGetter resolves session datasets by ID
type DatasetGetter interface {
	Get(ctx context.Context, id string) (*domain.Dataset, error)
}

// Query is one filter and parameter selection over a dataset. An empty Period
// selects every period. When AllLocations is set, Locations is ignored and
// every location left after the region filter is selected.
type Query struct {
	Period          string
	Regions         []string
	Locations       []string
	AllLocations    bool
	RouteParameter  string
	StaticParameter string
}

// RecordPage is a window over the filtered records
type RecordPage struct {
	Total   int             `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
	Records []domain.Record `json:"records"`
}

// ChartsView holds the long form of both categories
type ChartsView struct {
	Selection domain.FilterSelection `json:"selection"`
	Route     domain.LongForm        `json:"route"`
	Static    domain.LongForm        `json:"static"`
}

// ComparisonView holds the comparison tables of both categories
type ComparisonView struct {
	Selection domain.FilterSelection `json:"selection"`
	Route     domain.ComparisonTable `json:"route"`
	Static    domain.ComparisonTable `json:"static"`
}

// ProfileView holds the descriptive statistics of both categories
type ProfileView struct {
	Selection domain.FilterSelection `json:"selection"`
	Route     domain.Profile         `json:"route"`
	Static    domain.Profile         `json:"static"`
}

// scope is a query resolved against one dataset
type scope struct {
	dataset         *domain.Dataset
	selection       domain.FilterSelection
	filtered        *domain.Dataset
	route           *domain.Dataset
	static          *domain.Dataset
	routeParameter  string
	staticParameter string
}

func (sc *scope) subset(category domain.Category) (*domain.Dataset, string, error) {
	switch category {
	case domain.CategoryRouteTest:
		return sc.route, sc.routeParameter, nil
	case domain.CategoryStaticTest:
		return sc.static, sc.staticParameter, nil
	default:
		return nil, "", fmt.Errorf("%w: %q", apierrors.ErrUnknownCategory, category)
	}
}

// DashboardService computes the dashboard views of a session dataset. Every
// view is recomputed from the immutable records on each call.
type DashboardService struct {
	datasets DatasetGetter
	palette  dataprocessing.Palette
	metrics  *infrastructure.BusinessMetrics
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewDashboardService creates a dashboard service reading from datasets
func NewDashboardService(datasets DatasetGetter, palette dataprocessing.Palette, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		datasets: datasets,
		palette:  palette,
		metrics:  metrics,
		tracer:   otel.Tracer(infrastructure.InstrumentationName),
		logger:   infrastructure.WithComponent(logger, "dashboard_service"),
	}
}

// Palette returns the operator colors used for markers and charts
func (s *DashboardService) Palette() dataprocessing.Palette {
	return s.palette
}

// resolve loads the dataset and applies the filter cascade of q
func (s *DashboardService) resolve(ctx context.Context, id string, q Query) (*scope, error) {
	ds, err := s.datasets.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	sel := Selection(ds, q)
	filtered := dataprocessing.ApplyFilters(ds, sel)
	route, static := dataprocessing.SplitByCategory(filtered)

	sc := &scope{
		dataset:         ds,
		selection:       sel,
		filtered:        filtered,
		route:           route,
		static:          static,
		routeParameter:  q.RouteParameter,
		staticParameter: q.StaticParameter,
	}
	if sc.routeParameter == "" {
		sc.routeParameter = dataprocessing.DefaultParameter(route)
	}
	if sc.staticParameter == "" {
		sc.staticParameter = dataprocessing.DefaultParameter(static)
	}
	return sc, nil
}

// Selection turns q into the filter selection it denotes on ds
func Selection(ds *domain.Dataset, q Query) domain.FilterSelection {
	sel := domain.FilterSelection{
		Period:    q.Period,
		Regions:   nonNil(q.Regions),
		Locations: nonNil(q.Locations),
	}
	if sel.Period == "" {
		sel.Period = domain.PeriodAll
	}
	if q.AllLocations {
		byRegion := dataprocessing.FilterByRegion(dataprocessing.FilterByPeriod(ds, sel.Period), sel.Regions)
		sel.Locations = nonNil(dataprocessing.DistinctLocations(byRegion))
	}
	return sel
}

// observe starts a span for view and returns the function that ends it
func (s *DashboardService) observe(ctx context.Context, view, id string) (context.Context, func(empty bool, err error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "dashboard."+view,
		trace.WithAttributes(attribute.String("dataset.id", id)))

	return ctx, func(empty bool, err error) {
		defer span.End()
		if err != nil {
			infrastructure.RecordError(ctx, err)
			if !isSelectionError(err) {
				infrastructure.RecordSystemError(ctx, s.metrics, infrastructure.ErrorType(err), "dashboard_service")
			}
			return
		}
		span.SetAttributes(attribute.Bool("view.empty", empty))
		infrastructure.RecordViewMetrics(ctx, s.metrics, view, time.Since(start), empty)
		s.logger.DebugContext(ctx, "view computed",
			slog.String("view", view),
			slog.String("dataset_id", id),
			slog.Bool("empty", empty),
			slog.Duration("duration", time.Since(start)))
	}
}

// Options returns the cascading filter choices for q
func (s *DashboardService) Options(ctx context.Context, id string, q Query) (domain.FilterOptions, error) {
	ctx, done := s.observe(ctx, "options", id)
	sc, err := s.resolve(ctx, id, q)
	if err != nil {
		done(false, err)
		return domain.FilterOptions{}, err
	}
	opts := dataprocessing.BuildOptions(sc.dataset, sc.selection)
	done(len(opts.Periods) == 0, nil)
	return opts, nil
}

// Records returns a page of the filtered records. limit is clamped to
// MaxRecordLimit and defaults to DefaultRecordLimit.
func (s *DashboardService) Records(ctx context.Context, id string, q Query, limit, offset int) (RecordPage, error) {
	ctx, done := s.observe(ctx, "records", id)
	sc, err := s.resolve(ctx, id, q)
	if err != nil {
		done(false, err)
		return RecordPage{}, err
	}

	if limit <= 0 {
		limit = DefaultRecordLimit
	}
	if limit > MaxRecordLimit {
		limit = MaxRecordLimit
	}
	if offset < 0 {
		offset = 0
	}

	total := sc.filtered.Len()
	page := RecordPage{Total: total, Limit: limit, Offset: offset, Records: []domain.Record{}}
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		page.Records = sc.filtered.Records[offset:end]
	}
	done(total == 0, nil)
	return page, nil
}

// Charts returns the long form of the selected parameter for both categories
func (s *DashboardService) Charts(ctx context.Context, id string, q Query) (ChartsView, error) {
	ctx, done := s.observe(ctx, "charts", id)
	sc, err := s.resolve(ctx, id, q)
	if err != nil {
		done(false, err)
		return ChartsView{}, err
	}
	view := ChartsView{
		Selection: sc.selection,
		Route:     longForm(sc.route, sc.routeParameter, domain.CategoryRouteTest),
		Static:    longForm(sc.static, sc.staticParameter, domain.CategoryStaticTest),
	}
	done(view.Route.Empty && view.Static.Empty, nil)
	return view, nil
}

// Chart returns the long form of one category
func (s *DashboardService) Chart(ctx context.Context, id string, q Query, category domain.Category) (domain.LongForm, error) {
	ctx, done := s.observe(ctx, "chart", id)
	sc, err := s.resolve(ctx, id, q)
	if err != nil {
		done(false, err)
		return domain.LongForm{}, err
	}
	subset, parameter, err := sc.subset(category)
	if err != nil {
		done(false, err)
		return domain.LongForm{}, err
	}
	lf := longForm(subset, parameter, category)
	done(lf.Empty, nil)
	return lf, nil
}

// Map returns the marker map for the selected parameters
func (s *DashboardService) Map(ctx context.Context, id string, q Query) (domain.MarkerMap, error) {
	ctx, done := s.observe(ctx, "map", id)
	sc, err := s.resolve(ctx, id, q)
	if err != nil {
		done(false, err)
		return domain.MarkerMap{}, err
	}
	m := s.buildMap(ctx, sc)
	done(!m.Available, nil)
	return m, nil
}

func (s *DashboardService) buildMap(ctx context.Context, sc *scope) domain.MarkerMap {
	m := dataprocessing.BuildMarkers(sc.route, sc.static, sc.routeParameter, sc.staticParameter, s.palette)

	counts := make(map[domain.Category]int, len(domain.Categories))
	for _, marker := range m.Markers {
		counts[marker.Category]++
	}
	for _, c := range domain.Categories {
		infrastructure.RecordMarkerMetrics(ctx, s.metrics, c.Slug(), counts[c])
	}
	return m
}

// Comparison returns the comparison tables for the selected parameters
func (s *DashboardService) Comparison(ctx context.Context, id string, q Query) (ComparisonView, error) {
	ctx, done := s.observe(ctx, "comparison", id)
	sc, err := s.resolve(ctx, id, q)
	if err != nil {
		done(false, err)
		return ComparisonView{}, err
	}
	view := ComparisonView{
		Selection: sc.selection,
		Route:     dataprocessing.BuildComparison(sc.route, sc.routeParameter, domain.CategoryRouteTest),
		Static:    dataprocessing.BuildComparison(sc.static, sc.staticParameter, domain.CategoryStaticTest),
	}
	done(view.Route.Empty && view.Static.Empty, nil)
	return view, nil
}

// Profile returns descriptive statistics for the selected parameters
func (s *DashboardService) Profile(ctx context.Context, id string, q Query) (ProfileView, error) {
	ctx, done := s.observe(ctx, "profile", id)
	sc, err := s.resolve(ctx, id, q)
	if err != nil {
		done(false, err)
		return ProfileView{}, err
	}
	view := ProfileView{
		Selection: sc.selection,
		Route:     dataprocessing.BuildProfile(sc.route, sc.routeParameter, domain.CategoryRouteTest),
		Static:    dataprocessing.BuildProfile(sc.static, sc.staticParameter, domain.CategoryStaticTest),
	}
	done(view.Route.Empty && view.Static.Empty, nil)
	return view, nil
}

// Dashboard computes every panel for q. Empty panels carry their own message
// and never fail the whole view.
func (s *DashboardService) Dashboard(ctx context.Context, id string, q Query) (domain.DashboardView, error) {
	ctx, done := s.observe(ctx, "dashboard", id)
	sc, err := s.resolve(ctx, id, q)
	if err != nil {
		done(false, err)
		return domain.DashboardView{}, err
	}

	view := domain.DashboardView{
		Dataset:          sc.dataset.Summary(),
		Selection:        sc.selection,
		Options:          dataprocessing.BuildOptions(sc.dataset, sc.selection),
		RecordCount:      sc.filtered.Len(),
		RouteChart:       longForm(sc.route, sc.routeParameter, domain.CategoryRouteTest),
		StaticChart:      longForm(sc.static, sc.staticParameter, domain.CategoryStaticTest),
		Map:              s.buildMap(ctx, sc),
		RouteComparison:  dataprocessing.BuildComparison(sc.route, sc.routeParameter, domain.CategoryRouteTest),
		StaticComparison: dataprocessing.BuildComparison(sc.static, sc.staticParameter, domain.CategoryStaticTest),
		Warnings:         sc.dataset.Warnings,
	}
	done(view.RecordCount == 0, nil)
	return view, nil
}

func longForm(ds *domain.Dataset, parameter string, category domain.Category) domain.LongForm {
	lf := dataprocessing.BuildLongForm(ds, parameter)
	lf.Category = category
	return lf
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// isSelectionError reports errors caused by the request rather than the
// service
func isSelectionError(err error) bool {
	return errors.Is(err, apierrors.ErrDatasetNotFound) || errors.Is(err, apierrors.ErrUnknownCategory)
}
