package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qoedash/internal/dataprocessing"
	apierrors "qoedash/internal/errors"
	"qoedash/internal/shared/testutil"
	"qoedash/pkg/contracts/domain"
)

func newTestDashboard(t *testing.T) (*DashboardService, string) {
	t.Helper()
	datasets := newTestDatasetService(t)
	ds, err := datasets.Upload(context.Background(), "drive.csv", []byte(testutil.SampleMeasurementsCSV))
	require.NoError(t, err)

	logger, _ := testutil.NewTestLogger(t)
	return NewDashboardService(datasets, dataprocessing.DefaultPalette(), nil, logger), ds.ID
}

var everything = Query{AllLocations: true}

func TestSelection(t *testing.T) {
	ds, err := dataprocessing.NewParser(nil).Parse("drive.csv", []byte(testutil.SampleMeasurementsCSV))
	require.NoError(t, err)

	tests := []struct {
		name string
		q    Query
		want domain.FilterSelection
	}{
		{
			name: "defaults select every location",
			q:    everything,
			want: domain.FilterSelection{
				Period:    domain.PeriodAll,
				Regions:   []string{},
				Locations: []string{"Site A", "Site B", "Site C", "Site D", "Site E"},
			},
		},
		{
			name: "all locations follow the region filter",
			q:    Query{Period: "January 2024", Regions: []string{"Bandung"}, AllLocations: true},
			want: domain.FilterSelection{
				Period:    "January 2024",
				Regions:   []string{"Bandung"},
				Locations: []string{"Site C"},
			},
		},
		{
			name: "explicit empty locations stay empty",
			q:    Query{},
			want: domain.FilterSelection{
				Period:    domain.PeriodAll,
				Regions:   []string{},
				Locations: []string{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Selection(ds, tt.q))
		})
	}
}

func TestSelection_BlankLocation(t *testing.T) {
	content := testutil.MeasurementCSV(testutil.MeasurementHeader,
		"2024-01-15,Route Test,-6.2,106.8,Site A,Jakarta,RSRP,-90,-95,-100",
		"2024-01-16,Route Test,-6.3,106.9,,Jakarta,RSRP,-85,-99,-101")
	ds, err := dataprocessing.NewParser(nil).Parse("drive.csv", content)
	require.NoError(t, err)

	sel := Selection(ds, everything)
	assert.Equal(t, []string{"", "Site A"}, sel.Locations)
	assert.Equal(t, 2, dataprocessing.ApplyFilters(ds, sel).Len())

	lf := dataprocessing.BuildLongForm(dataprocessing.ApplyFilters(ds, sel), "RSRP")
	assert.Len(t, lf.Observations, 6)
}

func TestDashboardServiceCharts(t *testing.T) {
	svc, id := newTestDashboard(t)

	view, err := svc.Charts(context.Background(), id, everything)
	require.NoError(t, err)

	route := view.Route
	assert.Equal(t, domain.CategoryRouteTest, route.Category)
	assert.Equal(t, "RSRP", route.Parameter)
	assert.True(t, route.Numeric)
	require.Len(t, route.Observations, 5)
	require.True(t, route.Extremes.Determinable)
	assert.Equal(t, -85.0, route.Extremes.Max.Value)
	assert.Equal(t, "Site B", route.Extremes.Max.Location)
	assert.Equal(t, -101.0, route.Extremes.Min.Value)
	assert.Equal(t, domain.OperatorIOH, route.Extremes.Min.Operator)

	assert.Equal(t, "RSRP", view.Static.Parameter)
	assert.Len(t, view.Static.Observations, 3)
}

func TestDashboardServiceParameterDefaults(t *testing.T) {
	svc, id := newTestDashboard(t)

	view, err := svc.Charts(context.Background(), id, Query{Period: "February 2024", AllLocations: true})
	require.NoError(t, err)
	assert.Equal(t, "SINR", view.Route.Parameter)
	assert.Equal(t, "Throughput", view.Static.Parameter)
	assert.Len(t, view.Static.Observations, 2)

	view, err = svc.Charts(context.Background(), id, Query{AllLocations: true, RouteParameter: "SINR", StaticParameter: "Latency"})
	require.NoError(t, err)
	assert.Len(t, view.Route.Observations, 3)
	assert.True(t, view.Static.Empty)
	assert.NotEmpty(t, view.Static.Message)
}

func TestDashboardServiceChart(t *testing.T) {
	svc, id := newTestDashboard(t)
	ctx := context.Background()

	lf, err := svc.Chart(ctx, id, everything, domain.CategoryStaticTest)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryStaticTest, lf.Category)
	assert.Len(t, lf.Observations, 3)

	_, err = svc.Chart(ctx, id, everything, domain.Category("Walk Test"))
	assert.ErrorIs(t, err, apierrors.ErrUnknownCategory)
}

func TestDashboardServiceMap(t *testing.T) {
	svc, id := newTestDashboard(t)
	ctx := context.Background()

	m, err := svc.Map(ctx, id, everything)
	require.NoError(t, err)
	assert.True(t, m.Available)
	assert.Equal(t, dataprocessing.DefaultZoom, m.Zoom)
	assert.Len(t, m.Markers, 8)

	empty, err := svc.Map(ctx, id, Query{})
	require.NoError(t, err)
	assert.False(t, empty.Available)
	assert.Empty(t, empty.Markers)
}

func TestDashboardServiceComparison(t *testing.T) {
	svc, id := newTestDashboard(t)

	view, err := svc.Comparison(context.Background(), id, everything)
	require.NoError(t, err)
	require.Len(t, view.Route.Rows, 3)

	byOp := make(map[domain.Operator]domain.ComparisonRow)
	for _, r := range view.Route.Rows {
		byOp[r.Operator] = r
	}
	assert.Equal(t, -85.0, byOp[domain.OperatorTelkomsel].MaxValue)
	assert.Equal(t, "Site B", byOp[domain.OperatorTelkomsel].MaxLocation)
	assert.Equal(t, -90.0, byOp[domain.OperatorTelkomsel].MinValue)
	assert.Equal(t, -101.0, byOp[domain.OperatorIOH].MaxValue)
	assert.Equal(t, -101.0, byOp[domain.OperatorIOH].MinValue)
	assert.Equal(t, "Site A", byOp[domain.OperatorXLAxiata].MaxLocation)
}

func TestDashboardServiceRecords(t *testing.T) {
	svc, id := newTestDashboard(t)
	ctx := context.Background()

	page, err := svc.Records(ctx, id, everything, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, page.Total)
	require.Len(t, page.Records, 2)
	assert.Equal(t, 2, page.Records[0].Row)

	page, err = svc.Records(ctx, id, everything, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, DefaultRecordLimit, page.Limit)
	assert.Empty(t, page.Records)

	page, err = svc.Records(ctx, id, everything, MaxRecordLimit+1, 0)
	require.NoError(t, err)
	assert.Equal(t, MaxRecordLimit, page.Limit)
}

func TestDashboardServiceOptions(t *testing.T) {
	svc, id := newTestDashboard(t)

	opts, err := svc.Options(context.Background(), id, Query{Period: "January 2024", Regions: []string{"Jakarta"}, AllLocations: true})
	require.NoError(t, err)
	assert.Equal(t, []string{domain.PeriodAll, "January 2024", "February 2024"}, opts.Periods)
	assert.True(t, opts.RegionFilterEnabled)
	assert.Equal(t, []string{"Bandung", "Jakarta"}, opts.Regions)
	assert.Equal(t, []string{"Site A", "Site B"}, opts.Locations)
	assert.Equal(t, []string{"RSRP"}, opts.RouteParameters)
	assert.Empty(t, opts.StaticParameters)
}

func TestDashboardServiceDashboard(t *testing.T) {
	svc, id := newTestDashboard(t)

	view, err := svc.Dashboard(context.Background(), id, Query{Period: "February 2024", AllLocations: true})
	require.NoError(t, err)
	assert.Equal(t, id, view.Dataset.ID)
	assert.Equal(t, 3, view.RecordCount)
	assert.Equal(t, "SINR", view.RouteChart.Parameter)
	assert.Equal(t, "Throughput", view.StaticChart.Parameter)
	assert.True(t, view.Map.Available)
	assert.Len(t, view.RouteComparison.Rows, 3)
	assert.Len(t, view.StaticComparison.Rows, 2)
}

func TestDashboardServiceEmptySelection(t *testing.T) {
	svc, id := newTestDashboard(t)

	view, err := svc.Dashboard(context.Background(), id, Query{Locations: []string{"Nowhere"}})
	require.NoError(t, err)
	assert.Zero(t, view.RecordCount)
	assert.True(t, view.RouteChart.Empty)
	assert.True(t, view.StaticChart.Empty)
	assert.False(t, view.Map.Available)
	assert.True(t, view.RouteComparison.Empty)
	assert.True(t, view.StaticComparison.Empty)
}

func TestDashboardServiceProfile(t *testing.T) {
	svc, id := newTestDashboard(t)

	view, err := svc.Profile(context.Background(), id, everything)
	require.NoError(t, err)
	assert.Equal(t, "RSRP", view.Route.Parameter)
	require.NotEmpty(t, view.Route.Operators)
	assert.Equal(t, domain.OperatorTelkomsel, view.Route.Operators[0].Operator)
	assert.Equal(t, 2, view.Route.Operators[0].Count)
}

func TestDashboardServiceUnknownDataset(t *testing.T) {
	svc, _ := newTestDashboard(t)

	_, err := svc.Dashboard(context.Background(), "missing", everything)
	assert.ErrorIs(t, err, apierrors.ErrDatasetNotFound)
}
