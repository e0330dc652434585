package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qoedash/pkg/contracts/domain"
)

func TestFilterByPeriod(t *testing.T) {
	ds := mustParse(t, sampleCSV)

	t.Run("all is identity", func(t *testing.T) {
		assert.Same(t, ds, FilterByPeriod(ds, domain.PeriodAll))
	})

	t.Run("specific period", func(t *testing.T) {
		view := FilterByPeriod(ds, "January 2024")
		require.Equal(t, 3, view.Len())
		for _, r := range view.Records {
			assert.Equal(t, "January 2024", r.Period)
		}
		assert.Equal(t, []string{"Site A", "Site B", "Site C"}, locations(view))
	})

	t.Run("unknown period", func(t *testing.T) {
		assert.True(t, FilterByPeriod(ds, "March 2024").IsEmpty())
	})

	t.Run("source untouched", func(t *testing.T) {
		FilterByPeriod(ds, "February 2024")
		assert.Equal(t, 6, ds.Len())
	})
}

func TestFilterByRegion(t *testing.T) {
	ds := mustParse(t, sampleCSV)

	tests := []struct {
		name    string
		regions []string
		want    []string
	}{
		{name: "empty selection keeps everything", regions: nil, want: locations(ds)},
		{name: "single region", regions: []string{"Bandung"}, want: []string{"Site C", "Site D"}},
		{name: "both regions", regions: []string{"Bandung", "Jakarta"}, want: locations(ds)},
		{name: "unknown region", regions: []string{"Surabaya"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, locations(FilterByRegion(ds, tt.regions)))
		})
	}

	t.Run("no region column disables the filter", func(t *testing.T) {
		noRegion := mustParse(t, "Tanggal,Jenis Pengukuran,Latitude,Longitude,Alamat,Parameter,Telkomsel\n"+
			"2024-01-15,Route Test,-6.2,106.8,Site A,RSRP,-90\n")
		assert.Same(t, noRegion, FilterByRegion(noRegion, []string{"Jakarta"}))
	})
}

func TestFilterByLocation(t *testing.T) {
	ds := mustParse(t, sampleCSV)

	t.Run("empty selection yields nothing", func(t *testing.T) {
		assert.True(t, FilterByLocation(ds, nil).IsEmpty())
		assert.True(t, FilterByLocation(ds, []string{}).IsEmpty())
	})

	t.Run("subset", func(t *testing.T) {
		view := FilterByLocation(ds, []string{"Site A", "Site D"})
		assert.Equal(t, []string{"Site A", "Site A", "Site D"}, locations(view))
		for _, r := range view.Records {
			assert.Contains(t, []string{"Site A", "Site D"}, r.Location)
		}
	})

	t.Run("all locations round trip", func(t *testing.T) {
		view := FilterByLocation(ds, DistinctLocations(ds))
		assert.Equal(t, ds.Records, view.Records)
	})

	t.Run("round trip keeps rows without an address", func(t *testing.T) {
		blank := mustParse(t, fullHeader+"\n"+
			"2024-01-15,Route Test,-6.2,106.8,Site A,Jakarta,RSRP,-90,-95,-100\n"+
			"2024-01-16,Route Test,-6.3,106.9,,Jakarta,RSRP,-85,-99,-101\n")
		require.Equal(t, 2, blank.Len())

		assert.Equal(t, []string{"", "Site A"}, DistinctLocations(blank))
		view := FilterByLocation(blank, DistinctLocations(blank))
		assert.Equal(t, blank.Records, view.Records)
	})
}

func TestApplyFilters_Cascades(t *testing.T) {
	ds := mustParse(t, sampleCSV)

	view := ApplyFilters(ds, domain.FilterSelection{
		Period:    "January 2024",
		Regions:   []string{"Jakarta"},
		Locations: []string{"Site A", "Site D"},
	})

	require.Equal(t, 1, view.Len())
	assert.Equal(t, 1, view.Records[0].Row)
}

func TestFilter_CopyOnFilter(t *testing.T) {
	ds := mustParse(t, sampleCSV)

	view := FilterByLocation(ds, []string{"Site A"})
	view.Records[0].Location = "changed"

	assert.Equal(t, "Site A", ds.Records[0].Location)
	assert.Equal(t, ds.Columns, view.Columns)
	assert.Equal(t, ds.Operators, view.Operators)
}

func TestSplitByCategory(t *testing.T) {
	ds := mustParse(t, sampleCSV)

	route, static := SplitByCategory(ds)

	assert.Equal(t, []string{"Site A", "Site B", "Site A"}, locations(route))
	assert.Equal(t, []string{"Site C", "Site D"}, locations(static))
	for _, r := range route.Records {
		assert.Equal(t, domain.CategoryRouteTest, r.Category)
	}
	for _, r := range static.Records {
		assert.Equal(t, domain.CategoryStaticTest, r.Category)
	}
	assert.Equal(t, ds.Len()-1, route.Len()+static.Len(), "walk test row belongs to neither subset")

	t.Run("no static rows", func(t *testing.T) {
		_, static := SplitByCategory(FilterByLocation(ds, []string{"Site A", "Site B"}))
		assert.True(t, static.IsEmpty())
	})
}
