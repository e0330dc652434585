package dataprocessing

import "qoedash/pkg/contracts/domain"

// FilterByPeriod keeps records whose period label equals period. The
// domain.PeriodAll sentinel returns the input unchanged.
func FilterByPeriod(ds *domain.Dataset, period string) *domain.Dataset {
	if period == domain.PeriodAll {
		return ds
	}
	return filterRecords(ds, func(r *domain.Record) bool {
		return r.Period == period
	})
}

// FilterByRegion keeps records whose region is in regions. An empty selection,
// or a dataset without a region column, returns the input unchanged.
func FilterByRegion(ds *domain.Dataset, regions []string) *domain.Dataset {
	if len(regions) == 0 || !ds.HasRegion {
		return ds
	}
	set := toSet(regions)
	return filterRecords(ds, func(r *domain.Record) bool {
		_, ok := set[r.Region]
		return ok
	})
}

// FilterByLocation keeps records whose location is in locations. An empty
// selection yields an empty view.
func FilterByLocation(ds *domain.Dataset, locations []string) *domain.Dataset {
	set := toSet(locations)
	return filterRecords(ds, func(r *domain.Record) bool {
		_, ok := set[r.Location]
		return ok
	})
}

// ApplyFilters runs period, region and location filters in that order
func ApplyFilters(ds *domain.Dataset, sel domain.FilterSelection) *domain.Dataset {
	view := FilterByPeriod(ds, sel.Period)
	view = FilterByRegion(view, sel.Regions)
	return FilterByLocation(view, sel.Locations)
}

// FilterByParameter keeps records measuring parameter
func FilterByParameter(ds *domain.Dataset, parameter string) *domain.Dataset {
	return filterRecords(ds, func(r *domain.Record) bool {
		return r.Parameter == parameter
	})
}

func filterRecords(ds *domain.Dataset, keep func(*domain.Record) bool) *domain.Dataset {
	out := make([]domain.Record, 0, len(ds.Records))
	for i := range ds.Records {
		if keep(&ds.Records[i]) {
			out = append(out, ds.Records[i])
		}
	}
	return ds.WithRecords(out)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
