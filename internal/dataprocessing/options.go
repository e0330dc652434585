package dataprocessing

import (
	"sort"

	"qoedash/pkg/contracts/domain"
)

// DistinctPeriods returns domain.PeriodAll followed by the period labels in
// order of first appearance.
func DistinctPeriods(ds *domain.Dataset) []string {
	return append([]string{domain.PeriodAll}, distinct(ds, false, func(r *domain.Record) string { return r.Period })...)
}

// DistinctRegions returns the sorted non-empty regions, or nil when the dataset
// has no region column.
func DistinctRegions(ds *domain.Dataset) []string {
	if !ds.HasRegion {
		return nil
	}
	regions := distinct(ds, false, func(r *domain.Record) string { return r.Region })
	sort.Strings(regions)
	return regions
}

// DistinctLocations returns the sorted locations. A blank location is a
// value of its own, so selecting every entry keeps rows without an address.
func DistinctLocations(ds *domain.Dataset) []string {
	locations := distinct(ds, true, func(r *domain.Record) string { return r.Location })
	sort.Strings(locations)
	return locations
}

// DistinctParameters returns the parameters in order of first appearance
func DistinctParameters(ds *domain.Dataset) []string {
	return distinct(ds, false, func(r *domain.Record) string { return r.Parameter })
}

// BuildOptions computes the cascading filter choices for sel: regions come from
// the period view, locations from the region view and parameters from the fully
// filtered split.
func BuildOptions(ds *domain.Dataset, sel domain.FilterSelection) domain.FilterOptions {
	byPeriod := FilterByPeriod(ds, sel.Period)
	byRegion := FilterByRegion(byPeriod, sel.Regions)
	route, static := SplitByCategory(FilterByLocation(byRegion, sel.Locations))

	return domain.FilterOptions{
		Periods:             DistinctPeriods(ds),
		RegionFilterEnabled: ds.HasRegion,
		Regions:             nonNil(DistinctRegions(byPeriod)),
		Locations:           nonNil(DistinctLocations(byRegion)),
		RouteParameters:     nonNil(DistinctParameters(route)),
		StaticParameters:    nonNil(DistinctParameters(static)),
	}
}

// DefaultParameter returns the first parameter of ds, or "" when it is empty
func DefaultParameter(ds *domain.Dataset) string {
	params := DistinctParameters(ds)
	if len(params) == 0 {
		return ""
	}
	return params[0]
}

func distinct(ds *domain.Dataset, keepBlank bool, key func(*domain.Record) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for i := range ds.Records {
		k := key(&ds.Records[i])
		if k == "" && !keepBlank {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
