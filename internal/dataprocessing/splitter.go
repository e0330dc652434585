package dataprocessing

import "qoedash/pkg/contracts/domain"

// SplitByCategory partitions ds into its Route Test and Static Test records.
// Records of any other category are dropped from both.
func SplitByCategory(ds *domain.Dataset) (route, static *domain.Dataset) {
	var routeRecs, staticRecs []domain.Record
	for _, r := range ds.Records {
		switch r.Category {
		case domain.CategoryRouteTest:
			routeRecs = append(routeRecs, r)
		case domain.CategoryStaticTest:
			staticRecs = append(staticRecs, r)
		}
	}
	return ds.WithRecords(routeRecs), ds.WithRecords(staticRecs)
}

// SelectCategory returns the subset of ds for one category
func SelectCategory(ds *domain.Dataset, category domain.Category) *domain.Dataset {
	return filterRecords(ds, func(r *domain.Record) bool {
		return r.Category == category
	})
}
