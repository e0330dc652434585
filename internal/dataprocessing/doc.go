// Package dataprocessing turns an uploaded QoE measurement file into the
// structured views rendered by the dashboard.
//
// # Architecture
//
// The package is organized as a pipeline of pure functions over an immutable
// domain.Dataset:
//
// 1. Parser: decodes CSV or XLSX bytes into records (csvutil column mapping)
// 2. Schema: checks required columns and collects non-fatal warnings
// 3. Filters: period → region → location, each returning a new view
// 4. Splitter: partitions a view into Route Test and Static Test subsets
// 5. Builders: long form with extremes, map markers, comparison tables, profiles
//
// # Usage
//
//	parser := dataprocessing.NewParser(logger)
//	ds, err := parser.Parse("drive-test.csv", data)
//	if err != nil {
//	    var missing *dataprocessing.MissingColumnsError
//	    if errors.As(err, &missing) {
//	        // fatal for this upload
//	    }
//	}
//
//	view := dataprocessing.ApplyFilters(ds, selection)
//	route, static := dataprocessing.SplitByCategory(view)
//	chart := dataprocessing.BuildLongForm(route, "RSRP")
//	table := dataprocessing.BuildComparison(route, "RSRP", domain.CategoryRouteTest)
//	markers := dataprocessing.BuildMarkers(route, static, "RSRP", "RSRP", dataprocessing.DefaultPalette())
//
// # Data Flow
//
//	Upload → Parser → Dataset → Filters → Splitter → Builders → JSON / exports
//
// # Error Handling
//
// Only ingest can fail. Missing required columns surface as
// *MissingColumnsError, undecodable content as *ParseError. Every builder
// reports "no data" and "not determinable" as states on its result instead of
// returning errors.
package dataprocessing
