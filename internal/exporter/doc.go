// Package exporter renders dashboard views into downloadable files.
//
// This package contains three main components:
//
// CSV: the long-form observations of one or more parameters, written through
// csvutil with an optional UTF-8 BOM for Excel compatibility.
//
// Workbook: the comparison tables as an XLSX file with one sheet per
// measurement category.
//
// Charts: a bar chart of a long form rendered as SVG or PNG, one bar per
// observation colored by operator.
//
// Example usage:
//
//	lf := dataprocessing.BuildLongForm(route, "RSRP")
//	err := exporter.WriteObservations(w, exporter.WriteOptions{BOMPrefix: true}, lf)
//
//	err = exporter.WriteComparisonWorkbook(w, routeTable, staticTable)
//
//	err = exporter.RenderChart(w, lf, dataprocessing.DefaultPalette(), exporter.ChartSVG)
package exporter
