package testutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// MeasurementHeader is the full column header of a measurement export
const MeasurementHeader = "Tanggal,Jenis Pengukuran,Latitude,Longitude,Alamat,Kabupaten/Kota,Parameter,Telkomsel,XL Axiata,IOH"

// SampleMeasurementsCSV spans two periods and two regions, both measurement
// categories, and one row of an unknown category.
var SampleMeasurementsCSV = strings.Join([]string{
	MeasurementHeader,
	"2024-01-15,Route Test,-6.2,106.8,Site A,Jakarta,RSRP,-90,-95,",
	"2024-01-16,Route Test,-6.3,106.9,Site B,Jakarta,RSRP,-85,-99,-101",
	"2024-01-20,Static Test,-6.9,107.6,Site C,Bandung,RSRP,-80,-88,-92",
	"2024-02-03,Route Test,-6.25,106.85,Site A,Jakarta,SINR,12.5,9,7",
	"2024-02-10,Static Test,-6.95,107.65,Site D,Bandung,Throughput,35.2,28.4,",
	"2024-02-11,Walk Test,-6.1,106.7,Site E,Jakarta,RSRP,-70,-71,-72",
}, "\n")

// MeasurementCSV joins a header and rows into file content
func MeasurementCSV(header string, rows ...string) []byte {
	return []byte(strings.Join(append([]string{header}, rows...), "\n"))
}

// MeasurementWorkbook renders comma separated rows into an in-memory XLSX
// file with every cell stored as text.
func MeasurementWorkbook(t *testing.T, header string, rows ...string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	lines := append([]string{header}, rows...)
	for i, line := range lines {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		values := make([]interface{}, 0)
		for _, field := range strings.Split(line, ",") {
			values = append(values, field)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			t.Fatalf("set row %d: %v", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}
