package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"qoedash/pkg/contracts/domain"
)

// ComparisonHeaders are the column titles of a comparison sheet
var ComparisonHeaders = []string{
	"Operator",
	"Parameter",
	"Nilai Tertinggi",
	"Lokasi Tertinggi",
	"Tanggal Tertinggi",
	"Nilai Terendah",
	"Lokasi Terendah",
	"Tanggal Terendah",
}

const defaultSheet = "Sheet1"

// WriteComparisonWorkbook writes one sheet per comparison table, named after
// its category. Empty tables get a sheet holding their message.
func WriteComparisonWorkbook(w io.Writer, tables ...domain.ComparisonTable) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, table := range tables {
		sheet := sheetName(table, i)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}

		if err := writeComparisonSheet(f, sheet, table, headerStyle); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeComparisonSheet(f *excelize.File, sheet string, table domain.ComparisonTable, headerStyle int) error {
	header := make([]interface{}, len(ComparisonHeaders))
	for i, h := range ComparisonHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", sheet, err)
	}
	if err := f.SetCellStyle(sheet, "A1", "H1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header of %s: %w", sheet, err)
	}

	if table.Empty {
		return f.SetCellValue(sheet, "A2", table.Message)
	}

	for i, r := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			string(r.Operator),
			r.Parameter,
			r.MaxValue,
			r.MaxLocation,
			r.MaxDate,
			r.MinValue,
			r.MinLocation,
			r.MinDate,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+2, sheet, err)
		}
	}

	return f.SetColWidth(sheet, "A", "H", 18)
}

func sheetName(table domain.ComparisonTable, index int) string {
	if table.Category != "" {
		return string(table.Category)
	}
	return fmt.Sprintf("Sheet%d", index+1)
}
