package dataprocessing

import (
	"fmt"

	"qoedash/pkg/contracts/domain"
)

// BuildComparison finds, per operator, the record with the highest and the
// lowest value for parameter. Operators without values, or with any
// non-numeric value, produce no row.
func BuildComparison(ds *domain.Dataset, parameter string, category domain.Category) domain.ComparisonTable {
	table := domain.ComparisonTable{
		Category:  category,
		Parameter: parameter,
		Rows:      []domain.ComparisonRow{},
	}

	records := FilterByParameter(ds, parameter).Records
	for _, op := range ds.Operators {
		row, ok := operatorComparison(records, op)
		if !ok {
			continue
		}
		row.Parameter = parameter
		row.Category = category
		table.Rows = append(table.Rows, row)
	}

	if len(table.Rows) == 0 {
		table.Empty = true
		table.Message = fmt.Sprintf("no comparison data for parameter %q", parameter)
	}
	return table
}

func operatorComparison(records []domain.Record, op domain.Operator) (domain.ComparisonRow, bool) {
	var maxRec, minRec *domain.Record
	var maxVal, minVal float64

	for i := range records {
		v, ok := records[i].Value(op)
		if !ok {
			continue
		}
		if !v.Numeric {
			return domain.ComparisonRow{}, false
		}
		if maxRec == nil || v.Number > maxVal {
			maxRec, maxVal = &records[i], v.Number
		}
		if minRec == nil || v.Number < minVal {
			minRec, minVal = &records[i], v.Number
		}
	}

	if maxRec == nil {
		return domain.ComparisonRow{}, false
	}

	return domain.ComparisonRow{
		Operator:    op,
		MaxValue:    maxVal,
		MaxLocation: maxRec.Location,
		MaxDate:     maxRec.Date(),
		MinValue:    minVal,
		MinLocation: minRec.Location,
		MinDate:     minRec.Date(),
	}, true
}
