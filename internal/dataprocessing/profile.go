package dataprocessing

import (
	"math"

	"github.com/go-gota/gota/series"

	"qoedash/pkg/contracts/domain"
)

// BuildProfile computes descriptive statistics per operator for parameter.
// Operators with any non-numeric value are reported as not determinable.
func BuildProfile(ds *domain.Dataset, parameter string, category domain.Category) domain.Profile {
	p := domain.Profile{
		Category:  category,
		Parameter: parameter,
		Operators: []domain.OperatorProfile{},
	}

	records := FilterByParameter(ds, parameter).Records
	for _, op := range ds.Operators {
		var values []float64
		numeric := true
		count := 0
		for _, r := range records {
			v, ok := r.Value(op)
			if !ok {
				continue
			}
			count++
			if !v.Numeric {
				numeric = false
				continue
			}
			values = append(values, v.Number)
		}
		if count == 0 {
			continue
		}

		stats := domain.OperatorProfile{Operator: op, Count: count}
		if numeric {
			s := series.New(values, series.Float, string(op))
			stats.Determinable = true
			stats.Mean = s.Mean()
			stats.Median = s.Median()
			stats.Min = s.Min()
			stats.Max = s.Max()
			if s.Len() > 1 {
				stats.StdDev = finite(s.StdDev())
			}
		}
		p.Operators = append(p.Operators, stats)
	}

	p.Empty = len(p.Operators) == 0
	return p
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
