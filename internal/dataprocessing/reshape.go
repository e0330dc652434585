package dataprocessing

import (
	"fmt"

	"qoedash/pkg/contracts/domain"
)

// Reasons reported on undeterminable extremes
const (
	ReasonNoData     = "no data"
	ReasonNonNumeric = "values are not numeric"
)

// BuildLongForm reshapes the operator columns of every record measuring
// parameter into one observation per non-null (record, operator) pair.
// Observations follow record order, then operator order. When every value is
// numeric the global max and min are reported; the first occurrence wins ties.
func BuildLongForm(ds *domain.Dataset, parameter string) domain.LongForm {
	lf := domain.LongForm{
		Parameter:    parameter,
		Observations: []domain.Observation{},
	}

	for _, r := range FilterByParameter(ds, parameter).Records {
		for _, op := range ds.Operators {
			v, ok := r.Value(op)
			if !ok {
				continue
			}
			lf.Observations = append(lf.Observations, domain.Observation{
				Row:       r.Row,
				Location:  r.Location,
				Region:    r.Region,
				Timestamp: r.Timestamp,
				Date:      r.Date(),
				Period:    r.Period,
				Category:  r.Category,
				Parameter: r.Parameter,
				Operator:  op,
				Value:     v,
			})
		}
	}

	if len(lf.Observations) == 0 {
		lf.Empty = true
		lf.Message = fmt.Sprintf("no data for parameter %q", parameter)
		lf.Extremes = domain.Extremes{Reason: ReasonNoData}
		return lf
	}

	lf.Numeric = allNumeric(lf.Observations)
	lf.Extremes = observationExtremes(lf.Observations, lf.Numeric)
	return lf
}

func allNumeric(obs []domain.Observation) bool {
	for _, o := range obs {
		if !o.Value.Numeric {
			return false
		}
	}
	return true
}

func observationExtremes(obs []domain.Observation, numeric bool) domain.Extremes {
	if !numeric {
		return domain.Extremes{Reason: ReasonNonNumeric}
	}

	maxIdx, minIdx := 0, 0
	for i := 1; i < len(obs); i++ {
		if obs[i].Value.Number > obs[maxIdx].Value.Number {
			maxIdx = i
		}
		if obs[i].Value.Number < obs[minIdx].Value.Number {
			minIdx = i
		}
	}

	return domain.Extremes{
		Determinable: true,
		Max:          toExtreme(obs[maxIdx]),
		Min:          toExtreme(obs[minIdx]),
	}
}

func toExtreme(o domain.Observation) *domain.Extreme {
	return &domain.Extreme{
		Operator: o.Operator,
		Location: o.Location,
		Date:     o.Date,
		Value:    o.Value.Number,
		Row:      o.Row,
	}
}
