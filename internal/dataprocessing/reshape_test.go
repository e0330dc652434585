package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qoedash/pkg/contracts/domain"
)

func TestBuildLongForm_SingleRow(t *testing.T) {
	ds := mustParse(t, fullHeader+"\n2024-01-15,Route Test,-6.2,106.8,Site A,Jakarta,RSRP,-90,-95,\n")

	lf := BuildLongForm(ds, "RSRP")

	require.False(t, lf.Empty)
	require.Len(t, lf.Observations, 2)
	assert.Equal(t, domain.OperatorTelkomsel, lf.Observations[0].Operator)
	assert.Equal(t, -90.0, lf.Observations[0].Value.Number)
	assert.Equal(t, domain.OperatorXLAxiata, lf.Observations[1].Operator)
	assert.Equal(t, -95.0, lf.Observations[1].Value.Number)

	require.True(t, lf.Extremes.Determinable)
	assert.Equal(t, domain.OperatorTelkomsel, lf.Extremes.Max.Operator)
	assert.Equal(t, -90.0, lf.Extremes.Max.Value)
	assert.Equal(t, "Site A", lf.Extremes.Max.Location)
	assert.Equal(t, domain.OperatorXLAxiata, lf.Extremes.Min.Operator)
	assert.Equal(t, -95.0, lf.Extremes.Min.Value)
}

func TestBuildLongForm_Dataset(t *testing.T) {
	route, _ := SplitByCategory(mustParse(t, sampleCSV))

	lf := BuildLongForm(route, "RSRP")

	require.Len(t, lf.Observations, 5)
	for _, o := range lf.Observations {
		assert.Equal(t, "RSRP", o.Parameter)
		assert.Equal(t, domain.CategoryRouteTest, o.Category)
	}
	assert.True(t, lf.Numeric)

	// independent recomputation
	maxObs, minObs := lf.Observations[0], lf.Observations[0]
	for _, o := range lf.Observations {
		if o.Value.Number > maxObs.Value.Number {
			maxObs = o
		}
		if o.Value.Number < minObs.Value.Number {
			minObs = o
		}
	}
	assert.Equal(t, maxObs.Value.Number, lf.Extremes.Max.Value)
	assert.Equal(t, maxObs.Operator, lf.Extremes.Max.Operator)
	assert.Equal(t, minObs.Value.Number, lf.Extremes.Min.Value)
	assert.Equal(t, minObs.Operator, lf.Extremes.Min.Operator)

	assert.Equal(t, domain.OperatorTelkomsel, lf.Extremes.Max.Operator)
	assert.Equal(t, "Site B", lf.Extremes.Max.Location)
	assert.Equal(t, domain.OperatorIOH, lf.Extremes.Min.Operator)
	assert.Equal(t, -101.0, lf.Extremes.Min.Value)
}

func TestBuildLongForm_States(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		parameter    string
		empty        bool
		determinable bool
		reason       string
	}{
		{
			name:      "unknown parameter",
			content:   sampleCSV,
			parameter: "RSCP",
			empty:     true,
			reason:    ReasonNoData,
		},
		{
			name:      "all values null",
			content:   fullHeader + "\n2024-01-15,Route Test,-6.2,106.8,Site A,Jakarta,RSRP,,,\n",
			parameter: "RSRP",
			empty:     true,
			reason:    ReasonNoData,
		},
		{
			name:      "non numeric values",
			content:   fullHeader + "\n2024-01-15,Route Test,-6.2,106.8,Site A,Jakarta,Coverage,good,-95,\n",
			parameter: "Coverage",
			reason:    ReasonNonNumeric,
		},
		{
			name:         "numeric values",
			content:      sampleCSV,
			parameter:    "SINR",
			determinable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lf := BuildLongForm(mustParse(t, tt.content), tt.parameter)
			assert.Equal(t, tt.empty, lf.Empty)
			assert.Equal(t, tt.determinable, lf.Extremes.Determinable)
			assert.Equal(t, tt.reason, lf.Extremes.Reason)
			if !tt.determinable {
				assert.Nil(t, lf.Extremes.Max)
				assert.Nil(t, lf.Extremes.Min)
			}
			assert.NotNil(t, lf.Observations)
		})
	}
}

func TestBuildLongForm_TiesKeepFirstOccurrence(t *testing.T) {
	ds := mustParse(t, fullHeader+"\n"+
		"2024-01-15,Route Test,-6.2,106.8,Site A,Jakarta,RSRP,-80,-90,-90\n"+
		"2024-01-16,Route Test,-6.3,106.9,Site B,Jakarta,RSRP,-80,-85,-90\n")

	lf := BuildLongForm(ds, "RSRP")

	require.True(t, lf.Extremes.Determinable)
	assert.Equal(t, 1, lf.Extremes.Max.Row)
	assert.Equal(t, domain.OperatorTelkomsel, lf.Extremes.Max.Operator)
	assert.Equal(t, 1, lf.Extremes.Min.Row)
	assert.Equal(t, domain.OperatorIOH, lf.Extremes.Min.Operator)
}
