package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qoedash/pkg/contracts/domain"
)

func TestBuildProfile(t *testing.T) {
	route, _ := SplitByCategory(mustParse(t, sampleCSV))

	p := BuildProfile(route, "RSRP", domain.CategoryRouteTest)

	require.False(t, p.Empty)
	require.Len(t, p.Operators, 3)

	telkomsel := p.Operators[0]
	assert.Equal(t, domain.OperatorTelkomsel, telkomsel.Operator)
	assert.Equal(t, 2, telkomsel.Count)
	assert.True(t, telkomsel.Determinable)
	assert.InDelta(t, -87.5, telkomsel.Mean, 1e-9)
	assert.Equal(t, -90.0, telkomsel.Min)
	assert.Equal(t, -85.0, telkomsel.Max)
	assert.InDelta(t, 3.5355, telkomsel.StdDev, 1e-3)

	ioh := p.Operators[1]
	assert.Equal(t, 1, ioh.Count)
	assert.Equal(t, 0.0, ioh.StdDev)
}

func TestBuildProfile_NonNumericAndEmpty(t *testing.T) {
	ds := mustParse(t, fullHeader+"\n2024-01-15,Route Test,-6.2,106.8,Site A,Jakarta,Coverage,good,-95,\n")

	p := BuildProfile(ds, "Coverage", domain.CategoryRouteTest)
	require.Len(t, p.Operators, 2)
	assert.False(t, p.Operators[0].Determinable)
	assert.Equal(t, 1, p.Operators[0].Count)
	assert.True(t, p.Operators[1].Determinable)

	assert.True(t, BuildProfile(ds, "RSRP", domain.CategoryRouteTest).Empty)
}
