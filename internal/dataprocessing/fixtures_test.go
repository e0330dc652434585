package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"qoedash/internal/shared/testutil"
	"qoedash/pkg/contracts/domain"
)

const fullHeader = testutil.MeasurementHeader

var sampleCSV = testutil.SampleMeasurementsCSV

func mustParse(t *testing.T, content string) *domain.Dataset {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	ds, err := NewParser(logger).Parse("measurements.csv", []byte(content))
	require.NoError(t, err)
	return ds
}

func locations(ds *domain.Dataset) []string {
	out := make([]string, 0, ds.Len())
	for _, r := range ds.Records {
		out = append(out, r.Location)
	}
	return out
}
