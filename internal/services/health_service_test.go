package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qoedash/internal/cache"
	"qoedash/pkg/contracts"
)

type staticStats DatasetStats

func (s staticStats) Stats() DatasetStats { return DatasetStats(s) }

func TestHealthService(t *testing.T) {
	ctx := context.Background()
	datasets := newTestDatasetService(t)
	hs := NewHealthService("1.2.3", datasets, nil)

	assert.Equal(t, "ok", hs.HealthCheck(ctx).Status)

	ready := hs.ReadinessCheck(ctx)
	assert.Equal(t, "ready", ready.Status)
	require.Contains(t, ready.Checks, "datasets")
	assert.Equal(t, StatusReady, ready.Checks["datasets"].Status)
	assert.NotNil(t, ready.Checks["datasets"].Stats)

	live := hs.LivenessCheck(ctx)
	assert.Equal(t, "alive", live.Status)
	require.NotNil(t, live.Runtime)
	assert.Positive(t, live.Runtime.Goroutines)

	info := hs.Version()
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, contracts.APIVersion, info.APIVersion)
}

func TestHealthServiceNotReady(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, "not_ready", NewHealthService("v", nil, nil).ReadinessCheck(ctx).Status)

	full := staticStats{Sessions: cache.Stats{MaxSize: 0}}
	st := NewHealthService("v", full, nil).ReadinessCheck(ctx)
	assert.Equal(t, "not_ready", st.Status)
	assert.Equal(t, "session store has no capacity", st.Checks["datasets"].Message)
}
