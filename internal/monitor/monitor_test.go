package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragcore-ai/engine/internal/ragerr"
	"github.com/ragcore-ai/engine/internal/retrieval"
	"github.com/ragcore-ai/engine/internal/router"
)

func TestMonitor_SnapshotEmpty(t *testing.T) {
	m, err := New(Config{})
	require.NoError(t, err)

	snap := m.Snapshot()
	assert.Equal(t, 0, snap.TotalEvents)
	assert.False(t, snap.AlertErrorRate)
	assert.False(t, snap.AlertP95)
}

func TestMonitor_TracksModeCountsAndConfidence(t *testing.T) {
	m, err := New(Config{})
	require.NoError(t, err)

	m.RecordPathLatency("r1", retrieval.ModeBalanced, router.PathSpeculative, 10*time.Millisecond, 0.6, nil)
	m.RecordPathLatency("r1", retrieval.ModeBalanced, router.PathAgentic, 100*time.Millisecond, 0.9, nil)
	m.RecordPathLatency("r2", retrieval.ModeFast, router.PathSpeculative, 5*time.Millisecond, 0.7, nil)

	snap := m.Snapshot()
	assert.Equal(t, 3, snap.TotalEvents)
	assert.Equal(t, 2, snap.ModeCounts[retrieval.ModeBalanced])
	assert.Equal(t, 1, snap.ModeCounts[retrieval.ModeFast])
	assert.InDelta(t, 0.65, snap.MeanConfidence[router.PathSpeculative], 0.0001)
	assert.InDelta(t, 0.9, snap.MeanConfidence[router.PathAgentic], 0.0001)
	assert.Equal(t, 0.0, snap.ErrorRate)
}

func TestMonitor_ErrorRateAndAlertThreshold(t *testing.T) {
	m, err := New(Config{AlertErrorRate: 0.4})
	require.NoError(t, err)

	m.RecordPathLatency("r1", retrieval.ModeFast, router.PathSpeculative, time.Millisecond, 0, ragerr.New(ragerr.Timeout, "slow"))
	m.RecordPathLatency("r2", retrieval.ModeFast, router.PathSpeculative, time.Millisecond, 0.6, nil)

	snap := m.Snapshot()
	assert.InDelta(t, 0.5, snap.ErrorRate, 0.0001)
	assert.Equal(t, 1, snap.ErrorsByKind[ragerr.Timeout])
	assert.True(t, snap.AlertErrorRate)
}

func TestMonitor_P95AlertThreshold(t *testing.T) {
	m, err := New(Config{AlertP95MS: 50})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		m.RecordPathLatency("r", retrieval.ModeDeep, router.PathAgentic, 200*time.Millisecond, 0.8, nil)
	}

	snap := m.Snapshot()
	assert.True(t, snap.AlertP95)
	assert.Equal(t, 200*time.Millisecond, snap.P95ByPath[router.PathAgentic])
}

func TestMonitor_RecordAnomalyIncrementsCount(t *testing.T) {
	m, err := New(Config{})
	require.NoError(t, err)

	m.RecordAnomaly("r1", "agentic confidence lower than speculative")
	m.RecordAnomaly("r2", "agentic confidence lower than speculative")

	snap := m.Snapshot()
	assert.Equal(t, 2, snap.AnomalyCount)
}
