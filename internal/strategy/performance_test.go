package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerformanceTracker_RollingAverage(t *testing.T) {
	tr := NewPerformanceTracker()
	_, ok := tr.RollingAverage()
	assert.False(t, ok)

	tr.Record(0.8)
	tr.Record(0.6)
	avg, ok := tr.RollingAverage()
	assert.True(t, ok)
	assert.InDelta(t, 0.7, avg, 0.0001)
}

func TestPerformanceTracker_WindowIsBounded(t *testing.T) {
	tr := NewPerformanceTracker()
	for i := 0; i < 25; i++ {
		tr.Record(1.0)
	}
	assert.Equal(t, 20, tr.Len())
}
