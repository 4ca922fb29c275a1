package strategy

import "github.com/ragcore-ai/engine/pkg/ring"

// PerformanceTracker holds a fixed-capacity rolling window of generation
// confidence scores, one per completed execution, used by Select's
// performance override. Bounded length is structural (pkg/ring), not a
// trimmed slice — see SPEC_FULL.md §3.
type PerformanceTracker struct {
	window *ring.Buffer[float64]
}

// NewPerformanceTracker creates a tracker over the last performanceWindow
// executions.
func NewPerformanceTracker() *PerformanceTracker {
	return &PerformanceTracker{window: ring.New[float64](performanceWindow)}
}

// Record appends confidence, overwriting the oldest entry once the window
// is full. Safe for concurrent use.
func (t *PerformanceTracker) Record(confidence float64) {
	t.window.Add(confidence)
}

// RollingAverage returns the mean confidence over the window, or ok=false
// if nothing has been recorded yet.
func (t *PerformanceTracker) RollingAverage() (avg float64, ok bool) {
	scores := t.window.All()
	if len(scores) == 0 {
		return 0, false
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores)), true
}

// Len reports how many executions are currently in the window.
func (t *PerformanceTracker) Len() int {
	return t.window.Len()
}
