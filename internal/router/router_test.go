package router

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragcore-ai/engine/internal/agent"
	"github.com/ragcore-ai/engine/internal/document"
	"github.com/ragcore-ai/engine/internal/ragerr"
	"github.com/ragcore-ai/engine/internal/retrieval"
	"github.com/ragcore-ai/engine/internal/strategy"
)

type stubSpeculative struct {
	result PathResult
	err    error
	delay  time.Duration
}

func (s stubSpeculative) Run(ctx context.Context, q retrieval.Query, params strategy.Parameters) (PathResult, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return PathResult{}, ctx.Err()
		}
	}
	return s.result, s.err
}

type stubAgentic struct {
	result agent.Result
	err    error
	delay  time.Duration
}

func (s stubAgentic) Run(ctx context.Context, q retrieval.Query, params strategy.Parameters) (agent.Result, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return agent.Result{}, ctx.Err()
		}
	}
	return s.result, s.err
}

type recordingRecorder struct {
	latencies []PathName
	anomalies []string
}

func (r *recordingRecorder) RecordPathLatency(_ string, _ retrieval.Mode, path PathName, _ time.Duration, _ float64, _ error) {
	r.latencies = append(r.latencies, path)
}
func (r *recordingRecorder) RecordAnomaly(_ string, reason string) {
	r.anomalies = append(r.anomalies, reason)
}

func drain(t *testing.T, ch <-chan RoutedUpdate) []RoutedUpdate {
	t.Helper()
	var out []RoutedUpdate
	for u := range ch {
		out = append(out, u)
	}
	return out
}

func TestRouter_FastMode_ReturnsSpeculativeFinal(t *testing.T) {
	rec := &recordingRecorder{}
	r, err := NewRouter(Config{
		Speculative: stubSpeculative{result: PathResult{Answer: "fast answer", Confidence: 0.6}},
		Agentic:     stubAgentic{},
		Recorder:    rec,
	})
	require.NoError(t, err)

	ch, err := r.Route(context.Background(), retrieval.Query{Text: "q"}, retrieval.ModeFast, strategy.Parameters{}, time.Second, time.Second)
	require.NoError(t, err)

	updates := drain(t, ch)
	require.Len(t, updates, 1)
	assert.Equal(t, StatusFinal, updates[0].Status)
	assert.Equal(t, PathSpeculative, updates[0].Path)
	assert.Equal(t, "fast answer", updates[0].Result.Answer)
	assert.Contains(t, rec.latencies, PathSpeculative)
}

func TestRouter_FastMode_TimeoutIsError(t *testing.T) {
	r, err := NewRouter(Config{
		Speculative: stubSpeculative{result: PathResult{Answer: "too slow"}, delay: 50 * time.Millisecond},
		Agentic:     stubAgentic{},
	})
	require.NoError(t, err)

	ch, err := r.Route(context.Background(), retrieval.Query{Text: "q"}, retrieval.ModeFast, strategy.Parameters{}, 5*time.Millisecond, time.Second)
	require.NoError(t, err)

	updates := drain(t, ch)
	require.Len(t, updates, 1)
	assert.Equal(t, StatusError, updates[0].Status)
	assert.True(t, ragerr.Timeout.Matches(updates[0].Err))
}

func TestRouter_DeepMode_ReturnsAgenticFinal(t *testing.T) {
	r, err := NewRouter(Config{
		Speculative: stubSpeculative{},
		Agentic:     stubAgentic{result: agent.Result{Answer: "deep answer", Confidence: 0.9, Status: agent.StatusFinal}},
	})
	require.NoError(t, err)

	ch, err := r.Route(context.Background(), retrieval.Query{Text: "q"}, retrieval.ModeDeep, strategy.Parameters{}, time.Second, time.Second)
	require.NoError(t, err)

	updates := drain(t, ch)
	require.Len(t, updates, 1)
	assert.Equal(t, StatusFinal, updates[0].Status)
	assert.Equal(t, PathAgentic, updates[0].Path)
	assert.Equal(t, "deep answer", updates[0].Result.Answer)
}

func TestRouter_Balanced_AgenticSupersedesSpeculative(t *testing.T) {
	rec := &recordingRecorder{}
	r, err := NewRouter(Config{
		Speculative: stubSpeculative{result: PathResult{Answer: "fast", Confidence: 0.6}, delay: 5 * time.Millisecond},
		Agentic:     stubAgentic{result: agent.Result{Answer: "thorough", Confidence: 0.8}, delay: 20 * time.Millisecond},
		Recorder:    rec,
	})
	require.NoError(t, err)

	ch, err := r.Route(context.Background(), retrieval.Query{Text: "q"}, retrieval.ModeBalanced, strategy.Parameters{}, time.Second, time.Second)
	require.NoError(t, err)

	updates := drain(t, ch)
	require.Len(t, updates, 2)
	assert.Equal(t, StatusInterim, updates[0].Status)
	assert.Equal(t, PathSpeculative, updates[0].Path)
	assert.Equal(t, StatusFinal, updates[1].Status)
	assert.Equal(t, PathAgentic, updates[1].Path)
	assert.Equal(t, "thorough", updates[1].Result.Answer)
	assert.Empty(t, rec.anomalies)
}

func TestRouter_Balanced_LowerAgenticConfidenceKeepsSpeculativeAndRecordsAnomaly(t *testing.T) {
	rec := &recordingRecorder{}
	r, err := NewRouter(Config{
		Speculative: stubSpeculative{result: PathResult{Answer: "fast", Confidence: 0.85}, delay: 5 * time.Millisecond},
		Agentic:     stubAgentic{result: agent.Result{Answer: "thorough", Confidence: 0.5}, delay: 20 * time.Millisecond},
		Recorder:    rec,
	})
	require.NoError(t, err)

	ch, err := r.Route(context.Background(), retrieval.Query{Text: "q"}, retrieval.ModeBalanced, strategy.Parameters{}, time.Second, time.Second)
	require.NoError(t, err)

	updates := drain(t, ch)
	require.Len(t, updates, 2)
	final := updates[len(updates)-1]
	assert.Equal(t, StatusFinal, final.Status)
	assert.Equal(t, PathSpeculative, final.Path)
	assert.Equal(t, "fast", final.Result.Answer)
	require.Len(t, rec.anomalies, 1)
}

func TestRouter_Balanced_AgenticTimeoutFallsBackToSpeculative(t *testing.T) {
	r, err := NewRouter(Config{
		Speculative: stubSpeculative{result: PathResult{Answer: "fast", Confidence: 0.6}, delay: 5 * time.Millisecond},
		Agentic:     stubAgentic{result: agent.Result{Answer: "never arrives", Confidence: 0.9}, delay: 200 * time.Millisecond},
	})
	require.NoError(t, err)

	ch, err := r.Route(context.Background(), retrieval.Query{Text: "q"}, retrieval.ModeBalanced, strategy.Parameters{}, time.Second, 20*time.Millisecond)
	require.NoError(t, err)

	updates := drain(t, ch)
	final := updates[len(updates)-1]
	assert.Equal(t, StatusFallback, final.Status)
	assert.Equal(t, PathSpeculative, final.Path)
	assert.Equal(t, "fast", final.Result.Answer)
}

func TestRouter_Balanced_BothFailReturnsClassifiedError(t *testing.T) {
	r, err := NewRouter(Config{
		Speculative: stubSpeculative{err: ragerr.New(ragerr.Transport, "speculative down")},
		Agentic:     stubAgentic{err: ragerr.New(ragerr.Timeout, "agentic timed out")},
	})
	require.NoError(t, err)

	ch, err := r.Route(context.Background(), retrieval.Query{Text: "q"}, retrieval.ModeBalanced, strategy.Parameters{}, time.Second, time.Second)
	require.NoError(t, err)

	updates := drain(t, ch)
	require.Len(t, updates, 1)
	assert.Equal(t, StatusError, updates[0].Status)
	assert.True(t, ragerr.Timeout.Matches(updates[0].Err))
}

type callCountingSpeculative struct {
	stubSpeculative
	calls *int
}

func (s callCountingSpeculative) Run(ctx context.Context, q retrieval.Query, params strategy.Parameters) (PathResult, error) {
	*s.calls++
	return s.stubSpeculative.Run(ctx, q, params)
}

func TestRouter_Balanced_ZeroSpeculativeTimeoutSkipsSpeculativePath(t *testing.T) {
	rec := &recordingRecorder{}
	calls := 0
	r, err := NewRouter(Config{
		Speculative: callCountingSpeculative{stubSpeculative: stubSpeculative{result: PathResult{Answer: "fast", Confidence: 0.9}}, calls: &calls},
		Agentic:     stubAgentic{result: agent.Result{Answer: "agentic only", Confidence: 0.8, Status: agent.StatusFinal}},
		Recorder:    rec,
	})
	require.NoError(t, err)

	ch, err := r.Route(context.Background(), retrieval.Query{Text: "q"}, retrieval.ModeBalanced, strategy.Parameters{}, 0, time.Second)
	require.NoError(t, err)

	updates := drain(t, ch)
	require.Len(t, updates, 1)
	assert.Equal(t, StatusFinal, updates[0].Status)
	assert.Equal(t, PathAgentic, updates[0].Path)
	assert.Equal(t, "agentic only", updates[0].Result.Answer)
	assert.Equal(t, 0, calls, "speculative path must not run when speculativeTimeout is 0 in balanced mode")
	assert.Equal(t, []PathName{PathAgentic}, rec.latencies)
}

func TestRouter_UnknownModeIsRejected(t *testing.T) {
	r, err := NewRouter(Config{Speculative: stubSpeculative{}, Agentic: stubAgentic{}})
	require.NoError(t, err)

	_, err = r.Route(context.Background(), retrieval.Query{Text: "q"}, retrieval.Mode("bogus"), strategy.Parameters{}, time.Second, time.Second)
	assert.Error(t, err)
}
