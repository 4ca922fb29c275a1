// Package router implements the Hybrid Query Router (spec.md §4.1): given a
// Query and a Mode, it runs a fast speculative path, a full agentic path, or
// both, streaming whichever result is ready first and reconciling a final
// answer once both paths have settled.
//
// flow.Parallel launches a fixed set of processors and blocks until an
// aggregator can fold them into one output — it has no hook for emitting an
// interim value the moment the first processor finishes, which is exactly
// what balanced mode needs. flow.AsyncResult does: each path completes its
// own promise independently, so the router can react to whichever settles
// first and still wait on the other. Router therefore drives both paths with
// flow.AsyncResult directly; see DESIGN.md for the fuller rationale.
package router

import (
	"context"
	"time"

	"github.com/ragcore-ai/engine/ai/commons/document/id"
	"github.com/ragcore-ai/engine/flow"
	"github.com/ragcore-ai/engine/internal/agent"
	"github.com/ragcore-ai/engine/internal/document"
	"github.com/ragcore-ai/engine/internal/ragerr"
	"github.com/ragcore-ai/engine/internal/retrieval"
	"github.com/ragcore-ai/engine/internal/strategy"
	"github.com/ragcore-ai/engine/pkg/safe"
)

// requestIDs hands out the identifier that correlates a request's two path
// recordings in the Performance Monitor (spec.md §4.8's per-request event).
// Reuses the teacher's id.Generator rather than calling uuid.New directly.
var requestIDs = id.NewUUIDGenerator()

// UpdateStatus names the lifecycle stage of a RoutedUpdate.
type UpdateStatus string

const (
	StatusInterim  UpdateStatus = "interim"
	StatusFinal    UpdateStatus = "final"
	StatusFallback UpdateStatus = "fallback"
	StatusError    UpdateStatus = "error"
)

// PathName identifies which path produced a RoutedUpdate.
type PathName string

const (
	PathSpeculative PathName = "speculative"
	PathAgentic     PathName = "agentic"
)

// PathResult is the common shape both the speculative and the agentic path
// reduce to for the router's purposes.
type PathResult struct {
	Answer     string
	Sources    []document.SearchResult
	Confidence float64
}

// RoutedUpdate is one value on the channel Route returns. A caller in fast
// or deep mode sees exactly one update before the channel closes; balanced
// mode may send an interim update before the final one.
type RoutedUpdate struct {
	Status UpdateStatus
	Path   PathName
	Result PathResult
	Err    error
}

// SpeculativeRunner executes the router's fast, single-shot path: one
// retrieval call followed by one generation call, no self-assessment loop.
type SpeculativeRunner interface {
	Run(ctx context.Context, q retrieval.Query, params strategy.Parameters) (PathResult, error)
}

// AgenticRunner executes the full plan/act/observe loop. *agent.Engine
// satisfies this directly.
type AgenticRunner interface {
	Run(ctx context.Context, q retrieval.Query, params strategy.Parameters) (agent.Result, error)
}

// Recorder receives the router's observable side effects (spec.md §4.1: "the
// router emits timing and per-path confidence to the Performance Monitor").
// requestID correlates the (at most two) RecordPathLatency calls a single
// Route invocation produces, and the RecordAnomaly call it may also
// produce, into one logical request for §4.8's event shape. Implemented by
// internal/monitor; nil is a valid no-op Recorder for callers that don't
// wire one.
type Recorder interface {
	RecordPathLatency(requestID string, mode retrieval.Mode, path PathName, elapsed time.Duration, confidence float64, err error)
	RecordAnomaly(requestID string, reason string)
}

type noopRecorder struct{}

func (noopRecorder) RecordPathLatency(string, retrieval.Mode, PathName, time.Duration, float64, error) {
}
func (noopRecorder) RecordAnomaly(string, string) {}

// Config wires a Router's dependencies and default timeouts.
type Config struct {
	Speculative SpeculativeRunner
	Agentic     AgenticRunner
	Recorder    Recorder

	// DefaultSpeculativeTimeout and DefaultAgenticTimeout apply when Route is
	// called with a zero duration for the corresponding path.
	DefaultSpeculativeTimeout time.Duration
	DefaultAgenticTimeout     time.Duration

	// MinAcceptableConfidence gates whether a completed speculative result is
	// worth streaming as an interim update at all (spec.md §4.1: "streamed as
	// interim once it completes with acceptable confidence"). Zero means
	// "always stream it".
	MinAcceptableConfidence float64
}

// Router implements spec.md §4.1.
type Router struct {
	speculative SpeculativeRunner
	agentic     AgenticRunner
	recorder    Recorder

	defaultSpeculativeTimeout time.Duration
	defaultAgenticTimeout     time.Duration
	minAcceptableConfidence   float64
}

// NewRouter validates cfg and constructs a Router.
func NewRouter(cfg Config) (*Router, error) {
	if cfg.Speculative == nil {
		return nil, ragerr.New(ragerr.InvalidArgument, "router: speculative runner is required")
	}
	if cfg.Agentic == nil {
		return nil, ragerr.New(ragerr.InvalidArgument, "router: agentic runner is required")
	}

	recorder := cfg.Recorder
	if recorder == nil {
		recorder = noopRecorder{}
	}

	specTimeout := cfg.DefaultSpeculativeTimeout
	if specTimeout <= 0 {
		specTimeout = 800 * time.Millisecond
	}
	agenticTimeout := cfg.DefaultAgenticTimeout
	if agenticTimeout <= 0 {
		agenticTimeout = 12 * time.Second
	}

	return &Router{
		speculative:               cfg.Speculative,
		agentic:                   cfg.Agentic,
		recorder:                  recorder,
		defaultSpeculativeTimeout: specTimeout,
		defaultAgenticTimeout:     agenticTimeout,
		minAcceptableConfidence:   cfg.MinAcceptableConfidence,
	}, nil
}

// Route runs q through the path(s) selected by mode and returns a channel of
// updates. The channel is closed once the router has nothing further to say.
// A zero agenticTimeout falls back to the Router's configured default, as
// does a zero speculativeTimeout in fast mode. In balanced mode, though, a
// caller-supplied speculativeTimeout of exactly zero means "skip the
// speculative path" (spec.md §8) rather than "use the default timeout" —
// Route runs the agentic path alone in that case instead of coercing it.
func (r *Router) Route(ctx context.Context, q retrieval.Query, mode retrieval.Mode, params strategy.Parameters, speculativeTimeout, agenticTimeout time.Duration) (<-chan RoutedUpdate, error) {
	skipSpeculative := mode == retrieval.ModeBalanced && speculativeTimeout == 0

	if speculativeTimeout <= 0 && !skipSpeculative {
		speculativeTimeout = r.defaultSpeculativeTimeout
	}
	if agenticTimeout <= 0 {
		agenticTimeout = r.defaultAgenticTimeout
	}

	requestID := requestIDs.GenerateId()
	updates := make(chan RoutedUpdate, 2)

	switch mode {
	case retrieval.ModeFast:
		go r.runFast(ctx, requestID, q, params, speculativeTimeout, updates)
	case retrieval.ModeDeep:
		go r.runDeep(ctx, requestID, q, params, retrieval.ModeDeep, agenticTimeout, updates)
	case retrieval.ModeBalanced:
		if skipSpeculative {
			go r.runDeep(ctx, requestID, q, params, retrieval.ModeBalanced, agenticTimeout, updates)
		} else {
			go r.runBalanced(ctx, requestID, q, params, speculativeTimeout, agenticTimeout, updates)
		}
	default:
		close(updates)
		return updates, ragerr.New(ragerr.InvalidArgument, "router: unknown mode "+string(mode))
	}

	return updates, nil
}

// runFast runs only the speculative path. A timeout is a failure, not a
// fallback — there is no second path to fall back to.
func (r *Router) runFast(ctx context.Context, requestID string, q retrieval.Query, params strategy.Parameters, timeout time.Duration, updates chan<- RoutedUpdate) {
	defer close(updates)

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	result, err := r.speculative.Run(runCtx, q, params)
	r.recorder.RecordPathLatency(requestID, retrieval.ModeFast, PathSpeculative, time.Since(start), result.Confidence, err)

	if err != nil {
		updates <- errorUpdate(PathSpeculative, classify(runCtx, err))
		return
	}
	updates <- RoutedUpdate{Status: StatusFinal, Path: PathSpeculative, Result: result}
}

// runDeep runs only the agentic path. mode is recorded as-is so a balanced
// request that skipped the speculative path (speculativeTimeout == 0, per
// spec.md §8) still shows up in the monitor as balanced, not deep.
func (r *Router) runDeep(ctx context.Context, requestID string, q retrieval.Query, params strategy.Parameters, mode retrieval.Mode, timeout time.Duration, updates chan<- RoutedUpdate) {
	defer close(updates)

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	res, err := r.agentic.Run(runCtx, q, params)
	r.recorder.RecordPathLatency(requestID, mode, PathAgentic, time.Since(start), res.Confidence, err)

	if err != nil {
		updates <- errorUpdate(PathAgentic, classify(runCtx, err))
		return
	}
	updates <- RoutedUpdate{Status: StatusFinal, Path: PathAgentic, Result: fromAgentResult(res)}
}

// runBalanced launches both paths concurrently, streams an interim update
// off the speculative path as soon as it settles, then reconciles the two
// once the agentic path settles or times out, per spec.md §4.1's algorithm.
func (r *Router) runBalanced(ctx context.Context, requestID string, q retrieval.Query, params strategy.Parameters, specTimeout, agenticTimeout time.Duration, updates chan<- RoutedUpdate) {
	defer close(updates)

	specCtx, specCancel := context.WithTimeout(ctx, specTimeout)
	defer specCancel()
	agenticCtx, agenticCancel := context.WithTimeout(ctx, agenticTimeout)
	defer agenticCancel()

	specAsync := flow.NewAsyncResult[PathResult](specCtx)
	agenticAsync := flow.NewAsyncResult[PathResult](agenticCtx)

	// Both paths run on their own goroutine, one per collaborator the router
	// doesn't control; safe.Go keeps a panic in either from taking the other
	// path's result down with it, surfacing it as a path error instead.
	safe.Go(func() {
		start := time.Now()
		result, err := r.speculative.Run(specCtx, q, params)
		r.recorder.RecordPathLatency(requestID, retrieval.ModeBalanced, PathSpeculative, time.Since(start), result.Confidence, err)
		specAsync.Set(result, err)
	}, func(err error) {
		specAsync.Set(PathResult{}, err)
	})

	safe.Go(func() {
		start := time.Now()
		res, err := r.agentic.Run(agenticCtx, q, params)
		r.recorder.RecordPathLatency(requestID, retrieval.ModeBalanced, PathAgentic, time.Since(start), res.Confidence, err)
		agenticAsync.Set(fromAgentResult(res), err)
	}, func(err error) {
		agenticAsync.Set(PathResult{}, err)
	})

	specResult, specErr := specAsync.Result()
	if specErr == nil && specResult.Confidence >= r.minAcceptableConfidence {
		updates <- RoutedUpdate{Status: StatusInterim, Path: PathSpeculative, Result: specResult}
	}

	agenticResult, agenticErr := agenticAsync.Result()

	switch {
	case agenticErr == nil && specErr == nil:
		r.reconcile(requestID, specResult, agenticResult, updates)

	case agenticErr == nil && specErr != nil:
		updates <- RoutedUpdate{Status: StatusFinal, Path: PathAgentic, Result: agenticResult}

	case agenticErr != nil && specErr == nil:
		// Whether the agentic path errored outright or simply ran out of
		// time, the speculative result is what we have to finalize with.
		updates <- RoutedUpdate{Status: StatusFallback, Path: PathSpeculative, Result: specResult}

	default:
		updates <- errorUpdate(PathAgentic, ragerr.MostInformative(specErr, agenticErr))
	}
}

// reconcile applies spec.md §4.1's tie-break rule: the agentic result
// supersedes the speculative one whenever both succeed, unless the agentic
// confidence is strictly lower, in which case the higher-confidence result
// wins and the discrepancy is recorded as an anomaly.
func (r *Router) reconcile(requestID string, spec, agentic PathResult, updates chan<- RoutedUpdate) {
	if agentic.Confidence < spec.Confidence {
		r.recorder.RecordAnomaly(requestID, "agentic confidence lower than speculative on a completed run")
		updates <- RoutedUpdate{Status: StatusFinal, Path: PathSpeculative, Result: spec}
		return
	}
	updates <- RoutedUpdate{Status: StatusFinal, Path: PathAgentic, Result: agentic}
}

func fromAgentResult(res agent.Result) PathResult {
	return PathResult{Answer: res.Answer, Sources: res.Sources, Confidence: res.Confidence}
}

func errorUpdate(path PathName, err error) RoutedUpdate {
	return RoutedUpdate{Status: StatusError, Path: path, Err: err}
}

// classify converts a bare context error into the router's ragerr.Timeout
// kind so callers can branch on Kind rather than on context sentinels; any
// other error is wrapped under the kind ragerr.ClassifyOf reports for it.
func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ragerr.Wrap(ragerr.Timeout, "router: path deadline exceeded", err)
	}
	return ragerr.Wrap(ragerr.ClassifyOf(err), "router: path failed", err)
}
