// Package strategy implements the Adaptive Strategy Selector (spec.md §4.3):
// a pure mapping from a query's Analysis to an execution Strategy and its
// Parameters, with a rolling-performance override and two context overrides
// layered on top, mirroring original_source's backend/services/adaptive_rag.py
// select_strategy ordering.
package strategy

import (
	"fmt"

	"github.com/ragcore-ai/engine/internal/retrieval"
)

// Strategy names one of the five execution paths the agentic engine can run.
type Strategy string

const (
	Direct         Strategy = "direct"
	Hybrid         Strategy = "hybrid"
	SelfReflective Strategy = "self_reflective"
	MultiHop       Strategy = "multi_hop"
	Corrective     Strategy = "corrective"
)

// DefaultCorrectiveBoost is the confidence bump applied when a corrective
// web_search action contributes new sources (spec.md §9, Open Question 2).
const DefaultCorrectiveBoost = 0.1

// Parameters configures a Strategy's run. Callers may override
// CorrectiveBoost; every selection path fills it with DefaultCorrectiveBoost
// unless the caller supplies ctx.CorrectiveBoost.
type Parameters struct {
	TopK            int
	MaxIterations   int
	MaxHops         int
	EnableWeb       bool
	Temperature     float64
	CorrectiveBoost float64
}

// SelectionContext carries the per-request overrides read from
// Query.Constraints at the router boundary (spec.md §4.3).
type SelectionContext struct {
	FastMode        bool
	HighAccuracy    bool
	CorrectiveBoost float64 // zero means "use DefaultCorrectiveBoost"
}

// ContextFromConstraints extracts fast_mode/high_accuracy/corrective_boost
// from a Query's free-form Constraints map, tolerating absent or
// wrongly-typed keys.
func ContextFromConstraints(constraints map[string]any) SelectionContext {
	var ctx SelectionContext
	if v, ok := constraints["fast_mode"].(bool); ok {
		ctx.FastMode = v
	}
	if v, ok := constraints["high_accuracy"].(bool); ok {
		ctx.HighAccuracy = v
	}
	if v, ok := constraints["corrective_boost"].(float64); ok {
		ctx.CorrectiveBoost = v
	}
	return ctx
}

const (
	lowComplexity     = 0.35
	midComplexity     = 0.70
	performanceWindow = 20
	performanceFloor  = 0.60
)

// Select applies the spec.md §4.3 rule table, then the performance override,
// then the fast_mode/high_accuracy context overrides, in that order. perf
// may be nil (no performance history yet, e.g. process startup).
func Select(analysis retrieval.Analysis, ctx SelectionContext, perf *PerformanceTracker) (Strategy, Parameters, string) {
	strat, params, reason := selectByRules(analysis)

	boost := ctx.CorrectiveBoost
	if boost == 0 {
		boost = DefaultCorrectiveBoost
	}
	params.CorrectiveBoost = boost

	if perf != nil {
		if avg, ok := perf.RollingAverage(); ok && avg < performanceFloor {
			strat = Hybrid
			params = Parameters{TopK: 10, MaxIterations: 1, Temperature: 0.3, CorrectiveBoost: boost}
			reason = fmt.Sprintf("performance override: rolling avg confidence %.2f < %.2f over last %d executions", avg, performanceFloor, perf.Len())
		}
	}

	if ctx.FastMode {
		if params.TopK > 7 {
			params.TopK = 7
		}
		if strat == SelfReflective || strat == Corrective {
			strat = Hybrid
			params.MaxIterations = 1
			params.EnableWeb = false
			reason += "; fast_mode downgraded to hybrid"
		}
	}

	if ctx.HighAccuracy {
		if strat == Direct {
			strat = SelfReflective
			reason += "; high_accuracy upgraded direct to self-reflective"
		}
		if params.MaxIterations < 3 {
			params.MaxIterations = 3
		}
	}

	return strat, params, reason
}

// selectByRules applies the ordered table from spec.md §4.3. First match
// wins; order matters.
func selectByRules(a retrieval.Analysis) (Strategy, Parameters, string) {
	switch {
	case a.Complexity < lowComplexity && a.Type == retrieval.TypeFactual:
		return Direct, Parameters{TopK: 5, MaxIterations: 1, Temperature: 0.2},
			"low complexity, factual query"
	case a.Complexity < lowComplexity:
		return Hybrid, Parameters{TopK: 7, MaxIterations: 1, Temperature: 0.3},
			"low complexity"
	case a.Complexity < midComplexity && a.RequiresReasoning:
		return SelfReflective, Parameters{TopK: 10, MaxIterations: 2, Temperature: 0.4},
			"moderate complexity, requires reasoning"
	case a.Complexity < midComplexity:
		return Hybrid, Parameters{TopK: 10, MaxIterations: 1, Temperature: 0.3},
			"moderate complexity"
	case a.Type == retrieval.TypeMultiStep:
		return MultiHop, Parameters{TopK: 12, MaxHops: 3, MaxIterations: 1, Temperature: 0.4},
			"multi-step query"
	case a.RequiresMultipleSources:
		return Corrective, Parameters{TopK: 15, EnableWeb: true, MaxIterations: 1, Temperature: 0.4},
			"requires multiple sources"
	default:
		return SelfReflective, Parameters{TopK: 12, MaxIterations: 3, Temperature: 0.5},
			"fallback"
	}
}
