// Package agent implements the agentic reasoning engine (spec.md §4.2): on
// non-trivial queries, decompose, retrieve, observe, evaluate, and reflect
// until an answer of sufficient quality is produced or the iteration budget
// is exhausted. The per-iteration work is a flow.Node; the whole loop is a
// flow.Loop[*State, *State], following the teacher's flow package rather
// than a bespoke for-loop — Loop re-runs its Node against the same input
// value every iteration, so State is carried as a pointer and mutated in
// place, making each call see the previous iteration's results.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/ragcore-ai/engine/flow"
	"github.com/ragcore-ai/engine/internal/assess"
	"github.com/ragcore-ai/engine/internal/document"
	"github.com/ragcore-ai/engine/internal/episode"
	"github.com/ragcore-ai/engine/internal/generation"
	"github.com/ragcore-ai/engine/internal/ragerr"
	"github.com/ragcore-ai/engine/internal/retrieval"
	"github.com/ragcore-ai/engine/internal/strategy"
)

// Status names a state in the agentic reasoning state machine (spec.md
// §4.2): INIT → DECOMPOSE → RETRIEVE → EVALUATE_RETRIEVAL → (REFINE_QUERY |
// WEB_FALLBACK | COMBINE | GENERATE) → EVALUATE_GENERATION → (FINAL |
// ITERATE).
type Status string

const (
	StatusInit               Status = "init"
	StatusDecompose          Status = "decompose"
	StatusRetrieve           Status = "retrieve"
	StatusEvaluateRetrieval  Status = "evaluate_retrieval"
	StatusRefineQuery        Status = "refine_query"
	StatusWebFallback        Status = "web_fallback"
	StatusCombine            Status = "combine"
	StatusGenerate           Status = "generate"
	StatusEvaluateGeneration Status = "evaluate_generation"
	StatusIterate            Status = "iterate"
	StatusFinal              Status = "final"
	StatusFailed             Status = "failed"
	StatusBudgetExhausted    Status = "budget_exhausted"
)

// Terminal reports whether s is one of the state machine's three terminal
// states.
func (s Status) Terminal() bool {
	return s == StatusFinal || s == StatusFailed || s == StatusBudgetExhausted
}

// CorrectiveConfidenceBoost is added to the final retrieval confidence when
// a web_search corrective action supplied at least one new source (spec.md
// §9 Open Question, resolved in SPEC_FULL.md §4.2). Exposed via
// strategy.Parameters.CorrectiveBoost so callers can override it.
const CorrectiveConfidenceBoost = strategy.DefaultCorrectiveBoost

// Result is the agentic engine's output (spec.md §4.2 AgenticResult).
type Result struct {
	Answer      string
	Sources     []document.SearchResult
	Assessments []assess.Assessment
	Iterations  int
	Confidence  float64
	Status      Status

	// CorrectionsApplied lists, in application order and without repeats,
	// which corrective actions (assess.ActionRefineQuery,
	// assess.ActionWebSearch, assess.ActionCombine) the run applied across
	// its iterations (spec.md §8's boundary scenario for the corrective
	// fallback path).
	CorrectionsApplied []string
}

// State is the evolving loop state threaded through flow.Loop by pointer
// mutation (see package doc). It is not safe for concurrent use; one run
// owns one State.
type State struct {
	Query    retrieval.Query
	Analysis retrieval.Analysis
	Params   strategy.Parameters

	Iteration int
	Status    Status

	Documents   []document.SearchResult
	Answer      string
	Assessments []assess.Assessment

	RetrievalConfidence  float64
	GenerationConfidence float64

	lastCorrective    Status // StatusRefineQuery | StatusWebFallback | StatusCombine | "" — never repeated on consecutive iterations
	correctionApplied bool
	webSourcesAdded   bool

	// correctionsApplied accumulates the distinct assess.Action values
	// actually applied across every iteration, surfaced on Result so a
	// caller can observe which corrective paths a run took.
	correctionsApplied []string

	PlanSummary string
}

// recordCorrection appends action to State.correctionsApplied if it isn't
// already present.
func (s *State) recordCorrection(action string) {
	for _, a := range s.correctionsApplied {
		if a == action {
			return
		}
	}
	s.correctionsApplied = append(s.correctionsApplied, action)
}

// EngineConfig wires the agentic engine's dependencies.
type EngineConfig struct {
	// Retrievers is keyed by Retriever.Name(): "vector", "web", "local".
	// "vector" is required; the corrective branch uses "web" when present.
	Retrievers map[string]retrieval.Retriever

	Rewriter  retrieval.QueryTransformer // used to refine_query
	Evaluator assess.Evaluator
	Model     generation.Model
	Embedder  generation.Embedder // optional; enables episodic warm-start
	Episodes  episode.Store       // optional
	Analyzer  *retrieval.Analyzer

	// ObservationRelevanceThreshold drops retrieved items whose word-overlap
	// (Jaccard) similarity to already-accepted content exceeds 1-threshold
	// (i.e. whose marginal information is below threshold); embeddings are
	// not used for this. Defaults to 0.15.
	ObservationRelevanceThreshold float64

	// CorrectiveConfidenceBoost overrides CorrectiveConfidenceBoost. Zero
	// means use the default.
	CorrectiveConfidenceBoost float64
}

// Engine runs the plan/act/observe loop described in spec.md §4.2.
type Engine struct {
	retrievers map[string]retrieval.Retriever
	rewriter   retrieval.QueryTransformer
	evaluator  assess.Evaluator
	model      generation.Model
	embedder   generation.Embedder
	episodes   episode.Store
	analyzer   *retrieval.Analyzer

	observationThreshold float64
	correctiveBoost      float64
}

// NewEngine validates cfg and constructs an Engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Retrievers == nil || cfg.Retrievers["vector"] == nil {
		return nil, ragerr.New(ragerr.InvalidArgument, "agent engine: a \"vector\" retriever is required")
	}
	if cfg.Evaluator == nil {
		return nil, ragerr.New(ragerr.InvalidArgument, "agent engine: evaluator is required")
	}
	if cfg.Model == nil {
		return nil, ragerr.New(ragerr.InvalidArgument, "agent engine: model is required")
	}
	if cfg.Analyzer == nil {
		return nil, ragerr.New(ragerr.InvalidArgument, "agent engine: analyzer is required")
	}

	threshold := cfg.ObservationRelevanceThreshold
	if threshold == 0 {
		threshold = 0.15
	}
	boost := cfg.CorrectiveConfidenceBoost
	if boost == 0 {
		boost = CorrectiveConfidenceBoost
	}

	return &Engine{
		retrievers:           cfg.Retrievers,
		rewriter:             cfg.Rewriter,
		evaluator:            cfg.Evaluator,
		model:                cfg.Model,
		embedder:             cfg.Embedder,
		episodes:             cfg.Episodes,
		analyzer:             cfg.Analyzer,
		observationThreshold: threshold,
		correctiveBoost:      boost,
	}, nil
}

// Run executes the agentic state machine for one query, returning once a
// terminal state is reached.
func (e *Engine) Run(ctx context.Context, q retrieval.Query, params strategy.Parameters) (Result, error) {
	state := &State{
		Query:  q,
		Params: params,
		Status: StatusDecompose,
	}
	state.Analysis = e.analyzer.Analyze(q.Text)

	e.warmStart(ctx, state)
	if state.PlanSummary == "" {
		state.PlanSummary = decomposeSummary(state.Analysis)
	}

	maxIterations := params.MaxIterations
	if maxIterations <= 0 {
		return Result{Status: StatusBudgetExhausted}, nil
	}

	loop, err := flow.NewLoop(&flow.LoopConfig[*State, *State]{
		Node:          flow.Processor[*State, *State](e.runIteration),
		MaxIterations: maxIterations,
		Terminator: func(_ context.Context, _ int, _ *State, output *State) (bool, error) {
			return output.Status.Terminal(), nil
		},
	})
	if err != nil {
		return Result{}, ragerr.Wrap(ragerr.Internal, "agent engine: build loop", err)
	}

	final, err := loop.Run(ctx, state)
	if err != nil {
		return Result{Status: StatusFailed}, err
	}

	if !final.Status.Terminal() {
		final.Status = StatusBudgetExhausted
	}

	return Result{
		Answer:             final.Answer,
		Sources:            final.Documents,
		Assessments:        final.Assessments,
		Iterations:         final.Iteration,
		Confidence:         finalConfidence(final.RetrievalConfidence, final.GenerationConfidence),
		Status:             final.Status,
		CorrectionsApplied: final.correctionsApplied,
	}, nil
}

func finalConfidence(retrievalConfidence, generationConfidence float64) float64 {
	c := 0.4*retrievalConfidence + 0.6*generationConfidence
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// warmStart looks up the episode store for a semantically similar past
// query (cosine >= threshold, same language) and, if found, seeds the
// state's plan summary instead of producing a new one (spec.md §4.2).
func (e *Engine) warmStart(ctx context.Context, state *State) {
	if e.episodes == nil || e.embedder == nil {
		return
	}
	embeddings, err := e.embedder.Embed(ctx, []string{state.Query.Text})
	if err != nil || len(embeddings) == 0 {
		return
	}
	language, _ := state.Query.Constraints["language"].(string)
	ep, found, err := e.episodes.WarmStart(ctx, embeddings[0], language)
	if err != nil || !found {
		return
	}
	state.PlanSummary = ep.PlanSummary
}

// decomposeSummary produces a new DECOMPOSE plan when no episode warm-start
// hit, a one-line restatement of the query's analysis rather than a full
// sub-query breakdown — the agentic loop itself does the real work
// iteration by iteration.
func decomposeSummary(a retrieval.Analysis) string {
	return fmt.Sprintf("%s query, complexity %.2f, keywords: %s", a.Type, a.Complexity, strings.Join(a.Keywords, ", "))
}

// runIteration runs one pass of RETRIEVE → EVALUATE_RETRIEVAL → corrective
// branch → GENERATE → EVALUATE_GENERATION and assigns the resulting Status,
// per spec.md §4.2's ordering rule ("within one iteration, retrieval
// precedes evaluation precedes generation").
func (e *Engine) runIteration(ctx context.Context, state *State) (*State, error) {
	if err := ctx.Err(); err != nil {
		state.Status = StatusFailed
		return state, err
	}

	retrieved := e.retrieve(ctx, state.Query.Text, state.Params.TopK, "vector")
	state.mergeObservations(retrieved, e.observationThreshold)

	augmented := []retrieval.AugmentedQuery{{Query: state.Query, Documents: state.Documents}}
	retrievalAssessment, err := e.evaluator.AssessRetrieval(ctx, state.Query, augmented)
	if err != nil {
		state.Status = StatusFailed
		return state, ragerr.Wrap(ragerr.GenerationFailure, "assess retrieval", err)
	}
	state.Assessments = append(state.Assessments, retrievalAssessment)
	state.RetrievalConfidence = retrievalAssessment.Confidence

	state.correctionApplied, state.webSourcesAdded = false, false

	budgetRemains := state.Iteration < state.Params.MaxIterations-1
	if retrievalAssessment.NeedsCorrection() && budgetRemains {
		e.applyCorrection(ctx, state, retrievalAssessment)
	}

	resp, err := e.generate(ctx, state)
	if err != nil {
		state.Status = StatusFailed
		return state, ragerr.Wrap(ragerr.GenerationFailure, "agentic generation", err)
	}
	state.Answer = resp

	augmented = []retrieval.AugmentedQuery{{Query: state.Query, Documents: state.Documents}}
	generationAssessment, err := e.evaluator.AssessGeneration(ctx, state.Query, state.Answer, augmented)
	if err != nil {
		state.Status = StatusFailed
		return state, ragerr.Wrap(ragerr.GenerationFailure, "assess generation", err)
	}
	state.Assessments = append(state.Assessments, generationAssessment)
	state.GenerationConfidence = generationAssessment.Confidence

	if state.correctionApplied && state.webSourcesAdded {
		boost := state.Params.CorrectiveBoost
		if boost == 0 {
			boost = e.correctiveBoost
		}
		state.RetrievalConfidence += boost
		if state.RetrievalConfidence > 1 {
			state.RetrievalConfidence = 1
		}
	}

	switch {
	case generationAssessment.NeedsRegeneration() && budgetRemains:
		state.Status = StatusIterate
	case generationAssessment.NeedsRegeneration():
		state.Status = StatusBudgetExhausted
	default:
		state.Status = StatusFinal
	}

	state.Iteration++
	return state, nil
}

// retrieve calls the named retriever and returns an empty slice (rather than
// failing the iteration) on error, per §4.2's failure semantics: "a tool
// failure during retrieval is logged and the engine proceeds using what it
// has".
func (e *Engine) retrieve(ctx context.Context, query string, topK int, name string) []document.SearchResult {
	r, ok := e.retrievers[name]
	if !ok {
		return nil
	}
	results, err := r.Search(ctx, query, topK, "")
	if err != nil {
		return nil
	}
	return results
}

// applyCorrection ports corrective_rag.py's generate_with_correction branch
// logic: refine_query re-retrieves locally with a rewritten query,
// web_search extends the document set with external results, and combine
// does both. The same corrective action is never applied on consecutive
// iterations (spec.md §4.2).
func (e *Engine) applyCorrection(ctx context.Context, state *State, a assess.Assessment) {
	action := correctiveStatus(a.RecommendedAction, state.lastCorrective)

	switch action {
	case StatusRefineQuery:
		refined := e.refine(ctx, state.Query)
		more := e.retrieve(ctx, refined.Text, state.Params.TopK, "vector")
		state.mergeObservations(more, e.observationThreshold)
		state.correctionApplied = true
		state.recordCorrection(string(assess.ActionRefineQuery))

	case StatusWebFallback:
		if !state.Params.EnableWeb {
			state.correctionApplied = false
			break
		}
		web := e.retrieve(ctx, state.Query.Text, 5, "web")
		state.mergeObservations(web, e.observationThreshold)
		state.correctionApplied = true
		state.webSourcesAdded = len(web) > 0
		state.recordCorrection(string(assess.ActionWebSearch))

	case StatusCombine:
		refined := e.refine(ctx, state.Query)
		more := e.retrieve(ctx, refined.Text, state.Params.TopK/2, "vector")
		state.mergeObservations(more, e.observationThreshold)
		if state.Params.EnableWeb {
			web := e.retrieve(ctx, state.Query.Text, 3, "web")
			state.mergeObservations(web, e.observationThreshold)
			state.webSourcesAdded = len(web) > 0
		}
		state.correctionApplied = true
		state.recordCorrection(string(assess.ActionCombine))

	default:
		state.correctionApplied = false
	}

	state.lastCorrective = action
}

// correctiveStatus maps an assess.Action to the corresponding Status,
// falling back to StatusRefineQuery (the cheapest corrective action) if the
// recommended action would repeat the previous iteration's action.
func correctiveStatus(action assess.Action, last Status) Status {
	var candidate Status
	switch action {
	case assess.ActionWebSearch:
		candidate = StatusWebFallback
	case assess.ActionCombine:
		candidate = StatusCombine
	default:
		candidate = StatusRefineQuery
	}
	if candidate == last {
		for _, alt := range []Status{StatusRefineQuery, StatusWebFallback, StatusCombine} {
			if alt != last {
				return alt
			}
		}
	}
	return candidate
}

func (e *Engine) refine(ctx context.Context, q retrieval.Query) retrieval.Query {
	if e.rewriter == nil {
		return q
	}
	refined, err := e.rewriter.Transform(ctx, q)
	if err != nil {
		return q
	}
	return refined
}

// generate builds a grounded prompt from the state's accepted documents and
// calls the generation model.
func (e *Engine) generate(ctx context.Context, state *State) (string, error) {
	prompt := buildPrompt(state.Query.Text, state.Documents)
	resp, err := e.model.Generate(ctx, generation.Request{
		Prompt:      prompt,
		Temperature: state.Params.Temperature,
		MaxTokens:   800,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func buildPrompt(query string, docs []document.SearchResult) string {
	contextBlock := ""
	for i, d := range docs {
		if i >= 10 {
			break
		}
		contextBlock += fmt.Sprintf("[%d] %s\n", i+1, d.Text)
	}
	return fmt.Sprintf(`Answer the question using only the context below. If the context is
insufficient, say so explicitly rather than guessing.

Context:
%s

Question: %s

Answer:`, contextBlock, query)
}

// mergeObservations appends newDocs to s.Documents, dropping items whose
// marginal information relative to already-accepted content is below
// threshold. Marginal information is approximated by exact-ID dedup plus a
// text-overlap heuristic in every case; embeddings are not consulted, even
// when the Engine has an Embedder configured.
func (s *State) mergeObservations(newDocs []document.SearchResult, threshold float64) {
	seen := make(map[string]struct{}, len(s.Documents))
	for _, d := range s.Documents {
		seen[d.ID] = struct{}{}
	}
	for _, d := range newDocs {
		if _, dup := seen[d.ID]; dup {
			continue
		}
		if marginalInformation(d.Text, s.Documents) < threshold {
			continue
		}
		seen[d.ID] = struct{}{}
		s.Documents = append(s.Documents, d)
	}
}

// marginalInformation estimates how much new information d.Text contributes
// over the already-accepted documents via word-overlap (Jaccard distance),
// a cheap stand-in for the embedding-similarity measure spec.md §4.2
// describes; it is used whether or not an Embedder is wired. Always
// returns 1 (fully novel) against an empty accepted set.
func marginalInformation(text string, accepted []document.SearchResult) float64 {
	if len(accepted) == 0 {
		return 1
	}
	words := tokenSet(text)
	if len(words) == 0 {
		return 0
	}
	maxOverlap := 0.0
	for _, a := range accepted {
		overlap := jaccard(words, tokenSet(a.Text))
		if overlap > maxOverlap {
			maxOverlap = overlap
		}
	}
	return 1 - maxOverlap
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	word := make([]rune, 0, 16)
	flush := func() {
		if len(word) > 0 {
			set[string(word)] = struct{}{}
			word = word[:0]
		}
	}
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			word = append(word, r)
		} else {
			flush()
		}
	}
	flush()
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
