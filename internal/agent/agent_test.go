package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragcore-ai/engine/internal/assess"
	"github.com/ragcore-ai/engine/internal/document"
	"github.com/ragcore-ai/engine/internal/episode"
	"github.com/ragcore-ai/engine/internal/generation"
	"github.com/ragcore-ai/engine/internal/retrieval"
	"github.com/ragcore-ai/engine/internal/strategy"
)

type stubRetriever struct {
	name    string
	results []document.SearchResult
	calls   int
}

func (s *stubRetriever) Name() string                         { return s.name }
func (s *stubRetriever) Healthy(ctx context.Context) bool      { return true }
func (s *stubRetriever) Search(ctx context.Context, query string, topK int, filters string) ([]document.SearchResult, error) {
	s.calls++
	if topK < len(s.results) {
		return s.results[:topK], nil
	}
	return s.results, nil
}

type stubModel struct {
	text string
}

func (m *stubModel) Name() string { return "stub" }
func (m *stubModel) Generate(ctx context.Context, req generation.Request) (generation.Response, error) {
	return generation.Response{Text: m.text}, nil
}

type scriptedEvaluator struct {
	retrieval  []assess.Assessment
	generation []assess.Assessment
	ri, gi     int
}

func (e *scriptedEvaluator) AssessRetrieval(ctx context.Context, query retrieval.Query, results []retrieval.AugmentedQuery) (assess.Assessment, error) {
	a := e.retrieval[e.ri]
	if e.ri < len(e.retrieval)-1 {
		e.ri++
	}
	return a, nil
}

func (e *scriptedEvaluator) AssessGeneration(ctx context.Context, query retrieval.Query, answer string, sources []retrieval.AugmentedQuery) (assess.Assessment, error) {
	a := e.generation[e.gi]
	if e.gi < len(e.generation)-1 {
		e.gi++
	}
	return a, nil
}

type stubEpisodes struct {
	ep    episode.Episode
	found bool
}

func (s stubEpisodes) Record(ctx context.Context, ep episode.Episode) error { return nil }
func (s stubEpisodes) WarmStart(ctx context.Context, queryEmbedding []float32, language string) (episode.Episode, bool, error) {
	return s.ep, s.found, nil
}

func newAnalyzer(t *testing.T) *retrieval.Analyzer {
	t.Helper()
	a, err := retrieval.NewAnalyzer("")
	require.NoError(t, err)
	return a
}

func TestEngine_FinalizesImmediatelyOnExcellentAssessments(t *testing.T) {
	retrievers := map[string]retrieval.Retriever{
		"vector": &stubRetriever{name: "vector", results: []document.SearchResult{{ID: "a", Text: "Paris is the capital of France."}}},
	}
	eval := &scriptedEvaluator{
		retrieval:  []assess.Assessment{{Quality: assess.Excellent, Confidence: 0.9, RecommendedAction: assess.ActionUse}},
		generation: []assess.Assessment{{Quality: assess.Good, Confidence: 0.8, RecommendedAction: assess.ActionUse}},
	}

	eng, err := NewEngine(EngineConfig{
		Retrievers: retrievers,
		Evaluator:  eval,
		Model:      &stubModel{text: "Paris."},
		Analyzer:   newAnalyzer(t),
	})
	require.NoError(t, err)

	result, err := eng.Run(context.Background(), retrieval.Query{Text: "What is the capital of France?"}, strategy.Parameters{TopK: 5, MaxIterations: 3, Temperature: 0.2})
	require.NoError(t, err)
	assert.Equal(t, StatusFinal, result.Status)
	assert.Equal(t, 1, result.Iterations)
	assert.InDelta(t, 0.4*0.9+0.6*0.8, result.Confidence, 0.0001)
	assert.Equal(t, "Paris.", result.Answer)
}

func TestEngine_IteratesUntilGenerationImproves(t *testing.T) {
	retrievers := map[string]retrieval.Retriever{
		"vector": &stubRetriever{name: "vector", results: []document.SearchResult{{ID: "a", Text: "some context"}}},
	}
	eval := &scriptedEvaluator{
		retrieval: []assess.Assessment{{Quality: assess.Good, Confidence: 0.7, RecommendedAction: assess.ActionUse}},
		generation: []assess.Assessment{
			{Quality: assess.Poor, Confidence: 0.4, RecommendedAction: assess.ActionRegenerate},
			{Quality: assess.Good, Confidence: 0.85, RecommendedAction: assess.ActionUse},
		},
	}

	eng, err := NewEngine(EngineConfig{
		Retrievers: retrievers,
		Evaluator:  eval,
		Model:      &stubModel{text: "answer"},
		Analyzer:   newAnalyzer(t),
	})
	require.NoError(t, err)

	result, err := eng.Run(context.Background(), retrieval.Query{Text: "explain something"}, strategy.Parameters{TopK: 5, MaxIterations: 3, Temperature: 0.3})
	require.NoError(t, err)
	assert.Equal(t, StatusFinal, result.Status)
	assert.Equal(t, 2, result.Iterations)
}

func TestEngine_BudgetExhaustedStopsIterating(t *testing.T) {
	retrievers := map[string]retrieval.Retriever{
		"vector": &stubRetriever{name: "vector", results: []document.SearchResult{{ID: "a", Text: "context"}}},
	}
	eval := &scriptedEvaluator{
		retrieval:  []assess.Assessment{{Quality: assess.Good, Confidence: 0.6, RecommendedAction: assess.ActionUse}},
		generation: []assess.Assessment{{Quality: assess.Poor, Confidence: 0.3, RecommendedAction: assess.ActionRegenerate}},
	}

	eng, err := NewEngine(EngineConfig{
		Retrievers: retrievers,
		Evaluator:  eval,
		Model:      &stubModel{text: "answer"},
		Analyzer:   newAnalyzer(t),
	})
	require.NoError(t, err)

	result, err := eng.Run(context.Background(), retrieval.Query{Text: "explain something"}, strategy.Parameters{TopK: 5, MaxIterations: 2, Temperature: 0.3})
	require.NoError(t, err)
	assert.Equal(t, StatusBudgetExhausted, result.Status)
	assert.Equal(t, 2, result.Iterations)
}

func TestEngine_ZeroMaxIterationsReturnsEmptyBudgetExhausted(t *testing.T) {
	eng, err := NewEngine(EngineConfig{
		Retrievers: map[string]retrieval.Retriever{"vector": &stubRetriever{name: "vector"}},
		Evaluator:  &scriptedEvaluator{retrieval: []assess.Assessment{{}}, generation: []assess.Assessment{{}}},
		Model:      &stubModel{},
		Analyzer:   newAnalyzer(t),
	})
	require.NoError(t, err)

	result, err := eng.Run(context.Background(), retrieval.Query{Text: "q"}, strategy.Parameters{MaxIterations: 0})
	require.NoError(t, err)
	assert.Equal(t, StatusBudgetExhausted, result.Status)
	assert.Equal(t, "", result.Answer)
}

func TestEngine_WebFallbackAppliesConfidenceBoostWhenSourcesAdded(t *testing.T) {
	vector := &stubRetriever{name: "vector", results: []document.SearchResult{{ID: "a", Text: "weak context"}}}
	web := &stubRetriever{name: "web", results: []document.SearchResult{{ID: "w1", Text: "a fresh web result with different words entirely"}}}

	eval := &scriptedEvaluator{
		retrieval:  []assess.Assessment{{Quality: assess.Poor, Confidence: 0.5, RecommendedAction: assess.ActionWebSearch}},
		generation: []assess.Assessment{{Quality: assess.Good, Confidence: 0.7, RecommendedAction: assess.ActionUse}},
	}

	eng, err := NewEngine(EngineConfig{
		Retrievers: map[string]retrieval.Retriever{"vector": vector, "web": web},
		Evaluator:  eval,
		Model:      &stubModel{text: "answer"},
		Analyzer:   newAnalyzer(t),
	})
	require.NoError(t, err)

	result, err := eng.Run(context.Background(), retrieval.Query{Text: "q"}, strategy.Parameters{TopK: 5, MaxIterations: 3, EnableWeb: true, CorrectiveBoost: 0.1})
	require.NoError(t, err)
	assert.Equal(t, 1, web.calls)
	assert.InDelta(t, 0.4*0.6+0.6*0.7, result.Confidence, 0.0001)
	found := false
	for _, s := range result.Sources {
		if s.ID == "w1" {
			found = true
		}
	}
	assert.True(t, found)
	assert.Equal(t, []string{string(assess.ActionWebSearch)}, result.CorrectionsApplied)
}

func TestEngine_WarmStartSeedsPlanSummary(t *testing.T) {
	embedder := stubEmbedder{dim: 4}
	episodes := stubEpisodes{ep: episode.Episode{PlanSummary: "reuse prior plan"}, found: true}

	retrievers := map[string]retrieval.Retriever{
		"vector": &stubRetriever{name: "vector", results: []document.SearchResult{{ID: "a", Text: "context"}}},
	}
	eval := &scriptedEvaluator{
		retrieval:  []assess.Assessment{{Quality: assess.Good, Confidence: 0.8, RecommendedAction: assess.ActionUse}},
		generation: []assess.Assessment{{Quality: assess.Good, Confidence: 0.8, RecommendedAction: assess.ActionUse}},
	}

	eng, err := NewEngine(EngineConfig{
		Retrievers: retrievers,
		Evaluator:  eval,
		Model:      &stubModel{text: "answer"},
		Embedder:   embedder,
		Episodes:   episodes,
		Analyzer:   newAnalyzer(t),
	})
	require.NoError(t, err)

	state := &State{Query: retrieval.Query{Text: "q"}}
	eng.warmStart(context.Background(), state)
	assert.Equal(t, "reuse prior plan", state.PlanSummary)
}

type stubEmbedder struct{ dim int }

func (s stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, s.dim)
	}
	return out, nil
}
func (s stubEmbedder) Dim() int { return s.dim }

func TestMergeObservations_DropsLowMarginalInformation(t *testing.T) {
	state := &State{}
	state.mergeObservations([]document.SearchResult{{ID: "a", Text: "the quick brown fox jumps"}}, 0.15)
	assert.Len(t, state.Documents, 1)

	// identical wording under a different id should be dropped as
	// near-zero marginal information.
	state.mergeObservations([]document.SearchResult{{ID: "b", Text: "the quick brown fox jumps"}}, 0.15)
	assert.Len(t, state.Documents, 1)

	// distinct content should be kept.
	state.mergeObservations([]document.SearchResult{{ID: "c", Text: "completely unrelated topic about oceans"}}, 0.15)
	assert.Len(t, state.Documents, 2)
}

func TestCorrectiveStatus_NeverRepeatsConsecutiveAction(t *testing.T) {
	got := correctiveStatus(assess.ActionWebSearch, StatusWebFallback)
	assert.NotEqual(t, StatusWebFallback, got)
}

func TestBuildPrompt_IncludesQueryAndContext(t *testing.T) {
	prompt := buildPrompt("what is X?", []document.SearchResult{{Text: "X is Y."}})
	assert.True(t, strings.Contains(prompt, "what is X?"))
	assert.True(t, strings.Contains(prompt, "X is Y."))
}
