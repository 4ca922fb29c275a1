package router

import (
	"context"
	"fmt"

	"github.com/ragcore-ai/engine/internal/assess"
	"github.com/ragcore-ai/engine/internal/document"
	"github.com/ragcore-ai/engine/internal/generation"
	"github.com/ragcore-ai/engine/internal/ragerr"
	"github.com/ragcore-ai/engine/internal/retrieval"
	"github.com/ragcore-ai/engine/internal/strategy"
)

// DirectRunner is the router's SpeculativeRunner: one retrieval call and one
// generation call, corresponding to strategy.Direct/strategy.Hybrid with no
// self-assessment loop. It is what mode=fast always runs and what
// mode=balanced races against the agentic engine.
type DirectRunner struct {
	retriever retrieval.Retriever
	model     generation.Model
	evaluator assess.Evaluator // optional; nil falls back to a retrieval-count heuristic for Confidence
}

// NewDirectRunner constructs a DirectRunner. evaluator may be nil.
func NewDirectRunner(retriever retrieval.Retriever, model generation.Model, evaluator assess.Evaluator) (*DirectRunner, error) {
	if retriever == nil {
		return nil, ragerr.New(ragerr.InvalidArgument, "speculative runner: retriever is required")
	}
	if model == nil {
		return nil, ragerr.New(ragerr.InvalidArgument, "speculative runner: model is required")
	}
	return &DirectRunner{retriever: retriever, model: model, evaluator: evaluator}, nil
}

// Run implements SpeculativeRunner.
func (d *DirectRunner) Run(ctx context.Context, q retrieval.Query, params strategy.Parameters) (PathResult, error) {
	topK := params.TopK
	if topK <= 0 {
		topK = 5
	}

	docs, err := d.retriever.Search(ctx, q.Text, topK, "")
	if err != nil {
		return PathResult{}, ragerr.Wrap(ragerr.Transport, "speculative retrieval", err)
	}

	resp, err := d.model.Generate(ctx, generation.Request{
		Prompt:      speculativePrompt(q.Text, docs),
		Temperature: params.Temperature,
		MaxTokens:   500,
	})
	if err != nil {
		return PathResult{}, ragerr.Wrap(ragerr.GenerationFailure, "speculative generation", err)
	}

	confidence := d.confidence(ctx, q, resp.Text, docs)
	return PathResult{Answer: resp.Text, Sources: docs, Confidence: confidence}, nil
}

// confidence asks the evaluator when one is wired, otherwise falls back to a
// cheap heuristic scaled by how many sources were actually found — enough to
// gate whether the interim result is worth streaming at all, without forcing
// every deployment of the fast path to pay for a full assessment call.
func (d *DirectRunner) confidence(ctx context.Context, q retrieval.Query, answer string, docs []document.SearchResult) float64 {
	if d.evaluator == nil {
		return heuristicConfidence(docs)
	}
	augmented := []retrieval.AugmentedQuery{{Query: q, Documents: docs}}
	a, err := d.evaluator.AssessGeneration(ctx, q, answer, augmented)
	if err != nil {
		return heuristicConfidence(docs)
	}
	return a.Confidence
}

func heuristicConfidence(docs []document.SearchResult) float64 {
	switch {
	case len(docs) == 0:
		return 0.2
	case len(docs) < 3:
		return 0.5
	default:
		return 0.65
	}
}

func speculativePrompt(query string, docs []document.SearchResult) string {
	contextBlock := ""
	for i, doc := range docs {
		if i >= 5 {
			break
		}
		contextBlock += fmt.Sprintf("[%d] %s\n", i+1, doc.Text)
	}
	return fmt.Sprintf(`Answer the question concisely using only the context below. If the
context is insufficient, say so explicitly rather than guessing.

Context:
%s

Question: %s

Answer:`, contextBlock, query)
}
