package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/ragcore-ai/engine/internal/generation"
	"github.com/ragcore-ai/engine/internal/ragerr"
)

var _ QueryTransformer = (*RewriteQueryTransformer)(nil)

// RewriteQueryTransformerConfig configures a RewriteQueryTransformer.
type RewriteQueryTransformerConfig struct {
	// Model rewrites the query. Required.
	Model generation.Model

	// TargetSearchSystem names what the rewritten query is optimized for.
	// Optional, defaults to "vector store".
	TargetSearchSystem string
}

// RewriteQueryTransformer rewrites a verbose or ambiguous query into a
// concise one optimized for a target search system, grounded on the
// teacher's RewriteQueryTransformer (prompt-template machinery collapsed
// into a static prompt, as in MultiQueryExpander).
type RewriteQueryTransformer struct {
	model  generation.Model
	target string
}

func NewRewriteQueryTransformer(cfg RewriteQueryTransformerConfig) (*RewriteQueryTransformer, error) {
	if cfg.Model == nil {
		return nil, ragerr.New(ragerr.InvalidArgument, "rewrite transformer: model is required")
	}
	target := cfg.TargetSearchSystem
	if target == "" {
		target = "vector store"
	}
	return &RewriteQueryTransformer{model: cfg.Model, target: target}, nil
}

func (r *RewriteQueryTransformer) Transform(ctx context.Context, query Query) (Query, error) {
	prompt := fmt.Sprintf(`Given a user query, rewrite it to provide better results when querying a %s.
Remove any irrelevant information, and ensure the query is concise and specific.

Original query:
%s

Rewritten query:`, r.target, query.Text)

	resp, err := r.model.Generate(ctx, generation.Request{Prompt: prompt, Temperature: 0.2})
	if err != nil {
		return Query{}, ragerr.Wrap(ragerr.GenerationFailure, "rewrite query", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return query, nil
	}
	return query.WithText(text), nil
}

var _ QueryTransformer = (*CompressionQueryTransformer)(nil)

// CompressionQueryTransformer folds conversation history and a follow-up
// query into a single standalone query, grounded on the teacher's
// CompressionQueryTransformer. History is read from Query.Constraints under
// HistoryKey as a pre-joined string rather than the teacher's
// []chat.Message, since this engine does not carry a chat-history type.
type CompressionQueryTransformer struct {
	model generation.Model
}

// HistoryKey is the Query.Constraints key CompressionQueryTransformer reads
// conversation history from.
const HistoryKey = "conversation_history"

func NewCompressionQueryTransformer(model generation.Model) (*CompressionQueryTransformer, error) {
	if model == nil {
		return nil, ragerr.New(ragerr.InvalidArgument, "compression transformer: model is required")
	}
	return &CompressionQueryTransformer{model: model}, nil
}

func (c *CompressionQueryTransformer) Transform(ctx context.Context, query Query) (Query, error) {
	history, _ := query.Constraints[HistoryKey].(string)

	prompt := fmt.Sprintf(`Given the following conversation history and a follow-up query, synthesize
a concise, standalone query that incorporates the context from the history.
Ensure the standalone query is clear, specific, and maintains the user's intent.

Conversation history:
%s

Follow-up query:
%s

Standalone query:`, history, query.Text)

	resp, err := c.model.Generate(ctx, generation.Request{Prompt: prompt, Temperature: 0.2})
	if err != nil {
		return Query{}, ragerr.Wrap(ragerr.GenerationFailure, "compress query", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return query, nil
	}
	return query.WithText(text), nil
}
