// Package retrieval defines the query model and the retrieval-pipeline
// interfaces (expansion, transformation, retrieval, refinement) that the
// router and agentic engine compose, grounded on the teacher's ai/rag
// pipeline but retyped against internal/document instead of the teacher's
// LLM-backed document/chat packages.
package retrieval

import "github.com/ragcore-ai/engine/internal/document"

// Mode selects which execution path the router takes for a Query.
type Mode string

const (
	ModeFast     Mode = "fast"
	ModeBalanced Mode = "balanced"
	ModeDeep     Mode = "deep"
)

// QueryType classifies a query for strategy selection (§4.3).
type QueryType string

const (
	TypeFactual      QueryType = "factual"
	TypeAnalytical   QueryType = "analytical"
	TypeMultiStep    QueryType = "multi-step"
	TypeConversational QueryType = "conversational"
)

// Query is the immutable unit of work submitted to the router. Once
// constructed it is never mutated; transformations produce a new Query.
type Query struct {
	Text        string
	SessionID   string
	Mode        Mode
	Constraints map[string]any
}

// WithText returns a copy of q with its text replaced, the shape every
// QueryTransformer/QueryExpander produces instead of mutating the original.
func (q Query) WithText(text string) Query {
	q.Text = text
	return q
}

// Analysis is a pure, cacheable function of a Query's text (§3).
type Analysis struct {
	Complexity             float64
	Type                   QueryType
	RequiresReasoning      bool
	RequiresMultipleSources bool
	EstimatedTokens        int
	Keywords               []string
	Entities               []string
	RecommendedMode        Mode
}

// AugmentedQuery pairs a Query with the documents selected to answer it, the
// input to generation.
type AugmentedQuery struct {
	Query     Query
	Documents []document.SearchResult
}
