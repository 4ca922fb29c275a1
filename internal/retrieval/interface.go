package retrieval

import (
	"context"

	"github.com/ragcore-ai/engine/internal/document"
)

// QueryExpander expands a query into alternative formulations or sub-queries,
// addressing poorly formed or overly broad input.
type QueryExpander interface {
	Expand(ctx context.Context, query Query) ([]Query, error)
}

// QueryTransformer rewrites a query to make it more effective for retrieval:
// compression, rewriting, or translation.
type QueryTransformer interface {
	Transform(ctx context.Context, query Query) (Query, error)
}

// Retriever is the uniform operation every specialist retriever exposes
// (§4.4): vector, web, and local-data retrievers all implement this.
type Retriever interface {
	// Search returns ranked results for query, respecting topK and an
	// optional filter expression built with ai/vectorstore/filter.
	Search(ctx context.Context, query string, topK int, filters string) ([]document.SearchResult, error)

	// Healthy reports whether the retriever is currently usable; the engine
	// consults it before dispatching (§4.4).
	Healthy(ctx context.Context) bool

	// Name identifies the retriever for logging and monitor attribution.
	Name() string
}

// Refiner refines retrieved results relative to a query, addressing
// lost-in-the-middle, redundancy, and context-length pressure.
type Refiner interface {
	Refine(ctx context.Context, query Query, results []document.SearchResult) ([]document.SearchResult, error)
}

// ToolCaller invokes one MCP tool by name with loosely-typed arguments,
// satisfied by internal/mcp's multiplexer client (§4.5). Defined here rather
// than imported from internal/mcp to keep retrieval's dependency on the
// multiplexer narrow and mockable in tests.
type ToolCaller interface {
	CallTool(ctx context.Context, server, tool string, args map[string]any) (map[string]any, error)
}
