// Package vectorstore persists chunk embeddings and performs similarity
// search with parameters tuned to corpus size, language, and query
// complexity (spec §4.6), generalizing the teacher's ai/vectorstore.Store
// interface onto internal/document's Chunk/SearchResult types.
package vectorstore

import (
	"context"

	"github.com/ragcore-ai/engine/ai/vectorstore/filter/ast"
	"github.com/ragcore-ai/engine/internal/document"
)

// Metric is the similarity metric a collection is built with.
type Metric string

const (
	MetricCosine Metric = "cosine"
	MetricL2     Metric = "l2"
	MetricIP     Metric = "ip"
)

// SearchRequest specifies one similarity search call.
type SearchRequest struct {
	Embedding  []float32
	TopK       int
	MinScore   float32
	Filter     ast.Expr // built with ai/vectorstore/filter.NewBuilder(); nil means unfiltered
	Partitions []string
	Complexity float64 // query complexity in [0,1], drives adaptive search params (§4.6)
}

// HealthStatus reports the store's connection and collection state.
type HealthStatus struct {
	Connected       bool
	CollectionName  string
	CollectionExists bool
	EntityCount     int64
}

// Store is the uniform operation every vector-store backend implements
// (§4.6): Insert, Search, Delete, HealthCheck.
type Store interface {
	// Insert validates dimension, writes chunks, and flushes so a
	// follow-up search observes the write.
	Insert(ctx context.Context, chunks []document.Chunk) error

	// Search ensures the collection is loaded, then returns ranked results.
	Search(ctx context.Context, req SearchRequest) ([]document.SearchResult, error)

	// Delete removes every chunk matching a rendered filter expression
	// (typically "document_id == '<id>'") and returns the deleted count.
	// Atomic from the caller's perspective: either all of a document's
	// chunks are visible afterward or none are (§3 invariant).
	Delete(ctx context.Context, filterExpr string) (int64, error)

	HealthCheck(ctx context.Context) (HealthStatus, error)

	Close() error
}
