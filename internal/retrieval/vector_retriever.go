package retrieval

import (
	"context"
	"sort"

	"github.com/ragcore-ai/engine/ai/vectorstore/filter"
	"github.com/ragcore-ai/engine/ai/vectorstore/filter/ast"
	"github.com/ragcore-ai/engine/internal/document"
	"github.com/ragcore-ai/engine/internal/generation"
	"github.com/ragcore-ai/engine/internal/ragerr"
	"github.com/ragcore-ai/engine/internal/vectorstore"
	concurrency "github.com/ragcore-ai/engine/pkg/sync"
)

var _ Retriever = (*VectorRetriever)(nil)

// reciprocalRankConstant is the k in RRF's 1/(k+rank) term; 60 is the value
// the original reciprocal rank fusion paper (and most production rerankers)
// settle on.
const reciprocalRankConstant = 60

// VectorRetrieverConfig configures a VectorRetriever.
type VectorRetrieverConfig struct {
	// Store is the backend to search against. Required.
	Store vectorstore.Store

	// Embedder turns a query's text into the vector Store.Search expects. Required.
	Embedder generation.Embedder

	// Complexity is forwarded to Store.Search to drive adaptive search
	// params (§4.6); the engine sets this per query from Analysis.Complexity.
	Complexity float64

	// Expander, when set, turns one query into several paraphrases (§4.4);
	// Search then runs one store search per paraphrase concurrently and
	// fuses the per-paraphrase rankings with reciprocal rank fusion instead
	// of searching once. Optional.
	Expander QueryExpander

	// Pool bounds the concurrency of per-paraphrase searches submitted when
	// Expander is set. Defaults to concurrency.DefaultPool() if unset.
	Pool concurrency.Pool
}

// VectorRetriever is the primary specialist retriever (§4.4), answering
// Search by embedding the query and delegating to a vectorstore.Store.
// Grounded on the teacher's VectorStoreDocumentRetriever: embed/filter/topK
// at the boundary, parsing a textual filter expression into the shared AST.
type VectorRetriever struct {
	store      vectorstore.Store
	embedder   generation.Embedder
	complexity float64
	expander   QueryExpander
	pool       concurrency.Pool
}

func NewVectorRetriever(cfg VectorRetrieverConfig) (*VectorRetriever, error) {
	if cfg.Store == nil {
		return nil, ragerr.New(ragerr.InvalidArgument, "vector retriever: store is required")
	}
	if cfg.Embedder == nil {
		return nil, ragerr.New(ragerr.InvalidArgument, "vector retriever: embedder is required")
	}
	pool := cfg.Pool
	if pool == nil {
		pool = concurrency.DefaultPool()
	}
	return &VectorRetriever{
		store:      cfg.Store,
		embedder:   cfg.Embedder,
		complexity: cfg.Complexity,
		expander:   cfg.Expander,
		pool:       pool,
	}, nil
}

func (v *VectorRetriever) Name() string { return "vector" }

func (v *VectorRetriever) Healthy(ctx context.Context) bool {
	status, err := v.store.HealthCheck(ctx)
	return err == nil && status.Connected
}

func (v *VectorRetriever) Search(ctx context.Context, query string, topK int, filterExpr string) ([]document.SearchResult, error) {
	expr, err := parseFilterExpr(filterExpr)
	if err != nil {
		return nil, ragerr.Wrap(ragerr.InvalidArgument, "parse filter", err)
	}

	if v.expander == nil {
		return v.searchOne(ctx, query, topK, expr)
	}

	variants, err := v.expander.Expand(ctx, Query{Text: query})
	if err != nil || len(variants) <= 1 {
		return v.searchOne(ctx, query, topK, expr)
	}

	return v.searchExpanded(ctx, variants, topK, expr)
}

// searchExpanded runs one store search per paraphrase concurrently, bounded
// by v.pool, and fuses the resulting rankings with reciprocal rank fusion. A
// paraphrase whose search fails is dropped rather than failing the whole
// request; only if every paraphrase fails does Search report an error.
func (v *VectorRetriever) searchExpanded(ctx context.Context, variants []Query, topK int, expr ast.Expr) ([]document.SearchResult, error) {
	futures := make([]*concurrency.FutureTask[[]document.SearchResult], len(variants))
	for i, variant := range variants {
		text := variant.Text
		future, err := concurrency.NewFutureTaskAndRunWithPool(func(_ <-chan struct{}) ([]document.SearchResult, error) {
			return v.searchOne(ctx, text, topK, expr)
		}, v.pool)
		if err != nil {
			return nil, ragerr.Wrap(ragerr.Transport, "submit paraphrase search", err)
		}
		futures[i] = future
	}

	rankLists := make([][]document.SearchResult, 0, len(futures))
	for _, f := range futures {
		results, err := f.GetWithContext(ctx)
		if err != nil {
			continue
		}
		rankLists = append(rankLists, results)
	}
	if len(rankLists) == 0 {
		return nil, ragerr.New(ragerr.Transport, "vector retriever: every paraphrase search failed")
	}

	return fuseRankLists(rankLists, topK), nil
}

func (v *VectorRetriever) searchOne(ctx context.Context, query string, topK int, expr ast.Expr) ([]document.SearchResult, error) {
	embeddings, err := v.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, ragerr.Wrap(ragerr.EmbeddingFailure, "embed query", err)
	}
	if len(embeddings) == 0 {
		return nil, ragerr.New(ragerr.EmbeddingFailure, "embedder returned no vectors")
	}

	return v.store.Search(ctx, vectorstore.SearchRequest{
		Embedding:  embeddings[0],
		TopK:       topK,
		Filter:     expr,
		Complexity: v.complexity,
	})
}

// fuseRankLists combines several per-paraphrase rankings into one list via
// reciprocal rank fusion: a document's fused score is the sum, across every
// list it appears in, of 1/(reciprocalRankConstant+rank). This rewards
// documents that rank well across multiple paraphrasings over one that
// ranks first in only a single, possibly idiosyncratic, phrasing.
func fuseRankLists(lists [][]document.SearchResult, topK int) []document.SearchResult {
	scores := make(map[string]float64)
	docs := make(map[string]document.SearchResult)
	for _, list := range lists {
		for rank, r := range list {
			scores[r.ID] += 1.0 / float64(reciprocalRankConstant+rank+1)
			if _, ok := docs[r.ID]; !ok {
				docs[r.ID] = r
			}
		}
	}

	fused := make([]document.SearchResult, 0, len(docs))
	for id, d := range docs {
		d.Score = float32(scores[id])
		fused = append(fused, d)
	}
	sort.Slice(fused, func(i, j int) bool { return fused[i].Score > fused[j].Score })
	if len(fused) > topK {
		fused = fused[:topK]
	}
	return fused
}

// parseFilterExpr lexes and parses a filter DSL expression, returning nil
// for an empty expression (unfiltered search).
func parseFilterExpr(expr string) (ast.Expr, error) {
	if expr == "" {
		return nil, nil
	}
	p, err := filter.NewParser(expr)
	if err != nil {
		return nil, err
	}
	return p.Parse()
}
