package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/ragcore-ai/engine/internal/cache"
	"github.com/ragcore-ai/engine/internal/document"
)

// CachingRetriever decorates a Retriever with the two-tier cache (§4.7),
// memoizing Search by retriever name, query text, topK, and filter
// expression so a repeated query within the cache's TTL skips the
// underlying retrieval call (and, for the vector retriever, the embedding
// call that precedes it) entirely.
type CachingRetriever struct {
	inner Retriever
	cache *cache.Cache
}

var _ Retriever = (*CachingRetriever)(nil)

func NewCachingRetriever(inner Retriever, c *cache.Cache) *CachingRetriever {
	return &CachingRetriever{inner: inner, cache: c}
}

func (r *CachingRetriever) Search(ctx context.Context, query string, topK int, filters string) ([]document.SearchResult, error) {
	key := retrievalCacheKey(r.inner.Name(), query, topK, filters)

	var cached []document.SearchResult
	if r.cache.GetJSON(ctx, "retrieval", key, &cached) {
		return cached, nil
	}

	results, err := r.inner.Search(ctx, query, topK, filters)
	if err != nil {
		return nil, err
	}
	_ = r.cache.SetJSON(ctx, "retrieval", key, results)
	return results, nil
}

func (r *CachingRetriever) Healthy(ctx context.Context) bool { return r.inner.Healthy(ctx) }

func (r *CachingRetriever) Name() string { return r.inner.Name() }

func retrievalCacheKey(name, query string, topK int, filters string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%d\x00%s", query, topK, filters)))
	return name + ":" + hex.EncodeToString(sum[:])
}
