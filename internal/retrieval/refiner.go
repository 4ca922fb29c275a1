package retrieval

import (
	"context"
	"sort"

	"github.com/ragcore-ai/engine/internal/document"
	"github.com/ragcore-ai/engine/pkg/sets"
)

var (
	_ Refiner = (*DeduplicationRefiner)(nil)
	_ Refiner = (*RankRefiner)(nil)
	_ Refiner = (*ChainRefiner)(nil)
)

// DeduplicationRefiner removes results that share a chunk id, preserving
// order of first occurrence.
type DeduplicationRefiner struct{}

func NewDeduplicationRefiner() *DeduplicationRefiner {
	return &DeduplicationRefiner{}
}

func (d *DeduplicationRefiner) Refine(ctx context.Context, _ Query, results []document.SearchResult) ([]document.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seen := sets.NewHashSet[string](len(results))
	unique := make([]document.SearchResult, 0, len(results))
	for _, r := range results {
		if seen.Contains(r.ID) {
			continue
		}
		seen.Add(r.ID)
		unique = append(unique, r)
	}
	return unique, nil
}

// RankRefiner sorts by score descending and keeps the top K, addressing
// lost-in-the-middle and context-length pressure (§4.4).
type RankRefiner struct {
	topK int
}

func NewRankRefiner(topK int) *RankRefiner {
	if topK < 1 {
		topK = 1
	}
	return &RankRefiner{topK: topK}
}

func (r *RankRefiner) Refine(ctx context.Context, _ Query, results []document.SearchResult) ([]document.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ranked := make([]document.SearchResult, len(results))
	copy(ranked, results)
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > r.topK {
		ranked = ranked[:r.topK]
	}
	return ranked, nil
}

// ChainRefiner applies a sequence of refiners in order, each seeing the
// previous refiner's output.
type ChainRefiner struct {
	refiners []Refiner
}

func NewChainRefiner(refiners ...Refiner) *ChainRefiner {
	return &ChainRefiner{refiners: refiners}
}

func (c *ChainRefiner) Refine(ctx context.Context, query Query, results []document.SearchResult) ([]document.SearchResult, error) {
	out := results
	for _, refiner := range c.refiners {
		var err error
		out, err = refiner.Refine(ctx, query, out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
