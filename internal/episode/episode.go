// Package episode persists completed agentic runs and serves the
// episodic warm-start lookup (spec.md §3, §4.2): "before DECOMPOSE, check
// for a prior episode at cosine similarity >= threshold, same language".
// Backed directly by github.com/qdrant/go-client rather than going through
// internal/vectorstore.Store, because an Episode's payload (response,
// confidence, iterations, plan summary) doesn't fit internal/document.Chunk's
// fixed shape — grounded on internal/vectorstore/qdrant.go's client-call
// idiom, not its Store interface.
package episode

import (
	"context"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"github.com/ragcore-ai/engine/internal/ragerr"
)

// Episode is a persisted record of one completed agentic run (spec.md §3),
// with Language and PlanSummary added per SPEC_FULL.md's additive detail
// grounded on self_rag.py's episodic-memory hook.
type Episode struct {
	ID             string
	Query          string
	QueryEmbedding []float32
	Response       string
	Confidence     float64
	Iterations     int
	Timestamp      time.Time
	Language       string
	PlanSummary    string
}

// Store records completed episodes and serves the warm-start lookup.
type Store interface {
	Record(ctx context.Context, ep Episode) error

	// WarmStart returns the closest prior episode in the same language, if
	// its similarity meets the configured threshold. found is false if no
	// episode qualifies.
	WarmStart(ctx context.Context, queryEmbedding []float32, language string) (ep Episode, found bool, err error)
}

var _ Store = (*QdrantStore)(nil)

// QdrantConfig describes the collection the episode store owns.
type QdrantConfig struct {
	Address    string
	Collection string
	Dim        int
	// Threshold is the minimum cosine similarity for a warm-start hit.
	// spec.md §9 Open Question 3 resolves this at 0.92 by default.
	Threshold float32
}

type QdrantStore struct {
	client     *qdrant.Client
	collection string
	dim        int
	threshold  float32
}

func NewQdrantStore(ctx context.Context, cfg QdrantConfig) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{Host: cfg.Address})
	if err != nil {
		return nil, ragerr.Wrap(ragerr.Transport, "connect qdrant", err)
	}

	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = 0.92
	}

	s := &QdrantStore{client: client, collection: cfg.Collection, dim: cfg.Dim, threshold: threshold}

	exists, err := client.CollectionExists(ctx, cfg.Collection)
	if err != nil {
		return nil, ragerr.Wrap(ragerr.Transport, "check episode collection existence", err)
	}
	if !exists {
		if err := client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: cfg.Collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(cfg.Dim),
				Distance: qdrant.Distance_Cosine,
			}),
		}); err != nil {
			return nil, ragerr.Wrap(ragerr.Transport, "create episode collection", err)
		}
	}
	return s, nil
}

func (s *QdrantStore) Record(ctx context.Context, ep Episode) error {
	if len(ep.QueryEmbedding) != s.dim {
		return ragerr.New(ragerr.IndexMismatch, "episode embedding dim does not match collection dim")
	}

	wait := true
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewID(ep.ID),
			Vectors: qdrant.NewVectors(ep.QueryEmbedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"query":        ep.Query,
				"response":     ep.Response,
				"confidence":   ep.Confidence,
				"iterations":   ep.Iterations,
				"timestamp":    ep.Timestamp.Unix(),
				"language":     ep.Language,
				"plan_summary": ep.PlanSummary,
			}),
		}},
	})
	if err != nil {
		return ragerr.Wrap(ragerr.Transport, "record episode", err)
	}
	return nil
}

func (s *QdrantStore) WarmStart(ctx context.Context, queryEmbedding []float32, language string) (Episode, bool, error) {
	if len(queryEmbedding) != s.dim {
		return Episode{}, false, ragerr.New(ragerr.IndexMismatch, "query embedding dim does not match episode collection dim")
	}

	limit := uint64(1)
	withPayload := qdrant.NewWithPayload(true)
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatchKeyword("language", language)},
		},
		Limit:       &limit,
		WithPayload: withPayload,
	})
	if err != nil {
		return Episode{}, false, ragerr.Wrap(ragerr.Transport, "episode warm-start search", err)
	}
	if len(points) == 0 || points[0].Score < s.threshold {
		return Episode{}, false, nil
	}

	p := points[0].Payload
	return Episode{
		ID:          points[0].Id.GetUuid(),
		Query:       p["query"].GetStringValue(),
		Response:    p["response"].GetStringValue(),
		Confidence:  p["confidence"].GetDoubleValue(),
		Iterations:  int(p["iterations"].GetIntegerValue()),
		Timestamp:   time.Unix(p["timestamp"].GetIntegerValue(), 0),
		Language:    language,
		PlanSummary: p["plan_summary"].GetStringValue(),
	}, true, nil
}

func (s *QdrantStore) Close() error {
	return s.client.Close()
}
