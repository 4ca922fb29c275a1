package vectorstore

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/ragcore-ai/engine/internal/document"
	"github.com/ragcore-ai/engine/internal/ragerr"
)

var _ Store = (*QdrantStore)(nil)

// QdrantConfig describes the collection this backend owns.
type QdrantConfig struct {
	Address         string
	Collection      string
	Dim             int
	Metric          Metric
	CorpusSize      int64
	KoreanOptimized bool
}

// QdrantStore implements Store against a Qdrant collection, the engine's
// secondary vector-store backend alongside Milvus.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
	dim        int
	metric     Metric
	index      IndexParams
	korean     bool
}

func qdrantDistance(m Metric) qdrant.Distance {
	switch m {
	case MetricL2:
		return qdrant.Distance_Euclid
	case MetricIP:
		return qdrant.Distance_Dot
	default:
		return qdrant.Distance_Cosine
	}
}

// NewQdrantStore connects to Qdrant and ensures the collection exists.
func NewQdrantStore(ctx context.Context, cfg QdrantConfig) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{Host: cfg.Address})
	if err != nil {
		return nil, ragerr.Wrap(ragerr.Transport, "connect qdrant", err)
	}

	s := &QdrantStore{
		client:     client,
		collection: cfg.Collection,
		dim:        cfg.Dim,
		metric:     cfg.Metric,
		index:      SelectIndex(cfg.CorpusSize, cfg.KoreanOptimized),
		korean:     cfg.KoreanOptimized,
	}

	exists, err := client.CollectionExists(ctx, cfg.Collection)
	if err != nil {
		return nil, ragerr.Wrap(ragerr.Transport, "check collection existence", err)
	}
	if !exists {
		err = client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: cfg.Collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(cfg.Dim),
				Distance: qdrantDistance(cfg.Metric),
			}),
		})
		if err != nil {
			return nil, ragerr.Wrap(ragerr.Transport, "create collection", err)
		}
	}
	return s, nil
}

func (s *QdrantStore) Insert(ctx context.Context, chunks []document.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, c := range chunks {
		if c.Dim() != s.dim {
			return ragerr.New(ragerr.IndexMismatch, fmt.Sprintf("chunk %s has dim %d, collection requires %d", c.ID, c.Dim(), s.dim))
		}
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(c.ID),
			Vectors: qdrant.NewVectors(c.Embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"document_id":      c.DocumentID,
				"knowledgebase_id": c.KnowledgebaseID,
				"text":             c.Text,
				"chunk_index":      c.ChunkIndex,
				"document_name":    c.DocumentName,
				"file_type":        c.FileType,
				"language":         c.Language,
				"upload_date":      c.UploadDate.Unix(),
			}),
		}
	}

	wait := true
	if _, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           &wait,
	}); err != nil {
		return ragerr.Wrap(ragerr.Transport, "insert chunks", err)
	}
	return nil
}

func (s *QdrantStore) Search(ctx context.Context, req SearchRequest) ([]document.SearchResult, error) {
	if len(req.Embedding) != s.dim {
		return nil, ragerr.New(ragerr.IndexMismatch, fmt.Sprintf("query dim %d does not match collection dim %d", len(req.Embedding), s.dim))
	}

	filter, err := toQdrantFilter(req.Filter)
	if err != nil {
		return nil, ragerr.Wrap(ragerr.InvalidArgument, "render filter", err)
	}

	params := AdaptiveSearchParams(s.index, req.Complexity, s.korean)
	searchParams := &qdrant.SearchParams{}
	if params.Ef > 0 {
		ef := uint64(params.Ef)
		searchParams.HnswEf = &ef
	}

	limit := uint64(req.TopK)
	withPayload := qdrant.NewWithPayload(true)
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(req.Embedding...),
		Filter:         filter,
		Params:         searchParams,
		Limit:          &limit,
		WithPayload:    withPayload,
	})
	if err != nil {
		return nil, ragerr.Wrap(ragerr.Transport, "search", err)
	}

	out := make([]document.SearchResult, 0, len(points))
	for _, p := range points {
		score := p.Score
		if score < req.MinScore {
			continue
		}
		payload := p.Payload
		out = append(out, document.SearchResult{
			ID:           p.Id.GetUuid(),
			DocumentID:   payload["document_id"].GetStringValue(),
			Text:         payload["text"].GetStringValue(),
			Score:        score,
			DocumentName: payload["document_name"].GetStringValue(),
			Metadata: map[string]any{
				"knowledgebase_id": payload["knowledgebase_id"].GetStringValue(),
				"file_type":        payload["file_type"].GetStringValue(),
				"language":         payload["language"].GetStringValue(),
			},
		})
	}
	return out, nil
}

func (s *QdrantStore) Delete(ctx context.Context, filterExpr string) (int64, error) {
	// Qdrant deletes by a native Filter, not an arbitrary string; the
	// document-delete path always uses a simple document_id match so the
	// caller passes that value directly rather than a full expression. The
	// returned count is always 0.
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatchKeyword("document_id", filterExpr)},
		}),
	})
	if err != nil {
		return 0, ragerr.Wrap(ragerr.Transport, "delete", err)
	}
	return 0, nil
}

func (s *QdrantStore) HealthCheck(ctx context.Context) (HealthStatus, error) {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return HealthStatus{}, ragerr.Wrap(ragerr.Transport, "health check", err)
	}
	status := HealthStatus{Connected: true, CollectionName: s.collection, CollectionExists: exists}
	if exists {
		info, err := s.client.GetCollectionInfo(ctx, s.collection)
		if err == nil {
			status.EntityCount = int64(info.GetPointsCount())
		}
	}
	return status, nil
}

func (s *QdrantStore) Close() error {
	return s.client.Close()
}
