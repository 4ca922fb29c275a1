package vectorstore

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	milvusclient "github.com/milvus-io/milvus/client/v2/milvusclient"

	"github.com/ragcore-ai/engine/ai/vectorstore/filter/ast"
	"github.com/ragcore-ai/engine/ai/vectorstore/filter/visitors"
	"github.com/ragcore-ai/engine/internal/document"
	"github.com/ragcore-ai/engine/internal/ragerr"
)

var _ Store = (*MilvusStore)(nil)

// MilvusConfig describes one collection this backend owns.
type MilvusConfig struct {
	Address        string
	Collection     string
	Dim            int
	Metric         Metric
	CorpusSize     int64
	KoreanOptimized bool
}

// MilvusStore implements Store against a Milvus collection, following the
// schema and index-selection table in spec.md §4.6, grounded on
// original_source/backend/services/milvus.py and milvus_adaptive.py.
type MilvusStore struct {
	client     *milvusclient.Client
	collection string
	dim        int
	metric     Metric
	index      IndexParams
	korean     bool

	loaded bool
}

// milvusMetricType maps our Metric to Milvus's native metric type name.
func milvusMetricType(m Metric) entity.MetricType {
	switch m {
	case MetricL2:
		return entity.L2
	case MetricIP:
		return entity.IP
	default:
		return entity.COSINE
	}
}

// NewMilvusStore connects to Milvus and ensures the collection described by
// cfg exists with the index chosen for its corpus size.
func NewMilvusStore(ctx context.Context, cfg MilvusConfig) (*MilvusStore, error) {
	client, err := milvusclient.New(ctx, &milvusclient.ClientConfig{Address: cfg.Address})
	if err != nil {
		return nil, ragerr.Wrap(ragerr.Transport, "connect milvus", err)
	}

	s := &MilvusStore{
		client:     client,
		collection: cfg.Collection,
		dim:        cfg.Dim,
		metric:     cfg.Metric,
		index:      SelectIndex(cfg.CorpusSize, cfg.KoreanOptimized),
		korean:     cfg.KoreanOptimized,
	}

	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MilvusStore) ensureCollection(ctx context.Context) error {
	exists, err := s.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(s.collection))
	if err != nil {
		return ragerr.Wrap(ragerr.Transport, "check collection existence", err)
	}
	if exists {
		return nil
	}

	schema := entity.NewSchema().WithName(s.collection).WithDynamicFieldEnabled(true).
		WithField(entity.NewField().WithName("id").WithDataType(entity.FieldTypeVarChar).WithIsPrimaryKey(true).WithMaxLength(64)).
		WithField(entity.NewField().WithName("document_id").WithDataType(entity.FieldTypeVarChar).WithMaxLength(64)).
		WithField(entity.NewField().WithName("knowledgebase_id").WithDataType(entity.FieldTypeVarChar).WithMaxLength(64)).
		WithField(entity.NewField().WithName("text").WithDataType(entity.FieldTypeVarChar).WithMaxLength(65535)).
		WithField(entity.NewField().WithName("chunk_index").WithDataType(entity.FieldTypeInt64)).
		WithField(entity.NewField().WithName("document_name").WithDataType(entity.FieldTypeVarChar).WithMaxLength(512)).
		WithField(entity.NewField().WithName("file_type").WithDataType(entity.FieldTypeVarChar).WithMaxLength(32)).
		WithField(entity.NewField().WithName("upload_date").WithDataType(entity.FieldTypeInt64)).
		WithField(entity.NewField().WithName("language").WithDataType(entity.FieldTypeVarChar).WithMaxLength(16)).
		WithField(entity.NewField().WithName("embedding").WithDataType(entity.FieldTypeFloatVector).WithDim(int64(s.dim)))

	if err := s.client.CreateCollection(ctx, milvusclient.NewCreateCollectionOption(s.collection, schema)); err != nil {
		return ragerr.Wrap(ragerr.Transport, "create collection", err)
	}

	idx := s.buildIndex()
	if err := s.client.CreateIndex(ctx, milvusclient.NewCreateIndexOption(s.collection, "embedding", idx)); err != nil {
		return ragerr.Wrap(ragerr.Transport, "create index", err)
	}
	return nil
}

func (s *MilvusStore) buildIndex() index.Index {
	metricType := milvusMetricType(s.metric)
	switch s.index.Kind {
	case IndexHNSW:
		return index.NewHNSWIndex(metricType, s.index.M, s.index.EfConstruction)
	case IndexIVFPQ:
		return index.NewIvfPQIndex(metricType, s.index.NList, s.index.PQM, 8)
	default:
		return index.NewIvfSQ8Index(metricType, s.index.NList)
	}
}

func (s *MilvusStore) Insert(ctx context.Context, chunks []document.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	ids := make([]string, len(chunks))
	docIDs := make([]string, len(chunks))
	kbIDs := make([]string, len(chunks))
	texts := make([]string, len(chunks))
	indices := make([]int64, len(chunks))
	names := make([]string, len(chunks))
	fileTypes := make([]string, len(chunks))
	uploadDates := make([]int64, len(chunks))
	languages := make([]string, len(chunks))
	embeddings := make([][]float32, len(chunks))

	for i, c := range chunks {
		if c.Dim() != s.dim {
			return ragerr.New(ragerr.IndexMismatch, fmt.Sprintf("chunk %s has dim %d, collection requires %d", c.ID, c.Dim(), s.dim))
		}
		ids[i] = c.ID
		docIDs[i] = c.DocumentID
		kbIDs[i] = c.KnowledgebaseID
		texts[i] = c.Text
		indices[i] = int64(c.ChunkIndex)
		names[i] = c.DocumentName
		fileTypes[i] = c.FileType
		uploadDates[i] = c.UploadDate.Unix()
		languages[i] = c.Language
		embeddings[i] = c.Embedding
	}

	columns := []column.Column{
		column.NewColumnVarChar("id", ids),
		column.NewColumnVarChar("document_id", docIDs),
		column.NewColumnVarChar("knowledgebase_id", kbIDs),
		column.NewColumnVarChar("text", texts),
		column.NewColumnInt64("chunk_index", indices),
		column.NewColumnVarChar("document_name", names),
		column.NewColumnVarChar("file_type", fileTypes),
		column.NewColumnInt64("upload_date", uploadDates),
		column.NewColumnVarChar("language", languages),
		column.NewColumnFloatVector("embedding", s.dim, embeddings),
	}

	if _, err := s.client.Insert(ctx, milvusclient.NewColumnBasedInsertOption(s.collection, columns...)); err != nil {
		return ragerr.Wrap(ragerr.Transport, "insert chunks", err)
	}
	if err := s.client.Flush(ctx, milvusclient.NewFlushOption(s.collection)); err != nil {
		return ragerr.Wrap(ragerr.Transport, "flush after insert", err)
	}
	return nil
}

// ensureLoaded loads the collection at most once; the first search after
// cold start is serialized, subsequent searches proceed concurrently (§4.6).
func (s *MilvusStore) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	if err := s.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(s.collection)); err != nil {
		return ragerr.Wrap(ragerr.Transport, "load collection", err)
	}
	s.loaded = true
	return nil
}

func (s *MilvusStore) Search(ctx context.Context, req SearchRequest) ([]document.SearchResult, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	if len(req.Embedding) != s.dim {
		return nil, ragerr.New(ragerr.IndexMismatch, fmt.Sprintf("query dim %d does not match collection dim %d", len(req.Embedding), s.dim))
	}

	params := AdaptiveSearchParams(s.index, req.Complexity, s.korean)
	opt := milvusclient.NewSearchOption(s.collection, req.TopK, []entity.Vector{entity.FloatVector(req.Embedding)}).
		WithANNSField("embedding").
		WithOutputFields("id", "document_id", "text", "document_name", "chunk_index", "knowledgebase_id", "file_type", "language")

	switch s.index.Kind {
	case IndexHNSW:
		opt = opt.WithAnnParam(index.NewHNSWAnnParam(params.Ef))
	default:
		opt = opt.WithAnnParam(index.NewIvfAnnParam(params.NProbe))
	}

	if req.Filter != nil {
		v := visitors.NewSQLLikeVisitor()
		ast.Walk(v, req.Filter)
		if v.Error() != nil {
			return nil, ragerr.Wrap(ragerr.InvalidArgument, "render filter", v.Error())
		}
		opt = opt.WithFilter(v.SQL())
	}

	resultSets, err := s.client.Search(ctx, opt)
	if err != nil {
		return nil, ragerr.Wrap(ragerr.Transport, "search", err)
	}

	var out []document.SearchResult
	for _, rs := range resultSets {
		for i := 0; i < rs.ResultCount; i++ {
			score := normalizeScore(rs.Scores[i], s.metric)
			if score < req.MinScore {
				continue
			}
			out = append(out, document.SearchResult{
				ID:           stringField(rs, "id", i),
				DocumentID:   stringField(rs, "document_id", i),
				Text:         stringField(rs, "text", i),
				Score:        score,
				DocumentName: stringField(rs, "document_name", i),
				Metadata: map[string]any{
					"knowledgebase_id": stringField(rs, "knowledgebase_id", i),
					"file_type":        stringField(rs, "file_type", i),
					"language":         stringField(rs, "language", i),
				},
			})
		}
	}
	return out, nil
}

// stringField extracts a varchar output field by name from a Milvus result
// set at row i, returning "" if the field is absent.
func stringField(rs milvusclient.ResultSet, name string, i int) string {
	col := rs.GetColumn(name)
	if col == nil {
		return ""
	}
	v, err := col.GetAsString(i)
	if err != nil {
		return ""
	}
	return v
}

// normalizeScore maps a raw Milvus distance/similarity onto [0,1], higher is
// better, per §3's SearchResult contract.
func normalizeScore(raw float32, metric Metric) float32 {
	switch metric {
	case MetricL2:
		return 1.0 / (1.0 + raw)
	default:
		return raw
	}
}

func (s *MilvusStore) Delete(ctx context.Context, filterExpr string) (int64, error) {
	res, err := s.client.Delete(ctx, milvusclient.NewDeleteOption(s.collection).WithExpr(filterExpr))
	if err != nil {
		return 0, ragerr.Wrap(ragerr.Transport, "delete", err)
	}
	if err := s.client.Flush(ctx, milvusclient.NewFlushOption(s.collection)); err != nil {
		return 0, ragerr.Wrap(ragerr.Transport, "flush after delete", err)
	}
	return res.DeleteCount, nil
}

func (s *MilvusStore) HealthCheck(ctx context.Context) (HealthStatus, error) {
	exists, err := s.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(s.collection))
	if err != nil {
		return HealthStatus{}, ragerr.Wrap(ragerr.Transport, "health check", err)
	}
	status := HealthStatus{Connected: true, CollectionName: s.collection, CollectionExists: exists}
	if exists {
		stats, err := s.client.GetCollectionStats(ctx, milvusclient.NewGetCollectionStatsOption(s.collection))
		if err == nil {
			status.EntityCount = stats.RowCount
		}
	}
	return status, nil
}

func (s *MilvusStore) Close() error {
	return s.client.Close(context.Background())
}
