package vectorstore

import (
	"context"
	"time"

	"github.com/ragcore-ai/engine/internal/document"
	"github.com/ragcore-ai/engine/internal/ragerr"
)

// PooledStore fronts a fixed-size ConnPool of Store handles, checking one
// out for the duration of each call. §4.6 calls for a pooled client rather
// than one long-lived handle shared across goroutines; this is the adapter
// that lets cmd/ragcored hand callers a plain Store while the pool lives
// underneath, instead of threading Checkout/release through every retriever.
type PooledStore struct {
	pool *ConnPool[Store]
}

var _ Store = (*PooledStore)(nil)

// NewPooledStore opens size handles to the backend described by factory
// (typically a closure over NewMilvusStore or NewQdrantStore with a fixed
// config) and reaps handles idle longer than idleTTL.
func NewPooledStore(ctx context.Context, size int, idleTTL time.Duration, factory func(context.Context) (Store, error)) (*PooledStore, error) {
	pool, err := NewConnPool(ctx, size, idleTTL, factory, func(s Store) error { return s.Close() })
	if err != nil {
		return nil, err
	}
	return &PooledStore{pool: pool}, nil
}

func (p *PooledStore) Insert(ctx context.Context, chunks []document.Chunk) error {
	store, release, err := p.pool.Checkout(ctx)
	if err != nil {
		return err
	}
	defer release()
	return store.Insert(ctx, chunks)
}

func (p *PooledStore) Search(ctx context.Context, req SearchRequest) ([]document.SearchResult, error) {
	store, release, err := p.pool.Checkout(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return store.Search(ctx, req)
}

func (p *PooledStore) Delete(ctx context.Context, filterExpr string) (int64, error) {
	store, release, err := p.pool.Checkout(ctx)
	if err != nil {
		return 0, err
	}
	defer release()
	return store.Delete(ctx, filterExpr)
}

func (p *PooledStore) HealthCheck(ctx context.Context) (HealthStatus, error) {
	store, release, err := p.pool.Checkout(ctx)
	if err != nil {
		return HealthStatus{}, ragerr.Wrap(ragerr.Transport, "pooled store: health check checkout", err)
	}
	defer release()
	return store.HealthCheck(ctx)
}

func (p *PooledStore) Close() error {
	return p.pool.Close()
}
