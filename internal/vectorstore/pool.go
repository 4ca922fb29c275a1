package vectorstore

import (
	"context"
	"sync"
	"time"

	"github.com/ragcore-ai/engine/internal/ragerr"
	"github.com/ragcore-ai/engine/pkg/safe"
)

// pooledConn wraps a client handle with the time it was last returned to
// the pool, used by the idle-reaping ticker.
type pooledConn[T any] struct {
	client   T
	lastUsed time.Time
}

// ConnPool is a fixed-size, channel-backed pool of backend client handles
// (§4.6), grounded on pkg/sync.Limiter's channel-as-semaphore idiom. A
// Checkout is automatically returned to the pool if ctx is cancelled or
// times out before the caller calls the returned release func.
type ConnPool[T any] struct {
	idle     chan pooledConn[T]
	factory  func(ctx context.Context) (T, error)
	closeFn  func(T) error
	idleTTL  time.Duration
	stopReap chan struct{}
	reapOnce sync.Once
}

// NewConnPool eagerly opens size client handles via factory and starts an
// idle-reaping goroutine that recycles handles unused for longer than
// idleTTL. idleTTL <= 0 disables reaping.
func NewConnPool[T any](ctx context.Context, size int, idleTTL time.Duration, factory func(context.Context) (T, error), closeFn func(T) error) (*ConnPool[T], error) {
	if size <= 0 {
		size = 1
	}
	p := &ConnPool[T]{
		idle:     make(chan pooledConn[T], size),
		factory:  factory,
		closeFn:  closeFn,
		idleTTL:  idleTTL,
		stopReap: make(chan struct{}),
	}
	for i := 0; i < size; i++ {
		client, err := factory(ctx)
		if err != nil {
			p.drainAndClose()
			return nil, ragerr.Wrap(ragerr.Internal, "connection pool: open initial handle", err)
		}
		p.idle <- pooledConn[T]{client: client, lastUsed: time.Now()}
	}
	if idleTTL > 0 {
		safe.Go(p.reapLoop, func(err error) {
			// A panic here (e.g. a misbehaving factory) must not take the
			// whole process down; the pool just stops reaping idle handles.
		})
	}
	return p, nil
}

// Checkout blocks until a handle is available or ctx is done. The returned
// release func must be called exactly once; it is also invoked
// automatically (with the handle discarded back into the pool) if ctx is
// cancelled before the caller releases explicitly.
func (p *ConnPool[T]) Checkout(ctx context.Context) (T, func(), error) {
	var zero T
	select {
	case pc := <-p.idle:
		var once sync.Once
		done := make(chan struct{})
		release := func() {
			once.Do(func() {
				close(done)
				p.returnConn(pc.client)
			})
		}
		go func() {
			select {
			case <-ctx.Done():
				release()
			case <-done:
			}
		}()
		return pc.client, release, nil
	case <-ctx.Done():
		return zero, func() {}, ragerr.Wrap(ragerr.Cancelled, "connection pool: checkout", ctx.Err())
	}
}

func (p *ConnPool[T]) returnConn(client T) {
	select {
	case p.idle <- pooledConn[T]{client: client, lastUsed: time.Now()}:
	default:
		_ = p.closeFn(client)
	}
}

func (p *ConnPool[T]) reapLoop() {
	ticker := time.NewTicker(p.idleTTL)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.reapOnePass()
		case <-p.stopReap:
			return
		}
	}
}

// reapOnePass drains currently-idle handles, closing and replacing any
// that have sat unused longer than idleTTL, then puts everything back.
// Handles checked out mid-sweep are untouched — they rejoin the idle set
// on release with a fresh lastUsed timestamp.
func (p *ConnPool[T]) reapOnePass() {
	n := len(p.idle)
	cutoff := time.Now().Add(-p.idleTTL)
	for i := 0; i < n; i++ {
		select {
		case pc := <-p.idle:
			if pc.lastUsed.Before(cutoff) {
				_ = p.closeFn(pc.client)
				if fresh, err := p.factory(context.Background()); err == nil {
					pc = pooledConn[T]{client: fresh, lastUsed: time.Now()}
				}
			}
			p.idle <- pc
		default:
			return
		}
	}
}

func (p *ConnPool[T]) drainAndClose() {
	close(p.stopReap)
	for {
		select {
		case pc := <-p.idle:
			_ = p.closeFn(pc.client)
		default:
			return
		}
	}
}

// Close stops idle reaping and closes every currently-idle handle.
// Handles still checked out are not closed: on release they rejoin the
// idle set and stay open.
func (p *ConnPool[T]) Close() error {
	p.reapOnce.Do(func() { close(p.stopReap) })
	for {
		select {
		case pc := <-p.idle:
			_ = p.closeFn(pc.client)
		default:
			return nil
		}
	}
}
