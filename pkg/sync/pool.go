package sync

import (
	"sync/atomic"

	"github.com/panjf2000/ants/v2"

	"github.com/ragcore-ai/engine/pkg/safe"
)

// Pool defines the common interface for all goroutine pool implementations.
// Any pool implementing this interface can be used to execute functions concurrently.
type Pool interface {
	// Submit submits a function to be executed concurrently by the pool.
	Submit(f func()) error
}

// defaultPool is the package-level default pool instance.
var defaultPool atomic.Value

// DefaultPool returns the current default pool instance.
func DefaultPool() Pool {
	return defaultPool.Load().(Pool)
}

// SetDefaultPool sets a new default pool for the package.
// If the provided pool is nil, the function has no effect.
func SetDefaultPool(pool Pool) {
	if pool == nil {
		return
	}
	defaultPool.Store(pool)
}

func init() {
	defaultPool.Store(PoolOfNoPool())
}

// poolAdapter converts a function with the signature func(func()) error into
// a Pool implementation.
type poolAdapter func(f func()) error

func (p poolAdapter) Submit(f func()) error {
	return p(f)
}

// PoolOfNoPool creates a Pool that launches an unbounded goroutine per task,
// recovering any panic instead of crashing the process.
func PoolOfNoPool() Pool {
	return poolAdapter(func(f func()) error {
		safe.Go(f)
		return nil
	})
}

// PoolOfAnts creates a Pool adapter for a panjf2000/ants pool. It panics if
// the provided pool is nil.
func PoolOfAnts(pool *ants.Pool) Pool {
	if pool == nil {
		panic("ants pool is nil")
	}
	return poolAdapter(func(f func()) error {
		return pool.Submit(f)
	})
}
