package cache

import (
	"sync"

	"github.com/ragcore-ai/engine/pkg/ring"
)

// typedRings lazily creates one ring.Buffer[entry] per Type on first use,
// since the set of cache types in play isn't known until callers start
// using them.
type typedRings struct {
	mu   sync.Mutex
	bufs map[Type]*ring.Buffer[entry]
}

func newTypedRings() *typedRings {
	return &typedRings{bufs: make(map[Type]*ring.Buffer[entry])}
}

func (t *typedRings) get(typ Type, capacity int) *ring.Buffer[entry] {
	t.mu.Lock()
	defer t.mu.Unlock()
	buf, ok := t.bufs[typ]
	if !ok {
		buf = ring.New[entry](capacity)
		t.bufs[typ] = buf
	}
	return buf
}

func (t *typedRings) clear(typ Type) {
	t.mu.Lock()
	buf, ok := t.bufs[typ]
	t.mu.Unlock()
	if ok {
		buf.Clear()
	}
}
