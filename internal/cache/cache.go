// Package cache implements the two-tier cache (spec.md §4.7) shared by
// retrievers and the strategy selector: a fixed-capacity in-process L1
// backed by pkg/ring, promoting from a longer-lived Redis L2 on miss.
//
// Grounded on itsneelabh-gomind's core/schema_cache.go for the L2 shape
// (JSON-marshaled values, TTL, prefixed keys, atomic hit/miss counters) and
// generalized to two tiers plus cascading invalidation, which schema_cache
// doesn't need since schemas never change underneath a running agent.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"github.com/ragcore-ai/engine/internal/ragerr"
	"github.com/ragcore-ai/engine/pkg/ring"
)

// Type names a cache namespace (e.g. "retrieval", "strategy", "embedding").
// Ring capacity, TTLs, and the invalidation dependency graph are all scoped
// per Type.
type Type string

// DependencyGraph declares which cache types must be invalidated alongside
// another: invalidating Type key cascades into a whole-type invalidation of
// every Type in the slice (spec.md §4.7's example: invalidating a plugin's
// info invalidates its list view).
type DependencyGraph map[Type][]Type

// Config wires a Cache's backing store, capacities, and TTLs.
type Config struct {
	Redis *redis.Client // optional; nil leaves the cache L1-only

	// L1Capacity bounds the ring buffer per Type; default 256.
	L1Capacity int
	L1TTL      time.Duration // default 5 minutes
	L2TTL      time.Duration // default 30 minutes

	KeyPrefix  string // default "ragcore:cache:"
	DependsOn  DependencyGraph
	MeterProvider metric.MeterProvider // optional; defaults to the global provider
}

type entry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// Cache implements spec.md §4.7's read/write/invalidate paths. Safe for
// concurrent use.
type Cache struct {
	redis  *redis.Client
	prefix string
	l1TTL  time.Duration
	l2TTL  time.Duration

	l1Capacity int
	l1         *typedRings
	deps       DependencyGraph
	group      singleflight.Group

	hits   metric.Int64Counter
	misses metric.Int64Counter
}

// New constructs a Cache. Panics are never used for misconfiguration — a nil
// Redis client is accepted, and the cache then serves and stores through L1
// only, the way the rest of this engine treats optional wiring.
func New(cfg Config) (*Cache, error) {
	l1Capacity := cfg.L1Capacity
	if l1Capacity <= 0 {
		l1Capacity = 256
	}
	l1TTL := cfg.L1TTL
	if l1TTL <= 0 {
		l1TTL = 5 * time.Minute
	}
	l2TTL := cfg.L2TTL
	if l2TTL <= 0 {
		l2TTL = 30 * time.Minute
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "ragcore:cache:"
	}

	provider := cfg.MeterProvider
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter("github.com/ragcore-ai/engine/internal/cache")

	hits, err := meter.Int64Counter("ragcore.cache.hits", metric.WithDescription("Cache hits by tier and type"))
	if err != nil {
		return nil, ragerr.Wrap(ragerr.Internal, "cache: register hits counter", err)
	}
	misses, err := meter.Int64Counter("ragcore.cache.misses", metric.WithDescription("Cache misses by tier and type"))
	if err != nil {
		return nil, ragerr.Wrap(ragerr.Internal, "cache: register misses counter", err)
	}

	return &Cache{
		redis:      cfg.Redis,
		prefix:     prefix,
		l1TTL:      l1TTL,
		l2TTL:      l2TTL,
		l1Capacity: l1Capacity,
		l1:         newTypedRings(),
		deps:       cfg.DependsOn,
		hits:       hits,
		misses:     misses,
	}, nil
}

// Get implements the read path: L1 hit returns immediately; L2 hit promotes
// the value into L1 before returning; a miss on both reports found=false.
func (c *Cache) Get(ctx context.Context, typ Type, key string) ([]byte, bool) {
	if v, ok := c.l1Get(typ, key); ok {
		c.record("l1", typ, true)
		return v, true
	}
	c.record("l1", typ, false)

	if c.redis == nil {
		c.record("l2", typ, false)
		return nil, false
	}

	v, err := c.redis.Get(ctx, c.redisKey(typ, key)).Bytes()
	if err != nil {
		c.record("l2", typ, false)
		return nil, false
	}
	c.record("l2", typ, true)
	c.l1Set(typ, key, v)
	return v, true
}

// Set writes through both tiers.
func (c *Cache) Set(ctx context.Context, typ Type, key string, value []byte) {
	c.l1Set(typ, key, value)
	if c.redis != nil {
		_ = c.redis.Set(ctx, c.redisKey(typ, key), value, c.l2TTL).Err()
	}
}

// GetOrCompute returns the cached value for (typ, key), computing and
// storing it on a miss. Concurrent callers racing on the same (typ, key)
// share one computation via singleflight — the stampede protection spec.md
// §4.7 implies but doesn't spell out a mechanism for, ported from the
// pattern golang.org/x/sync/singleflight exists to solve.
func (c *Cache) GetOrCompute(ctx context.Context, typ Type, key string, compute func(context.Context) ([]byte, error)) ([]byte, error) {
	if v, ok := c.Get(ctx, typ, key); ok {
		return v, nil
	}

	sfKey := string(typ) + "\x00" + key
	v, err, _ := c.group.Do(sfKey, func() (any, error) {
		// Re-check under the singleflight key: another goroutine may have
		// populated the cache between our Get above and acquiring the
		// singleflight slot.
		if v, ok := c.Get(ctx, typ, key); ok {
			return v, nil
		}
		computed, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(ctx, typ, key, computed)
		return computed, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// GetJSON/SetJSON are Get/Set with JSON marshaling, for callers storing
// structured values rather than raw bytes.
func (c *Cache) GetJSON(ctx context.Context, typ Type, key string, dest any) bool {
	raw, ok := c.Get(ctx, typ, key)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (c *Cache) SetJSON(ctx context.Context, typ Type, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return ragerr.Wrap(ragerr.InvalidArgument, "cache: marshal value for "+string(typ)+":"+key, err)
	}
	c.Set(ctx, typ, key, raw)
	return nil
}

// Invalidate clears id from typ (or the whole type, when id is empty), then
// cascades into a whole-type invalidation of every type declared dependent
// on typ in the Cache's DependencyGraph.
func (c *Cache) Invalidate(ctx context.Context, typ Type, id string) {
	c.invalidateOne(ctx, typ, id)
	for _, dependent := range c.deps[typ] {
		c.invalidateOne(ctx, dependent, "")
	}
}

// invalidateOne clears the ring buffer for typ. pkg/ring.Buffer has no
// single-element delete, and a bounded ring scan is cheap enough that
// clearing the whole type on any invalidation — rather than threading a
// partial-rebuild through the ring — is the simpler and still-correct
// choice; L1 is a hint layer, never the source of truth.
func (c *Cache) invalidateOne(ctx context.Context, typ Type, id string) {
	c.l1.clear(typ)

	if c.redis == nil {
		return
	}
	if id != "" {
		_ = c.redis.Del(ctx, c.redisKey(typ, id)).Err()
		return
	}

	pattern := c.prefix + string(typ) + ":*"
	iter := c.redis.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if len(keys) > 0 {
		_ = c.redis.Del(ctx, keys...).Err()
	}
}

func (c *Cache) redisKey(typ Type, key string) string {
	return c.prefix + string(typ) + ":" + key
}

func (c *Cache) l1Get(typ Type, key string) ([]byte, bool) {
	buf := c.l1.get(typ, c.l1Capacity)
	now := time.Now()
	items := buf.All()
	for i := len(items) - 1; i >= 0; i-- {
		e := items[i]
		if e.key != key {
			continue
		}
		if now.After(e.expiresAt) {
			return nil, false
		}
		return e.value, true
	}
	return nil, false
}

func (c *Cache) l1Set(typ Type, key string, value []byte) {
	buf := c.l1.get(typ, c.l1Capacity)
	buf.Add(entry{key: key, value: value, expiresAt: time.Now().Add(c.l1TTL)})
}

func (c *Cache) record(tier string, typ Type, hit bool) {
	counter := c.misses
	if hit {
		counter = c.hits
	}
	counter.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("tier", tier),
		attribute.String("type", string(typ)),
	))
}
