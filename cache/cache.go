package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"golang.org/x/sync/singleflight"

	"github.com/Nairolf138/eos-mcp/osc"
)

// DefaultTTL is the global time-to-live applied when neither the call nor
// the resource type carries an override.
const DefaultTTL = 10 * time.Second

// ProducerFunc produces the value to cache on a miss. It is supplied fresh
// per fetch call and treated as opaque.
type ProducerFunc func(ctx context.Context) (any, error)

// entry is immutable once created; an overwrite deletes the old entry and
// its index registrations before inserting a new one.
type entry struct {
	value      any
	expiresAt  time.Time
	tags       []string
	prefixTags []string
}

// Cache is the resource cache. One instance is owned by the composition
// root and passed to every tool handler.
//
// Contract:
// - Concurrency: safe for concurrent use; the internal lock is never held
//   across a producer call.
// - Errors: producer failures propagate unmodified; invalidation calls are
//   total functions over their inputs and never error.
type Cache struct {
	mu           sync.Mutex
	stores       map[ResourceType]map[string]*entry
	tagIndex     map[string]map[string]struct{}
	prefixIndex  map[string]map[string]struct{}
	stats        map[ResourceType]*counters
	defaultTTL   time.Duration
	ttlOverrides map[ResourceType]time.Duration

	now      func() time.Time
	metrics  *cacheMetrics
	coalesce bool
	flight   singleflight.Group
}

// Option configures a Cache at construction time.
type Option func(*Cache)

// WithDefaultTTL overrides the global default TTL. Negative values clamp
// to zero.
func WithDefaultTTL(d time.Duration) Option {
	return func(c *Cache) {
		if d < 0 {
			d = 0
		}
		c.defaultTTL = d
	}
}

// WithMeter wires the cache's OpenTelemetry instruments onto meter.
func WithMeter(meter metric.Meter) Option {
	return func(c *Cache) {
		m, err := newCacheMetrics(meter)
		if err != nil {
			return
		}
		c.metrics = m
	}
}

// WithCoalescing enables single-flight producer calls per entry identifier.
// Off by default: concurrent misses for the same key each invoke their own
// producer and the last store wins.
func WithCoalescing() Option {
	return func(c *Cache) { c.coalesce = true }
}

// WithClock substitutes the time source. Test hook.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		stores:       make(map[ResourceType]map[string]*entry),
		tagIndex:     make(map[string]map[string]struct{}),
		prefixIndex:  make(map[string]map[string]struct{}),
		stats:        make(map[ResourceType]*counters),
		ttlOverrides: make(map[ResourceType]time.Duration),
		defaultTTL:   DefaultTTL,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		m, err := newCacheMetrics(noop.NewMeterProvider().Meter("cache"))
		if err == nil {
			c.metrics = m
		}
	}
	return c
}

// FetchOption configures one fetch call.
type FetchOption func(*fetchConfig)

type fetchConfig struct {
	ttl        time.Duration
	ttlSet     bool
	tags       []string
	prefixTags []string
}

// WithTTL sets an explicit TTL for the entry stored by this call. A
// non-positive TTL stores the entry already expired: the value is returned
// to this caller but the very next lookup misses.
func WithTTL(d time.Duration) FetchOption {
	return func(cfg *fetchConfig) {
		cfg.ttl = d
		cfg.ttlSet = true
	}
}

// WithTags registers exact invalidation tags on the stored entry. Build
// them with AddressTag, ResourceTag or ResourceInstanceTag.
func WithTags(tags ...string) FetchOption {
	return func(cfg *fetchConfig) {
		cfg.tags = append(cfg.tags, tags...)
	}
}

// WithPrefixTags registers prefix invalidation tags on the stored entry.
// Build them with PrefixTag.
func WithPrefixTags(tags ...string) FetchOption {
	return func(cfg *fetchConfig) {
		cfg.prefixTags = append(cfg.prefixTags, tags...)
	}
}

// Fetch returns the cached value for (rt, key) or populates it via
// producer. The miss is counted before the producer runs; on producer
// failure nothing is stored and the error propagates unmodified.
func (c *Cache) Fetch(ctx context.Context, rt ResourceType, key string, producer ProducerFunc, opts ...FetchOption) (any, error) {
	if !rt.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidResourceType, rt)
	}
	if err := validateKey(key); err != nil {
		return nil, err
	}

	var cfg fetchConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	start := c.now()

	c.mu.Lock()
	if e, ok := c.stores[rt][key]; ok {
		if e.expiresAt.After(c.now()) {
			c.countersFor(rt).hits++
			v := e.value
			c.mu.Unlock()
			c.metrics.recordFetch(ctx, rt, true, c.now().Sub(start))
			return v, nil
		}
		// Lazy expiry: tear down before proceeding as a miss.
		c.removeLocked(rt, key)
	}
	c.countersFor(rt).misses++
	c.mu.Unlock()

	if c.coalesce {
		v, err, _ := c.flight.Do(entryID(rt, key), func() (any, error) {
			return c.produceAndStore(ctx, rt, key, producer, cfg)
		})
		c.metrics.recordFetch(ctx, rt, false, c.now().Sub(start))
		return v, err
	}

	v, err := c.produceAndStore(ctx, rt, key, producer, cfg)
	c.metrics.recordFetch(ctx, rt, false, c.now().Sub(start))
	return v, err
}

func (c *Cache) produceAndStore(ctx context.Context, rt ResourceType, key string, producer ProducerFunc, cfg fetchConfig) (any, error) {
	v, err := producer(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ttl := c.defaultTTL
	if override, ok := c.ttlOverrides[rt]; ok {
		ttl = override
	}
	if cfg.ttlSet {
		ttl = cfg.ttl
	}

	now := c.now()
	expiresAt := now
	if ttl > 0 {
		expiresAt = now.Add(ttl)
	}

	// Overwrite deletes the prior entry and its registrations first.
	c.removeLocked(rt, key)

	id := entryID(rt, key)
	store := c.stores[rt]
	if store == nil {
		store = make(map[string]*entry)
		c.stores[rt] = store
	}
	store[key] = &entry{
		value:      v,
		expiresAt:  expiresAt,
		tags:       cfg.tags,
		prefixTags: cfg.prefixTags,
	}
	for _, tag := range cfg.tags {
		addIndex(c.tagIndex, tag, id)
	}
	for _, tag := range cfg.prefixTags {
		addIndex(c.prefixIndex, tag, id)
	}
	return v, nil
}

// InvalidateEntry removes exactly (rt, key). No-op when absent. Returns
// the number of entries removed.
func (c *Cache) InvalidateEntry(rt ResourceType, key string) int {
	c.mu.Lock()
	removed := 0
	if c.removeLocked(rt, key) {
		removed = 1
	}
	c.mu.Unlock()
	c.metrics.recordInvalidation(context.Background(), "entry", removed)
	return removed
}

// InvalidateResourceType removes every live entry under rt.
func (c *Cache) InvalidateResourceType(rt ResourceType) int {
	c.mu.Lock()
	removed := c.invalidateResourceTypeLocked(rt)
	c.mu.Unlock()
	c.metrics.recordInvalidation(context.Background(), "resource_type", removed)
	return removed
}

// InvalidateTag removes every entry registered under tag, across all
// resource types. Unknown tags remove nothing.
func (c *Cache) InvalidateTag(tag string) int {
	c.mu.Lock()
	removed := c.invalidateIndexLocked(c.tagIndex, tag)
	c.mu.Unlock()
	c.metrics.recordInvalidation(context.Background(), "tag", removed)
	return removed
}

// InvalidatePrefix removes every entry registered under the prefix tag.
func (c *Cache) InvalidatePrefix(tag string) int {
	c.mu.Lock()
	removed := c.invalidateIndexLocked(c.prefixIndex, tag)
	c.mu.Unlock()
	c.metrics.recordInvalidation(context.Background(), "prefix", removed)
	return removed
}

// InvalidateAddress tears down the exact tag for address plus every
// registered prefix tag the address falls under. This is how one concrete
// broadcast retroactively matches coarser prefix subscriptions.
func (c *Cache) InvalidateAddress(address string) int {
	c.mu.Lock()
	removed := c.invalidateIndexLocked(c.tagIndex, AddressTag(address))

	// Snapshot matches first; removal mutates the index being walked.
	var matched []string
	for tag := range c.prefixIndex {
		if prefix, ok := PrefixValue(tag); ok && strings.HasPrefix(address, prefix) {
			matched = append(matched, tag)
		}
	}
	for _, tag := range matched {
		removed += c.invalidateIndexLocked(c.prefixIndex, tag)
	}
	c.mu.Unlock()
	c.metrics.recordInvalidation(context.Background(), "address", removed)
	return removed
}

// NotifyResourceChange invalidates the resource-level tag for rt and, when
// id is non-empty, the identity-specific tag as well. Tool handlers call
// this right after a mutating command, before any broadcast could arrive.
func (c *Cache) NotifyResourceChange(rt ResourceType, id string) int {
	c.mu.Lock()
	removed := c.invalidateIndexLocked(c.tagIndex, ResourceTag(rt))
	if id != "" {
		removed += c.invalidateIndexLocked(c.tagIndex, ResourceInstanceTag(rt, id))
	}
	c.mu.Unlock()
	c.metrics.recordInvalidation(context.Background(), "resource_change", removed)
	return removed
}

// HandleMessage observes one inbound protocol message. Only addresses under
// the broadcast namespace carry cache implications; everything else is
// ignored here.
func (c *Cache) HandleMessage(msg osc.Message) {
	if !msg.IsBroadcast() {
		return
	}
	c.InvalidateAddress(msg.Address)
}

// Clear invalidates every store and resets all stats counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.stores = make(map[ResourceType]map[string]*entry)
	c.tagIndex = make(map[string]map[string]struct{})
	c.prefixIndex = make(map[string]map[string]struct{})
	c.stats = make(map[ResourceType]*counters)
	c.mu.Unlock()
}

// SetDefaultTTL replaces the global default TTL. Negative input clamps to
// zero rather than erroring.
func (c *Cache) SetDefaultTTL(d time.Duration) {
	if d < 0 {
		d = 0
	}
	c.mu.Lock()
	c.defaultTTL = d
	c.mu.Unlock()
}

// SetResourceTTL sets a per-resource-type TTL override. Negative input
// clamps to zero.
func (c *Cache) SetResourceTTL(rt ResourceType, d time.Duration) {
	if d < 0 {
		d = 0
	}
	c.mu.Lock()
	c.ttlOverrides[rt] = d
	c.mu.Unlock()
}

// ClearResourceTTL removes the per-type override, reverting rt to the
// global default.
func (c *Cache) ClearResourceTTL(rt ResourceType) {
	c.mu.Lock()
	delete(c.ttlOverrides, rt)
	c.mu.Unlock()
}

// Stats snapshots the counters for rt.
func (c *Cache) Stats(rt ResourceType) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Stats{LiveEntries: len(c.stores[rt])}
	if ctr, ok := c.stats[rt]; ok {
		s.Hits = ctr.hits
		s.Misses = ctr.misses
	}
	return s
}

func (c *Cache) countersFor(rt ResourceType) *counters {
	ctr, ok := c.stats[rt]
	if !ok {
		ctr = &counters{}
		c.stats[rt] = ctr
	}
	return ctr
}

func (c *Cache) invalidateResourceTypeLocked(rt ResourceType) int {
	store := c.stores[rt]
	if len(store) == 0 {
		return 0
	}
	keys := make([]string, 0, len(store))
	for key := range store {
		keys = append(keys, key)
	}
	removed := 0
	for _, key := range keys {
		if c.removeLocked(rt, key) {
			removed++
		}
	}
	return removed
}

func (c *Cache) invalidateIndexLocked(index map[string]map[string]struct{}, tag string) int {
	bucket := index[tag]
	if len(bucket) == 0 {
		return 0
	}
	ids := make([]string, 0, len(bucket))
	for id := range bucket {
		ids = append(ids, id)
	}
	removed := 0
	for _, id := range ids {
		rt, key, ok := splitEntryID(id)
		if !ok {
			continue
		}
		if c.removeLocked(rt, key) {
			removed++
		}
	}
	return removed
}

// removeLocked deletes one entry and its registrations from both indices.
// Every removal path funnels through here so the index consistency
// invariant holds on expiry, invalidation and overwrite alike.
func (c *Cache) removeLocked(rt ResourceType, key string) bool {
	store := c.stores[rt]
	e, ok := store[key]
	if !ok {
		return false
	}
	delete(store, key)

	id := entryID(rt, key)
	for _, tag := range e.tags {
		dropIndex(c.tagIndex, tag, id)
	}
	for _, tag := range e.prefixTags {
		dropIndex(c.prefixIndex, tag, id)
	}
	return true
}

func addIndex(index map[string]map[string]struct{}, tag, id string) {
	bucket := index[tag]
	if bucket == nil {
		bucket = make(map[string]struct{})
		index[tag] = bucket
	}
	bucket[id] = struct{}{}
}

// dropIndex removes one identifier and deletes the bucket when it empties;
// stale empty buckets would make prefix matching scan dead tags forever.
func dropIndex(index map[string]map[string]struct{}, tag, id string) {
	bucket := index[tag]
	if bucket == nil {
		return
	}
	delete(bucket, id)
	if len(bucket) == 0 {
		delete(index, tag)
	}
}
