package cache

// Stats is a read-only snapshot of one resource type's counters.
//
// LiveEntries counts stored entries, including ones already past their
// expiry instant that no read or invalidation has touched yet; with lazy
// expiry the count can over-report until the next access.
type Stats struct {
	Hits        int64
	Misses      int64
	LiveEntries int
}

// counters accumulates hits and misses for one resource type. Guarded by
// the cache mutex; monotonic except on Clear.
type counters struct {
	hits   int64
	misses int64
}
