package query

import "time"

// Options controls freshness of a cached value.
type Options struct {
	// StaleTime is how long a value is served without refetching.
	StaleTime time.Duration
	// ExpireTime is how long a value is kept at all. Values shorter than
	// StaleTime are raised to StaleTime.
	ExpireTime time.Duration
}

func (o Options) normalized() Options {
	if o.StaleTime < 0 {
		o.StaleTime = 0
	}
	if o.ExpireTime < o.StaleTime {
		o.ExpireTime = o.StaleTime
	}
	return o
}

// Entry is a cached value with its timing.
type Entry struct {
	Key          Key
	Data         any
	FetchedAt    time.Time
	StaleAfter   time.Duration
	ExpiresAfter time.Duration
}

// IsStale reports whether the value should be refetched.
func (e Entry) IsStale(now time.Time) bool {
	return now.Sub(e.FetchedAt) > e.StaleAfter
}

// IsExpired reports whether the value may be evicted.
func (e Entry) IsExpired(now time.Time) bool {
	return now.Sub(e.FetchedAt) > e.ExpiresAfter
}

// Event is delivered to subscribers when a key's entry changes.
type Event struct {
	Key   Key
	Entry Entry
	// Removed is set when the entry was invalidated or evicted.
	Removed bool
}

// Listener receives change events. It runs synchronously on the writing
// goroutine and must not block.
type Listener func(Event)
