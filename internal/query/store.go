// Package query is a keyed cache of asynchronous results with
// stale-while-revalidate reads, request de-duplication and optimistic
// mutations.
package query

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/archnets/learn-miniapp/internal/logger"
)

// Fetcher loads the value for a key.
type Fetcher func(ctx context.Context) (any, error)

// slot is the per-key state. gen is replaced by every write that does not
// come from a fetch; a fetch commits only if gen is unchanged. Generations
// come from one store-wide sequence, so a slot recreated after Evict never
// reuses the flight key of a fetch still running for its predecessor.
type slot struct {
	key        Key
	parts      []string
	gen        uint64
	entry      *Entry
	inflight   int
	refreshing bool
	subs       map[int]Listener
}

// Store is a process-wide query cache. It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	slots   map[string]*slot
	nextSub int
	genSeq  uint64

	group singleflight.Group
	bg    sync.WaitGroup

	now func() time.Time
	log logger.Scoped
}

// StoreOption configures a Store.
type StoreOption func(*Store)

func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func WithLogger(l logger.Scoped) StoreOption {
	return func(s *Store) { s.log = l }
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		slots: make(map[string]*slot),
		now:   time.Now,
		log:   logger.Named("query"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// slotLocked returns the slot for id, creating it. Caller holds s.mu.
func (s *Store) slotLocked(id string, key Key, parts []string) *slot {
	sl, ok := s.slots[id]
	if !ok {
		sl = &slot{key: key, parts: parts, gen: s.nextGenLocked()}
		s.slots[id] = sl
	}
	return sl
}

// nextGenLocked hands out a generation never used before. Caller holds s.mu.
func (s *Store) nextGenLocked() uint64 {
	s.genSeq++
	return s.genSeq
}

// Fetch returns the value for key. A fresh value is returned from cache.
// A stale but unexpired value is returned from cache and refreshed once in
// the background. Otherwise the fetcher runs, shared with any concurrent
// callers for the same key.
func (s *Store) Fetch(ctx context.Context, key Key, fetcher Fetcher, opts Options) (any, error) {
	id, parts, err := key.serialize()
	if err != nil {
		return nil, err
	}
	opts = opts.normalized()

	s.mu.Lock()
	sl := s.slotLocked(id, key, parts)
	now := s.now()
	if e := sl.entry; e != nil && !e.IsExpired(now) {
		data := e.Data
		if e.IsStale(now) {
			s.refreshLocked(ctx, id, sl, fetcher, opts)
		}
		s.mu.Unlock()
		return data, nil
	}
	gen := sl.gen
	sl.inflight++
	s.mu.Unlock()

	return s.load(ctx, id, gen, fetcher, opts)
}

// Prefetch warms the cache for key. Errors are returned but nothing is
// cached on failure.
func (s *Store) Prefetch(ctx context.Context, key Key, fetcher Fetcher, opts Options) error {
	_, err := s.Fetch(ctx, key, fetcher, opts)
	return err
}

// refreshLocked starts the background refresh for a stale entry unless
// one is already running. Caller holds s.mu.
func (s *Store) refreshLocked(ctx context.Context, id string, sl *slot, fetcher Fetcher, opts Options) {
	if sl.refreshing {
		return
	}
	sl.refreshing = true
	sl.inflight++
	gen := sl.gen
	ctx = context.WithoutCancel(ctx)

	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		_, err := s.load(ctx, id, gen, fetcher, opts)

		s.mu.Lock()
		sl.refreshing = false
		s.mu.Unlock()

		if err != nil {
			s.log.Warnf("Background refresh of %s failed: %v", id, err)
		}
	}()
}

// load runs fetcher through the flight for (id, gen). The caller has
// already counted itself in slot.inflight.
func (s *Store) load(ctx context.Context, id string, gen uint64, fetcher Fetcher, opts Options) (any, error) {
	defer func() {
		s.mu.Lock()
		if sl, ok := s.slots[id]; ok && sl.inflight > 0 {
			sl.inflight--
		}
		s.mu.Unlock()
	}()

	flight := id + "#" + strconv.FormatUint(gen, 10)
	ch := s.group.DoChan(flight, func() (any, error) {
		// Re-check: a flight for this generation may have just committed.
		s.mu.Lock()
		if sl, ok := s.slots[id]; ok && sl.gen == gen && sl.entry != nil && !sl.entry.IsStale(s.now()) {
			data := sl.entry.Data
			s.mu.Unlock()
			return data, nil
		}
		s.mu.Unlock()

		data, err := fetcher(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		s.commit(id, gen, data, opts)
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// commit stores a fetched value if no write happened since the fetch began.
func (s *Store) commit(id string, gen uint64, data any, opts Options) bool {
	s.mu.Lock()
	sl, ok := s.slots[id]
	if !ok || sl.gen != gen {
		s.mu.Unlock()
		s.log.Debugf("Discarding result for %s: key changed during fetch", id)
		return false
	}
	e := Entry{
		Key:          sl.key,
		Data:         data,
		FetchedAt:    s.now(),
		StaleAfter:   opts.StaleTime,
		ExpiresAfter: opts.ExpireTime,
	}
	sl.entry = &e
	subs := listeners(sl)
	s.mu.Unlock()

	notify(subs, Event{Key: e.Key, Entry: e})
	return true
}

// SetData writes data for key directly, as if just fetched.
func (s *Store) SetData(key Key, data any, opts Options) error {
	id, parts, err := key.serialize()
	if err != nil {
		return err
	}
	opts = opts.normalized()

	s.mu.Lock()
	sl := s.slotLocked(id, key, parts)
	sl.gen = s.nextGenLocked()
	e := Entry{Key: key, Data: data, FetchedAt: s.now(), StaleAfter: opts.StaleTime, ExpiresAfter: opts.ExpireTime}
	sl.entry = &e
	subs := listeners(sl)
	s.mu.Unlock()

	notify(subs, Event{Key: key, Entry: e})
	return nil
}

// Snapshot returns a copy of the entry for key, if present.
func (s *Store) Snapshot(key Key) (Entry, bool) {
	id, _, err := key.serialize()
	if err != nil {
		return Entry{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[id]
	if !ok || sl.entry == nil {
		return Entry{}, false
	}
	return *sl.entry, true
}

// Invalidate removes every entry whose key starts with prefix and makes
// in-flight fetches for those keys discard their results. It returns the
// number of entries removed.
func (s *Store) Invalidate(prefix Key) int {
	_, prefixParts, err := prefix.serialize()
	if err != nil {
		s.log.Warnf("Invalidate: %v", err)
		return 0
	}

	var events []pending
	removed := 0

	s.mu.Lock()
	for _, sl := range s.slots {
		if !hasPrefix(sl.parts, prefixParts) {
			continue
		}
		sl.gen = s.nextGenLocked()
		if sl.entry == nil {
			continue
		}
		events = append(events, pending{subs: listeners(sl), ev: Event{Key: sl.key, Entry: *sl.entry, Removed: true}})
		sl.entry = nil
		removed++
	}
	s.mu.Unlock()

	for _, p := range events {
		notify(p.subs, p.ev)
	}
	if removed > 0 {
		s.log.Debugf("Invalidated %d entries under %s", removed, prefix)
	}
	return removed
}

// Evict drops expired entries and forgets idle keys. It returns the
// number of entries dropped.
func (s *Store) Evict() int {
	var events []pending
	removed := 0

	s.mu.Lock()
	now := s.now()
	for id, sl := range s.slots {
		if sl.entry != nil && sl.entry.IsExpired(now) {
			events = append(events, pending{subs: listeners(sl), ev: Event{Key: sl.key, Entry: *sl.entry, Removed: true}})
			sl.entry = nil
			removed++
		}
		if sl.entry == nil && sl.inflight == 0 && len(sl.subs) == 0 {
			delete(s.slots, id)
		}
	}
	s.mu.Unlock()

	for _, p := range events {
		notify(p.subs, p.ev)
	}
	return removed
}

// RunJanitor evicts expired entries every interval until ctx is done.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Evict(); n > 0 {
				s.log.Debugf("Evicted %d expired entries", n)
			}
		}
	}
}

// Subscribe registers fn for changes to key. The returned function
// removes the subscription.
func (s *Store) Subscribe(key Key, fn Listener) (func(), error) {
	id, parts, err := key.serialize()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	sl := s.slotLocked(id, key, parts)
	if sl.subs == nil {
		sl.subs = make(map[int]Listener)
	}
	s.nextSub++
	subID := s.nextSub
	sl.subs[subID] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(sl.subs, subID)
			s.mu.Unlock()
		})
	}, nil
}

// Wait blocks until running background refreshes finish.
func (s *Store) Wait() {
	s.bg.Wait()
}

// Get is a typed Fetch.
func Get[T any](ctx context.Context, s *Store, key Key, fetch func(context.Context) (T, error), opts Options) (T, error) {
	var zero T
	v, err := s.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	}, opts)
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("query %s: cached value is %T, not %T", key, v, zero)
	}
	return out, nil
}

type pending struct {
	subs []Listener
	ev   Event
}

func listeners(sl *slot) []Listener {
	if len(sl.subs) == 0 {
		return nil
	}
	out := make([]Listener, 0, len(sl.subs))
	for _, fn := range sl.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []Listener, ev Event) {
	for _, fn := range subs {
		fn(ev)
	}
}
