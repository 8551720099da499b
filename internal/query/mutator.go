package query

import (
	"context"
	"sync/atomic"
)

// MutationOptions describes the cache side effects of a mutation.
type MutationOptions[V any] struct {
	// Target is the key updated optimistically. Optional.
	Target Key
	// Optimistic computes the value shown while the mutation runs. It
	// receives the current cached value (nil if absent) and must return a
	// new value rather than modify current.
	Optimistic func(current any, vars V) any
	// RequireCached skips the optimistic write when Target has no entry,
	// so readers fetch instead of seeing a value built from nothing.
	RequireCached bool
	// Cache is used for the optimistic entry when Target has none.
	Cache Options
	// Invalidate lists key prefixes dropped after success.
	Invalidate []Key
}

// Mutator runs a write operation with optimistic cache updates. On
// failure the target entry is restored exactly as it was.
type Mutator[V, R any] struct {
	store   *Store
	fn      func(context.Context, V) (R, error)
	opts    MutationOptions[V]
	pending atomic.Int32
}

func NewMutator[V, R any](store *Store, fn func(context.Context, V) (R, error), opts MutationOptions[V]) *Mutator[V, R] {
	return &Mutator[V, R]{store: store, fn: fn, opts: opts}
}

// IsPending reports whether a call to Mutate is in progress.
func (m *Mutator[V, R]) IsPending() bool {
	return m.pending.Load() > 0
}

func (m *Mutator[V, R]) Mutate(ctx context.Context, vars V) (R, error) {
	m.pending.Add(1)
	defer m.pending.Add(-1)

	var (
		snap    Entry
		had     bool
		applied bool
	)
	if m.opts.Target != nil && m.opts.Optimistic != nil {
		var err error
		snap, had, applied, err = m.store.applyOptimistic(m.opts.Target, func(current any) any {
			return m.opts.Optimistic(current, vars)
		}, m.opts.Cache, m.opts.RequireCached)
		if err != nil {
			var zero R
			return zero, err
		}
	}

	res, err := m.fn(ctx, vars)
	if err != nil {
		if applied {
			m.store.restore(m.opts.Target, snap, had)
		}
		return res, err
	}

	for _, k := range m.opts.Invalidate {
		m.store.Invalidate(k)
	}
	return res, nil
}

// applyOptimistic replaces the entry for key with update(current) and
// returns the previous entry. With requireCached and no entry it writes
// nothing and reports applied false.
func (s *Store) applyOptimistic(key Key, update func(current any) any, opts Options, requireCached bool) (prev Entry, had, applied bool, err error) {
	id, parts, err := key.serialize()
	if err != nil {
		return Entry{}, false, false, err
	}
	opts = opts.normalized()

	s.mu.Lock()
	sl := s.slotLocked(id, key, parts)
	if requireCached && sl.entry == nil {
		s.mu.Unlock()
		return Entry{}, false, false, nil
	}
	sl.gen = s.nextGenLocked()

	var current any
	next := Entry{Key: key, FetchedAt: s.now(), StaleAfter: opts.StaleTime, ExpiresAfter: opts.ExpireTime}
	if sl.entry != nil {
		prev, had = *sl.entry, true
		current = prev.Data
		next.FetchedAt = prev.FetchedAt
		next.StaleAfter = prev.StaleAfter
		next.ExpiresAfter = prev.ExpiresAfter
	}
	next.Data = update(current)
	sl.entry = &next
	subs := listeners(sl)
	s.mu.Unlock()

	notify(subs, Event{Key: key, Entry: next})
	return prev, had, true, nil
}

// restore puts back an entry captured by applyOptimistic.
func (s *Store) restore(key Key, prev Entry, had bool) {
	id, parts, err := key.serialize()
	if err != nil {
		return
	}

	s.mu.Lock()
	sl := s.slotLocked(id, key, parts)
	sl.gen = s.nextGenLocked()
	ev := Event{Key: key, Entry: prev, Removed: !had}
	if had {
		e := prev
		sl.entry = &e
	} else {
		if sl.entry != nil {
			ev.Entry = *sl.entry
		}
		sl.entry = nil
	}
	subs := listeners(sl)
	s.mu.Unlock()

	s.log.Debugf("Rolled back optimistic update of %s", key)
	notify(subs, ev)
}
