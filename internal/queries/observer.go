package queries

import (
	"context"
	"sync"

	"github.com/archnets/learn-miniapp/internal/core"
	"github.com/archnets/learn-miniapp/internal/query"
)

// State is what a view renders for one query.
type State[T any] struct {
	Data      T
	Err       error
	IsLoading bool
	HasData   bool
}

// Observer tracks one key and keeps a State in step with the store.
type Observer[T any] struct {
	store *query.Store
	key   query.Key
	fetch func(context.Context) (T, error)
	opts  query.Options

	mu       sync.Mutex
	state    State[T]
	onChange func(State[T])
	unsub    func()
}

// Observe starts tracking key. onChange, if set, is called after every
// state change.
func Observe[T any](store *query.Store, key query.Key, fetch func(context.Context) (T, error), opts query.Options, onChange func(State[T])) (*Observer[T], error) {
	o := &Observer[T]{store: store, key: key, fetch: fetch, opts: opts, onChange: onChange}
	if e, ok := store.Snapshot(key); ok {
		if data, ok := e.Data.(T); ok {
			o.state = State[T]{Data: data, HasData: true}
		}
	}

	unsub, err := store.Subscribe(key, o.handle)
	if err != nil {
		return nil, err
	}
	o.unsub = unsub
	return o, nil
}

// Load fetches through the store and returns the resulting state.
func (o *Observer[T]) Load(ctx context.Context) State[T] {
	o.update(func(s *State[T]) { s.IsLoading = true })

	data, err := query.Get(ctx, o.store, o.key, o.fetch, o.opts)
	return o.update(func(s *State[T]) {
		s.IsLoading = false
		s.Err = err
		if err == nil {
			s.Data = data
			s.HasData = true
		}
	})
}

// Refetch drops the cached value and loads again.
func (o *Observer[T]) Refetch(ctx context.Context) State[T] {
	o.store.Invalidate(o.key)
	return o.Load(ctx)
}

func (o *Observer[T]) State() State[T] {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Observer[T]) Close() {
	if o.unsub != nil {
		o.unsub()
	}
}

// handle keeps the last data on removal so views don't flash empty.
func (o *Observer[T]) handle(ev query.Event) {
	if ev.Removed {
		return
	}
	data, ok := ev.Entry.Data.(T)
	if !ok {
		return
	}
	o.update(func(s *State[T]) {
		s.Data = data
		s.HasData = true
		s.Err = nil
	})
}

func (o *Observer[T]) update(fn func(*State[T])) State[T] {
	o.mu.Lock()
	fn(&o.state)
	st := o.state
	cb := o.onChange
	o.mu.Unlock()

	if cb != nil {
		cb(st)
	}
	return st
}

// ObserveProfile tracks the profile query.
func (c *Client) ObserveProfile(onChange func(State[core.Profile])) (*Observer[core.Profile], error) {
	return Observe(c.store, ProfileKey(), c.svc.Users.GetProfile, ProfilePolicy, onChange)
}

// ObserveProgress tracks the progress query.
func (c *Client) ObserveProgress(onChange func(State[[]core.Progress])) (*Observer[[]core.Progress], error) {
	return Observe(c.store, ProgressKey(), c.svc.Progress.GetProgress, ProgressPolicy, onChange)
}
