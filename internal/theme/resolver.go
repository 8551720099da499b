package theme

import (
	"context"
	"errors"
	"sync"

	"github.com/archnets/learn-miniapp/internal/logger"
	"github.com/archnets/learn-miniapp/internal/storage"
)

// StorageKey is where the preference is persisted.
const StorageKey = "theme"

// Resolver owns the theme preference. While the preference is system it
// follows the SchemeSource; otherwise it is not subscribed.
type Resolver struct {
	mu       sync.Mutex
	store    storage.Store
	source   SchemeSource
	applier  Applier
	key      string
	log      logger.Scoped
	pref     Preference
	resolved Resolved
	applied  bool
	unsub    func()
	closed   bool
}

type ResolverOption func(*Resolver)

// WithStorageKey persists under key instead of StorageKey.
func WithStorageKey(key string) ResolverOption {
	return func(r *Resolver) { r.key = key }
}

func WithLogger(l logger.Scoped) ResolverOption {
	return func(r *Resolver) { r.log = l }
}

// NewResolver loads the stored preference and applies the resulting
// theme. Storage failures fall back to system. applier may be nil.
func NewResolver(ctx context.Context, store storage.Store, source SchemeSource, applier Applier, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:   store,
		source:  source,
		applier: applier,
		key:     StorageKey,
		log:     logger.Named("theme"),
		pref:    PreferenceSystem,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.pref = r.load(ctx)

	r.mu.Lock()
	r.transitionLocked(r.pref)
	r.mu.Unlock()
	return r
}

func (r *Resolver) load(ctx context.Context) Preference {
	raw, err := r.store.Get(ctx, r.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.log.Warnf("Reading theme preference: %v", err)
		}
		return PreferenceSystem
	}
	pref, err := ParsePreference(raw)
	if err != nil {
		r.log.Warnf("Ignoring stored theme preference: %v", err)
		return PreferenceSystem
	}
	return pref
}

// SetTheme persists pref and re-resolves. Only an invalid preference is
// an error; a storage failure is logged and the new theme still applies.
func (r *Resolver) SetTheme(ctx context.Context, pref Preference) error {
	if _, err := ParsePreference(string(pref)); err != nil {
		return err
	}
	if err := r.store.Set(ctx, r.key, string(pref)); err != nil {
		r.log.Warnf("Saving theme preference: %v", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.transitionLocked(pref)
	return nil
}

func (r *Resolver) Preference() Preference {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pref
}

func (r *Resolver) Resolved() Resolved {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolved
}

// Close drops the scheme subscription.
func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.unsubscribeLocked()
}

// transitionLocked moves to pref, managing the subscription. Caller
// holds r.mu.
func (r *Resolver) transitionLocked(pref Preference) {
	r.pref = pref
	if pref == PreferenceSystem {
		if r.unsub == nil && r.source != nil {
			r.unsub = r.source.Subscribe(r.onScheme)
		}
	} else {
		r.unsubscribeLocked()
	}
	r.applyLocked(Resolve(pref, r.scheme()))
}

func (r *Resolver) onScheme(s Resolved) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.pref != PreferenceSystem {
		return
	}
	r.applyLocked(Resolve(r.pref, s))
}

// applyLocked renders next if it differs from what is rendered.
func (r *Resolver) applyLocked(next Resolved) {
	if r.applied && r.resolved == next {
		return
	}
	r.resolved = next
	r.applied = true
	if r.applier == nil {
		return
	}
	if err := r.applier.Apply(next); err != nil {
		r.log.Warnf("Applying theme %s: %v", next, err)
	}
}

func (r *Resolver) unsubscribeLocked() {
	if r.unsub != nil {
		r.unsub()
		r.unsub = nil
	}
}

func (r *Resolver) scheme() Resolved {
	if r.source == nil {
		return Light
	}
	return r.source.Current()
}
