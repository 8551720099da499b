package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SchemeSource reports the OS color scheme and its changes.
type SchemeSource interface {
	Current() Resolved
	// Subscribe calls fn on every change until the returned function is
	// called.
	Subscribe(fn func(Resolved)) (unsubscribe func())
}

// SchemeFeed is a SchemeSource fed by the host, e.g. from
// themeChanged events.
type SchemeFeed struct {
	mu      sync.Mutex
	current Resolved
	next    int
	subs    map[int]func(Resolved)
}

func NewSchemeFeed(initial Resolved) *SchemeFeed {
	return &SchemeFeed{current: initial, subs: make(map[int]func(Resolved))}
}

func (f *SchemeFeed) Current() Resolved {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Set publishes a new scheme. Subscribers are only called on change.
func (f *SchemeFeed) Set(s Resolved) {
	f.mu.Lock()
	if f.current == s {
		f.mu.Unlock()
		return
	}
	f.current = s
	subs := make([]func(Resolved), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}

func (f *SchemeFeed) Subscribe(fn func(Resolved)) func() {
	f.mu.Lock()
	f.next++
	id := f.next
	f.subs[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

// Subscribers returns the number of active subscriptions.
func (f *SchemeFeed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Applier renders a resolved theme.
type Applier interface {
	Apply(Resolved) error
}

// ApplierFunc adapts a function to Applier.
type ApplierFunc func(Resolved) error

func (f ApplierFunc) Apply(r Resolved) error { return f(r) }

// MarkerFile writes the resolved theme to a file, for tools that pick
// the theme up from disk.
type MarkerFile string

func (m MarkerFile) Apply(r Resolved) error {
	path := string(m)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("theme marker: %w", err)
	}
	if err := os.WriteFile(path, []byte(r+"\n"), 0o644); err != nil {
		return fmt.Errorf("theme marker: %w", err)
	}
	return nil
}
