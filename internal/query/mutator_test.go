package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	Name string
	Bio  string
}

func renameOptimistically(current any, name string) any {
	p, _ := current.(profile)
	p.Name = name
	return p
}

func TestMutator_RollbackRestoresExactEntry(t *testing.T) {
	clock := newFakeClock()
	s := NewStore(WithClock(clock.Now))
	require.NoError(t, s.SetData(K("profile"), profile{Name: "Ada", Bio: "math"}, profileOpts))
	before, _ := s.Snapshot(K("profile"))
	clock.Advance(time.Second)

	boom := errors.New("server said no")
	var seen profile
	m := NewMutator(s, func(ctx context.Context, name string) (profile, error) {
		e, _ := s.Snapshot(K("profile"))
		seen = e.Data.(profile)
		return profile{}, boom
	}, MutationOptions[string]{
		Target:     K("profile"),
		Optimistic: renameOptimistically,
		Invalidate: []Key{K("profile")},
	})

	_, err := m.Mutate(context.Background(), "Grace")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "Grace", seen.Name)

	after, ok := s.Snapshot(K("profile"))
	require.True(t, ok)
	assert.Equal(t, before, after)
	assert.False(t, m.IsPending())
}

func TestMutator_RollbackWithoutPriorEntry(t *testing.T) {
	s := NewStore()
	m := NewMutator(s, func(ctx context.Context, name string) (profile, error) {
		return profile{}, errors.New("fail")
	}, MutationOptions[string]{Target: K("profile"), Optimistic: renameOptimistically, Cache: profileOpts})

	_, err := m.Mutate(context.Background(), "Grace")
	require.Error(t, err)
	_, ok := s.Snapshot(K("profile"))
	assert.False(t, ok)
}

func TestMutator_SuccessInvalidates(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.SetData(K("profile"), profile{Name: "Ada"}, profileOpts))
	require.NoError(t, s.SetData(K("stats"), 3, profileOpts))
	require.NoError(t, s.SetData(K("courses"), "kept", profileOpts))

	var pendingDuring bool
	var m *Mutator[string, profile]
	m = NewMutator(s, func(ctx context.Context, name string) (profile, error) {
		pendingDuring = m.IsPending()
		return profile{Name: name}, nil
	}, MutationOptions[string]{
		Target:     K("profile"),
		Optimistic: renameOptimistically,
		Invalidate: []Key{K("profile"), K("stats")},
	})

	res, err := m.Mutate(context.Background(), "Grace")
	require.NoError(t, err)
	assert.Equal(t, "Grace", res.Name)
	assert.True(t, pendingDuring)
	assert.False(t, m.IsPending())

	_, ok := s.Snapshot(K("profile"))
	assert.False(t, ok)
	_, ok = s.Snapshot(K("stats"))
	assert.False(t, ok)
	_, ok = s.Snapshot(K("courses"))
	assert.True(t, ok)
}

func TestMutator_OptimisticWriteDiscardsInFlightFetch(t *testing.T) {
	s := NewStore()
	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_, _ = s.Fetch(context.Background(), K("profile"), func(context.Context) (any, error) {
			close(started)
			<-release
			return profile{Name: "stale"}, nil
		}, profileOpts)
	}()
	<-started

	mutationDone := make(chan struct{})
	m := NewMutator(s, func(ctx context.Context, name string) (profile, error) {
		close(release)
		<-mutationDone
		return profile{Name: name}, nil
	}, MutationOptions[string]{Target: K("profile"), Optimistic: renameOptimistically, Cache: profileOpts})

	go func() {
		time.Sleep(30 * time.Millisecond)
		close(mutationDone)
	}()
	_, err := m.Mutate(context.Background(), "Grace")
	require.NoError(t, err)

	e, ok := s.Snapshot(K("profile"))
	require.True(t, ok)
	assert.Equal(t, "Grace", e.Data.(profile).Name)
}

func TestMutator_RequireCachedSkipsEmptyTarget(t *testing.T) {
	s := NewStore()
	var seen []Event
	unsub, err := s.Subscribe(K("profile"), func(ev Event) { seen = append(seen, ev) })
	require.NoError(t, err)
	defer unsub()

	m := NewMutator(s, func(ctx context.Context, name string) (profile, error) {
		return profile{Name: name}, nil
	}, MutationOptions[string]{
		Target:        K("profile"),
		Optimistic:    renameOptimistically,
		RequireCached: true,
		Cache:         profileOpts,
	})

	_, err = m.Mutate(context.Background(), "Grace")
	require.NoError(t, err)
	_, ok := s.Snapshot(K("profile"))
	assert.False(t, ok)
	assert.Empty(t, seen)

	require.NoError(t, s.SetData(K("profile"), profile{Name: "Ada", Bio: "math"}, profileOpts))
	_, err = m.Mutate(context.Background(), "Grace")
	require.NoError(t, err)
	e, ok := s.Snapshot(K("profile"))
	require.True(t, ok)
	assert.Equal(t, profile{Name: "Grace", Bio: "math"}, e.Data)
}
