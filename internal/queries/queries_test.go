package queries

import (
	"context"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archnets/learn-miniapp/internal/api"
	"github.com/archnets/learn-miniapp/internal/core"
	"github.com/archnets/learn-miniapp/internal/host"
	"github.com/archnets/learn-miniapp/internal/mockapi"
	"github.com/archnets/learn-miniapp/internal/query"
)

type hapticRecorder struct {
	mu     sync.Mutex
	styles []host.HapticStyle
}

func (r *hapticRecorder) record(s host.HapticStyle) {
	r.mu.Lock()
	r.styles = append(r.styles, s)
	r.mu.Unlock()
}

func (r *hapticRecorder) all() []host.HapticStyle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]host.HapticStyle(nil), r.styles...)
}

func newTestClient(t *testing.T) (*Client, *mockapi.Server, *hapticRecorder) {
	t.Helper()
	mock := mockapi.New()
	srv := httptest.NewServer(mock.Handler())
	t.Cleanup(srv.Close)

	values := url.Values{}
	values.Set("user", `{"id":7,"first_name":"Lin"}`)
	values.Set("auth_date", "1700000000")
	values.Set("hash", "unchecked")

	haptics := &hapticRecorder{}
	bridge := host.Available(host.User{ID: 7, FirstName: "Lin"}, values.Encode(), haptics.record)
	client := api.NewClient(srv.URL,
		api.WithHTTPClient(srv.Client()),
		api.WithHost(bridge),
		api.WithRetryDelay(time.Millisecond),
	)
	mock.SeedProfile(mockapi.Profile{ID: "p7", TelegramID: 7, FirstName: "Lin", Bio: "hello"})

	return New(query.NewStore(), core.NewServices(client, bridge), bridge), mock, haptics
}

func TestCourseIsCached(t *testing.T) {
	c, mock, _ := newTestClient(t)
	ctx := context.Background()

	for range 3 {
		course, err := c.Course(ctx, "algebra-1")
		require.NoError(t, err)
		assert.Len(t, course.LessonIDs, 2)
	}
	assert.Equal(t, 1, mock.Hits("/courses/algebra-1"))

	e, ok := c.Store().Snapshot(CourseKey("algebra-1"))
	require.True(t, ok)
	assert.Equal(t, CatalogPolicy.StaleTime, e.StaleAfter)
	assert.Equal(t, CatalogPolicy.ExpireTime, e.ExpiresAfter)
}

func TestPrefetchCourse(t *testing.T) {
	c, mock, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.PrefetchCourse(ctx, "go-interview"))
	l, err := c.Lesson(ctx, "go-interview", "mock-1")
	require.NoError(t, err)
	assert.Equal(t, core.LessonInterview, l.Kind)
	assert.Equal(t, 1, mock.Hits("/courses/go-interview/lessons/mock-1"))
}

func TestUpdateProfile_RollbackOnFailure(t *testing.T) {
	c, _, haptics := newTestClient(t)
	ctx := context.Background()

	_, err := c.Profile(ctx)
	require.NoError(t, err)
	before, ok := c.Store().Snapshot(ProfileKey())
	require.True(t, ok)

	empty := ""
	_, err = c.UpdateProfile(ctx, core.ProfileUpdate{FirstName: &empty})
	require.Error(t, err)

	after, ok := c.Store().Snapshot(ProfileKey())
	require.True(t, ok)
	assert.Equal(t, before, after)
	assert.Equal(t, []host.HapticStyle{host.HapticError}, haptics.all())
	assert.False(t, c.UpdatingProfile())
}

func TestUpdateProfile_Success(t *testing.T) {
	c, mock, haptics := newTestClient(t)
	ctx := context.Background()

	_, err := c.Profile(ctx)
	require.NoError(t, err)

	var optimistic []string
	unsub, err := c.Store().Subscribe(ProfileKey(), func(ev query.Event) {
		if p, ok := ev.Entry.Data.(core.Profile); ok && !ev.Removed {
			optimistic = append(optimistic, p.Bio)
		}
	})
	require.NoError(t, err)
	defer unsub()

	bio := "learning Go"
	p, err := c.UpdateProfile(ctx, core.ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, p.Bio)
	assert.Equal(t, []string{bio}, optimistic)
	assert.Equal(t, []host.HapticStyle{host.HapticSuccess}, haptics.all())

	// The profile was invalidated, so the next read goes to the server.
	_, ok := c.Store().Snapshot(ProfileKey())
	assert.False(t, ok)
	_, err = c.Profile(ctx)
	require.NoError(t, err)
	// get, patch, get
	assert.Equal(t, 3, mock.Hits(api.EndpointUserProfile))
}

func TestUpdateProfile_NothingCached(t *testing.T) {
	c, mock, _ := newTestClient(t)
	ctx := context.Background()

	var events []query.Event
	unsub, err := c.Store().Subscribe(ProfileKey(), func(ev query.Event) { events = append(events, ev) })
	require.NoError(t, err)
	defer unsub()

	bio := "learning Go"
	_, err = c.UpdateProfile(ctx, core.ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Empty(t, events)

	p, err := c.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p7", p.ID)
	assert.Equal(t, "Lin", p.FirstName)
	assert.Equal(t, bio, p.Bio)
	// patch, get
	assert.Equal(t, 2, mock.Hits(api.EndpointUserProfile))
}

func TestUpdateProgress_Optimistic(t *testing.T) {
	c, _, _ := newTestClient(t)
	ctx := context.Background()

	list, err := c.Progress(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	var seen [][]core.Progress
	unsub, err := c.Store().Subscribe(ProgressKey(), func(ev query.Event) {
		if !ev.Removed {
			seen = append(seen, ev.Entry.Data.([]core.Progress))
		}
	})
	require.NoError(t, err)
	defer unsub()

	p, err := c.UpdateProgress(ctx, core.ProgressUpdate{CourseID: "algebra-1", LessonID: "l1", Completed: true})
	require.NoError(t, err)
	assert.Equal(t, 50.0, p.Percent)

	require.Len(t, seen, 1)
	require.Len(t, seen[0], 1)
	assert.Equal(t, []string{"l1"}, seen[0][0].CompletedLessonIDs)

	list, err = c.Progress(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 50.0, list[0].Percent)
}

func TestOptimisticProgressDoesNotAlias(t *testing.T) {
	current := []core.Progress{{CourseID: "algebra-1", CompletedLessonIDs: []string{"l1"}}}
	next := optimisticProgress(current, core.ProgressUpdate{CourseID: "algebra-1", LessonID: "l2", Completed: true}).([]core.Progress)

	assert.Equal(t, []string{"l1", "l2"}, next[0].CompletedLessonIDs)
	assert.Equal(t, []string{"l1"}, current[0].CompletedLessonIDs)
}

func TestSubmitAttemptInvalidatesAttempts(t *testing.T) {
	c, mock, _ := newTestClient(t)
	ctx := context.Background()

	list, err := c.Attempts(ctx, "l2")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = c.SubmitAttempt(ctx, core.AttemptRequest{LessonID: "l2", Kind: core.LessonQuiz})
	require.NoError(t, err)

	list, err = c.Attempts(ctx, "l2")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 3, mock.Hits(api.EndpointAttempts))
}

func TestObserver(t *testing.T) {
	c, _, _ := newTestClient(t)
	ctx := context.Background()

	var states []State[core.Profile]
	obs, err := c.ObserveProfile(func(s State[core.Profile]) { states = append(states, s) })
	require.NoError(t, err)
	defer obs.Close()

	st := obs.Load(ctx)
	require.NoError(t, st.Err)
	assert.True(t, st.HasData)
	assert.Equal(t, "Lin", st.Data.FirstName)
	require.NotEmpty(t, states)
	assert.True(t, states[0].IsLoading)
	assert.False(t, st.IsLoading)

	require.NoError(t, c.Store().SetData(ProfileKey(), core.Profile{FirstName: "Pushed"}, ProfilePolicy))
	assert.Equal(t, "Pushed", obs.State().Data.FirstName)
}

func TestObserver_Error(t *testing.T) {
	c, mock, _ := newTestClient(t)
	mock.FailNext(10, 500)

	obs, err := c.ObserveProgress(nil)
	require.NoError(t, err)
	defer obs.Close()

	st := obs.Load(context.Background())
	assert.Error(t, st.Err)
	assert.False(t, st.HasData)
	assert.False(t, st.IsLoading)
}
