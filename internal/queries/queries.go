// Package queries binds the domain services to the query store with
// per-resource cache policies.
package queries

import (
	"context"
	"slices"

	"github.com/archnets/learn-miniapp/internal/core"
	"github.com/archnets/learn-miniapp/internal/host"
	"github.com/archnets/learn-miniapp/internal/query"
)

// Client serves cached reads and cache-aware writes.
type Client struct {
	store *query.Store
	svc   *core.Services
	host  host.Bridge

	updateProfile  *query.Mutator[core.ProfileUpdate, core.Profile]
	updateProgress *query.Mutator[core.ProgressUpdate, core.Progress]
	submitAttempt  *query.Mutator[core.AttemptRequest, core.Attempt]
}

func New(store *query.Store, svc *core.Services, bridge host.Bridge) *Client {
	if bridge == nil {
		bridge = host.Unavailable()
	}
	c := &Client{store: store, svc: svc, host: bridge}

	c.updateProfile = query.NewMutator(store, svc.Users.UpdateProfile, query.MutationOptions[core.ProfileUpdate]{
		Target: ProfileKey(),
		Optimistic: func(current any, u core.ProfileUpdate) any {
			p, _ := current.(core.Profile)
			return u.Apply(p)
		},
		RequireCached: true,
		Cache:         ProfilePolicy,
		Invalidate:    []query.Key{ProfileKey(), StatsKey(), query.K("user", "activity")},
	})

	c.updateProgress = query.NewMutator(store, svc.Progress.UpdateProgress, query.MutationOptions[core.ProgressUpdate]{
		Target:        ProgressKey(),
		Optimistic:    optimisticProgress,
		RequireCached: true,
		Cache:         ProgressPolicy,
		Invalidate:    []query.Key{ProgressKeys, StatsKey(), query.K("user", "activity")},
	})

	c.submitAttempt = query.NewMutator(store, svc.Progress.SubmitAttempt, query.MutationOptions[core.AttemptRequest]{
		Invalidate: []query.Key{AttemptKeys, StatsKey(), query.K("user", "activity")},
	})

	return c
}

// Store returns the underlying query store.
func (c *Client) Store() *query.Store { return c.store }

func (c *Client) Profile(ctx context.Context) (core.Profile, error) {
	return query.Get(ctx, c.store, ProfileKey(), c.svc.Users.GetProfile, ProfilePolicy)
}

func (c *Client) Stats(ctx context.Context) (core.Stats, error) {
	return query.Get(ctx, c.store, StatsKey(), c.svc.Users.GetStats, ProgressPolicy)
}

func (c *Client) Activity(ctx context.Context, limit, offset int) ([]core.Activity, error) {
	return query.Get(ctx, c.store, ActivityKey(limit, offset), func(ctx context.Context) ([]core.Activity, error) {
		return c.svc.Users.GetActivity(ctx, limit, offset)
	}, ActivityPolicy)
}

func (c *Client) Courses(ctx context.Context, filter core.CourseFilter) ([]core.Course, error) {
	return query.Get(ctx, c.store, CoursesKey(filter), func(ctx context.Context) ([]core.Course, error) {
		return c.svc.Courses.ListCourses(ctx, filter)
	}, CatalogPolicy)
}

func (c *Client) Course(ctx context.Context, courseID string) (core.Course, error) {
	return query.Get(ctx, c.store, CourseKey(courseID), func(ctx context.Context) (core.Course, error) {
		return c.svc.Courses.GetCourse(ctx, courseID)
	}, CatalogPolicy)
}

func (c *Client) Lesson(ctx context.Context, courseID, lessonID string) (core.Lesson, error) {
	return query.Get(ctx, c.store, LessonKey(courseID, lessonID), func(ctx context.Context) (core.Lesson, error) {
		return c.svc.Courses.GetLesson(ctx, courseID, lessonID)
	}, CatalogPolicy)
}

// PrefetchCourse warms the course and its lessons.
func (c *Client) PrefetchCourse(ctx context.Context, courseID string) error {
	course, err := c.Course(ctx, courseID)
	if err != nil {
		return err
	}
	for _, lessonID := range course.LessonIDs {
		err := c.store.Prefetch(ctx, LessonKey(courseID, lessonID), func(ctx context.Context) (any, error) {
			return c.svc.Courses.GetLesson(ctx, courseID, lessonID)
		}, CatalogPolicy)
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) Progress(ctx context.Context) ([]core.Progress, error) {
	return query.Get(ctx, c.store, ProgressKey(), c.svc.Progress.GetProgress, ProgressPolicy)
}

func (c *Client) Attempts(ctx context.Context, lessonID string) ([]core.Attempt, error) {
	return query.Get(ctx, c.store, AttemptsKey(lessonID), func(ctx context.Context) ([]core.Attempt, error) {
		return c.svc.Progress.ListAttempts(ctx, lessonID)
	}, ActivityPolicy)
}

// UpdateProfile applies the update optimistically to the cached profile.
func (c *Client) UpdateProfile(ctx context.Context, update core.ProfileUpdate) (core.Profile, error) {
	p, err := c.updateProfile.Mutate(ctx, update)
	c.feedback(err)
	return p, err
}

func (c *Client) UpdatingProfile() bool { return c.updateProfile.IsPending() }

// UpdateProgress marks the lesson in the cached progress list at once.
func (c *Client) UpdateProgress(ctx context.Context, update core.ProgressUpdate) (core.Progress, error) {
	p, err := c.updateProgress.Mutate(ctx, update)
	c.feedback(err)
	return p, err
}

func (c *Client) UpdatingProgress() bool { return c.updateProgress.IsPending() }

func (c *Client) SubmitAttempt(ctx context.Context, req core.AttemptRequest) (core.Attempt, error) {
	a, err := c.submitAttempt.Mutate(ctx, req)
	c.feedback(err)
	return a, err
}

func (c *Client) SubmittingAttempt() bool { return c.submitAttempt.IsPending() }

func (c *Client) feedback(err error) {
	if err != nil {
		c.host.Haptic(host.HapticError)
		return
	}
	c.host.Haptic(host.HapticSuccess)
}

func optimisticProgress(current any, u core.ProgressUpdate) any {
	list, _ := current.([]core.Progress)
	out := make([]core.Progress, len(list))
	copy(out, list)

	for i, p := range out {
		if p.CourseID != u.CourseID {
			continue
		}
		if u.Completed && !slices.Contains(p.CompletedLessonIDs, u.LessonID) {
			p.CompletedLessonIDs = append(slices.Clone(p.CompletedLessonIDs), u.LessonID)
		}
		out[i] = p
		return out
	}

	p := core.Progress{CourseID: u.CourseID, CompletedLessonIDs: []string{}, CurrentLessonID: u.LessonID}
	if u.Completed {
		p.CompletedLessonIDs = []string{u.LessonID}
		p.CurrentLessonID = ""
	}
	return append(out, p)
}
