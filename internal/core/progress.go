package core

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/archnets/learn-miniapp/internal/api"
)

type ProgressService struct {
	api *api.Client
}

func NewProgressService(client *api.Client) *ProgressService {
	return &ProgressService{api: client}
}

// GetProgress returns progress for every course the learner started.
func (s *ProgressService) GetProgress(ctx context.Context) ([]Progress, error) {
	return api.Into[[]Progress](s.api.Get(ctx, api.EndpointProgress))
}

func (s *ProgressService) UpdateProgress(ctx context.Context, update ProgressUpdate) (Progress, error) {
	if update.CourseID == "" || update.LessonID == "" {
		return Progress{}, fmt.Errorf("update progress: %w: course and lesson ids are required", ErrInvalidArgument)
	}
	return api.Into[Progress](s.api.Put(ctx, api.EndpointProgress, update))
}

// SubmitAttempt records an attempt. The request always carries an
// idempotency key so retried submissions are stored once.
func (s *ProgressService) SubmitAttempt(ctx context.Context, req AttemptRequest) (Attempt, error) {
	if req.LessonID == "" {
		return Attempt{}, fmt.Errorf("submit attempt: %w: empty lesson id", ErrInvalidArgument)
	}
	key := req.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}
	return api.Into[Attempt](s.api.Post(ctx, api.EndpointAttempts, req, api.WithIdempotencyKey(key)))
}

// ListAttempts returns past attempts, optionally for one lesson.
func (s *ProgressService) ListAttempts(ctx context.Context, lessonID string) ([]Attempt, error) {
	params := url.Values{}
	if lessonID != "" {
		params.Set("lessonId", lessonID)
	}
	return api.Into[[]Attempt](s.api.Get(ctx, api.WithQueryString(api.EndpointAttempts, params)))
}
