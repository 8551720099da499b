package core

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/archnets/learn-miniapp/internal/api"
)

type CourseService struct {
	api *api.Client
}

func NewCourseService(client *api.Client) *CourseService {
	return &CourseService{api: client}
}

func (s *CourseService) ListCourses(ctx context.Context, filter CourseFilter) ([]Course, error) {
	return api.Into[[]Course](s.api.Get(ctx, api.WithQueryString(api.EndpointCourses, filter.Values())))
}

func (s *CourseService) GetCourse(ctx context.Context, courseID string) (Course, error) {
	if strings.TrimSpace(courseID) == "" {
		return Course{}, fmt.Errorf("get course: %w: empty course id", ErrInvalidArgument)
	}
	return api.Into[Course](s.api.Get(ctx, api.CoursePath(courseID)))
}

func (s *CourseService) GetLesson(ctx context.Context, courseID, lessonID string) (Lesson, error) {
	if strings.TrimSpace(courseID) == "" || strings.TrimSpace(lessonID) == "" {
		return Lesson{}, fmt.Errorf("get lesson: %w: empty course or lesson id", ErrInvalidArgument)
	}
	return api.Into[Lesson](s.api.Get(ctx, api.LessonPath(courseID, lessonID)))
}

// Values encodes the filter as query parameters.
func (f CourseFilter) Values() url.Values {
	params := url.Values{}
	if f.Difficulty != "" {
		params.Set("difficulty", f.Difficulty)
	}
	if f.Tag != "" {
		params.Set("tag", f.Tag)
	}
	if f.Search != "" {
		params.Set("q", f.Search)
	}
	return params
}
