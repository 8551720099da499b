// Package api provides the unified HTTP client for the learning backend.
package api

import "net/http"

// Error kinds declared by the backend in the "error" field of error bodies.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeInvalidInitData = "INVALID_INIT_DATA"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeCourseNotFound  = "COURSE_NOT_FOUND"
	CodeLessonNotFound  = "LESSON_NOT_FOUND"
	CodeUserNotFound    = "USER_NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternal        = "INTERNAL_ERROR"
)

// IsSuccess returns true for 2xx statuses.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}

// IsAuthError returns true if err is an authentication or authorization failure.
func IsAuthError(err error) bool {
	apiErr, ok := AsError(err)
	if !ok {
		return false
	}
	switch apiErr.Kind {
	case CodeUnauthorized, CodeInvalidInitData, CodeForbidden:
		return true
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

// IsNotFound returns true if err reports a missing resource.
func IsNotFound(err error) bool {
	apiErr, ok := AsError(err)
	if !ok {
		return false
	}
	switch apiErr.Kind {
	case CodeNotFound, CodeCourseNotFound, CodeLessonNotFound, CodeUserNotFound:
		return true
	}
	return apiErr.StatusCode == http.StatusNotFound
}
