package api

import "net/url"

// API Endpoints
const (
	EndpointHealth = "/health"

	// Course catalog
	EndpointCourses = "/courses"

	// User endpoints
	EndpointUserProfile  = "/user/profile"
	EndpointUserSync     = "/user/sync"
	EndpointUserActivity = "/user/activity"
	EndpointUserStats    = "/user/stats"

	// Learning progress
	EndpointProgress = "/progress"
	EndpointAttempts = "/attempts"
)

// CoursePath returns the endpoint of a single course.
func CoursePath(courseID string) string {
	return EndpointCourses + "/" + url.PathEscape(courseID)
}

// LessonPath returns the endpoint of a lesson within a course.
func LessonPath(courseID, lessonID string) string {
	return CoursePath(courseID) + "/lessons/" + url.PathEscape(lessonID)
}

// WithQueryString appends encoded query parameters to an endpoint.
func WithQueryString(endpoint string, params url.Values) string {
	if len(params) == 0 {
		return endpoint
	}
	return endpoint + "?" + params.Encode()
}
