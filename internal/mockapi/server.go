// Package mockapi is an in-process fake of the learning backend. It serves
// the same HTTP surface as the real API from in-memory state.
package mockapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/archnets/learn-miniapp/internal/api"
	"github.com/archnets/learn-miniapp/internal/host"
)

type idempotencyKey struct {
	userID int64
	key    string
}

// Server holds the fake backend state. All methods are safe for
// concurrent use.
type Server struct {
	mu sync.Mutex

	courses []Course
	lessons map[string]Lesson // courseID + "/" + lessonID

	profiles map[int64]Profile
	progress map[int64]map[string]Progress
	attempts map[int64][]Attempt
	activity map[int64][]Activity
	seen     map[idempotencyKey]Attempt

	botToken string
	now      func() time.Time

	failures   int
	failStatus int
	hits       map[string]int
}

// Option configures a Server.
type Option func(*Server)

// WithBotToken makes the server verify the init data signature.
func WithBotToken(token string) Option {
	return func(s *Server) { s.botToken = token }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithCatalog replaces the default courses and lessons.
func WithCatalog(courses []Course, lessons []Lesson) Option {
	return func(s *Server) {
		s.courses = courses
		s.lessons = indexLessons(lessons)
	}
}

// New creates a server seeded with the default catalog.
func New(opts ...Option) *Server {
	s := &Server{
		courses:  DefaultCourses(),
		lessons:  indexLessons(DefaultLessons()),
		profiles: make(map[int64]Profile),
		progress: make(map[int64]map[string]Progress),
		attempts: make(map[int64][]Attempt),
		activity: make(map[int64][]Activity),
		seen:     make(map[idempotencyKey]Attempt),
		now:      time.Now,
		hits:     make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func indexLessons(lessons []Lesson) map[string]Lesson {
	m := make(map[string]Lesson, len(lessons))
	for _, l := range lessons {
		m[l.CourseID+"/"+l.ID] = l
	}
	return m
}

// Handler returns the HTTP surface of the fake backend.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.countHits)
	r.Use(s.injectFailures)

	r.Get(api.EndpointHealth, s.handleHealth)
	r.Get(api.EndpointCourses, s.handleListCourses)
	r.Get(api.EndpointCourses+"/{courseID}", s.handleGetCourse)
	r.Get(api.EndpointCourses+"/{courseID}/lessons/{lessonID}", s.handleGetLesson)

	r.Group(func(r chi.Router) {
		r.Use(s.requireUser)

		r.Get(api.EndpointUserProfile, s.handleGetProfile)
		r.Patch(api.EndpointUserProfile, s.handlePatchProfile)
		r.Post(api.EndpointUserSync, s.handleSync)
		r.Get(api.EndpointUserActivity, s.handleActivity)
		r.Get(api.EndpointUserStats, s.handleStats)
		r.Get(api.EndpointProgress, s.handleGetProgress)
		r.Put(api.EndpointProgress, s.handleUpdateProgress)
		r.Post(api.EndpointAttempts, s.handleSubmitAttempt)
		r.Get(api.EndpointAttempts, s.handleListAttempts)
	})

	return r
}

// FailNext makes the next n requests fail with status.
func (s *Server) FailNext(n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = n
	s.failStatus = status
}

// Hits returns how many requests reached path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// SeedProfile stores a profile as if the user had already synced.
func (s *Server) SeedProfile(p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.TelegramID] = p
}

func (s *Server) countHits(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		fail := s.failures > 0
		status := s.failStatus
		if fail {
			s.failures--
		}
		s.mu.Unlock()

		if fail {
			s.writeError(w, r, status, api.CodeInternal, "injected failure", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(api.HeaderInitData)
		if raw == "" {
			s.writeError(w, r, http.StatusUnauthorized, api.CodeUnauthorized, "Missing init data", nil)
			return
		}

		var (
			data host.InitData
			err  error
		)
		if s.botToken != "" {
			data, err = host.ValidateInitData(raw, s.botToken, 24*time.Hour, s.now())
		} else {
			data, err = host.ParseInitData(raw)
		}
		if err != nil || data.User.ID == 0 {
			s.writeError(w, r, http.StatusUnauthorized, api.CodeInvalidInitData, "Invalid init data", nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), data.User)))
	})
}
