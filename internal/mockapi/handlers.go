package mockapi

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/archnets/learn-miniapp/internal/api"
)

const (
	defaultActivityLimit = 20
	passingScore         = 70
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": "mock",
		"time":    s.now().UTC(),
	})
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	difficulty := q.Get("difficulty")
	tag := q.Get("tag")
	search := strings.ToLower(q.Get("q"))

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Course, 0, len(s.courses))
	for _, c := range s.courses {
		if difficulty != "" && c.Difficulty != difficulty {
			continue
		}
		if tag != "" && !slices.Contains(c.Tags, tag) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Title+" "+c.Description), search) {
			continue
		}
		out = append(out, c)
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "courseID")

	s.mu.Lock()
	c, ok := s.course(id)
	s.mu.Unlock()

	if !ok {
		s.writeError(w, r, http.StatusNotFound, api.CodeCourseNotFound, "Course not found", map[string]string{"courseId": id})
		return
	}
	writeData(w, http.StatusOK, c)
}

func (s *Server) handleGetLesson(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	lessonID := chi.URLParam(r, "lessonID")

	s.mu.Lock()
	l, ok := s.lessons[courseID+"/"+lessonID]
	s.mu.Unlock()

	if !ok {
		s.writeError(w, r, http.StatusNotFound, api.CodeLessonNotFound, "Lesson not found",
			map[string]string{"courseId": courseID, "lessonId": lessonID})
		return
	}
	writeData(w, http.StatusOK, l)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())

	s.mu.Lock()
	p, ok := s.profiles[u.ID]
	s.mu.Unlock()

	if !ok {
		s.writeError(w, r, http.StatusNotFound, api.CodeUserNotFound, "Profile not found", nil)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (s *Server) handlePatchProfile(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())

	var patch profilePatch
	if err := decodeBody(w, r, &patch); err != nil {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidation, err.Error(), nil)
		return
	}
	if patch.FirstName != nil && strings.TrimSpace(*patch.FirstName) == "" {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidation, "firstName must not be empty",
			map[string]string{"field": "firstName"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[u.ID]
	if !ok {
		s.writeError(w, r, http.StatusNotFound, api.CodeUserNotFound, "Profile not found", nil)
		return
	}
	if patch.FirstName != nil {
		p.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		p.LastName = *patch.LastName
	}
	if patch.Username != nil {
		p.Username = *patch.Username
	}
	if patch.LanguageCode != nil {
		p.LanguageCode = *patch.LanguageCode
	}
	if patch.Bio != nil {
		p.Bio = *patch.Bio
	}
	p.UpdatedAt = s.now().UTC()
	s.profiles[u.ID] = p
	s.recordLocked(u.ID, Activity{Type: "profile_updated"})

	writeData(w, http.StatusOK, p)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())

	var req syncRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidation, err.Error(), nil)
		return
	}
	if req.TelegramID != 0 && req.TelegramID != u.ID {
		s.writeError(w, r, http.StatusForbidden, api.CodeForbidden, "Cannot sync another user", nil)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	p, ok := s.profiles[u.ID]
	status := http.StatusOK
	if !ok {
		p = Profile{ID: uuid.NewString(), TelegramID: u.ID, CreatedAt: now}
		status = http.StatusCreated
	}
	p.FirstName = req.FirstName
	p.LastName = req.LastName
	p.Username = req.Username
	p.LanguageCode = req.LanguageCode
	p.PhotoURL = req.PhotoURL
	p.IsPremium = req.IsPremium
	p.UpdatedAt = now
	s.profiles[u.ID] = p
	s.recordLocked(u.ID, Activity{Type: "profile_synced"})

	writeData(w, status, p)
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	limit := intParam(r, "limit", defaultActivityLimit)
	offset := intParam(r, "offset", 0)
	if limit == 0 {
		limit = defaultActivityLimit
	}

	s.mu.Lock()
	all := s.activity[u.ID]
	// Newest first.
	out := make([]Activity, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		out = append(out, all[i])
	}
	s.mu.Unlock()

	if offset >= len(out) {
		out = []Activity{}
	} else {
		out = out[offset:min(offset+limit, len(out))]
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()

	var st Stats
	days := make(map[string]struct{})
	for courseID, p := range s.progress[u.ID] {
		st.CoursesStarted++
		st.LessonsCompleted += len(p.CompletedLessonIDs)
		if p.Percent >= 100 {
			st.CoursesCompleted++
		}
		for _, lessonID := range p.CompletedLessonIDs {
			st.MinutesLearned += s.lessons[courseID+"/"+lessonID].DurationMinutes
		}
	}
	var total float64
	for _, a := range s.attempts[u.ID] {
		total += a.Score
	}
	st.Attempts = len(s.attempts[u.ID])
	if st.Attempts > 0 {
		st.AverageScore = total / float64(st.Attempts)
	}
	for _, a := range s.activity[u.ID] {
		days[a.CreatedAt.Format("2006-01-02")] = struct{}{}
	}
	st.StreakDays = len(days)

	writeData(w, http.StatusOK, st)
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())

	s.mu.Lock()
	out := make([]Progress, 0, len(s.progress[u.ID]))
	for _, c := range s.courses {
		if p, ok := s.progress[u.ID][c.ID]; ok {
			out = append(out, p)
		}
	}
	s.mu.Unlock()

	writeData(w, http.StatusOK, out)
}

func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())

	var req progressUpdate
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidation, err.Error(), nil)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.course(req.CourseID)
	if !ok {
		s.writeError(w, r, http.StatusNotFound, api.CodeCourseNotFound, "Course not found",
			map[string]string{"courseId": req.CourseID})
		return
	}
	if !slices.Contains(c.LessonIDs, req.LessonID) {
		s.writeError(w, r, http.StatusNotFound, api.CodeLessonNotFound, "Lesson not found",
			map[string]string{"courseId": req.CourseID, "lessonId": req.LessonID})
		return
	}

	byCourse, ok := s.progress[u.ID]
	if !ok {
		byCourse = make(map[string]Progress)
		s.progress[u.ID] = byCourse
	}
	p := byCourse[c.ID]
	p.CourseID = c.ID
	if p.CompletedLessonIDs == nil {
		p.CompletedLessonIDs = []string{}
	}
	if req.Completed && !slices.Contains(p.CompletedLessonIDs, req.LessonID) {
		p.CompletedLessonIDs = append(p.CompletedLessonIDs, req.LessonID)
	}
	p.Percent = 100 * float64(len(p.CompletedLessonIDs)) / float64(len(c.LessonIDs))
	p.CurrentLessonID = ""
	for _, id := range c.LessonIDs {
		if !slices.Contains(p.CompletedLessonIDs, id) {
			p.CurrentLessonID = id
			break
		}
	}
	p.UpdatedAt = s.now().UTC()
	byCourse[c.ID] = p

	kind := "lesson_viewed"
	if req.Completed {
		kind = "lesson_completed"
	}
	s.recordLocked(u.ID, Activity{Type: kind, CourseID: c.ID, LessonID: req.LessonID})

	writeData(w, http.StatusOK, p)
}

func (s *Server) handleSubmitAttempt(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())

	key := r.Header.Get(api.HeaderIdempotencyKey)
	if key == "" {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidation, "Idempotency-Key header is required", nil)
		return
	}

	var req attemptRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidation, err.Error(), nil)
		return
	}
	if req.LessonID == "" {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidation, "lessonId is required",
			map[string]string{"field": "lessonId"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idem := idempotencyKey{userID: u.ID, key: key}
	if prev, ok := s.seen[idem]; ok {
		writeData(w, http.StatusOK, prev)
		return
	}

	answered := 0
	for _, a := range req.Answers {
		if strings.TrimSpace(a.Answer) != "" {
			answered++
		}
	}
	var score float64
	if len(req.Answers) > 0 {
		score = 100 * float64(answered) / float64(len(req.Answers))
	}

	a := Attempt{
		ID:        uuid.NewString(),
		LessonID:  req.LessonID,
		Kind:      req.Kind,
		Score:     score,
		Passed:    score >= passingScore,
		CreatedAt: s.now().UTC(),
	}
	s.attempts[u.ID] = append(s.attempts[u.ID], a)
	s.seen[idem] = a
	s.recordLocked(u.ID, Activity{Type: "attempt_submitted", LessonID: req.LessonID})

	writeData(w, http.StatusCreated, a)
}

func (s *Server) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	lessonID := r.URL.Query().Get("lessonId")

	s.mu.Lock()
	out := make([]Attempt, 0, len(s.attempts[u.ID]))
	for _, a := range s.attempts[u.ID] {
		if lessonID == "" || a.LessonID == lessonID {
			out = append(out, a)
		}
	}
	s.mu.Unlock()

	writeData(w, http.StatusOK, out)
}

// course must be called with s.mu held.
func (s *Server) course(id string) (Course, bool) {
	for _, c := range s.courses {
		if c.ID == id {
			return c, true
		}
	}
	return Course{}, false
}

// recordLocked must be called with s.mu held.
func (s *Server) recordLocked(userID int64, a Activity) {
	a.ID = uuid.NewString()
	a.CreatedAt = s.now().UTC()
	s.activity[userID] = append(s.activity[userID], a)
}

func intParam(r *http.Request, name string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
