package core

import "time"

// Profile is the learner's profile as stored by the backend.
type Profile struct {
	ID           string    `json:"id"`
	TelegramID   int64     `json:"telegramId"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName,omitempty"`
	Username     string    `json:"username,omitempty"`
	LanguageCode string    `json:"languageCode,omitempty"`
	PhotoURL     string    `json:"photoUrl,omitempty"`
	IsPremium    bool      `json:"isPremium"`
	Bio          string    `json:"bio,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProfileUpdate is a partial profile change. Nil fields are left untouched.
type ProfileUpdate struct {
	FirstName    *string `json:"firstName,omitempty"`
	LastName     *string `json:"lastName,omitempty"`
	Username     *string `json:"username,omitempty"`
	LanguageCode *string `json:"languageCode,omitempty"`
	Bio          *string `json:"bio,omitempty"`
}

// Apply returns p with the non-nil fields of u applied.
func (u ProfileUpdate) Apply(p Profile) Profile {
	if u.FirstName != nil {
		p.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		p.LastName = *u.LastName
	}
	if u.Username != nil {
		p.Username = *u.Username
	}
	if u.LanguageCode != nil {
		p.LanguageCode = *u.LanguageCode
	}
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	return p
}

// HostSync carries the identity fields reported by the host client.
type HostSync struct {
	TelegramID   int64  `json:"telegramId"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"languageCode,omitempty"`
	PhotoURL     string `json:"photoUrl,omitempty"`
	IsPremium    bool   `json:"isPremium"`
}

type Activity struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	CourseID    string    `json:"courseId,omitempty"`
	LessonID    string    `json:"lessonId,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Stats struct {
	CoursesStarted   int     `json:"coursesStarted"`
	CoursesCompleted int     `json:"coursesCompleted"`
	LessonsCompleted int     `json:"lessonsCompleted"`
	Attempts         int     `json:"attempts"`
	AverageScore     float64 `json:"averageScore"`
	StreakDays       int     `json:"streakDays"`
	MinutesLearned   int     `json:"minutesLearned"`
}

type Course struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	LessonIDs      []string `json:"lessonIds"`
	Difficulty     string   `json:"difficulty"`
	EstimatedHours float64  `json:"estimatedHours"`
	Tags           []string `json:"tags"`
}

// CourseFilter narrows the catalog. Zero fields match everything.
type CourseFilter struct {
	Difficulty string
	Tag        string
	Search     string
}

// Lesson kinds.
const (
	LessonReading   = "reading"
	LessonQuiz      = "quiz"
	LessonInterview = "interview"
)

type Lesson struct {
	ID              string `json:"id"`
	CourseID        string `json:"courseId"`
	Title           string `json:"title"`
	Kind            string `json:"kind"`
	Content         string `json:"content,omitempty"`
	Order           int    `json:"order"`
	DurationMinutes int    `json:"durationMinutes"`
}

// Progress is the learner's state within one course.
type Progress struct {
	CourseID           string    `json:"courseId"`
	CompletedLessonIDs []string  `json:"completedLessonIds"`
	CurrentLessonID    string    `json:"currentLessonId,omitempty"`
	Percent            float64   `json:"percent"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type ProgressUpdate struct {
	CourseID         string `json:"courseId"`
	LessonID         string `json:"lessonId"`
	Completed        bool   `json:"completed"`
	TimeSpentSeconds int    `json:"timeSpentSeconds,omitempty"`
}

type Answer struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

// AttemptRequest records one quiz or mock interview attempt.
type AttemptRequest struct {
	LessonID        string   `json:"lessonId"`
	Kind            string   `json:"kind"`
	Answers         []Answer `json:"answers"`
	DurationSeconds int      `json:"durationSeconds,omitempty"`
	// IdempotencyKey is generated when empty.
	IdempotencyKey string `json:"-"`
}

type Attempt struct {
	ID        string    `json:"id"`
	LessonID  string    `json:"lessonId"`
	Kind      string    `json:"kind"`
	Score     float64   `json:"score"`
	Passed    bool      `json:"passed"`
	CreatedAt time.Time `json:"createdAt"`
}

type Health struct {
	Status  string    `json:"status"`
	Version string    `json:"version,omitempty"`
	Time    time.Time `json:"time"`
}
