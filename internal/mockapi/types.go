package mockapi

import "time"

// Wire types mirror the JSON the real backend serves. They are declared
// here so the fake stays independent of the client packages it tests.

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

type profilePatch struct {
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	Username     *string `json:"username"`
	LanguageCode *string `json:"languageCode"`
	Bio          *string `json:"bio"`
}

type syncRequest struct {
	TelegramID   int64  `json:"telegramId"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Username     string `json:"username"`
	LanguageCode string `json:"languageCode"`
	PhotoURL     string `json:"photoUrl"`
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

type Lesson struct {
	ID              string `json:"id"`
	CourseID        string `json:"courseId"`
	Title           string `json:"title"`
	Kind            string `json:"kind"`
	Content         string `json:"content,omitempty"`
	Order           int    `json:"order"`
	DurationMinutes int    `json:"durationMinutes"`
}

type Progress struct {
	CourseID           string    `json:"courseId"`
	CompletedLessonIDs []string  `json:"completedLessonIds"`
	CurrentLessonID    string    `json:"currentLessonId,omitempty"`
	Percent            float64   `json:"percent"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type progressUpdate struct {
	CourseID         string `json:"courseId"`
	LessonID         string `json:"lessonId"`
	Completed        bool   `json:"completed"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
}

type attemptRequest struct {
	LessonID string `json:"lessonId"`
	Kind     string `json:"kind"`
	Answers  []struct {
		QuestionID string `json:"questionId"`
		Answer     string `json:"answer"`
	} `json:"answers"`
	DurationSeconds int `json:"durationSeconds"`
}

type Attempt struct {
	ID        string    `json:"id"`
	LessonID  string    `json:"lessonId"`
	Kind      string    `json:"kind"`
	Score     float64   `json:"score"`
	Passed    bool      `json:"passed"`
	CreatedAt time.Time `json:"createdAt"`
}

type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"requestId,omitempty"`
}
