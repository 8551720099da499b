package mockapi

// DefaultCourses is the catalog a new Server starts with.
func DefaultCourses() []Course {
	return []Course{
		{
			ID:             "algebra-1",
			Title:          "Algebra I",
			Description:    "Equations, inequalities and functions.",
			LessonIDs:      []string{"l1", "l2"},
			Difficulty:     "beginner",
			EstimatedHours: 3,
			Tags:           []string{"math"},
		},
		{
			ID:             "go-interview",
			Title:          "Go Interview Prep",
			Description:    "Concurrency, interfaces and the runtime, with mock interviews.",
			LessonIDs:      []string{"goroutines", "interfaces", "mock-1"},
			Difficulty:     "intermediate",
			EstimatedHours: 5,
			Tags:           []string{"go", "interview"},
		},
		{
			ID:             "system-design",
			Title:          "System Design Basics",
			Description:    "Caching, queues and consistency trade-offs.",
			LessonIDs:      []string{"caching", "queues"},
			Difficulty:     "advanced",
			EstimatedHours: 8,
			Tags:           []string{"architecture", "interview"},
		},
	}
}

// DefaultLessons is the lesson set matching DefaultCourses.
func DefaultLessons() []Lesson {
	return []Lesson{
		{ID: "l1", CourseID: "algebra-1", Title: "Linear equations", Kind: "reading", Order: 1, DurationMinutes: 20},
		{ID: "l2", CourseID: "algebra-1", Title: "Linear equations quiz", Kind: "quiz", Order: 2, DurationMinutes: 10},
		{ID: "goroutines", CourseID: "go-interview", Title: "Goroutines and channels", Kind: "reading", Order: 1, DurationMinutes: 30},
		{ID: "interfaces", CourseID: "go-interview", Title: "Interfaces quiz", Kind: "quiz", Order: 2, DurationMinutes: 15},
		{ID: "mock-1", CourseID: "go-interview", Title: "Mock interview", Kind: "interview", Order: 3, DurationMinutes: 45},
		{ID: "caching", CourseID: "system-design", Title: "Caching strategies", Kind: "reading", Order: 1, DurationMinutes: 40},
		{ID: "queues", CourseID: "system-design", Title: "Message queues", Kind: "reading", Order: 2, DurationMinutes: 40},
	}
}
