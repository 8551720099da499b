package queries

import (
	"time"

	"github.com/archnets/learn-miniapp/internal/core"
	"github.com/archnets/learn-miniapp/internal/query"
)

// Cache policies by how often the data changes.
var (
	ProfilePolicy  = query.Options{StaleTime: 5 * time.Minute, ExpireTime: 30 * time.Minute}
	CatalogPolicy  = query.Options{StaleTime: 10 * time.Minute, ExpireTime: time.Hour}
	ActivityPolicy = query.Options{StaleTime: 30 * time.Second, ExpireTime: 5 * time.Minute}
	ProgressPolicy = query.Options{StaleTime: time.Minute, ExpireTime: 10 * time.Minute}
)

// Key prefixes.
var (
	UserKeys     = query.K("user")
	CourseKeys   = query.K("courses")
	ProgressKeys = query.K("progress")
	AttemptKeys  = query.K("attempts")
)

func ProfileKey() query.Key { return query.K("user", "profile") }
func StatsKey() query.Key   { return query.K("user", "stats") }

func ActivityKey(limit, offset int) query.Key {
	return query.K("user", "activity", map[string]int{"limit": limit, "offset": offset})
}

func CoursesKey(f core.CourseFilter) query.Key {
	return query.K("courses", "list", map[string]string{"difficulty": f.Difficulty, "tag": f.Tag, "q": f.Search})
}

func CourseKey(courseID string) query.Key { return query.K("courses", "detail", courseID) }

func LessonKey(courseID, lessonID string) query.Key {
	return query.K("courses", "lesson", courseID, lessonID)
}

func ProgressKey() query.Key { return query.K("progress") }

func AttemptsKey(lessonID string) query.Key { return query.K("attempts", lessonID) }
