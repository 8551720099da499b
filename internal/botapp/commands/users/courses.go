package users

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-telegram/bot/models"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/archnets/learn-miniapp/internal/botapp/commands"
	"github.com/archnets/learn-miniapp/internal/core"
	"github.com/archnets/learn-miniapp/internal/i18n"
	"github.com/archnets/learn-miniapp/internal/logger"
)

// HandleCourses lists the catalog, optionally narrowed by difficulty.
func HandleCourses(ctx context.Context, s commands.Sender, u *models.Update, deps commands.Deps) {
	if u.Message == nil {
		return
	}
	loc, _ := localizer(u)

	filter := core.CourseFilter{Difficulty: commandArg(u.Message.Text)}
	courses, err := deps.Queries.Courses(ctx, filter)
	if err != nil {
		SendError(ctx, s, u, err)
		return
	}
	reply(ctx, s, u, formatCourseList(loc, courses), nil)
}

// HandleCourse shows one course and warms its lessons for the app.
func HandleCourse(ctx context.Context, s commands.Sender, u *models.Update, deps commands.Deps) {
	if u.Message == nil {
		return
	}
	loc, _ := localizer(u)

	id := commandArg(u.Message.Text)
	if id == "" {
		reply(ctx, s, u, i18n.T(loc, "course_usage"), nil)
		return
	}

	course, err := deps.Queries.Course(ctx, id)
	if err != nil {
		SendError(ctx, s, u, err)
		return
	}
	reply(ctx, s, u, formatCourse(loc, course), webAppMarkup(loc, deps.WebAppURL))

	if err := deps.Queries.PrefetchCourse(ctx, id); err != nil {
		logger.ForUpdate(u).Debugf("Prefetch course %s: %v", id, err)
	}
}

func formatCourseList(loc *goi18n.Localizer, courses []core.Course) string {
	if len(courses) == 0 {
		return i18n.T(loc, "courses_empty")
	}
	var sb strings.Builder
	sb.WriteString(i18n.T(loc, "courses_title"))
	for _, c := range courses {
		sb.WriteString("\n• ")
		sb.WriteString(c.Title)
		sb.WriteString(" /course ")
		sb.WriteString(c.ID)
	}
	return sb.String()
}

func formatCourse(loc *goi18n.Localizer, c core.Course) string {
	return i18n.TWithData(loc, "course_details", map[string]any{
		"Title":       c.Title,
		"Difficulty":  c.Difficulty,
		"Hours":       strconv.FormatFloat(c.EstimatedHours, 'f', -1, 64),
		"Description": c.Description,
		"Lessons":     len(c.LessonIDs),
	})
}
