package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/archnets/learn-miniapp/internal/core"
	"github.com/archnets/learn-miniapp/internal/env"
	"github.com/archnets/learn-miniapp/internal/logger"
	"github.com/archnets/learn-miniapp/internal/mockapi"
	"github.com/archnets/learn-miniapp/internal/theme"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "miniapp",
		Short:         "Learning Mini App client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newCoursesCmd(),
		newProfileCmd(),
		newProgressCmd(),
		newAttemptsCmd(),
		newStatsCmd(),
		newActivityCmd(),
		newHealthCmd(),
		newThemeCmd(),
		newMockServerCmd(),
	)
	return root
}

type runFunc func(cmd *cobra.Command, args []string, a *app) error

// withApp builds the client stack for the duration of one command.
func withApp(fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd, args, a)
	}
}

// --- courses ---

func newCoursesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "courses", Short: "Browse the course catalog"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List courses",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			var f core.CourseFilter
			f.Difficulty, _ = cmd.Flags().GetString("difficulty")
			f.Tag, _ = cmd.Flags().GetString("tag")
			f.Search, _ = cmd.Flags().GetString("search")

			courses, err := a.queries.Courses(cmd.Context(), f)
			if err != nil {
				return err
			}
			return printJSON(cmd, courses)
		}),
	}
	list.Flags().String("difficulty", "", "only courses of this difficulty")
	list.Flags().String("tag", "", "only courses with this tag")
	list.Flags().String("search", "", "free text search")

	get := &cobra.Command{
		Use:   "get <course-id>",
		Short: "Show one course",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if prefetch, _ := cmd.Flags().GetBool("prefetch"); prefetch {
				if err := a.queries.PrefetchCourse(cmd.Context(), args[0]); err != nil {
					return err
				}
			}
			course, err := a.queries.Course(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, course)
		}),
	}
	get.Flags().Bool("prefetch", false, "also load every lesson of the course")

	lesson := &cobra.Command{
		Use:   "lesson <course-id> <lesson-id>",
		Short: "Show one lesson",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			l, err := a.queries.Lesson(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd, l)
		}),
	}

	cmd.AddCommand(list, get, lesson)
	return cmd
}

// --- profile ---

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "profile", Short: "Manage the learner profile"}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the profile, creating it from the host user if needed",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			p, err := a.svc.Users.CreateOrUpdateProfile(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		}),
	}

	sync := &cobra.Command{
		Use:   "sync",
		Short: "Push the host user's identity to the backend",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			p, err := a.svc.Users.SyncWithHostUser(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		}),
	}

	update := &cobra.Command{
		Use:   "update",
		Short: "Change profile fields",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			u, err := profileUpdateFromFlags(cmd)
			if err != nil {
				return err
			}
			p, err := a.queries.UpdateProfile(cmd.Context(), u)
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		}),
	}
	update.Flags().String("first-name", "", "first name")
	update.Flags().String("last-name", "", "last name")
	update.Flags().String("username", "", "username")
	update.Flags().String("language", "", "language code")
	update.Flags().String("bio", "", "short bio")

	cmd.AddCommand(show, sync, update)
	return cmd
}

// profileUpdateFromFlags sets only the fields whose flags were given.
func profileUpdateFromFlags(cmd *cobra.Command) (core.ProfileUpdate, error) {
	var u core.ProfileUpdate
	fields := map[string]**string{
		"first-name": &u.FirstName,
		"last-name":  &u.LastName,
		"username":   &u.Username,
		"language":   &u.LanguageCode,
		"bio":        &u.Bio,
	}
	changed := 0
	for name, dst := range fields {
		if !cmd.Flags().Changed(name) {
			continue
		}
		v, _ := cmd.Flags().GetString(name)
		*dst = &v
		changed++
	}
	if changed == 0 {
		return u, errors.New("at least one field flag is required")
	}
	return u, nil
}

// --- progress ---

func newProgressCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "progress", Short: "Course progress"}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show progress in every started course",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			p, err := a.queries.Progress(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		}),
	}

	update := &cobra.Command{
		Use:   "update <course-id> <lesson-id>",
		Short: "Record work on a lesson",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			completed, _ := cmd.Flags().GetBool("completed")
			spent, _ := cmd.Flags().GetDuration("time-spent")

			p, err := a.queries.UpdateProgress(cmd.Context(), core.ProgressUpdate{
				CourseID:         args[0],
				LessonID:         args[1],
				Completed:        completed,
				TimeSpentSeconds: int(spent / time.Second),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		}),
	}
	update.Flags().Bool("completed", false, "mark the lesson completed")
	update.Flags().Duration("time-spent", 0, "time spent on the lesson")

	cmd.AddCommand(list, update)
	return cmd
}

// --- attempts ---

func newAttemptsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "attempts", Short: "Quiz and mock interview attempts"}

	submit := &cobra.Command{
		Use:   "submit <lesson-id>",
		Short: "Submit answers for a lesson",
		Long: `Submit answers for a lesson.

Examples:
  miniapp attempts submit l2 --kind quiz --answer q1=4 --answer q2=x=2
  miniapp attempts submit i1 --kind interview --answer q1="goroutines" --idempotency-key retry-1`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			kind, _ := cmd.Flags().GetString("kind")
			raw, _ := cmd.Flags().GetStringArray("answer")
			key, _ := cmd.Flags().GetString("idempotency-key")
			dur, _ := cmd.Flags().GetDuration("duration")

			answers, err := parseAnswers(raw)
			if err != nil {
				return err
			}
			attempt, err := a.queries.SubmitAttempt(cmd.Context(), core.AttemptRequest{
				LessonID:        args[0],
				Kind:            kind,
				Answers:         answers,
				DurationSeconds: int(dur / time.Second),
				IdempotencyKey:  key,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, attempt)
		}),
	}
	submit.Flags().String("kind", core.LessonQuiz, "quiz or interview")
	submit.Flags().StringArray("answer", nil, "question-id=answer, repeatable")
	submit.Flags().String("idempotency-key", "", "replay-safe key (generated when empty)")
	submit.Flags().Duration("duration", 0, "time taken")

	list := &cobra.Command{
		Use:   "list <lesson-id>",
		Short: "List attempts for a lesson",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			attempts, err := a.queries.Attempts(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, attempts)
		}),
	}

	cmd.AddCommand(submit, list)
	return cmd
}

// parseAnswers splits "q1=answer" pairs on the first '='.
func parseAnswers(raw []string) ([]core.Answer, error) {
	answers := make([]core.Answer, 0, len(raw))
	for _, pair := range raw {
		id, answer, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("answer %q: want question-id=answer", pair)
		}
		answers = append(answers, core.Answer{QuestionID: strings.TrimSpace(id), Answer: answer})
	}
	return answers, nil
}

// --- stats / activity / health ---

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show learning statistics",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			s, err := a.queries.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, s)
		}),
	}
}

func newActivityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent activity, newest first",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")
			items, err := a.queries.Activity(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			return printJSON(cmd, items)
		}),
	}
	cmd.Flags().Int("limit", 20, "page size")
	cmd.Flags().Int("offset", 0, "items to skip")
	return cmd
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			h, err := a.svc.Health.Check(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, h)
		}),
	}
}

// --- theme ---

func newThemeCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "theme", Short: "Theme preference"}

	get := &cobra.Command{
		Use:   "get",
		Short: "Show the preference and the theme it resolves to",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			r := a.themeResolver(cmd.Context())
			defer r.Close()
			printLine(cmd, "%s -> %s", r.Preference(), r.Resolved())
			return nil
		}),
	}

	set := &cobra.Command{
		Use:       "set <light|dark|system>",
		Short:     "Persist a new preference",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"light", "dark", "system"},
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			pref, err := theme.ParsePreference(args[0])
			if err != nil {
				return err
			}
			r := a.themeResolver(cmd.Context())
			defer r.Close()
			if err := r.SetTheme(cmd.Context(), pref); err != nil {
				return err
			}
			printLine(cmd, "%s -> %s", r.Preference(), r.Resolved())
			return nil
		}),
	}

	cmd.AddCommand(get, set)
	return cmd
}

// --- mock-server ---

func newMockServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Serve a fake backend for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			token, _ := cmd.Flags().GetString("bot-token")
			logger.Init(env.GetString("LOG_LEVEL", "INFO"))

			var opts []mockapi.Option
			if token != "" {
				opts = append(opts, mockapi.WithBotToken(token))
			}
			return serveMock(cmd.Context(), addr, mockapi.New(opts...).Handler())
		},
	}
	cmd.Flags().String("addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().String("bot-token", "", "validate init data signatures with this bot token")
	return cmd
}

func serveMock(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Mock API listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Infof("Shutting down mock API")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("mock server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
