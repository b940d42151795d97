package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"eduassess/internal/dashboard"
	"eduassess/internal/domain"
	"eduassess/internal/guard"
)

func newStudentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "student",
		Short: "Show the student dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			if err := requireRole(a, domain.RoleStudent, "the student dashboard"); err != nil {
				return err
			}

			view := dashboard.NewStudent(a.backend, a.notifier, a.session.Token())
			defer view.Close()
			if err := view.Refresh(); err != nil {
				return err
			}

			profile := view.Profile()
			stats := view.Stats()
			fmt.Printf("%s\n", profile.Name)
			fmt.Printf("  Quizzes taken:     %d of %d\n", profile.QuizAttempts, domain.MaxQuizAttempts)
			fmt.Printf("  Average score:     %d%%\n", stats.AverageScore)
			fmt.Printf("  Improvement areas: %d\n", stats.ImprovementAreas)
			fmt.Printf("  Next quiz level:   %s\n", profile.LearningLevel())

			history := view.History()
			if len(history) == 0 {
				fmt.Println("\nNo quiz results yet. Run \"eduassess quiz\" to take your first quiz.")
				return nil
			}

			fmt.Println("\nRecent results:")
			for _, sub := range history {
				fmt.Printf("  %s  %3.0f%%  %-14s %s\n",
					sub.SubmittedAt.Format("2006-01-02"), sub.Score, sub.Status, summaryLine(sub))
			}
			return nil
		},
	}
}

func newTeacherCmd() *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "teacher",
		Short: "Teacher dashboard and review actions",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List student submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := teacherView(cmd)
			if err != nil {
				return err
			}
			defer view.Close()

			fmt.Printf("Class average: %d%%   Pending reviews: %d\n\n",
				view.ClassAverage(), view.PendingCount())
			for _, sub := range view.Filter(search) {
				fmt.Printf("  %s  %-18s %3.0f%%  %s\n", sub.ID, sub.UserName, sub.Score, sub.Status)
			}
			return nil
		},
	}
	list.Flags().StringVar(&search, "search", "", "filter by student name or email")

	students := &cobra.Command{
		Use:   "students",
		Short: "Per-student performance summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := teacherView(cmd)
			if err != nil {
				return err
			}
			defer view.Close()

			for _, s := range view.StudentSummaries() {
				fmt.Printf("  %-18s attempts %d  avg %3d%%  latest %3d%%  pending %d\n",
					s.Name, s.Attempts, s.AverageScore, s.LatestScore, s.Pending)
			}
			return nil
		},
	}

	comment := &cobra.Command{
		Use:   "comment <submission-id> <text>",
		Short: "Attach a comment to a submission",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := teacherView(cmd)
			if err != nil {
				return err
			}
			defer view.Close()
			return view.AddComment(args[0], strings.Join(args[1:], " "))
		},
	}

	submit := &cobra.Command{
		Use:   "submit <submission-id>",
		Short: "Finalize one submission and send recommendations to the student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := teacherView(cmd)
			if err != nil {
				return err
			}
			defer view.Close()

			outcome, err := view.SubmitOne(args[0])
			if err != nil {
				return err
			}
			fmt.Println("Recommendations:")
			for _, r := range outcome.Recommendations {
				fmt.Printf("  - %s\n", r)
			}
			fmt.Printf("Explanation: %s\n", outcome.Explanation)
			return nil
		},
	}

	submitBulk := &cobra.Command{
		Use:   "submit-bulk <submission-id>...",
		Short: "Finalize all selected submissions that are still pending",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := teacherView(cmd)
			if err != nil {
				return err
			}
			defer view.Close()

			outcome, err := view.SubmitBulk(args)
			if err != nil {
				return err
			}
			fmt.Printf("Processed %d, failed %d\n", outcome.Processed, outcome.Failed)
			return nil
		},
	}

	cmd.AddCommand(list, students, comment, submit, submitBulk)
	return cmd
}

func teacherView(cmd *cobra.Command) (*dashboard.Teacher, error) {
	a, err := newApp(cmd.Context())
	if err != nil {
		return nil, err
	}
	if err := requireRole(a, domain.RoleTeacher, "teacher actions"); err != nil {
		return nil, err
	}

	view := dashboard.NewTeacher(a.backend, a.notifier, a.session.Token())
	if err := view.Refresh(); err != nil {
		view.Close()
		return nil, err
	}
	return view, nil
}

func requireRole(a *app, role domain.Role, what string) error {
	switch guard.Decide(a.session.IsLoading(), a.session.CurrentUser(), domain.NewRoleSet(role)) {
	case guard.Redirect:
		return fmt.Errorf("not logged in; run \"eduassess login\" first")
	case guard.Deny:
		return fmt.Errorf("access denied: %s require a %s account", what, role)
	}
	return nil
}

func summaryLine(sub domain.Submission) string {
	if len(sub.Weaknesses) > 0 {
		return "improve: " + strings.Join(sub.Weaknesses, ", ")
	}
	if len(sub.Strengths) > 0 {
		return "strong: " + strings.Join(sub.Strengths, ", ")
	}
	return ""
}
