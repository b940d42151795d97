package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"eduassess/internal/domain"
	"eduassess/internal/guard"
	"eduassess/internal/quizflow"
)

func newQuizCmd() *cobra.Command {
	var interests, language, grade, specialNeed string

	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Take an adaptive skill-assessment quiz",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			switch guard.Decide(a.session.IsLoading(), a.session.CurrentUser(), domain.NewRoleSet(domain.RoleStudent)) {
			case guard.Redirect:
				return fmt.Errorf("not logged in; run \"eduassess login\" first")
			case guard.Deny:
				return fmt.Errorf("access denied: the quiz is available to students only")
			}

			user := a.session.CurrentUser()
			flow := quizflow.New(a.backend, a.notifier, a.session.Token(), user)
			defer flow.Close()

			if err := flow.Start(); err != nil {
				return err
			}

			cfg := flow.Config()
			cfg.Interests = interests
			if language != "" {
				cfg.Language = language
			}
			if grade != "" {
				cfg.Grade = grade
			}
			if specialNeed != "" {
				cfg.SpecialNeedType = specialNeed
			}

			if cfg.Interests == "" {
				cfg.Interests = promptLine("Your interests (used to personalize questions): ")
			}

			fmt.Printf("Generating a %s-level quiz...\n", cfg.LearningLevel)
			if err := flow.Generate(cfg); err != nil {
				return err
			}

			return runQuestionLoop(flow)
		},
	}

	cmd.Flags().StringVar(&interests, "interests", "", "free-text interests")
	cmd.Flags().StringVar(&language, "language", "", "preferred language")
	cmd.Flags().StringVar(&grade, "grade", "", "school grade")
	cmd.Flags().StringVar(&specialNeed, "special-need", "", "special-need category")
	return cmd
}

func runQuestionLoop(flow *quizflow.Flow) error {
	total := len(flow.Questions())

	for {
		q, idx, ok := flow.CurrentQuestion()
		if !ok {
			break
		}

		fmt.Printf("\nQuestion %d of %d [%s]\n%s\n", idx+1, total, q.SkillType, q.Text)
		for i, opt := range q.Options {
			fmt.Printf("  %d) %s\n", i+1, opt)
		}

		choice := promptChoice(len(q.Options))
		correct, err := flow.SelectAnswer(q.Options[choice-1])
		if err != nil {
			return err
		}
		if correct {
			fmt.Println("Correct!")
		} else {
			fmt.Printf("Not quite. The answer was: %s\n", q.CorrectAnswer)
		}

		if err := flow.Advance(); err != nil {
			return err
		}
	}

	if receipt := flow.Receipt(); receipt != nil {
		fmt.Printf("\nQuiz complete: %d of %d correct (%.0f%%)\n",
			receipt.CorrectAnswers, receipt.TotalQuestions, receipt.Score)
		if len(receipt.Strengths) > 0 {
			fmt.Printf("Strengths: %s\n", strings.Join(receipt.Strengths, ", "))
		}
		if len(receipt.Weaknesses) > 0 {
			fmt.Printf("Areas to improve: %s\n", strings.Join(receipt.Weaknesses, ", "))
		}
		fmt.Println("Your quiz has been sent for teacher review.")
	} else {
		fmt.Println("\nQuiz complete. Results could not be submitted; they will not be retried.")
	}
	return nil
}

func promptLine(prompt string) string {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptChoice(max int) int {
	for {
		line := promptLine(fmt.Sprintf("Your answer (1-%d): ", max))
		n, err := strconv.Atoi(line)
		if err == nil && n >= 1 && n <= max {
			return n
		}
		fmt.Println("Please enter a number from the list.")
	}
}
