package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"eduassess/internal/domain"
	"eduassess/internal/validation"
)

func newLoginCmd() *cobra.Command {
	var creds domain.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if errs := validation.NewValidator().ValidateLogin(creds); len(errs) > 0 {
				return printValidationErrors(errs)
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			result, err := a.backend.Login(cmd.Context(), creds)
			if err != nil {
				return err
			}
			if err := a.session.Login(cmd.Context(), result.Token); err != nil {
				return err
			}

			user := a.session.CurrentUser()
			fmt.Printf("Logged in as %s (%s)\n", user.Name, roleLabel(user))
			return nil
		},
	}

	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password")
	cmd.Flags().StringVar(&creds.Department, "department", "", "department or class")
	return cmd
}

func newSignupCmd() *cobra.Command {
	var input domain.SignupInput

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a student account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if errs := validation.NewValidator().ValidateSignup(input); len(errs) > 0 {
				return printValidationErrors(errs)
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			user, err := a.backend.Signup(cmd.Context(), input)
			if err != nil {
				return err
			}

			fmt.Printf("Account created for %s. Log in with \"eduassess login\".\n", user.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Name, "name", "", "full name")
	cmd.Flags().StringVar(&input.Email, "email", "", "account email")
	cmd.Flags().StringVar(&input.Password, "password", "", "account password")
	cmd.Flags().StringVar(&input.Department, "department", "", "department or class")
	cmd.Flags().StringVar(&input.RollNo, "roll-no", "", "roll number (optional)")
	cmd.Flags().IntVar(&input.Age, "age", 0, "age (optional)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			a.session.Logout()
			return nil
		},
	}
}

func printValidationErrors(errs domain.ValidationErrors) error {
	for _, e := range errs {
		fmt.Printf("  %s %s\n", e.Field, e.Message)
	}
	return fmt.Errorf("validation failed")
}

func roleLabel(user *domain.User) string {
	if user.Roles.Has(domain.RoleTeacher) {
		return "teacher"
	}
	return "student"
}
