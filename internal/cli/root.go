// Package cli is the terminal front-end: login/signup, the adaptive quiz
// loop, the student and teacher dashboards, and a local stub backend server.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"eduassess/internal/backend"
	"eduassess/internal/config"
	"eduassess/internal/credstore"
	"eduassess/internal/domain"
	"eduassess/internal/logger"
	"eduassess/internal/notify"
	"eduassess/internal/session"
	"eduassess/internal/stub"
)

var useStub bool

// Execute runs the CLI.
func Execute() error {
	defer func() { _ = logger.Sync() }()
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "eduassess",
		Short:         "Adaptive skill-assessment platform client",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().BoolVar(&useStub, "stub", false, "use the in-memory stub backend instead of the remote API")
	cmd.AddCommand(
		newLoginCmd(),
		newSignupCmd(),
		newLogoutCmd(),
		newQuizCmd(),
		newStudentCmd(),
		newTeacherCmd(),
		newServeStubCmd(),
	)
	return cmd
}

// app bundles the wired collaborators every command needs.
type app struct {
	cfg      *config.Config
	backend  domain.Backend
	creds    *credstore.Store
	session  *session.Store
	notifier notify.Notifier
}

// newApp loads configuration, initializes logging, and restores the session
// from the credential store.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	var be domain.Backend
	if useStub {
		be = stub.NewBackend(stub.NewSeededStore())
	} else {
		be, err = backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)
		if err != nil {
			return nil, err
		}
	}

	creds := credstore.New(cfg.Storage.CredentialsFile)
	sess := session.New(be, creds, func(route string) {
		fmt.Printf("Signed out. Continue at %s\n", route)
	})
	sess.Bootstrap(ctx)

	return &app{
		cfg:      cfg,
		backend:  be,
		creds:    creds,
		session:  sess,
		notifier: notify.NewLogNotifier(),
	}, nil
}

// requireUser returns the authenticated user or an error suitable for
// command output.
func (a *app) requireUser() (*domain.User, error) {
	user := a.session.CurrentUser()
	if user == nil {
		return nil, fmt.Errorf("not logged in; run \"eduassess login\" first")
	}
	return user, nil
}
