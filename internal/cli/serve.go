package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"eduassess/internal/config"
	"eduassess/internal/logger"
	"eduassess/internal/stub"
	"eduassess/internal/stubserver"
)

func newServeStubCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve-stub",
		Short: "Run a local stub of the platform backend",
		Long: "Serves the platform REST contract from an in-memory store seeded with " +
			"demo accounts (password \"password\" for all of them). Point the client " +
			"at it with BACKEND_URL.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := logger.Initialize(cfg.Logger); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			if port != 0 {
				cfg.StubServer.Port = port
			}

			app := stubserver.New(cfg.StubServer, stub.NewSeededStore()).App()
			addr := fmt.Sprintf(":%d", cfg.StubServer.Port)

			go func() {
				logger.Get().Info("Stub backend listening", zap.String("addr", addr))
				if err := app.Listen(addr); err != nil {
					logger.Get().Error("Stub backend stopped", zap.Error(err))
				}
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-stop:
			case <-cmd.Context().Done():
			}

			logger.Get().Info("Shutting down stub backend")
			return app.Shutdown()
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (overrides config)")
	return cmd
}
