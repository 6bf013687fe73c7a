// Package commands implements the xflowctl operator CLI.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/config"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/logger"
)

var (
	wsURL    string
	token    string
	logLevel string
	log      *logger.Logger
)

// Execute runs the root command
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "xflowctl",
		Short:         "Operator tools for the xflow realtime event stream",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logger.NewLogger(&config.Config{
				App: config.AppConfig{Env: "development", LogLevel: logLevel},
			})
			if err != nil {
				return err
			}
			log = l
			return nil
		},
	}

	root.PersistentFlags().StringVar(&wsURL, "url", os.Getenv("REALTIME_WS_URL"), "realtime WebSocket URL (ws:// or wss://)")
	root.PersistentFlags().StringVar(&token, "token", os.Getenv("SESSION_TOKEN"), "session token sent as a bearer credential")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(tailCmd(), statusCmd())
	return root
}
