package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"twislave/host/config"
)

var (
	envFile  string
	logLevel string

	cfg    *config.Config
	logger = zerolog.Nop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "twislave-host",
	Short: "Host side tools for the TWI slave firmware.",
	Long: `Host side tools for the TWI slave firmware. Settings come from a ` +
		`.env file and TWISLAVE_* environment variables; flags override both.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(envFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			c.LogLevel = logLevel
		}

		l, err := config.NewLogger(cmd.ErrOrStderr(), c.LogLevel)
		if err != nil {
			return err
		}

		cfg, logger = c, l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", config.DefaultEnvFile,
		"Path to an optional .env file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level (trace, debug, info, warn, error)")
}

// signalContext is cancelled on the first interrupt.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
