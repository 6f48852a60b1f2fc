// Package main provides the celest binary entry point: the HTTP service and
// one-shot chart readings from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/celest/pkg/logger"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "celest"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Astrological influence scoring",
		Long: `Celest scores how the current sky meets a birth chart: eight life
sectors with a harmony score, three daily dimensions, transit houses and
the ruling planetary hour.

Run "celest serve" for the HTTP API, or the reading commands for a single
answer on stdout.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr()), logger.WithFormat(logFormat)); err != nil {
				return err
			}
			return logger.SetLevelString(logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", logger.FormatText, "Log format (text, json)")

	cmd.AddCommand(
		serveCmd(),
		wheelCmd(),
		hourCmd(),
		overlayCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)
	return cmd
}
