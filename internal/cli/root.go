// Package cli implements the cobra-based commands of wordle-helper.
//
// Each subcommand (serve, play, export) lives in its own file. This file
// defines the root command, the global flags and logging setup.
package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Global flags, bound to persistent flags on the root command.
var (
	// configPath is an optional YAML config file; env vars still override it.
	configPath string

	// logLevel is a zerolog level name. Empty defers to LOG_LEVEL.
	logLevel string
)

// Version is injected from main at build time.
var Version = "dev"

// NewRootCommand creates the root command with every subcommand registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wordle-helper",
		Short: "Track Wordle feedback and the constraints it implies",
		Long: `wordle-helper records your Wordle guesses and the color feedback for each
letter, then tells you which letters must be used, which columns are
settled and where a letter can't go.

Run it as a JSON API for a browser widget (serve) or play in the terminal (play).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd.ErrOrStderr(), logLevel, "info")
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newPlayCommand())
	rootCmd.AddCommand(newExportCommand())

	return rootCmd
}

// Execute runs the root command and exits non-zero on error.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// setupLogging points the global zerolog logger at w with a console writer.
// level wins over fallback when both parse.
func setupLogging(w io.Writer, level, fallback string) {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
	applyLevel(level, fallback)
}

func applyLevel(level, fallback string) {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	if level == "" {
		level = fallback
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		log.Warn().Str("level", level).Msg("unknown log level, using info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
