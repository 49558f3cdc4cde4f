// Package main provides the CLI entrypoint for compquiz.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/compquiz/internal/api"
	"github.com/verte-zerg/compquiz/internal/config"
	"github.com/verte-zerg/compquiz/internal/game"
	"github.com/verte-zerg/compquiz/internal/logging"
	"github.com/verte-zerg/compquiz/internal/model"
	"github.com/verte-zerg/compquiz/internal/store"
	"github.com/verte-zerg/compquiz/internal/tui"
)

const (
	defaultAPIURL   = "http://localhost:5000"
	defaultLevels   = "1,2,3,4,5,6"
	defaultTimeout  = 10
	defaultRetries  = 2
	defaultLogLevel = "info"
)

var (
	rootAPIURL    string
	rootTimeLimit int
	rootLevels    string
	rootTimeout   int
	rootRetries   int
	rootLogLevel  string
	rootLogFile   string
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logErrf("failed to load .env: %v\n", err)
	}
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "compquiz",
		Short:         "Terminal quiz for Python comprehensions",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runQuizCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootAPIURL, "api-url", defaultAPIURL, "quiz service base URL")
	flags.IntVar(&rootTimeout, "timeout", defaultTimeout, "request timeout in seconds")
	flags.IntVar(&rootRetries, "retries", defaultRetries, "extra attempts for question fetches")
	flags.StringVar(&rootLogLevel, "log-level", defaultLogLevel, "log level (trace, debug, info, warn, error, disabled)")
	flags.StringVar(&rootLogFile, "log-file", config.DefaultLogPath(), `log file path ("-" for stderr, "off" to disable)`)
	rootCmd.Flags().IntVar(&rootTimeLimit, "time-limit", model.DefaultTimeLimit, "default timed mode length in seconds (10-600)")
	rootCmd.Flags().StringVar(&rootLevels, "levels", defaultLevels, "default timed mode levels, comma separated")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newQuestionCmd())
	rootCmd.AddCommand(newCheckCmd())

	return rootCmd
}

func runQuizCmd(cmd *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("compquiz needs an interactive terminal; use \"compquiz question\" and \"compquiz check\" for scripts")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closer, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeQuietly(closer, "log file")

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}
	st, err := store.Open(store.InMemory)
	if err != nil {
		return fmt.Errorf("failed to open attempt journal: %w", err)
	}
	defer closeQuietly(st, "attempt journal")

	logger.Info().
		Str("api_url", client.BaseURL()).
		Int("time_limit", cfg.TimeLimit).
		Str("levels", cfg.Levels.String()).
		Msg("starting quiz")

	session := game.New(model.TimedConfig{TimeLimit: cfg.TimeLimit, Levels: cfg.Levels})
	program := tea.NewProgram(tui.NewModel(session, client, st, logger), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run quiz: %w", err)
	}
	logger.Info().Int("score", session.Score()).Int("total", session.Total()).Msg("quiz closed")
	return nil
}

func newClient(cfg model.Config, logger zerolog.Logger) (*api.Client, error) {
	client, err := api.New(cfg.APIURL, api.Options{
		Timeout: cfg.Timeout,
		Retries: cfg.Retries,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("--api-url: %w", err)
	}
	return client, nil
}

func requestTimeout(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

func closeQuietly(c io.Closer, what string) {
	if err := c.Close(); err != nil {
		logErrf("failed to close %s: %v\n", what, err)
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
