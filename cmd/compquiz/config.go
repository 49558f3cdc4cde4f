package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/compquiz/internal/config"
	"github.com/verte-zerg/compquiz/internal/levels"
	"github.com/verte-zerg/compquiz/internal/model"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// loadConfig merges defaults, the config file, environment and flags, in
// increasing order of precedence.
func loadConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return resolveConfig(cmd, fileCfg)
}

func resolveConfig(cmd *cobra.Command, fileCfg config.FileConfig) (model.Config, error) {
	applyStringConfig(cmd, "api-url", &rootAPIURL, fileCfg.Client.APIURL)
	applyIntConfig(cmd, "timeout", &rootTimeout, fileCfg.Client.TimeoutSeconds)
	applyIntConfig(cmd, "retries", &rootRetries, fileCfg.Client.Retries)
	applyIntConfig(cmd, "time-limit", &rootTimeLimit, fileCfg.Timed.TimeLimit)
	applyLevelsConfig(cmd, "levels", &rootLevels, fileCfg.Timed.Levels)
	applyStringConfig(cmd, "log-level", &rootLogLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &rootLogFile, fileCfg.Log.File)

	applyStringConfig(cmd, "api-url", &rootAPIURL, config.LookupEnv(config.EnvAPIURL))
	applyStringConfig(cmd, "log-level", &rootLogLevel, config.LookupEnv(config.EnvLogLevel))
	applyStringConfig(cmd, "log-file", &rootLogFile, config.LookupEnv(config.EnvLogFile))

	set, err := levels.Parse(rootLevels)
	if err != nil {
		return model.Config{}, fmt.Errorf("--levels: %w", err)
	}
	cfg := model.Config{
		APIURL:    rootAPIURL,
		TimeLimit: rootTimeLimit,
		Levels:    set,
		Timeout:   requestTimeout(rootTimeout),
		Retries:   rootRetries,
		LogLevel:  rootLogLevel,
		LogFile:   rootLogFile,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if flagChanged(cmd, name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if flagChanged(cmd, name) {
		return
	}
	*target = *value
}

func applyLevelsConfig(cmd *cobra.Command, name string, target *string, value []int) {
	if value == nil {
		return
	}
	if flagChanged(cmd, name) {
		return
	}
	*target = strings.Join(lo.Map(value, func(level int, _ int) string {
		return strconv.Itoa(level)
	}), ",")
}

// flagChanged reports whether the flag was set on the command line. Flags a
// subcommand does not define count as unset.
func flagChanged(cmd *cobra.Command, name string) bool {
	flag := cmd.Flags().Lookup(name)
	return flag != nil && flag.Changed
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# compquiz configuration
# Uncomment a value to enable it. CLI flags and environment variables
# (%s, %s, %s) override config values.

[client]
# api-url = %q   # Quiz service base URL
# timeout = %d                          # Request timeout in seconds
# retries = %d                          # Extra attempts for question fetches

[timed]
# time-limit = %d                     # Default timed mode length in seconds (%d-%d)
# levels = [1, 2, 3, 4, 5, 6]           # Levels drawn in timed mode

[log]
# level = %q                        # trace, debug, info, warn, error, disabled
# file = %q
`,
		config.EnvAPIURL,
		config.EnvLogLevel,
		config.EnvLogFile,
		defaultAPIURL,
		defaultTimeout,
		defaultRetries,
		model.DefaultTimeLimit,
		model.MinTimeLimit,
		model.MaxTimeLimit,
		defaultLogLevel,
		config.DefaultLogPath(),
	)
}

func validateConfig(cfg model.Config) error {
	if strings.TrimSpace(cfg.APIURL) == "" {
		return fmt.Errorf("--api-url must not be empty")
	}
	if cfg.TimeLimit < model.MinTimeLimit || cfg.TimeLimit > model.MaxTimeLimit {
		return fmt.Errorf("--time-limit must be between %d and %d", model.MinTimeLimit, model.MaxTimeLimit)
	}
	if cfg.Levels.Empty() {
		return fmt.Errorf("--levels must name at least one level")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("--timeout must be > 0")
	}
	if cfg.Retries < 0 {
		return fmt.Errorf("--retries must be >= 0")
	}
	return nil
}
