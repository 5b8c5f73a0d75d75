package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nmtkit/iwslt/internal/cli/config"
	"github.com/nmtkit/iwslt/internal/cli/output"
	"github.com/nmtkit/iwslt/internal/state"
	"github.com/nmtkit/iwslt/pkg/corpus"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Registry corpus.Registry
	Store    *state.SQLiteStore
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with the state store opened.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	store, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	cleanup := func() {
		_ = store.Close()
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Registry: cfg.BuildRegistry(),
		Store:    store,
		Renderer: r,
	}, cleanup, nil
}

// NewCommandContextWithoutStore creates a CommandContext without touching the
// state database. Useful for commands that only read the registry or the
// data directory.
func NewCommandContextWithoutStore(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Registry: cfg.BuildRegistry(),
		Renderer: r,
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	return &config.Config{
		DataDir:      getEnvOrDefault("IWSLT_DATA_DIR", config.DefaultDataDir),
		StatePath:    getEnvOrDefault("IWSLT_STATE_PATH", config.DefaultStateFile),
		BaseURL:      getEnvOrDefault("IWSLT_BASE_URL", config.DefaultBaseURL),
		EOS:          os.Getenv("IWSLT_EOS"),
		Verbose:      os.Getenv("IWSLT_VERBOSE") == "true",
		OutputFormat: os.Getenv("IWSLT_OUTPUT"),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// openStore opens the state database, creating its directory when needed.
func openStore(cfg *config.Config) (*state.SQLiteStore, error) {
	stateDir := filepath.Dir(cfg.StatePath)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	return state.Open(cfg.StatePath)
}

// resolveDatasets maps CLI args to registry entries. With all set, every
// registry dataset is returned in key order.
func resolveDatasets(reg corpus.Registry, args []string, all bool) ([]corpus.Dataset, error) {
	if all {
		return reg.Datasets(), nil
	}

	seen := make(map[string]bool, len(args))
	datasets := make([]corpus.Dataset, 0, len(args))
	for _, key := range args {
		if seen[key] {
			continue
		}
		seen[key] = true

		ds, err := reg.LookupKey(key)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, ds)
	}
	return datasets, nil
}
