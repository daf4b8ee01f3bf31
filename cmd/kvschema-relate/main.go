// Package main provides the CLI entry point for kvschema-relate, a tool
// that scans a Redis-like key/value store and emits a relational table
// model with SQL DDL for the entities encoded in its keys.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"kvschema.dev/kvschema/config"
	"kvschema.dev/kvschema/extractor"
	"kvschema.dev/kvschema/logging"
	"kvschema.dev/kvschema/profile"
	"kvschema.dev/kvschema/relational"
	"kvschema.dev/kvschema/store"
	"kvschema.dev/kvschema/version"
)

// Flags holds CLI flag names, allowing callers to customize them while
// keeping sensible defaults.
type Flags struct {
	Store     string
	Patterns  string
	Output    string
	Threshold string
}

// Config holds CLI flag values for kvschema-relate.
type Config struct {
	Flags     Flags
	Store     string
	Patterns  string
	Output    string
	Threshold int
	Logging   *logging.Config
	Profile   *profile.Config
}

// NewConfig returns a new [Config] with default flag names.
func NewConfig() *Config {
	return &Config{
		Flags: Flags{
			Store:     "store",
			Patterns:  "patterns",
			Output:    "output",
			Threshold: "threshold",
		},
		Logging: logging.NewConfig(),
		Profile: profile.NewConfig(),
	}
}

// RegisterFlags adds kvschema-relate flags to flags.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Store, c.Flags.Store, "store.ini", "path to the store/extractor connection file")
	flags.StringVar(&c.Patterns, c.Flags.Patterns, "patterns.yaml", "path to the key pattern table")
	flags.StringVarP(&c.Output, c.Flags.Output, "o", "schema.sql", "path to write the generated SQL DDL")
	flags.IntVar(&c.Threshold, c.Flags.Threshold, relational.DefaultThreshold,
		"minimum fuzzy-match score (0-100) for foreign key inference")

	c.Logging.RegisterFlags(flags)
	c.Profile.RegisterFlags(flags)
}

func main() {
	cfg := NewConfig()

	rootCmd := &cobra.Command{
		Use:   "kvschema-relate [flags]",
		Short: "Infer a relational table model from a key/value store",
		Long: `kvschema-relate scans every key in a Redis-like store, classifies it against
a table of key patterns, reconstructs entity instances, and synthesizes a
relational table model (with SQL DDL) describing how those entities relate.`,
		Version:       version.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(cfg)
		},
	}

	cfg.RegisterFlags(rootCmd.Flags())

	if err := cfg.Logging.RegisterCompletions(rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", err)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(cfg *Config) error {
	handler, err := cfg.Logging.NewHandler(os.Stderr)
	if err != nil {
		return err
	}

	logger := slog.New(handler)

	prof := cfg.Profile.NewProfiler()
	if err := prof.Start(); err != nil {
		return err
	}

	defer func() {
		if stopErr := prof.Stop(); stopErr != nil {
			logger.Error("stopping profiler", slog.Any("error", stopErr))
		}
	}()

	storeCfg, err := config.LoadStoreConfig(cfg.Store)
	if err != nil {
		return err
	}

	patterns, err := config.LoadPatternTable(cfg.Patterns)
	if err != nil {
		return err
	}

	client := redis.NewClient(&redis.Options{
		Addr: storeCfg.Redis.Addr(),
		DB:   storeCfg.Extractor.Database,
	})
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			logger.Error("closing store connection", slog.Any("error", closeErr))
		}
	}()

	adapter := store.NewRedisAdapter(client, int64(storeCfg.Extractor.BatchSize), store.WithLogger(logger))

	ext := extractor.New(adapter, patterns,
		extractor.WithBatchSize(storeCfg.Extractor.BatchSize),
		extractor.WithLogger(logger),
	)

	assembler, stats, err := ext.Run(context.Background())
	if err != nil {
		return fmt.Errorf("%w: %w", errRun, err)
	}

	logger.Info("assembled entities",
		slog.Int("keys_scanned", stats.KeysScanned),
		slog.Int("entities_assembled", stats.EntitiesAssembled),
	)

	tables := extractor.BuildRelationalModel(assembler, cfg.Threshold)
	statements := relational.GenerateSQL(tables)

	out := strings.Join(statements, "\n\n") + "\n"

	if cfg.Output == "" || cfg.Output == "-" {
		if _, err := os.Stdout.WriteString(out); err != nil {
			return fmt.Errorf("%w: %w", errRun, err)
		}

		return nil
	}

	if err := os.WriteFile(cfg.Output, []byte(out), 0o644); err != nil { //nolint:gosec // Output path from CLI flag is expected.
		return fmt.Errorf("%w: %w", errRun, err)
	}

	return nil
}

var errRun = errors.New("kvschema-relate: run")
