// Package main provides the CLI entry point for kvschema-extract, a tool
// that scans a Redis-like key/value store and infers a JSON Schema document
// describing the entities encoded in its keys.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"kvschema.dev/kvschema/config"
	"kvschema.dev/kvschema/extractor"
	"kvschema.dev/kvschema/logging"
	"kvschema.dev/kvschema/profile"
	"kvschema.dev/kvschema/store"
	"kvschema.dev/kvschema/version"
)

// Flags holds CLI flag names, allowing callers to customize them while
// keeping sensible defaults.
type Flags struct {
	Store      string
	Patterns   string
	Output     string
	Variations string
}

// Config holds CLI flag values for kvschema-extract.
type Config struct {
	Flags      Flags
	Store      string
	Patterns   string
	Output     string
	Variations string
	Logging    *logging.Config
	Profile    *profile.Config
}

// NewConfig returns a new [Config] with default flag names.
func NewConfig() *Config {
	return &Config{
		Flags: Flags{
			Store:      "store",
			Patterns:   "patterns",
			Output:     "output",
			Variations: "variations",
		},
		Logging: logging.NewConfig(),
		Profile: profile.NewConfig(),
	}
}

// RegisterFlags adds kvschema-extract flags to flags.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Store, c.Flags.Store, "store.ini", "path to the store/extractor connection file")
	flags.StringVar(&c.Patterns, c.Flags.Patterns, "patterns.yaml", "path to the key pattern table")
	flags.StringVarP(&c.Output, c.Flags.Output, "o", "output_schema.json", "path to write the inferred schema")
	flags.StringVar(&c.Variations, c.Flags.Variations, "", "optional path to write per-entity schema variations")

	c.Logging.RegisterFlags(flags)
	c.Profile.RegisterFlags(flags)
}

func main() {
	cfg := NewConfig()

	rootCmd := &cobra.Command{
		Use:   "kvschema-extract [flags]",
		Short: "Infer a JSON Schema document from a key/value store",
		Long: `kvschema-extract scans every key in a Redis-like store, classifies it against
a table of key patterns, reconstructs entity instances, and infers a JSON
Schema document describing their shape.`,
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

	schema := extractor.BuildSchema(assembler)

	if err := writeJSON(cfg.Output, schema); err != nil {
		return err
	}

	if storeCfg.Extractor.ExportVariations && cfg.Variations != "" {
		variations := extractor.BuildSchemaVariations(assembler)

		if err := writeJSON(cfg.Variations, variations); err != nil {
			return err
		}
	}

	return nil
}

var errRun = errors.New("kvschema-extract: run")

func writeJSON(path string, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", errRun, err)
	}

	out = append(out, '\n')

	if path == "" || path == "-" {
		_, err = os.Stdout.Write(out)
	} else {
		err = os.WriteFile(path, out, 0o644) //nolint:gosec // Output path from CLI flag is expected.
	}

	if err != nil {
		return fmt.Errorf("%w: %w", errRun, err)
	}

	return nil
}
