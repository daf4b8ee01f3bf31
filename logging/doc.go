// Package logging provides structured logging handler construction for use
// with [log/slog].
//
// It supports multiple output formats ([FormatJSON], [FormatLogfmt]) and
// severity levels (error, warn, info, debug). Use [Config] for CLI flag
// integration via [github.com/spf13/pflag] and shell completion support via
// [github.com/spf13/cobra]:
//
//	cfg := logging.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//	cfg.RegisterCompletions(rootCmd)
//
//	handler, err := cfg.NewHandler(os.Stderr)
//	slog.SetDefault(slog.New(handler))
//
// Per-key ingestion failures (spec's DecodeError) and non-fatal inference
// anomalies (InferenceWarning) are logged at warn level with structured
// fields rather than returned as errors, so a single bad key never aborts a
// run.
package logging
