// Package extractor orchestrates the full pipeline: C1 (store) feeds C3
// (key pattern flattening) feeds C4 (entity assembly), whose output is
// handed to either consumer — C5a (schemaengine) or C5b (relational) — by
// the caller. Value normalization (C2) already happened inside the store
// adapter, since a raw store fetch and its decode are one round trip.
package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"kvschema.dev/kvschema/entity"
	"kvschema.dev/kvschema/keypattern"
	"kvschema.dev/kvschema/store"
)

// Stats counts what happened during a Run, for logging/diagnostics.
type Stats struct {
	KeysScanned       int
	KeysDecoded       int
	KeysNull          int
	PairsParsed       int
	SyntheticIDsUsed  int
	EntitiesAssembled int
}

// Extractor wires a store adapter and a compiled pattern table into the
// C1→C3→C4 portion of the pipeline.
type Extractor struct {
	adapter   store.Adapter
	patterns  *keypattern.Table
	batchSize int
	idGen     keypattern.IDGenerator
	logger    *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithBatchSize sets the key-fetch batch size (default 1000).
func WithBatchSize(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithIDGenerator overrides the synthetic id generator used when no id is
// discoverable during flattening (default a monotone counter).
func WithIDGenerator(gen keypattern.IDGenerator) Option {
	return func(e *Extractor) { e.idGen = gen }
}

// WithLogger sets the logger used for per-run diagnostics (default
// [slog.Default]).
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) { e.logger = logger }
}

// New returns an Extractor reading from adapter and classifying keys
// against patterns.
func New(adapter store.Adapter, patterns *keypattern.Table, opts ...Option) *Extractor {
	e := &Extractor{
		adapter:   adapter,
		patterns:  patterns,
		batchSize: 1000,
		idGen:     keypattern.NewCounterIDGenerator(),
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Run executes C1 (list + fetch), C3 (classify + flatten), and C4 (assemble)
// over the whole database, returning the assembled entity instances.
func (e *Extractor) Run(ctx context.Context) (*entity.Assembler, Stats, error) {
	var stats Stats

	keys, err := e.adapter.ListKeys(ctx)
	if err != nil {
		return nil, stats, fmt.Errorf("%w: listing keys: %w", ErrIngest, err)
	}

	sort.Strings(keys)
	stats.KeysScanned = len(keys)

	assembler := entity.NewAssembler()

	for start := 0; start < len(keys); start += e.batchSize {
		end := min(start+e.batchSize, len(keys))

		batch := keys[start:end]

		pairs, fetchErr := e.adapter.GetTyped(ctx, batch)
		if fetchErr != nil {
			return nil, stats, fmt.Errorf("%w: fetching batch: %w", ErrIngest, fetchErr)
		}

		for _, p := range pairs {
			if p.Value.IsNull() {
				stats.KeysNull++
				continue
			}

			stats.KeysDecoded++

			for _, parsed := range e.patterns.Parse(p.Key, p.Value, e.idGen) {
				if parsed.SyntheticID {
					stats.SyntheticIDsUsed++
					e.logger.Warn("synthetic id assigned",
						slog.String("stage", "key_parser"),
						slog.String("key", p.Key),
						slog.String("entity", parsed.Components.Entity),
					)
				}

				assembler.Add(parsed)
				stats.PairsParsed++
			}
		}

		if err := ctx.Err(); err != nil {
			return nil, stats, fmt.Errorf("%w: %w", ErrIngest, err)
		}
	}

	stats.EntitiesAssembled = len(assembler.Instances())

	e.logger.Info("extraction complete",
		slog.Int("keys_scanned", stats.KeysScanned),
		slog.Int("keys_decoded", stats.KeysDecoded),
		slog.Int("keys_null", stats.KeysNull),
		slog.Int("entities_assembled", stats.EntitiesAssembled),
		slog.Int("synthetic_ids_used", stats.SyntheticIDsUsed),
	)

	return assembler, stats, nil
}
