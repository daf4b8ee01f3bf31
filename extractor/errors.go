package extractor

import "errors"

// Sentinel errors identifying which pipeline stage failed.
var (
	// ErrConfig signals a missing config section or malformed pattern file;
	// fatal, aborts before any store access.
	ErrConfig = errors.New("extractor: config")

	// ErrIngest signals a store connection refusal or key enumeration
	// failure; fatal.
	ErrIngest = errors.New("extractor: ingest")
)
