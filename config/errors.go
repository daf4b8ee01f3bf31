package config

import "errors"

// ErrConfig is the sentinel for a store config file that cannot be loaded
// or has no connection section, and for a pattern file that cannot be read,
// decoded or compiled: fatal, aborts before any store access.
var ErrConfig = errors.New("config")
