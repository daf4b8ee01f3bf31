package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kvschema.dev/kvschema/config"
	"kvschema.dev/kvschema/keypattern"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadStoreConfigReadsAllValues(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "config.ini", `
[redis]
host = 10.0.0.5
port = 6380
decode_responses = false

[extractor]
database = 2
batch_size = 500
export_variations = true
`)

	cfg, err := config.LoadStoreConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.5", cfg.Redis.Host)
	assert.Equal(t, 6380, cfg.Redis.Port)
	assert.False(t, cfg.Redis.DecodeResponses)
	assert.Equal(t, "10.0.0.5:6380", cfg.Redis.Addr())

	assert.Equal(t, 2, cfg.Extractor.Database)
	assert.Equal(t, 500, cfg.Extractor.BatchSize)
	assert.True(t, cfg.Extractor.ExportVariations)
}

func TestLoadStoreConfigAcceptsRedisConnectionSectionName(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "config.ini", `
[redis_connection]
host = example.internal
port = 6379
`)

	cfg, err := config.LoadStoreConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "example.internal", cfg.Redis.Host)
}

func TestLoadStoreConfigMissingFileIsConfigError(t *testing.T) {
	t.Parallel()

	_, err := config.LoadStoreConfig(filepath.Join(t.TempDir(), "missing.ini"))
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfig)
}

func TestLoadPatternTableCompilesEntries(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "patterns.yaml", `
patterns:
  - pattern: "{entity}:{id}:{property}"
    label: Prop
  - pattern: "{entity}:{id}:{property}[{index}]"
    label: Arr
`)

	table, err := config.LoadPatternTable(path)
	require.NoError(t, err)

	comps, label := table.Classify("User:1:name")
	assert.Equal(t, keypattern.LabelProp, label)
	assert.Equal(t, "User", comps.Entity)
	assert.Equal(t, "name", comps.Property)
}

func TestLoadPatternTableMalformedYAMLIsConfigError(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "patterns.yaml", "patterns: [this is not valid: yaml: at all")

	_, err := config.LoadPatternTable(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfig)
}
