package extractor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kvschema.dev/kvschema/extractor"
	"kvschema.dev/kvschema/keypattern"
	"kvschema.dev/kvschema/store"
	"kvschema.dev/kvschema/value"
)

type fakeAdapter struct {
	pairs map[string]value.Value
}

func (f *fakeAdapter) ListKeys(context.Context) ([]string, error) {
	keys := make([]string, 0, len(f.pairs))
	for k := range f.pairs {
		keys = append(keys, k)
	}

	return keys, nil
}

func (f *fakeAdapter) GetTyped(_ context.Context, keys []string) ([]store.RawPair, error) {
	out := make([]store.RawPair, len(keys))
	for i, k := range keys {
		out[i] = store.RawPair{Key: k, Value: f.pairs[k]}
	}

	return out, nil
}

func testPatterns(t *testing.T) *keypattern.Table {
	t.Helper()

	table, err := keypattern.NewTable([]keypattern.PatternSpec{
		{Pattern: "{entity}:{id}:{property}", Label: keypattern.LabelProp},
	})
	require.NoError(t, err)

	return table
}

func TestRunAssemblesEntitiesFromRawPairs(t *testing.T) {
	t.Parallel()

	adapter := &fakeAdapter{pairs: map[string]value.Value{
		"User:1:name": value.String("Ada"),
		"User:1:age":  value.Int(30),
		"User:2:name": value.String("Grace"),
	}}

	ext := extractor.New(adapter, testPatterns(t))

	assembler, stats, err := ext.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.KeysScanned)
	assert.Equal(t, 3, stats.KeysDecoded)
	assert.Equal(t, 2, stats.EntitiesAssembled)

	byEntity := assembler.ByEntity()
	require.Contains(t, byEntity, "User")
	assert.Len(t, byEntity["User"], 2)
}

func TestRunSkipsNullValues(t *testing.T) {
	t.Parallel()

	adapter := &fakeAdapter{pairs: map[string]value.Value{
		"User:1:name": value.String("Ada"),
		"User:1:bio":  value.Null(),
	}}

	ext := extractor.New(adapter, testPatterns(t))

	_, stats, err := ext.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.KeysDecoded)
	assert.Equal(t, 1, stats.KeysNull)
}

func TestRunCountsSyntheticIDs(t *testing.T) {
	t.Parallel()

	adapter := &fakeAdapter{pairs: map[string]value.Value{
		"User:1:name":    value.String("Ada"),
		"schema_version": value.String("3"),
	}}

	ext := extractor.New(adapter, testPatterns(t))

	assembler, stats, err := ext.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.SyntheticIDsUsed)

	byEntity := assembler.ByEntity()
	require.Contains(t, byEntity, "schema_version")
	assert.True(t, byEntity["schema_version"][0].SyntheticID)
}

func TestBuildSchemaAndRelationalModel(t *testing.T) {
	t.Parallel()

	adapter := &fakeAdapter{pairs: map[string]value.Value{
		"User:1:name": value.String("Ada"),
		"User:2:name": value.String("Grace"),
	}}

	ext := extractor.New(adapter, testPatterns(t))

	assembler, _, err := ext.Run(context.Background())
	require.NoError(t, err)

	schema := extractor.BuildSchema(assembler)
	assert.Equal(t, "object", schema.Type)
	require.Contains(t, schema.Properties, "User")

	tables := extractor.BuildRelationalModel(assembler, 75)
	require.Contains(t, tables, "User")
	assert.Equal(t, 2, tables["User"].Count)
}
