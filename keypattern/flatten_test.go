package keypattern_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kvschema.dev/kvschema/keypattern"
	"kvschema.dev/kvschema/value"
)

func flattenTable(t *testing.T) *keypattern.Table {
	t.Helper()

	table, err := keypattern.NewTable([]keypattern.PatternSpec{
		{Pattern: "{entity}:{id}:{property}[{index}].{aggregate_property}", Label: keypattern.LabelAggProp},
		{Pattern: "{entity}:{id}:{property}[{index}]", Label: keypattern.LabelArr},
		{Pattern: "{entity}:{id}:{property}", Label: keypattern.LabelProp},
	})
	require.NoError(t, err)

	return table
}

func keysOf(parsed []keypattern.Parsed) []string {
	keys := make([]string, len(parsed))
	for i, p := range parsed {
		keys[i] = p.Key
	}

	return keys
}

func TestParseScalarUnmatchedGetsSyntheticIDAndValueProperty(t *testing.T) {
	t.Parallel()

	table := flattenTable(t)
	gen := keypattern.NewCounterIDGenerator()

	parsed := table.Parse("schema_version", value.String("3"), gen)
	require.Len(t, parsed, 1)

	p := parsed[0]
	assert.Equal(t, keypattern.LabelPrimitive, p.Label)
	assert.True(t, p.Components.HasID())
	assert.Equal(t, "value", p.Components.Property)
	assert.True(t, p.SyntheticID)
}

func TestParseScalarMatchedPassesThrough(t *testing.T) {
	t.Parallel()

	table := flattenTable(t)
	gen := keypattern.NewCounterIDGenerator()

	parsed := table.Parse("User:1:name", value.String("Ada"), gen)
	require.Len(t, parsed, 1)
	assert.Equal(t, keypattern.LabelProp, parsed[0].Label)
	assert.Equal(t, value.String("Ada"), parsed[0].Value)
}

func TestParseNestedMapOfMapsSpawnsEntities(t *testing.T) {
	t.Parallel()

	table := flattenTable(t)
	gen := keypattern.NewCounterIDGenerator()

	doc := value.Map(map[string]value.Value{
		"user": value.Map(map[string]value.Value{
			"name": value.String("Ada"),
		}),
		"address": value.Map(map[string]value.Value{
			"city": value.String("London"),
		}),
	})

	parsed := table.Parse("doc:1", doc, gen)

	keys := keysOf(parsed)
	assert.Contains(t, keys, "address:100:city")
	assert.Contains(t, keys, "user:101:name")
}

func TestParseListOfObjectsFlattensPerElementUnderCurrentEntity(t *testing.T) {
	t.Parallel()

	table := flattenTable(t)
	gen := keypattern.NewCounterIDGenerator()

	watched := value.List([]value.Value{
		value.Map(map[string]value.Value{"movie_id": value.Int(42)}),
		value.Map(map[string]value.Value{"movie_id": value.Int(43)}),
	})

	parsed := table.Parse("User:1:watched", watched, gen)
	assert.NotEmpty(t, parsed)

	keys := keysOf(parsed)
	assert.Contains(t, keys, "User:1:watched[0].movie_id")
	assert.Contains(t, keys, "User:1:watched[1].movie_id")
}

func TestParseDiscoversIDFromMatchingPath(t *testing.T) {
	t.Parallel()

	table := flattenTable(t)
	gen := keypattern.NewCounterIDGenerator()

	obj := value.Map(map[string]value.Value{
		"userID": value.Int(42),
		"name":   value.String("Ada"),
	})

	parsed := table.Parse("User", obj, gen)

	for _, p := range parsed {
		assert.Contains(t, p.Key, ":42:")
		assert.False(t, p.SyntheticID)
	}
}

func TestParseFallsBackToSyntheticIDWhenNoMatch(t *testing.T) {
	t.Parallel()

	table := flattenTable(t)
	gen := keypattern.NewCounterIDGenerator()

	obj := value.Map(map[string]value.Value{
		"name": value.String("Ada"),
	})

	parsed := table.Parse("profile", obj, gen)
	require.NotEmpty(t, parsed)
	assert.Contains(t, parsed[0].Key, "profile:100:")
	assert.True(t, parsed[0].SyntheticID)
}
