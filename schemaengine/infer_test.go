package schemaengine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kvschema.dev/kvschema/schemaengine"
)

func TestInferSchemaPrimitives(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		v        any
		wantType string
	}{
		"bool":   {true, "boolean"},
		"int":    {int64(42), "integer"},
		"float":  {3.5, "number"},
		"string": {"hi", "string"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s := schemaengine.InferSchema(tc.v)
			assert.Equal(t, tc.wantType, s.Type)
		})
	}
}

func TestInferSchemaObject(t *testing.T) {
	t.Parallel()

	s := schemaengine.InferSchema(map[string]any{
		"name": "Ada",
		"age":  int64(30),
	})

	assert.Equal(t, "object", s.Type)
	require.Contains(t, s.Properties, "name")
	require.Contains(t, s.Properties, "age")
	assert.Equal(t, "string", s.Properties["name"].Type)
	assert.Equal(t, "integer", s.Properties["age"].Type)
	assert.Equal(t, []string{"age", "name"}, s.PropertyOrder)
}

func TestInferSchemaArrayUniformItems(t *testing.T) {
	t.Parallel()

	s := schemaengine.InferSchema([]any{"a", "b", "c"})
	assert.Equal(t, "array", s.Type)
	require.NotNil(t, s.Items)
	assert.Equal(t, "string", s.Items.Type)
	assert.Empty(t, s.Items.OneOf)
}

func TestInferSchemaArrayMixedItemsProducesOneOf(t *testing.T) {
	t.Parallel()

	s := schemaengine.InferSchema([]any{"a", int64(1)})
	assert.Equal(t, "array", s.Type)
	require.NotNil(t, s.Items)
	assert.Len(t, s.Items.OneOf, 2)
}

func TestInferSchemaEmptyArrayHasNoItems(t *testing.T) {
	t.Parallel()

	s := schemaengine.InferSchema([]any{})
	assert.Equal(t, "array", s.Type)
	assert.Nil(t, s.Items)
}

func TestCanonicalHashIsOrderIndependent(t *testing.T) {
	t.Parallel()

	a := schemaengine.InferSchema(map[string]any{"x": "1", "y": int64(2)})
	b := schemaengine.InferSchema(map[string]any{"y": int64(2), "x": "1"})

	assert.Equal(t, schemaengine.CanonicalHash(a), schemaengine.CanonicalHash(b))
}
