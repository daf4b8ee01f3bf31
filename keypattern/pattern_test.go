package keypattern_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kvschema.dev/kvschema/keypattern"
)

func testTable(t *testing.T) *keypattern.Table {
	t.Helper()

	table, err := keypattern.NewTable([]keypattern.PatternSpec{
		{Pattern: "{entity}:{id}:{property}[{index}].{aggregate_property}", Label: keypattern.LabelAggProp},
		{Pattern: "{entity}:{id}:{property}[{index}]", Label: keypattern.LabelArr},
		{Pattern: "{entity}:{id}:{property}", Label: keypattern.LabelProp},
	})
	require.NoError(t, err)

	return table
}

func TestTableClassify(t *testing.T) {
	t.Parallel()

	table := testTable(t)

	tcs := map[string]struct {
		key       string
		wantLabel keypattern.Label
		check     func(t *testing.T, c keypattern.Components)
	}{
		"prop": {
			key:       "User:1:name",
			wantLabel: keypattern.LabelProp,
			check: func(t *testing.T, c keypattern.Components) {
				t.Helper()
				assert.Equal(t, "User", c.Entity)
				assert.Equal(t, "1", c.ID)
				assert.Equal(t, "name", c.Property)
			},
		},
		"arr": {
			key:       "User:1:tags[0]",
			wantLabel: keypattern.LabelArr,
			check: func(t *testing.T, c keypattern.Components) {
				t.Helper()
				assert.Equal(t, "0", c.Index)
			},
		},
		"agg_prop": {
			key:       "User:1:watched[0].movie_id",
			wantLabel: keypattern.LabelAggProp,
			check: func(t *testing.T, c keypattern.Components) {
				t.Helper()
				assert.Equal(t, "movie_id", c.AggregateProperty)
			},
		},
		"no match falls back to primitive": {
			key:       "schema_version",
			wantLabel: keypattern.LabelPrimitive,
			check: func(t *testing.T, c keypattern.Components) {
				t.Helper()
				assert.Equal(t, "schema_version", c.Entity)
				assert.False(t, c.HasID())
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			comps, label := table.Classify(tc.key)
			assert.Equal(t, tc.wantLabel, label)
			tc.check(t, comps)
		})
	}
}

func TestTableClassifyFirstMatchWins(t *testing.T) {
	t.Parallel()

	table, err := keypattern.NewTable([]keypattern.PatternSpec{
		{Pattern: "{entity}:{id}:{property}", Label: keypattern.LabelProp},
		{Pattern: "{entity}:{id}:{index}", Label: keypattern.LabelArr},
	})
	require.NoError(t, err)

	_, label := table.Classify("User:1:5")
	assert.Equal(t, keypattern.LabelProp, label)
}

func TestNewTableInvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := keypattern.NewTable([]keypattern.PatternSpec{
		{Pattern: "{entity}:{id}:(", Label: keypattern.LabelProp},
	})
	require.Error(t, err)
}
