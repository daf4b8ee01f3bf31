package store_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kvschema.dev/kvschema/store"
	"kvschema.dev/kvschema/value"
)

func newTestAdapter(t *testing.T) (*store.RedisAdapter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() { _ = client.Close() })

	return store.NewRedisAdapter(client, 10), mr
}

func TestListKeysEnumeratesAllKeys(t *testing.T) {
	t.Parallel()

	adapter, mr := newTestAdapter(t)

	require.NoError(t, mr.Set("a", "1"))
	require.NoError(t, mr.Set("b", "2"))
	require.NoError(t, mr.Set("c", "3"))

	keys, err := adapter.ListKeys(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, keys)
}

func TestGetTypedString(t *testing.T) {
	t.Parallel()

	adapter, mr := newTestAdapter(t)
	require.NoError(t, mr.Set("greeting", "hello"))

	pairs, err := adapter.GetTyped(context.Background(), []string{"greeting"})
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "greeting", pairs[0].Key)
	assert.Equal(t, value.String("hello"), pairs[0].Value)
}

func TestGetTypedStringNonPrintableYieldsNull(t *testing.T) {
	t.Parallel()

	adapter, mr := newTestAdapter(t)
	require.NoError(t, mr.Set("binary", "a\x00b"))

	pairs, err := adapter.GetTyped(context.Background(), []string{"binary"})
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.True(t, pairs[0].Value.IsNull())
}

func TestGetTypedStringNonPrintableLogsDecodeError(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, mr.Set("binary", "a\x00b"))

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	adapter := store.NewRedisAdapter(client, 10, store.WithLogger(logger))

	_, err := adapter.GetTyped(context.Background(), []string{"binary"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "stage=string_printable_check")
	assert.Contains(t, out, "key=binary")
}

func TestGetTypedList(t *testing.T) {
	t.Parallel()

	adapter, mr := newTestAdapter(t)
	mr.Lpush("items", "c")
	mr.Lpush("items", "b")
	mr.Lpush("items", "a")

	pairs, err := adapter.GetTyped(context.Background(), []string{"items"})
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	require.Equal(t, value.KindList, pairs[0].Value.Kind())

	got := pairs[0].Value.ListValue()
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].StringValue())
	assert.Equal(t, "b", got[1].StringValue())
	assert.Equal(t, "c", got[2].StringValue())
}

func TestGetTypedHash(t *testing.T) {
	t.Parallel()

	adapter, mr := newTestAdapter(t)
	_, err := mr.HSet("user:1", "name", "Ada", "age", "30")
	require.NoError(t, err)

	pairs, err := adapter.GetTyped(context.Background(), []string{"user:1"})
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	require.Equal(t, value.KindMap, pairs[0].Value.Kind())

	m := pairs[0].Value.MapValue()
	assert.Equal(t, value.String("Ada"), m["name"])
	assert.Equal(t, value.Int(30), m["age"])
}

func TestGetTypedSet(t *testing.T) {
	t.Parallel()

	adapter, mr := newTestAdapter(t)
	mr.SetAdd("tags", "go", "redis")

	pairs, err := adapter.GetTyped(context.Background(), []string{"tags"})
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, value.KindSet, pairs[0].Value.Kind())
	assert.Len(t, pairs[0].Value.SetValue(), 2)
}

func TestGetTypedZSetWithGeospatialScoreYieldsNull(t *testing.T) {
	t.Parallel()

	adapter, mr := newTestAdapter(t)
	_, err := mr.ZAdd("places", 4e13, "somewhere")
	require.NoError(t, err)

	pairs, getErr := adapter.GetTyped(context.Background(), []string{"places"})
	require.NoError(t, getErr)
	require.Len(t, pairs, 1)
	assert.True(t, pairs[0].Value.IsNull())
}

func TestGetTypedZSetOrdinaryScoreYieldsOrderedList(t *testing.T) {
	t.Parallel()

	adapter, mr := newTestAdapter(t)
	_, err := mr.ZAdd("ranking", 1, "bronze")
	require.NoError(t, err)
	_, err = mr.ZAdd("ranking", 2, "silver")
	require.NoError(t, err)
	_, err = mr.ZAdd("ranking", 3, "gold")
	require.NoError(t, err)

	pairs, getErr := adapter.GetTyped(context.Background(), []string{"ranking"})
	require.NoError(t, getErr)
	require.Len(t, pairs, 1)
	require.Equal(t, value.KindList, pairs[0].Value.Kind())

	got := pairs[0].Value.ListValue()
	require.Len(t, got, 3)
	assert.Equal(t, "bronze", got[0].StringValue())
	assert.Equal(t, "gold", got[2].StringValue())
}

func TestGetTypedUnknownKeyYieldsNull(t *testing.T) {
	t.Parallel()

	adapter, _ := newTestAdapter(t)

	pairs, err := adapter.GetTyped(context.Background(), []string{"missing"})
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.True(t, pairs[0].Value.IsNull())
}

func TestGetTypedPreservesOrderAndCount(t *testing.T) {
	t.Parallel()

	adapter, mr := newTestAdapter(t)
	require.NoError(t, mr.Set("a", "1"))
	require.NoError(t, mr.Set("b", "2"))
	require.NoError(t, mr.Set("c", "3"))

	pairs, err := adapter.GetTyped(context.Background(), []string{"c", "a", "b"})
	require.NoError(t, err)
	require.Len(t, pairs, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{pairs[0].Key, pairs[1].Key, pairs[2].Key})
}
