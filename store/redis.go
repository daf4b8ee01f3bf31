package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"unicode"
	"unicode/utf8"

	"github.com/redis/go-redis/v9"

	"kvschema.dev/kvschema/value"
)

// geospatialScoreCeiling is the zset-score threshold above which a sorted
// set is assumed to hold geospatial data (GEOADD scores are 52-bit geohash
// integers, far larger than any plausible ranking score) and is discarded.
const geospatialScoreCeiling = 1e13

// RedisAdapter implements [Adapter] against a Redis-compatible server via
// github.com/redis/go-redis/v9.
type RedisAdapter struct {
	client    redis.Cmdable
	batchSize int64
	logger    *slog.Logger
}

// Option configures a RedisAdapter.
type Option func(*RedisAdapter)

// WithLogger sets the logger a RedisAdapter uses to report per-key decode
// failures (default [slog.Default]).
func WithLogger(logger *slog.Logger) Option {
	return func(a *RedisAdapter) { a.logger = logger }
}

// NewRedisAdapter returns a RedisAdapter scanning with the given cursor
// batch size (SCAN's COUNT hint).
func NewRedisAdapter(client redis.Cmdable, batchSize int64, opts ...Option) *RedisAdapter {
	if batchSize <= 0 {
		batchSize = 1000
	}

	a := &RedisAdapter{client: client, batchSize: batchSize, logger: slog.Default()}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// ListKeys enumerates every key via cursor-based SCAN iteration.
func (a *RedisAdapter) ListKeys(ctx context.Context) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)

	for {
		batch, next, err := a.client.Scan(ctx, cursor, "*", a.batchSize).Result()
		if err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}

		keys = append(keys, batch...)
		cursor = next

		if cursor == 0 {
			break
		}
	}

	return keys, nil
}

// GetTyped resolves keys to their typed, normalized values. It issues one
// pipelined TYPE probe per key, then one pipelined per-type fetch command,
// matching the "N type probes, then N value fetches" batching contract.
func (a *RedisAdapter) GetTyped(ctx context.Context, keys []string) ([]RawPair, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	tags, err := a.probeTypes(ctx, keys)
	if err != nil {
		return nil, err
	}

	return a.fetchValues(ctx, keys, tags)
}

func (a *RedisAdapter) probeTypes(ctx context.Context, keys []string) ([]TypeTag, error) {
	pipe := a.client.Pipeline()

	cmds := make([]*redis.StatusCmd, len(keys))
	for i, k := range keys {
		cmds[i] = pipe.Type(ctx, k)
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("store: type probe: %w", err)
	}

	tags := make([]TypeTag, len(keys))
	for i, cmd := range cmds {
		tags[i] = normalizeTypeTag(cmd.Val())
	}

	return tags, nil
}

func normalizeTypeTag(redisType string) TypeTag {
	switch redisType {
	case "string":
		return TypeString
	case "list":
		return TypeList
	case "set":
		return TypeSet
	case "hash":
		return TypeHash
	case "zset":
		return TypeZSet
	case "ReJSON-RL":
		return TypeJSON
	default:
		return TypeUnknown
	}
}

type fetchCmd struct {
	key string
	tag TypeTag

	stringCmd *redis.StringCmd
	listCmd   *redis.StringSliceCmd
	setCmd    *redis.StringSliceCmd
	hashCmd   *redis.MapStringStringCmd
	zsetCmd   *redis.ZSliceCmd
	jsonCmd   *redis.Cmd
}

func (a *RedisAdapter) fetchValues(ctx context.Context, keys []string, tags []TypeTag) ([]RawPair, error) {
	pipe := a.client.Pipeline()

	fetches := make([]fetchCmd, len(keys))
	for i, k := range keys {
		f := fetchCmd{key: k, tag: tags[i]}

		switch tags[i] {
		case TypeString:
			f.stringCmd = pipe.Get(ctx, k)
		case TypeList:
			f.listCmd = pipe.LRange(ctx, k, 0, -1)
		case TypeSet:
			f.setCmd = pipe.SMembers(ctx, k)
		case TypeHash:
			f.hashCmd = pipe.HGetAll(ctx, k)
		case TypeZSet:
			f.zsetCmd = pipe.ZRangeWithScores(ctx, k, 0, -1)
		case TypeJSON:
			f.jsonCmd = pipe.Do(ctx, "JSON.GET", k)
		}

		fetches[i] = f
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		// A Redis error reply belongs to one key and is demoted to null by
		// decodeFetch; any other error (connection, context) fails the batch.
		var replyErr redis.Error
		if !errors.As(err, &replyErr) {
			return nil, fmt.Errorf("store: value fetch: %w", err)
		}
	}

	pairs := make([]RawPair, len(keys))
	for i, f := range fetches {
		pairs[i] = RawPair{Key: f.key, Value: a.decodeFetch(f)}
	}

	return pairs, nil
}

// logDecodeError emits the single diagnostic line a swallowed per-key
// decode failure owes: the failing stage and key, demoting that key to
// null without failing the batch.
func (a *RedisAdapter) logDecodeError(stage, key string, err error) {
	attrs := []any{slog.String("stage", stage), slog.String("key", key)}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
	}

	a.logger.Warn("decode error, demoting to null", attrs...)
}

// decodeFetch applies the per-type handling table to one pipelined fetch
// result. Any decode failure yields null for that key rather than failing
// the batch, after logging the failing stage and key.
func (a *RedisAdapter) decodeFetch(f fetchCmd) value.Value {
	switch f.tag {
	case TypeString:
		s, err := f.stringCmd.Result()
		if err != nil {
			a.logDecodeError("string_fetch", f.key, err)
			return value.Null()
		}

		if !isFullyPrintable(s) {
			a.logDecodeError("string_printable_check", f.key, nil)
			return value.Null()
		}

		return value.Normalize(s)

	case TypeList:
		elems, err := f.listCmd.Result()
		if err != nil {
			a.logDecodeError("list_fetch", f.key, err)
			return value.Null()
		}

		return stringsToList(elems)

	case TypeSet:
		members, err := f.setCmd.Result()
		if err != nil {
			a.logDecodeError("set_fetch", f.key, err)
			return value.Null()
		}

		return stringsToSet(members)

	case TypeHash:
		m, err := f.hashCmd.Result()
		if err != nil {
			a.logDecodeError("hash_fetch", f.key, err)
			return value.Null()
		}

		out := make(map[string]value.Value, len(m))
		for k, v := range m {
			out[k] = value.Normalize(v)
		}

		return value.Map(out)

	case TypeZSet:
		members, err := f.zsetCmd.Result()
		if err != nil {
			a.logDecodeError("zset_fetch", f.key, err)
			return value.Null()
		}

		for _, m := range members {
			if m.Score > geospatialScoreCeiling {
				a.logDecodeError("zset_geospatial_guard", f.key, nil)
				return value.Null()
			}
		}

		elems := make([]string, len(members))
		for i, m := range members {
			elems[i] = fmt.Sprint(m.Member)
		}

		return stringsToList(elems)

	case TypeJSON:
		raw, err := f.jsonCmd.Result()
		if err != nil {
			a.logDecodeError("json_fetch", f.key, err)
			return value.Null()
		}

		v, ok := decodeJSONRoot(raw)
		if !ok {
			a.logDecodeError("json_decode", f.key, nil)
		}

		return v

	default:
		a.logDecodeError("type_probe", f.key, nil)
		return value.Null()
	}
}

func stringsToList(elems []string) value.Value {
	out := make([]value.Value, len(elems))
	for i, e := range elems {
		out[i] = value.Normalize(e)
	}

	return value.List(out)
}

func stringsToSet(elems []string) value.Value {
	out := make([]value.Value, len(elems))
	for i, e := range elems {
		out[i] = value.Normalize(e)
	}

	return value.Set(out)
}

// decodeJSONRoot decodes a JSON.GET result and unwraps a single-element
// wrapping list (RedisJSON's path-match envelope), per the "fetch at
// document root; unwrap the single-element wrapping list" rule.
func decodeJSONRoot(raw any) (value.Value, bool) {
	s, ok := raw.(string)
	if !ok {
		return value.Null(), false
	}

	var decoded any
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		return value.Null(), false
	}

	if arr, ok := decoded.([]any); ok && len(arr) == 1 {
		decoded = arr[0]
	}

	return value.FromAny(decoded), true
}

// isFullyPrintable reports whether s decodes as valid UTF-8 with no
// non-printable byte/rune, per C1's string-type handling rule.
func isFullyPrintable(s string) bool {
	for _, r := range s {
		if r == utf8.RuneError {
			return false
		}

		if !unicode.IsPrint(r) {
			return false
		}
	}

	return true
}
