package entity

import (
	"regexp"
	"strconv"
	"strings"

	"kvschema.dev/kvschema/value"
)

// keySeparators splits a flat key the same way the pattern table's
// placeholders delimit components: on `:`, `/`, or `.`.
var keySeparators = regexp.MustCompile(`[:/.]`)

var uuidRE = regexp.MustCompile(`^[0-9A-Fa-f]{8}(-[0-9A-Fa-f]{4}){3}-[0-9A-Fa-f]{12}`)

var digitsRE = regexp.MustCompile(`^\d+$`)

var arraySegmentRE = regexp.MustCompile(`^(\w+)\[(\d+)\]$`)

func isIDToken(token string) bool {
	return digitsRE.MatchString(token) || uuidRE.MatchString(token)
}

// RawPair is a raw (unclassified) key/value pair, as read straight from the
// store normalization stage, for the alternative grouping path.
type RawPair struct {
	Key   string
	Value value.Value
}

// idGroupKey identifies one group under the alternative id-path grouper: the
// path segments up to and including the first id-like token (or just the
// first segment, when no id token exists anywhere in the key).
type idGroupKey struct {
	prefix  []string
	idLevel int
	hasID   bool
}

func (g idGroupKey) mapKey() string {
	return strings.Join(g.prefix, "\x00") + "\x00" + strconv.Itoa(g.idLevel) + "\x00" + strconv.FormatBool(g.hasID)
}

// entityID returns the id token bound by the group, when present.
func (g idGroupKey) entityID() string {
	if !g.hasID || len(g.prefix) == 0 {
		return ""
	}

	return g.prefix[len(g.prefix)-1]
}

// findIDPath scans segments for the first id-like token and returns the
// group it belongs to: the path up to and including that token. If no
// segment is an id token, every key sharing the first segment falls into
// one shared, id-less group.
func findIDPath(segments []string) idGroupKey {
	for i, seg := range segments {
		if isIDToken(seg) {
			prefix := make([]string, i+1)
			copy(prefix, segments[:i+1])

			return idGroupKey{prefix: prefix, idLevel: i + 1, hasID: true}
		}
	}

	first := ""
	if len(segments) > 0 {
		first = segments[0]
	}

	return idGroupKey{prefix: []string{first}, idLevel: 1, hasID: false}
}

// GroupByIDPath partitions pairs by their inferred id path: the prefix of
// segments (split on `:`, `/`, `.`) up to the first numeric-or-UUID token.
// Keys with no id-like token anywhere share one group per distinct leading
// segment.
func GroupByIDPath(pairs []RawPair) map[string][]RawPair {
	groups := map[string][]RawPair{}

	for _, p := range pairs {
		segments := keySeparators.Split(p.Key, -1)
		g := findIDPath(segments)
		k := g.mapKey()
		groups[k] = append(groups[k], p)
	}

	return groups
}

// BuildNestedStructure walks one id-path group's raw keys and assembles a
// single nested object: a `name[idx]` segment creates or extends an array,
// any other segment nests into an object, and a key terminating at the id
// segment either merges a mapping leaf into the current object or records it
// under the reserved "value" key. Empty containers are pruned from the
// result.
func BuildNestedStructure(groupKey string, pairs []RawPair) map[string]any {
	g := decodeGroupKey(groupKey)

	obj := map[string]any{}

	for _, p := range pairs {
		segments := keySeparators.Split(p.Key, -1)
		current := obj

		for i, seg := range segments {
			pos := i + 1

			if g.hasID && pos == g.idLevel {
				if _, ok := current["id"]; !ok {
					current["id"] = value.Normalize(g.entityID()).Any()
				}

				if pos == len(segments) {
					addTerminalValue(current, p.Value.Any())
				}

				continue
			}

			current = processSegment(current, seg, p.Value.Any(), pos, len(segments))
		}
	}

	return removeEmptyContainers(obj).(map[string]any)
}

// decodeGroupKey rebuilds an idGroupKey from the string produced by
// idGroupKey.mapKey, which is the only thing callers have after a map
// lookup by [GroupByIDPath]'s returned key.
func decodeGroupKey(k string) idGroupKey {
	parts := strings.Split(k, "\x00")
	if len(parts) < 3 {
		return idGroupKey{}
	}

	hasID := parts[len(parts)-1] == "true"
	idLevel, _ := strconv.Atoi(parts[len(parts)-2]) //nolint:errcheck // produced by mapKey, always well-formed.
	prefix := parts[:len(parts)-2]

	return idGroupKey{prefix: prefix, idLevel: idLevel, hasID: hasID}
}

func addTerminalValue(current map[string]any, v any) {
	if m, ok := v.(map[string]any); ok {
		for k, sub := range m {
			current[k] = sub
		}

		return
	}

	current["value"] = v
}

func processSegment(current map[string]any, segment string, leaf any, pos, total int) map[string]any {
	if m := arraySegmentRE.FindStringSubmatch(segment); m != nil {
		idx, _ := strconv.Atoi(m[2]) //nolint:errcheck // digits guaranteed by arraySegmentRE.
		return handleArraySegment(current, m[1], idx, leaf, pos, total)
	}

	return handleObjectSegment(current, segment, leaf, pos, total)
}

// handleArraySegment grows current[key] (creating it if absent) to hold
// index idx, padding intermediate slots with empty objects, matching the
// original's append-until-long-enough growth.
func handleArraySegment(current map[string]any, key string, idx int, leaf any, pos, total int) map[string]any {
	arr, _ := current[key].([]any)

	for len(arr) <= idx {
		arr = append(arr, map[string]any{})
	}

	current[key] = arr

	if pos == total {
		arr[idx] = leaf

		return current
	}

	m, ok := arr[idx].(map[string]any)
	if !ok {
		m = map[string]any{}
		arr[idx] = m
	}

	return m
}

func handleObjectSegment(current map[string]any, segment string, leaf any, pos, total int) map[string]any {
	if pos == total {
		current[segment] = leaf

		return current
	}

	m, ok := current[segment].(map[string]any)
	if !ok {
		m = map[string]any{}
		current[segment] = m
	}

	return m
}

// removeEmptyContainers recursively drops map/slice entries that are empty
// containers themselves after pruning, leaving scalars untouched.
func removeEmptyContainers(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := map[string]any{}

		for k, sub := range x {
			if !isContainer(sub) {
				out[k] = sub
				continue
			}

			pruned := removeEmptyContainers(sub)
			if isEmptyContainer(pruned) {
				continue
			}

			out[k] = pruned
		}

		return out

	case []any:
		out := []any{}

		for _, sub := range x {
			if !isContainer(sub) {
				out = append(out, sub)
				continue
			}

			pruned := removeEmptyContainers(sub)
			if isEmptyContainer(pruned) {
				continue
			}

			out = append(out, pruned)
		}

		return out

	default:
		return v
	}
}

func isContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}

func isEmptyContainer(v any) bool {
	switch x := v.(type) {
	case map[string]any:
		return len(x) == 0
	case []any:
		return len(x) == 0
	default:
		return false
	}
}
