package entity

import (
	"sort"
	"strconv"
	"strings"

	"kvschema.dev/kvschema/value"
)

// ObjectView renders inst as a decoded `any` object, suitable as input to
// the JSON-Schema engine's per-instance inference: attributes become plain
// keys, a 1:1 aggregate becomes a nested object, and an aggregate array
// becomes a slice ordered by its index-key's numeric suffix. A bare Arr
// slot (one recorded under [ValueKey] only) flattens to its scalar value
// rather than a single-key wrapper object.
func (inst *Instance) ObjectView() map[string]any {
	out := make(map[string]any, len(inst.Attributes)+len(inst.Aggregates)+len(inst.AggregateArrays))

	for name, v := range inst.Attributes {
		out[name] = v.Any()
	}

	for name, agg := range inst.Aggregates {
		out[name] = valueMapToAny(agg)
	}

	for name, arr := range inst.AggregateArrays {
		out[name] = aggregateArraySlice(arr)
	}

	return out
}

func valueMapToAny(m map[string]value.Value) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.Any()
	}

	return out
}

func aggregateArraySlice(arr map[string]map[string]value.Value) []any {
	type slot struct {
		index int
		entry map[string]value.Value
	}

	slots := make([]slot, 0, len(arr))
	for indexKey, entry := range arr {
		slots = append(slots, slot{index: indexSuffix(indexKey), entry: entry})
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].index < slots[j].index })

	out := make([]any, len(slots))

	for i, s := range slots {
		if v, ok := s.entry[ValueKey]; ok && len(s.entry) == 1 {
			out[i] = v.Any()
			continue
		}

		out[i] = valueMapToAny(s.entry)
	}

	return out
}

// indexSuffix parses the numeric index out of an "{id}.{index}" index-key.
func indexSuffix(indexKey string) int {
	i := strings.LastIndex(indexKey, ".")
	if i < 0 {
		return 0
	}

	n, err := strconv.Atoi(indexKey[i+1:])
	if err != nil {
		return 0
	}

	return n
}
