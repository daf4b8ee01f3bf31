package keypattern

import (
	"fmt"
	"sort"
	"strings"

	"kvschema.dev/kvschema/fuzzy"
	"kvschema.dev/kvschema/value"
)

// leafPair is one (path, leaf) entry produced by walking a structured value.
type leafPair struct {
	Path string
	Leaf value.Value
}

// RawPair is a synthetic flat key/value pair produced by flattening, ready
// to be re-classified through a [Table].
type RawPair struct {
	Key         string
	Value       value.Value
	IDSynthetic bool
}

// Parsed is a fully classified key: its components, label, and the value it
// carries.
type Parsed struct {
	Key         string
	Value       value.Value
	Label       Label
	Components  Components
	SyntheticID bool
}

// Parse classifies rawKey against t. If rawValue is a structured container,
// it is flattened into one or more synthetic keys (per the flattening
// rules below) and each synthetic key is re-classified in turn; otherwise a
// single Parsed entry is returned for the raw pair itself.
//
// A scalar value that fails to match any pattern (LabelPrimitive) has no
// natural id or property, so one is synthesized: an id from gen and a fixed
// property name of "value", matching the shape every other label carries.
func (t *Table) Parse(rawKey string, rawValue value.Value, gen IDGenerator) []Parsed {
	comps, label := t.Classify(rawKey)

	if !rawValue.IsContainer() {
		synthetic := false

		if label == LabelPrimitive {
			comps = comps.WithID(gen.Next()).WithProperty("value")
			synthetic = true
		}

		return []Parsed{{Key: rawKey, Value: rawValue, Label: label, Components: comps, SyntheticID: synthetic}}
	}

	raws := flattenStructured(comps, rawValue, gen)
	out := make([]Parsed, len(raws))

	for i, r := range raws {
		c, l := t.Classify(r.Key)
		out[i] = Parsed{Key: r.Key, Value: r.Value, Label: l, Components: c, SyntheticID: r.IDSynthetic}
	}

	return out
}

// flattenStructured dispatches on the shape of a structured value, per the
// container-shape rules:
//
//   - a map whose values are all themselves maps spawns one sub-entity per
//     key, named after that key;
//   - any other map is flattened as the properties of the current entity;
//   - a list whose elements are all maps is flattened element by element,
//     recursing into the "map of maps" rule per element;
//   - any other list (scalars, or a mix) is flattened as an indexed
//     property of the current entity;
//   - a bare scalar is flattened as a single property.
func flattenStructured(comps Components, v value.Value, gen IDGenerator) []RawPair {
	switch v.Kind() {
	case value.KindMap:
		m := v.MapValue()
		if allValuesAreMaps(m) {
			return flattenMapOfMaps(m, gen)
		}

		return flattenObject(comps, v, gen)

	case value.KindList, value.KindSet:
		items := listItems(v)
		if allItemsAreMaps(items) {
			var out []RawPair

			for i, item := range items {
				m := item.MapValue()
				if allValuesAreMaps(m) {
					out = append(out, flattenMapOfMaps(m, gen)...)
				} else {
					itemComps := comps
					if comps.HasProperty() {
						itemComps = comps.WithIndex(fmt.Sprintf("%d", i))
					}

					out = append(out, flattenObject(itemComps, item, gen)...)
				}
			}

			return out
		}

		return flattenObject(comps, v, gen)

	default:
		return flattenObject(comps, v, gen)
	}
}

// flattenMapOfMaps treats each top-level key of m as the name of its own
// entity and flattens the corresponding sub-object under it.
func flattenMapOfMaps(m map[string]value.Value, gen IDGenerator) []RawPair {
	var out []RawPair

	for _, name := range sortedKeys(m) {
		out = append(out, flattenObject(Components{}.WithEntity(name), m[name], gen)...)
	}

	return out
}

// flattenObject walks obj's leaves and composes one synthetic flat key per
// leaf, following the key format:
//
//	entity:id:path                             (no property bound)
//	entity:id:property[i]...                   (obj is itself a list)
//	entity:id:property.subpath                 (obj is a map, no index)
//	entity:id:property[index].subpath          (obj is a map, with index)
//
// The id is taken from comps if bound; otherwise the leaf path best
// matching "{entity}ID" (score > [fuzzy.DefaultThreshold]) supplies the id
// value, with ties broken by first occurrence; if nothing matches, gen
// synthesizes one.
func flattenObject(comps Components, obj value.Value, gen IDGenerator) []RawPair {
	pairs := getLeafPairs(obj)

	id := comps.ID
	synthetic := false

	if !comps.HasID() {
		id, synthetic = discoverID(comps.Entity, pairs, gen)
	}

	out := make([]RawPair, 0, len(pairs))

	for _, p := range pairs {
		var key strings.Builder

		key.WriteString(comps.Entity)
		key.WriteByte(':')
		key.WriteString(id)

		switch {
		case comps.HasProperty() && (obj.Kind() == value.KindList || obj.Kind() == value.KindSet):
			key.WriteByte(':')
			key.WriteString(comps.Property)
			key.WriteString(p.Path)

		case comps.HasProperty():
			key.WriteByte(':')
			key.WriteString(comps.Property)

			if comps.HasIndex() {
				key.WriteByte('[')
				key.WriteString(comps.Index)
				key.WriteByte(']')
			}

			key.WriteByte('.')
			key.WriteString(p.Path)

		default:
			key.WriteByte(':')
			key.WriteString(p.Path)
		}

		out = append(out, RawPair{Key: key.String(), Value: p.Leaf, IDSynthetic: synthetic})
	}

	return out
}

// discoverID searches pairs for the leaf path best matching "{entity}ID"
// and, above threshold, returns that leaf's value rendered as a string. It
// falls back to gen when no candidate clears the threshold, reporting that
// fallback via its second return value so callers can flag the instance.
func discoverID(entity string, pairs []leafPair, gen IDGenerator) (string, bool) {
	target := entity + "ID"

	best := -1
	bestScore := fuzzy.DefaultThreshold

	for i, p := range pairs {
		score := fuzzy.Ratio(target, p.Path)
		if score > bestScore {
			bestScore = score
			best = i
		}
	}

	if best >= 0 {
		return stringifyLeaf(pairs[best].Leaf), false
	}

	return gen.Next(), true
}

func stringifyLeaf(v value.Value) string {
	switch v.Kind() {
	case value.KindString:
		return v.StringValue()
	case value.KindInt:
		return fmt.Sprintf("%d", v.IntValue())
	case value.KindFloat:
		return fmt.Sprintf("%v", v.FloatValue())
	case value.KindBool:
		return fmt.Sprintf("%v", v.BoolValue())
	default:
		return ""
	}
}

// getLeafPairs walks v, emitting one leafPair per scalar reached, with a
// "." path for map descent and a "[i]" path for list/set indices. Map keys
// are visited in sorted order so flattening is reproducible across runs.
func getLeafPairs(v value.Value) []leafPair {
	var out []leafPair

	var walk func(v value.Value, parent string)

	walk = func(v value.Value, parent string) {
		switch v.Kind() {
		case value.KindMap:
			m := v.MapValue()
			for _, k := range sortedKeys(m) {
				child := k
				if parent != "" {
					child = parent + "." + k
				}

				walk(m[k], child)
			}

		case value.KindList, value.KindSet:
			for i, item := range listItems(v) {
				walk(item, fmt.Sprintf("%s[%d]", parent, i))
			}

		default:
			out = append(out, leafPair{Path: parent, Leaf: v})
		}
	}

	walk(v, "")

	return out
}

func listItems(v value.Value) []value.Value {
	if v.Kind() == value.KindSet {
		return v.SetValue()
	}

	return v.ListValue()
}

func allValuesAreMaps(m map[string]value.Value) bool {
	if len(m) == 0 {
		return false
	}

	for _, v := range m {
		if v.Kind() != value.KindMap {
			return false
		}
	}

	return true
}

func allItemsAreMaps(items []value.Value) bool {
	if len(items) == 0 {
		return false
	}

	for _, v := range items {
		if v.Kind() != value.KindMap {
			return false
		}
	}

	return true
}

func sortedKeys(m map[string]value.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
