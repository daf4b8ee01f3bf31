package schemaengine

import (
	"sort"

	"github.com/google/jsonschema-go/jsonschema"
)

// Variant is one distinct schema shape observed across an entity's
// instances, with the number of instances that produced it.
type Variant struct {
	Schema *jsonschema.Schema
	Count  int
}

// GroupVariants canonicalizes and MD5-hashes each schema, collapsing
// duplicates into (schema, count) variants. Variants are returned in
// first-seen order, for deterministic dominant-type tie-breaking downstream.
func GroupVariants(schemas []*jsonschema.Schema) []Variant {
	type entry struct {
		schema *jsonschema.Schema
		count  int
	}

	byHash := map[string]*entry{}

	var order []string

	for _, s := range schemas {
		h := CanonicalHash(s)

		e, ok := byHash[h]
		if !ok {
			e = &entry{schema: s}
			byHash[h] = e
			order = append(order, h)
		}

		e.count++
	}

	out := make([]Variant, len(order))
	for i, h := range order {
		out[i] = Variant{Schema: byHash[h].schema, Count: byHash[h].count}
	}

	return out
}

// CombineVariants folds a weighted set of schema variants for one entity
// into a single schema, per the combination rules: when every variant
// declares the same type, combine structurally (objects union properties
// and intersect required, arrays flatten and recombine item schemas);
// otherwise the dominant type (by total observation count) wins outright.
func CombineVariants(variants []Variant) *jsonschema.Schema {
	if len(variants) == 0 {
		return TrueSchema()
	}

	total := 0
	for _, v := range variants {
		total += v.Count
	}

	same, t := sameType(variants)
	if !same {
		return &jsonschema.Schema{Type: dominantType(variants)}
	}

	switch t {
	case typeObject:
		return combineObjectVariants(variants, total)
	case typeArray:
		return combineArrayVariants(variants, total)
	default:
		return &jsonschema.Schema{Type: t}
	}
}

func sameType(variants []Variant) (bool, string) {
	t := variants[0].Schema.Type

	for _, v := range variants[1:] {
		if v.Schema.Type != t {
			return false, ""
		}
	}

	return true, t
}

// dominantType returns the type with the highest total observation count,
// tie-broken by first occurrence in variants.
func dominantType(variants []Variant) string {
	counts := map[string]int{}

	var order []string

	for _, v := range variants {
		t := v.Schema.Type
		if _, ok := counts[t]; !ok {
			order = append(order, t)
		}

		counts[t] += v.Count
	}

	best := order[0]
	for _, t := range order[1:] {
		if counts[t] > counts[best] {
			best = t
		}
	}

	return best
}

// combineObjectVariants unions property names across variants, recursively
// combining each property's own sub-variants, and marks a property required
// only when its presence count across variants equals the group total.
func combineObjectVariants(variants []Variant, total int) *jsonschema.Schema {
	names := map[string]struct{}{}
	for _, v := range variants {
		for name := range v.Schema.Properties {
			names[name] = struct{}{}
		}
	}

	order := make([]string, 0, len(names))
	for name := range names {
		order = append(order, name)
	}

	sort.Strings(order)

	props := make(map[string]*jsonschema.Schema, len(order))

	var required []string

	for _, name := range order {
		var sub []Variant

		presentCount := 0

		for _, v := range variants {
			s, ok := v.Schema.Properties[name]
			if !ok {
				continue
			}

			sub = append(sub, Variant{Schema: s, Count: v.Count})
			presentCount += v.Count
		}

		props[name] = CombineVariants(sub)

		if presentCount == total {
			required = append(required, name)
		}
	}

	return &jsonschema.Schema{
		Type:          typeObject,
		Properties:    props,
		PropertyOrder: order,
		Required:      required,
	}
}

// combineArrayVariants flattens any `oneOf` item schemas across variants,
// recombines the object-typed item variants if any exist, and otherwise
// picks the highest-count primitive item type (defaulting to "string" when
// no items were observed at all). Each `oneOf` branch is weighted by its
// owning variant's instance count, and mergeItemSchemas already repeats a
// branch once per element of that type, so for mixed-type arrays the
// resulting primitive counts reflect per-element frequency. An array whose
// elements all share one schema carries a single items schema with no
// element count, so it adds one vote per instance.
func combineArrayVariants(variants []Variant, _ int) *jsonschema.Schema {
	type weighted struct {
		schema *jsonschema.Schema
		count  int
	}

	var flattened []weighted

	for _, v := range variants {
		items := v.Schema.Items
		if items == nil {
			continue
		}

		if len(items.OneOf) > 0 {
			for _, sub := range items.OneOf {
				flattened = append(flattened, weighted{schema: sub, count: v.Count})
			}

			continue
		}

		flattened = append(flattened, weighted{schema: items, count: v.Count})
	}

	var objectVariants []Variant

	primitiveCounts := map[string]int{}

	var primitiveOrder []string

	for _, w := range flattened {
		if w.schema == nil {
			continue
		}

		if w.schema.Type == typeObject {
			objectVariants = append(objectVariants, Variant{Schema: w.schema, Count: w.count})
			continue
		}

		if _, ok := primitiveCounts[w.schema.Type]; !ok {
			primitiveOrder = append(primitiveOrder, w.schema.Type)
		}

		primitiveCounts[w.schema.Type] += w.count
	}

	var items *jsonschema.Schema

	switch {
	case len(objectVariants) > 0:
		items = CombineVariants(objectVariants)
	case len(primitiveOrder) > 0:
		best := primitiveOrder[0]
		for _, t := range primitiveOrder[1:] {
			if primitiveCounts[t] > primitiveCounts[best] {
				best = t
			}
		}

		items = &jsonschema.Schema{Type: best}
	default:
		items = &jsonschema.Schema{Type: typeString}
	}

	return &jsonschema.Schema{Type: typeArray, Items: items}
}
