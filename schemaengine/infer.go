package schemaengine

import (
	"sort"

	"github.com/google/jsonschema-go/jsonschema"
)

// JSON Schema type constants.
const (
	typeBoolean = "boolean"
	typeInteger = "integer"
	typeNumber  = "number"
	typeString  = "string"
	typeArray   = "array"
	typeObject  = "object"
)

// InferSchema maps a decoded object-view value (as produced by
// entity.Instance.ObjectView or entity.BuildNestedStructure) to its
// per-instance JSON Schema: primitive leaves map to their scalar type,
// arrays become `{type:"array", items: merge(item schemas)}`, and objects
// become `{type:"object", properties: {...}}`. A nil leaf carries no type
// constraint (the permissive "true" schema).
func InferSchema(v any) *jsonschema.Schema {
	switch x := v.(type) {
	case nil:
		return TrueSchema()
	case bool:
		return &jsonschema.Schema{Type: typeBoolean}
	case int64:
		return &jsonschema.Schema{Type: typeInteger}
	case int:
		return &jsonschema.Schema{Type: typeInteger}
	case float64:
		return &jsonschema.Schema{Type: typeNumber}
	case string:
		return &jsonschema.Schema{Type: typeString}
	case []any:
		return inferArray(x)
	case map[string]any:
		return inferObject(x)
	default:
		return TrueSchema()
	}
}

func inferArray(items []any) *jsonschema.Schema {
	schema := &jsonschema.Schema{Type: typeArray}

	if len(items) == 0 {
		return schema
	}

	schema.Items = mergeItemSchemas(items)

	return schema
}

// mergeItemSchemas infers a schema per element and, if every element
// canonicalizes identically, emits that one shared schema. Otherwise it
// emits a `oneOf` with one branch per observed element, grouped by type and
// ordered by canonical hash: each type's branches are kept adjacent and
// repeated once per occurrence, so the branch count for a type is the true
// number of elements of that type, not the number of instances that
// produced this array. combineArrayVariants relies on that repetition to
// pick the real per-element majority rather than an instance-count proxy.
func mergeItemSchemas(items []any) *jsonschema.Schema {
	type entry struct {
		schema *jsonschema.Schema
		count  int
	}

	byHash := map[string]*entry{}

	for _, item := range items {
		s := InferSchema(item)
		h := CanonicalHash(s)

		e, ok := byHash[h]
		if !ok {
			e = &entry{schema: s}
			byHash[h] = e
		}

		e.count++
	}

	if len(byHash) == 1 {
		for _, e := range byHash {
			return e.schema
		}
	}

	hashes := make([]string, 0, len(byHash))
	for h := range byHash {
		hashes = append(hashes, h)
	}

	sort.Strings(hashes)

	var branches []*jsonschema.Schema

	for _, h := range hashes {
		e := byHash[h]
		for range e.count {
			branches = append(branches, e.schema)
		}
	}

	return &jsonschema.Schema{OneOf: branches}
}

func inferObject(m map[string]any) *jsonschema.Schema {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}

	sort.Strings(names)

	props := make(map[string]*jsonschema.Schema, len(m))
	for _, name := range names {
		props[name] = InferSchema(m[name])
	}

	return &jsonschema.Schema{
		Type:          typeObject,
		Properties:    props,
		PropertyOrder: names,
	}
}
