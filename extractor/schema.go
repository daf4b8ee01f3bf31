package extractor

import (
	"github.com/google/jsonschema-go/jsonschema"

	"kvschema.dev/kvschema/entity"
	"kvschema.dev/kvschema/schemaengine"
)

// Variant is one (schema, count) pair from a per-entity variant grouping,
// for the optional output_schema_variations.json export.
type Variant struct {
	Entity string
	Schema *jsonschema.Schema
	Count  int
}

// BuildSchema runs C5a over assembler's output: every instance's
// [entity.Instance.ObjectView] feeds the JSON-Schema engine's per-instance
// inference, variant grouping, and variant combination, producing the
// document-wide schema.
func BuildSchema(assembler *entity.Assembler) *jsonschema.Schema {
	byEntity := objectViewsByEntity(assembler)

	return schemaengine.NewEngine().InferAll(byEntity)
}

// BuildSchemaVariations runs only the per-instance-inference and
// variant-grouping steps, returning the per-entity variant list the
// optional output_schema_variations.json export needs (before the
// variants are combined into one schema per entity).
func BuildSchemaVariations(assembler *entity.Assembler) map[string][]Variant {
	byEntity := objectViewsByEntity(assembler)
	out := make(map[string][]Variant, len(byEntity))

	for name, views := range byEntity {
		schemas := make([]*jsonschema.Schema, len(views))
		for i, v := range views {
			schemas[i] = schemaengine.InferSchema(v)
		}

		for _, variant := range schemaengine.GroupVariants(schemas) {
			out[name] = append(out[name], Variant{Entity: name, Schema: variant.Schema, Count: variant.Count})
		}
	}

	return out
}

func objectViewsByEntity(assembler *entity.Assembler) map[string][]any {
	byEntity := assembler.ByEntity()

	out := make(map[string][]any, len(byEntity))
	for name, instances := range byEntity {
		views := make([]any, len(instances))
		for i, inst := range instances {
			views[i] = inst.ObjectView()
		}

		out[name] = views
	}

	return out
}
