package schemaengine

import (
	"sort"

	"github.com/google/jsonschema-go/jsonschema"
)

// Engine runs per-instance inference, variant grouping, and variant
// combination across every entity seen by C4, producing the final
// document-wide schema.
type Engine struct{}

// NewEngine returns a ready-to-use Engine. It carries no state: every method
// is a pure function of its arguments, so a single Engine can be shared
// across concurrent per-entity inference calls.
func NewEngine() *Engine {
	return &Engine{}
}

// InferEntity infers a schema per object view, groups the results into
// weighted variants, and combines them into this entity's schema.
func (e *Engine) InferEntity(objectViews []any) *jsonschema.Schema {
	schemas := make([]*jsonschema.Schema, len(objectViews))
	for i, ov := range objectViews {
		schemas[i] = InferSchema(ov)
	}

	return CombineVariants(GroupVariants(schemas))
}

// InferAll runs InferEntity for every entity in byEntity and assembles the
// document-wide schema: `{type: "object", properties: {entity -> schema}}`.
func (e *Engine) InferAll(byEntity map[string][]any) *jsonschema.Schema {
	names := make([]string, 0, len(byEntity))
	for name := range byEntity {
		names = append(names, name)
	}

	sort.Strings(names)

	props := make(map[string]*jsonschema.Schema, len(names))
	for _, name := range names {
		props[name] = e.InferEntity(byEntity[name])
	}

	return &jsonschema.Schema{
		Type:          typeObject,
		Properties:    props,
		PropertyOrder: names,
	}
}
