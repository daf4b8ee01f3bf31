package entity

import (
	"sort"

	"kvschema.dev/kvschema/keypattern"
	"kvschema.dev/kvschema/value"
)

// ValueKey is the reserved aggregate_property used for an aggregate-array
// slot that carries a bare reference value rather than a named sub-property
// (the Arr label destination: "aggregate_array (property -> (index-key ->
// (null, value)))").
const ValueKey = ""

// Instance is one (entity, id) group's assembled attributes, 1:1 aggregates,
// and 1:N aggregate arrays.
type Instance struct {
	Entity string
	ID     string

	// SyntheticID is true when ID was synthesized by an IDGenerator rather
	// than discovered in or bound from the source keys.
	SyntheticID bool

	// Attributes holds (property, value) pairs from Prop and Primitive
	// labels.
	Attributes map[string]value.Value

	// Aggregates holds, per aggregate name, (aggregate_property, value)
	// pairs from AggProp labels.
	Aggregates map[string]map[string]value.Value

	// AggregateArrays holds, per aggregate-array name, an index-key
	// ("{id}.{index}") to (aggregate_property, value) map. A bare Arr
	// reference is recorded under ValueKey.
	AggregateArrays map[string]map[string]map[string]value.Value
}

func newInstance(entity, id string) *Instance {
	return &Instance{
		Entity:          entity,
		ID:              id,
		Attributes:      map[string]value.Value{},
		Aggregates:      map[string]map[string]value.Value{},
		AggregateArrays: map[string]map[string]map[string]value.Value{},
	}
}

// Assembler groups parsed key/value pairs into [Instance] values keyed by
// (entity, id), preserving first-seen group order.
type Assembler struct {
	instances map[string]*Instance
	order     []string
}

// NewAssembler returns an empty Assembler.
func NewAssembler() *Assembler {
	return &Assembler{instances: map[string]*Instance{}}
}

// Add dispatches one classified pair into its (entity, id) instance per the
// label destination table.
func (a *Assembler) Add(p keypattern.Parsed) {
	c := p.Components

	groupKey := c.Entity + "\x00" + c.ID

	inst, ok := a.instances[groupKey]
	if !ok {
		inst = newInstance(c.Entity, c.ID)
		a.instances[groupKey] = inst
		a.order = append(a.order, groupKey)
	}

	if p.SyntheticID {
		inst.SyntheticID = true
	}

	switch p.Label {
	case keypattern.LabelProp, keypattern.LabelPrimitive:
		inst.Attributes[c.Property] = p.Value

	case keypattern.LabelAggProp:
		agg, ok := inst.Aggregates[c.Property]
		if !ok {
			agg = map[string]value.Value{}
			inst.Aggregates[c.Property] = agg
		}

		agg[c.AggregateProperty] = p.Value

	case keypattern.LabelArr:
		slot := indexKey(inst.ID, c.Index)
		arr := inst.aggregateArray(c.Property)
		arr[slot] = map[string]value.Value{ValueKey: p.Value}

	case keypattern.LabelArrProp:
		slot := indexKey(inst.ID, c.Index)
		arr := inst.aggregateArray(c.Property)

		entry, ok := arr[slot]
		if !ok {
			entry = map[string]value.Value{}
			arr[slot] = entry
		}

		entry[c.AggregateProperty] = p.Value
	}
}

func (inst *Instance) aggregateArray(name string) map[string]map[string]value.Value {
	arr, ok := inst.AggregateArrays[name]
	if !ok {
		arr = map[string]map[string]value.Value{}
		inst.AggregateArrays[name] = arr
	}

	return arr
}

func indexKey(id, index string) string {
	return id + "." + index
}

// Instances returns the assembled instances in first-seen group order.
func (a *Assembler) Instances() []*Instance {
	out := make([]*Instance, 0, len(a.order))
	for _, k := range a.order {
		out = append(out, a.instances[k])
	}

	return out
}

// ByEntity groups the assembled instances by entity name, with instances
// kept in first-seen order within each entity. The returned map has no
// defined iteration order; [Assembler.EntityNames] gives the sorted names.
func (a *Assembler) ByEntity() map[string][]*Instance {
	out := map[string][]*Instance{}
	for _, inst := range a.Instances() {
		out[inst.Entity] = append(out[inst.Entity], inst)
	}

	return out
}

// EntityNames returns the sorted set of distinct entity names seen so far.
func (a *Assembler) EntityNames() []string {
	seen := map[string]struct{}{}
	for _, inst := range a.Instances() {
		seen[inst.Entity] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}
