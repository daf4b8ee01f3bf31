package keypattern

// Label classifies how a flat key decomposes, per the closed set in the
// data model: Primitive, Prop, AggProp, Arr, ArrProp.
type Label string

// Recognized pattern labels.
const (
	LabelPrimitive Label = "Primitive"
	LabelProp      Label = "Prop"
	LabelAggProp   Label = "AggProp"
	LabelArr       Label = "Arr"
	LabelArrProp   Label = "ArrProp"
)

// Components holds the closed set of component names a pattern template may
// bind. Kept as a struct with optional fields rather than an open map, per
// the design note on bounding the components mapping.
type Components struct {
	Entity            string
	ID                string
	Property          string
	Index             string
	AggregateProperty string

	hasEntity, hasID, hasProperty, hasIndex, hasAggregateProperty bool
}

// HasID reports whether an id component was bound by the matching pattern.
func (c Components) HasID() bool { return c.hasID }

// HasProperty reports whether a property component was bound.
func (c Components) HasProperty() bool { return c.hasProperty }

// HasIndex reports whether an index component was bound.
func (c Components) HasIndex() bool { return c.hasIndex }

// HasAggregateProperty reports whether an aggregate_property component was
// bound.
func (c Components) HasAggregateProperty() bool { return c.hasAggregateProperty }

// WithID returns a copy of c with the id component set.
func (c Components) WithID(id string) Components {
	c.ID = id
	c.hasID = true

	return c
}

// WithEntity returns a copy of c with the entity component set.
func (c Components) WithEntity(entity string) Components {
	c.Entity = entity
	c.hasEntity = true

	return c
}

// WithProperty returns a copy of c with the property component set.
func (c Components) WithProperty(prop string) Components {
	c.Property = prop
	c.hasProperty = true

	return c
}

// WithIndex returns a copy of c with the index component set.
func (c Components) WithIndex(index string) Components {
	c.Index = index
	c.hasIndex = true

	return c
}

// WithAggregateProperty returns a copy of c with the aggregate_property
// component set.
func (c Components) WithAggregateProperty(prop string) Components {
	c.AggregateProperty = prop
	c.hasAggregateProperty = true

	return c
}

// set binds a named component if it is one of the reserved names. Used when
// populating Components from a regexp named-group match.
func (c Components) set(name, value string) Components {
	switch name {
	case "entity":
		c.Entity = value
		c.hasEntity = true
	case "id":
		c.ID = value
		c.hasID = true
	case "property":
		c.Property = value
		c.hasProperty = true
	case "index":
		c.Index = value
		c.hasIndex = true
	case "aggregate_property":
		c.AggregateProperty = value
		c.hasAggregateProperty = true
	}

	return c
}
