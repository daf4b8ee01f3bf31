// Package relational synthesizes a relational table model — and the SQL DDL
// to create it — from assembled entity instances. It runs the same two-pass
// construction the JSON-Schema path's entity assembler feeds: a first pass
// allocates one Table per entity, 1:1 aggregate, and 1:N/N:N aggregate array
// name, a second pass walks every instance assigning primary keys, foreign
// keys (by fuzzy name match against the table set) and column values, and a
// finalization pass votes on each column's data type from its observed
// values and derives nullability from how many instances actually set it.
package relational
