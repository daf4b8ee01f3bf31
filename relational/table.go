package relational

import (
	"slices"

	"kvschema.dev/kvschema/value"
)

// Fk is a single foreign key: Column on the owning table references
// RefColumn on RefTable.
type Fk struct {
	Column    string
	RefTable  string
	RefColumn string
}

// Column is one relational column. Values accumulates every observed raw
// value (stringified) until the table's finalize step votes a DataType from
// them and derives
// Nullable, at which point Values is cleared.
type Column struct {
	Name     string
	DataType string
	Nullable bool
	Values   []string
}

func newColumn(name string) *Column {
	return &Column{Name: name}
}

func (c *Column) addValue(v value.Value) {
	c.Values = append(c.Values, stringify(v))
}

// Table is a synthesized relational table: a name, an insertion-ordered set
// of columns, a primary key (one column name, or two for a composite key),
// a set of foreign keys, and a running count of instances folded into it.
type Table struct {
	Name        string
	PrimaryKey  []string
	ForeignKeys []Fk
	Count       int

	columns      map[string]*Column
	columnOrder  []string
	fkColumnSeen map[string]bool
}

// NewTable returns an empty table named name.
func NewTable(name string) *Table {
	return &Table{
		Name:         name,
		columns:      map[string]*Column{},
		fkColumnSeen: map[string]bool{},
	}
}

// HasColumn reports whether t already declares a column named name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// HasForeignKeyColumn reports whether name is already the owning column of
// a declared foreign key.
func (t *Table) HasForeignKeyColumn(name string) bool {
	return t.fkColumnSeen[name]
}

// AddColumn appends v's stringified form to the named column's observed
// values, creating the column (in first-seen order) if needed.
func (t *Table) AddColumn(name string, v value.Value) {
	col, ok := t.columns[name]
	if !ok {
		col = newColumn(name)
		t.columns[name] = col
		t.columnOrder = append(t.columnOrder, name)
	}

	col.addValue(v)
}

// SetPrimaryKey sets t's primary key to the given column name(s): one name
// for a simple key, two for a composite key.
func (t *Table) SetPrimaryKey(cols ...string) {
	t.PrimaryKey = cols
}

// IsCompositeKey reports whether t's primary key spans more than one
// column.
func (t *Table) IsCompositeKey() bool {
	return len(t.PrimaryKey) > 1
}

// AddForeignKey registers a foreign key from column to refTable.refColumn.
// Registering the same key again has no effect.
func (t *Table) AddForeignKey(column, refTable, refColumn string) {
	t.fkColumnSeen[column] = true

	fk := Fk{Column: column, RefTable: refTable, RefColumn: refColumn}
	if slices.Contains(t.ForeignKeys, fk) {
		return
	}

	t.ForeignKeys = append(t.ForeignKeys, fk)
}

// Columns returns t's columns in first-seen insertion order.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columnOrder))
	for i, name := range t.columnOrder {
		out[i] = t.columns[name]
	}

	return out
}

// Column returns the named column, or nil if t has none by that name.
func (t *Table) Column(name string) *Column {
	return t.columns[name]
}

// finalize votes each column's DataType from its observed values, derives
// Nullable from how many instances actually set it, and clears the observed
// values once finalized.
func (t *Table) finalize() {
	for _, col := range t.Columns() {
		col.DataType = inferDataType(col.Values)
		col.Nullable = len(col.Values) < t.Count
		col.Values = nil
	}
}
