package relational

import (
	"fmt"
	"sort"
	"strings"
)

// GenerateSQL renders one CREATE TABLE statement per table, sorted by table
// name for deterministic output: a simple primary key first, then every
// non-PK column (NOT NULL when not nullable), then a composite PRIMARY KEY
// line when applicable, then one FOREIGN KEY line per declared key.
func GenerateSQL(tables map[string]*Table) []string {
	names := make([]string, 0, len(tables))
	for n := range tables {
		names = append(names, n)
	}

	sort.Strings(names)

	stmts := make([]string, 0, len(names))
	for _, name := range names {
		stmts = append(stmts, createTableSQL(tables[name]))
	}

	return stmts
}

func createTableSQL(t *Table) string {
	var lines []string

	composite := t.IsCompositeKey()
	if !composite && len(t.PrimaryKey) == 1 {
		lines = append(lines, fmt.Sprintf("%s INTEGER PRIMARY KEY", t.PrimaryKey[0]))
	}

	pkCol := ""
	if !composite && len(t.PrimaryKey) == 1 {
		pkCol = t.PrimaryKey[0]
	}

	for _, col := range t.Columns() {
		if col.Name == pkCol {
			continue
		}

		field := col.Name + " " + col.DataType
		if !col.Nullable {
			field += " NOT NULL"
		}

		lines = append(lines, field)
	}

	if composite {
		lines = append(lines, fmt.Sprintf("PRIMARY KEY (%s, %s)", t.PrimaryKey[0], t.PrimaryKey[1]))
	}

	for _, fk := range t.ForeignKeys {
		lines = append(lines, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s)", fk.Column, fk.RefTable, fk.RefColumn))
	}

	return fmt.Sprintf("CREATE TABLE %s (\n    %s\n);", t.Name, strings.Join(lines, ",\n    "))
}
