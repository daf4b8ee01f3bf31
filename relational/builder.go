package relational

import (
	"sort"
	"strings"

	"kvschema.dev/kvschema/entity"
	"kvschema.dev/kvschema/fuzzy"
	"kvschema.dev/kvschema/value"
)

// DefaultThreshold is the fuzzy-match score, on fuzzy's 0-100 scale, at or
// above which an attribute or aggregate-array name is treated as referencing
// another table.
const DefaultThreshold = fuzzy.DefaultThreshold

// Builder runs the two-pass table synthesis described for the relational
// engine: a first pass allocates a Table per entity/aggregate/aggregate-array
// name, a second pass walks every instance assigning keys and columns, and
// each table's finalize step votes column data types and nullability.
type Builder struct {
	threshold int
	tables    map[string]*Table
	order     []string
}

// NewBuilder returns a Builder using threshold as the minimum fuzzy-match
// score for foreign key inference.
func NewBuilder(threshold int) *Builder {
	return &Builder{threshold: threshold, tables: map[string]*Table{}}
}

func (b *Builder) table(name string) *Table {
	t, ok := b.tables[name]
	if !ok {
		t = NewTable(name)
		b.tables[name] = t
		b.order = append(b.order, name)
	}

	return t
}

// Build runs the first and second pass over instances and finalizes every
// resulting table's column types and nullability.
func (b *Builder) Build(instances []*entity.Instance) map[string]*Table {
	b.firstPass(instances)
	b.secondPass(instances)

	for _, t := range b.tables {
		t.finalize()
	}

	return b.tables
}

// firstPass ensures a Table exists for every entity, 1:1 aggregate, and
// 1:N/N:N aggregate-array name seen across instances.
func (b *Builder) firstPass(instances []*entity.Instance) {
	for _, inst := range instances {
		b.table(inst.Entity)

		for name := range inst.Aggregates {
			b.table(name)
		}

		for name := range inst.AggregateArrays {
			b.table(name)
		}
	}
}

// tableNames returns every table name known after the first pass, in
// first-seen order (the candidate list for fuzzy FK matching).
func (b *Builder) tableNames() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)

	return out
}

func without(names []string, exclude ...string) []string {
	excl := map[string]bool{}
	for _, e := range exclude {
		excl[e] = true
	}

	out := make([]string, 0, len(names))
	for _, n := range names {
		if !excl[n] {
			out = append(out, n)
		}
	}

	return out
}

func (b *Builder) secondPass(instances []*entity.Instance) {
	tableNames := b.tableNames()

	for _, inst := range instances {
		entityTable := b.table(inst.Entity)
		entityTable.Count++
		pkCol := inst.Entity + "_id"
		entityTable.AddColumn(pkCol, value.Int(999))
		entityTable.SetPrimaryKey(pkCol)

		candidates := without(tableNames, inst.Entity)
		processAttributes(sortedAttrs(inst.Attributes), entityTable, candidates, b.threshold)

		for aggName, attrs := range inst.Aggregates {
			b.processAggregate(entityTable, aggName, attrs, tableNames)
		}

		for arrName, arr := range inst.AggregateArrays {
			b.processAggregateArray(entityTable, inst.Entity, arrName, arr, tableNames)
		}
	}
}

// processAggregate handles one 1:1 aggregate: the aggregate gets its own PK
// column, the parent entity table gets a column+FK pointing at it, and the
// aggregate's own attributes run through the same attribute loop.
func (b *Builder) processAggregate(entityTable *Table, aggName string, attrs map[string]value.Value, tableNames []string) {
	aggTable := b.table(aggName)
	aggTable.Count++

	pkCol := aggName + "_id"
	aggTable.AddColumn(pkCol, value.Int(999))
	aggTable.SetPrimaryKey(pkCol)

	// Entity HAS aggregate: the FK lives on the parent, referencing the
	// aggregate's own PK.
	entityTable.AddColumn(pkCol, value.Int(999))
	entityTable.AddForeignKey(pkCol, aggName, pkCol)

	candidates := without(tableNames, aggName)
	processAttributes(sortedAttrs(attrs), aggTable, candidates, b.threshold)
}

// processAggregateArray handles one 1:N/N:N aggregate-array name: every
// element becomes a row in the array's table, carrying a parent FK plus
// either a single synthetic PK (1:N) or a composite PK identifying the
// matched partner table (N:N).
func (b *Builder) processAggregateArray(entityTable *Table, entityName, arrName string, arr map[string]map[string]value.Value, tableNames []string) {
	arrTable := b.table(arrName)

	filtered := without(tableNames, arrName)
	score, matchedTable := fuzzy.BestMatch(arrName, filtered)

	parentPK := entityName + "_id"

	indexKeys := make([]string, 0, len(arr))
	for k := range arr {
		indexKeys = append(indexKeys, k)
	}

	sort.Strings(indexKeys)

	for _, idxKey := range indexKeys {
		attrs := arr[idxKey]

		arrTable.Count++
		arrTable.AddColumn(parentPK, value.Int(999))
		arrTable.AddForeignKey(parentPK, entityName, parentPK)

		attrNames := sortedAttrs(attrs)
		candidates := filtered

		if score >= b.threshold {
			candidates = without(filtered, matchedTable)
			fkName, fkScore, ok := bestAttributeMatch(attrNames, matchedTable)

			if ok && fkScore >= b.threshold {
				// N:N with an identified partner attribute.
				arrTable.AddColumn(fkName, attrs[fkName])
				arrTable.AddForeignKey(fkName, matchedTable, matchedTable+"_id")
				arrTable.SetPrimaryKey(parentPK, fkName)
				attrNames = withoutAttr(attrNames, fkName)
			} else {
				// N:N without an identified partner attribute: synthesize
				// the partner FK.
				partnerPK := matchedTable + "_id"
				arrTable.AddColumn(partnerPK, value.Int(999))
				arrTable.AddForeignKey(partnerPK, matchedTable, partnerPK)
				arrTable.SetPrimaryKey(parentPK, partnerPK)
			}
		} else {
			// 1:N: no matched table, the array row gets its own PK.
			selfPK := arrName + "_id"
			arrTable.AddColumn(selfPK, value.Int(999))
			arrTable.SetPrimaryKey(selfPK)
		}

		processAttributes(attrNamesToPairs(attrNames, attrs), arrTable, candidates, b.threshold)
	}
}

type attrPair struct {
	name  string
	value value.Value
}

// sortedAttrs returns m's (name, value) pairs sorted by name, giving the
// attribute loop and the fuzzy partner-match a deterministic iteration
// order over Go's randomized map order.
func sortedAttrs(m map[string]value.Value) []attrPair {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}

	sort.Strings(names)

	return attrNamesToPairs(names, m)
}

func attrNamesToPairs(names []string, m map[string]value.Value) []attrPair {
	out := make([]attrPair, len(names))
	for i, n := range names {
		out[i] = attrPair{name: n, value: m[n]}
	}

	return out
}

func withoutAttr(names []string, exclude string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != exclude {
			out = append(out, n)
		}
	}

	return out
}

// bestAttributeMatch finds the attribute whose name best matches tableName,
// tie-breaking by first encounter in names' (sorted) order.
func bestAttributeMatch(names []string, tableName string) (name string, score int, ok bool) {
	best := -1

	for _, n := range names {
		r := fuzzy.Ratio(n, tableName)
		if r > best {
			best = r
			name = n
			ok = true
		}
	}

	return name, best, ok
}

// processAttributes is the shared attribute loop used for entity
// attributes, 1:1 aggregate attributes, and aggregate-array attributes:
// skip unnamed/"id" attributes, reuse an existing column/FK by name, else
// fuzzy-match the name against candidate table names and add a foreign key
// when the match clears threshold.
func processAttributes(attrs []attrPair, table *Table, candidateTables []string, threshold int) {
	for _, attr := range attrs {
		name := attr.name
		if name == "" || strings.EqualFold(name, "id") {
			continue
		}

		if table.HasColumn(name) || table.HasForeignKeyColumn(name) {
			table.AddColumn(name, attr.value)
			continue
		}

		score, match := fuzzy.BestMatch(name, candidateTables)
		if score < threshold {
			table.AddColumn(name, attr.value)
			continue
		}

		table.AddColumn(name, attr.value)
		table.AddForeignKey(name, match, match+"_id")
	}
}

