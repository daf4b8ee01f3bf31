package extractor

import (
	"kvschema.dev/kvschema/entity"
	"kvschema.dev/kvschema/relational"
)

// BuildRelationalModel runs C5b over assembler's output: the two-pass table
// synthesis described by package relational, using threshold as the
// minimum fuzzy-match score for foreign key inference.
func BuildRelationalModel(assembler *entity.Assembler, threshold int) map[string]*relational.Table {
	return relational.NewBuilder(threshold).Build(assembler.Instances())
}
