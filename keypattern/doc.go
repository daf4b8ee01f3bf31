// Package keypattern implements the key parser and flattener (C3): it
// classifies flat store keys against a labelled pattern table, and
// flattens structured values into additional synthetic flat keys that are
// re-classified through the same table.
package keypattern
