// Package entity implements the entity assembler (C4): it groups classified
// key/value pairs into per-(entity, id) instances for the relational engine,
// and offers an alternative id-path grouper and nested-object builder that
// feeds the JSON-Schema engine directly from raw keys.
package entity
