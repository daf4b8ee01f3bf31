// Package schemaengine implements the JSON-Schema engine (C5a): per-instance
// type inference over a decoded object view, canonical variant hashing, and
// weighted variant combination into one schema per entity.
package schemaengine
