package schemaengine

import (
	"crypto/md5" //nolint:gosec // content-addressing for dedup, not a security boundary.
	"encoding/hex"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

// TrueSchema returns a schema that validates everything.
func TrueSchema() *jsonschema.Schema {
	return &jsonschema.Schema{}
}

// FalseSchema returns a schema that validates nothing.
func FalseSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Not: &jsonschema.Schema{}}
}

// CanonicalHash returns the MD5 hex digest of s's canonical JSON encoding.
// encoding/json sorts map keys during marshaling, so two schemas that are
// structurally identical (independent of Go map iteration order) always
// hash to the same digest.
func CanonicalHash(s *jsonschema.Schema) string {
	if s == nil {
		s = TrueSchema()
	}

	b, err := json.Marshal(s)
	if err != nil {
		b = []byte("null")
	}

	sum := md5.Sum(b) //nolint:gosec // content-addressing for dedup, not a security boundary.

	return hex.EncodeToString(sum[:])
}
