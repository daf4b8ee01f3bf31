package value

import (
	"encoding/json"
	"strings"
)

// Normalize implements the value normalizer (C2): it heals naive
// single-quoted JSON, attempts a JSON decode, falls back to a case
// insensitive True/False match, and treats the empty string as null.
//
// Structured JSON results (objects and arrays) are returned as-is for
// downstream flattening; scalar JSON results (numbers, true/false/null
// re-encoded as JSON) are returned as their decoded scalar [Value]. If
// nothing parses, the original string is kept as a [KindString] value.
func Normalize(raw string) Value {
	if raw == "" {
		return Null()
	}

	healed := raw
	if strings.Count(raw, "'") >= 2 {
		healed = strings.ReplaceAll(raw, "'", `"`)
	}

	var decoded any

	if err := json.Unmarshal([]byte(healed), &decoded); err == nil {
		return FromAny(decoded)
	}

	switch strings.ToLower(raw) {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}

	return String(raw)
}
