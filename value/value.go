// Package value defines the canonical in-memory representation that every
// raw key/value pair from the store is normalized into, and the
// normalization rules for decoding opaque strings into structured values.
package value

// Kind identifies the dynamic type of a [Value].
type Kind int

// Value kinds, mirroring the closed set a backing store can advertise once
// normalized: null, boolean, integer, decimal, string, list, set, and map.
const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindSet
	KindMap
)

// Value is a closed tagged-union over the shapes a normalized store value
// can take. Stages pattern-match on [Value.Kind] rather than performing
// runtime type switches over `any`, per the design note on dynamic dispatch:
// container shape should be a finite, enumerable set, not open-ended.
type Value struct {
	kind Kind

	boolVal   bool
	intVal    int64
	floatVal  float64
	stringVal string
	listVal   []Value
	setVal    []Value
	mapVal    map[string]Value
}

// Kind returns v's dynamic kind.
func (v Value) Kind() Kind { return v.kind }

// Null is the absence of a value; produced whenever C1/C2 cannot decode a
// raw payload (per spec: opaque binary, failed decode, empty string).
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean scalar.
func Bool(b bool) Value { return Value{kind: KindBool, boolVal: b} }

// Int wraps an integer scalar.
func Int(i int64) Value { return Value{kind: KindInt, intVal: i} }

// Float wraps a decimal scalar.
func Float(f float64) Value { return Value{kind: KindFloat, floatVal: f} }

// String wraps a string scalar.
func String(s string) Value { return Value{kind: KindString, stringVal: s} }

// List wraps an ordered sequence of values (Redis list, JSON array, sorted
// zset members with scores discarded).
func List(vs []Value) Value { return Value{kind: KindList, listVal: vs} }

// Set wraps an unordered collection of values (Redis set).
func Set(vs []Value) Value { return Value{kind: KindSet, setVal: vs} }

// Map wraps a keyed collection of values (Redis hash, JSON object); the
// order of its keys is not kept.
func Map(m map[string]Value) Value { return Value{kind: KindMap, mapVal: m} }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// BoolValue returns v's boolean payload. Only meaningful when Kind() == KindBool.
func (v Value) BoolValue() bool { return v.boolVal }

// IntValue returns v's integer payload. Only meaningful when Kind() == KindInt.
func (v Value) IntValue() int64 { return v.intVal }

// FloatValue returns v's decimal payload. Only meaningful when
// Kind() == KindFloat.
func (v Value) FloatValue() float64 { return v.floatVal }

// StringValue returns v's string payload. Only meaningful when
// Kind() == KindString.
func (v Value) StringValue() string { return v.stringVal }

// ListValue returns v's list payload. Only meaningful when Kind() == KindList.
func (v Value) ListValue() []Value { return v.listVal }

// SetValue returns v's set payload. Only meaningful when Kind() == KindSet.
func (v Value) SetValue() []Value { return v.setVal }

// MapValue returns v's map payload. Only meaningful when Kind() == KindMap.
func (v Value) MapValue() map[string]Value { return v.mapVal }

// IsContainer reports whether v holds a structured (non-scalar) payload.
func (v Value) IsContainer() bool {
	switch v.kind {
	case KindList, KindSet, KindMap:
		return true
	default:
		return false
	}
}

// Any converts v into the dynamically-typed `any` representation used by the
// JSON-Schema engine and the JSON flattening walk, where map/slice/scalar
// pattern matching is the natural idiom.
func (v Value) Any() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.boolVal
	case KindInt:
		return v.intVal
	case KindFloat:
		return v.floatVal
	case KindString:
		return v.stringVal
	case KindList, KindSet:
		vs := v.listVal
		if v.kind == KindSet {
			vs = v.setVal
		}

		out := make([]any, len(vs))
		for i, e := range vs {
			out[i] = e.Any()
		}

		return out
	case KindMap:
		out := make(map[string]any, len(v.mapVal))
		for k, e := range v.mapVal {
			out[k] = e.Any()
		}

		return out
	}

	return nil
}

// FromAny converts a decoded `any` (as produced by encoding/json.Unmarshal
// into an empty interface) into a [Value].
func FromAny(a any) Value {
	switch x := a.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(x)
	case string:
		return String(x)
	case float64:
		if x == float64(int64(x)) {
			return Int(int64(x))
		}

		return Float(x)
	case int:
		return Int(int64(x))
	case int64:
		return Int(x)
	case float32:
		return Float(float64(x))
	case []any:
		out := make([]Value, len(x))
		for i, e := range x {
			out[i] = FromAny(e)
		}

		return List(out)
	case map[string]any:
		out := make(map[string]Value, len(x))
		for k, e := range x {
			out[k] = FromAny(e)
		}

		return Map(out)
	default:
		return Null()
	}
}
