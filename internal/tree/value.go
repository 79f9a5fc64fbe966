// SPDX-License-Identifier: Apache-2.0

// Package tree provides total accessors over a decoded JSON document.
//
// Every lookup on a Value yields another Value; a missing key, an index out
// of range or a type mismatch produces an absent Value instead of an error.
// Callers chain lookups freely and only check the result at the end.
package tree

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Kind identifies the shape of a Value.
type Kind int

const (
	Absent Kind = iota
	Null
	Bool
	Number
	String
	Array
	Object
	// Unknown is a present value of a Go type JSON decoding never produces.
	Unknown
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	case Unknown:
		return "unknown"
	default:
		return "absent"
	}
}

// Value is a node of a decoded JSON document, or the absence of one.
// The zero Value is absent.
type Value struct {
	raw     any
	present bool
}

// Parse decodes JSON text into a Value. It is the only operation in this
// package that can fail.
func Parse(text []byte) (Value, error) {
	var raw any
	if err := json.Unmarshal(text, &raw); err != nil {
		return Value{}, fmt.Errorf("failed to parse manifest JSON: %w", err)
	}
	return Of(raw), nil
}

// Of wraps an already decoded value (nil, bool, float64, json.Number, string,
// []any or map[string]any). An explicit nil yields a present null.
func Of(raw any) Value {
	return Value{raw: raw, present: true}
}

// Present reports whether the value exists, including explicit JSON null.
func (v Value) Present() bool {
	return v.present
}

func (v Value) Kind() Kind {
	if !v.present {
		return Absent
	}
	switch v.raw.(type) {
	case nil:
		return Null
	case bool:
		return Bool
	case float64, json.Number, int, int64:
		return Number
	case string:
		return String
	case []any:
		return Array
	case map[string]any:
		return Object
	default:
		return Unknown
	}
}

// Get returns the member named key of an object.
func (v Value) Get(key string) Value {
	obj, ok := v.raw.(map[string]any)
	if !v.present || !ok {
		return Value{}
	}
	member, ok := obj[key]
	if !ok {
		return Value{}
	}
	return Of(member)
}

// Path follows a chain of object keys.
func (v Value) Path(keys ...string) Value {
	cur := v
	for _, key := range keys {
		cur = cur.Get(key)
	}
	return cur
}

// Index returns element i of an array.
func (v Value) Index(i int) Value {
	arr, ok := v.raw.([]any)
	if !v.present || !ok || i < 0 || i >= len(arr) {
		return Value{}
	}
	return Of(arr[i])
}

func (v Value) AsString() (string, bool) {
	s, ok := v.raw.(string)
	return s, v.present && ok
}

func (v Value) AsBool() (bool, bool) {
	b, ok := v.raw.(bool)
	return b, v.present && ok
}

// AsArray returns the elements of an array in document order.
func (v Value) AsArray() ([]Value, bool) {
	arr, ok := v.raw.([]any)
	if !v.present || !ok {
		return nil, false
	}
	out := make([]Value, len(arr))
	for i, elem := range arr {
		out[i] = Of(elem)
	}
	return out, true
}

func (v Value) AsObject() (map[string]Value, bool) {
	obj, ok := v.raw.(map[string]any)
	if !v.present || !ok {
		return nil, false
	}
	out := make(map[string]Value, len(obj))
	for k, member := range obj {
		out[k] = Of(member)
	}
	return out, true
}

// StringOr returns the string value, or def when v is absent or not a string.
func (v Value) StringOr(def string) string {
	if s, ok := v.AsString(); ok {
		return s
	}
	return def
}

// StringPtr returns a pointer to the string value, nil when v is absent or
// not a string.
func (v Value) StringPtr() *string {
	if s, ok := v.AsString(); ok {
		return &s
	}
	return nil
}
