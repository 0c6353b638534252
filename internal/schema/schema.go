// Package schema infers structural type descriptors from JSON values and
// flattens them into addressable fields.
package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Kind is the shape category of a descriptor
type Kind int

const (
	KindPrimitive Kind = iota
	KindArray
	KindObject
)

// Primitive kind names
const (
	PrimitiveAny     = "any"
	PrimitiveString  = "string"
	PrimitiveNumber  = "number"
	PrimitiveBoolean = "boolean"
)

// maxInferDepth bounds recursion on pathological input
const maxInferDepth = 32

// uiMarkers are keys the runtime uses for rendering, never data
var uiMarkers = map[string]bool{
	"$UI":    true,
	"$NAME":  true,
	"[UI]":   true,
	"[NAME]": true,
}

// Field is one named member of an object descriptor
type Field struct {
	Name   string
	Schema *Descriptor
}

// Descriptor is a structural schema: an object, an array, or a primitive
type Descriptor struct {
	Kind      Kind
	Primitive string      // set when Kind == KindPrimitive
	Elem      *Descriptor // set when Kind == KindArray
	Fields    []Field     // set when Kind == KindObject, in insertion order
}

// Primitive returns a primitive descriptor of the given kind name
func Primitive(name string) *Descriptor {
	return &Descriptor{Kind: KindPrimitive, Primitive: name}
}

// Any returns the "any" primitive descriptor
func Any() *Descriptor {
	return Primitive(PrimitiveAny)
}

// ArrayOf returns an array descriptor
func ArrayOf(elem *Descriptor) *Descriptor {
	return &Descriptor{Kind: KindArray, Elem: elem}
}

// ObjectOf returns an object descriptor with fields in the given order
func ObjectOf(fields ...Field) *Descriptor {
	return &Descriptor{Kind: KindObject, Fields: fields}
}

// IsAny reports whether d is the "any" primitive
func (d *Descriptor) IsAny() bool {
	return d != nil && d.Kind == KindPrimitive && d.Primitive == PrimitiveAny
}

// Field looks up an object member by exact name
func (d *Descriptor) Field(name string) (*Descriptor, bool) {
	if d == nil || d.Kind != KindObject {
		return nil, false
	}
	for _, f := range d.Fields {
		if f.Name == name {
			return f.Schema, true
		}
	}
	return nil, false
}

// String implements fmt.Stringer
func (d *Descriptor) String() string {
	return TypeString(d)
}

// SkipKey reports whether an object key is a UI marker or internal
func SkipKey(key string) bool {
	return uiMarkers[key] || strings.HasPrefix(key, "$") || strings.HasPrefix(key, "_")
}

// Infer derives a descriptor from a decoded JSON value
func Infer(v any) *Descriptor {
	return infer(v, 0)
}

func infer(v any, depth int) *Descriptor {
	if depth > maxInferDepth {
		return Any()
	}

	switch val := v.(type) {
	case nil:
		return Any()
	case []any:
		if len(val) == 0 {
			return ArrayOf(Any())
		}
		return ArrayOf(infer(val[0], depth+1))
	case *Object:
		if val == nil {
			return Any()
		}
		fields := make([]Field, 0, len(val.Keys))
		for _, k := range val.Keys {
			if SkipKey(k) {
				continue
			}
			fields = append(fields, Field{Name: k, Schema: infer(val.Values[k], depth+1)})
		}
		return ObjectOf(fields...)
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]Field, 0, len(keys))
		for _, k := range keys {
			if SkipKey(k) {
				continue
			}
			fields = append(fields, Field{Name: k, Schema: infer(val[k], depth+1)})
		}
		return ObjectOf(fields...)
	default:
		return Primitive(primitiveName(val))
	}
}

func primitiveName(v any) string {
	switch v.(type) {
	case string:
		return PrimitiveString
	case bool:
		return PrimitiveBoolean
	case json.Number, float64, float32, int, int64, int32, uint, uint64, uint32:
		return PrimitiveNumber
	default:
		return fmt.Sprintf("%T", v)
	}
}

// TypeString renders a short human-readable type for d
func TypeString(d *Descriptor) string {
	if d == nil {
		return PrimitiveAny
	}

	switch d.Kind {
	case KindArray:
		return TypeString(d.Elem) + "[]"
	case KindObject:
		names := make([]string, len(d.Fields))
		for i, f := range d.Fields {
			names[i] = f.Name
		}
		if len(names) <= 3 {
			return "{" + strings.Join(names, ", ") + "}"
		}
		return fmt.Sprintf("{%s, %s, +%d}", names[0], names[1], len(names)-2)
	default:
		return d.Primitive
	}
}
