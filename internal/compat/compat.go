// Package compat decides whether a producer field can feed a consumer field.
package compat

import (
	"strings"

	"github.com/patternlab/ctlaunch/internal/schema"
)

// Verdict is the three-valued outcome of a compatibility check
type Verdict int

const (
	Incompatible Verdict = iota
	Maybe
	Compatible
)

// String returns the verdict name
func (v Verdict) String() string {
	switch v {
	case Compatible:
		return "compatible"
	case Maybe:
		return "maybe"
	default:
		return "incompatible"
	}
}

// Matcher reports whether two field names plausibly refer to the same thing
type Matcher func(a, b string) bool

// NamesMatch is the default Matcher: case-insensitive equality, or either
// name containing the other.
func NamesMatch(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la == "" || lb == "" {
		return la == lb
	}
	return la == lb || strings.Contains(la, lb) || strings.Contains(lb, la)
}

// Checker compares structural schemas
type Checker struct {
	Match Matcher
}

// Default uses NamesMatch for fuzzy field lookup
var Default = Checker{Match: NamesMatch}

// Check compares src against tgt with the default checker
func Check(src, tgt *schema.Descriptor) Verdict {
	return Default.Check(src, tgt)
}

// Check reports whether a value shaped like src satisfies tgt. It is
// directional: tgt's object fields must be found in src.
func (c Checker) Check(src, tgt *schema.Descriptor) Verdict {
	if src == nil || tgt == nil {
		return Maybe
	}

	if src.Kind != tgt.Kind {
		if src.IsAny() || tgt.IsAny() {
			return Maybe
		}
		return Incompatible
	}

	switch tgt.Kind {
	case schema.KindPrimitive:
		if src.IsAny() || tgt.IsAny() {
			return Maybe
		}
		if src.Primitive == tgt.Primitive {
			return Compatible
		}
		return Incompatible
	case schema.KindArray:
		return c.Check(src.Elem, tgt.Elem)
	default:
		return c.checkObject(src, tgt)
	}
}

func (c Checker) checkObject(src, tgt *schema.Descriptor) Verdict {
	if len(tgt.Fields) == 0 {
		return Compatible
	}
	if len(src.Fields) == 0 {
		return Maybe
	}

	allMatch := true
	anyMatch := false
	for _, field := range tgt.Fields {
		if srcField, ok := src.Field(field.Name); ok {
			switch c.Check(srcField, field.Schema) {
			case Compatible:
				anyMatch = true
			case Maybe:
				anyMatch = true
				allMatch = false
			default:
				allMatch = false
			}
			continue
		}

		allMatch = false
		if srcField, ok := c.fuzzyField(src, field.Name); ok {
			if c.Check(srcField, field.Schema) != Incompatible {
				anyMatch = true
			}
		}
	}

	switch {
	case allMatch:
		return Compatible
	case anyMatch:
		return Maybe
	default:
		return Incompatible
	}
}

func (c Checker) fuzzyField(src *schema.Descriptor, name string) (*schema.Descriptor, bool) {
	match := c.Match
	if match == nil {
		match = NamesMatch
	}
	for _, f := range src.Fields {
		if match(f.Name, name) {
			return f.Schema, true
		}
	}
	return nil, false
}
