package schema

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultMaxDepth is how deep Flatten descends into nested objects
const DefaultMaxDepth = 3

const maxSampleLen = 30

// FlatField is one addressable value inside an artifact's input or output
type FlatField struct {
	Path     []string
	FullPath string
	Type     string
	Schema   *Descriptor
	Sample   string
}

// Name returns the last path segment
func (f FlatField) Name() string {
	if len(f.Path) == 0 {
		return ""
	}
	return f.Path[len(f.Path)-1]
}

// Depth returns the number of path segments
func (f FlatField) Depth() int {
	return len(f.Path)
}

// Ref returns the slash-joined path used in link references
func (f FlatField) Ref() string {
	return strings.Join(f.Path, "/")
}

// Flatten lists the fields reachable from v. Arrays produce a single field
// and are not descended into. Nested objects are expanded while the current
// depth is below maxDepth.
func Flatten(v any, base []string, maxDepth int) []FlatField {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	var out []FlatField
	flatten(v, base, 0, maxDepth, &out)
	return out
}

func flatten(v any, path []string, depth, maxDepth int, out *[]FlatField) {
	switch val := v.(type) {
	case *Object:
		if val == nil {
			return
		}
		for _, k := range val.Keys {
			if SkipKey(k) {
				continue
			}
			flattenMember(k, val.Values[k], path, depth, maxDepth, out)
		}
	case map[string]any:
		obj := objectFromMap(val)
		flatten(obj, path, depth, maxDepth, out)
	default:
		*out = append(*out, newFlatField(path, v))
	}
}

func flattenMember(key string, value any, path []string, depth, maxDepth int, out *[]FlatField) {
	childPath := appendPath(path, key)
	*out = append(*out, newFlatField(childPath, value))
	if isObject(value) && depth < maxDepth {
		flatten(value, childPath, depth+1, maxDepth, out)
	}
}

func newFlatField(path []string, v any) FlatField {
	d := Infer(v)
	return FlatField{
		Path:     path,
		FullPath: strings.Join(path, "."),
		Type:     TypeString(d),
		Schema:   d,
		Sample:   sample(v),
	}
}

func appendPath(path []string, key string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = key
	return out
}

func isObject(v any) bool {
	switch val := v.(type) {
	case *Object:
		return val != nil
	case map[string]any:
		return true
	}
	return false
}

func objectFromMap(m map[string]any) *Object {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	obj := NewObject()
	for _, k := range keys {
		obj.Set(k, m[k])
	}
	return obj
}

func sample(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case []any:
		if len(val) == 1 {
			return "[1 item]"
		}
		return fmt.Sprintf("[%d items]", len(val))
	case *Object, map[string]any:
		return ""
	case string:
		return truncate(fmt.Sprintf("%q", val))
	default:
		return truncate(fmt.Sprint(val))
	}
}

func truncate(s string) string {
	if len(s) <= maxSampleLen {
		return s
	}
	return s[:maxSampleLen-3] + "..."
}
