// Package schema validates composition props against a tagged schema
// description. The schema is plain data evaluated against generic decoded
// values (map[string]any and friends), so validation needs no reflection and
// works the same for props coming from YAML manifests, JSON requests, or Go
// callers.
package schema

import (
	"fmt"
	"strings"
)

// Kind tags a schema node.
type Kind string

const (
	String Kind = "string"
	Number Kind = "number"
	Bool   Kind = "bool"
	Object Kind = "object"
	Array  Kind = "array"
	Any    Kind = "any"
)

// Schema describes the expected shape of a value.
type Schema struct {
	Kind     Kind
	Optional bool

	// Fields applies to Object kinds.
	Fields map[string]*Schema
	// Elem applies to Array kinds.
	Elem *Schema
	// Min and Max bound Number kinds when set.
	Min, Max *float64
	// Enum restricts String kinds to a fixed set when non-empty.
	Enum []string
}

// Error reports a rejected value with the path of the offending field and
// the shape that was expected there.
type Error struct {
	Path     string
	Expected string
	Got      string
}

func (e *Error) Error() string {
	path := e.Path
	if path == "" {
		path = "(root)"
	}
	return fmt.Sprintf("schema: %s: expected %s, got %s", path, e.Expected, e.Got)
}

// Validate checks v against the schema. A nil schema accepts anything.
func (s *Schema) Validate(v any) error {
	if s == nil {
		return nil
	}
	return s.validate(v, "")
}

func (s *Schema) validate(v any, path string) error {
	if v == nil {
		if s.Optional {
			return nil
		}
		return &Error{Path: path, Expected: string(s.Kind), Got: "nothing"}
	}

	switch s.Kind {
	case Any, "":
		return nil

	case String:
		str, ok := v.(string)
		if !ok {
			return &Error{Path: path, Expected: "string", Got: typeName(v)}
		}
		if len(s.Enum) > 0 && !contains(s.Enum, str) {
			return &Error{
				Path:     path,
				Expected: "one of " + strings.Join(s.Enum, "|"),
				Got:      fmt.Sprintf("%q", str),
			}
		}
		return nil

	case Bool:
		if _, ok := v.(bool); !ok {
			return &Error{Path: path, Expected: "bool", Got: typeName(v)}
		}
		return nil

	case Number:
		f, ok := asFloat(v)
		if !ok {
			return &Error{Path: path, Expected: "number", Got: typeName(v)}
		}
		if s.Min != nil && f < *s.Min {
			return &Error{Path: path, Expected: fmt.Sprintf("number >= %v", *s.Min), Got: fmt.Sprintf("%v", f)}
		}
		if s.Max != nil && f > *s.Max {
			return &Error{Path: path, Expected: fmt.Sprintf("number <= %v", *s.Max), Got: fmt.Sprintf("%v", f)}
		}
		return nil

	case Object:
		m, ok := v.(map[string]any)
		if !ok {
			return &Error{Path: path, Expected: "object", Got: typeName(v)}
		}
		for name, field := range s.Fields {
			if field == nil {
				continue
			}
			child := joinPath(path, name)
			val, present := m[name]
			if !present {
				if field.Optional {
					continue
				}
				return &Error{Path: child, Expected: string(field.Kind), Got: "nothing"}
			}
			if err := field.validate(val, child); err != nil {
				return err
			}
		}
		return nil

	case Array:
		list, ok := v.([]any)
		if !ok {
			return &Error{Path: path, Expected: "array", Got: typeName(v)}
		}
		if s.Elem != nil {
			for i, item := range list {
				if err := s.Elem.validate(item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
					return err
				}
			}
		}
		return nil

	default:
		return &Error{Path: path, Expected: "known schema kind", Got: string(s.Kind)}
	}
}

func joinPath(base, field string) string {
	if base == "" {
		return field
	}
	return base + "." + field
}

func typeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int64, float64, float32, uint, uint64:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
