package doctree

import (
	"fmt"
	"strconv"
	"strings"
)

// Attrs holds node or mark attributes as decoded from JSON.
type Attrs map[string]any

// String returns the attribute as a string; numbers are formatted, other
// values yield "".
func (a Attrs) String(key string) string {
	switch v := a[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case fmt.Stringer:
		return v.String()
	}
	return ""
}

// Int returns the attribute as an int. Strings are parsed; failures yield 0.
func (a Attrs) Int(key string) int {
	return int(a.Int64(key))
}

// Int64 returns the attribute as an int64.
func (a Attrs) Int64(key string) int64 {
	switch v := a[key].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

// Has reports whether the attribute is present and non-null.
func (a Attrs) Has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

// Bool returns the attribute as a bool.
func (a Attrs) Bool(key string) bool {
	switch v := a[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

// Strings returns a list attribute of strings. A single string is returned
// as a one-element list.
func (a Attrs) Strings(key string) []string {
	switch v := a[key].(type) {
	case []string:
		return v
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Map returns a nested object attribute.
func (a Attrs) Map(key string) Attrs {
	switch v := a[key].(type) {
	case Attrs:
		return v
	case map[string]any:
		return Attrs(v)
	}
	return nil
}

// Maps returns a list-of-objects attribute.
func (a Attrs) Maps(key string) []Attrs {
	switch v := a[key].(type) {
	case []Attrs:
		return v
	case []map[string]any:
		out := make([]Attrs, len(v))
		for i, m := range v {
			out[i] = Attrs(m)
		}
		return out
	case []any:
		out := make([]Attrs, 0, len(v))
		for _, item := range v {
			switch m := item.(type) {
			case map[string]any:
				out = append(out, Attrs(m))
			case Attrs:
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}
