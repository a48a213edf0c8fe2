package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// FileName is the name of the manifest written to the build output root.
const FileName = "manifest.json"

// Manifest is a browser-extension manifest document. Values are JSON-shaped:
// map[string]any, []any, []string, string, float64, int, bool or nil.
type Manifest map[string]any

// New returns an empty manifest.
func New() Manifest {
	return Manifest{}
}

// Has reports whether key holds a non-empty value.
func (m Manifest) Has(key string) bool {
	return !IsEmpty(m[key])
}

// String returns the string stored at key, or "".
func (m Manifest) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// Map returns the object stored at key, or nil when absent or not an object.
func (m Manifest) Map(key string) map[string]any {
	return AsMap(m[key])
}

// EnsureMap returns the object stored at key, creating it when absent.
// A non-object value at key is replaced.
func (m Manifest) EnsureMap(key string) map[string]any {
	if v := AsMap(m[key]); v != nil {
		return v
	}
	v := map[string]any{}
	m[key] = v
	return v
}

// Slice returns the array stored at key as []any, or nil.
func (m Manifest) Slice(key string) []any {
	return AsSlice(m[key])
}

// StringSlice returns the string elements of the array stored at key.
func (m Manifest) StringSlice(key string) []string {
	return Strings(m[key])
}

// AddString appends s to the string array at key unless it is already present.
// It reports whether the array changed.
func (m Manifest) AddString(key, s string) bool {
	list := m.Slice(key)
	for _, v := range list {
		if v == s {
			return false
		}
	}
	m[key] = append(list, s)
	return true
}

// Clone returns a deep copy of m.
func (m Manifest) Clone() Manifest {
	if m == nil {
		return New()
	}
	return Manifest(cloneValue(map[string]any(m)).(map[string]any))
}

// Merge copies every key of src over m, deep-cloning the values.
func (m Manifest) Merge(src map[string]any) {
	for k, v := range src {
		m[k] = cloneValue(v)
	}
}

// Encode serializes the manifest. Pretty output uses a two-space indent.
// HTML escaping is disabled so match patterns like <all_urls> stay readable.
func (m Manifest) Encode(pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(map[string]any(m)); err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	if !pretty {
		return bytes.TrimRight(buf.Bytes(), "\n"), nil
	}
	return buf.Bytes(), nil
}

// IsEmpty reports whether v is nil, an empty string, an empty array or an
// empty object.
func IsEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []any:
		return len(val) == 0
	case []string:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	default:
		return false
	}
}

// AsMap returns v as an object, or nil.
func AsMap(v any) map[string]any {
	switch val := v.(type) {
	case map[string]any:
		return val
	case Manifest:
		return map[string]any(val)
	default:
		return nil
	}
}

// AsSlice returns v as []any, converting []string, or nil.
func AsSlice(v any) []any {
	switch val := v.(type) {
	case []any:
		return val
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	default:
		return nil
	}
}

// Strings returns the string elements of an array value. A bare string is
// treated as a one-element array.
func Strings(v any) []string {
	switch val := v.(type) {
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case []string:
		return append([]string(nil), val...)
	case []any:
		var out []string
		for _, e := range val {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// StringList converts a string slice to the []any form stored in manifests.
func StringList(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// SortedKeys returns the keys of an object in ascending order. Keys that are
// all digits sort numerically so icon maps come out as 16, 32, 48, 128.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})
	return keys
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case Manifest:
		return cloneValue(map[string]any(val))
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return val
	}
}
