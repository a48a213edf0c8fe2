package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// LoadPartial reads a user-authored partial manifest from a JSON or YAML file.
func LoadPartial(path string) (Manifest, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
		}
		return Manifest(m), nil
	case ".yaml", ".yml":
		return parseYAML(data, path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExt, path)
	}
}

// FromValue converts a decoded config value (YAML, viper or JSON shaped)
// into a manifest. Non-object values yield an empty manifest.
func FromValue(v any) Manifest {
	m := AsMap(normalizeYAML(v))
	if m == nil {
		return New()
	}
	return Manifest(m)
}

func parseYAML(data []byte, path string) (Manifest, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if raw == nil {
		return New(), nil
	}
	m := AsMap(normalizeYAML(raw))
	if m == nil {
		return nil, fmt.Errorf("parsing manifest %s: top level is not a mapping", path)
	}
	return Manifest(m), nil
}

// normalizeYAML recursively converts YAML-decoded values to JSON-compatible
// types. Mappings with non-string keys (icon sizes written as bare numbers)
// decode as map[any]any and are rekeyed with their string form.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, e := range val {
			m[k] = normalizeYAML(e)
		}
		return m
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, e := range val {
			m[fmt.Sprint(k)] = normalizeYAML(e)
		}
		return m
	case []any:
		a := make([]any, len(val))
		for i, e := range val {
			a[i] = normalizeYAML(e)
		}
		return a
	default:
		return val
	}
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
