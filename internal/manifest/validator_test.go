package manifest

import (
	"errors"
	"testing"
)

func TestValidateFile_Valid(t *testing.T) {
	result, err := ValidateFile(testPath("valid-manifest.json"))
	if err != nil {
		t.Fatalf("ValidateFile error: %v", err)
	}
	if !result.Valid {
		for _, issue := range result.Issues {
			t.Errorf("  path=%s keyword=%s message=%s", issue.Path, issue.Keyword, issue.Message)
		}
		t.Fatal("expected valid manifest")
	}
	if result.Err() != nil {
		t.Errorf("Err() = %v, want nil", result.Err())
	}
}

func TestValidateFile_Invalid(t *testing.T) {
	tests := []struct {
		file string
		desc string
	}{
		{"invalid-missing-name.json", "missing required name"},
		{"invalid-both-backgrounds.json", "service_worker and scripts together"},
		{"invalid-version.yaml", "pre-release version"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			result, err := ValidateFile(testPath(tt.file))
			if err != nil {
				t.Fatalf("ValidateFile(%s) unexpected error: %v", tt.file, err)
			}
			if result.Valid {
				t.Fatalf("expected invalid for %s (%s)", tt.file, tt.desc)
			}
			if len(result.Issues) == 0 {
				t.Errorf("expected at least one issue for %s", tt.file)
			}
			if !errors.Is(result.Err(), ErrInvalidManifest) {
				t.Errorf("Err() = %v, want ErrInvalidManifest", result.Err())
			}
		})
	}
}

func TestValidate_InMemory(t *testing.T) {
	m := Manifest{
		"manifest_version": 3,
		"name":             "Example",
		"version":          "0.1.0",
		"icons":            map[string]any{"16": "icon-16.png"},
	}
	result, err := Validate(m)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected valid, got %v", result.Issues)
	}

	delete(m, "version")
	result, err = Validate(m)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if result.Valid {
		t.Fatal("expected invalid result without version")
	}
}

func TestValidate_SchemaCompiles(t *testing.T) {
	schema, err := getSchema()
	if err != nil {
		t.Fatalf("getSchema() error: %v", err)
	}
	if schema == nil {
		t.Fatal("getSchema() returned nil schema")
	}
}
