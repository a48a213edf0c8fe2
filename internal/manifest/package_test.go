package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func writePackage(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, PackageFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestReadPackage(t *testing.T) {
	dir := writePackage(t, `{
		"name": "my-ext",
		"displayName": "My Extension",
		"version": "1.4.2-beta.3",
		"description": "Does things",
		"author": "Jane Doe <jane@example.com> (https://example.com)",
		"homepage": "https://example.com",
		"manifest": {"permissions": ["storage"]}
	}`)

	meta, err := ReadPackage(dir)
	if err != nil {
		t.Fatalf("ReadPackage error: %v", err)
	}
	if meta.Name != "My Extension" {
		t.Errorf("Name = %q, want %q", meta.Name, "My Extension")
	}
	if meta.Version != "1.4.2" {
		t.Errorf("Version = %q, want %q", meta.Version, "1.4.2")
	}
	if meta.Author != "Jane Doe" {
		t.Errorf("Author = %q, want %q", meta.Author, "Jane Doe")
	}
	if got := meta.Manifest.StringSlice("permissions"); len(got) != 1 || got[0] != "storage" {
		t.Errorf("Manifest.permissions = %v, want [storage]", got)
	}

	seed := meta.Seed()
	if seed.String("homepage_url") != "https://example.com" {
		t.Errorf("seed homepage_url = %q", seed.String("homepage_url"))
	}
	if seed.Has("homepage") {
		t.Error("seed should not carry a homepage key")
	}
}

func TestReadPackage_AuthorObject(t *testing.T) {
	dir := writePackage(t, `{"name": "x", "author": {"name": "Acme", "email": "a@b.c"}}`)
	meta, err := ReadPackage(dir)
	if err != nil {
		t.Fatalf("ReadPackage error: %v", err)
	}
	if meta.Author != "Acme" {
		t.Errorf("Author = %q, want Acme", meta.Author)
	}
}

func TestReadPackage_MissingFile(t *testing.T) {
	meta, err := ReadPackage(t.TempDir())
	if err != nil {
		t.Fatalf("ReadPackage on empty dir error: %v", err)
	}
	if len(meta.Seed()) != 0 {
		t.Errorf("Seed() = %v, want empty", meta.Seed())
	}
}

func TestReadPackage_Malformed(t *testing.T) {
	dir := writePackage(t, `{"name": `)
	if _, err := ReadPackage(dir); err == nil {
		t.Fatal("expected error for malformed package.json")
	}
}

func TestTrimVersion(t *testing.T) {
	tests := map[string]string{
		"1.2.3":         "1.2.3",
		"v1.2.3":        "1.2.3",
		"1.2.3-alpha.1": "1.2.3",
		"1.2.3+build.5": "1.2.3",
		"1.2":           "1.2.0",
		"":              "",
	}
	for in, want := range tests {
		if got := TrimVersion(in); got != want {
			t.Errorf("TrimVersion(%q) = %q, want %q", in, got, want)
		}
	}
}
