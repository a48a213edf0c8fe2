package devruntime

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnsureIgnored(t *testing.T) {
	dir := t.TempDir()
	gitignorePath := filepath.Join(dir, ".gitignore")
	if err := os.WriteFile(gitignorePath, []byte("node_modules/\ndist"), 0o644); err != nil {
		t.Fatal(err)
	}

	changed, err := EnsureIgnored(dir)
	if err != nil {
		t.Fatalf("EnsureIgnored() error = %v", err)
	}
	if !changed {
		t.Error("expected .gitignore to change")
	}

	content, err := os.ReadFile(gitignorePath)
	if err != nil {
		t.Fatal(err)
	}
	if want := "node_modules/\ndist\n/.crxgen/\n"; string(content) != want {
		t.Errorf(".gitignore = %q, want %q", content, want)
	}
}

func TestEnsureIgnored_Idempotent(t *testing.T) {
	tests := []struct {
		name    string
		initial string
	}{
		{"exact rule", "/.crxgen/\n"},
		{"unanchored rule", ".crxgen\n"},
		{"trailing slash", "dist/\n.crxgen/\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			gitignorePath := filepath.Join(dir, ".gitignore")
			if err := os.WriteFile(gitignorePath, []byte(tt.initial), 0o644); err != nil {
				t.Fatal(err)
			}

			changed, err := EnsureIgnored(dir)
			if err != nil {
				t.Fatalf("EnsureIgnored() error = %v", err)
			}
			if changed {
				t.Error("expected no change")
			}
			content, _ := os.ReadFile(gitignorePath)
			if strings.Count(string(content), ".crxgen") != 1 {
				t.Errorf("rule duplicated:\n%s", content)
			}
		})
	}
}

func TestEnsureIgnored_NoGitignore(t *testing.T) {
	dir := t.TempDir()
	changed, err := EnsureIgnored(dir)
	if err != nil || changed {
		t.Fatalf("EnsureIgnored() = %v, %v; want false, nil", changed, err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".gitignore")); !os.IsNotExist(err) {
		t.Error(".gitignore should not be created")
	}
}
