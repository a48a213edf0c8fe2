package processor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crxgen/crxgen/internal/manifest"
	"github.com/crxgen/crxgen/internal/scanner"
)

// newContext scans a temp source tree built from files (path → content).
func newContext(t *testing.T, target manifest.Target, m manifest.Manifest, files map[string]string) *Context {
	t.Helper()
	src := t.TempDir()
	for name, content := range files {
		p := filepath.Join(src, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if m == nil {
		m = manifest.New()
	}
	return &Context{
		Manifest: m,
		Target:   target,
		Mode:     manifest.Production,
		SrcDir:   src,
		Layout:   scanner.Scan(src, nil),
	}
}

func mergeAll(t *testing.T, ctx *Context) {
	t.Helper()
	for _, p := range Registry() {
		if err := p.Merge(ctx); err != nil {
			t.Fatalf("%s.Merge: %v", p.Key(), err)
		}
	}
}

func write(t *testing.T, ctx *Context, name string, assets ...string) {
	t.Helper()
	p := Find(Registry(), name)
	if p == nil {
		t.Fatalf("no processor matches %q", name)
	}
	entries := ReadAll(Registry(), ctx)
	wc := &WriteContext{Context: ctx, Name: name, Assets: assets, Inputs: entries[name].Import}
	if err := p.Write(wc); err != nil {
		t.Fatalf("%s.Write(%s): %v", p.Key(), name, err)
	}
}
