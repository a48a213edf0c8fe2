package scanner

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// writeTree creates each relative path under root with placeholder content.
func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("// "+f), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestScanSingleFileConventions(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src,
		"background.ts",
		"popup/index.tsx",
		"options.tsx",
		"devtools.ts",
		"newtab.tsx",
		"sidepanel/index.ts",
		"content.ts",
		"sandbox.ts",
		"utils.ts",
	)

	layout := Scan(src, nil)

	want := map[Feature]string{
		Background: "background.ts",
		Popup:      "popup/index.tsx",
		Options:    "options.tsx",
		Devtools:   "devtools.ts",
		Newtab:     "newtab.tsx",
		Sidepanel:  "sidepanel/index.ts",
		Content:    "content.ts",
		Sandbox:    "sandbox.ts",
	}
	for f, p := range want {
		if got := layout.First(f); got != p {
			t.Errorf("%s = %q, want %q", f, got, p)
		}
	}
	if got := layout.Get(History); got != nil {
		t.Errorf("history = %v, want none", got)
	}
}

func TestScanFileWinsOverIndex(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, "popup.ts", "popup/index.ts")

	if got := Scan(src, nil).Get(Popup); !reflect.DeepEqual(got, []string{"popup.ts"}) {
		t.Errorf("popup = %v, want [popup.ts]", got)
	}
}

func TestScanPluralDirectories(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src,
		"content.ts",
		"contents/a.ts",
		"contents/b/index.tsx",
		"contents/c.css",
		"contents/types.d.ts",
		"sandboxes/one.ts",
		"sandboxes/two.ts",
		"devtools/index.ts",
		"devtools/panels/network.tsx",
		"panels/elements.ts",
	)

	layout := Scan(src, nil)

	wantContent := []string{"content.ts", "contents/a.ts", "contents/b/index.tsx"}
	if got := layout.Get(Content); !reflect.DeepEqual(got, wantContent) {
		t.Errorf("content = %v, want %v", got, wantContent)
	}
	wantSandbox := []string{"sandboxes/one.ts", "sandboxes/two.ts"}
	if got := layout.Get(Sandbox); !reflect.DeepEqual(got, wantSandbox) {
		t.Errorf("sandbox = %v, want %v", got, wantSandbox)
	}
	if got := layout.First(Devtools); got != "devtools/index.ts" {
		t.Errorf("devtools = %q, want devtools/index.ts", got)
	}
	wantPanels := []string{"panels/elements.ts", "devtools/panels/network.tsx"}
	if got := layout.Get(Panels); !reflect.DeepEqual(got, wantPanels) {
		t.Errorf("panels = %v, want %v", got, wantPanels)
	}
}

func TestScanIcons(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src,
		"assets/icon-16.png",
		"assets/icon32.png",
		"assets/icon.png",
		"assets/logo.png",
		"assets/nested/icon-128.png",
	)

	layout := Scan(src, nil)

	wantIcons := map[int]string{
		16:  "assets/icon-16.png",
		32:  "assets/icon32.png",
		128: "assets/nested/icon-128.png",
	}
	if !reflect.DeepEqual(layout.Icons, wantIcons) {
		t.Errorf("Icons = %v, want %v", layout.Icons, wantIcons)
	}
	if layout.IconSource != "assets/icon.png" {
		t.Errorf("IconSource = %q, want assets/icon.png", layout.IconSource)
	}
	if got := layout.IconSizes(); !reflect.DeepEqual(got, []int{16, 32, 128}) {
		t.Errorf("IconSizes = %v", got)
	}
}

func TestScanMissingDirectory(t *testing.T) {
	layout := Scan(filepath.Join(t.TempDir(), "nope"), nil)
	if len(layout.Files) != 0 || len(layout.Icons) != 0 {
		t.Errorf("expected empty layout, got %+v", layout)
	}
}

func TestIsScript(t *testing.T) {
	tests := map[string]bool{
		"a.ts":      true,
		"a.tsx":     true,
		"a.js":      true,
		"a.vue":     true,
		"a.svelte":  true,
		"a.d.ts":    false,
		"a.css":     false,
		"README.md": false,
	}
	for name, want := range tests {
		if got := IsScript(name); got != want {
			t.Errorf("IsScript(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestNilLayoutAccessors(t *testing.T) {
	var l *Layout
	if l.Get(Popup) != nil || l.First(Popup) != "" || l.IconSizes() != nil {
		t.Error("nil layout accessors should return zero values")
	}
}
