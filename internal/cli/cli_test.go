package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crxgen/crxgen/internal/manifest"
)

// resetFlags restores flag variables, which cobra leaves set between runs.
func resetFlags() {
	flagRoot, flagTarget, flagSrcDir, flagOutDir = ".", "", "", ""
	flagLogLevel, flagLogFormat, flagVerbose = "", "", false
	manifestMode, manifestStrict, manifestCompact = "", false, false
	entriesMode, entriesJSON = "", false
	buildMode, buildClean = "", false
	versionShort, versionJSON = false, false
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"package.json":           `{"name": "cli-demo", "version": "0.3.0"}`,
		"src/background.ts":      `console.log("bg")`,
		"src/popup/index.ts":     `export const title = "My Popup"`,
		"src/contents/a.ts":      `export const config = { matches: ["https://example.com/*"] }`,
		"src/assets/icon-16.png": "png",
	}
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestManifestCommand(t *testing.T) {
	root := writeProject(t)
	out, err := run(t, "manifest", "--root", root, "--log-level", "error")
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}

	var m manifest.Manifest
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if got := m.Map("background")["service_worker"]; got != "background.ts" {
		t.Errorf("background.service_worker = %v, want background.ts", got)
	}
	if got := m["name"]; got != "cli-demo" {
		t.Errorf("name = %v, want cli-demo", got)
	}
}

func TestManifestCommandTarget(t *testing.T) {
	root := writeProject(t)
	out, err := run(t, "manifest", "--root", root, "--target", "firefox-mv2", "--compact", "--mode", "dev")
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("compact output should be a single line:\n%s", out)
	}
	if !strings.Contains(out, `"browser_action"`) || strings.Contains(out, `"service_worker"`) {
		t.Errorf("unexpected firefox-mv2 manifest:\n%s", out)
	}
}

func TestManifestCommandStrict(t *testing.T) {
	root := t.TempDir()
	_, err := run(t, "manifest", "--root", root, "--strict")
	if !errors.Is(err, manifest.ErrInvalidManifest) {
		t.Fatalf("manifest --strict error = %v, want ErrInvalidManifest", err)
	}
}

func TestManifestCommandBadMode(t *testing.T) {
	if _, err := run(t, "manifest", "--root", t.TempDir(), "--mode", "staging"); !errors.Is(err, manifest.ErrUnknownMode) {
		t.Fatalf("error = %v, want ErrUnknownMode", err)
	}
}

func TestEntriesCommand(t *testing.T) {
	root := writeProject(t)
	out, err := run(t, "entries", "--root", root, "--json")
	if err != nil {
		t.Fatalf("entries: %v", err)
	}

	var entries map[string]struct {
		Import []string `json:"import"`
		HTML   bool     `json:"html"`
	}
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	for _, name := range []string{"background", "content", "popup", "icons"} {
		if _, ok := entries[name]; !ok {
			t.Errorf("missing entry %q in %v", name, entries)
		}
	}
	if !entries["popup"].HTML {
		t.Error("popup should be an HTML entry")
	}

	table, err := run(t, "entries", "--root", root)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if !strings.HasPrefix(table, "NAME") {
		t.Errorf("table output should start with a header:\n%s", table)
	}
}

func TestBuildAndValidate(t *testing.T) {
	root := writeProject(t)
	out, err := run(t, "build", "--root", root, "--log-level", "error")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(out, "chrome-mv3") {
		t.Errorf("unexpected build output: %s", out)
	}

	path := filepath.Join(root, "dist", "chrome-mv3", manifest.FileName)
	m, err := manifest.LoadPartial(path)
	if err != nil {
		t.Fatalf("reading built manifest: %v", err)
	}
	if got := m.Map("action")["default_popup"]; got != "popup.html" {
		t.Errorf("action.default_popup = %v, want popup.html", got)
	}
	if got := m.Map("action")["default_title"]; got != "My Popup" {
		t.Errorf("action.default_title = %v, want My Popup", got)
	}
	if got := m.Map("background")["service_worker"]; got != "background.js" {
		t.Errorf("background.service_worker = %v, want background.js", got)
	}
	cs := manifest.AsMap(m.Slice("content_scripts")[0])
	if got := manifest.Strings(cs["js"]); len(got) != 1 || got[0] != "content.js" {
		t.Errorf("content_scripts[0].js = %v, want [content.js]", got)
	}
	if _, err := os.Stat(filepath.Join(root, "dist", "chrome-mv3", "assets", "icon-16.png")); err != nil {
		t.Errorf("icon was not copied: %v", err)
	}

	report, err := run(t, "validate", "--root", root)
	if err != nil {
		t.Fatalf("validate: %v\n%s", err, report)
	}
	if !strings.Contains(report, "[ OK ]") {
		t.Errorf("unexpected validate output:\n%s", report)
	}
}

func TestBuildDeclaredContentScriptWithoutMatches(t *testing.T) {
	root := writeProject(t)
	cfg := "manifest:\n  content_scripts:\n    - js: [contents/a.ts]\n"
	if err := os.WriteFile(filepath.Join(root, "crxgen.yaml"), []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "build", "--root", root, "--log-level", "error"); err != nil {
		t.Fatalf("build: %v", err)
	}

	m, err := manifest.LoadPartial(filepath.Join(root, "dist", "chrome-mv3", manifest.FileName))
	if err != nil {
		t.Fatalf("reading built manifest: %v", err)
	}
	cs := manifest.AsMap(m.Slice("content_scripts")[0])
	if got := manifest.Strings(cs["matches"]); len(got) != 1 || got[0] != "https://example.com/*" {
		t.Errorf("content_scripts[0].matches = %v, want [https://example.com/*]", got)
	}
	if got := manifest.Strings(cs["js"]); len(got) != 1 || got[0] != "content.js" {
		t.Errorf("content_scripts[0].js = %v, want [content.js]", got)
	}
}

func TestValidateReportsIssues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := os.WriteFile(path, []byte(`{"manifest_version": 3, "version": "1.0.0"}`), 0644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "validate", path)
	if err == nil {
		t.Fatal("expected validation to fail")
	}
	if !strings.Contains(out, "[FAIL]") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestConfigSetGet(t *testing.T) {
	root := t.TempDir()
	if _, err := run(t, "config", "set", "target", "firefox-mv3", "--root", root); err != nil {
		t.Fatalf("config set: %v", err)
	}
	out, err := run(t, "config", "get", "target", "--root", root)
	if err != nil {
		t.Fatalf("config get: %v", err)
	}
	if got := strings.TrimSpace(out); got != "firefox-mv3" {
		t.Errorf("config get target = %q, want firefox-mv3", got)
	}
}

func TestVersionCommand(t *testing.T) {
	buildVersion = "1.2.3"
	out, err := run(t, "version", "--short")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if got := strings.TrimSpace(out); got != "1.2.3" {
		t.Errorf("version --short = %q, want 1.2.3", got)
	}
}
