package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crxgen/crxgen/internal/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveDefaults(t *testing.T) {
	root := t.TempDir()
	cfg, err := Load(root)
	require.NoError(t, err)

	s, err := cfg.Resolve(Overrides{})
	require.NoError(t, err)

	assert.Equal(t, manifest.DefaultTarget, s.Target)
	assert.Equal(t, cfg.Root, s.SrcDir, "no src/ directory: source root is the project root")
	assert.Equal(t, filepath.Join(cfg.Root, "dist", string(manifest.DefaultTarget)), s.OutDir)
	assert.Equal(t, DefaultReloadPort, s.ReloadPort)
	assert.Equal(t, "info", s.LogLevel)
	assert.Empty(t, s.ManifestFile)
}

func TestResolveSrcDirConvention(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "src"), 0755))

	cfg, err := Load(root)
	require.NoError(t, err)
	s, err := cfg.Resolve(Overrides{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.Root, "src"), s.SrcDir)
}

func TestResolveFromFileAndOverrides(t *testing.T) {
	root := t.TempDir()
	writeFile(t, FilePath(root), `
src_dir: extension
out_dir: build
target: firefox-mv2
reload_port: 4000
`)
	cfg, err := Load(root)
	require.NoError(t, err)

	s, err := cfg.Resolve(Overrides{})
	require.NoError(t, err)
	assert.Equal(t, manifest.FirefoxMV2, s.Target)
	assert.Equal(t, filepath.Join(cfg.Root, "extension"), s.SrcDir)
	assert.Equal(t, filepath.Join(cfg.Root, "build"), s.OutDir)
	assert.Equal(t, 4000, s.ReloadPort)

	s, err = cfg.Resolve(Overrides{Target: "edge-mv3", OutDir: "/tmp/out"})
	require.NoError(t, err)
	assert.Equal(t, manifest.EdgeMV3, s.Target)
	assert.Equal(t, filepath.Clean("/tmp/out"), s.OutDir)
}

func TestResolveUnknownTarget(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	if _, err := cfg.Resolve(Overrides{Target: "netscape-mv1"}); !errors.Is(err, manifest.ErrUnknownTarget) {
		t.Fatalf("Resolve() error = %v, want ErrUnknownTarget", err)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, FilePath(root), "target: firefox-mv3\n")
	t.Setenv("CRXGEN_TARGET", "safari-mv3")

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "safari-mv3", cfg.Get(KeyTarget))
}

func TestDotEnv(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".env"), "CRXGEN_RELOAD_PORT=4100\n")
	// Registered so the variable godotenv sets is removed after the test.
	t.Setenv("CRXGEN_RELOAD_PORT", "")
	os.Unsetenv("CRXGEN_RELOAD_PORT")

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "4100", cfg.Get(KeyReloadPort))
}

func TestPartialPrecedence(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "manifest.yaml"), `
name: From File
permissions: [storage]
`)
	writeFile(t, FilePath(root), `
manifest_file: manifest.yaml
manifest:
  name: Inline
  commands:
    toggleFeature:
      description: Toggle
`)
	cfg, err := Load(root)
	require.NoError(t, err)
	s, err := cfg.Resolve(Overrides{})
	require.NoError(t, err)

	m, err := cfg.Partial(s)
	require.NoError(t, err)
	assert.Equal(t, "Inline", m["name"])
	assert.Equal(t, []any{"storage"}, m["permissions"])
	assert.Contains(t, m.Map("commands"), "toggleFeature", "inline manifest keys keep their case")
}

func TestPartialMissingFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, FilePath(root), "manifest_file: nope.json\n")
	cfg, err := Load(root)
	require.NoError(t, err)
	s, err := cfg.Resolve(Overrides{})
	require.NoError(t, err)

	if _, err := cfg.Partial(s); err == nil {
		t.Fatal("expected an error for a missing manifest_file")
	}
}

func TestSet(t *testing.T) {
	root := t.TempDir()
	writeFile(t, FilePath(root), "# project settings\nmanifest:\n  commands:\n    toggleFeature: {}\n")
	cfg, err := Load(root)
	require.NoError(t, err)

	require.NoError(t, cfg.Set(KeyTarget, "firefox-mv3"))
	require.NoError(t, cfg.Set(KeyTarget, "chrome-mv3"))
	assert.Equal(t, "chrome-mv3", cfg.Get(KeyTarget))

	data, err := os.ReadFile(FilePath(root))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "# project settings")
	assert.Contains(t, content, "toggleFeature")
	assert.Equal(t, 1, strings.Count(content, "target:"))

	reloaded, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "chrome-mv3", reloaded.Get(KeyTarget))
}

func TestSetRejectsBadInput(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	if err := cfg.Set("nonsense", "x"); err == nil {
		t.Error("expected an error for an unknown key")
	}
	if err := cfg.Set(KeyTarget, "netscape-mv1"); !errors.Is(err, manifest.ErrUnknownTarget) {
		t.Errorf("Set(target) error = %v, want ErrUnknownTarget", err)
	}
	if _, err := os.Stat(FilePath(cfg.Root)); !os.IsNotExist(err) {
		t.Error("rejected values must not create the config file")
	}
}

func TestSetCreatesFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, cfg.Set(KeyReloadPort, "4200"))

	reloaded, err := Load(cfg.Root)
	require.NoError(t, err)
	s, err := reloaded.Resolve(Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 4200, s.ReloadPort)
}
