package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/crxgen/crxgen/internal/branding"
	"github.com/crxgen/crxgen/internal/manifest"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"
)

const fileType = "yaml"

// Config keys.
const (
	KeySrcDir       = "src_dir"
	KeyOutDir       = "out_dir"
	KeyTarget       = "target"
	KeyManifestFile = "manifest_file"
	KeyManifest     = "manifest"
	KeyReloadPort   = "reload_port"
	KeyLogLevel     = "log_level"
	KeyLogFormat    = "log_format"
)

// DefaultReloadPort is the default port of the dev reload server.
const DefaultReloadPort = 35729

// Keys returns the scalar keys accepted by Set.
func Keys() []string {
	return []string{KeySrcDir, KeyOutDir, KeyTarget, KeyManifestFile, KeyReloadPort, KeyLogLevel, KeyLogFormat}
}

// FilePath returns the project config file path (<root>/crxgen.yaml).
func FilePath(root string) string {
	return filepath.Join(root, branding.ConfigName()+"."+fileType)
}

// Config is a loaded project configuration.
type Config struct {
	Root string
	v    *viper.Viper
}

// Load reads <root>/.env, <root>/crxgen.yaml and the environment. Missing
// files are not an error. Variables already set in the environment take
// precedence over .env.
func Load(root string) (*Config, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root %s: %w", root, err)
	}

	if err := godotenv.Load(filepath.Join(abs, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(FilePath(abs))
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if _, err := os.Stat(FilePath(abs)); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", FilePath(abs), err)
		}
	}
	return &Config{Root: abs, v: v}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyTarget, string(manifest.DefaultTarget))
	v.SetDefault(KeyReloadPort, DefaultReloadPort)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "pretty")
}

// Get returns a config value by key. Returns empty string if not set.
func (c *Config) Get(key string) string {
	return c.v.GetString(key)
}

// Set writes a config key-value pair and saves the project config file.
func (c *Config) Set(key, value string) error {
	if !isKnownKey(key) {
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
	if key == KeyTarget {
		if _, err := manifest.ParseTarget(value); err != nil {
			return err
		}
	}

	if err := writeKey(FilePath(c.Root), key, value); err != nil {
		return err
	}
	c.v.Set(key, value)
	return nil
}

// writeKey sets one top-level scalar in the YAML file and leaves the rest of
// the document as written. viper's writer lowercases nested keys.
func writeKey(path, key, value string) error {
	var doc yaml.Node
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode}}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("config file %s is not a mapping", path)
	}

	val := &yaml.Node{Kind: yaml.ScalarNode, Value: value}
	found := false
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == key {
			root.Content[i+1] = val
			found = true
			break
		}
	}
	if !found {
		root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, val)
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("encoding config file: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func isKnownKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// Overrides are command-line values that win over the config file.
type Overrides struct {
	Target string
	SrcDir string
	OutDir string
}

// Settings is the resolved configuration of one build.
type Settings struct {
	Root         string
	SrcDir       string
	OutDir       string
	Target       manifest.Target
	ManifestFile string
	ReloadPort   int
	LogLevel     string
	LogFormat    string
}

// Resolve applies overrides and defaults and returns absolute paths.
func (c *Config) Resolve(o Overrides) (*Settings, error) {
	targetName := firstNonEmpty(o.Target, c.Get(KeyTarget))
	target, err := manifest.ParseTarget(targetName)
	if err != nil {
		return nil, err
	}

	s := &Settings{
		Root:       c.Root,
		Target:     target,
		ReloadPort: c.v.GetInt(KeyReloadPort),
		LogLevel:   c.Get(KeyLogLevel),
		LogFormat:  c.Get(KeyLogFormat),
	}
	if s.ReloadPort <= 0 || s.ReloadPort > 65535 {
		return nil, fmt.Errorf("invalid %s %d", KeyReloadPort, s.ReloadPort)
	}

	if src := firstNonEmpty(o.SrcDir, c.Get(KeySrcDir)); src != "" {
		s.SrcDir = c.abs(src)
	} else if info, err := os.Stat(filepath.Join(c.Root, "src")); err == nil && info.IsDir() {
		s.SrcDir = filepath.Join(c.Root, "src")
	} else {
		s.SrcDir = c.Root
	}

	if out := firstNonEmpty(o.OutDir, c.Get(KeyOutDir)); out != "" {
		s.OutDir = c.abs(out)
	} else {
		s.OutDir = filepath.Join(c.Root, "dist", string(target))
	}

	if f := c.Get(KeyManifestFile); f != "" {
		s.ManifestFile = c.abs(f)
	}
	return s, nil
}

func (c *Config) abs(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.Root, p)
}

// Partial returns the user's partial manifest: manifest_file, with the
// inline manifest block of crxgen.yaml laid over it.
func (c *Config) Partial(s *Settings) (manifest.Manifest, error) {
	m := manifest.New()
	if s.ManifestFile != "" {
		fromFile, err := manifest.LoadPartial(s.ManifestFile)
		if err != nil {
			return nil, err
		}
		m.Merge(fromFile)
	}

	inline, err := c.inlineManifest()
	if err != nil {
		return nil, err
	}
	m.Merge(inline)
	return m, nil
}

// inlineManifest reads the manifest block straight from the YAML file, since
// viper lowercases keys and manifests carry user-chosen keys such as command
// names.
func (c *Config) inlineManifest() (manifest.Manifest, error) {
	data, err := os.ReadFile(FilePath(c.Root))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return manifest.New(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", FilePath(c.Root), err)
	}

	var raw struct {
		Manifest any `yaml:"manifest"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FilePath(c.Root), err)
	}
	return manifest.FromValue(raw.Manifest), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
