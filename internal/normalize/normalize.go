package normalize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/crxgen/crxgen/internal/declarative"
	"github.com/crxgen/crxgen/internal/logging"
	"github.com/crxgen/crxgen/internal/manifest"
	"github.com/crxgen/crxgen/internal/processor"
	"github.com/crxgen/crxgen/internal/scanner"
)

// DevSuffix is appended to version_name in development builds.
const DevSuffix = " (development)"

// WildcardHost is the host permission granted to development builds so the
// reload runtime can reach every page.
const WildcardHost = "*://*/*"

// Options configures a normalization run.
type Options struct {
	// Root is the project root holding package.json.
	Root string
	// SrcDir is the source root. Defaults to Root.
	SrcDir string
	Target manifest.Target
	Mode   manifest.Mode
	// Partial is the user-declared manifest. It is never modified.
	Partial manifest.Manifest
	// Package overrides reading package.json from Root.
	Package   *manifest.PackageMeta
	Extractor *declarative.Extractor
	Runtime   processor.Runtime
	// Processors defaults to processor.Registry().
	Processors []processor.Processor
	Logger     *logging.Logger
	// Strict fails when the result does not validate against the manifest schema.
	Strict bool
}

func (o *Options) srcDir() string {
	if o.SrcDir != "" {
		return o.SrcDir
	}
	return o.Root
}

func (o *Options) processors() []processor.Processor {
	if o.Processors != nil {
		return o.Processors
	}
	return processor.Registry()
}

// Context returns the processor context for a normalized manifest, as used by
// entry generation and reconciliation.
func (o *Options) Context(m manifest.Manifest, layout *scanner.Layout) *processor.Context {
	if o.Extractor == nil {
		o.Extractor = declarative.NewExtractor(o.Logger)
	}
	return &processor.Context{
		Manifest:  m,
		Target:    o.Target,
		Mode:      o.Mode,
		SrcDir:    o.srcDir(),
		Layout:    layout,
		Extractor: o.Extractor,
		Runtime:   o.Runtime,
		Log:       o.Logger,
	}
}

// Normalize builds the manifest described in the package documentation and
// returns it with the scanned layout.
func Normalize(opts Options) (manifest.Manifest, *scanner.Layout, error) {
	log := opts.Logger.OrNop().WithComponent("normalize")
	if opts.Target == "" {
		opts.Target = manifest.DefaultTarget
	}
	if opts.Mode == "" {
		opts.Mode = manifest.Production
	}

	pkg := opts.Package
	if pkg == nil {
		var err error
		pkg, err = manifest.ReadPackage(opts.Root)
		if err != nil {
			return nil, nil, fmt.Errorf("reading package metadata: %w", err)
		}
	}

	m := Seed(opts.Target, pkg, opts.Partial)
	if opts.Mode.IsDev() {
		AugmentDev(m, opts.Target)
	}

	srcDir := opts.srcDir()
	if info, err := os.Stat(srcDir); err == nil && !info.IsDir() {
		log.Warn().Str("dir", srcDir).Msg("source root is not a directory")
	}
	layout := scanner.Scan(srcDir, log)

	ctx := opts.Context(m, layout)
	ctx.Log = log
	for _, p := range opts.processors() {
		if err := p.Merge(ctx); err != nil {
			log.Warn().Err(err).Str("feature", p.Key()).Msg("skipping feature")
		}
	}

	if opts.Strict {
		if err := Validate(m); err != nil {
			return m, layout, err
		}
	}
	log.Debug().
		Str("target", string(opts.Target)).
		Str("mode", string(opts.Mode)).
		Str("src", filepath.Clean(srcDir)).
		Msg("manifest normalized")
	return m, layout, nil
}

// Seed combines the target's manifest_version, package metadata and the
// user's partial manifest. partial is deep-copied.
func Seed(target manifest.Target, pkg *manifest.PackageMeta, partial manifest.Manifest) manifest.Manifest {
	m := manifest.New()
	m["manifest_version"] = target.ManifestVersion()
	if pkg != nil {
		m.Merge(pkg.Seed())
		if pkg.Manifest != nil {
			m.Merge(pkg.Manifest)
		}
	}
	m.Merge(partial)
	return m
}

// AugmentDev adds the development-only fields. Every addition checks for an
// existing value first, so applying it twice changes nothing.
func AugmentDev(m manifest.Manifest, target manifest.Target) {
	if !target.IsFirefox() {
		base := m.String("version_name")
		if base == "" {
			base = m.String("version")
		}
		if base != "" && !strings.HasSuffix(base, DevSuffix) {
			m["version_name"] = base + DevSuffix
		}
	}

	m.AddString("permissions", "scripting")
	if target.ManifestVersion() >= 3 {
		m.AddString("host_permissions", WildcardHost)
	} else {
		m.AddString("permissions", WildcardHost)
	}
}

// Validate checks m against the manifest schema and returns an error wrapping
// manifest.ErrInvalidManifest when it does not conform.
func Validate(m manifest.Manifest) error {
	result, err := manifest.Validate(m)
	if err != nil {
		return fmt.Errorf("validating manifest: %w", err)
	}
	return result.Err()
}

// Entries returns the entry map for a normalized manifest.
func Entries(opts Options, m manifest.Manifest, layout *scanner.Layout) processor.EntryMap {
	return processor.ReadAll(opts.processors(), opts.Context(m, layout))
}
