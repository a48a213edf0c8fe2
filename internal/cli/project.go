package cli

import (
	"fmt"

	"github.com/crxgen/crxgen/internal/config"
	"github.com/crxgen/crxgen/internal/declarative"
	"github.com/crxgen/crxgen/internal/logging"
	"github.com/crxgen/crxgen/internal/manifest"
	"github.com/crxgen/crxgen/internal/normalize"
	"github.com/crxgen/crxgen/internal/processor"
	"github.com/crxgen/crxgen/internal/scanner"
	"github.com/spf13/cobra"
)

// project is the resolved state shared by the build commands.
type project struct {
	cfg      *config.Config
	settings *config.Settings
	log      *logging.Logger
	partial  manifest.Manifest
	extract  *declarative.Extractor
}

// loadProject reads the project config, applies the persistent flags and
// creates the logger.
func loadProject(cmd *cobra.Command) (*project, error) {
	cfg, err := config.Load(flagRoot)
	if err != nil {
		return nil, err
	}
	settings, err := cfg.Resolve(config.Overrides{
		Target: flagTarget,
		SrcDir: flagSrcDir,
		OutDir: flagOutDir,
	})
	if err != nil {
		return nil, fmt.Errorf("resolving project settings: %w", err)
	}

	level := settings.LogLevel
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	format := settings.LogFormat
	if flagLogFormat != "" {
		format = flagLogFormat
	}
	log := logging.New(logging.LoggerOptions{
		Level:   level,
		Format:  format,
		Output:  cmd.ErrOrStderr(),
		Verbose: flagVerbose,
	})

	partial, err := cfg.Partial(settings)
	if err != nil {
		return nil, fmt.Errorf("loading partial manifest: %w", err)
	}

	return &project{
		cfg:      cfg,
		settings: settings,
		log:      log,
		partial:  partial,
		extract:  declarative.NewExtractor(log),
	}, nil
}

func (p *project) normalizeOptions(mode manifest.Mode, rt processor.Runtime, strict bool) normalize.Options {
	return normalize.Options{
		Root:      p.settings.Root,
		SrcDir:    p.settings.SrcDir,
		Target:    p.settings.Target,
		Mode:      mode,
		Partial:   p.partial,
		Extractor: p.extract,
		Runtime:   rt,
		Logger:    p.log,
		Strict:    strict,
	}
}

// normalize runs the normalizer and returns its options for later phases.
func (p *project) normalize(mode manifest.Mode, rt processor.Runtime, strict bool) (normalize.Options, manifest.Manifest, *scanner.Layout, error) {
	opts := p.normalizeOptions(mode, rt, strict)
	m, layout, err := normalize.Normalize(opts)
	if err != nil {
		return opts, nil, nil, fmt.Errorf("normalizing manifest: %w", err)
	}
	return opts, m, layout, nil
}

// pageTitles returns the `title` export of every HTML entry's first input.
func (p *project) pageTitles(entries processor.EntryMap) map[string]string {
	titles := map[string]string{}
	for name, e := range entries {
		if !e.HTML || len(e.Import) == 0 {
			continue
		}
		if title := p.extract.Title(e.Import[0]); title != "" {
			titles[name] = title
		}
	}
	return titles
}

// parseModeFlag parses a --mode value, falling back to def when empty.
func parseModeFlag(value string, def manifest.Mode) (manifest.Mode, error) {
	if value == "" {
		return def, nil
	}
	return manifest.ParseMode(value)
}
