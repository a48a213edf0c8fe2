package reconcile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/crxgen/crxgen/internal/logging"
	"github.com/crxgen/crxgen/internal/manifest"
	"github.com/crxgen/crxgen/internal/processor"
)

// Options configures one reconciliation.
type Options struct {
	// Manifest is the normalized manifest. It is cloned, never modified.
	Manifest manifest.Manifest
	// Assets maps entry names to emitted files, relative to OutDir.
	Assets map[string][]string
	// Inputs maps entry names to their source files. When nil, the inputs
	// are read back from Manifest with the processors.
	Inputs map[string][]string
	// OutDir is the build output root. Writing is skipped when it is empty
	// or does not exist yet.
	OutDir string
	Mode   manifest.Mode
	// Context supplies target, source root, layout and extractor. Its
	// Manifest field is ignored.
	Context *processor.Context
	// Processors defaults to processor.Registry().
	Processors []processor.Processor
	Logger     *logging.Logger
}

// Reconcile runs every matching processor's Write once per entry, in entry
// name order, and writes the result as manifest.json. The patched manifest
// is returned even when nothing was written.
func Reconcile(opts Options) (manifest.Manifest, error) {
	log := opts.Logger.OrNop().WithComponent("reconcile")
	procs := opts.Processors
	if procs == nil {
		procs = processor.Registry()
	}

	ctx := &processor.Context{}
	if opts.Context != nil {
		c := *opts.Context
		ctx = &c
	}
	if opts.Mode != "" {
		ctx.Mode = opts.Mode
	}
	if ctx.Log == nil {
		ctx.Log = log
	}
	ctx.Manifest = opts.Manifest.Clone()

	inputs := opts.Inputs
	if inputs == nil {
		inputs = map[string][]string{}
		for name, e := range processor.ReadAll(procs, ctx) {
			inputs[name] = e.Import
		}
	}

	names := make([]string, 0, len(opts.Assets))
	for name := range opts.Assets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p := processor.Find(procs, name)
		if p == nil {
			log.Debug().Str("entry", name).Msg("no processor for entry")
			continue
		}
		wc := &processor.WriteContext{
			Context: ctx,
			Name:    name,
			Assets:  FilterAssets(opts.Assets[name]),
			Inputs:  entryInputs(inputs, p, name),
		}
		if err := p.Write(wc); err != nil {
			return nil, fmt.Errorf("updating %s for entry %s: %w", p.Key(), name, err)
		}
	}

	if err := WriteManifest(ctx.Manifest, opts.OutDir, ctx.Mode, log); err != nil {
		return nil, err
	}
	return ctx.Manifest, nil
}

// entryInputs returns the source files of an entry. A feature with a single
// element may be named with or without its index ("content" or "content0"),
// so a miss falls back to any input name of the same processor and index.
func entryInputs(inputs map[string][]string, p processor.Processor, name string) []string {
	if in, ok := inputs[name]; ok {
		return in
	}
	idx := processor.EntryIndex(p.Key(), name)
	if idx < 0 {
		return nil
	}
	keys := make([]string, 0, len(inputs))
	for k := range inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if p.Match(k) && processor.EntryIndex(p.Key(), k) == idx {
			return inputs[k]
		}
	}
	return nil
}

// FilterAssets drops incremental-update fragments and source maps.
func FilterAssets(assets []string) []string {
	out := make([]string, 0, len(assets))
	for _, a := range assets {
		base := filepath.Base(a)
		if strings.Contains(base, ".hot-update.") || strings.HasSuffix(base, ".map") {
			continue
		}
		out = append(out, filepath.ToSlash(a))
	}
	return out
}

// WriteManifest serializes m to <outDir>/manifest.json, pretty-printed in
// development and compact otherwise. A missing output directory is a silent
// no-op.
func WriteManifest(m manifest.Manifest, outDir string, mode manifest.Mode, log *logging.Logger) error {
	log = log.OrNop()
	if outDir == "" {
		return nil
	}
	info, err := os.Stat(outDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("dir", outDir).Msg("output directory not ready; skipping manifest write")
			return nil
		}
		return fmt.Errorf("checking output directory %s: %w", outDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output path %s is not a directory", outDir)
	}

	data, err := m.Encode(mode.IsDev())
	if err != nil {
		return err
	}
	path := filepath.Join(outDir, manifest.FileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("bytes", len(data)).Msg("manifest written")
	return nil
}
