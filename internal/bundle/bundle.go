package bundle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/crxgen/crxgen/internal/logging"
	"github.com/crxgen/crxgen/internal/manifest"
	"github.com/crxgen/crxgen/internal/processor"
	"github.com/crxgen/crxgen/internal/scanner"
	"github.com/evanw/esbuild/pkg/api"
)

const (
	pluginName     = "crxgen-entries"
	entryNamespace = "crxgen-entry"
)

// ErrBuildFailed is returned when esbuild reports errors.
var ErrBuildFailed = errors.New("build failed")

// Options configures a build.
type Options struct {
	// Root is the project root; esbuild resolves node_modules from here.
	Root string
	// SrcDir is the source root; copied entries keep their path relative to it.
	SrcDir  string
	OutDir  string
	Entries processor.EntryMap
	Mode    manifest.Mode
	// Titles sets the <title> of generated HTML pages by entry name.
	Titles map[string]string
	Logger *logging.Logger
}

// Result lists what a build emitted.
type Result struct {
	// Assets maps entry names to emitted files relative to OutDir.
	Assets map[string][]string
	// Inputs maps entry names to their import paths.
	Inputs   map[string][]string
	Warnings []string
}

// Build compiles opts.Entries once.
func Build(ctx context.Context, opts Options) (*Result, error) {
	b, err := newBuilder(opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result := api.Build(b.buildOptions())
	return b.finish(&result)
}

// Watch compiles opts.Entries and recompiles whenever an input changes,
// calling onBuild after every build. It blocks until ctx is done.
func Watch(ctx context.Context, opts Options, onBuild func(*Result, error)) error {
	b, err := newBuilder(opts)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	bo := b.buildOptions()
	bo.Plugins = append(bo.Plugins, api.Plugin{
		Name: pluginName + "-watch",
		Setup: func(build api.PluginBuild) {
			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				mu.Lock()
				defer mu.Unlock()
				onBuild(b.finish(result))
				return api.OnEndResult{}, nil
			})
		},
	})

	bctx, ctxErr := api.Context(bo)
	if ctxErr != nil {
		return fmt.Errorf("%w: %s", ErrBuildFailed, strings.Join(formatMessages(ctxErr.Errors, api.ErrorMessage), "\n"))
	}
	defer bctx.Dispose()

	if err := bctx.Watch(api.WatchOptions{}); err != nil {
		return fmt.Errorf("starting watch: %w", err)
	}
	b.log.Info().Str("out", b.opts.OutDir).Msg("watching for changes")
	<-ctx.Done()
	return nil
}

type builder struct {
	opts    Options
	log     *logging.Logger
	scripts []string // entry names compiled by esbuild
	copies  []string // entry names copied verbatim
}

func newBuilder(opts Options) (*builder, error) {
	var err error
	if opts.Root, err = filepath.Abs(opts.Root); err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	if opts.SrcDir == "" {
		opts.SrcDir = opts.Root
	}
	if opts.SrcDir, err = filepath.Abs(opts.SrcDir); err != nil {
		return nil, fmt.Errorf("resolving source dir: %w", err)
	}
	if opts.OutDir, err = filepath.Abs(opts.OutDir); err != nil {
		return nil, fmt.Errorf("resolving output dir: %w", err)
	}

	b := &builder{opts: opts, log: opts.Logger.OrNop().WithComponent("bundle")}
	for _, name := range opts.Entries.Names() {
		if compiles(opts.Entries[name]) {
			b.scripts = append(b.scripts, name)
		} else {
			b.copies = append(b.copies, name)
		}
	}
	return b, nil
}

// compiles reports whether any input of the entry is a script or stylesheet.
func compiles(e processor.EntryPoint) bool {
	for _, imp := range e.Import {
		if scanner.IsScript(filepath.Base(imp)) || strings.EqualFold(filepath.Ext(imp), ".css") {
			return true
		}
	}
	return false
}

func (b *builder) buildOptions() api.BuildOptions {
	prod := !b.opts.Mode.IsDev()
	entries := make([]api.EntryPoint, 0, len(b.scripts))
	for _, name := range b.scripts {
		entries = append(entries, api.EntryPoint{
			InputPath:  entryNamespace + ":" + name,
			OutputPath: name,
		})
	}

	sourcemap := api.SourceMapNone
	if !prod {
		sourcemap = api.SourceMapLinked
	}
	nodeEnv := "production"
	if !prod {
		nodeEnv = "development"
	}

	return api.BuildOptions{
		EntryPointsAdvanced: entries,
		AbsWorkingDir:       b.opts.Root,
		Outdir:              b.opts.OutDir,
		Bundle:              true,
		Write:               true,
		Metafile:            true,
		Format:              api.FormatIIFE,
		Platform:            api.PlatformBrowser,
		Target:              api.ES2020,
		Sourcemap:           sourcemap,
		MinifyWhitespace:    prod,
		MinifyIdentifiers:   prod,
		MinifySyntax:        prod,
		LogLevel:            api.LogLevelSilent,
		Define:              map[string]string{"process.env.NODE_ENV": fmt.Sprintf("%q", nodeEnv)},
		Loader: map[string]api.Loader{
			".png":   api.LoaderFile,
			".jpg":   api.LoaderFile,
			".svg":   api.LoaderFile,
			".gif":   api.LoaderFile,
			".woff":  api.LoaderFile,
			".woff2": api.LoaderFile,
		},
		Plugins: []api.Plugin{b.entryPlugin()},
	}
}

// entryPlugin serves each entry as a virtual module importing its inputs.
func (b *builder) entryPlugin() api.Plugin {
	return api.Plugin{
		Name: pluginName,
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: "^" + entryNamespace + ":"},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					return api.OnResolveResult{
						Path:      strings.TrimPrefix(args.Path, entryNamespace+":"),
						Namespace: entryNamespace,
					}, nil
				})
			build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: entryNamespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					e, ok := b.opts.Entries[args.Path]
					if !ok {
						return api.OnLoadResult{}, fmt.Errorf("unknown entry %q", args.Path)
					}
					contents := entryModule(e.Import)
					return api.OnLoadResult{
						Contents:   &contents,
						ResolveDir: b.opts.SrcDir,
						Loader:     api.LoaderJS,
					}, nil
				})
		},
	}
}

// entryModule imports every input for its side effects, in order.
func entryModule(imports []string) string {
	var sb strings.Builder
	for _, imp := range imports {
		spec, _ := json.Marshal(filepath.ToSlash(imp))
		fmt.Fprintf(&sb, "import %s;\n", spec)
	}
	return sb.String()
}

// finish collects assets from the metafile, writes page shells and copies
// asset entries.
func (b *builder) finish(result *api.BuildResult) (*Result, error) {
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrBuildFailed, strings.Join(formatMessages(result.Errors, api.ErrorMessage), "\n"))
	}

	res := &Result{
		Assets:   map[string][]string{},
		Inputs:   map[string][]string{},
		Warnings: formatMessages(result.Warnings, api.WarningMessage),
	}
	for name, e := range b.opts.Entries {
		res.Inputs[name] = append([]string(nil), e.Import...)
	}

	outputs, err := b.entryOutputs(result.Metafile)
	if err != nil {
		return nil, err
	}
	for _, name := range b.scripts {
		assets := outputs[name]
		if b.opts.Entries[name].HTML {
			page, err := b.writePage(name, assets)
			if err != nil {
				return nil, err
			}
			assets = append([]string{page}, assets...)
		}
		res.Assets[name] = assets
	}

	for _, name := range b.copies {
		copied, err := b.copyEntry(b.opts.Entries[name])
		if err != nil {
			return nil, fmt.Errorf("copying entry %s: %w", name, err)
		}
		res.Assets[name] = copied
	}

	for _, w := range res.Warnings {
		b.log.Warn().Msg(w)
	}
	b.log.Debug().Int("entries", len(res.Assets)).Msg("build finished")
	return res, nil
}

type metafile struct {
	Outputs map[string]struct {
		EntryPoint string `json:"entryPoint"`
		CSSBundle  string `json:"cssBundle"`
	} `json:"outputs"`
}

// entryOutputs maps entry names to their bundle and css sibling, relative to
// OutDir and slash-separated.
func (b *builder) entryOutputs(raw string) (map[string][]string, error) {
	var meta metafile
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			return nil, fmt.Errorf("parsing metafile: %w", err)
		}
	}

	out := map[string][]string{}
	for file, o := range meta.Outputs {
		name, ok := strings.CutPrefix(o.EntryPoint, entryNamespace+":")
		if !ok {
			continue
		}
		for _, f := range []string{file, o.CSSBundle} {
			if f == "" {
				continue
			}
			rel, err := b.outRel(f)
			if err != nil {
				return nil, err
			}
			out[name] = append(out[name], rel)
		}
	}
	for name := range out {
		sort.Slice(out[name], func(i, j int) bool {
			return assetOrder(out[name][i]) < assetOrder(out[name][j])
		})
	}
	return out, nil
}

// assetOrder keeps scripts ahead of stylesheets.
func assetOrder(f string) string {
	if path.Ext(f) == ".js" {
		return "0" + f
	}
	return "1" + f
}

// outRel converts a metafile path (relative to Root) to a path relative to OutDir.
func (b *builder) outRel(metaPath string) (string, error) {
	abs := filepath.Join(b.opts.Root, filepath.FromSlash(metaPath))
	rel, err := filepath.Rel(b.opts.OutDir, abs)
	if err != nil {
		return "", fmt.Errorf("locating output %s: %w", metaPath, err)
	}
	return filepath.ToSlash(rel), nil
}

func formatMessages(msgs []api.Message, kind api.MessageKind) []string {
	if len(msgs) == 0 {
		return nil
	}
	formatted := api.FormatMessages(msgs, api.FormatMessagesOptions{Kind: kind})
	for i, f := range formatted {
		formatted[i] = strings.TrimSpace(f)
	}
	return formatted
}
