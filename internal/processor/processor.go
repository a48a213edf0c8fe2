package processor

import (
	"path"
	"path/filepath"
	"sort"

	"github.com/crxgen/crxgen/internal/declarative"
	"github.com/crxgen/crxgen/internal/logging"
	"github.com/crxgen/crxgen/internal/manifest"
	"github.com/crxgen/crxgen/internal/scanner"
)

// EntryPoint is a named bundler input.
type EntryPoint struct {
	Import []string `json:"import"`
	HTML   bool     `json:"html"`
}

// EntryMap maps stable entry names (content, content0, sandbox1, ...) to entry points.
type EntryMap map[string]EntryPoint

// Names returns the entry names in sorted order.
func (m EntryMap) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Runtime holds the dev-mode scripts injected into background and content
// entries. Empty paths disable injection.
type Runtime struct {
	Background string
	Content    string
}

// Context is shared by every processor during one phase.
type Context struct {
	Manifest  manifest.Manifest
	Target    manifest.Target
	Mode      manifest.Mode
	SrcDir    string
	Layout    *scanner.Layout
	Extractor *declarative.Extractor
	Runtime   Runtime
	Log       *logging.Logger
}

// WriteContext carries one compiled entry into Write.
type WriteContext struct {
	*Context
	Name   string
	Assets []string // emitted files, relative to the output root
	Inputs []string // the entry's import paths
}

// Processor handles one manifest feature.
type Processor interface {
	Key() string
	Match(entryName string) bool
	Merge(ctx *Context) error
	Read(ctx *Context) EntryMap
	Write(ctx *WriteContext) error
}

// Registry returns the processors in dispatch order.
func Registry() []Processor {
	return []Processor{
		background{},
		content{},
		popup{},
		options{},
		devtools{},
		sandbox{},
		icons{},
		overrides{},
		sidepanel{},
	}
}

// Find returns the first processor matching the entry name, or nil.
func Find(procs []Processor, name string) Processor {
	for _, p := range procs {
		if p.Match(name) {
			return p
		}
	}
	return nil
}

// ReadAll collects the entry points of every processor.
func ReadAll(procs []Processor, ctx *Context) EntryMap {
	entries := EntryMap{}
	for _, p := range procs {
		for name, e := range p.Read(ctx) {
			entries[name] = e
		}
	}
	return entries
}

func (c *Context) log() *logging.Logger {
	return c.Log.OrNop()
}

func (c *Context) extractor() *declarative.Extractor {
	if c.Extractor == nil {
		c.Extractor = declarative.NewExtractor(c.Log)
	}
	return c.Extractor
}

// abs resolves a manifest source path against the source directory.
func (c *Context) abs(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.SrcDir, filepath.FromSlash(p))
}

// pageEntry builds an HTML entry for a page declared in the manifest. Values
// that are not script sources (a hand-written page.html) are not entries.
func (c *Context) pageEntry(p string) (EntryPoint, bool) {
	if p == "" || !scanner.IsScript(path.Base(p)) {
		return EntryPoint{}, false
	}
	return EntryPoint{Import: []string{c.abs(p)}, HTML: true}, true
}

// firstInput returns the entry's own source file, ignoring injected scripts.
func (w *WriteContext) firstInput() string {
	if len(w.Inputs) == 0 {
		return ""
	}
	return w.Inputs[0]
}
