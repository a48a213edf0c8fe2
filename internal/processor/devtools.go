package processor

import (
	"path"
	"strings"

	"github.com/crxgen/crxgen/internal/scanner"
)

const panelPrefix = "panels/"

// devtools sets devtools_page. Panels discovered under panels/ or
// devtools/panels/ are extra HTML entries named panels/<name>; the devtools
// page creates them at runtime, so they have no manifest field.
type devtools struct{}

func (devtools) Key() string { return "devtools" }

func (devtools) Match(name string) bool {
	return name == "devtools" || strings.HasPrefix(name, panelPrefix)
}

func (devtools) Merge(ctx *Context) error {
	if ctx.Manifest.Has("devtools_page") {
		return nil
	}
	if file := ctx.Layout.First(scanner.Devtools); file != "" {
		ctx.Manifest["devtools_page"] = file
	}
	return nil
}

func (devtools) Read(ctx *Context) EntryMap {
	entries := EntryMap{}
	if e, ok := ctx.pageEntry(ctx.Manifest.String("devtools_page")); ok {
		entries["devtools"] = e
	}
	for _, p := range ctx.Layout.Get(scanner.Panels) {
		if e, ok := ctx.pageEntry(p); ok {
			entries[panelPrefix+panelName(p)] = e
		}
	}
	return entries
}

// panelName is the file's base name, or the directory name for X/index.ts.
func panelName(p string) string {
	base := path.Base(p)
	name := strings.TrimSuffix(base, path.Ext(base))
	if name == "index" {
		return path.Base(path.Dir(p))
	}
	return name
}

func (devtools) Write(ctx *WriteContext) error {
	if ctx.Name == "devtools" {
		ctx.Manifest["devtools_page"] = htmlAsset(ctx.Name, ctx.Assets)
	}
	return nil
}
