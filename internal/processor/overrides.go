package processor

import (
	"github.com/crxgen/crxgen/internal/manifest"
	"github.com/crxgen/crxgen/internal/scanner"
)

// overridePages are the chrome_url_overrides keys, each backed by a
// same-named file.
var overridePages = []string{"newtab", "history", "bookmarks"}

// overrides fills chrome_url_overrides. Browsers accept a single override per
// extension; a warning is logged when more than one is declared.
type overrides struct{}

func (overrides) Key() string { return "overrides" }

func (overrides) Match(name string) bool {
	for _, p := range overridePages {
		if name == p {
			return true
		}
	}
	return false
}

func (overrides) Merge(ctx *Context) error {
	for _, page := range overridePages {
		file := ctx.Layout.First(scanner.Feature(page))
		if file == "" {
			continue
		}
		ovr := ctx.Manifest.EnsureMap("chrome_url_overrides")
		if manifest.IsEmpty(ovr[page]) {
			ovr[page] = file
		}
	}
	if n := len(ctx.Manifest.Map("chrome_url_overrides")); n > 1 {
		ctx.log().Warn().Int("overrides", n).Msg("browsers allow one chrome_url_overrides page per extension")
	}
	return nil
}

func (overrides) Read(ctx *Context) EntryMap {
	ovr := ctx.Manifest.Map("chrome_url_overrides")
	entries := EntryMap{}
	for _, page := range overridePages {
		p, _ := ovr[page].(string)
		if e, ok := ctx.pageEntry(p); ok {
			entries[page] = e
		}
	}
	return entries
}

func (overrides) Write(ctx *WriteContext) error {
	ovr := ctx.Manifest.Map("chrome_url_overrides")
	if ovr == nil {
		return nil
	}
	ovr[ctx.Name] = htmlAsset(ctx.Name, ctx.Assets)
	return nil
}
