package processor

import (
	"github.com/crxgen/crxgen/internal/manifest"
	"github.com/crxgen/crxgen/internal/scanner"
)

const sandboxFeature = "sandbox"

// sandbox fills sandbox.pages from sandbox.ts and sandboxes/*. Firefox does
// not support sandboxed pages, so nothing is discovered for Firefox targets.
type sandbox struct{}

func (sandbox) Key() string { return sandboxFeature }

func (sandbox) Match(name string) bool { return EntryIndex(sandboxFeature, name) >= 0 }

func (sandbox) Merge(ctx *Context) error {
	files := ctx.Layout.Get(scanner.Sandbox)
	if len(files) == 0 || !manifest.IsEmpty(sandboxPages(ctx.Manifest)) {
		return nil
	}
	if ctx.Target.IsFirefox() {
		ctx.log().Debug().Str("target", string(ctx.Target)).Msg("sandbox pages are not supported; skipping")
		return nil
	}
	ctx.Manifest.EnsureMap("sandbox")["pages"] = manifest.StringList(files)
	return nil
}

func sandboxPages(m manifest.Manifest) []any {
	return manifest.AsSlice(m.Map("sandbox")["pages"])
}

func (sandbox) Read(ctx *Context) EntryMap {
	pages := sandboxPages(ctx.Manifest)
	entries := EntryMap{}
	for i, p := range pages {
		s, _ := p.(string)
		if e, ok := ctx.pageEntry(s); ok {
			entries[EntryName(sandboxFeature, i, len(pages))] = e
		}
	}
	return entries
}

func (sandbox) Write(ctx *WriteContext) error {
	pages := sandboxPages(ctx.Manifest)
	idx := EntryIndex(sandboxFeature, ctx.Name)
	if idx < 0 || idx >= len(pages) {
		ctx.log().Warn().Str("entry", ctx.Name).Msg("compiled sandbox page has no manifest element")
		return nil
	}
	pages[idx] = htmlAsset(ctx.Name, ctx.Assets)
	ctx.Manifest.Map("sandbox")["pages"] = pages
	return nil
}
