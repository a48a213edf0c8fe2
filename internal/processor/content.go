package processor

import (
	"github.com/crxgen/crxgen/internal/manifest"
	"github.com/crxgen/crxgen/internal/scanner"
)

const contentFeature = "content"

// content maps content.ts and contents/* to content_scripts, one element per
// file. Element i is built by entry EntryName("content", i, n).
type content struct{}

func (content) Key() string { return contentFeature }

func (content) Match(name string) bool { return EntryIndex(contentFeature, name) >= 0 }

func (content) Merge(ctx *Context) error {
	m := ctx.Manifest
	if m.Has("content_scripts") {
		return nil
	}
	files := ctx.Layout.Get(scanner.Content)
	if len(files) == 0 {
		return nil
	}

	scripts := make([]any, 0, len(files))
	for _, f := range files {
		cs := ctx.extractor().ContentScriptConfig(ctx.abs(f)).Fields()
		cs["js"] = []any{f}
		scripts = append(scripts, cs)
	}
	m["content_scripts"] = scripts
	return nil
}

func (content) Read(ctx *Context) EntryMap {
	list := ctx.Manifest.Slice("content_scripts")
	entries := EntryMap{}
	for i, el := range list {
		cs := manifest.AsMap(el)
		if cs == nil {
			continue
		}
		sources := append(manifest.Strings(cs["js"]), manifest.Strings(cs["css"])...)
		if len(sources) == 0 {
			continue
		}
		imports := make([]string, 0, len(sources)+1)
		for _, s := range sources {
			imports = append(imports, ctx.abs(s))
		}
		if ctx.Mode.IsDev() && ctx.Runtime.Content != "" {
			imports = append(imports, ctx.Runtime.Content)
		}
		entries[EntryName(contentFeature, i, len(list))] = EntryPoint{Import: imports}
	}
	return entries
}

func (content) Write(ctx *WriteContext) error {
	idx := EntryIndex(contentFeature, ctx.Name)
	list := ctx.Manifest.Slice("content_scripts")
	if idx < 0 || idx >= len(list) {
		ctx.log().Warn().Str("entry", ctx.Name).Int("content_scripts", len(list)).
			Msg("compiled content script has no manifest element")
		return nil
	}
	cs := manifest.AsMap(list[idx])
	if cs == nil {
		return nil
	}

	if manifest.IsEmpty(cs["matches"]) {
		cfg := ctx.extractor().ContentScriptConfig(ctx.firstInput())
		for k, v := range cfg.Fields() {
			if _, ok := cs[k]; !ok {
				cs[k] = v
			}
		}
	}

	if js := jsAssets(ctx.Assets); len(js) > 0 {
		cs["js"] = manifest.StringList(js)
	} else {
		delete(cs, "js")
	}
	if css := cssAssets(ctx.Assets); len(css) > 0 {
		cs["css"] = manifest.StringList(css)
	} else {
		delete(cs, "css")
	}
	return nil
}
