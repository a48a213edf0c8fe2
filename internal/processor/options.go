package processor

import "github.com/crxgen/crxgen/internal/scanner"

// options sets options_ui.page. A user-declared options_page is honored
// instead and patched in place.
type options struct{}

func (options) Key() string { return "options" }

func (options) Match(name string) bool { return name == "options" }

func (options) Merge(ctx *Context) error {
	m := ctx.Manifest
	if m.Has("options_page") || optionsUIPage(ctx) != "" {
		return nil
	}
	file := ctx.Layout.First(scanner.Options)
	if file == "" {
		return nil
	}
	m.EnsureMap("options_ui")["page"] = file
	return nil
}

func optionsUIPage(ctx *Context) string {
	page, _ := ctx.Manifest.Map("options_ui")["page"].(string)
	return page
}

func (options) Read(ctx *Context) EntryMap {
	p := optionsUIPage(ctx)
	if p == "" {
		p = ctx.Manifest.String("options_page")
	}
	if e, ok := ctx.pageEntry(p); ok {
		return EntryMap{"options": e}
	}
	return nil
}

func (options) Write(ctx *WriteContext) error {
	page := htmlAsset(ctx.Name, ctx.Assets)
	switch {
	case optionsUIPage(ctx.Context) != "":
		ctx.Manifest.Map("options_ui")["page"] = page
	case ctx.Manifest.Has("options_page"):
		ctx.Manifest["options_page"] = page
	}
	return nil
}
