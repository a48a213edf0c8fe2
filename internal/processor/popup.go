package processor

import (
	"github.com/crxgen/crxgen/internal/manifest"
	"github.com/crxgen/crxgen/internal/scanner"
)

// popup sets the toolbar action's default_popup (action on MV3,
// browser_action on MV2) and fills default_title from the popup's
// `title` export.
type popup struct{}

func (popup) Key() string { return "popup" }

func (popup) Match(name string) bool { return name == "popup" }

func (popup) Merge(ctx *Context) error {
	key := ctx.Target.ActionKey()
	if !manifest.IsEmpty(ctx.Manifest.Map(key)["default_popup"]) {
		return nil
	}
	file := ctx.Layout.First(scanner.Popup)
	if file == "" {
		return nil
	}
	ctx.Manifest.EnsureMap(key)["default_popup"] = file
	return nil
}

func (popup) Read(ctx *Context) EntryMap {
	p, _ := ctx.Manifest.Map(ctx.Target.ActionKey())["default_popup"].(string)
	if e, ok := ctx.pageEntry(p); ok {
		return EntryMap{"popup": e}
	}
	return nil
}

func (popup) Write(ctx *WriteContext) error {
	action := ctx.Manifest.Map(ctx.Target.ActionKey())
	if action == nil {
		return nil
	}
	action["default_popup"] = htmlAsset(ctx.Name, ctx.Assets)

	if title, _ := action["default_title"].(string); title == "" {
		if title := ctx.extractor().Title(ctx.firstInput()); title != "" {
			action["default_title"] = title
		}
	}
	return nil
}
