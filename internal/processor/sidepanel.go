package processor

import (
	"github.com/crxgen/crxgen/internal/manifest"
	"github.com/crxgen/crxgen/internal/scanner"
)

// sidepanel sets side_panel.default_path on Chromium targets, which also
// need the sidePanel permission, and sidebar_action.default_panel on Firefox.
type sidepanel struct{}

func (sidepanel) Key() string { return "sidepanel" }

func (sidepanel) Match(name string) bool { return name == "sidepanel" }

// sidepanelField returns the object key and field the target uses, and the
// pair used by the other browser family.
func sidepanelField(t manifest.Target) (key, field, otherKey, otherField string) {
	if t.IsFirefox() {
		return "sidebar_action", "default_panel", "side_panel", "default_path"
	}
	return "side_panel", "default_path", "sidebar_action", "default_panel"
}

func (sidepanel) Merge(ctx *Context) error {
	m := ctx.Manifest
	key, field, otherKey, otherField := sidepanelField(ctx.Target)
	if other := m.Map(otherKey); other != nil {
		if p, _ := other[otherField].(string); p != "" && manifest.IsEmpty(m.Map(key)[field]) {
			ctx.log().Warn().Str("from", otherKey).Str("to", key).Str("target", string(ctx.Target)).
				Msg("converting side panel declaration for target")
			m.EnsureMap(key)[field] = p
		}
		delete(m, otherKey)
	}

	if manifest.IsEmpty(m.Map(key)[field]) {
		file := ctx.Layout.First(scanner.Sidepanel)
		if file == "" {
			return nil
		}
		m.EnsureMap(key)[field] = file
	}
	if !ctx.Target.IsFirefox() {
		m.AddString("permissions", "sidePanel")
	}
	return nil
}

func (sidepanel) Read(ctx *Context) EntryMap {
	key, field, _, _ := sidepanelField(ctx.Target)
	p, _ := ctx.Manifest.Map(key)[field].(string)
	if e, ok := ctx.pageEntry(p); ok {
		return EntryMap{"sidepanel": e}
	}
	return nil
}

func (sidepanel) Write(ctx *WriteContext) error {
	page := htmlAsset(ctx.Name, ctx.Assets)
	for _, f := range [][2]string{{"side_panel", "default_path"}, {"sidebar_action", "default_panel"}} {
		if obj := ctx.Manifest.Map(f[0]); obj != nil && !manifest.IsEmpty(obj[f[1]]) {
			obj[f[1]] = page
		}
	}
	return nil
}
