package processor

import (
	"path"
	"regexp"
	"strconv"

	"github.com/crxgen/crxgen/internal/manifest"
)

var sizeSuffix = regexp.MustCompile(`(\d+)\.[A-Za-z0-9]+$`)

// icons merges sized icon files into manifest.icons and the action's
// default_icon. Existing keys are never overwritten.
type icons struct{}

func (icons) Key() string { return "icons" }

func (icons) Match(name string) bool { return name == "icons" || name == "assets" }

func (icons) Merge(ctx *Context) error {
	sizes := ctx.Layout.IconSizes()
	if len(sizes) == 0 {
		return nil
	}

	m := ctx.Manifest
	iconMap := m.EnsureMap("icons")
	action := m.EnsureMap(ctx.Target.ActionKey())
	defaultIcon := manifest.AsMap(action["default_icon"])
	if defaultIcon == nil && manifest.IsEmpty(action["default_icon"]) {
		defaultIcon = map[string]any{}
		action["default_icon"] = defaultIcon
	}

	for _, size := range sizes {
		key := strconv.Itoa(size)
		file := ctx.Layout.Icons[size]
		if manifest.IsEmpty(iconMap[key]) {
			iconMap[key] = file
		}
		// A string default_icon is an explicit single icon and stays as is.
		if defaultIcon != nil && manifest.IsEmpty(defaultIcon[key]) {
			defaultIcon[key] = file
		}
	}
	return nil
}

// iconMaps returns the icon objects that hold file paths.
func iconMaps(ctx *Context) []map[string]any {
	var maps []map[string]any
	if m := ctx.Manifest.Map("icons"); m != nil {
		maps = append(maps, m)
	}
	if m := manifest.AsMap(ctx.Manifest.Map(ctx.Target.ActionKey())["default_icon"]); m != nil {
		maps = append(maps, m)
	}
	return maps
}

func (icons) Read(ctx *Context) EntryMap {
	seen := map[string]bool{}
	var imports []string
	add := func(v any) {
		s, ok := v.(string)
		if !ok || s == "" || seen[s] {
			return
		}
		seen[s] = true
		imports = append(imports, ctx.abs(s))
	}

	for _, m := range iconMaps(ctx) {
		for _, k := range manifest.SortedKeys(m) {
			add(m[k])
		}
	}
	if s, ok := ctx.Manifest.Map(ctx.Target.ActionKey())["default_icon"].(string); ok {
		add(s)
	}
	if len(imports) == 0 {
		return nil
	}
	return EntryMap{"icons": {Import: imports}}
}

func (icons) Write(ctx *WriteContext) error {
	for _, m := range iconMaps(ctx.Context) {
		for key, v := range m {
			s, _ := v.(string)
			if asset := matchIcon(s, key, ctx.Assets); asset != "" {
				m[key] = asset
			}
		}
	}
	action := ctx.Manifest.Map(ctx.Target.ActionKey())
	if s, ok := action["default_icon"].(string); ok {
		if asset := matchIcon(s, "", ctx.Assets); asset != "" {
			action["default_icon"] = asset
		}
	}
	return nil
}

// matchIcon finds the emitted asset for a declared icon, first by file name
// and then by the size suffix of the asset name.
func matchIcon(declared, size string, assets []string) string {
	base := path.Base(declared)
	for _, a := range assets {
		if path.Base(a) == base {
			return a
		}
	}
	if size == "" {
		return ""
	}
	for _, a := range assets {
		if m := sizeSuffix.FindStringSubmatch(path.Base(a)); m != nil && m[1] == size {
			return a
		}
	}
	return ""
}
