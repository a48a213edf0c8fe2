package processor

import (
	"github.com/crxgen/crxgen/internal/manifest"
	"github.com/crxgen/crxgen/internal/scanner"
)

// background declares the extension's background context. Chromium-family
// targets take a single background.service_worker; Firefox takes
// background.scripts. Only the active shape is ever populated.
type background struct{}

func (background) Key() string { return "background" }

func (background) Match(name string) bool { return name == "background" }

func (background) Merge(ctx *Context) error {
	m := ctx.Manifest
	if bg := m.Map("background"); bg != nil && (!manifest.IsEmpty(bg["service_worker"]) || !manifest.IsEmpty(bg["scripts"])) {
		normalizeBackground(ctx, bg)
		return nil
	}

	file := ctx.Layout.First(scanner.Background)
	if file == "" {
		return nil
	}
	bg := m.EnsureMap("background")
	if ctx.Target.UsesServiceWorker() {
		bg["service_worker"] = file
	} else {
		bg["scripts"] = []any{file}
	}
	return nil
}

// normalizeBackground converts an explicit background declaration to the
// shape the target accepts.
func normalizeBackground(ctx *Context, bg map[string]any) {
	scripts := manifest.Strings(bg["scripts"])
	worker, _ := bg["service_worker"].(string)

	if ctx.Target.UsesServiceWorker() {
		if worker == "" && len(scripts) > 0 {
			if len(scripts) > 1 {
				ctx.log().Warn().Strs("scripts", scripts).
					Msg("service worker targets take one background script; using the first")
			}
			bg["service_worker"] = scripts[0]
		}
		delete(bg, "scripts")
		return
	}

	if len(scripts) == 0 && worker != "" {
		bg["scripts"] = []any{worker}
	}
	delete(bg, "service_worker")
}

func (background) Read(ctx *Context) EntryMap {
	bg := ctx.Manifest.Map("background")
	if bg == nil {
		return nil
	}
	sources := manifest.Strings(bg["scripts"])
	if worker, ok := bg["service_worker"].(string); ok && worker != "" {
		sources = []string{worker}
	}
	if len(sources) == 0 {
		return nil
	}

	imports := make([]string, 0, len(sources)+1)
	for _, s := range sources {
		imports = append(imports, ctx.abs(s))
	}
	if ctx.Mode.IsDev() && ctx.Runtime.Background != "" {
		imports = append(imports, ctx.Runtime.Background)
	}
	return EntryMap{"background": {Import: imports}}
}

func (background) Write(ctx *WriteContext) error {
	js := jsAssets(ctx.Assets)
	if len(js) == 0 {
		return nil
	}
	bg := ctx.Manifest.EnsureMap("background")
	if ctx.Target.UsesServiceWorker() {
		bg["service_worker"] = js[0]
		delete(bg, "scripts")
	} else {
		bg["scripts"] = manifest.StringList(js)
		delete(bg, "service_worker")
	}
	return nil
}
