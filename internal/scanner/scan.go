package scanner

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/crxgen/crxgen/internal/logging"
	"github.com/gobwas/glob"
)

var (
	scriptGlob      = glob.MustCompile("*.{ts,tsx,mts,cts,js,jsx,mjs,cjs,vue,svelte}")
	declarationGlob = glob.MustCompile("*.d.{ts,mts,cts}")
	iconPattern     = regexp.MustCompile(`^icon-?(\d+)\.png$`)
)

// singleFeatures are recognized as X.{ext} or X/index.{ext}.
var singleFeatures = []Feature{
	Background,
	Content,
	Popup,
	Options,
	Devtools,
	Sandbox,
	Newtab,
	History,
	Bookmarks,
	Sidepanel,
}

// pluralDirs maps a directory whose children are each an entry to the
// feature they belong to. Children are X.{ext} or X/index.{ext}.
var pluralDirs = []struct {
	dir     string
	feature Feature
}{
	{"contents", Content},
	{"sandboxes", Sandbox},
	{"panels", Panels},
	{"devtools/panels", Panels},
}

// iconRoots are searched recursively for icon files.
var iconRoots = []string{"assets", "icons"}

// IsScript reports whether name is a recognized entry source file.
func IsScript(name string) bool {
	return scriptGlob.Match(name) && !declarationGlob.Match(name)
}

// Scan walks srcDir and classifies its files. It never fails; see the
// package documentation.
func Scan(srcDir string, log *logging.Logger) *Layout {
	log = log.OrNop()
	layout := NewLayout(srcDir)

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("dir", srcDir).Msg("source directory does not exist")
		} else {
			log.Warn().Err(err).Str("dir", srcDir).Msg("reading source directory")
		}
		return layout
	}

	top := indexDir(entries)
	for _, f := range singleFeatures {
		if p := resolveSingle(srcDir, "", string(f), top, log); p != "" {
			layout.add(f, p)
		}
	}

	for _, pd := range pluralDirs {
		for _, p := range scanPlural(srcDir, pd.dir, log) {
			layout.add(pd.feature, p)
		}
	}

	for _, root := range iconRoots {
		scanIcons(layout, root, log)
	}

	return layout
}

// dirIndex records the script files (by base name) and subdirectories of a
// directory listing.
type dirIndex struct {
	scripts map[string]string
	dirs    map[string]bool
}

func indexDir(entries []os.DirEntry) dirIndex {
	idx := dirIndex{scripts: map[string]string{}, dirs: map[string]bool{}}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			idx.dirs[name] = true
			continue
		}
		if !IsScript(name) {
			continue
		}
		base := strings.TrimSuffix(name, filepath.Ext(name))
		// os.ReadDir sorts by name, so the first extension wins.
		if _, ok := idx.scripts[base]; !ok {
			idx.scripts[base] = name
		}
	}
	return idx
}

// resolveSingle returns rel/name.{ext} or rel/name/index.{ext}, preferring
// the file form.
func resolveSingle(srcDir, rel, name string, idx dirIndex, log *logging.Logger) string {
	if file, ok := idx.scripts[name]; ok {
		return path.Join(rel, file)
	}
	if !idx.dirs[name] {
		return ""
	}
	sub := path.Join(rel, name)
	entries, err := os.ReadDir(filepath.Join(srcDir, filepath.FromSlash(sub)))
	if err != nil {
		log.Warn().Err(err).Str("dir", sub).Msg("reading entry directory")
		return ""
	}
	if file, ok := indexDir(entries).scripts["index"]; ok {
		return path.Join(sub, file)
	}
	return ""
}

func scanPlural(srcDir, dir string, log *logging.Logger) []string {
	entries, err := os.ReadDir(filepath.Join(srcDir, filepath.FromSlash(dir)))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("dir", dir).Msg("reading entry directory")
		}
		return nil
	}

	idx := indexDir(entries)
	var result []string
	for _, e := range entries {
		name := e.Name()
		var base string
		if e.IsDir() {
			base = name
		} else if IsScript(name) {
			base = strings.TrimSuffix(name, filepath.Ext(name))
			if idx.scripts[base] != name {
				continue // another extension of the same base already taken
			}
		} else {
			continue
		}
		if e.IsDir() && idx.scripts[base] != "" {
			continue // X.ts wins over X/index.ts
		}
		if p := resolveSingle(srcDir, dir, base, idx, log); p != "" {
			result = append(result, p)
		}
	}
	return result
}

func scanIcons(layout *Layout, root string, log *logging.Logger) {
	rootDir := filepath.Join(layout.SrcDir, root)
	if _, err := os.Stat(rootDir); err != nil {
		return
	}

	err := filepath.WalkDir(rootDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", p).Msg("walking icon directory")
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(layout.SrcDir, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		name := d.Name()
		if name == "icon.png" {
			if layout.IconSource == "" {
				layout.IconSource = rel
			}
			return nil
		}
		m := iconPattern.FindStringSubmatch(name)
		if m == nil {
			return nil
		}
		size, err := strconv.Atoi(m[1])
		if err != nil || size <= 0 {
			return nil
		}
		if _, ok := layout.Icons[size]; !ok {
			layout.Icons[size] = rel
			layout.add(Icons, rel)
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("dir", root).Msg("scanning icons")
	}
}
