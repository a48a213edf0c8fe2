package scanner

import "sort"

// Feature keys a group of files in a Layout.
type Feature string

// Features recognized by the scanner.
const (
	Background Feature = "background"
	Content    Feature = "content"
	Popup      Feature = "popup"
	Options    Feature = "options"
	Devtools   Feature = "devtools"
	Panels     Feature = "panels"
	Sandbox    Feature = "sandbox"
	Newtab     Feature = "newtab"
	History    Feature = "history"
	Bookmarks  Feature = "bookmarks"
	Sidepanel  Feature = "sidepanel"
	Icons      Feature = "icons"
)

// Layout is the result of scanning a source directory. Paths are relative to
// SrcDir and slash-separated.
type Layout struct {
	SrcDir string
	Files  map[Feature][]string

	// Icons maps a declared icon size to its file (icon-16.png → 16).
	Icons map[int]string
	// IconSource is a bare icon.png, the input for generating sized icons.
	IconSource string
}

// NewLayout returns an empty layout rooted at srcDir.
func NewLayout(srcDir string) *Layout {
	return &Layout{
		SrcDir: srcDir,
		Files:  make(map[Feature][]string),
		Icons:  make(map[int]string),
	}
}

// Get returns the files discovered for f in discovery order.
func (l *Layout) Get(f Feature) []string {
	if l == nil {
		return nil
	}
	return l.Files[f]
}

// First returns the first file discovered for f, or "".
func (l *Layout) First(f Feature) string {
	files := l.Get(f)
	if len(files) == 0 {
		return ""
	}
	return files[0]
}

// IconSizes returns the discovered icon sizes in ascending order.
func (l *Layout) IconSizes() []int {
	if l == nil {
		return nil
	}
	sizes := make([]int, 0, len(l.Icons))
	for size := range l.Icons {
		sizes = append(sizes, size)
	}
	sort.Ints(sizes)
	return sizes
}

func (l *Layout) add(f Feature, path string) {
	l.Files[f] = append(l.Files[f], path)
}
