package processor

import (
	"path"
	"strconv"
	"strings"
)

// EntryName names the i-th of n entries of an index-addressed feature:
// "content" when n is 1, otherwise "content0", "content1", ...
func EntryName(feature string, i, n int) string {
	if n == 1 {
		return feature
	}
	return feature + strconv.Itoa(i)
}

// EntryIndex parses the array index back out of an entry name. A bare
// feature name is index 0; a name that does not belong to the feature or has
// a non-numeric suffix yields -1.
func EntryIndex(feature, name string) int {
	suffix, ok := strings.CutPrefix(name, feature)
	if !ok {
		return -1
	}
	if suffix == "" {
		return 0
	}
	i, err := strconv.Atoi(suffix)
	if err != nil || i < 0 {
		return -1
	}
	return i
}

// htmlAsset returns the emitted page for an HTML entry, falling back to <name>.html.
func htmlAsset(name string, assets []string) string {
	for _, a := range assets {
		if strings.HasSuffix(a, ".html") {
			return a
		}
	}
	return name + ".html"
}

// assetsWithExt filters assets by extension.
func assetsWithExt(assets []string, exts ...string) []string {
	var out []string
	for _, a := range assets {
		ext := path.Ext(a)
		for _, e := range exts {
			if ext == e {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

func jsAssets(assets []string) []string {
	return assetsWithExt(assets, ".js", ".mjs")
}

func cssAssets(assets []string) []string {
	return assetsWithExt(assets, ".css")
}
