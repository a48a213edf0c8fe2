package processor

import "testing"

func TestEntryNameAndIndexRoundTrip(t *testing.T) {
	for _, n := range []int{1, 2, 3} {
		for i := 0; i < n; i++ {
			name := EntryName("content", i, n)
			if n == 1 && name != "content" {
				t.Errorf("EntryName(content, 0, 1) = %q, want content", name)
			}
			if got := EntryIndex("content", name); got != i {
				t.Errorf("EntryIndex(%q) = %d, want %d", name, got, i)
			}
		}
	}
}

func TestEntryIndex(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"content", 0},
		{"content0", 0},
		{"content12", 12},
		{"contents", -1},
		{"popup", -1},
		{"content-1", -1},
	}
	for _, tt := range tests {
		if got := EntryIndex("content", tt.name); got != tt.want {
			t.Errorf("EntryIndex(content, %q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestFindDispatch(t *testing.T) {
	tests := map[string]string{
		"background":     "background",
		"content":        "content",
		"content3":       "content",
		"popup":          "popup",
		"options":        "options",
		"devtools":       "devtools",
		"panels/network": "devtools",
		"sandbox1":       "sandbox",
		"icons":          "icons",
		"assets":         "icons",
		"newtab":         "overrides",
		"bookmarks":      "overrides",
		"sidepanel":      "sidepanel",
	}
	for name, key := range tests {
		p := Find(Registry(), name)
		if p == nil {
			t.Errorf("Find(%q) = nil, want %s", name, key)
			continue
		}
		if p.Key() != key {
			t.Errorf("Find(%q) = %s, want %s", name, p.Key(), key)
		}
	}
	if p := Find(Registry(), "vendor"); p != nil {
		t.Errorf("Find(vendor) = %s, want nil", p.Key())
	}
}

func TestAssetFilters(t *testing.T) {
	assets := []string{"popup.html", "popup.js", "popup.css", "chunk.mjs"}
	if got := htmlAsset("popup", assets); got != "popup.html" {
		t.Errorf("htmlAsset = %q", got)
	}
	if got := htmlAsset("options", nil); got != "options.html" {
		t.Errorf("htmlAsset fallback = %q", got)
	}
	if got := jsAssets(assets); len(got) != 2 {
		t.Errorf("jsAssets = %v", got)
	}
	if got := cssAssets(assets); len(got) != 1 || got[0] != "popup.css" {
		t.Errorf("cssAssets = %v", got)
	}
}
