package declarative

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/crxgen/crxgen/internal/logging"
	lru "github.com/hashicorp/golang-lru/v2"
)

const cacheSize = 256

// Extractor reads entry files and memoizes their declarative exports, keyed
// by path and content hash, so watch-mode rebuilds skip unchanged files.
type Extractor struct {
	cache *lru.Cache[string, map[string]any]
	log   *logging.Logger
}

// NewExtractor creates an extractor. A nil logger discards diagnostics.
func NewExtractor(log *logging.Logger) *Extractor {
	cache, err := lru.New[string, map[string]any](cacheSize)
	if err != nil {
		// Only reachable with a non-positive size.
		panic(fmt.Sprintf("declarative: creating cache: %v", err))
	}
	return &Extractor{cache: cache, log: log.OrNop()}
}

// Extract returns the literal values of the named exports of the file at
// path. It never fails: unreadable or unparsable files yield an empty map.
// The returned map is shared with the cache and must not be modified.
func (e *Extractor) Extract(path string, names ...string) map[string]any {
	src, err := os.ReadFile(path)
	if err != nil {
		e.log.Debug().Err(err).Str("file", path).Msg("reading declarative source")
		return map[string]any{}
	}

	key := cacheKey(path, src, names)
	if v, ok := e.cache.Get(key); ok {
		return v
	}

	values, err := ExtractSource(path, src, names...)
	if err != nil {
		e.log.Warn().Err(err).Str("file", path).Msg("ignoring declarative exports")
		values = map[string]any{}
	}
	e.cache.Add(key, values)
	return values
}

// Title returns the string `title` export of the file, or "".
func (e *Extractor) Title(path string) string {
	title, _ := e.Extract(path, "title")["title"].(string)
	return title
}

// ContentScriptConfig returns the `config` export of a content script, or the
// default config when the export is missing or not a literal object.
func (e *Extractor) ContentScriptConfig(path string) ContentScriptConfig {
	raw, ok := e.Extract(path, "config")["config"].(map[string]any)
	if !ok {
		return DefaultContentScriptConfig()
	}
	cfg, err := DecodeContentScriptConfig(raw)
	if err != nil {
		e.log.Warn().Err(err).Str("file", path).Msg("ignoring content script config")
		return DefaultContentScriptConfig()
	}
	return cfg
}

func cacheKey(path string, src []byte, names []string) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return fmt.Sprintf("%s\x00%x\x00%s", path, xxhash.Sum64(src), strings.Join(sorted, ","))
}

// AllURLs is the match pattern used when a content script declares none.
const AllURLs = "<all_urls>"

// ContentScriptConfig is the declarative config a content script may export.
type ContentScriptConfig struct {
	Matches               []string `json:"matches,omitempty"`
	ExcludeMatches        []string `json:"exclude_matches,omitempty"`
	IncludeGlobs          []string `json:"include_globs,omitempty"`
	ExcludeGlobs          []string `json:"exclude_globs,omitempty"`
	RunAt                 string   `json:"run_at,omitempty"`
	AllFrames             *bool    `json:"all_frames,omitempty"`
	MatchAboutBlank       *bool    `json:"match_about_blank,omitempty"`
	MatchOriginAsFallback *bool    `json:"match_origin_as_fallback,omitempty"`
	World                 string   `json:"world,omitempty"`
}

// DefaultContentScriptConfig matches every URL.
func DefaultContentScriptConfig() ContentScriptConfig {
	return ContentScriptConfig{Matches: []string{AllURLs}}
}

// DecodeContentScriptConfig converts an extracted object literal. Unknown
// keys are ignored; an empty matches list falls back to <all_urls>.
func DecodeContentScriptConfig(raw map[string]any) (ContentScriptConfig, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return ContentScriptConfig{}, fmt.Errorf("encoding config: %w", err)
	}
	var cfg ContentScriptConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return ContentScriptConfig{}, fmt.Errorf("decoding config: %w", err)
	}
	if len(cfg.Matches) == 0 {
		cfg.Matches = []string{AllURLs}
	}
	return cfg, nil
}

// Fields returns the config as manifest content_scripts fields. Only set
// values are included.
func (c ContentScriptConfig) Fields() map[string]any {
	out := map[string]any{}
	putList := func(key string, v []string) {
		if len(v) == 0 {
			return
		}
		list := make([]any, len(v))
		for i, s := range v {
			list[i] = s
		}
		out[key] = list
	}
	putList("matches", c.Matches)
	putList("exclude_matches", c.ExcludeMatches)
	putList("include_globs", c.IncludeGlobs)
	putList("exclude_globs", c.ExcludeGlobs)
	if c.RunAt != "" {
		out["run_at"] = c.RunAt
	}
	if c.AllFrames != nil {
		out["all_frames"] = *c.AllFrames
	}
	if c.MatchAboutBlank != nil {
		out["match_about_blank"] = *c.MatchAboutBlank
	}
	if c.MatchOriginAsFallback != nil {
		out["match_origin_as_fallback"] = *c.MatchOriginAsFallback
	}
	if c.World != "" {
		out["world"] = c.World
	}
	return out
}
