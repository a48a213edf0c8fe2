package declarative

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/evanw/esbuild/pkg/api"
)

// ErrNoScript indicates a single-file component without an exporting <script> block.
var ErrNoScript = errors.New("no script block with exports")

// ExtractSource returns the literal values of the named exports of a source
// file. filename selects the dialect by extension. Missing or non-literal
// exports are absent from the result; an error means the file could not be
// parsed at all.
func ExtractSource(filename string, src []byte, names ...string) (map[string]any, error) {
	code, loader, err := scriptOf(filename, src)
	if err != nil {
		return nil, err
	}

	result := api.Transform(string(code), api.TransformOptions{
		Loader:     loader,
		Sourcefile: filename,
		Target:     api.ESNext,
		LogLevel:   api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		msg := result.Errors[0]
		if msg.Location != nil {
			return nil, fmt.Errorf("transforming %s:%d: %s", filename, msg.Location.Line, msg.Text)
		}
		return nil, fmt.Errorf("transforming %s: %s", filename, msg.Text)
	}

	values, err := parseExports(result.Code, names)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return values, nil
}

// scriptOf returns the script text of a source file and the esbuild loader
// for its dialect.
func scriptOf(filename string, src []byte) ([]byte, api.Loader, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ts", ".mts", ".cts":
		return src, api.LoaderTS, nil
	case ".tsx":
		return src, api.LoaderTSX, nil
	case ".vue", ".svelte":
		return componentScript(filename, src)
	default:
		// Plain JavaScript commonly carries JSX as well.
		return src, api.LoaderJSX, nil
	}
}

// componentScript lifts the first <script> block that exports something out
// of a single-file component.
func componentScript(filename string, src []byte) ([]byte, api.Loader, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(src))
	if err != nil {
		return nil, api.LoaderNone, fmt.Errorf("parsing component %s: %w", filename, err)
	}

	var code string
	loader := api.LoaderJS
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if !strings.Contains(text, "export") {
			return true
		}
		code = text
		switch lang, _ := s.Attr("lang"); lang {
		case "ts":
			loader = api.LoaderTS
		case "tsx":
			loader = api.LoaderTSX
		case "jsx":
			loader = api.LoaderJSX
		}
		return false
	})
	if code == "" {
		return nil, api.LoaderNone, fmt.Errorf("%s: %w", filename, ErrNoScript)
	}
	return []byte(code), loader, nil
}
