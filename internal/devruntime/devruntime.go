// Package devruntime provides the scripts injected into development builds:
// a background reload client and a content-script bridge.
package devruntime

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/crxgen/crxgen/internal/branding"
	"github.com/crxgen/crxgen/internal/processor"
)

//go:embed scripts/background.js
var backgroundJS []byte

//go:embed scripts/content.js
var contentJS []byte

const portPlaceholder = "__CRXGEN_RELOAD_PORT__"

// DefaultPort is the default reload server port.
const DefaultPort = 35729

// Dir returns the directory the runtime scripts are written to.
func Dir(root string) string {
	return filepath.Join(root, branding.WorkDir(), "runtime")
}

// Background returns the background reload client for port.
func Background(port int) []byte {
	return bytes.ReplaceAll(backgroundJS, []byte(portPlaceholder), []byte(strconv.Itoa(port)))
}

// Content returns the content-script bridge.
func Content() []byte {
	return bytes.Clone(contentJS)
}

// Materialize writes the runtime scripts under root and returns their paths
// for injection into development entries.
func Materialize(root string, port int) (processor.Runtime, error) {
	dir := Dir(root)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return processor.Runtime{}, fmt.Errorf("creating %s: %w", dir, err)
	}

	rt := processor.Runtime{
		Background: filepath.Join(dir, "background.js"),
		Content:    filepath.Join(dir, "content.js"),
	}
	files := map[string][]byte{
		rt.Background: Background(port),
		rt.Content:    Content(),
	}
	for path, data := range files {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return processor.Runtime{}, fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return rt, nil
}
