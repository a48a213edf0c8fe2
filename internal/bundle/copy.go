package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/crxgen/crxgen/internal/processor"
)

// copyEntry copies the entry's inputs into OutDir at their path relative to
// SrcDir and returns the copied paths, slash-separated.
func (b *builder) copyEntry(e processor.EntryPoint) ([]string, error) {
	var copied []string
	for _, src := range e.Import {
		rel, err := filepath.Rel(b.opts.SrcDir, src)
		if err != nil || strings.HasPrefix(rel, "..") {
			// Outside the source root: flatten into the output root.
			rel = filepath.Base(src)
		}
		dst := filepath.Join(b.opts.OutDir, rel)
		if err := copyFile(src, dst); err != nil {
			return nil, err
		}
		copied = append(copied, filepath.ToSlash(rel))
	}
	return copied, nil
}

// copyFile copies a single file from src to dst, preserving permissions.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
	}
	return os.WriteFile(dst, data, srcInfo.Mode().Perm())
}
