package bundle

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path"
	"path/filepath"
)

//go:embed templates/page.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html.tmpl"))

type pageData struct {
	Title   string
	Scripts []string
	Styles  []string
}

// writePage writes <name>.html beside the entry's bundle and returns its path
// relative to OutDir. Asset references are relative to the page.
func (b *builder) writePage(name string, assets []string) (string, error) {
	page := name + ".html"
	dir := path.Dir(page)

	data := pageData{Title: b.opts.Titles[name]}
	if data.Title == "" {
		data.Title = path.Base(name)
	}
	for _, a := range assets {
		rel := relTo(dir, a)
		switch path.Ext(a) {
		case ".js":
			data.Scripts = append(data.Scripts, rel)
		case ".css":
			data.Styles = append(data.Styles, rel)
		}
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", page, err)
	}

	dst := filepath.Join(b.opts.OutDir, filepath.FromSlash(page))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
	}
	if err := os.WriteFile(dst, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", dst, err)
	}
	return page, nil
}

// relTo returns target relative to dir; both are slash paths under OutDir.
func relTo(dir, target string) string {
	rel, err := filepath.Rel(filepath.FromSlash(dir), filepath.FromSlash(target))
	if err != nil {
		return target
	}
	return filepath.ToSlash(rel)
}
