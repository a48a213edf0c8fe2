package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// PackageFile is the project's package descriptor.
const PackageFile = "package.json"

// PackageMeta is the subset of package.json that seeds a manifest.
type PackageMeta struct {
	Name        string
	Version     string // pre-release and build suffixes removed
	Description string
	Author      string
	Homepage    string
	Manifest    Manifest // the optional "manifest" field
}

type packageJSON struct {
	Name        string          `json:"name"`
	DisplayName string          `json:"displayName"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Author      json.RawMessage `json:"author"`
	Homepage    string          `json:"homepage"`
	Manifest    map[string]any  `json:"manifest"`
}

// ReadPackage reads package.json from dir. A missing file is not an error:
// it yields an empty PackageMeta so the manifest simply omits those fields.
func ReadPackage(dir string) (*PackageMeta, error) {
	path := filepath.Join(dir, PackageFile)
	data, err := readFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &PackageMeta{}, nil
		}
		return nil, err
	}

	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	meta := &PackageMeta{
		Name:        pkg.Name,
		Version:     TrimVersion(pkg.Version),
		Description: pkg.Description,
		Author:      parseAuthor(pkg.Author),
		Homepage:    pkg.Homepage,
	}
	if pkg.DisplayName != "" {
		meta.Name = pkg.DisplayName
	}
	if pkg.Manifest != nil {
		meta.Manifest = Manifest(pkg.Manifest)
	}
	return meta, nil
}

// Seed returns the manifest fields derived from package metadata. Empty
// fields are omitted; homepage maps to homepage_url.
func (p *PackageMeta) Seed() Manifest {
	m := New()
	if p == nil {
		return m
	}
	set := func(key, value string) {
		if value != "" {
			m[key] = value
		}
	}
	set("name", p.Name)
	set("version", p.Version)
	set("description", p.Description)
	set("author", p.Author)
	set("homepage_url", p.Homepage)
	return m
}

// TrimVersion drops pre-release and build metadata ("1.2.0-beta.1" → "1.2.0").
// Browsers only accept dot-separated integers in manifest.version.
func TrimVersion(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return ""
	}
	v, err := semver.NewVersion(strings.TrimPrefix(version, "v"))
	if err != nil {
		// Not semver (e.g. "1.2.3.4"); cut at the first suffix marker.
		if i := strings.IndexAny(version, "-+"); i >= 0 {
			return version[:i]
		}
		return version
	}
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}

// parseAuthor accepts the string form ("Name <mail> (url)") and the object
// form ({"name": ...}) of the package.json author field.
func parseAuthor(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if i := strings.IndexAny(s, "<("); i >= 0 {
			s = s[:i]
		}
		return strings.TrimSpace(s)
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return strings.TrimSpace(obj.Name)
	}
	return ""
}
