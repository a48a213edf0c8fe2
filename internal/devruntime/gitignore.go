package devruntime

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/crxgen/crxgen/internal/branding"
)

// ignoreLine is the .gitignore rule for the per-project work directory.
func ignoreLine() string {
	return "/" + branding.WorkDir() + "/"
}

// EnsureIgnored appends the work directory to the project's .gitignore. A
// project without a .gitignore is left alone, as is one that already ignores
// the directory. It reports whether the file changed.
func EnsureIgnored(root string) (bool, error) {
	gitignorePath := filepath.Join(root, ".gitignore")
	line := ignoreLine()

	content, err := os.ReadFile(gitignorePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("reading .gitignore: %w", err)
	}

	bare := strings.Trim(line, "/")
	for _, l := range strings.Split(string(content), "\n") {
		if strings.Trim(strings.TrimSpace(l), "/") == bare {
			return false, nil
		}
	}

	// Ensure there's a newline before our addition.
	suffix := line + "\n"
	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		suffix = "\n" + suffix
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return false, fmt.Errorf("opening .gitignore for append: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(suffix); err != nil {
		return false, fmt.Errorf("writing to .gitignore: %w", err)
	}
	return true, nil
}
