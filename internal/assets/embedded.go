package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed styles/*.scss
var styles embed.FS

// ImportPrefix is the stylesheet import namespace served from embedded partials.
const ImportPrefix = "postcard/"

// StyleLoader loads SCSS partials by name.
type StyleLoader interface {
	// LoadStyle loads a partial by name, normalized with PartialName.
	// Returns ErrStyleNotFound if the partial doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadStyle(name string) (string, error)
}

// EmbeddedLoader loads partials from the embedded filesystem.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadStyle loads an SCSS partial from embedded assets by name.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	name, err := PartialName(name)
	if err != nil {
		return "", err
	}

	content, err := styles.ReadFile("styles/" + name + ".scss")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}

	return string(content), nil
}

// ListStyles returns the sorted names of all embedded partials.
func (e *EmbeddedLoader) ListStyles() []string {
	entries, err := fs.ReadDir(styles, "styles")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".scss"))
	}
	sort.Strings(names)
	return names
}

// ResolveImport maps a stylesheet import URL in the "postcard/" namespace to
// the embedded partial content. ok is false for imports outside the
// namespace, which the compiler then resolves from disk.
func (e *EmbeddedLoader) ResolveImport(url string) (content string, ok bool, err error) {
	name, found := strings.CutPrefix(url, ImportPrefix)
	if !found {
		return "", false, nil
	}
	content, err = e.LoadStyle(name)
	if err != nil {
		return "", true, err
	}
	return content, true, nil
}

// Compile-time interface check.
var _ StyleLoader = (*EmbeddedLoader)(nil)
