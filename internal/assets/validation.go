package assets

import (
	"fmt"
	"strings"
)

// PartialName normalizes the name used to import a built-in partial.
// Sass allows a leading underscore and the .scss extension in imports, so
// "_reset.scss", "_reset" and "reset" all name the same partial.
// Returns ErrInvalidAssetName for empty names and for names that could
// leave the partials directory.
func PartialName(name string) (string, error) {
	normalized := strings.TrimSuffix(strings.TrimPrefix(name, "_"), ".scss")
	if normalized == "" {
		return "", fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(normalized, "/\\.\x00") {
		return "", fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return normalized, nil
}
