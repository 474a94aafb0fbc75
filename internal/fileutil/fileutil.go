// Package fileutil holds the small file and path helpers shared by the
// converter, the config loader and the preview renderer.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidExtension is returned for temp file extensions that are empty or
// could escape the temp directory.
var ErrInvalidExtension = errors.New("invalid temp file extension")

// tempPrefix names temp files so leftovers are easy to spot.
const tempPrefix = "postcard-"

// WriteTempFile stores content in a new temp file ending in "."+ext, for
// tools that only load documents from disk. The caller must run cleanup.
func WriteTempFile(content, ext string) (path string, cleanup func(), err error) {
	if ext == "" || strings.ContainsAny(ext, "/\\\x00") {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
	}

	f, err := os.CreateTemp("", tempPrefix+"*."+ext)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}
	path = f.Name()
	cleanup = func() { _ = os.Remove(path) }

	_, err = f.WriteString(content)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", err)
	}

	return path, cleanup, nil
}

// FileExists reports whether path names a regular file (not a directory).
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// IsFilePath reports whether a component reference names a file rather than
// a registered component: it holds a path separator or has an extension.
// "welcome" and "welcome-email" are names; "welcome.html",
// "./emails/welcome" and "C:\emails\welcome" are paths.
func IsFilePath(ref string) bool {
	return strings.ContainsAny(ref, "/\\") || filepath.Ext(ref) != ""
}

// HasExtension reports whether path ends in one of exts, ignoring case.
// exts carry their leading dot.
func HasExtension(path string, exts ...string) bool {
	ext := filepath.Ext(path)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
