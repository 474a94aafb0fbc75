package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bep/golibsass/libsass"

	"github.com/alnah/go-postcard/internal/fileutil"
)

// StyleCompiler compiles a stylesheet source file into flat CSS.
type StyleCompiler interface {
	// Compile returns "" when path is empty.
	Compile(ctx context.Context, path string) (string, error)
}

// ImportResolver serves stylesheet imports that don't live on disk.
type ImportResolver interface {
	ResolveImport(url string) (content string, ok bool, err error)
}

// LibSassCompiler compiles SCSS, indented Sass and plain CSS with libsass.
// A transpiler is created per Compile call and discarded afterwards, so the
// compiler holds no state between runs.
type LibSassCompiler struct {
	includePaths []string
	imports      ImportResolver
}

// NewLibSassCompiler creates a compiler that resolves imports from imports
// first, then from the working directory, then from includePaths. The
// stylesheet's own directory is searched last.
func NewLibSassCompiler(imports ImportResolver, includePaths ...string) *LibSassCompiler {
	paths := make([]string, 0, len(includePaths)+1)
	paths = append(paths, ".")
	paths = append(paths, includePaths...)
	return &LibSassCompiler{includePaths: paths, imports: imports}
}

// Compile reads the stylesheet at path and compiles it to CSS.
// Returns ErrReadStyles if the file can't be read and ErrStyleCompile with
// the compiler diagnostic on syntax errors.
func (c *LibSassCompiler) Compile(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path) // #nosec G304 -- user-provided path
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadStyles, err)
	}

	includePaths := make([]string, 0, len(c.includePaths)+1)
	includePaths = append(includePaths, c.includePaths...)
	includePaths = append(includePaths, filepath.Dir(path))

	transpiler, err := libsass.New(libsass.Options{
		IncludePaths:   includePaths,
		OutputStyle:    libsass.CompressedStyle,
		SassSyntax:     fileutil.HasExtension(path, ".sass"),
		ImportResolver: c.resolveImport,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStyleCompile, err)
	}

	type result struct {
		css string
		err error
	}

	done := make(chan result, 1)

	go func() {
		res, err := transpiler.Execute(string(data))
		if err != nil {
			done <- result{err: fmt.Errorf("%w: %s: %v", ErrStyleCompile, path, err)}
			return
		}
		done <- result{css: strings.TrimSpace(res.CSS)}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.css, r.err
	}
}

// resolveImport adapts ImportResolver to libsass. Unresolved imports fall
// through to the include paths; a failing namespaced import is left
// unresolved so libsass reports it with its usual diagnostic.
func (c *LibSassCompiler) resolveImport(url, _ string) (string, string, bool) {
	if c.imports == nil {
		return "", "", false
	}
	content, ok, err := c.imports.ResolveImport(url)
	if !ok || err != nil {
		return "", "", false
	}
	return url, content, true
}
