package postcard

import (
	"errors"

	"github.com/alnah/go-postcard/internal/pipeline"
)

// Sentinel errors for library operations. Stage errors are shared with the
// internal pipeline so errors.Is matches across layers.
var (
	ErrSourceMissing     = pipeline.ErrSourceMissing
	ErrReadSource        = pipeline.ErrReadSource
	ErrConfiguration     = pipeline.ErrConfiguration
	ErrComponentNotFound = pipeline.ErrComponentNotFound
	ErrRender            = pipeline.ErrRender
	ErrHTMLConversion    = pipeline.ErrHTMLConversion
	ErrReadStyles        = pipeline.ErrReadStyles
	ErrStyleCompile      = pipeline.ErrStyleCompile
	ErrInlineService     = pipeline.ErrInlineService
	ErrMinify            = pipeline.ErrMinify
	ErrTextExtraction    = pipeline.ErrTextExtraction

	// Preview errors.
	ErrPreview        = errors.New("preview rendering failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
)

// InlineError reports a non-success response from the inline service.
// It matches ErrInlineService with errors.Is.
type InlineError = pipeline.InlineError
