package pipeline

import "errors"

// Sentinel errors for pipeline stages.
var (
	ErrSourceMissing     = errors.New("no source specified")
	ErrReadSource        = errors.New("failed to read source")
	ErrConfiguration     = errors.New("component is not invocable")
	ErrComponentNotFound = errors.New("component not found")
	ErrRender            = errors.New("component rendering failed")
	ErrHTMLConversion    = errors.New("markdown conversion failed")
	ErrReadStyles        = errors.New("failed to read stylesheet")
	ErrStyleCompile      = errors.New("stylesheet compilation failed")
	ErrInlineService     = errors.New("inline service failed")
	ErrMinify            = errors.New("minification failed")
	ErrTextExtraction    = errors.New("plaintext extraction failed")
)
