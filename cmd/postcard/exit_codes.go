package main

import (
	"errors"
	"os"

	postcard "github.com/alnah/go-postcard"
	"github.com/alnah/go-postcard/internal/config"
	"github.com/alnah/go-postcard/internal/mail"
)

// Exit codes for postcard CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or component
	ExitIO      = 3 // Missing source, unreadable file, unwritable output
	ExitStyles  = 4 // Stylesheet compilation
	ExitRemote  = 5 // Inline service or test send
	ExitBrowser = 6 // Preview browser errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 6)
	if errors.Is(err, postcard.ErrPreview) ||
		errors.Is(err, postcard.ErrBrowserConnect) ||
		errors.Is(err, postcard.ErrPageCreate) ||
		errors.Is(err, postcard.ErrPageLoad) {
		return ExitBrowser
	}

	// Remote errors (exit 5)
	if errors.Is(err, postcard.ErrInlineService) ||
		errors.Is(err, mail.ErrSend) {
		return ExitRemote
	}

	// Stylesheet errors (exit 4)
	if errors.Is(err, postcard.ErrStyleCompile) {
		return ExitStyles
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrTooManyArgs) ||
		errors.Is(err, ErrInvalidEnv) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidField) ||
		errors.Is(err, postcard.ErrConfiguration) ||
		errors.Is(err, postcard.ErrComponentNotFound) ||
		errors.Is(err, mail.ErrInvalidConfig) ||
		errors.Is(err, mail.ErrInvalidMessage) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, postcard.ErrSourceMissing) ||
		errors.Is(err, postcard.ErrReadSource) ||
		errors.Is(err, postcard.ErrReadStyles) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	return ExitGeneral
}
