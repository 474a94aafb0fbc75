// Package hints suggests a next step for the failures a postcard user can fix
// alone: a wrong endpoint, a missing token, an unknown component.
// Every hint reads "\n  hint: <text>" and is appended to the error line.
package hints

import (
	"fmt"
	"os"
	"strings"

	"github.com/alnah/go-postcard/internal/fileutil"
)

// IsInContainer reports whether the process runs under Docker, where Chrome
// needs its sandbox disabled. Tests replace it.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for preview browser connection errors.
// The sandbox is disabled when CI=true or ROD_BROWSER_BIN is set.
func ForBrowserConnect() string {
	var hints []string

	bin := os.Getenv("ROD_BROWSER_BIN")
	sandboxOff := os.Getenv("CI") == "true" || bin != ""

	if IsInContainer() && !sandboxOff {
		hints = append(hints, "set CI=true to run Chrome without sandbox in Docker")
	}
	if bin == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForTimeout suggests a longer deadline.
func ForTimeout() string {
	return format("the inline service may be slow; use --timeout 1m")
}

// ForInlineService returns hints for inline service failures.
// status is the HTTP status code, or 0 for network errors.
func ForInlineService(endpoint string, status int) string {
	switch {
	case status == 0:
		return format(fmt.Sprintf("check network access to %s, or point --endpoint at a mirror", endpoint))
	case status == 413:
		return format("the markup is too large for the inline service")
	case status >= 500:
		return format("the inline service is unavailable; try again later")
	default:
		return format("the inline service rejected the markup; check it is well-formed")
	}
}

// ForStyleCompile returns hints for stylesheet compilation errors.
func ForStyleCompile(partials []string) string {
	if len(partials) == 0 {
		return ""
	}
	names := make([]string, len(partials))
	for i, p := range partials {
		names[i] = "postcard/" + p
	}
	return format("built-in partials: " + strings.Join(names, ", "))
}

// ForComponentNotFound returns hints for unknown component references.
func ForComponentNotFound(registered []string) string {
	hint := "pass a template file path such as ./email.html"
	if len(registered) > 0 {
		hint += "; registered: " + strings.Join(registered, ", ")
	}
	return format(hint)
}

// ForConfiguration returns hints for components with no invocable export.
func ForConfiguration() string {
	return format(`define a "default" template or give the file top-level content`)
}

// ForSourceMissing returns a hint listing the source flags.
func ForSourceMissing() string {
	return format("pass a markup file, or one of --html, --react, --markdown")
}

// ForConfigNotFound points at --config, and at the user config location
// when it is among searchedPaths.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, "go-postcard") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForSend returns hints for test send failures.
func ForSend() string {
	return format("set POSTCARD_POSTMARK_SERVER_TOKEN and a verified sender with POSTCARD_FROM")
}

// ForOutputDirectory returns hints for output file creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// format renders one hint, or "" for an empty one.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints renders several hints on one line.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
