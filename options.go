package postcard

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-postcard/internal/pipeline"
)

// defaultTimeout bounds a whole conversion when no timeout is specified.
const defaultTimeout = 30 * time.Second

// DefaultInlineEndpoint is the inline service used unless
// WithInlineEndpoint overrides it.
const DefaultInlineEndpoint = pipeline.DefaultInlineEndpoint

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout      time.Duration
	endpoint     string
	httpClient   *http.Client
	logger       *zap.Logger
	includePaths []string
}

// WithTimeout sets the conversion timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("postcard: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithLogger sets the logger used for stage diagnostics.
// A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.cfg.logger = l
		}
	}
}

// WithInlineEndpoint overrides the inline service URL, for mirrors and tests.
func WithInlineEndpoint(url string) Option {
	return func(c *Converter) {
		c.cfg.endpoint = url
	}
}

// WithHTTPClient sets the client used to reach the inline service.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Converter) {
		c.cfg.httpClient = client
	}
}

// WithIncludePaths adds directories searched for stylesheet imports. They are
// searched after the built-in "postcard/" partials and the working directory,
// and before the stylesheet's own directory.
func WithIncludePaths(paths ...string) Option {
	return func(c *Converter) {
		c.cfg.includePaths = append(c.cfg.includePaths, paths...)
	}
}

// WithComponent registers a component under name, for use with
// ComponentSource(name). v may be a Renderable, a func(Props)
// templ.Component, a prebuilt templ.Component, or a value whose
// Default() method returns one of those. v is checked at conversion time.
func WithComponent(name string, v any) Option {
	return func(c *Converter) {
		c.registry.Register(name, v)
	}
}

// WithInliner replaces the remote inline service client.
func WithInliner(i Inliner) Option {
	return func(c *Converter) {
		c.inliner = i
	}
}

// withCompiler replaces the stylesheet compiler (tests).
func withCompiler(sc pipeline.StyleCompiler) Option {
	return func(c *Converter) {
		c.compiler = sc
	}
}

// withFinalizer replaces the minify and plaintext stage (tests).
func withFinalizer(f finalizer) Option {
	return func(c *Converter) {
		c.finalizer = f
	}
}
