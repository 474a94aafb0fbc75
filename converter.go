package postcard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-postcard/internal/assets"
	"github.com/alnah/go-postcard/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.ComponentLoader   = (*pipeline.ChainLoader)(nil)
	_ pipeline.ComponentRenderer = pipeline.TemplRenderer{}
	_ pipeline.HTMLConverter     = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.StyleCompiler     = (*pipeline.LibSassCompiler)(nil)
	_ pipeline.ImportResolver    = (*assets.EmbeddedLoader)(nil)
	_ pipeline.Inliner           = (*pipeline.HTTPInliner)(nil)
	_ pipeline.Minifier          = (*pipeline.HTMLMinifier)(nil)
	_ pipeline.TextExtractor     = pipeline.GoqueryExtractor{}
	_ finalizer                  = (*pipeline.Finalizer)(nil)
	_ sourceResolver             = (*pipeline.SourceResolver)(nil)
)

// sourceResolver loads and renders markup sources.
type sourceResolver interface {
	Resolve(ctx context.Context, ref SourceRef) (pipeline.Source, error)
	Render(ctx context.Context, src pipeline.Source, props Props) (string, error)
}

// finalizer runs the last stage: minify, prefix/suffix, plaintext.
type finalizer interface {
	Finalize(ctx context.Context, inlined string, opts pipeline.FinalizeOptions) (*pipeline.Finalized, error)
}

// Converter turns a markup file or component into email-safe markup.
// Create with NewConverter and call Convert once per email. A Converter holds
// no per-run state and is safe for concurrent use once created.
type Converter struct {
	cfg       converterConfig
	registry  *pipeline.Registry
	resolver  sourceResolver
	compiler  pipeline.StyleCompiler
	inliner   Inliner
	finalizer finalizer
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithTimeout, WithComponent,
// WithInlineEndpoint).
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		cfg: converterConfig{
			timeout: defaultTimeout,
			logger:  zap.NewNop(),
		},
		registry: pipeline.NewRegistry(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.resolver == nil {
		c.resolver = pipeline.NewSourceResolver(
			pipeline.NewChainLoader(c.registry),
			pipeline.TemplRenderer{},
			pipeline.NewGoldmarkConverter(),
		)
	}
	if c.compiler == nil {
		c.compiler = pipeline.NewLibSassCompiler(assets.NewEmbeddedLoader(), c.cfg.includePaths...)
	}
	if c.inliner == nil {
		c.inliner = pipeline.NewHTTPInliner(c.cfg.endpoint, c.cfg.httpClient)
	}
	if c.finalizer == nil {
		c.finalizer = pipeline.NewFinalizer(pipeline.NewHTMLMinifier(), pipeline.GoqueryExtractor{})
	}

	return c
}

// Convert runs the pipeline: resolve source, compile styles, render, inline,
// finalize. Any stage failure aborts the run with no partial result.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, req Request) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if req.Source.Kind == SourceNone || req.Source.Path == "" {
		return nil, ErrSourceMissing
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	log := c.cfg.logger.With(
		zap.Stringer("source", req.Source.Kind),
		zap.String("path", req.Source.Path),
	)
	started := time.Now()

	var src pipeline.Source
	err = c.stage(log, "resolving source", func() (err error) {
		src, err = c.resolver.Resolve(ctx, req.Source)
		return err
	})
	if err != nil {
		return nil, err
	}

	var css string
	err = c.stage(log, "compiling styles", func() (err error) {
		css, err = c.compiler.Compile(ctx, req.StylesPath)
		return err
	})
	if err != nil {
		return nil, err
	}

	var markup string
	err = c.stage(log, "rendering", func() (err error) {
		markup, err = c.resolver.Render(ctx, src, Props{Head: HeadFragment(css)})
		return err
	})
	if err != nil {
		return nil, err
	}

	var inlined string
	err = c.stage(log, "inlining styles", func() (err error) {
		inlined, err = c.inliner.Inline(ctx, markup, css)
		return err
	})
	if err != nil {
		return nil, err
	}

	var fin *pipeline.Finalized
	err = c.stage(log, "finalizing", func() (err error) {
		fin, err = c.finalizer.Finalize(ctx, inlined, pipeline.FinalizeOptions{
			Prefix:    req.Prefix,
			Suffix:    req.Suffix,
			Plaintext: req.Plaintext,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	res := &Result{Body: fin.Markup, Markup: fin.Markup}
	if req.Plaintext {
		res.Body = fin.Text
	}

	log.Debug("conversion complete",
		zap.Int("bytes", len(res.Body)),
		zap.Bool("plaintext", req.Plaintext),
		zap.Duration("elapsed", time.Since(started)),
	)
	return res, nil
}

// Components returns the names registered with WithComponent.
func (c *Converter) Components() []string {
	return c.registry.Names()
}

// stage runs fn, wrapping its error with the stage name and logging the
// stage duration.
func (c *Converter) stage(log *zap.Logger, name string, fn func() error) error {
	start := time.Now()
	if err := fn(); err != nil {
		log.Debug("stage failed", zap.String("stage", name), zap.Error(err))
		return fmt.Errorf("%s: %w", name, err)
	}
	log.Debug("stage done", zap.String("stage", name), zap.Duration("elapsed", time.Since(start)))
	return nil
}

// ExtractText returns the tag-free rendition of markup, as produced in
// plaintext mode.
func ExtractText(markup string) (string, error) {
	text, err := pipeline.GoqueryExtractor{}.ExtractText(markup)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTextExtraction, err)
	}
	return text, nil
}
