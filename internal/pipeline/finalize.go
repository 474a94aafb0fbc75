package pipeline

import (
	"context"
	"fmt"
	"regexp"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

const htmlMediaType = "text/html"

// scriptMediaTypes matches the media types of embedded scripts.
var scriptMediaTypes = regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$")

// Minifier reduces markup size without changing how it renders.
type Minifier interface {
	Minify(ctx context.Context, markup string) (string, error)
}

// HTMLMinifier minifies markup with tdewolff/minify. It collapses whitespace,
// strips comments, drops attribute quotes where safe, minifies embedded
// style and script blocks and shortens the doctype. Document tags, end tags
// and default attribute values are kept.
type HTMLMinifier struct {
	m *minify.M
}

// NewHTMLMinifier creates an HTMLMinifier.
func NewHTMLMinifier() *HTMLMinifier {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFuncRegexp(scriptMediaTypes, js.Minify)
	m.Add(htmlMediaType, &html.Minifier{
		KeepDocumentTags:    true,
		KeepEndTags:         true,
		KeepDefaultAttrVals: true,
	})
	return &HTMLMinifier{m: m}
}

// Minify returns the minified markup.
func (h *HTMLMinifier) Minify(ctx context.Context, markup string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out, err := h.m.String(htmlMediaType, markup)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMinify, err)
	}
	return out, nil
}

// FinalizeOptions controls the last stage.
type FinalizeOptions struct {
	Prefix    string // prepended verbatim to the minified markup
	Suffix    string // appended verbatim to the minified markup
	Plaintext bool   // extract text from the prefixed/suffixed markup
}

// Finalized is the outcome of the last stage.
type Finalized struct {
	Markup string // Prefix + minified + Suffix
	Text   string // set only in plaintext mode
}

// Finalizer minifies inlined markup, applies prefix and suffix, and
// optionally extracts plain text.
type Finalizer struct {
	minifier Minifier
	text     TextExtractor
}

// NewFinalizer creates a Finalizer.
func NewFinalizer(minifier Minifier, text TextExtractor) *Finalizer {
	return &Finalizer{minifier: minifier, text: text}
}

// Finalize runs minify, then prefix/suffix concatenation, then plaintext
// extraction. Prefix and suffix are neither minified nor escaped, and in
// plaintext mode any tags they contain are stripped along with the body's.
func (f *Finalizer) Finalize(ctx context.Context, inlined string, opts FinalizeOptions) (*Finalized, error) {
	minified, err := f.minifier.Minify(ctx, inlined)
	if err != nil {
		return nil, err
	}

	out := &Finalized{Markup: opts.Prefix + minified + opts.Suffix}
	if !opts.Plaintext {
		return out, nil
	}

	text, err := f.text.ExtractText(out.Markup)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTextExtraction, err)
	}
	out.Text = text
	return out, nil
}
