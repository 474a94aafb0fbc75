package postcard

import (
	"html/template"

	"github.com/a-h/templ"

	"github.com/alnah/go-postcard/internal/pipeline"
)

// SourceKind identifies where markup comes from.
type SourceKind = pipeline.SourceKind

// Source kinds.
const (
	SourceNone      = pipeline.SourceNone
	SourceStatic    = pipeline.SourceStatic
	SourceComponent = pipeline.SourceComponent
	SourceMarkdown  = pipeline.SourceMarkdown
)

// SourceRef points at the markup source of a conversion.
// For SourceComponent, Path is either a name registered with WithComponent
// or the path of an html/template file.
type SourceRef = pipeline.SourceRef

// Props is the single argument passed to a component. Head carries the
// compiled stylesheet as a <style> fragment, or is empty.
type Props = pipeline.Props

// Renderable produces a component tree for the given props.
type Renderable = pipeline.Renderable

// RenderableFunc adapts a function to Renderable.
type RenderableFunc = pipeline.RenderableFunc

// Inliner pushes stylesheet rules into inline style attributes.
type Inliner = pipeline.Inliner

// Request describes one conversion. It is never modified by Convert.
type Request struct {
	Source     SourceRef
	StylesPath string // optional SCSS, Sass or CSS file
	Plaintext  bool   // emit tag-free text instead of markup
	Prefix     string // prepended verbatim to the minified markup
	Suffix     string // appended verbatim to the minified markup
}

// Result holds the output of a conversion.
type Result struct {
	// Body is the single output: plain text when Request.Plaintext is set,
	// else the finalized markup.
	Body string
	// Markup is the finalized markup including prefix and suffix, also set in
	// plaintext mode so the email can be previewed or sent.
	Markup string
}

// StaticSource returns a reference to a markup file read verbatim.
func StaticSource(path string) SourceRef {
	return SourceRef{Kind: SourceStatic, Path: path}
}

// ComponentSource returns a reference to a component, by registered name
// or template file path.
func ComponentSource(ref string) SourceRef {
	return SourceRef{Kind: SourceComponent, Path: ref}
}

// MarkdownSource returns a reference to a Markdown file.
func MarkdownSource(path string) SourceRef {
	return SourceRef{Kind: SourceMarkdown, Path: path}
}

// HeadFragment wraps css in the <style> tag passed to components as
// Props.Head. Returns "" for empty css.
func HeadFragment(css string) template.HTML {
	return pipeline.HeadFragment(css)
}

// Component adapts fn into a value accepted by WithComponent.
func Component(fn func(Props) templ.Component) Renderable {
	return RenderableFunc(fn)
}
