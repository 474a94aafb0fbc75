package pipeline

import (
	"context"
	"fmt"
	"os"
)

// SourceKind identifies where markup comes from.
type SourceKind int

// Source kinds.
const (
	SourceNone SourceKind = iota
	SourceStatic
	SourceComponent
	SourceMarkdown
)

// String returns the kind name used in logs and errors.
func (k SourceKind) String() string {
	switch k {
	case SourceStatic:
		return "static"
	case SourceComponent:
		return "component"
	case SourceMarkdown:
		return "markdown"
	default:
		return "none"
	}
}

// SourceRef points at a markup source before it is loaded.
type SourceRef struct {
	Kind SourceKind
	Path string // file path, or registered component name
}

// Source is a resolved markup source: StaticMarkup, ComponentSource or
// MarkdownSource.
type Source interface {
	Kind() SourceKind
}

// StaticMarkup is markup read verbatim from a file.
type StaticMarkup struct {
	Text string
}

// Kind returns SourceStatic.
func (StaticMarkup) Kind() SourceKind { return SourceStatic }

// ComponentSource is a loaded, invocable component.
type ComponentSource struct {
	Ref       string
	Component Renderable
}

// Kind returns SourceComponent.
func (ComponentSource) Kind() SourceKind { return SourceComponent }

// MarkdownSource is Markdown text awaiting HTML conversion.
type MarkdownSource struct {
	Text string
}

// Kind returns SourceMarkdown.
func (MarkdownSource) Kind() SourceKind { return SourceMarkdown }

// SourceResolver loads source references and renders them to markup.
// The rendering engine and Markdown converter are injected.
type SourceResolver struct {
	loader   ComponentLoader
	renderer ComponentRenderer
	markdown HTMLConverter
}

// NewSourceResolver creates a SourceResolver.
func NewSourceResolver(loader ComponentLoader, renderer ComponentRenderer, markdown HTMLConverter) *SourceResolver {
	return &SourceResolver{
		loader:   loader,
		renderer: renderer,
		markdown: markdown,
	}
}

// Resolve loads ref into a Source without rendering it.
// Returns ErrSourceMissing if ref names no source, and ErrConfiguration if a
// component reference does not resolve to something invocable.
func (r *SourceResolver) Resolve(ctx context.Context, ref SourceRef) (Source, error) {
	if ref.Kind == SourceNone || ref.Path == "" {
		return nil, ErrSourceMissing
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch ref.Kind {
	case SourceStatic:
		text, err := readSourceFile(ref.Path)
		if err != nil {
			return nil, err
		}
		return StaticMarkup{Text: text}, nil

	case SourceMarkdown:
		text, err := readSourceFile(ref.Path)
		if err != nil {
			return nil, err
		}
		return MarkdownSource{Text: text}, nil

	case SourceComponent:
		v, err := r.loader.Load(ctx, ref.Path)
		if err != nil {
			return nil, err
		}
		component, err := AsRenderable(v)
		if err != nil {
			return nil, fmt.Errorf("resolving component %q: %w", ref.Path, err)
		}
		return ComponentSource{Ref: ref.Path, Component: component}, nil

	default:
		return nil, fmt.Errorf("%w: unknown source kind %d", ErrSourceMissing, ref.Kind)
	}
}

// Render turns a resolved source into markup. Components receive props;
// static and Markdown sources ignore them.
func (r *SourceResolver) Render(ctx context.Context, src Source, props Props) (string, error) {
	switch s := src.(type) {
	case StaticMarkup:
		return s.Text, nil

	case MarkdownSource:
		html, err := r.markdown.ToHTML(ctx, s.Text)
		if err != nil {
			return "", err
		}
		return html, nil

	case ComponentSource:
		tree := s.Component.Render(props)
		if tree == nil {
			return "", fmt.Errorf("%w: %q returned no component", ErrRender, s.Ref)
		}
		markup, err := r.renderer.RenderComponent(ctx, tree)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %v", ErrRender, s.Ref, err)
		}
		return markup, nil

	default:
		return "", ErrSourceMissing
	}
}

// readSourceFile reads a source file verbatim.
func readSourceFile(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided path
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadSource, err)
	}
	return string(data), nil
}
