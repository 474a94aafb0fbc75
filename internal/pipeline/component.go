package pipeline

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/template/parse"

	"github.com/a-h/templ"

	"github.com/alnah/go-postcard/internal/fileutil"
)

// defaultTemplateName is the template used as a template file's default export.
const defaultTemplateName = "default"

// Props is the single argument passed to a component.
type Props struct {
	// Head is a pre-rendered fragment meant for the document head. It carries
	// the compiled stylesheet wrapped in a <style> tag, or is empty when no
	// stylesheet was given.
	Head template.HTML
}

// Renderable produces a component tree for the given props.
type Renderable interface {
	Render(props Props) templ.Component
}

// RenderableFunc adapts an ordinary function to Renderable.
type RenderableFunc func(props Props) templ.Component

// Render calls f(props).
func (f RenderableFunc) Render(props Props) templ.Component {
	return f(props)
}

// DefaultExporter is implemented by loaded units that expose their invocable
// component under a default export.
type DefaultExporter interface {
	Default() any
}

// staticComponent is an already-built component tree. It ignores props.
type staticComponent struct {
	component templ.Component
}

func (s staticComponent) Render(Props) templ.Component {
	return s.component
}

// AsRenderable resolves the invocable export of a loaded value: its default
// export when it has one, otherwise the value itself.
// Returns ErrConfiguration if the resolved value cannot be invoked.
func AsRenderable(v any) (Renderable, error) {
	if d, ok := v.(DefaultExporter); ok {
		if def := d.Default(); def != nil {
			v = def
		}
	}

	switch c := v.(type) {
	case nil:
		return nil, fmt.Errorf("%w: resolved to nil", ErrConfiguration)
	case RenderableFunc:
		if c == nil {
			return nil, fmt.Errorf("%w: nil function", ErrConfiguration)
		}
		return c, nil
	case func(Props) templ.Component:
		if c == nil {
			return nil, fmt.Errorf("%w: nil function", ErrConfiguration)
		}
		return RenderableFunc(c), nil
	case Renderable:
		return c, nil
	case templ.Component:
		return staticComponent{component: c}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrConfiguration, v)
	}
}

// ComponentLoader loads the code unit a component reference points to.
// The returned value is checked with AsRenderable before invocation.
type ComponentLoader interface {
	Load(ctx context.Context, ref string) (any, error)
}

// Registry holds components registered by name. Safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	components map[string]any
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{components: make(map[string]any)}
}

// Register stores v under name, replacing any previous entry.
// v is validated lazily, when the component is resolved.
func (r *Registry) Register(name string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components[name] = v
}

// Load returns the value registered under ref.
// Returns ErrComponentNotFound if nothing is registered under that name.
func (r *Registry) Load(_ context.Context, ref string) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.components[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrComponentNotFound, ref)
	}
	return v, nil
}

// Names returns the registered component names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TemplateLoader loads html/template files as components.
// The template receives Props as its data, so {{.Head}} embeds the
// stylesheet fragment.
type TemplateLoader struct{}

// templateUnit is a parsed template file. Its default export is the
// "default" template when defined, else the root template when it has
// any content.
type templateUnit struct {
	tmpl *template.Template
}

func (u *templateUnit) Default() any {
	if t := u.tmpl.Lookup(defaultTemplateName); t != nil {
		return templateRenderable{tmpl: t}
	}
	if u.tmpl.Tree != nil && !parse.IsEmptyTree(u.tmpl.Tree.Root) {
		return templateRenderable{tmpl: u.tmpl}
	}
	return nil
}

// templateRenderable invokes a parsed template with props.
type templateRenderable struct {
	tmpl *template.Template
}

func (t templateRenderable) Render(props Props) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return t.tmpl.Execute(w, props)
	})
}

// Load reads and parses the template file at ref.
func (l *TemplateLoader) Load(ctx context.Context, ref string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(ref) // #nosec G304 -- user-provided path
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadSource, err)
	}

	tmpl, err := template.New(filepath.Base(ref)).Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrConfiguration, ref, err)
	}

	return &templateUnit{tmpl: tmpl}, nil
}

// ChainLoader resolves references against the registry first, then, for
// references that look like file paths, against template files.
type ChainLoader struct {
	registry  *Registry
	templates ComponentLoader
}

// NewChainLoader creates a ChainLoader over registry and template files.
func NewChainLoader(registry *Registry) *ChainLoader {
	return &ChainLoader{registry: registry, templates: &TemplateLoader{}}
}

// Load resolves ref.
func (c *ChainLoader) Load(ctx context.Context, ref string) (any, error) {
	if c.registry != nil {
		v, err := c.registry.Load(ctx, ref)
		if err == nil {
			return v, nil
		}
	}
	if fileutil.IsFilePath(ref) {
		return c.templates.Load(ctx, ref)
	}
	return nil, fmt.Errorf("%w: %q (not registered and not a file path)", ErrComponentNotFound, ref)
}

// ComponentRenderer renders a component tree to static markup.
type ComponentRenderer interface {
	RenderComponent(ctx context.Context, c templ.Component) (string, error)
}

// TemplRenderer renders templ components into a string.
type TemplRenderer struct{}

// RenderComponent renders c to a string.
func (TemplRenderer) RenderComponent(ctx context.Context, c templ.Component) (string, error) {
	var sb strings.Builder
	if err := c.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
