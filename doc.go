// Package postcard turns a markup file or a component into email-safe markup.
//
// # Quick Start
//
// Create a converter and convert a file:
//
//	conv := postcard.NewConverter()
//
//	result, err := conv.Convert(ctx, postcard.Request{
//	    Source:     postcard.StaticSource("welcome.html"),
//	    StylesPath: "email.scss",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(result.Body)
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. Source resolution (static file, component or Markdown file)
//  2. Stylesheet compilation via libsass (SCSS, Sass or plain CSS)
//  3. Component rendering, with the compiled stylesheet passed as Props.Head
//  4. Style inlining through a remote form-POST service
//  5. Minification, prefix/suffix, and optional plaintext extraction
//
// Any stage failure aborts the conversion; no partial output is returned.
//
// # Components
//
// Components are registered by name and referenced with ComponentSource:
//
//	conv := postcard.NewConverter(
//	    postcard.WithComponent("welcome", func(p postcard.Props) templ.Component {
//	        return views.Welcome(p.Head)
//	    }),
//	)
//	result, err := conv.Convert(ctx, postcard.Request{
//	    Source: postcard.ComponentSource("welcome"),
//	})
//
// A ComponentSource that is a file path is parsed as an html/template file.
// The template named "default" is rendered when defined, else the root
// template; both receive Props, so {{.Head}} embeds the stylesheet.
//
// # Stylesheets
//
// Imports resolve from the stylesheet's directory, from WithIncludePaths,
// and from built-in partials under the "postcard/" prefix:
//
//	@import "postcard/reset";
//	@import "postcard/button";
//
// # Preview
//
// Previewer renders the result in headless Chrome and returns a PNG. The
// go-rod library downloads a managed Chromium on first run. Use
// ROD_BROWSER_BIN to specify a custom Chrome binary.
package postcard
