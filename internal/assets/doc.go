// Package assets provides built-in SCSS partials for email stylesheets.
//
// Partials are embedded at compile time and exposed to stylesheets through
// the "postcard/" import namespace:
//
//	@import "postcard/reset";
//	@import "postcard/button";
//
// # Directory Structure
//
//	styles/
//	└── {name}.scss   # partial imported as "postcard/{name}"
//
// # Security
//
// Partial names are validated to prevent path traversal. Names may not
// contain path separators or dots.
package assets
