// Package pipeline implements the email conversion stages.
//
// The stages run strictly in order, each feeding the next:
//   - Source resolution: static markup, components, or Markdown
//   - Stylesheet compilation via libsass (SCSS, Sass, plain CSS)
//   - Style inlining through the remote inliner endpoint
//   - Finalization: minification, prefix/suffix, plaintext extraction
//
// Every stage is defined by a small interface so the root postcard package
// can compose them and tests can substitute any single stage. The remote
// inliner is an external dependency boundary: there is no local fallback and
// no retry.
package pipeline
