// Package process cleans up browser processes started for previews.
package process
