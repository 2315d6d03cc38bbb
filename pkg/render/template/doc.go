// Package template defines the engine seam the HTML renderer draws through.
// The gotemplate subpackage provides the pongo2-backed implementation.
package template
