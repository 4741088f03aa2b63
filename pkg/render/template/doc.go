// Package template defines the renderer-agnostic template interface used by
// the HTML field strategies.
package template
