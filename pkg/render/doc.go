// Package render holds the renderer-agnostic half of field rendering: the
// type-keyed strategy registry, the props every strategy receives, locale
// handling and the value helpers strategies share (number parsing,
// multiselect toggling, backend error mapping).
package render
