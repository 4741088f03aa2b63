// Package uischema loads UI overlays that adjust wizard steps without a
// backend change: localized copy, field order, hidden fields, CSS classes and
// icons. Overlays are applied by a model.Decorator so the controller stays
// unaware of them.
package uischema
