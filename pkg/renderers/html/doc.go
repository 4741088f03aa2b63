// Package html renders wizard steps as server-side HTML pages.
//
// Each field type is handled by a Strategy registered in a
// render.Registry. Strategies produce the view data for a pongo2 control
// template and decode the posted form back into typed values through
// render.Props.OnChange. Markup-bearing values are sanitised with
// bluemonday and theme tokens from a go-theme selection become CSS
// variables on the page root.
package html
