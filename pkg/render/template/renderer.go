package template

import "io"

// TemplateRenderer renders a named step template. The HTML strategies only
// depend on this method; the pongo2 engine in gotemplate offers more.
// Output is returned and also copied to every writer in out.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}
