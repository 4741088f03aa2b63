package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl templates/controls/*.tpl
var embeddedTemplates embed.FS

//go:embed assets/*.css
var embeddedAssets embed.FS

// TemplatesFS exposes the embedded page and control templates.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

// AssetsFS exposes the default theme stylesheet so applications can serve
// it without a frontend build step.
//
// Typical mount:
//
//	mux.Handle("/assets/themes/waggy/",
//	  http.StripPrefix("/assets/themes/waggy/",
//	    http.FileServerFS(html.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}

// AssetsPrefix is the URL prefix the default manifest uses for its files.
const AssetsPrefix = "/assets/themes/waggy"
