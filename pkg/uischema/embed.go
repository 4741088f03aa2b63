package uischema

import (
	"embed"
	"io/fs"
)

//go:embed overlays/*
var embeddedOverlays embed.FS

// EmbeddedFS returns the bundled overlays for the demo wizard. Callers may
// pass this filesystem to LoadFS.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedOverlays, "overlays")
	if err != nil {
		// The embed directive guarantees the subpath exists.
		panic(err)
	}
	return sub
}
