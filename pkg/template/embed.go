package template

import (
	"embed"
	"io/fs"
)

//go:embed templates/*
var embeddedTemplates embed.FS

// EmbeddedFS returns the bundled model, train and inference templates along
// with their manifest. Pass it to LoadFS or use Default.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		// the embed directive guarantees the directory exists
		panic(err)
	}
	return sub
}
