package torchgen

import (
	"io/fs"

	"github.com/goliatone/go-torchgen/pkg/codegen"
	"github.com/goliatone/go-torchgen/pkg/template"
)

// EmbeddedTemplates exposes the built-in model, train and inference templates
// together with their manifest so callers can copy or extend them.
func EmbeddedTemplates() fs.FS {
	return template.EmbeddedFS()
}

// ReportTemplates exposes the pongo2 templates behind the summary and
// requirements reports.
func ReportTemplates() fs.FS {
	return codegen.EmbeddedTemplates()
}
