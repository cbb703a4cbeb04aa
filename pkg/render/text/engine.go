package text

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// Option configures the engine before construction.
type Option func(*Engine)

// WithFS loads templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(e *Engine) {
		e.files = files
	}
}

// WithExtension overrides the default ".tpl" extension appended to template
// names.
func WithExtension(ext string) Option {
	return func(e *Engine) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		e.ext = trimmed
	}
}

// Engine is a pongo2-backed Renderer. Parsed templates are cached by name.
type Engine struct {
	files fs.FS
	ext   string

	mu    sync.Mutex
	set   *pongo2.TemplateSet
	cache map[string]*pongo2.Template
}

var _ Renderer = (*Engine)(nil)

// New constructs an Engine. WithFS is required.
func New(options ...Option) (*Engine, error) {
	e := &Engine{ext: ".tpl"}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if e.files == nil {
		return nil, errors.New("text: template fs.FS is required")
	}

	registerDefaultFilters()
	e.set = pongo2.NewSet("torchgen", pongo2.NewFSLoader(e.files))
	e.cache = make(map[string]*pongo2.Template)
	return e, nil
}

// RenderTemplate renders the named template with data as its context. The
// configured extension is appended when name lacks it.
func (e *Engine) RenderTemplate(name string, data map[string]any) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("text: engine is nil")
	}
	if !strings.HasSuffix(name, e.ext) {
		name += e.ext
	}

	tmpl, err := e.lookup(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(pongo2.Context(data), &buf); err != nil {
		return "", fmt.Errorf("text: execute template %q: %w", name, err)
	}
	return buf.String(), nil
}

func (e *Engine) lookup(name string) (*pongo2.Template, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.cache[name]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("text: load template %q: %w", name, err)
	}
	e.cache[name] = tmpl
	return tmpl, nil
}
