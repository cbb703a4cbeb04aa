package template

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Well-known template identifiers shipped in the embedded set.
const (
	IDModel     = "model"
	IDTrain     = "train"
	IDInference = "inference"
)

var manifestNames = []string{"manifest.yaml", "manifest.yml", "manifest.json"}

// Store holds templates keyed by id. It is read-only once built.
type Store struct {
	templates map[string]Template
}

// NewStore builds a store from the supplied templates. Duplicate ids are an
// error.
func NewStore(templates ...Template) (*Store, error) {
	s := &Store{templates: make(map[string]Template, len(templates))}
	for _, tpl := range templates {
		if tpl.id == "" {
			return nil, fmt.Errorf("template: store entry without id")
		}
		if _, exists := s.templates[tpl.id]; exists {
			return nil, fmt.Errorf("template: duplicate template %q", tpl.id)
		}
		s.templates[tpl.id] = tpl
	}
	return s, nil
}

var (
	defaultOnce  sync.Once
	defaultStore *Store
)

// Default returns the store built from EmbeddedFS. The embedded set is
// compiled into the binary, so a load failure is a programming error.
func Default() *Store {
	defaultOnce.Do(func() {
		store, err := LoadFS(EmbeddedFS())
		if err != nil {
			panic(err)
		}
		defaultStore = store
	})
	return defaultStore
}

// Get returns the template registered under id.
func (s *Store) Get(id string) (Template, error) {
	if s != nil {
		if tpl, ok := s.templates[strings.TrimSpace(id)]; ok {
			return tpl, nil
		}
	}
	return Template{}, &UnknownTemplateError{ID: id}
}

// Has reports whether id is registered.
func (s *Store) Has(id string) bool {
	_, err := s.Get(id)
	return err == nil
}

// List returns the registered ids sorted.
func (s *Store) List() []string {
	if s == nil {
		return nil
	}
	return sortedKeys(s.templates)
}

// Placeholders returns the placeholders expected by template id.
func (s *Store) Placeholders(id string) ([]string, error) {
	tpl, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return tpl.Placeholders(), nil
}

// Render looks up id and renders it leniently: unused bindings are ignored.
func (s *Store) Render(id string, b Binding) (string, error) {
	return s.RenderWith(Renderer{}, id, b)
}

// RenderWith looks up id and renders it with r.
func (s *Store) RenderWith(r Renderer, id string, b Binding) (string, error) {
	tpl, err := s.Get(id)
	if err != nil {
		return "", err
	}
	return r.Render(tpl, b)
}

type manifestFile struct {
	Templates []manifestEntry `json:"templates" yaml:"templates"`
}

type manifestEntry struct {
	ID          string     `json:"id" yaml:"id"`
	File        string     `json:"file" yaml:"file"`
	Description string     `json:"description" yaml:"description"`
	Variables   []Variable `json:"variables" yaml:"variables"`
}

// LoadFS reads templates from fsys. When a manifest (manifest.yaml,
// manifest.yml or manifest.json) is present at the root it lists the
// templates and their declared variables; otherwise every .py and .tpl file
// is loaded with its base name as id, minus any "_template" suffix.
func LoadFS(fsys fs.FS) (*Store, error) {
	if fsys == nil {
		return nil, fmt.Errorf("template: filesystem is nil")
	}

	for _, name := range manifestNames {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			continue
		}
		return loadManifest(fsys, name, data)
	}
	return loadDir(fsys)
}

func loadManifest(fsys fs.FS, source string, data []byte) (*Store, error) {
	manifest, err := parseManifest(data, source)
	if err != nil {
		return nil, err
	}
	if len(manifest.Templates) == 0 {
		return nil, fmt.Errorf("template: manifest %s lists no templates", source)
	}

	templates := make([]Template, 0, len(manifest.Templates))
	for idx, entry := range manifest.Templates {
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			return nil, fmt.Errorf("template: manifest %s entry %d has an empty id", source, idx)
		}
		file := strings.TrimSpace(entry.File)
		if file == "" {
			return nil, fmt.Errorf("template: manifest %s template %q has no file", source, id)
		}
		content, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("template: read %s: %w", file, err)
		}
		tpl, err := New(id, string(content), entry.Variables...)
		if err != nil {
			return nil, fmt.Errorf("template: manifest %s: %w", source, err)
		}
		templates = append(templates, tpl.WithDescription(entry.Description))
	}
	return NewStore(templates...)
}

func parseManifest(data []byte, source string) (manifestFile, error) {
	var doc manifestFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return manifestFile{}, fmt.Errorf("template: manifest %s is empty", source)
	}
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	doc = manifestFile{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return manifestFile{}, fmt.Errorf("template: parse %s: %w", source, err)
	}
	return doc, nil
}

func loadDir(fsys fs.FS) (*Store, error) {
	var templates []Template
	err := fs.WalkDir(fsys, ".", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			if strings.HasPrefix(entry.Name(), ".") && p != "." {
				return fs.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(path.Ext(p))
		if ext != ".py" && ext != ".tpl" {
			return nil
		}
		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("template: read %s: %w", p, err)
		}
		tpl, err := New(idFromFile(p), string(content))
		if err != nil {
			return err
		}
		templates = append(templates, tpl)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].id < templates[j].id })
	return NewStore(templates...)
}

func idFromFile(p string) string {
	base := path.Base(p)
	base = strings.TrimSuffix(base, path.Ext(base))
	return strings.TrimSuffix(base, "_template")
}
