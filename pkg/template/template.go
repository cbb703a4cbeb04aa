package template

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{([A-Z_][A-Z0-9_]*)\}\}`)

// Variable describes one placeholder a template expects.
type Variable struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Default     *string `json:"default,omitempty" yaml:"default,omitempty"`
}

// Template is immutable text plus the set of placeholder names it expects.
// Construct it with New so the declared set is checked against the content.
type Template struct {
	id          string
	description string
	content     string
	variables   []Variable
}

// New builds a Template from raw content. When variables are supplied they
// must name exactly the placeholders found in content; otherwise the set is
// derived from the content.
func New(id, content string, variables ...Variable) (Template, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Template{}, fmt.Errorf("template: id is required")
	}

	scanned := Placeholders(content)
	if len(variables) == 0 {
		vars := make([]Variable, 0, len(scanned))
		for _, name := range scanned {
			vars = append(vars, Variable{Name: name})
		}
		return Template{id: id, content: content, variables: vars}, nil
	}

	declared := make(map[string]Variable, len(variables))
	for _, v := range variables {
		name := strings.TrimSpace(v.Name)
		if !IsPlaceholderName(name) {
			return Template{}, fmt.Errorf("template %q: invalid variable name %q", id, v.Name)
		}
		if _, exists := declared[name]; exists {
			return Template{}, fmt.Errorf("template %q: duplicate variable %q", id, name)
		}
		v.Name = name
		declared[name] = v
	}

	var undeclared []string
	for _, name := range scanned {
		if _, ok := declared[name]; !ok {
			undeclared = append(undeclared, name)
		}
		delete(declared, name)
	}
	if len(undeclared) > 0 {
		return Template{}, fmt.Errorf("template %q: placeholders not declared: %s", id, strings.Join(undeclared, ", "))
	}
	if len(declared) > 0 {
		return Template{}, fmt.Errorf("template %q: declared variables not used: %s", id, strings.Join(sortedKeys(declared), ", "))
	}

	vars := make([]Variable, 0, len(variables))
	for _, v := range variables {
		v.Name = strings.TrimSpace(v.Name)
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })

	return Template{id: id, content: content, variables: vars}, nil
}

// MustNew is New that panics on error. Useful for package-level templates.
func MustNew(id, content string, variables ...Variable) Template {
	tpl, err := New(id, content, variables...)
	if err != nil {
		panic(err)
	}
	return tpl
}

// WithDescription returns a copy of t carrying a human readable description.
func (t Template) WithDescription(desc string) Template {
	t.description = strings.TrimSpace(desc)
	return t
}

// ID returns the template identifier (model, train, inference, ...).
func (t Template) ID() string { return t.id }

// Description returns the optional description.
func (t Template) Description() string { return t.description }

// Content returns the raw template text.
func (t Template) Content() string { return t.content }

// Placeholders returns the sorted placeholder names the template expects.
func (t Template) Placeholders() []string {
	out := make([]string, len(t.variables))
	for i, v := range t.variables {
		out[i] = v.Name
	}
	return out
}

// Variables returns a copy of the declared variables.
func (t Template) Variables() []Variable {
	out := make([]Variable, len(t.variables))
	copy(out, t.variables)
	return out
}

// Placeholders scans text and returns the sorted, de-duplicated placeholder
// names it contains.
func Placeholders(text string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		out = append(out, m[1])
	}
	sort.Strings(out)
	return out
}

// IsPlaceholderName reports whether name is a valid placeholder name.
func IsPlaceholderName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Token formats name using placeholder syntax.
func Token(name string) string {
	return "{{" + name + "}}"
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
