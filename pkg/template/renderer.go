package template

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithStrict makes bindings that name no placeholder of the template an
// error. Without it such bindings are ignored.
func WithStrict(strict bool) Option {
	return func(r *Renderer) {
		r.strict = strict
	}
}

// Renderer substitutes bindings into templates. It holds no mutable state, so
// a single value can be shared freely.
type Renderer struct {
	strict bool
}

// NewRenderer constructs a Renderer applying the supplied options.
func NewRenderer(options ...Option) Renderer {
	r := Renderer{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&r)
	}
	return r
}

// Strict reports whether unused bindings are rejected.
func (r Renderer) Strict() bool { return r.strict }

// Render replaces every placeholder of tpl with its bound value in a single
// pass. Unresolved placeholders fail with *MissingBindingError and no output
// is returned.
func (r Renderer) Render(tpl Template, b Binding) (string, error) {
	return r.render(tpl.id, tpl.content, b)
}

// RenderString renders ad-hoc template text that is not held by a store.
func (r Renderer) RenderString(content string, b Binding) (string, error) {
	return r.render("", content, b)
}

// RenderTo renders tpl and writes the result to w. Nothing is written when
// rendering fails.
func (r Renderer) RenderTo(w io.Writer, tpl Template, b Binding) error {
	out, err := r.Render(tpl, b)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("template %s: write output: %w", quoteID(tpl.id), err)
	}
	return nil
}

func (r Renderer) render(id, content string, b Binding) (string, error) {
	locs := placeholderPattern.FindAllStringSubmatchIndex(content, -1)
	if len(locs) == 0 {
		if r.strict && len(b) > 0 {
			return "", &UnusedBindingError{Template: id, Names: sortedKeys(b)}
		}
		return content, nil
	}

	used := make(map[string]struct{}, len(locs))
	missing := make(map[string]struct{})
	for _, loc := range locs {
		name := content[loc[2]:loc[3]]
		used[name] = struct{}{}
		if _, ok := b[name]; !ok {
			missing[name] = struct{}{}
		}
	}
	if len(missing) > 0 {
		return "", &MissingBindingError{Template: id, Names: sortedKeys(missing)}
	}

	for _, name := range sortedKeys(used) {
		if tok := placeholderPattern.FindString(b[name]); tok != "" {
			return "", &InvalidBindingError{Template: id, Name: name, Token: tok}
		}
	}

	if r.strict {
		var unused []string
		for name := range b {
			if _, ok := used[name]; !ok {
				unused = append(unused, name)
			}
		}
		if len(unused) > 0 {
			sort.Strings(unused)
			return "", &UnusedBindingError{Template: id, Names: unused}
		}
	}

	var sb strings.Builder
	sb.Grow(len(content))
	spans := make([]valueSpan, 0, len(locs))
	last := 0
	for _, loc := range locs {
		sb.WriteString(content[last:loc[0]])
		name := content[loc[2]:loc[3]]
		start := sb.Len()
		sb.WriteString(b[name])
		spans = append(spans, valueSpan{name: name, start: start, end: sb.Len()})
		last = loc[1]
	}
	sb.WriteString(content[last:])
	out := sb.String()

	// A value can still join the surrounding text into a new placeholder.
	if loc := placeholderPattern.FindStringIndex(out); loc != nil {
		return "", &InvalidBindingError{Template: id, Name: spanAt(spans, loc[0], loc[1]), Token: out[loc[0]:loc[1]]}
	}
	return out, nil
}

type valueSpan struct {
	name       string
	start, end int
}

// spanAt names the first substituted value overlapping [start, end).
func spanAt(spans []valueSpan, start, end int) string {
	for _, s := range spans {
		if s.start < end && start < s.end && s.start < s.end {
			return s.name
		}
	}
	return ""
}
