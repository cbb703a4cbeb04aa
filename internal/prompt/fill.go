// Package prompt asks the user for placeholder values a render could not
// resolve.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-torchgen/pkg/template"
)

// FillMissing prompts for every name in missing and returns a binding holding
// the answers. Placeholders that sit alone on a line are treated as code
// blocks and read with a multi-line prompt; the rest are single line inputs
// seeded with the declared default.
func FillMissing(ctx context.Context, driver Driver, tpl template.Template, missing []string) (template.Binding, error) {
	if driver == nil {
		return nil, errors.New("prompt: driver is nil")
	}
	if len(missing) == 0 {
		return template.Binding{}, nil
	}

	vars := make(map[string]template.Variable, len(tpl.Variables()))
	for _, v := range tpl.Variables() {
		vars[v.Name] = v
	}

	if err := driver.Info(ctx, fmt.Sprintf("Template %s needs %d more value(s).", tpl.ID(), len(missing))); err != nil {
		return nil, err
	}

	out := make(template.Binding, len(missing))
	for _, name := range missing {
		v := vars[name]
		def := ""
		if v.Default != nil {
			def = *v.Default
		}

		var (
			answer string
			err    error
		)
		if blockPlaceholder(tpl.Content(), name) {
			answer, err = driver.TextArea(ctx, TextAreaConfig{
				Message: name,
				Default: def,
				Help:    v.Description,
			})
		} else {
			answer, err = driver.Input(ctx, InputConfig{
				Message:   name,
				Default:   def,
				Help:      v.Description,
				Validator: noPlaceholders,
			})
		}
		if err != nil {
			return nil, fmt.Errorf("prompt: %s: %w", name, err)
		}
		out[name] = answer
	}
	return out, nil
}

func blockPlaceholder(content, name string) bool {
	token := template.Token(name)
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == token {
			return true
		}
	}
	return false
}

func noPlaceholders(value string) error {
	if names := template.Placeholders(value); len(names) > 0 {
		return fmt.Errorf("value must not contain placeholder %s", template.Token(names[0]))
	}
	return nil
}
