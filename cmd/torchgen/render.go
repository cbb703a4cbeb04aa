package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-torchgen/internal/prompt"
	"github.com/goliatone/go-torchgen/pkg/template"
)

// newDriver is swapped in tests.
var newDriver = func(out io.Writer) prompt.Driver {
	return prompt.NewSurveyDriver(out)
}

func runRender(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	id := fs.String("template", template.IDModel, "template id")
	bindingsPath := fs.String("bindings", "", "JSON or YAML file mapping placeholder names to values")
	templatesDir := fs.String("templates", "", "directory holding templates (embedded set if empty)")
	strict := fs.Bool("strict", false, "fail on bindings the template does not use")
	defaults := fs.Bool("defaults", false, "fill unbound placeholders with declared defaults")
	interactive := fs.Bool("interactive", false, "prompt for missing bindings and retry")
	output := fs.String("output", "", "output file (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := loadStore(*templatesDir)
	if err != nil {
		return err
	}
	tpl, err := store.Get(*id)
	if err != nil {
		return err
	}

	bindings := template.Binding{}
	if *bindingsPath != "" {
		if bindings, err = readBindings(*bindingsPath); err != nil {
			return err
		}
	}
	if *defaults {
		bindings = bindings.WithDefaults(tpl)
	}

	renderer := template.NewRenderer(template.WithStrict(*strict))
	out, err := renderer.Render(tpl, bindings)

	var missing *template.MissingBindingError
	if *interactive && errors.As(err, &missing) {
		answers, promptErr := prompt.FillMissing(ctx, newDriver(stderr), tpl, missing.Names)
		if promptErr != nil {
			return promptErr
		}
		out, err = renderer.Render(tpl, bindings.Merge(answers))
	}
	if err != nil {
		return err
	}

	if *output == "" {
		_, err = io.WriteString(stdout, out)
		return err
	}
	if err := os.WriteFile(*output, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(stdout, "Template %s written to %s\n", tpl.ID(), *output)
	return nil
}

func loadStore(dir string) (*template.Store, error) {
	if strings.TrimSpace(dir) == "" {
		return template.Default(), nil
	}
	return template.LoadFS(os.DirFS(dir))
}

// readBindings decodes a flat name → value document, JSON first with YAML as
// fallback. Scalar YAML values are taken verbatim.
func readBindings(path string) (template.Binding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bindings: %w", err)
	}
	var out template.Binding
	if jsonErr := json.Unmarshal(data, &out); jsonErr != nil {
		out = nil
		if yamlErr := yaml.Unmarshal(data, &out); yamlErr != nil {
			return nil, fmt.Errorf("parse bindings %s: %w", path, errors.Join(jsonErr, yamlErr))
		}
	}
	if out == nil {
		out = template.Binding{}
	}
	return out, nil
}
