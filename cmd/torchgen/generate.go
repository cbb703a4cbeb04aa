package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	torchgen "github.com/goliatone/go-torchgen"
	"github.com/goliatone/go-torchgen/internal/prompt"
	"github.com/goliatone/go-torchgen/pkg/graph"
	"github.com/goliatone/go-torchgen/pkg/orchestrator"
	"github.com/goliatone/go-torchgen/pkg/template"
)

func runGenerate(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	source := fs.String("graph", "", "canvas document path or URL (JSON or YAML)")
	name := fs.String("name", "", "model class name")
	outDir := fs.String("out", ".", "directory receiving the generated files")
	preset := fs.String("preset", "", "JSON or YAML file with per-node overrides")
	strict := fs.Bool("strict", false, "fail on bindings a template does not use")
	summary := fs.Bool("summary", false, "print the model summary")
	force := fs.Bool("force", false, "overwrite existing files without asking")
	interactive := fs.Bool("interactive", false, "ask before overwriting existing files")
	timeout := fs.Duration("timeout", 30*time.Second, "HTTP timeout for URL sources")
	if err := fs.Parse(args); err != nil {
		return err
	}

	src := parseSource(*source)
	if src == nil {
		return fmt.Errorf("invalid graph source: %q", *source)
	}

	options := []orchestrator.Option{
		orchestrator.WithLoader(torchgen.NewLoader(graph.WithHTTPFallback(*timeout))),
	}
	if *strict {
		options = append(options, orchestrator.WithRenderer(template.NewRenderer(template.WithStrict(true))))
	}
	if *preset != "" {
		transformer, err := orchestrator.NewPresetTransformerFromFS(os.DirFS(filepath.Dir(*preset)), filepath.Base(*preset))
		if err != nil {
			return err
		}
		options = append(options, orchestrator.WithTransformer(transformer))
	}

	result, err := torchgen.Generate(ctx, src, *name, options...)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if !*force {
		if err := confirmOverwrite(ctx, *outDir, result.Files, *interactive, stderr); err != nil {
			return err
		}
	}

	for _, file := range sortedFiles(result.Files) {
		target := filepath.Join(*outDir, file)
		if err := os.WriteFile(target, []byte(result.Files[file]), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
		fmt.Fprintf(stdout, "wrote %s\n", target)
	}
	if *summary {
		fmt.Fprint(stdout, result.Summary)
		if !strings.HasSuffix(result.Summary, "\n") {
			fmt.Fprintln(stdout)
		}
	}
	return nil
}

var errExists = errors.New("output files exist")

func confirmOverwrite(ctx context.Context, dir string, files map[string]string, interactive bool, stderr io.Writer) error {
	var existing []string
	for _, file := range sortedFiles(files) {
		if _, err := os.Stat(filepath.Join(dir, file)); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if !interactive {
		return fmt.Errorf("%w in %s: %s (use -force)", errExists, dir, strings.Join(existing, ", "))
	}
	ok, err := newDriver(stderr).Confirm(ctx, prompt.ConfirmConfig{
		Message: fmt.Sprintf("Overwrite %s in %s?", strings.Join(existing, ", "), dir),
	})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w in %s: not overwritten", errExists, dir)
	}
	return nil
}

func sortedFiles(files map[string]string) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func parseSource(raw string) graph.Source {
	path := strings.TrimSpace(raw)
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		if _, err := url.ParseRequestURI(path); err != nil {
			return nil
		}
		return graph.SourceFromURL(path)
	}
	return graph.SourceFromFile(path)
}
