package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-torchgen/internal/prompt"
	"github.com/goliatone/go-torchgen/pkg/template"
)

const canvas = `nodes:
  - id: n1
    type: linear
    name: Linear
    params:
      - {key: in_features, value: 784}
      - {key: out_features, value: 10}
  - id: n2
    type: sigmoid
    name: Sigmoid
connections:
  - id: c1
    source: {nodeId: n1}
    target: {nodeId: n2}
`

type stubDriver struct {
	inputs  []string
	confirm bool
	asked   []string
}

func (s *stubDriver) Input(_ context.Context, cfg prompt.InputConfig) (string, error) {
	s.asked = append(s.asked, cfg.Message)
	value := s.inputs[0]
	s.inputs = s.inputs[1:]
	return value, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg prompt.TextAreaConfig) (string, error) {
	return s.Input(context.Background(), prompt.InputConfig{Message: cfg.Message})
}

func (s *stubDriver) Confirm(_ context.Context, cfg prompt.ConfirmConfig) (bool, error) {
	s.asked = append(s.asked, cfg.Message)
	return s.confirm, nil
}

func (s *stubDriver) Info(context.Context, string) error { return nil }

func useDriver(t *testing.T, d prompt.Driver) {
	t.Helper()
	prev := newDriver
	newDriver = func(io.Writer) prompt.Driver { return d }
	t.Cleanup(func() { newDriver = prev })
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRun_Usage(t *testing.T) {
	var stderr bytes.Buffer
	if err := run(context.Background(), nil, io.Discard, &stderr); err == nil {
		t.Fatalf("expected usage error")
	}
	if !strings.Contains(stderr.String(), "usage: torchgen") {
		t.Fatalf("usage not printed: %q", stderr.String())
	}
	if err := run(context.Background(), []string{"bogus"}, io.Discard, io.Discard); err == nil || !strings.Contains(err.Error(), `unknown command "bogus"`) {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestRun_Templates(t *testing.T) {
	var stdout bytes.Buffer
	if err := run(context.Background(), []string{"templates"}, &stdout, io.Discard); err != nil {
		t.Fatalf("templates: %v", err)
	}
	out := stdout.String()
	for _, want := range []string{"ID", "inference", "FORWARD_CODE,LAYERS,MODEL_NAME,MODEL_SUMMARY,TORCHVISION_IMPORT", "train"} {
		if !strings.Contains(out, want) {
			t.Fatalf("templates output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_Render(t *testing.T) {
	dir := t.TempDir()
	bindings := writeFile(t, dir, "bindings.yaml", "MODEL_NAME: Net\n")

	var stdout bytes.Buffer
	if err := run(context.Background(), []string{"render", "-template", "train", "-bindings", bindings}, &stdout, io.Discard); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(stdout.String(), "from model import Net\n") {
		t.Fatalf("render output missing import")
	}

	err := run(context.Background(), []string{"render", "-template", "model", "-bindings", bindings}, io.Discard, io.Discard)
	var missing *template.MissingBindingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingBindingError, got %v", err)
	}

	jsonBindings := writeFile(t, dir, "bindings.json", `{"MODEL_NAME": "Net", "EXTRA": "x"}`)
	err = run(context.Background(), []string{"render", "-template", "train", "-bindings", jsonBindings, "-strict"}, io.Discard, io.Discard)
	if !errors.Is(err, template.ErrUnusedBinding) {
		t.Fatalf("expected ErrUnusedBinding, got %v", err)
	}

	err = run(context.Background(), []string{"render", "-template", "nope"}, io.Discard, io.Discard)
	if !errors.Is(err, template.ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}
}

func TestRun_RenderDefaultsToFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "inference.py")

	if err := run(context.Background(), []string{"render", "-template", "inference", "-defaults", "-output", target}, io.Discard, io.Discard); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "AIModel") {
		t.Fatalf("default model name not applied")
	}
}

func TestRun_RenderInteractive(t *testing.T) {
	dir := t.TempDir()
	tpl := writeFile(t, dir, "snippet.tpl", "class {{MODEL_NAME}}:\n{{BODY}}\n")

	driver := &stubDriver{inputs: []string{"    pass", "Net"}}
	useDriver(t, driver)

	var stdout bytes.Buffer
	err := run(context.Background(), []string{"render", "-templates", filepath.Dir(tpl), "-template", "snippet", "-interactive"}, &stdout, io.Discard)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := stdout.String(); got != "class Net:\n    pass\n" {
		t.Fatalf("render = %q", got)
	}
	if strings.Join(driver.asked, ",") != "BODY,MODEL_NAME" {
		t.Fatalf("prompts = %v", driver.asked)
	}
}

func TestRun_Generate(t *testing.T) {
	dir := t.TempDir()
	graphPath := writeFile(t, dir, "canvas.yaml", canvas)
	outDir := filepath.Join(dir, "out")

	var stdout bytes.Buffer
	if err := run(context.Background(), []string{"generate", "-graph", graphPath, "-name", "Net", "-out", outDir, "-summary"}, &stdout, io.Discard); err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, name := range []string{"model.py", "train.py", "inference.py", "requirements.txt"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
	model, err := os.ReadFile(filepath.Join(outDir, "model.py"))
	if err != nil {
		t.Fatalf("read model.py: %v", err)
	}
	if !strings.Contains(string(model), "class Net(nn.Module):") {
		t.Fatalf("model.py missing class")
	}
	if !strings.Contains(stdout.String(), "~7,850") {
		t.Fatalf("summary not printed:\n%s", stdout.String())
	}

	err = run(context.Background(), []string{"generate", "-graph", graphPath, "-out", outDir}, io.Discard, io.Discard)
	if !errors.Is(err, errExists) {
		t.Fatalf("expected errExists, got %v", err)
	}

	driver := &stubDriver{confirm: false}
	useDriver(t, driver)
	err = run(context.Background(), []string{"generate", "-graph", graphPath, "-out", outDir, "-interactive"}, io.Discard, io.Discard)
	if !errors.Is(err, errExists) || len(driver.asked) != 1 {
		t.Fatalf("expected declined overwrite, got %v (asked %v)", err, driver.asked)
	}

	if err := run(context.Background(), []string{"generate", "-graph", graphPath, "-out", outDir, "-force"}, io.Discard, io.Discard); err != nil {
		t.Fatalf("forced generate: %v", err)
	}
}

func TestRun_GeneratePreset(t *testing.T) {
	dir := t.TempDir()
	graphPath := writeFile(t, dir, "canvas.yaml", canvas)
	preset := writeFile(t, dir, "preset.json", `{"nodes": {"n1": {"params": {"out_features": 32}}}}`)
	outDir := filepath.Join(dir, "out")

	if err := run(context.Background(), []string{"generate", "-graph", graphPath, "-preset", preset, "-out", outDir}, io.Discard, io.Discard); err != nil {
		t.Fatalf("generate: %v", err)
	}
	model, err := os.ReadFile(filepath.Join(outDir, "model.py"))
	if err != nil {
		t.Fatalf("read model.py: %v", err)
	}
	if !strings.Contains(string(model), "nn.Linear(784, 32") {
		t.Fatalf("preset not applied:\n%s", model)
	}
}

func TestRun_GenerateErrors(t *testing.T) {
	if err := run(context.Background(), []string{"generate"}, io.Discard, io.Discard); err == nil || !strings.Contains(err.Error(), "invalid graph source") {
		t.Fatalf("expected invalid source error, got %v", err)
	}
	if err := run(context.Background(), []string{"generate", "-graph", filepath.Join(t.TempDir(), "missing.json")}, io.Discard, io.Discard); err == nil {
		t.Fatalf("expected load error")
	}
}
