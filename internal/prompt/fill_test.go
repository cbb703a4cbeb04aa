package prompt_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-torchgen/internal/prompt"
	"github.com/goliatone/go-torchgen/pkg/template"
)

type stubDriver struct {
	inputs    []string
	textAreas []string
	inputPos  int
	areaPos   int
	asked     []string
	defaults  []string
	infos     []string
	err       error
}

func (s *stubDriver) Input(_ context.Context, cfg prompt.InputConfig) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.asked = append(s.asked, "input:"+cfg.Message)
	s.defaults = append(s.defaults, cfg.Default)
	value := s.inputs[s.inputPos]
	s.inputPos++
	if cfg.Validator != nil {
		if err := cfg.Validator(value); err != nil {
			return "", err
		}
	}
	return value, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg prompt.TextAreaConfig) (string, error) {
	s.asked = append(s.asked, "textarea:"+cfg.Message)
	s.defaults = append(s.defaults, cfg.Default)
	value := s.textAreas[s.areaPos]
	s.areaPos++
	return value, nil
}

func (s *stubDriver) Confirm(context.Context, prompt.ConfirmConfig) (bool, error) {
	return true, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infos = append(s.infos, msg)
	return nil
}

func strPtr(s string) *string { return &s }

func TestFillMissing(t *testing.T) {
	tpl := template.MustNew("model",
		"class {{MODEL_NAME}}:\n    def forward(self, x):\n{{FORWARD_CODE}}\n",
		template.Variable{Name: "MODEL_NAME", Default: strPtr("AIModel")},
		template.Variable{Name: "FORWARD_CODE"},
	)
	driver := &stubDriver{inputs: []string{"Net"}, textAreas: []string{"        return x"}}

	got, err := prompt.FillMissing(context.Background(), driver, tpl, []string{"FORWARD_CODE", "MODEL_NAME"})
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	want := template.Binding{"MODEL_NAME": "Net", "FORWARD_CODE": "        return x"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("binding mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"textarea:FORWARD_CODE", "input:MODEL_NAME"}, driver.asked); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"", "AIModel"}, driver.defaults); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infos) != 1 {
		t.Fatalf("expected one info message, got %v", driver.infos)
	}

	out, err := template.NewRenderer().Render(tpl, got)
	if err != nil {
		t.Fatalf("render after fill: %v", err)
	}
	if out != "class Net:\n    def forward(self, x):\n        return x\n" {
		t.Fatalf("render = %q", out)
	}
}

func TestFillMissing_Errors(t *testing.T) {
	tpl := template.MustNew("snippet", "class {{MODEL_NAME}}: pass")

	if _, err := prompt.FillMissing(context.Background(), nil, tpl, []string{"MODEL_NAME"}); err == nil {
		t.Fatalf("expected nil driver error")
	}

	aborted := &stubDriver{err: prompt.ErrAborted}
	if _, err := prompt.FillMissing(context.Background(), aborted, tpl, []string{"MODEL_NAME"}); !errors.Is(err, prompt.ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}

	nested := &stubDriver{inputs: []string{"{{LAYERS}}"}}
	if _, err := prompt.FillMissing(context.Background(), nested, tpl, []string{"MODEL_NAME"}); err == nil {
		t.Fatalf("expected validator to reject placeholder syntax")
	}

	got, err := prompt.FillMissing(context.Background(), &stubDriver{}, tpl, nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty binding, got %v, %v", got, err)
	}
}
