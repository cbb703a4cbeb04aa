package template_test

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-torchgen/pkg/template"
)

func TestDefault_EmbeddedTemplates(t *testing.T) {
	store := template.Default()

	if diff := cmp.Diff([]string{"inference", "model", "train"}, store.List()); diff != "" {
		t.Fatalf("template ids mismatch (-want +got):\n%s", diff)
	}

	cases := map[string][]string{
		template.IDModel:     {"FORWARD_CODE", "LAYERS", "MODEL_NAME", "MODEL_SUMMARY", "TORCHVISION_IMPORT"},
		template.IDTrain:     {"MODEL_NAME"},
		template.IDInference: {"MODEL_NAME"},
	}
	for id, want := range cases {
		got, err := store.Placeholders(id)
		if err != nil {
			t.Fatalf("placeholders %s: %v", id, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%s placeholders mismatch (-want +got):\n%s", id, diff)
		}
	}

	model, err := store.Get(template.IDModel)
	if err != nil {
		t.Fatalf("get model: %v", err)
	}
	if model.Description() == "" {
		t.Fatalf("expected manifest description on model template")
	}
}

func TestStore_Get_UnknownTemplate(t *testing.T) {
	_, err := template.Default().Get("evaluate")
	if !errors.Is(err, template.ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}
	var unknown *template.UnknownTemplateError
	if !errors.As(err, &unknown) || unknown.ID != "evaluate" {
		t.Fatalf("expected UnknownTemplateError naming evaluate, got %v", err)
	}

	if _, err := template.Default().Render("evaluate", nil); !errors.Is(err, template.ErrUnknownTemplate) {
		t.Fatalf("render: expected ErrUnknownTemplate, got %v", err)
	}
}

func TestStore_Render_Train(t *testing.T) {
	out, err := template.Default().Render(template.IDTrain, template.Binding{"MODEL_NAME": "Net"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"from model import Net\n", "    model = Net()\n"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q", want)
		}
	}
}

func TestStore_Render_ModelDefaults(t *testing.T) {
	store := template.Default()
	tpl, err := store.Get(template.IDModel)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	b := template.Binding{
		"LAYERS":        "        self.fc1 = nn.Linear(4, 2)",
		"FORWARD_CODE":  "        return self.fc1(x)",
		"MODEL_SUMMARY": "        print(\"fc1: Linear\")",
	}.WithDefaults(tpl)

	out, err := store.Render(template.IDModel, b)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{
		"class AIModel(nn.Module):\n",
		"        super(AIModel, self).__init__()\n        self.fc1 = nn.Linear(4, 2)\n",
		"    def forward(self, x):\n        return self.fc1(x)\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q\n%s", want, out)
		}
	}
}

func TestLoadFS_Manifest(t *testing.T) {
	fsys := fstest.MapFS{
		"manifest.json": {Data: []byte(`{"templates":[{"id":"greet","file":"greet.txt","description":"hi","variables":[{"name":"NAME","default":"world"}]}]}`)},
		"greet.txt":     {Data: []byte("hello {{NAME}}")},
	}

	store, err := template.LoadFS(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	tpl, err := store.Get("greet")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	out, err := template.NewRenderer().Render(tpl, template.Binding{}.WithDefaults(tpl))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "hello world" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestLoadFS_ManifestMismatch(t *testing.T) {
	fsys := fstest.MapFS{
		"manifest.yaml": {Data: []byte("templates:\n  - id: greet\n    file: greet.txt\n    variables:\n      - name: NAME\n")},
		"greet.txt":     {Data: []byte("hello {{NAME}} {{EXTRA}}")},
	}

	if _, err := template.LoadFS(fsys); err == nil || !strings.Contains(err.Error(), "EXTRA") {
		t.Fatalf("expected undeclared placeholder error, got %v", err)
	}
}

func TestLoadFS_WithoutManifest(t *testing.T) {
	fsys := fstest.MapFS{
		"model_template.py":  {Data: []byte("class {{MODEL_NAME}}: pass")},
		"nested/summary.tpl": {Data: []byte("{{TITLE}}")},
		"README.md":          {Data: []byte("{{IGNORED}}")},
		".hidden/skip.py":    {Data: []byte("{{SKIP}}")},
	}

	store, err := template.LoadFS(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"model", "summary"}, store.List()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestNewStore_Duplicate(t *testing.T) {
	a := template.MustNew("a", "x")
	if _, err := template.NewStore(a, a); err == nil {
		t.Fatalf("expected duplicate error")
	}
}
