package torchgen_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	torchgen "github.com/goliatone/go-torchgen"
	"github.com/goliatone/go-torchgen/pkg/graph"
	"github.com/goliatone/go-torchgen/pkg/orchestrator"
	"github.com/goliatone/go-torchgen/pkg/template"
)

func TestRender(t *testing.T) {
	out, err := torchgen.Render(template.IDTrain, torchgen.Binding{"MODEL_NAME": "Net"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "from model import Net\n") {
		t.Fatalf("rendered train script does not import Net")
	}

	_, err = torchgen.Render(template.IDModel, torchgen.Binding{"MODEL_NAME": "Net"})
	var missing *template.MissingBindingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingBindingError, got %v", err)
	}
	want := []string{"FORWARD_CODE", "LAYERS", "MODEL_SUMMARY", "TORCHVISION_IMPORT"}
	if strings.Join(missing.Names, ",") != strings.Join(want, ",") {
		t.Fatalf("missing names = %v", missing.Names)
	}
}

func TestGenerate_FromLoaderFS(t *testing.T) {
	doc := `nodes:
  - id: a
    type: linear
    params:
      - {key: in_features, value: 4}
      - {key: out_features, value: 2}
`
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "canvas.yaml"), []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	loader := torchgen.NewLoader(graph.WithFileSystem(os.DirFS(dir)))
	result, err := torchgen.Generate(context.Background(), graph.SourceFromFS("canvas.yaml"), "Tiny", orchestrator.WithLoader(loader))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(result.Files[orchestrator.FileModel], "class Tiny(nn.Module):") {
		t.Fatalf("model.py missing class:\n%s", result.Files[orchestrator.FileModel])
	}
}

func TestGenerateFromGraph_Empty(t *testing.T) {
	result, err := torchgen.GenerateFromGraph(context.Background(), graph.Graph{}, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !result.Empty {
		t.Fatalf("expected empty result")
	}
}

func TestEmbeddedTemplates(t *testing.T) {
	for _, name := range []string{"manifest.yaml", "model_template.py", "train_template.py", "inference_template.py"} {
		if _, err := fs.Stat(torchgen.EmbeddedTemplates(), name); err != nil {
			t.Fatalf("embedded template %s: %v", name, err)
		}
	}
	for _, name := range []string{"summary.tpl", "requirements.tpl"} {
		if _, err := fs.Stat(torchgen.ReportTemplates(), name); err != nil {
			t.Fatalf("report template %s: %v", name, err)
		}
	}
}
