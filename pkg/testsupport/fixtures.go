package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-torchgen/pkg/graph"
)

// LoadGraph reads a canvas fixture (JSON or YAML) and decodes it. Testing
// helpers fail the test on error to keep table setup concise.
func LoadGraph(t *testing.T, path string) graph.Graph {
	t.Helper()

	doc, err := LoadGraphFromPath(path)
	if err != nil {
		t.Fatalf("load graph: %v", err)
	}
	return doc
}

// LoadGraphFromPath returns a Graph without requiring testing.T.
func LoadGraphFromPath(path string) (graph.Graph, error) {
	if path == "" {
		return graph.Graph{}, errors.New("testsupport: graph path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return graph.Graph{}, fmt.Errorf("testsupport: read graph: %w", err)
	}
	doc, err := graph.Decode(data)
	if err != nil {
		return graph.Graph{}, fmt.Errorf("testsupport: decode graph: %w", err)
	}
	return doc, nil
}

// UpdateGoldens reports whether golden files should be rewritten rather than
// compared. Set UPDATE_GOLDENS=1 to refresh them.
func UpdateGoldens() bool {
	return os.Getenv("UPDATE_GOLDENS") != ""
}

// AssertGolden compares got with the golden file at path. With
// UPDATE_GOLDENS set the file is rewritten instead.
func AssertGolden(t *testing.T, path, got string) {
	t.Helper()

	if UpdateGoldens() {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(got), 0o644); err != nil {
			t.Fatalf("write golden: %v", err)
		}
		return
	}

	want := MustReadGoldenString(t, path)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("golden %s mismatch (-want +got):\n%s", filepath.Base(path), diff)
	}
}

// MustReadGoldenString reads a golden file and returns its content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return string(data)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
