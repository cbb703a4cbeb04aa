package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-torchgen/pkg/graph"
	"github.com/goliatone/go-torchgen/pkg/orchestrator"
	"github.com/goliatone/go-torchgen/pkg/template"
)

// Server serves the JSON API. It is safe for concurrent use; the store and
// orchestrator it holds are read-only.
type Server struct {
	opts      Options
	validator *requestValidator
	mux       *http.ServeMux
}

// New builds a Server. The OpenAPI document is loaded and checked eagerly so
// a broken build fails at startup.
func New(ctx context.Context, fns ...OptionFn) (*Server, error) {
	opts := NewOptions(fns...)
	s := &Server{opts: opts, mux: http.NewServeMux()}
	if !opts.SkipValidation {
		validator, err := newRequestValidator(ctx)
		if err != nil {
			return nil, err
		}
		s.validator = validator
	}

	s.mux.HandleFunc("GET /v1/templates", s.handleTemplates)
	s.mux.HandleFunc("POST /v1/render", s.handleRender)
	s.mux.HandleFunc("POST /v1/generate", s.handleGenerate)
	s.mux.HandleFunc("GET /openapi.yaml", s.handleOpenAPI)
	return s, nil
}

// ServeHTTP limits the body, validates the request and dispatches it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	r.Body = http.MaxBytesReader(rec, r.Body, s.opts.MaxBodyBytes)
	if s.validator != nil {
		if err := s.validator.validate(r); err != nil {
			writeError(rec, requestError(err))
			s.logRequest(r, rec.status, start)
			return
		}
	}

	s.mux.ServeHTTP(rec, r)
	s.logRequest(r, rec.status, start)
}

func (s *Server) logRequest(r *http.Request, status int, start time.Time) {
	s.opts.Logger.Info("request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"duration", time.Since(start),
	)
}

type templateInfo struct {
	ID           string              `json:"id"`
	Description  string              `json:"description,omitempty"`
	Placeholders []string            `json:"placeholders"`
	Variables    []template.Variable `json:"variables,omitempty"`
}

func (s *Server) handleTemplates(w http.ResponseWriter, _ *http.Request) {
	ids := s.opts.Store.List()
	data := make([]templateInfo, 0, len(ids))
	for _, id := range ids {
		tpl, err := s.opts.Store.Get(id)
		if err != nil {
			writeError(w, err)
			return
		}
		placeholders := tpl.Placeholders()
		if placeholders == nil {
			placeholders = []string{}
		}
		data = append(data, templateInfo{
			ID:           id,
			Description:  tpl.Description(),
			Placeholders: placeholders,
			Variables:    tpl.Variables(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

type renderRequest struct {
	Template string           `json:"template"`
	Bindings template.Binding `json:"bindings"`
	Strict   bool             `json:"strict"`
	Defaults bool             `json:"defaults"`
}

type renderResponse struct {
	Output string `json:"output"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, requestError(err))
		return
	}
	if strings.TrimSpace(req.Template) == "" {
		writeError(w, badRequest(errors.New("template is required")))
		return
	}

	tpl, err := s.opts.Store.Get(req.Template)
	if err != nil {
		writeError(w, err)
		return
	}
	bindings := req.Bindings
	if req.Defaults {
		bindings = bindings.WithDefaults(tpl)
	}

	renderer := template.NewRenderer(template.WithStrict(req.Strict))
	out, err := renderer.Render(tpl, bindings)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderResponse{Output: out})
}

type generateRequest struct {
	Graph     json.RawMessage `json:"graph"`
	ModelName string          `json:"modelName"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, requestError(err))
		return
	}
	if len(req.Graph) == 0 || string(req.Graph) == "null" {
		writeError(w, badRequest(errors.New("graph is required")))
		return
	}
	doc, err := graph.Decode(req.Graph)
	if err != nil {
		writeError(w, badRequest(err))
		return
	}

	result, err := s.opts.Orchestrator.Generate(r.Context(), orchestrator.Request{
		Graph:     &doc,
		ModelName: req.ModelName,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPIDocument)
}

func decodeJSON(body io.Reader, target any) error {
	if body == nil {
		return errors.New("request body is required")
	}
	dec := json.NewDecoder(body)
	if err := dec.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
