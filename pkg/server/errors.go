package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/goliatone/go-torchgen/pkg/codegen"
	"github.com/goliatone/go-torchgen/pkg/graph"
	"github.com/goliatone/go-torchgen/pkg/template"
)

// Error codes carried in error payloads.
const (
	CodeInvalidRequest   = "invalid_request"
	CodeBodyTooLarge     = "body_too_large"
	CodeUnknownTemplate  = "unknown_template"
	CodeMissingBinding   = "missing_binding"
	CodeUnusedBinding    = "unused_binding"
	CodeInvalidBinding   = "invalid_binding"
	CodeInvalidGraph     = "invalid_graph"
	CodeInvalidModelName = "invalid_model_name"
	CodeInternal         = "internal"
)

// StatusError pairs an error with the HTTP status and code reported to the
// client.
type StatusError struct {
	Code   int
	Reason string
	Names  []string
	Err    error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status, defaulting to 500.
func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type errorResponse struct {
	Error string   `json:"error"`
	Code  string   `json:"code"`
	Names []string `json:"names,omitempty"`
}

func badRequest(err error) StatusError {
	return StatusError{Code: http.StatusBadRequest, Reason: CodeInvalidRequest, Err: err}
}

// requestError reports a failure to read or decode the request. Bodies cut
// off by the size limit are 413.
func requestError(err error) StatusError {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return StatusError{
			Code:   http.StatusRequestEntityTooLarge,
			Reason: CodeBodyTooLarge,
			Err:    fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit),
		}
	}
	return badRequest(err)
}

// classify maps package errors onto HTTP statuses.
func classify(err error) StatusError {
	var status StatusError
	if errors.As(err, &status) {
		return status
	}

	var (
		missing *template.MissingBindingError
		unused  *template.UnusedBindingError
		invalid *template.InvalidBindingError
	)
	switch {
	case errors.Is(err, template.ErrUnknownTemplate):
		return StatusError{Code: http.StatusNotFound, Reason: CodeUnknownTemplate, Err: err}
	case errors.As(err, &missing):
		return StatusError{Code: http.StatusUnprocessableEntity, Reason: CodeMissingBinding, Names: missing.Names, Err: err}
	case errors.As(err, &unused):
		return StatusError{Code: http.StatusUnprocessableEntity, Reason: CodeUnusedBinding, Names: unused.Names, Err: err}
	case errors.As(err, &invalid):
		return StatusError{Code: http.StatusUnprocessableEntity, Reason: CodeInvalidBinding, Names: []string{invalid.Name}, Err: err}
	case errors.Is(err, graph.ErrInvalidGraph):
		return StatusError{Code: http.StatusUnprocessableEntity, Reason: CodeInvalidGraph, Err: err}
	case errors.Is(err, codegen.ErrInvalidModelName):
		return StatusError{Code: http.StatusUnprocessableEntity, Reason: CodeInvalidModelName, Err: err}
	default:
		return StatusError{Code: http.StatusInternalServerError, Reason: CodeInternal, Err: err}
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := classify(err)
	message := status.Error()
	if status.StatusCode() == http.StatusInternalServerError {
		message = http.StatusText(http.StatusInternalServerError)
	}
	writeJSON(w, status.StatusCode(), errorResponse{
		Error: message,
		Code:  status.Reason,
		Names: status.Names,
	})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}
