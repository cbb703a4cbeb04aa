package template

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingBinding is matched by MissingBindingError.
	ErrMissingBinding = errors.New("template: missing binding")
	// ErrUnknownTemplate is matched by UnknownTemplateError.
	ErrUnknownTemplate = errors.New("template: unknown template")
	// ErrUnusedBinding is matched by UnusedBindingError.
	ErrUnusedBinding = errors.New("template: unused binding")
	// ErrInvalidBinding is matched by InvalidBindingError.
	ErrInvalidBinding = errors.New("template: invalid binding")
)

// MissingBindingError reports placeholders that had no binding at render time.
// Names is sorted and free of duplicates.
type MissingBindingError struct {
	Template string
	Names    []string
}

func (e *MissingBindingError) Error() string {
	return fmt.Sprintf("template %s: missing binding for %s", quoteID(e.Template), strings.Join(e.Names, ", "))
}

// Is lets errors.Is match ErrMissingBinding.
func (e *MissingBindingError) Is(target error) bool {
	return target == ErrMissingBinding
}

// UnknownTemplateError reports a lookup for an id the store does not hold.
type UnknownTemplateError struct {
	ID string
}

func (e *UnknownTemplateError) Error() string {
	return fmt.Sprintf("template: template %q not found", e.ID)
}

// Is lets errors.Is match ErrUnknownTemplate.
func (e *UnknownTemplateError) Is(target error) bool {
	return target == ErrUnknownTemplate
}

// UnusedBindingError is returned in strict mode when bindings name
// placeholders the template does not contain.
type UnusedBindingError struct {
	Template string
	Names    []string
}

func (e *UnusedBindingError) Error() string {
	return fmt.Sprintf("template %s: unused binding %s", quoteID(e.Template), strings.Join(e.Names, ", "))
}

// Is lets errors.Is match ErrUnusedBinding.
func (e *UnusedBindingError) Is(target error) bool {
	return target == ErrUnusedBinding
}

// InvalidBindingError reports a bound value that itself contains placeholder
// syntax. Such values would leave unresolved tokens in the output.
type InvalidBindingError struct {
	Template string
	Name     string
	Token    string
}

func (e *InvalidBindingError) Error() string {
	return fmt.Sprintf("template %s: binding %s contains placeholder %s", quoteID(e.Template), e.Name, e.Token)
}

// Is lets errors.Is match ErrInvalidBinding.
func (e *InvalidBindingError) Is(target error) bool {
	return target == ErrInvalidBinding
}

func quoteID(id string) string {
	if id == "" {
		return "<inline>"
	}
	return fmt.Sprintf("%q", id)
}
