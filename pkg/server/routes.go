package server

import (
	"fmt"
	"net/http"
	"strings"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// RegisterRoutes mounts s under basePath on mux and returns the registered
// pattern. Routes are matched after the base path is stripped.
func RegisterRoutes(mux Mux, basePath string, s *Server) (string, error) {
	if mux == nil {
		return "", fmt.Errorf("server: missing mux")
	}
	if s == nil {
		return "", fmt.Errorf("server: missing server")
	}
	base := strings.TrimRight(strings.TrimSpace(basePath), "/")
	if base == "" {
		mux.Handle("/", s)
		return "/", nil
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	pattern := base + "/"
	mux.Handle(pattern, http.StripPrefix(base, s))
	return pattern, nil
}
