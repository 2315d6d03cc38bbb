package agents

import (
	"errors"
	"net/http"
	"path"
	"strings"
)

// Mux is the part of *http.ServeMux the routes need.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// RegisterRoutes mounts the search endpoint for dir below prefix and returns
// the registered pattern.
func RegisterRoutes(mux Mux, prefix string, dir Directory, fns ...OptionFn) (string, error) {
	switch {
	case mux == nil:
		return "", errors.New("agents: register routes: nil mux")
	case dir == nil:
		return "", errors.New("agents: register routes: nil directory")
	}
	cfg := NewSearchConfig(fns...)
	pattern := http.MethodGet + " " + joinRoute(prefix, cfg.Path)
	mux.Handle(pattern, newSearchHandler(dir, cfg))
	return pattern, nil
}

func joinRoute(prefix, route string) string {
	return path.Join("/", strings.TrimSpace(prefix), strings.TrimSpace(route))
}
