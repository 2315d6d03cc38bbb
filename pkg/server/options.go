package server

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goliatone/go-assetform/pkg/agents"
	"github.com/goliatone/go-assetform/pkg/form"
	"github.com/goliatone/go-assetform/pkg/openapi"
	"github.com/goliatone/go-assetform/pkg/payload"
	"github.com/goliatone/go-assetform/pkg/transaction"
)

// Option configures a Server.
type Option func(*Server)

// WithLayout replaces the default form layout.
func WithLayout(layout form.Layout) Option {
	return func(s *Server) {
		if len(layout.Sections) > 0 {
			s.layout = layout
		}
	}
}

// WithBuilder overrides the payload builder.
func WithBuilder(builder *payload.Builder) Option {
	return func(s *Server) {
		if builder != nil {
			s.builder = builder
		}
	}
}

// WithValidator enables schema validation of POST /api/assets bodies.
func WithValidator(validator *openapi.Validator) Option {
	return func(s *Server) {
		s.validator = validator
	}
}

// WithObserver records submission metrics.
func WithObserver(observer transaction.Observer) Option {
	return func(s *Server) {
		s.observer = observer
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCSRF enables the double-submit token check on POST /assets.
func WithCSRF(fieldName, cookieName string) Option {
	return func(s *Server) {
		fieldName = strings.TrimSpace(fieldName)
		cookieName = strings.TrimSpace(cookieName)
		if fieldName == "" || cookieName == "" {
			return
		}
		s.csrfField = fieldName
		s.csrfCookie = cookieName
	}
}

// WithTokenGenerator overrides CSRF token generation.
func WithTokenGenerator(fn func() string) Option {
	return func(s *Server) {
		if fn != nil {
			s.newToken = fn
		}
	}
}

// WithMetricsHandler mounts handler (usually promhttp) at path.
func WithMetricsHandler(path string, handler http.Handler) Option {
	return func(s *Server) {
		if handler != nil && strings.HasPrefix(path, "/") {
			s.metricsPath = path
			s.metrics = handler
		}
	}
}

// WithStatic serves files under prefix.
func WithStatic(prefix string, files fs.FS) Option {
	return func(s *Server) {
		if files == nil || prefix == "" {
			return
		}
		if !strings.HasPrefix(prefix, "/") {
			prefix = "/" + prefix
		}
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		s.staticPrefix = prefix
		s.static = files
	}
}

// WithAgentOptions customises the /api/agents search handler.
func WithAgentOptions(fns ...agents.OptionFn) Option {
	return func(s *Server) {
		s.agentOptions = append(s.agentOptions, fns...)
	}
}
