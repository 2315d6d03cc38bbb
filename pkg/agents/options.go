package agents

import "net/http"

const (
	defaultSearchPath   = "/api/agents"
	defaultDefaultLimit = 20
	defaultMaxLimit     = 100
)

// AuthorizeFunc vets a search request before the directory is consulted.
// A rejection answers 403 unless the error carries its own status.
type AuthorizeFunc func(r *http.Request) error

// SearchConfig drives the reporter autocomplete endpoint.
type SearchConfig struct {
	Path       string
	QueryParam string
	LimitParam string
	// DefaultLimit applies when the request names no limit; MaxLimit caps
	// whatever the request asks for.
	DefaultLimit int
	MaxLimit     int
	// ListOnEmpty returns the first agents by name for a blank query instead
	// of nothing.
	ListOnEmpty bool
	Authorize   AuthorizeFunc
}

// OptionFn adjusts a SearchConfig.
type OptionFn func(*SearchConfig)

// NewSearchConfig applies fns over the defaults and repairs zero values.
func NewSearchConfig(fns ...OptionFn) SearchConfig {
	cfg := SearchConfig{
		Path:         defaultSearchPath,
		QueryParam:   "q",
		LimitParam:   "limit",
		DefaultLimit: defaultDefaultLimit,
		MaxLimit:     defaultMaxLimit,
		ListOnEmpty:  true,
	}
	for _, fn := range fns {
		if fn != nil {
			fn(&cfg)
		}
	}
	return cfg.normalized()
}

func (c SearchConfig) normalized() SearchConfig {
	if c.Path == "" {
		c.Path = defaultSearchPath
	}
	if c.QueryParam == "" {
		c.QueryParam = "q"
	}
	if c.LimitParam == "" {
		c.LimitParam = "limit"
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = defaultMaxLimit
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = defaultDefaultLimit
	}
	if c.DefaultLimit > c.MaxLimit {
		c.DefaultLimit = c.MaxLimit
	}
	return c
}

// limit resolves a requested result count: 0 means the default, negative
// means none.
func (c SearchConfig) limit(requested int) int {
	switch {
	case requested < 0:
		return 0
	case requested == 0:
		return c.DefaultLimit
	case requested > c.MaxLimit:
		return c.MaxLimit
	default:
		return requested
	}
}

// WithPath mounts the endpoint somewhere other than /api/agents.
func WithPath(path string) OptionFn {
	return func(c *SearchConfig) { c.Path = path }
}

// WithQueryParams renames the query and limit parameters.
func WithQueryParams(query, limit string) OptionFn {
	return func(c *SearchConfig) {
		c.QueryParam = query
		c.LimitParam = limit
	}
}

func WithDefaultLimit(limit int) OptionFn {
	return func(c *SearchConfig) { c.DefaultLimit = limit }
}

func WithMaxLimit(limit int) OptionFn {
	return func(c *SearchConfig) { c.MaxLimit = limit }
}

// WithoutEmptyListing makes a blank query return no agents.
func WithoutEmptyListing() OptionFn {
	return func(c *SearchConfig) { c.ListOnEmpty = false }
}

func WithAuthorize(fn AuthorizeFunc) OptionFn {
	return func(c *SearchConfig) { c.Authorize = fn }
}
