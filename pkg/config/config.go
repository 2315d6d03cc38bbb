package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvAddr      = "ASSETFORM_ADDR"
	EnvLedgerURL = "ASSETFORM_LEDGER_URL"
	EnvPublicKey = "ASSETFORM_PUBLIC_KEY"
)

// Config is the full server and CLI configuration.
type Config struct {
	Server  Server  `json:"server" yaml:"server"`
	Ledger  Ledger  `json:"ledger" yaml:"ledger"`
	Agents  Agents  `json:"agents" yaml:"agents"`
	Form    Form    `json:"form" yaml:"form"`
	Theme   Theme   `json:"theme" yaml:"theme"`
	Metrics Metrics `json:"metrics" yaml:"metrics"`
	CSRF    CSRF    `json:"csrf" yaml:"csrf"`
}

type Server struct {
	Addr            string   `json:"addr" yaml:"addr"`
	ReadTimeout     Duration `json:"readTimeout" yaml:"readTimeout"`
	WriteTimeout    Duration `json:"writeTimeout" yaml:"writeTimeout"`
	ShutdownTimeout Duration `json:"shutdownTimeout" yaml:"shutdownTimeout"`
	StaticPrefix    string   `json:"staticPrefix" yaml:"staticPrefix"`
}

// Ledger points at the REST ledger API. PublicKey identifies the current
// user and is excluded from the reporter candidates.
type Ledger struct {
	BaseURL   string   `json:"baseURL" yaml:"baseURL"`
	PublicKey string   `json:"publicKey" yaml:"publicKey"`
	Timeout   Duration `json:"timeout" yaml:"timeout"`
}

type Agents struct {
	CacheTTL     Duration `json:"cacheTTL" yaml:"cacheTTL"`
	DefaultLimit int      `json:"defaultLimit" yaml:"defaultLimit"`
	MaxLimit     int      `json:"maxLimit" yaml:"maxLimit"`
}

// Form overrides the copy of the default layout. Help may contain limited
// inline markup; it is sanitised before rendering.
type Form struct {
	Legend string            `json:"legend" yaml:"legend"`
	Labels map[string]string `json:"labels" yaml:"labels"`
	Help   map[string]string `json:"help" yaml:"help"`
}

// Theme selects one of the declared manifests.
type Theme struct {
	Name      string     `json:"name" yaml:"name"`
	Variant   string     `json:"variant" yaml:"variant"`
	Manifests []Manifest `json:"manifests" yaml:"manifests"`
}

type Manifest struct {
	Name      string             `json:"name" yaml:"name"`
	Version   string             `json:"version" yaml:"version"`
	Tokens    map[string]string  `json:"tokens" yaml:"tokens"`
	Templates map[string]string  `json:"templates" yaml:"templates"`
	Assets    Assets             `json:"assets" yaml:"assets"`
	Variants  map[string]Variant `json:"variants" yaml:"variants"`
}

type Assets struct {
	Prefix string            `json:"prefix" yaml:"prefix"`
	Files  map[string]string `json:"files" yaml:"files"`
}

type Variant struct {
	Tokens    map[string]string `json:"tokens" yaml:"tokens"`
	Templates map[string]string `json:"templates" yaml:"templates"`
	Assets    Assets            `json:"assets" yaml:"assets"`
}

type Metrics struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Namespace string `json:"namespace" yaml:"namespace"`
	Path      string `json:"path" yaml:"path"`
}

// CSRF enables a double-submit token on the HTML form.
type CSRF struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	FieldName  string `json:"fieldName" yaml:"fieldName"`
	CookieName string `json:"cookieName" yaml:"cookieName"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8383",
			ReadTimeout:     Duration(10 * time.Second),
			WriteTimeout:    Duration(35 * time.Second),
			ShutdownTimeout: Duration(5 * time.Second),
			StaticPrefix:    "/static/",
		},
		Ledger: Ledger{
			Timeout: Duration(30 * time.Second),
		},
		Agents: Agents{
			CacheTTL:     Duration(30 * time.Second),
			DefaultLimit: 10,
			MaxLimit:     50,
		},
		Metrics: Metrics{
			Enabled:   true,
			Namespace: "assetform",
			Path:      "/metrics",
		},
		CSRF: CSRF{
			Enabled:    true,
			FieldName:  "_csrf",
			CookieName: "assetform_csrf",
		},
	}
}

// Load reads path and overlays it on Default. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes JSON or YAML data over Default and validates the result.
// source is only used in error messages.
func Parse(data []byte, source string) (Config, error) {
	cfg := Default()
	if len(strings.TrimSpace(string(data))) == 0 {
		return Config{}, fmt.Errorf("config: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		cfg = Default()
		if yerr := yaml.Unmarshal(data, &cfg); yerr != nil {
			return Config{}, fmt.Errorf("config: parse %s: invalid JSON or YAML: %w", source, yerr)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", source, err)
	}
	return cfg, nil
}

// ApplyEnv overrides ledger and listen settings from lookup, typically
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if c == nil || lookup == nil {
		return
	}
	if v, ok := lookup(EnvAddr); ok && strings.TrimSpace(v) != "" {
		c.Server.Addr = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLedgerURL); ok && strings.TrimSpace(v) != "" {
		c.Ledger.BaseURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvPublicKey); ok && strings.TrimSpace(v) != "" {
		c.Ledger.PublicKey = strings.TrimSpace(v)
	}
}

// Validate checks values that would otherwise fail late at request time.
func (c Config) Validate() error {
	var errs []error
	if c.Ledger.BaseURL != "" {
		u, err := url.Parse(c.Ledger.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("ledger.baseURL %q is not an absolute URL", c.Ledger.BaseURL))
		}
	}
	if c.Ledger.Timeout < 0 || c.Agents.CacheTTL < 0 {
		errs = append(errs, errors.New("timeouts must not be negative"))
	}
	if c.Agents.DefaultLimit < 0 || c.Agents.MaxLimit < 0 {
		errs = append(errs, errors.New("agents limits must not be negative"))
	}
	if c.Agents.MaxLimit > 0 && c.Agents.DefaultLimit > c.Agents.MaxLimit {
		errs = append(errs, fmt.Errorf("agents.defaultLimit %d exceeds maxLimit %d", c.Agents.DefaultLimit, c.Agents.MaxLimit))
	}

	seen := make(map[string]struct{}, len(c.Theme.Manifests))
	for i, m := range c.Theme.Manifests {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("theme.manifests[%d].name is required", i))
			continue
		}
		if _, dup := seen[name]; dup {
			errs = append(errs, fmt.Errorf("theme %q declared twice", name))
		}
		seen[name] = struct{}{}
	}
	if c.Theme.Name != "" {
		if _, ok := seen[c.Theme.Name]; !ok {
			errs = append(errs, fmt.Errorf("theme.name %q does not match a manifest", c.Theme.Name))
		}
	}
	if c.CSRF.Enabled && (strings.TrimSpace(c.CSRF.FieldName) == "" || strings.TrimSpace(c.CSRF.CookieName) == "") {
		errs = append(errs, errors.New("csrf.fieldName and csrf.cookieName are required when csrf is enabled"))
	}
	return errors.Join(errs...)
}

// ThemeManifests converts the declared manifests for the theme registry.
func (c Config) ThemeManifests() []*theme.Manifest {
	out := make([]*theme.Manifest, 0, len(c.Theme.Manifests))
	for _, m := range c.Theme.Manifests {
		manifest := &theme.Manifest{
			Name:      strings.TrimSpace(m.Name),
			Version:   m.Version,
			Tokens:    m.Tokens,
			Templates: m.Templates,
			Assets:    theme.Assets{Prefix: m.Assets.Prefix, Files: m.Assets.Files},
		}
		if len(m.Variants) > 0 {
			manifest.Variants = make(map[string]theme.Variant, len(m.Variants))
			for name, v := range m.Variants {
				manifest.Variants[name] = theme.Variant{
					Tokens:    v.Tokens,
					Templates: v.Templates,
					Assets:    theme.Assets{Prefix: v.Assets.Prefix, Files: v.Assets.Files},
				}
			}
		}
		out = append(out, manifest)
	}
	return out
}
