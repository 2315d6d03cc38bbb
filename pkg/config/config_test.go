package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const sampleYAML = `
server:
  addr: ":9000"
  readTimeout: 5s
ledger:
  baseURL: https://ledger.example.com/api
  publicKey: 02aa
  timeout: 12
agents:
  cacheTTL: 1m
form:
  legend: Register Pallet
  labels:
    serialNumber: Pallet ID
  help:
    weight: In <strong>kg</strong>
theme:
  name: acme
  variant: dark
  manifests:
    - name: acme
      version: 1.0.0
      tokens:
        brand: "#123456"
      assets:
        prefix: /static/acme
        files:
          assetform.stylesheet: acme.css
      variants:
        dark:
          tokens:
            brand: "#000000"
`

func TestParse_YAMLOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML), "sample.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.Server.Addr != ":9000" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if got := cfg.Server.ReadTimeout.Std(); got != 5*time.Second {
		t.Fatalf("read timeout = %v", got)
	}
	if got := cfg.Server.ShutdownTimeout.Std(); got != 5*time.Second {
		t.Fatalf("shutdown timeout default lost: %v", got)
	}
	if got := cfg.Ledger.Timeout.Std(); got != 12*time.Second {
		t.Fatalf("bare number should be seconds, got %v", got)
	}
	if got := cfg.Agents.CacheTTL.Std(); got != time.Minute {
		t.Fatalf("cache ttl = %v", got)
	}
	if cfg.Agents.MaxLimit != 50 || !cfg.CSRF.Enabled || cfg.Metrics.Path != "/metrics" {
		t.Fatalf("defaults not kept: %+v", cfg)
	}
	if diff := cmp.Diff(map[string]string{"serialNumber": "Pallet ID"}, cfg.Form.Labels); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_JSON(t *testing.T) {
	cfg, err := Parse([]byte(`{"ledger":{"baseURL":"http://localhost:8000","timeout":"2s"},"csrf":{"enabled":false}}`), "cfg.json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Ledger.Timeout.Std() != 2*time.Second {
		t.Fatalf("timeout = %v", cfg.Ledger.Timeout)
	}
	if cfg.CSRF.Enabled {
		t.Fatalf("csrf should be disabled")
	}
	if cfg.Server.Addr != ":8383" {
		t.Fatalf("default addr lost: %q", cfg.Server.Addr)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":          "  ",
		"bad url":        `{"ledger":{"baseURL":"ledger"}}`,
		"bad duration":   "ledger:\n  timeout: soon\n",
		"limits":         "agents:\n  defaultLimit: 80\n",
		"unknown theme":  "theme:\n  name: missing\n",
		"duplicate":      "theme:\n  manifests:\n    - name: a\n    - name: a\n",
		"unnamed":        "theme:\n  manifests:\n    - version: \"1\"\n",
		"csrf misconfig": "csrf:\n  enabled: true\n  fieldName: ''\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(data), "x.yaml"); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoad_FileAndEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}

	path := filepath.Join(t.TempDir(), "assetform.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Theme.Name != "acme" {
		t.Fatalf("theme = %q", cfg.Theme.Name)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil || !strings.Contains(err.Error(), "config: read") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	env := map[string]string{
		EnvLedgerURL: " http://ledger:8000 ",
		EnvPublicKey: "03bb",
		EnvAddr:      "",
	}
	cfg.ApplyEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	if cfg.Ledger.BaseURL != "http://ledger:8000" || cfg.Ledger.PublicKey != "03bb" {
		t.Fatalf("env not applied: %+v", cfg.Ledger)
	}
	if cfg.Server.Addr != ":8383" {
		t.Fatalf("blank env value should not override addr: %q", cfg.Server.Addr)
	}
}

func TestThemeManifests(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML), "sample.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	manifests := cfg.ThemeManifests()
	if len(manifests) != 1 {
		t.Fatalf("expected one manifest, got %d", len(manifests))
	}
	m := manifests[0]
	if m.Name != "acme" || m.Assets.Prefix != "/static/acme" {
		t.Fatalf("unexpected manifest %+v", m)
	}
	if got := m.Variants["dark"].Tokens["brand"]; got != "#000000" {
		t.Fatalf("variant token = %q", got)
	}
}
