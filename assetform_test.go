package assetform

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-assetform/pkg/agents"
	"github.com/goliatone/go-assetform/pkg/config"
	"github.com/goliatone/go-assetform/pkg/form"
	"github.com/goliatone/go-assetform/pkg/ledger"
	"github.com/goliatone/go-assetform/pkg/orchestrator"
	"github.com/goliatone/go-assetform/pkg/renderers/html"
	"github.com/goliatone/go-assetform/pkg/transaction"
)

func TestEmbeddedAssetsAreReadable(t *testing.T) {
	if _, err := fs.ReadFile(EmbeddedTemplates(), "templates/form.tpl"); err != nil {
		t.Fatalf("expected form template: %v", err)
	}
	if _, err := fs.ReadFile(AssetsFS(), html.StylesheetName); err != nil {
		t.Fatalf("expected stylesheet: %v", err)
	}
	if !strings.Contains(string(APISpec()), "/api/assets") {
		t.Fatalf("expected API description to declare /api/assets")
	}
	doc, err := LoadAPI(context.Background())
	if err != nil {
		t.Fatalf("load api: %v", err)
	}
	if doc.Title() == "" {
		t.Fatalf("expected a title")
	}
}

func TestRenderHTML(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.Enabled = false
	dir := agents.NewStaticDirectory("K1", agents.Agent{Name: "Bob", Key: "K2"})
	sub := transaction.SubmitterFunc(func(context.Context, []ledger.Payload, bool) error { return nil })

	out, err := RenderHTML(context.Background(), form.NewState(), RenderOptions{Action: "/assets"},
		orchestrator.WithConfig(cfg),
		orchestrator.WithDirectory(dir),
		orchestrator.WithSubmitter(sub),
		orchestrator.WithMetricsRegistry(prometheus.NewRegistry()),
	)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), "Track New Asset") {
		t.Fatalf("expected default legend in output")
	}
}
