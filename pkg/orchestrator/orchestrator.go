package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-assetform/pkg/agents"
	"github.com/goliatone/go-assetform/pkg/config"
	"github.com/goliatone/go-assetform/pkg/form"
	"github.com/goliatone/go-assetform/pkg/openapi"
	"github.com/goliatone/go-assetform/pkg/payload"
	"github.com/goliatone/go-assetform/pkg/render"
	"github.com/goliatone/go-assetform/pkg/renderers/html"
	"github.com/goliatone/go-assetform/pkg/renderers/tui"
	"github.com/goliatone/go-assetform/pkg/server"
	"github.com/goliatone/go-assetform/pkg/transaction"
)

const defaultRendererName = "html"

// Option customises the orchestrator.
type Option func(*Orchestrator)

// WithConfig replaces the default configuration.
func WithConfig(cfg config.Config) Option {
	return func(o *Orchestrator) {
		o.cfg = cfg
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRegistry injects a renderer registry. The HTML renderer is added to it
// unless one named "html" is already registered.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDirectory bypasses the HTTP agent directory.
func WithDirectory(dir agents.Directory) Option {
	return func(o *Orchestrator) {
		o.directory = dir
	}
}

// WithSubmitter bypasses the HTTP ledger client.
func WithSubmitter(submitter transaction.Submitter) Option {
	return func(o *Orchestrator) {
		o.submitter = submitter
	}
}

// WithHTTPClient sets the client used for ledger calls.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Orchestrator) {
		o.httpClient = client
	}
}

// WithMetricsRegistry registers collectors on reg and serves it at the
// configured metrics path. Without it the global registry is used.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(o *Orchestrator) {
		o.metricsRegistry = reg
	}
}

// WithPromptDriver registers the terminal renderer over driver.
func WithPromptDriver(driver tui.PromptDriver) Option {
	return func(o *Orchestrator) {
		o.promptDriver = driver
	}
}

// Orchestrator owns the collaborators built from configuration. Components
// not injected through options are constructed from config.Config.
type Orchestrator struct {
	cfg             config.Config
	logger          *slog.Logger
	registry        *render.Registry
	directory       agents.Directory
	submitter       transaction.Submitter
	httpClient      *http.Client
	metricsRegistry *prometheus.Registry
	promptDriver    tui.PromptDriver

	layout        form.Layout
	builder       *payload.Builder
	observer      *transaction.PrometheusObserver
	initialiseErr error
}

// New constructs an Orchestrator. Construction errors (for example a missing
// ledger URL) are reported by the first method that needs the component.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:    config.Default(),
		logger: slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

func (o *Orchestrator) applyDefaults() {
	o.layout = form.DefaultLayout().WithOverrides(o.cfg.Form.Legend, o.cfg.Form.Labels, o.cfg.Form.Help)
	o.builder = payload.NewBuilder()
	if o.registry == nil {
		o.registry = render.NewRegistry()
	}

	var errs []error
	if o.cfg.Metrics.Enabled {
		var reg prometheus.Registerer = prometheus.DefaultRegisterer
		if o.metricsRegistry != nil {
			reg = o.metricsRegistry
		}
		observer, err := transaction.NewPrometheusObserver(o.cfg.Metrics.Namespace, reg)
		if err != nil {
			errs = append(errs, err)
		}
		o.observer = observer
	}

	if o.directory == nil {
		dir, err := o.httpDirectory()
		if err != nil {
			errs = append(errs, err)
		}
		o.directory = dir
	}
	if o.submitter == nil {
		client, err := o.httpSubmitter()
		if err != nil {
			errs = append(errs, err)
		}
		if client != nil {
			o.submitter = client
		}
	}

	if _, err := o.registry.Get(defaultRendererName); err != nil {
		renderer, err := o.htmlRenderer()
		if err != nil {
			errs = append(errs, err)
		} else if err := o.registry.Register(renderer); err != nil {
			errs = append(errs, err)
		}
	}
	if o.promptDriver != nil {
		if _, err := o.registry.Get("tui"); err != nil {
			if err := o.registry.Register(o.terminal()); err != nil {
				errs = append(errs, err)
			}
		}
	}

	o.initialiseErr = errors.Join(errs...)
}

func (o *Orchestrator) httpDirectory() (agents.Directory, error) {
	if o.cfg.Ledger.BaseURL == "" {
		return nil, errors.New("orchestrator: ledger.baseURL is required for the agent directory")
	}
	opts := []agents.ClientOption{
		agents.WithPublicKey(o.cfg.Ledger.PublicKey),
		agents.WithTimeout(o.cfg.Ledger.Timeout.Std()),
		agents.WithLogger(o.logger),
	}
	if o.httpClient != nil {
		opts = append(opts, agents.WithHTTPClient(o.httpClient))
	}
	client, err := agents.NewClient(o.cfg.Ledger.BaseURL, opts...)
	if err != nil {
		return nil, err
	}

	cacheOpts := []agents.CacheOption{
		agents.WithTTL(o.cfg.Agents.CacheTTL.Std()),
		agents.WithCacheLogger(o.logger),
	}
	if o.observer != nil {
		cacheOpts = append(cacheOpts, agents.WithObserver(o.observer))
	}
	return agents.NewCachedDirectory(client, cacheOpts...), nil
}

func (o *Orchestrator) httpSubmitter() (*transaction.Client, error) {
	if o.cfg.Ledger.BaseURL == "" {
		return nil, errors.New("orchestrator: ledger.baseURL is required for submissions")
	}
	opts := []transaction.ClientOption{
		transaction.WithPublicKey(o.cfg.Ledger.PublicKey),
		transaction.WithTimeout(o.cfg.Ledger.Timeout.Std()),
		transaction.WithClientLogger(o.logger),
	}
	if o.httpClient != nil {
		opts = append(opts, transaction.WithHTTPClient(o.httpClient))
	}
	return transaction.NewClient(o.cfg.Ledger.BaseURL, opts...)
}

func (o *Orchestrator) htmlRenderer() (*html.Renderer, error) {
	var opts []html.Option
	if manifests := o.cfg.ThemeManifests(); len(manifests) > 0 {
		selector, err := html.NewManifestSelector(manifests...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, html.WithThemeSelector(selector, o.cfg.Theme.Name, o.cfg.Theme.Variant))
	}
	return html.New(opts...)
}

func (o *Orchestrator) terminal() *tui.Renderer {
	return tui.New(tui.WithPromptDriver(o.promptDriver))
}

// Err reports construction failures.
func (o *Orchestrator) Err() error {
	return o.initialiseErr
}

// Config returns the effective configuration.
func (o *Orchestrator) Config() config.Config { return o.cfg }

// Layout returns the configured form layout.
func (o *Orchestrator) Layout() form.Layout { return o.layout }

// Directory returns the agent directory.
func (o *Orchestrator) Directory() agents.Directory { return o.directory }

// Registry returns the renderer registry.
func (o *Orchestrator) Registry() *render.Registry { return o.registry }

// NewState builds an empty form state primed with the visible agents.
func (o *Orchestrator) NewState(ctx context.Context) (*form.State, error) {
	if o.directory == nil {
		return nil, o.errOr("orchestrator: no agent directory")
	}
	list, err := agents.Visible(ctx, o.directory)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: load agents: %w", err)
	}
	return form.NewState(form.WithAgents(list)), nil
}

// Render draws state with the named renderer (the HTML renderer when name is
// empty).
func (o *Orchestrator) Render(ctx context.Context, name string, state *form.State, opts render.RenderOptions) ([]byte, error) {
	if name == "" {
		name = defaultRendererName
	}
	renderer, err := o.registry.Get(name)
	if err != nil {
		return nil, o.errOr(err.Error())
	}
	return renderer.Render(ctx, render.NewView(o.layout, state), opts)
}

// Fill runs the terminal form over state.
func (o *Orchestrator) Fill(ctx context.Context, state *form.State, errs map[string][]string) error {
	if o.promptDriver == nil {
		return errors.New("orchestrator: no prompt driver configured")
	}
	return o.terminal().Fill(ctx, state, o.layout, errs)
}

// Track builds the payloads for state and submits them as one batch. It
// returns the route of the new asset.
func (o *Orchestrator) Track(ctx context.Context, state *form.State) (string, error) {
	if o.submitter == nil {
		return "", o.errOr("orchestrator: no submitter")
	}
	record, proposals, err := o.builder.Build(state)
	if err != nil {
		return "", err
	}

	var route string
	opts := []transaction.DispatcherOption{
		transaction.WithNavigator(transaction.NavigatorFunc(func(path string) { route = path })),
		transaction.WithLogger(o.logger),
	}
	if o.observer != nil {
		opts = append(opts, transaction.WithObserver(o.observer))
	}
	if err := transaction.NewDispatcher(o.submitter, opts...).Submit(ctx, record, proposals); err != nil {
		return "", err
	}
	return route, nil
}

// Server builds the HTTP server from configuration.
func (o *Orchestrator) Server(ctx context.Context) (*server.Server, error) {
	if o.initialiseErr != nil {
		return nil, o.initialiseErr
	}
	renderer, err := o.registry.Get(defaultRendererName)
	if err != nil {
		return nil, err
	}

	doc, err := openapi.LoadEmbedded(ctx)
	if err != nil {
		return nil, err
	}
	validator, err := openapi.NewAssetValidator(doc)
	if err != nil {
		return nil, err
	}

	opts := []server.Option{
		server.WithLayout(o.layout),
		server.WithBuilder(o.builder),
		server.WithValidator(validator),
		server.WithLogger(o.logger),
		server.WithStatic(o.cfg.Server.StaticPrefix, html.AssetsFS()),
		server.WithAgentOptions(
			agents.WithDefaultLimit(o.cfg.Agents.DefaultLimit),
			agents.WithMaxLimit(o.cfg.Agents.MaxLimit),
		),
	}
	if o.observer != nil {
		opts = append(opts, server.WithObserver(o.observer))
	}
	if o.cfg.CSRF.Enabled {
		opts = append(opts, server.WithCSRF(o.cfg.CSRF.FieldName, o.cfg.CSRF.CookieName))
	}
	if o.cfg.Metrics.Enabled {
		opts = append(opts, server.WithMetricsHandler(o.cfg.Metrics.Path, o.metricsHandler()))
	}
	return server.New(o.directory, o.submitter, renderer, opts...)
}

func (o *Orchestrator) metricsHandler() http.Handler {
	if o.metricsRegistry != nil {
		return promhttp.HandlerFor(o.metricsRegistry, promhttp.HandlerOpts{})
	}
	return promhttp.Handler()
}

func (o *Orchestrator) errOr(msg string) error {
	if o.initialiseErr != nil {
		return o.initialiseErr
	}
	return errors.New(msg)
}
