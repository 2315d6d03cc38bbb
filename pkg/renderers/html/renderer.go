package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-assetform/pkg/form"
	"github.com/goliatone/go-assetform/pkg/render"
	rendertemplate "github.com/goliatone/go-assetform/pkg/render/template"
	"github.com/goliatone/go-assetform/pkg/render/template/gotemplate"
)

const defaultTemplate = "templates/form.tpl"

// StylesheetAsset is the theme asset key for the form stylesheet.
const StylesheetAsset = "assetform.stylesheet"

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS fs.FS
	templates  rendertemplate.TemplateRenderer
	selector   theme.ThemeSelector
	themeName  string
	variant    string
	stylesheet string
}

// WithTemplatesFS supplies an alternate template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template engine.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templates = renderer
		}
	}
}

// WithThemeSelector resolves the named theme on every render unless the
// request options already carry a theme.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(cfg *config) {
		cfg.selector = selector
		cfg.themeName = name
		cfg.variant = variant
	}
}

// WithStylesheet sets the stylesheet URL used when the theme does not provide
// one.
func WithStylesheet(url string) Option {
	return func(cfg *config) {
		cfg.stylesheet = strings.TrimSpace(url)
	}
}

// Renderer draws the asset form as HTML.
type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	selector   theme.ThemeSelector
	themeName  string
	variant    string
	stylesheet string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	engine := cfg.templates
	if engine == nil {
		e, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		engine = e
	}

	return &Renderer{
		templates:  engine,
		selector:   cfg.selector,
		themeName:  cfg.themeName,
		variant:    cfg.variant,
		stylesheet: cfg.stylesheet,
	}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render draws view with the request options.
func (r *Renderer) Render(_ context.Context, view render.View, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}

	themeCfg := opts.Theme
	if themeCfg == nil && r.selector != nil {
		selection, err := r.selector.Select(r.themeName, r.variant)
		if err != nil {
			return nil, fmt.Errorf("html renderer: select theme: %w", err)
		}
		if selection != nil {
			themeCfg = ConfigFromManifest(selection.Manifest, selection.Variant)
		}
	}

	tmpl := defaultTemplate
	if themeCfg != nil {
		if partial := strings.TrimSpace(themeCfg.Partials[FormPartial]); partial != "" {
			tmpl = partial
		}
	}

	out, err := r.templates.RenderTemplate(tmpl, templateData(view, opts, themeCfg, r.stylesheet))
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(out), nil
}

func templateData(view render.View, opts render.RenderOptions, themeCfg *theme.RendererConfig, stylesheet string) map[string]any {
	method := strings.ToLower(strings.TrimSpace(opts.Method))
	if method == "" {
		method = "post"
	}

	sections := make([]map[string]any, 0, len(view.Layout.Sections))
	for _, section := range view.Layout.Sections {
		rows := make([]map[string]any, 0, len(section.Rows))
		for _, row := range section.Rows {
			fields := make([]map[string]any, 0, len(row.Fields))
			for _, field := range row.Fields {
				fields = append(fields, fieldData(field, view.Value(field.Name), opts.Errors[field.Name]))
			}
			rows = append(rows, map[string]any{"fields": fields})
		}
		sections = append(sections, map[string]any{"title": section.Title, "rows": rows})
	}

	reporters := make([]map[string]any, 0, len(view.Reporters))
	for i, row := range view.Reporters {
		selected := make(map[string]bool, len(row.Properties))
		for _, p := range row.Properties {
			selected[p] = true
		}
		props := make([]map[string]any, 0, len(view.Properties))
		for _, option := range view.Properties {
			props = append(props, map[string]any{
				"value":   option.Value,
				"label":   option.Label,
				"checked": selected[option.Value],
			})
		}
		reporters = append(reporters, map[string]any{
			"index":      strconv.Itoa(i),
			"path":       "reporters." + strconv.Itoa(i) + ".input",
			"id":         row.ID,
			"input":      row.Input,
			"key":        row.Key,
			"sentinel":   i == len(view.Reporters)-1 && !row.Resolved(),
			"properties": props,
		})
	}

	agentList := make([]map[string]any, 0, len(view.Agents))
	for _, agent := range view.Agents {
		agentList = append(agentList, map[string]any{"name": agent.Name, "key": agent.Key})
	}

	hidden := make([]map[string]any, 0, len(opts.HiddenFields))
	for _, field := range render.SortedHiddenFields(opts.HiddenFields) {
		hidden = append(hidden, map[string]any{"name": field.Name, "value": field.Value})
	}

	themeData := map[string]any{"stylesheet": stylesheet}
	if themeCfg != nil {
		themeData["name"] = themeCfg.Theme
		themeData["variant"] = themeCfg.Variant
		themeData["style"] = cssVarsStyle(themeCfg.CSSVars)
		if themeCfg.AssetURL != nil {
			if url := themeCfg.AssetURL(StylesheetAsset); url != "" {
				themeData["stylesheet"] = url
			}
		}
	}

	return map[string]any{
		"form": map[string]any{
			"legend":     view.Layout.Legend,
			"action":     opts.Action,
			"method":     method,
			"submitting": opts.Submitting,
			"errors":     render.MergeFormErrors(opts.FormErrors),
		},
		"sections":       sections,
		"reporters":      reporters,
		"reporterErrors": opts.Errors[render.ReportersField],
		"agents":         agentList,
		"hidden":         hidden,
		"theme":          themeData,
	}
}

func fieldData(field form.Field, value string, errs []string) map[string]any {
	return map[string]any{
		"name":     field.Name,
		"label":    field.Label,
		"kind":     string(field.Kind),
		"required": field.Required,
		"step":     field.Step,
		"min":      field.Min,
		"max":      field.Max,
		"help":     sanitizeHelp(field.Help),
		"value":    value,
		"errors":   errs,
	}
}
