package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-assetform/pkg/form"
	"github.com/goliatone/go-assetform/pkg/render"
	"github.com/goliatone/go-assetform/pkg/validation"
)

// Renderer walks the asset form in the terminal: every layout field, then the
// reporter list, then a confirmation.
type Renderer struct {
	driver      PromptDriver
	infoPrefix  string
	errorPrefix string
	confirm     bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a terminal renderer backed by survey unless a driver is
// supplied.
func New(options ...Option) *Renderer {
	r := &Renderer{
		errorPrefix: "! ",
		confirm:     true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the format Render produces.
func (r *Renderer) ContentType() string {
	return "application/json"
}

// Render prompts for the form seeded from view and returns the collected
// snapshot as JSON, in the same shape POST /api/assets accepts.
func (r *Renderer) Render(ctx context.Context, view render.View, opts render.RenderOptions) ([]byte, error) {
	state := form.NewState(form.WithValues(view.Values), form.WithAgents(view.Agents))
	if len(view.Reporters) > 0 {
		state.RestoreReporters(view.Reporters)
	}
	if err := r.Fill(ctx, state, view.Layout, opts.Errors); err != nil {
		return nil, err
	}
	out, err := json.Marshal(state.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("tui: encode snapshot: %w", err)
	}
	return out, nil
}

// Fill prompts for every field in layout and then for reporters, writing the
// answers into state as they are given. errs shows earlier validation
// feedback next to the matching prompts.
func (r *Renderer) Fill(ctx context.Context, state *form.State, layout form.Layout, errs map[string][]string) error {
	if ctx == nil {
		return errors.New("tui: context is required")
	}
	if r.driver == nil {
		return errNoDriver
	}
	if state == nil {
		return errors.New("tui: state is required")
	}

	if layout.Legend != "" {
		if err := r.info(ctx, layout.Legend); err != nil {
			return err
		}
	}
	for _, field := range layout.Fields() {
		if err := r.showErrors(ctx, errs[field.Name]); err != nil {
			return err
		}
		if err := r.promptField(ctx, state, field); err != nil {
			return err
		}
	}

	if err := r.showErrors(ctx, errs[render.ReportersField]); err != nil {
		return err
	}
	if err := r.promptReporters(ctx, state); err != nil {
		return err
	}

	if !r.confirm {
		return nil
	}
	ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Submit asset?", Default: true})
	if err != nil {
		return err
	}
	if !ok {
		return ErrAborted
	}
	return nil
}

func (r *Renderer) promptField(ctx context.Context, state *form.State, field form.Field) error {
	current := state.String(field.Name)
	set := state.Setter(field.Name)

	if field.Kind == form.InputTextArea {
		value, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: label(field),
			Default: current,
			Help:    plainHelp(field.Help),
		})
		if err != nil {
			return err
		}
		set(strings.TrimSpace(value))
		return nil
	}

	value, err := r.driver.Input(ctx, InputConfig{
		Message:   label(field),
		Default:   current,
		Help:      plainHelp(field.Help),
		Validator: validator(field),
	})
	if err != nil {
		return err
	}
	set(strings.TrimSpace(value))
	return nil
}

func (r *Renderer) promptReporters(ctx context.Context, state *form.State) error {
	agentsList := state.Agents()
	names := make([]string, 0, len(agentsList))
	for _, agent := range agentsList {
		names = append(names, agent.Name)
	}

	options := form.AuthorizableProperties()
	labels := make([]string, len(options))
	for i, opt := range options {
		labels[i] = opt.Label
	}

	for {
		rows := state.Reporters()
		last := len(rows) - 1
		if last < 0 || rows[last].Resolved() {
			state.NormalizeReporters()
			continue
		}

		input, err := r.driver.Input(ctx, InputConfig{
			Message: fmt.Sprintf("Reporter %d (name or key, blank to finish)", last+1),
			Suggest: suggester(names),
		})
		if err != nil {
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			return nil
		}

		if err := state.SetReporterInput(last, input); err != nil {
			return err
		}
		row := state.Reporters()[last]
		if !row.Resolved() {
			if err := r.info(ctx, r.errorPrefix+fmt.Sprintf("no agent matches %q", input)); err != nil {
				return err
			}
			if err := state.SetReporterInput(last, ""); err != nil {
				return err
			}
			continue
		}

		picked, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message: "Authorize properties for " + input,
			Options: labels,
		})
		if err != nil {
			return err
		}
		props := make([]string, 0, len(picked))
		for _, idx := range picked {
			if idx >= 0 && idx < len(options) {
				props = append(props, options[idx].Value)
			}
		}
		if err := state.SetReporterProperties(last, props); err != nil {
			return err
		}
		if err := state.UpdateReporterRow(last); err != nil {
			return err
		}
	}
}

func (r *Renderer) showErrors(ctx context.Context, messages []string) error {
	for _, msg := range messages {
		if err := r.info(ctx, r.errorPrefix+msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.infoPrefix+msg)
}

func label(field form.Field) string {
	if field.Required {
		return field.Label + " *"
	}
	return field.Label
}

func suggester(names []string) func(string) []string {
	return func(toComplete string) []string {
		prefix := strings.ToLower(toComplete)
		var out []string
		for _, name := range names {
			if strings.HasPrefix(strings.ToLower(name), prefix) {
				out = append(out, name)
			}
		}
		return out
	}
}

func validator(field form.Field) func(string) error {
	return func(raw string) error {
		return validation.CheckValue(field, raw)
	}
}

var stripTags = bluemonday.StrictPolicy()

// plainHelp drops markup from configured help text for terminal display.
func plainHelp(help string) string {
	if strings.TrimSpace(help) == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(stripTags.Sanitize(help)))
}
