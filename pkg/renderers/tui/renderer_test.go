package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-assetform/pkg/agents"
	"github.com/goliatone/go-assetform/pkg/form"
	"github.com/goliatone/go-assetform/pkg/render"
)

type stubDriver struct {
	inputs     []string
	multiIdx   [][]int
	confirm    []bool
	textAreas  []string
	infos      []string
	prompts    []string
	inputPos   int
	multiPos   int
	confirmPos int
	textPos    int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted for " + cfg.Message)
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	if cfg.Validator != nil {
		if err := cfg.Validator(val); err != nil {
			return "", err
		}
	}
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infos = append(s.infos, msg)
	return nil
}

func smallLayout() form.Layout {
	return form.Layout{
		Legend: "Track New Asset",
		Sections: []form.Section{{Rows: []form.Row{
			{Fields: []form.Field{{Name: form.FieldSerialNumber, Label: "Tracking Number", Kind: form.InputText, Required: true}}},
			{Fields: []form.Field{{Name: form.FieldType, Label: "Type", Kind: form.InputText, Required: true}}},
			{Fields: []form.Field{{Name: form.FieldLatitude, Label: "Latitude", Kind: form.InputNumber, Min: "-90", Max: "90"}}},
			{Fields: []form.Field{{Name: form.FieldDescription, Label: "Description", Kind: form.InputTextArea}}},
		}}},
	}
}

func TestFill_FieldsAndReporters(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"LOT1", "chicken", " 45 ", "Nobody", "Alice", ""},
		textAreas: []string{"  free range  "},
		multiIdx:  [][]int{{0, 1}},
		confirm:   []bool{true},
	}
	state := form.NewState(form.WithAgents([]agents.Agent{{Name: "Alice", Key: "K1"}}))

	r := New(WithPromptDriver(driver))
	if err := r.Fill(context.Background(), state, smallLayout(), nil); err != nil {
		t.Fatalf("fill: %v", err)
	}

	wantValues := map[string]any{
		form.FieldSerialNumber: "LOT1",
		form.FieldType:         "chicken",
		form.FieldLatitude:     "45",
		form.FieldDescription:  "free range",
	}
	if diff := cmp.Diff(wantValues, state.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}

	resolved := state.ResolvedReporters()
	if len(resolved) != 1 || resolved[0].Key != "K1" {
		t.Fatalf("unexpected reporters %#v", resolved)
	}
	if diff := cmp.Diff([]string{"weight", "location"}, resolved[0].Properties); diff != "" {
		t.Fatalf("properties mismatch (-want +got):\n%s", diff)
	}
	rows := state.Reporters()
	if len(rows) != 2 || rows[1].Resolved() || rows[1].Input != "" {
		t.Fatalf("expected trailing empty sentinel, got %#v", rows)
	}

	foundMiss := false
	for _, msg := range driver.infos {
		if strings.Contains(msg, `no agent matches "Nobody"`) {
			foundMiss = true
		}
	}
	if !foundMiss {
		t.Fatalf("expected unmatched reporter notice, got %v", driver.infos)
	}
}

func TestFill_ValidatorRejectsOutOfRange(t *testing.T) {
	driver := &stubDriver{inputs: []string{"LOT1", "chicken", "91"}}
	r := New(WithPromptDriver(driver))

	err := r.Fill(context.Background(), form.NewState(), smallLayout(), nil)
	if err == nil || !strings.Contains(err.Error(), "at most 90") {
		t.Fatalf("expected range error, got %v", err)
	}
}

func TestFill_DeclinedConfirmationAborts(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"LOT1", "chicken", "", ""},
		textAreas: []string{""},
		confirm:   []bool{false},
	}
	r := New(WithPromptDriver(driver))
	if err := r.Fill(context.Background(), form.NewState(), smallLayout(), nil); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestRender_ShowsErrorsAndReturnsSnapshot(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"LOT2", "goat", "", ""},
		textAreas: []string{""},
	}
	r := New(WithPromptDriver(driver), WithConfirm(false))

	view := render.View{Layout: smallLayout(), Values: map[string]any{form.FieldType: "sheep"}}
	out, err := r.Render(context.Background(), view, render.RenderOptions{
		Errors: map[string][]string{form.FieldType: {"Type is required"}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got[form.FieldSerialNumber] != "LOT2" || got[form.FieldType] != "goat" {
		t.Fatalf("unexpected snapshot %v", got)
	}
	if reporters, _ := got["reporters"].([]any); len(reporters) != 0 {
		t.Fatalf("expected no reporters, got %v", got["reporters"])
	}
	if diff := cmp.Diff([]string{"Track New Asset", "! Type is required"}, driver.infos); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestPlainHelp(t *testing.T) {
	if got := plainHelp("Gross <em>kg</em> &amp; crate"); got != "Gross kg & crate" {
		t.Fatalf("unexpected help %q", got)
	}
}
