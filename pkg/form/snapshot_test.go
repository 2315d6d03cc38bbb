package form

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSnapshot_JSONRoundTripKeepsNumbersAndResolvedRows(t *testing.T) {
	s := newTestState()
	s.Set(FieldSerialNumber, "LOT1")
	s.Set(FieldWeight, 12)
	_ = s.SetReporterInput(0, "Alice")
	_ = s.SetReporterProperties(0, []string{"weight"})
	_ = s.UpdateReporterRow(0)

	raw, err := json.Marshal(s.Snapshot())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	wantValues := map[string]any{
		FieldSerialNumber: "LOT1",
		FieldWeight:       json.Number("12"),
	}
	if diff := cmp.Diff(wantValues, snap.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if len(snap.Reporters) != 1 || snap.Reporters[0].Key != "K1" {
		t.Fatalf("expected only the resolved row, got %#v", snap.Reporters)
	}
}

func TestSnapshot_RejectsNestedValues(t *testing.T) {
	var snap Snapshot
	if err := json.Unmarshal([]byte(`{"type":{"nested":true}}`), &snap); err == nil {
		t.Fatalf("expected error for nested value")
	}
}

func TestState_RestoreNormalisesRows(t *testing.T) {
	s := newTestState()
	s.Set(FieldLot, "stale")

	s.Restore(Snapshot{
		Values:    map[string]any{FieldType: "goat"},
		Reporters: []ReporterEntry{{Key: "K2", Properties: []string{"shock"}}},
	})

	if _, ok := s.Value(FieldLot); ok {
		t.Fatalf("expected previous values cleared")
	}
	rows := s.Reporters()
	if diff := cmp.Diff([]string{"K2", ""}, keys(rows)); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if rows[0].Input != "K2" {
		t.Fatalf("expected input backfilled from key, got %q", rows[0].Input)
	}
}

func TestLayout_WithOverrides(t *testing.T) {
	base := DefaultLayout()
	layout := base.WithOverrides("Register Crate", map[string]string{FieldSerialNumber: "Crate ID"}, map[string]string{FieldWeight: "Gross <em>kg</em>"})

	if layout.Legend != "Register Crate" {
		t.Fatalf("legend not applied: %q", layout.Legend)
	}
	if f, _ := layout.Field(FieldSerialNumber); f.Label != "Crate ID" {
		t.Fatalf("label not applied: %#v", f)
	}
	if f, _ := layout.Field(FieldWeight); f.Help != "Gross <em>kg</em>" {
		t.Fatalf("help not applied: %#v", f)
	}
	if f, _ := base.Field(FieldSerialNumber); f.Label != "Tracking Number" {
		t.Fatalf("base layout mutated: %#v", f)
	}
}
