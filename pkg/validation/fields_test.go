package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-assetform/pkg/form"
)

func TestCheckValue(t *testing.T) {
	quantity := form.Field{Name: "quantity", Label: "Quantity", Kind: form.InputNumber, Step: "1", Min: "0"}
	latitude := form.Field{Name: "latitude", Label: "Latitude", Kind: form.InputNumber, Step: "any", Min: "-90", Max: "90"}
	date := form.Field{Name: "actionDate", Label: "Action Date", Kind: form.InputDate}
	serial := form.Field{Name: "serialNumber", Label: "Tracking Number", Kind: form.InputText, Required: true}

	cases := []struct {
		name  string
		field form.Field
		raw   string
		want  string
	}{
		{name: "required missing", field: serial, raw: "  ", want: "Tracking Number is required"},
		{name: "required present", field: serial, raw: "SN1"},
		{name: "optional blank", field: quantity, raw: ""},
		{name: "not a number", field: quantity, raw: "ten", want: "Quantity must be a number"},
		{name: "below min", field: quantity, raw: "-1", want: "Quantity must be at least 0"},
		{name: "fractional step", field: quantity, raw: "1.5", want: "Quantity must be a whole number"},
		{name: "above max", field: latitude, raw: "90.5", want: "Latitude must be at most 90"},
		{name: "fraction allowed", field: latitude, raw: "-45.25"},
		{name: "bad date", field: date, raw: "19/10/2026", want: "Action Date must be a date (YYYY-MM-DD)"},
		{name: "good date", field: date, raw: "2026-10-19"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckValue(tc.field, tc.raw)
			got := ""
			if err != nil {
				got = err.Error()
			}
			if got != tc.want {
				t.Fatalf("CheckValue(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestCheck_LayoutOrderAndGrouping(t *testing.T) {
	state := form.NewState(form.WithValues(map[string]any{
		form.FieldType:     "pallet",
		form.FieldQuantity: "2.5",
	}))
	result := Check(form.DefaultLayout(), state)
	if result.Valid {
		t.Fatalf("expected invalid result")
	}

	fields := make([]string, 0, len(result.Issues))
	for _, issue := range result.Issues {
		fields = append(fields, issue.Field)
	}
	want := []string{form.FieldSerialNumber, form.FieldSupplier, form.FieldQuantity}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Fatalf("issue order mismatch (-want +got):\n%s", diff)
	}
	if got := result.FieldErrors()[form.FieldQuantity]; len(got) != 1 {
		t.Fatalf("expected one quantity message, got %#v", got)
	}

	valid := Check(form.DefaultLayout(), form.NewState(form.WithValues(map[string]any{
		form.FieldSerialNumber: "SN1",
		form.FieldType:         "pallet",
		form.FieldSupplier:     "Acme",
	})))
	if !valid.Valid || valid.FieldErrors() != nil {
		t.Fatalf("expected valid result, got %#v", valid)
	}
}
