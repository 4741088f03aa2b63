package validation_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/waggy/go-wizard/pkg/model"
	"github.com/waggy/go-wizard/pkg/validation"
	"github.com/waggy/go-wizard/pkg/visibility"
)

func ptrFloat(v float64) *float64 { return &v }
func ptrInt(v int) *int           { return &v }
func ptrString(v string) *string  { return &v }

func TestValidate_RequiredMissing(t *testing.T) {
	fields := []model.Field{{Key: "a", Required: true, Active: true}}
	got := validation.Validate(fields, model.Values{})
	if diff := cmp.Diff(validation.Errors{"a": validation.CodeRequired}, got); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_HiddenFieldsAreSkipped(t *testing.T) {
	step := model.Step{Fields: []model.Field{
		{Key: "a", Active: true},
		{Key: "b", Active: true, Required: true, DependsOnField: "a", DependsOnValue: ptrString("yes")},
	}}
	values := model.Values{"a": "no"}

	got := validation.Validate(visibility.VisibleFields(step, values), values)
	if len(got) != 0 {
		t.Fatalf("expected no errors for hidden field, got %v", got)
	}
}

func TestValidate_EmptyDefinition(t *testing.T) {
	cases := []struct {
		name    string
		field   model.Field
		values  model.Values
		wantErr bool
	}{
		{"missing", model.Field{Key: "f", Type: model.FieldTypeText}, model.Values{}, true},
		{"nil", model.Field{Key: "f", Type: model.FieldTypeText}, model.Values{"f": nil}, true},
		{"empty string", model.Field{Key: "f", Type: model.FieldTypeText}, model.Values{"f": ""}, true},
		{"whitespace", model.Field{Key: "f", Type: model.FieldTypeText}, model.Values{"f": " "}, false},
		{"empty multiselect", model.Field{Key: "f", Type: model.FieldTypeMultiselect}, model.Values{"f": []any{}}, true},
		{"empty string slice", model.Field{Key: "f", Type: model.FieldTypeMultiselect}, model.Values{"f": []string{}}, true},
		{"filled multiselect", model.Field{Key: "f", Type: model.FieldTypeMultiselect}, model.Values{"f": []any{"x"}}, false},
		{"zero number", model.Field{Key: "f", Type: model.FieldTypeNumber}, model.Values{"f": float64(0)}, false},
		{"false switch", model.Field{Key: "f", Type: model.FieldTypeSwitch}, model.Values{"f": false}, false},
		{"false checkbox", model.Field{Key: "f", Type: model.FieldTypeCheckbox}, model.Values{"f": false}, true},
		{"string true checkbox", model.Field{Key: "f", Type: model.FieldTypeCheckbox}, model.Values{"f": "true"}, true},
		{"checked checkbox", model.Field{Key: "f", Type: model.FieldTypeCheckbox}, model.Values{"f": true}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.field.Required = true
			got := validation.Validate([]model.Field{tc.field}, tc.values)
			if got.Has("f") != tc.wantErr {
				t.Fatalf("expected error=%v, got %v", tc.wantErr, got)
			}
			if tc.wantErr && got["f"] != validation.CodeRequired {
				t.Fatalf("expected required code, got %q", got["f"])
			}
		})
	}
}

func TestValidate_NumericTypeRegardlessOfRequired(t *testing.T) {
	fields := []model.Field{
		{Key: "rate", Type: model.FieldTypeCurrency},
		{Key: "walks", Type: model.FieldTypeSlider},
		{Key: "count", Type: model.FieldTypeNumber},
		{Key: "json", Type: model.FieldTypeNumber},
		{Key: "blank", Type: model.FieldTypeNumber},
		{Key: "cleared", Type: model.FieldTypeNumber},
		{Key: "unset", Type: model.FieldTypeSlider},
	}
	values := model.Values{
		"rate":    "12.5",
		"walks":   float64(3),
		"count":   4,
		"json":    json.Number("7"),
		"blank":   nil,
		"cleared": "",
	}
	got := validation.Validate(fields, values)
	if diff := cmp.Diff(validation.Errors{"rate": validation.CodeNumber}, got); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_ConstraintsAreOptIn(t *testing.T) {
	fields := []model.Field{
		{Key: "rate", Type: model.FieldTypeNumber, MinValue: ptrFloat(10), MaxValue: ptrFloat(100)},
		{Key: "bio", Type: model.FieldTypeTextarea, MinLength: ptrInt(5), MaxLength: ptrInt(10)},
		{Key: "code", Type: model.FieldTypeText, Pattern: `^[A-Z]{3}$`},
		{Key: "mail", Type: model.FieldTypeEmail},
		{Key: "site", Type: model.FieldTypeURL},
		{Key: "ok", Type: model.FieldTypeNumber, MinValue: ptrFloat(0)},
		{Key: "unset", Type: model.FieldTypeText, MinLength: ptrInt(3)},
	}
	values := model.Values{
		"rate": float64(5),
		"bio":  "hi",
		"code": "abc",
		"mail": "not-an-email",
		"site": "nowhere",
		"ok":   float64(0),
	}

	if got := validation.Validate(fields, values); len(got) != 0 {
		t.Fatalf("default validator must ignore constraints, got %v", got)
	}

	got := validation.New(validation.WithConstraints()).Validate(fields, values)
	want := validation.Errors{
		"rate": validation.CodeMinValue,
		"bio":  validation.CodeMinLength,
		"code": validation.CodePattern,
		"mail": validation.CodeEmail,
		"site": validation.CodeURL,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	values = model.Values{"rate": float64(500), "bio": "far too long", "code": "ABC", "mail": "sam@waggy.io", "site": "https://waggy.io"}
	got = validation.New(validation.WithConstraints()).Validate(fields, values)
	want = validation.Errors{"rate": validation.CodeMaxValue, "bio": validation.CodeMaxLength}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestErrors_KeysSorted(t *testing.T) {
	errs := validation.Errors{"b": "required", "a": "number"}
	if diff := cmp.Diff([]string{"a", "b"}, errs.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}
