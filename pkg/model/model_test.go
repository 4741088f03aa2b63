package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/waggy/go-wizard/pkg/model"
)

func TestLocalizedText_DecodesStringAndMap(t *testing.T) {
	var payload struct {
		Plain    model.LocalizedText `json:"plain"`
		Locales  model.LocalizedText `json:"locales"`
		Missing  model.LocalizedText `json:"missing"`
		Explicit model.LocalizedText `json:"explicit"`
	}
	raw := `{"plain":"Walks","locales":{"en":"Walks","ar":"نزهات"},"explicit":null}`
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got := payload.Plain.Resolve("ar", "en"); got != "Walks" {
		t.Fatalf("plain resolve: got %q", got)
	}
	if got := payload.Locales.Resolve("ar", "en"); got != "نزهات" {
		t.Fatalf("locale resolve: got %q", got)
	}
	if got := payload.Locales.Resolve("fr", "en"); got != "Walks" {
		t.Fatalf("fallback resolve: got %q", got)
	}
	if got := payload.Locales.Resolve("ar-EG", ""); got != "نزهات" {
		t.Fatalf("base locale resolve: got %q", got)
	}
	if payload.Missing != nil || payload.Explicit != nil {
		t.Fatalf("expected nil text for missing/null entries")
	}
}

func TestLocalizedText_DecodesYAML(t *testing.T) {
	var payload struct {
		Title model.LocalizedText `yaml:"title"`
		Label model.LocalizedText `yaml:"label"`
	}
	raw := "title: Pricing\nlabel:\n  en: Rate\n  ar: السعر\n"
	if err := yaml.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(model.LocalizedText{"": "Pricing"}, payload.Title); diff != "" {
		t.Fatalf("title mismatch (-want +got):\n%s", diff)
	}
	if got := payload.Label.Resolve("en", ""); got != "Rate" {
		t.Fatalf("label resolve: got %q", got)
	}
}

func TestWithDefaults_OverlaysOnlyMissingKeys(t *testing.T) {
	step := model.Step{
		Fields: []model.Field{
			{Key: "size", DefaultValue: "medium"},
			{Key: "walks", DefaultValue: float64(2)},
			{Key: "notes"},
			{Key: "extras", DefaultValue: []any{"brush"}},
		},
	}
	saved := model.Values{"size": "large", "walks": nil}

	got := model.WithDefaults(step, saved)
	want := model.Values{"size": "large", "walks": nil, "extras": []any{"brush"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}

	got["extras"].([]any)[0] = "mutated"
	if step.Fields[3].DefaultValue.([]any)[0] != "brush" {
		t.Fatalf("defaults must be copied, not aliased")
	}
	if _, ok := saved["extras"]; ok {
		t.Fatalf("saved values must not be mutated")
	}
}

func TestValidateStep_ReportsDescriptorIssues(t *testing.T) {
	step := model.Step{
		StepNumber: 2,
		Fields: []model.Field{
			{Key: "a"},
			{Key: "a"},
			{Key: "b", DependsOnField: "missing"},
			{Key: "c", DependsOnField: "c"},
			{Key: "d", Pattern: "("},
			{Key: ""},
		},
	}

	err := model.ValidateStep(step)
	var schemaErr *model.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}

	var fields []string
	for _, issue := range schemaErr.Issues {
		fields = append(fields, issue.Field)
	}
	want := []string{"", "a", "b", "c", "d"}
	if diff := cmp.Diff(want, sortedCopy(fields)); diff != "" {
		t.Fatalf("issue fields mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateWizard_RejectsEmptyAndDuplicateSteps(t *testing.T) {
	if err := model.ValidateWizard(model.Wizard{}); !model.IsNoSteps(err) {
		t.Fatalf("expected no-steps error, got %v", err)
	}

	wizard := model.Wizard{Steps: []model.Step{{ID: 1, StepNumber: 1}, {ID: 2, StepNumber: 1}, {ID: 3}}}
	var schemaErr *model.SchemaError
	if err := model.ValidateWizard(wizard); !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if len(schemaErr.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %d: %v", len(schemaErr.Issues), schemaErr)
	}
}

func TestBuilder_NormalisesDefinition(t *testing.T) {
	builder := model.NewBuilder()
	wizard := model.Wizard{
		Steps: []model.Step{
			{ID: 20, StepNumber: 2, Fields: []model.Field{{Key: " pet_size ", Type: "SELECT", Options: []model.Option{{Value: "small"}}}}},
			{ID: 10, StepNumber: 1, Fields: []model.Field{{Key: "nightlyRate", Label: model.Text("Rate")}}},
		},
	}

	got, err := builder.BuildWizard(wizard)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got.Steps[0].ID != 10 || got.Steps[1].ID != 20 {
		t.Fatalf("steps not ordered by number: %+v", got.Steps)
	}

	first := got.Steps[0].Fields[0]
	if first.Type != model.FieldTypeText {
		t.Fatalf("expected empty type to default to text, got %q", first.Type)
	}
	if first.Label.Resolve("en", "") != "Rate" {
		t.Fatalf("explicit label must be preserved")
	}

	second := got.Steps[1].Fields[0]
	if second.Key != "pet_size" || second.Type != model.FieldTypeSelect {
		t.Fatalf("unexpected normalised field: %+v", second)
	}
	if second.Label.Resolve("en", "") != "Pet Size" {
		t.Fatalf("expected derived label, got %q", second.Label.Resolve("en", ""))
	}
	if second.Options[0].Label.Resolve("en", "") != "small" {
		t.Fatalf("expected option label to default to its value")
	}
	if wizard.Steps[0].Fields[0].Key != " pet_size " {
		t.Fatalf("input definition must not be mutated")
	}
}

func TestBuilder_StrictAndLenient(t *testing.T) {
	broken := model.Wizard{Steps: []model.Step{{ID: 1, StepNumber: 1, Fields: []model.Field{{Key: "x", DependsOnField: "y"}}}}}

	if _, err := model.NewBuilder().BuildWizard(broken); err == nil {
		t.Fatalf("strict builder should reject dangling dependency")
	}
	if _, err := model.NewBuilder(model.WithLenientSchema()).BuildWizard(broken); err != nil {
		t.Fatalf("lenient builder should accept: %v", err)
	}
	if _, err := model.NewBuilder(model.WithLenientSchema()).BuildWizard(model.Wizard{}); !model.IsNoSteps(err) {
		t.Fatalf("lenient builder must still reject empty wizard, got %v", err)
	}
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func TestDefaultLabeler(t *testing.T) {
	cases := map[string]string{
		"":                "",
		"pet_size":        "Pet Size",
		"service_area_id": "Service Area ID",
		"maxWalkMinutes":  "Max Walk Minutes",
		"serviceURLPath":  "Service URL Path",
		"walks-per-week2": "Walks Per Week 2",
		"élan_vital":      "Élan Vital",
		"حجم_الحيوان":     "حجم الحيوان",
	}
	for key, want := range cases {
		if got := model.DefaultLabeler(key); got != want {
			t.Fatalf("DefaultLabeler(%q): got %q want %q", key, got, want)
		}
	}
}
