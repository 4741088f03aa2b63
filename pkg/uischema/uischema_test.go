package uischema_test

import (
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/waggy/go-wizard/pkg/model"
	"github.com/waggy/go-wizard/pkg/uischema"
)

func loadStore(t *testing.T, files map[string]string) *uischema.Store {
	t.Helper()
	fsys := fstest.MapFS{}
	for name, body := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(body)}
	}
	store, err := uischema.LoadFS(fsys)
	if err != nil {
		t.Fatalf("load overlays: %v", err)
	}
	return store
}

func pricingStep() model.Step {
	return model.Step{
		ID:         12,
		StepNumber: 2,
		Title:      model.LocalizedText{"en": "Pricing", "ar": "التسعير"},
		Fields: []model.Field{
			{Key: "rate", Type: model.FieldTypeCurrency, Active: true, Label: model.LocalizedText{"en": "Rate", "ar": "السعر"}},
			{Key: "pricing_model", Type: model.FieldTypeRadio, Active: true},
			{Key: "weekend_surcharge", Type: model.FieldTypeSwitch, Active: true},
			{Key: "notes", Type: model.FieldTypeTextarea, Active: true},
		},
	}
}

func TestLoadFS_YAMLAndJSON(t *testing.T) {
	store := loadStore(t, map[string]string{
		"a.yaml":    "steps:\n  \"12\":\n    title: Prices\n",
		"b.json":    `{"steps":{"13":{"fields":{"extras":{"hidden":true}}}}}`,
		"README.md": "ignored",
	})
	if store.Empty() {
		t.Fatal("expected overlays")
	}
	overlay, ok := store.Step(12)
	if !ok || overlay.Source != "a.yaml" {
		t.Fatalf("step 12 overlay missing: %+v", overlay)
	}
	if diff := cmp.Diff(model.LocalizedText{"": "Prices"}, overlay.Title); diff != "" {
		t.Fatalf("title mismatch (-want +got):\n%s", diff)
	}
	extras, ok := store.Step(13)
	if !ok || !extras.Fields["extras"].Hidden {
		t.Fatalf("expected hidden extras: %+v", extras)
	}
}

func TestLoadFS_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"invalid step id": {"a.yaml": "steps:\n  first:\n    title: x\n"},
		"duplicate step":  {"a.yaml": "steps:\n  \"12\": {}\n", "b.yaml": "steps:\n  \"12\": {}\n"},
		"empty file":      {"a.yaml": "  "},
		"unparsable":      {"a.json": "{steps: ["},
	}
	for name, files := range cases {
		t.Run(name, func(t *testing.T) {
			fsys := fstest.MapFS{}
			for file, body := range files {
				fsys[file] = &fstest.MapFile{Data: []byte(body)}
			}
			if _, err := uischema.LoadFS(fsys); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestDecorator_AppliesCopyOrderAndHiding(t *testing.T) {
	store := loadStore(t, map[string]string{"pricing.yaml": `
steps:
  "12":
    title:
      en: Your prices
    fields:
      rate:
        label:
          en: Rate per walk
        css_class: wz-wide
      weekend_surcharge:
        order: 1
      notes:
        hidden: true
`})
	step := pricingStep()
	if err := uischema.NewDecorator(store).Decorate(&step); err != nil {
		t.Fatalf("decorate: %v", err)
	}

	if diff := cmp.Diff(model.LocalizedText{"en": "Your prices", "ar": "التسعير"}, step.Title); diff != "" {
		t.Fatalf("title mismatch (-want +got):\n%s", diff)
	}

	keys := make([]string, 0, len(step.Fields))
	for _, field := range step.Fields {
		keys = append(keys, field.Key)
	}
	if diff := cmp.Diff([]string{"weekend_surcharge", "rate", "pricing_model", "notes"}, keys); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	rate, _ := step.Field("rate")
	if rate.Label["en"] != "Rate per walk" || rate.Label["ar"] != "السعر" {
		t.Fatalf("unexpected label: %#v", rate.Label)
	}
	if rate.Metadata[uischema.MetadataCSSClass] != "wz-wide" {
		t.Fatalf("expected css class, got %#v", rate.Metadata)
	}
	notes, _ := step.Field("notes")
	if notes.Active {
		t.Fatal("expected notes to be deactivated")
	}
}

func TestDecorator_CopiesIcon(t *testing.T) {
	store := loadStore(t, map[string]string{"icons.yaml": `
steps:
  "12":
    fields:
      rate:
        icon: '  <svg><circle cx="1" cy="1" r="1"/></svg>  '
`})
	step := pricingStep()
	if err := uischema.NewDecorator(store).Decorate(&step); err != nil {
		t.Fatalf("decorate: %v", err)
	}
	rate, _ := step.Field("rate")
	if got := rate.Metadata[uischema.MetadataIcon]; got != `<svg><circle cx="1" cy="1" r="1"/></svg>` {
		t.Fatalf("unexpected icon %q", got)
	}
	pricing, _ := step.Field("pricing_model")
	if pricing.Metadata != nil {
		t.Fatalf("untouched field gained metadata: %#v", pricing.Metadata)
	}
}

func TestDecorator_UnknownStepIsUntouched(t *testing.T) {
	store := loadStore(t, map[string]string{"a.yaml": "steps:\n  \"99\":\n    title: Other\n"})
	step := pricingStep()
	want := pricingStep()
	if err := uischema.NewDecorator(store).Decorate(&step); err != nil {
		t.Fatalf("decorate: %v", err)
	}
	if diff := cmp.Diff(want, step); diff != "" {
		t.Fatalf("step changed (-want +got):\n%s", diff)
	}
}

func TestEmbeddedFS_LoadsDemoOverlays(t *testing.T) {
	store, err := uischema.LoadFS(uischema.EmbeddedFS())
	if err != nil {
		t.Fatalf("load embedded: %v", err)
	}
	for _, id := range []int64{11, 12, 13} {
		if _, ok := store.Step(id); !ok {
			t.Fatalf("expected overlay for step %d", id)
		}
	}
}
