package html_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"

	"github.com/waggy/go-wizard/pkg/model"
	"github.com/waggy/go-wizard/pkg/render"
	"github.com/waggy/go-wizard/pkg/renderers/html"
	"github.com/waggy/go-wizard/pkg/wizard"
)

func ptr[T any](v T) *T { return &v }

func pricingStep() model.Step {
	return model.Step{
		ID:         12,
		StepNumber: 2,
		Title:      model.LocalizedText{"en": "Pricing", "ar": "التسعير"},
		Fields: []model.Field{
			{Key: "rate", Type: model.FieldTypeCurrency, Label: model.LocalizedText{"en": "Rate", "ar": "السعر"}, Required: true, Active: true, MinValue: ptr(0.0)},
			{Key: "pricing_model", Type: model.FieldTypeRadio, Label: model.Text("Model"), Active: true, Options: []model.Option{
				{Value: "per_walk", Label: model.LocalizedText{"en": "Per walk", "ar": "لكل نزهة"}},
				{Value: "monthly", Label: model.Text("Monthly")},
			}},
			{Key: "weekend", Type: model.FieldTypeSwitch, Label: model.Text("Weekend"), Active: true},
			{Key: "extras", Type: model.FieldTypeMultiselect, Label: model.Text("Extras"), Active: true, Options: []model.Option{
				{Value: "brush", Label: model.Text("Brush")},
				{Value: "photos", Label: model.Text("Photos")},
			}},
			{Key: "bio", Type: model.FieldTypeHTML, Label: model.Text("Bio"), Active: true, HelpText: model.Text("Use <b>bold</b><script>x()</script>")},
			{Key: "meta", Type: model.FieldTypeJSON, Label: model.Text("Meta"), Active: true},
			{Key: "hidden", Type: model.FieldTypeText, Label: model.Text("Hidden"), Active: false},
		},
	}
}

func newRenderer(t *testing.T, opts ...html.Option) *html.Renderer {
	t.Helper()
	r, err := html.New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func TestRenderField_LabelMarkerErrorAndOptions(t *testing.T) {
	r := newRenderer(t)
	step := pricingStep()

	out, err := r.RenderField(render.Props{
		Field:   step.Fields[0],
		Value:   "abc",
		Error:   "number",
		Context: render.Context{Locale: "ar"},
	})
	if err != nil {
		t.Fatalf("render field: %v", err)
	}
	for _, want := range []string{"السعر *", `type="number"`, `min="0"`, `value="abc"`, "يرجى إدخال رقم صالح", `aria-invalid="true"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	out, err = r.RenderField(render.Props{
		Field:   step.Fields[1],
		Value:   "per_walk",
		Context: render.Context{Locale: "ar", FallbackLocale: "en"},
	})
	if err != nil {
		t.Fatalf("render radio: %v", err)
	}
	if !strings.Contains(out, "لكل نزهة") || !strings.Contains(out, `value="per_walk" checked`) {
		t.Fatalf("radio options not localized or selected:\n%s", out)
	}
	if !strings.Contains(out, "<legend") {
		t.Fatalf("radio group should render inside a fieldset:\n%s", out)
	}
}

func TestRenderField_SanitisesHelpAndRichText(t *testing.T) {
	r := newRenderer(t)
	step := pricingStep()

	out, err := r.RenderField(render.Props{
		Field: step.Fields[4],
		Value: `<p onclick="steal()">Hi</p><script>alert(1)</script>`,
	})
	if err != nil {
		t.Fatalf("render field: %v", err)
	}
	if strings.Contains(out, "<script>") || strings.Contains(out, `onclick="`) {
		t.Fatalf("unsanitised markup leaked:\n%s", out)
	}
	if !strings.Contains(out, "<b>bold</b>") {
		t.Fatalf("allowed markup should survive in help text:\n%s", out)
	}
}

func TestRenderField_MetadataClassAndIcon(t *testing.T) {
	r := newRenderer(t)
	field := model.Field{
		Key:    "title",
		Type:   model.FieldTypeText,
		Label:  model.Text("Title"),
		Active: true,
		Metadata: map[string]string{
			html.MetadataCSSClass: "wz-wide",
			html.MetadataIcon:     `<svg onload="x()"><script>alert(1)</script><circle cx="1" cy="1" r="1"></circle></svg>`,
		},
	}
	out, err := r.RenderField(render.Props{Field: field})
	if err != nil {
		t.Fatalf("render field: %v", err)
	}
	if !strings.Contains(out, "wz-field-text wz-wide") {
		t.Fatalf("expected css class on wrapper:\n%s", out)
	}
	if !strings.Contains(out, `<span class="wz-icon"><svg>`) || !strings.Contains(out, "<circle") {
		t.Fatalf("expected sanitised icon:\n%s", out)
	}
	if strings.Contains(out, "onload") || strings.Contains(out, "<script>") {
		t.Fatalf("icon markup leaked scripts:\n%s", out)
	}
}

func TestRenderField_UnknownTypeFallsBackToText(t *testing.T) {
	r := newRenderer(t)
	out, err := r.RenderField(render.Props{Field: model.Field{Key: "legacy", Type: "hologram", Active: true}, Value: "x"})
	if err != nil {
		t.Fatalf("render field: %v", err)
	}
	if !strings.Contains(out, `type="text"`) {
		t.Fatalf("expected text fallback:\n%s", out)
	}
}

func TestRenderField_NoStrategy(t *testing.T) {
	r := newRenderer(t, html.WithRegistry(render.NewRegistry[html.Strategy]()))
	_, err := r.RenderField(render.Props{Field: model.Field{Key: "x", Type: model.FieldTypeText}})
	if !errors.Is(err, render.ErrNoStrategy) {
		t.Fatalf("expected ErrNoStrategy, got %v", err)
	}
}

func TestDecode_TypedValues(t *testing.T) {
	r := newRenderer(t)
	step := pricingStep()
	form := url.Values{
		"rate":          {"12.5"},
		"pricing_model": {"monthly"},
		"weekend":       {"false", "true"},
		"extras":        {"", "photos"},
		"bio":           {`<b>hi</b><script>x</script>`},
		"meta":          {`{"a":1}`},
		"hidden":        {"ignored"},
	}

	got, err := r.Decode(step, model.Values{}, form, render.Context{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := model.Values{
		"rate":          12.5,
		"pricing_model": "monthly",
		"weekend":       true,
		"extras":        []any{"photos"},
		"bio":           "<b>hi</b>",
		"meta":          map[string]any{"a": float64(1)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decoded values mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_EmptyAndUnparsable(t *testing.T) {
	r := newRenderer(t)
	step := pricingStep()
	form := url.Values{
		"rate":    {"twelve"},
		"weekend": {"false"},
		"extras":  {""},
		"meta":    {"{broken"},
	}

	got, err := r.Decode(step, model.Values{}, form, render.Context{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := model.Values{
		"rate":    "twelve",
		"weekend": false,
		"extras":  []any{},
		"meta":    "{broken",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decoded values mismatch (-want +got):\n%s", diff)
	}

	got, err = r.Decode(step, model.Values{}, url.Values{"rate": {""}}, render.Context{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v, ok := got["rate"]; !ok || v != nil {
		t.Fatalf("empty numeric input should decode to nil, got %#v", got)
	}
}

func TestRenderPage_StepAndTheme(t *testing.T) {
	selector := html.NewManifestSelector(html.DefaultManifest())
	r := newRenderer(t, html.WithThemeSelector(selector, "", "dark"))
	step := pricingStep()

	snap := wizard.Snapshot{
		ProviderServiceID: 42,
		Status:            wizard.StatusStepLoaded,
		ServiceType:       model.ServiceType{Name: model.Text("Dog walking")},
		HasStep:           true,
		Step:              step,
		TotalSteps:        3,
		Values:            model.Values{"rate": float64(20)},
		Visible:           step.Fields[:2],
		Errors:            map[string]string{},
		FormErrors:        []string{"Pricing is locked"},
	}

	out, err := r.RenderPage(context.Background(), html.Page{
		Snapshot: snap,
		Context:  render.Context{Locale: "en"},
		Action:   "/wizard/42/",
		Hidden:   []render.HiddenField{render.Hidden("csrf", "tok")},
	})
	if err != nil {
		t.Fatalf("render page: %v", err)
	}
	page := string(out)
	for _, want := range []string{
		`dir="ltr"`,
		"Step 2 of 3",
		`action="/wizard/42/save"`,
		`formaction="/wizard/42/back"`,
		`name="step_id" value="12"`,
		`name="csrf" value="tok"`,
		"Pricing is locked",
		"--wz-surface: #111827;",
		`data-variant="dark"`,
		"/assets/themes/waggy/wizard.css",
		">Next<",
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("expected %q in page:\n%s", want, page)
		}
	}
	if strings.Contains(page, `name="weekend"`) {
		t.Fatalf("only visible fields must be rendered")
	}
}

func TestRenderPage_ArabicLastStepAndError(t *testing.T) {
	r := newRenderer(t)
	step := pricingStep()
	snap := wizard.Snapshot{
		Status:     wizard.StatusError,
		HasStep:    true,
		Step:       step,
		TotalSteps: 2,
		IsLast:     true,
		Visible:    step.Fields[:1],
		Err:        errors.New("backend unavailable"),
	}

	out, err := r.RenderPage(context.Background(), html.Page{Snapshot: snap, Context: render.Context{Locale: "ar-AE"}, Action: "/wizard/1"})
	if err != nil {
		t.Fatalf("render page: %v", err)
	}
	page := string(out)
	for _, want := range []string{`dir="rtl"`, "إنهاء", "backend unavailable", `action="/wizard/1/retry"`, `action="/wizard/1/dismiss"`} {
		if !strings.Contains(page, want) {
			t.Fatalf("expected %q in page:\n%s", want, page)
		}
	}
}

func TestRenderPage_Completed(t *testing.T) {
	r := newRenderer(t)
	out, err := r.RenderPage(context.Background(), html.Page{
		Snapshot: wizard.Snapshot{Status: wizard.StatusCompleted, HasStep: true, Step: pricingStep(), TotalSteps: 2},
		Context:  render.Context{Locale: "en"},
	})
	if err != nil {
		t.Fatalf("render page: %v", err)
	}
	if !strings.Contains(string(out), "All set!") || strings.Contains(string(out), "wz-form") {
		t.Fatalf("expected completion page:\n%s", out)
	}
}

func TestRendererConfig_VariantOverrides(t *testing.T) {
	cfg := html.RendererConfig(&theme.Selection{Theme: "waggy", Variant: "dark", Manifest: html.DefaultManifest()})
	if cfg.Tokens["surface"] != "#111827" || cfg.Tokens["brand"] != "#ff7a45" {
		t.Fatalf("unexpected tokens: %v", cfg.Tokens)
	}
	if cfg.CSSVars["--wz-text"] != "#f9fafb" {
		t.Fatalf("css vars not derived: %v", cfg.CSSVars)
	}
	if got := cfg.AssetURL("missing"); got != "" {
		t.Fatalf("unknown asset should resolve empty, got %q", got)
	}

	if _, err := html.NewManifestSelector().Select("nope", ""); err == nil {
		t.Fatalf("expected error for unknown theme")
	}
}
