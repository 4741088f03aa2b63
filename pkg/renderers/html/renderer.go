package html

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/waggy/go-wizard/pkg/model"
	"github.com/waggy/go-wizard/pkg/render"
	rendertemplate "github.com/waggy/go-wizard/pkg/render/template"
	"github.com/waggy/go-wizard/pkg/render/template/gotemplate"
	"github.com/waggy/go-wizard/pkg/wizard"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	registry         *render.Registry[Strategy]
	policy           *bluemonday.Policy
	selector         theme.ThemeSelector
	themeName        string
	themeVariant     string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
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

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithRegistry replaces the default strategy registry.
func WithRegistry(registry *render.Registry[Strategy]) Option {
	return func(cfg *config) {
		cfg.registry = registry
	}
}

// WithPolicy replaces the sanitisation policy for rich text and help texts.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		cfg.policy = policy
	}
}

// WithThemeSelector resolves page themes through selector. name and variant
// are the defaults used when a page does not ask for one.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(cfg *config) {
		cfg.selector = selector
		cfg.themeName = name
		cfg.themeVariant = variant
	}
}

// Renderer turns controller snapshots into HTML pages.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	registry     *render.Registry[Strategy]
	policy       *bluemonday.Policy
	selector     theme.ThemeSelector
	themeName    string
	themeVariant string
}

// New constructs the renderer applying any provided options.
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
	if cfg.policy == nil {
		cfg.policy = DefaultPolicy()
	}
	if cfg.registry == nil {
		cfg.registry = DefaultRegistry(cfg.policy)
	}
	if cfg.selector == nil {
		cfg.selector = NewManifestSelector(DefaultManifest())
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		templates = engine
	}

	return &Renderer{
		templates:    templates,
		registry:     cfg.registry,
		policy:       cfg.policy,
		selector:     cfg.selector,
		themeName:    cfg.themeName,
		themeVariant: cfg.themeVariant,
	}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Page is everything needed to render one wizard screen.
type Page struct {
	Snapshot     wizard.Snapshot
	Context      render.Context
	Action       string
	Hidden       []render.HiddenField
	Notice       string
	ThemeName    string
	ThemeVariant string
}

// RenderPage renders the full step page, or the completion page once the
// wizard is done.
func (r *Renderer) RenderPage(_ context.Context, page Page) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	snap := page.Snapshot
	lctx := page.Context

	view := map[string]any{
		"lang":        lctx.Locale,
		"dir":         direction(lctx.Locale),
		"action":      strings.TrimRight(page.Action, "/"),
		"status":      snap.Status.String(),
		"busy":        snap.Busy,
		"completed":   snap.Status == wizard.StatusCompleted,
		"service":     lctx.Text(snap.ServiceType.Name),
		"notice":      page.Notice,
		"form_errors": snap.FormErrors,
		"labels":      actionLabels(lctx),
		"theme":       r.themeView(page),
	}
	if snap.Err != nil && snap.Status == wizard.StatusError {
		view["error"] = snap.Err.Error()
	}

	if snap.HasStep {
		fields := make([]string, 0, len(snap.Visible))
		for _, field := range snap.Visible {
			markup, err := r.RenderField(render.Props{
				Field:   field,
				Value:   snap.Values[field.Key],
				Error:   snap.Errors[field.Key],
				Context: lctx,
			})
			if err != nil {
				return nil, err
			}
			fields = append(fields, markup)
		}

		hidden := append([]render.HiddenField{render.Hidden("step_id", snap.Step.ID)}, page.Hidden...)
		hiddenView := make([]map[string]any, 0, len(hidden))
		for _, h := range render.SortedHiddenFields(hidden...) {
			hiddenView = append(hiddenView, map[string]any{"name": h.Name, "value": h.Value})
		}

		view["step"] = map[string]any{
			"id":          snap.Step.ID,
			"number":      snap.Step.StepNumber,
			"title":       lctx.Text(snap.Step.Title),
			"description": lctx.Text(snap.Step.Description),
		}
		view["total"] = snap.TotalSteps
		view["progress"] = progress(snap.Step.StepNumber, snap.TotalSteps)
		view["is_first"] = snap.IsFirst
		view["is_last"] = snap.IsLast
		view["fields"] = fields
		view["hidden"] = hiddenView
	}

	for name, fn := range render.TemplateI18nFuncs(lctx, render.TemplateI18nConfig{}) {
		view[name] = fn
	}

	out, err := r.templates.RenderTemplate("templates/page", view)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render page: %w", err)
	}
	return []byte(out), nil
}

// RenderField renders one field with its label, help text and error.
func (r *Renderer) RenderField(props render.Props) (string, error) {
	strategy, err := r.registry.Lookup(props.Field.Type)
	if err != nil {
		return "", fmt.Errorf("html renderer: field %q: %w", props.Field.Key, err)
	}

	id := controlID(props.Field.Key)
	base := map[string]any{
		"id":          id,
		"name":        props.Field.Key,
		"required":    props.Field.Required,
		"placeholder": props.Context.Text(props.Field.Placeholder),
		"invalid":     props.Error != "",
		"describedby": describedBy(id, props),
	}
	control := strategy.View(props)
	for key, value := range base {
		if _, ok := control[key]; !ok {
			control[key] = value
		}
	}

	controlHTML, err := r.templates.RenderTemplate("templates/controls/"+strategy.Template(), map[string]any{"c": control})
	if err != nil {
		return "", fmt.Errorf("html renderer: field %q: %w", props.Field.Key, err)
	}

	help := props.Context.Text(props.Field.HelpText)
	out, err := r.templates.RenderTemplate("templates/field", map[string]any{
		"id":       id,
		"type":     string(props.Field.Type),
		"label":    props.Label(),
		"help":     r.policy.Sanitize(help),
		"error":    props.ErrorMessage(),
		"control":  controlHTML,
		"fieldset": strategy.Template() == "radio" || strategy.Template() == "checkboxes",
		"class":    props.Field.Metadata[MetadataCSSClass],
		"icon":     sanitizeIcon(props.Field.Metadata[MetadataIcon]),
	})
	if err != nil {
		return "", fmt.Errorf("html renderer: field %q: %w", props.Field.Key, err)
	}
	return out, nil
}

// Decode reads the posted form for every active field of step and returns
// the typed values that were submitted.
func (r *Renderer) Decode(step model.Step, values model.Values, form url.Values, lctx render.Context) (model.Values, error) {
	changes := make(model.Values)
	for _, field := range step.Fields {
		if !field.Active {
			continue
		}
		strategy, err := r.registry.Lookup(field.Type)
		if err != nil {
			return nil, fmt.Errorf("html renderer: field %q: %w", field.Key, err)
		}
		key := field.Key
		strategy.Submit(render.Props{
			Field:   field,
			Value:   values[key],
			Context: lctx,
			OnChange: func(value any) {
				changes[key] = value
			},
		}, form)
	}
	return changes, nil
}

func (r *Renderer) themeView(page Page) map[string]any {
	name := page.ThemeName
	if name == "" {
		name = r.themeName
	}
	variant := page.ThemeVariant
	if variant == "" {
		variant = r.themeVariant
	}
	if r.selector == nil {
		return nil
	}
	selection, err := r.selector.Select(name, variant)
	if err != nil {
		return nil
	}
	cfg := RendererConfig(selection)
	if cfg == nil {
		return nil
	}
	return map[string]any{
		"name":       cfg.Theme,
		"variant":    cfg.Variant,
		"style":      cssVarsStyle(cfg.CSSVars),
		"stylesheet": cfg.AssetURL("stylesheet"),
	}
}

var defaultActionLabels = map[string]map[string]string{
	"en": {
		"back": "Back", "save": "Save", "next": "Next", "finish": "Finish",
		"retry": "Try again", "dismiss": "Dismiss", "step": "Step", "of": "of",
		"done": "All set! Your service is ready for review.",
	},
	"ar": {
		"back": "السابق", "save": "حفظ", "next": "التالي", "finish": "إنهاء",
		"retry": "إعادة المحاولة", "dismiss": "إغلاق", "step": "الخطوة", "of": "من",
		"done": "تم! خدمتك جاهزة للمراجعة.",
	},
}

func actionLabels(lctx render.Context) map[string]string {
	defaults := defaultActionLabels["en"]
	for _, locale := range []string{lctx.Locale, baseLocale(lctx.Locale), lctx.FallbackLocale} {
		if labels, ok := defaultActionLabels[locale]; ok {
			defaults = labels
			break
		}
	}
	out := make(map[string]string, len(defaults))
	for key, fallback := range defaults {
		out[key] = lctx.Translate("wizard.action."+key, fallback)
	}
	return out
}

func direction(locale string) string {
	switch baseLocale(locale) {
	case "ar", "he", "fa", "ur":
		return "rtl"
	default:
		return "ltr"
	}
}

func baseLocale(locale string) string {
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		return strings.ToLower(locale[:i])
	}
	return strings.ToLower(locale)
}

func progress(number, total int) int {
	if total <= 0 {
		return 0
	}
	pct := number * 100 / total
	if pct > 100 {
		return 100
	}
	return pct
}

func controlID(key string) string {
	return "wz-" + strings.TrimSpace(key)
}

func describedBy(id string, props render.Props) string {
	var ids []string
	if !props.Field.HelpText.Empty() {
		ids = append(ids, id+"-help")
	}
	if props.Error != "" {
		ids = append(ids, id+"-error")
	}
	return strings.Join(ids, " ")
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
