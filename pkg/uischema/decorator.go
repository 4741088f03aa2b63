package uischema

import (
	"sort"
	"strings"

	"github.com/waggy/go-wizard/pkg/model"
)

// Decorator applies overlays from a Store to fetched steps.
type Decorator struct {
	store *Store
}

var _ model.Decorator = (*Decorator)(nil)

// NewDecorator returns a decorator backed by store. A nil or empty store
// leaves steps unchanged.
func NewDecorator(store *Store) *Decorator {
	return &Decorator{store: store}
}

// Decorate implements model.Decorator.
func (d *Decorator) Decorate(step *model.Step) error {
	if d == nil || step == nil {
		return nil
	}
	overlay, ok := d.store.Step(step.ID)
	if !ok {
		return nil
	}

	if !overlay.Title.Empty() {
		step.Title = mergeText(step.Title, overlay.Title)
	}
	if !overlay.Description.Empty() {
		step.Description = mergeText(step.Description, overlay.Description)
	}

	originals := make(map[string]int, len(step.Fields))
	for idx := range step.Fields {
		field := &step.Fields[idx]
		originals[field.Key] = idx
		cfg, ok := overlay.Fields[field.Key]
		if !ok {
			continue
		}
		applyFieldConfig(field, cfg)
	}

	reorderFields(step.Fields, overlay.Fields, originals)
	return nil
}

func applyFieldConfig(field *model.Field, cfg FieldConfig) {
	if !cfg.Label.Empty() {
		field.Label = mergeText(field.Label, cfg.Label)
	}
	if !cfg.Placeholder.Empty() {
		field.Placeholder = mergeText(field.Placeholder, cfg.Placeholder)
	}
	if !cfg.HelpText.Empty() {
		field.HelpText = mergeText(field.HelpText, cfg.HelpText)
	}
	if cfg.Hidden {
		field.Active = false
	}

	if len(cfg.Metadata) > 0 || cfg.CSSClass != "" || cfg.Icon != "" {
		field.Metadata = cloneStringMap(field.Metadata)
		for key, value := range cfg.Metadata {
			field.Metadata[key] = value
		}
		if class := strings.TrimSpace(cfg.CSSClass); class != "" {
			field.Metadata[MetadataCSSClass] = class
		}
		if icon := strings.TrimSpace(cfg.Icon); icon != "" {
			field.Metadata[MetadataIcon] = icon
		}
	}
}

// reorderFields sorts fields with an explicit order first, ascending, and
// keeps the backend order for the rest.
func reorderFields(fields []model.Field, configs map[string]FieldConfig, originals map[string]int) {
	sort.SliceStable(fields, func(i, j int) bool {
		oi, iok := explicitOrder(configs, fields[i].Key)
		oj, jok := explicitOrder(configs, fields[j].Key)
		switch {
		case iok && jok:
			if oi != oj {
				return oi < oj
			}
		case iok:
			return true
		case jok:
			return false
		}
		return originals[fields[i].Key] < originals[fields[j].Key]
	})
}

func explicitOrder(configs map[string]FieldConfig, key string) (int, bool) {
	cfg, ok := configs[key]
	if !ok || cfg.Order == nil {
		return 0, false
	}
	return *cfg.Order, true
}

// mergeText overlays translations; locales the overlay omits keep the
// backend text.
func mergeText(base, overlay model.LocalizedText) model.LocalizedText {
	out := make(model.LocalizedText, len(base)+len(overlay))
	for locale, value := range base {
		out[locale] = value
	}
	for locale, value := range overlay {
		if strings.TrimSpace(value) != "" {
			out[locale] = value
		}
	}
	return out
}

func cloneStringMap(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
