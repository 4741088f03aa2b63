package html

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/waggy/go-wizard/pkg/model"
	"github.com/waggy/go-wizard/pkg/render"
)

// Strategy renders and decodes one field type.
type Strategy interface {
	// Template names the control template under templates/controls.
	Template() string
	// View returns control-specific template data.
	View(props render.Props) map[string]any
	// Submit decodes the posted form and reports the typed value through
	// props.OnChange. Fields absent from the form are left untouched.
	Submit(props render.Props, form url.Values)
}

// DefaultRegistry registers a strategy for every known field type.
func DefaultRegistry(policy *bluemonday.Policy) *render.Registry[Strategy] {
	if policy == nil {
		policy = DefaultPolicy()
	}
	registry := render.NewRegistry[Strategy]()
	registry.MustRegister(model.FieldTypeText, inputStrategy{inputType: "text"})
	registry.MustRegister(model.FieldTypeEmail, inputStrategy{inputType: "email"})
	registry.MustRegister(model.FieldTypePhone, inputStrategy{inputType: "tel"})
	registry.MustRegister(model.FieldTypeURL, inputStrategy{inputType: "url"})
	registry.MustRegister(model.FieldTypeColor, inputStrategy{inputType: "color"})
	registry.MustRegister(model.FieldTypeDate, inputStrategy{inputType: "date"})
	registry.MustRegister(model.FieldTypeTime, inputStrategy{inputType: "time"})
	registry.MustRegister(model.FieldTypeDatetime, inputStrategy{inputType: "datetime-local"})
	registry.MustRegister(model.FieldTypeFile, inputStrategy{inputType: "url"})
	registry.MustRegister(model.FieldTypeImage, inputStrategy{inputType: "url"})
	registry.MustRegister(model.FieldTypeTextarea, textareaStrategy{})
	registry.MustRegister(model.FieldTypeNumber, numberStrategy{inputType: "number", step: "any"})
	registry.MustRegister(model.FieldTypeCurrency, numberStrategy{inputType: "number", step: "0.01"})
	registry.MustRegister(model.FieldTypeSlider, numberStrategy{inputType: "range", step: "1"})
	registry.MustRegister(model.FieldTypeSelect, selectStrategy{})
	registry.MustRegister(model.FieldTypeRadio, radioStrategy{})
	registry.MustRegister(model.FieldTypeMultiselect, multiselectStrategy{})
	registry.MustRegister(model.FieldTypeCheckbox, toggleStrategy{role: ""})
	registry.MustRegister(model.FieldTypeSwitch, toggleStrategy{role: "switch"})
	registry.MustRegister(model.FieldTypeJSON, jsonStrategy{})
	registry.MustRegister(model.FieldTypeHTML, richTextStrategy{policy: policy})
	return registry
}

func submitted(props render.Props, form url.Values) (string, bool) {
	values, ok := form[props.Field.Key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[len(values)-1], true
}

type inputStrategy struct {
	inputType string
}

func (s inputStrategy) Template() string { return "input" }

func (s inputStrategy) View(props render.Props) map[string]any {
	view := map[string]any{
		"type":  s.inputType,
		"value": render.FormatValue(props.Value),
	}
	if props.Field.MaxLength != nil {
		view["maxlength"] = *props.Field.MaxLength
	}
	if props.Field.Pattern != "" {
		view["pattern"] = props.Field.Pattern
	}
	return view
}

func (s inputStrategy) Submit(props render.Props, form url.Values) {
	if raw, ok := submitted(props, form); ok {
		props.Change(raw)
	}
}

type textareaStrategy struct{}

func (textareaStrategy) Template() string { return "textarea" }

func (textareaStrategy) View(props render.Props) map[string]any {
	return map[string]any{"value": render.FormatValue(props.Value)}
}

func (textareaStrategy) Submit(props render.Props, form url.Values) {
	if raw, ok := submitted(props, form); ok {
		props.Change(raw)
	}
}

type numberStrategy struct {
	inputType string
	step      string
}

func (s numberStrategy) Template() string { return "input" }

func (s numberStrategy) View(props render.Props) map[string]any {
	view := map[string]any{
		"type":      s.inputType,
		"value":     render.FormatValue(props.Value),
		"step":      s.step,
		"inputmode": "decimal",
	}
	if props.Field.MinValue != nil {
		view["min"] = render.FormatValue(*props.Field.MinValue)
	}
	if props.Field.MaxValue != nil {
		view["max"] = render.FormatValue(*props.Field.MaxValue)
	}
	return view
}

func (s numberStrategy) Submit(props render.Props, form url.Values) {
	if raw, ok := submitted(props, form); ok {
		props.Change(render.ParseNumber(raw))
	}
}

type selectStrategy struct{}

func (selectStrategy) Template() string { return "select" }

func (selectStrategy) View(props render.Props) map[string]any {
	return map[string]any{"options": optionViews(props)}
}

func (selectStrategy) Submit(props render.Props, form url.Values) {
	if raw, ok := submitted(props, form); ok {
		props.Change(raw)
	}
}

type radioStrategy struct{}

func (radioStrategy) Template() string { return "radio" }

func (radioStrategy) View(props render.Props) map[string]any {
	return map[string]any{"options": optionViews(props)}
}

func (radioStrategy) Submit(props render.Props, form url.Values) {
	if raw, ok := submitted(props, form); ok {
		props.Change(raw)
	}
}

// multiselectStrategy posts a blank sentinel ahead of the checkboxes so an
// empty selection can be told apart from a field that was not on the page.
type multiselectStrategy struct{}

func (multiselectStrategy) Template() string { return "checkboxes" }

func (multiselectStrategy) View(props render.Props) map[string]any {
	return map[string]any{"options": optionViews(props)}
}

func (multiselectStrategy) Submit(props render.Props, form url.Values) {
	values, ok := form[props.Field.Key]
	if !ok {
		return
	}
	selected := make([]any, 0, len(values))
	for _, value := range values {
		if value != "" {
			selected = append(selected, value)
		}
	}
	props.Change(selected)
}

// toggleStrategy posts "false" from a hidden input followed by "true" from
// the checkbox, so the last value wins.
type toggleStrategy struct {
	role string
}

func (s toggleStrategy) Template() string { return "toggle" }

func (s toggleStrategy) View(props render.Props) map[string]any {
	return map[string]any{
		"checked": render.Truthy(props.Value),
		"role":    s.role,
	}
}

func (s toggleStrategy) Submit(props render.Props, form url.Values) {
	if raw, ok := submitted(props, form); ok {
		props.Change(render.Truthy(raw) || raw == "on")
	}
}

type jsonStrategy struct{}

func (jsonStrategy) Template() string { return "textarea" }

func (jsonStrategy) View(props render.Props) map[string]any {
	value := ""
	switch v := props.Value.(type) {
	case nil:
	case string:
		value = v
	default:
		if encoded, err := json.MarshalIndent(v, "", "  "); err == nil {
			value = string(encoded)
		}
	}
	return map[string]any{"value": value, "monospace": true}
}

// Submit keeps unparsable input as the raw string.
func (jsonStrategy) Submit(props render.Props, form url.Values) {
	raw, ok := submitted(props, form)
	if !ok {
		return
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		props.Change(nil)
		return
	}
	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		props.Change(raw)
		return
	}
	props.Change(decoded)
}

type richTextStrategy struct {
	policy *bluemonday.Policy
}

func (s richTextStrategy) Template() string { return "richtext" }

func (s richTextStrategy) View(props render.Props) map[string]any {
	value := render.FormatValue(props.Value)
	return map[string]any{
		"value":   value,
		"preview": s.policy.Sanitize(value),
	}
}

func (s richTextStrategy) Submit(props render.Props, form url.Values) {
	if raw, ok := submitted(props, form); ok {
		props.Change(s.policy.Sanitize(raw))
	}
}

func optionViews(props render.Props) []map[string]any {
	options := props.Options()
	out := make([]map[string]any, 0, len(options))
	for i, option := range options {
		out = append(out, map[string]any{
			"id":       controlID(props.Field.Key) + "-" + itoa(i),
			"value":    option.Value,
			"label":    option.Label,
			"selected": option.Selected,
		})
	}
	return out
}
