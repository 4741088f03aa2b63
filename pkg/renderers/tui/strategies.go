package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/waggy/go-wizard/pkg/model"
	"github.com/waggy/go-wizard/pkg/render"
)

// Prompt bundles what a strategy needs to ask for one field.
type Prompt struct {
	Props  render.Props
	Help   string
	Driver PromptDriver
}

// Strategy asks for one field type and reports the typed answer through
// Props.OnChange.
type Strategy interface {
	Ask(ctx context.Context, p Prompt) error
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(ctx context.Context, p Prompt) error

func (fn StrategyFunc) Ask(ctx context.Context, p Prompt) error { return fn(ctx, p) }

// DefaultRegistry registers a prompt strategy for every known field type.
func DefaultRegistry() *render.Registry[Strategy] {
	registry := render.NewRegistry[Strategy]()
	for _, fieldType := range []model.FieldType{
		model.FieldTypeText, model.FieldTypeEmail, model.FieldTypePhone, model.FieldTypeURL,
		model.FieldTypeColor, model.FieldTypeDate, model.FieldTypeTime, model.FieldTypeDatetime,
		model.FieldTypeFile, model.FieldTypeImage,
	} {
		registry.MustRegister(fieldType, StrategyFunc(askText))
	}
	registry.MustRegister(model.FieldTypeTextarea, StrategyFunc(askTextArea))
	registry.MustRegister(model.FieldTypeHTML, StrategyFunc(askTextArea))
	registry.MustRegister(model.FieldTypeJSON, StrategyFunc(askJSON))
	registry.MustRegister(model.FieldTypeNumber, StrategyFunc(askNumber))
	registry.MustRegister(model.FieldTypeCurrency, StrategyFunc(askNumber))
	registry.MustRegister(model.FieldTypeSlider, StrategyFunc(askNumber))
	registry.MustRegister(model.FieldTypeSelect, StrategyFunc(askChoice))
	registry.MustRegister(model.FieldTypeRadio, StrategyFunc(askChoice))
	registry.MustRegister(model.FieldTypeMultiselect, StrategyFunc(askMulti))
	registry.MustRegister(model.FieldTypeCheckbox, StrategyFunc(askBool))
	registry.MustRegister(model.FieldTypeSwitch, StrategyFunc(askBool))
	return registry
}

var isoHints = map[model.FieldType]string{
	model.FieldTypeDate:     "YYYY-MM-DD",
	model.FieldTypeTime:     "HH:MM",
	model.FieldTypeDatetime: "YYYY-MM-DDTHH:MM",
}

func askText(ctx context.Context, p Prompt) error {
	message := p.Props.Label()
	if hint, ok := isoHints[p.Props.Field.Type]; ok {
		message += " (" + hint + ")"
	}
	answer, err := p.Driver.Input(ctx, InputConfig{
		Message: message,
		Default: render.FormatValue(p.Props.Value),
		Help:    p.Help,
	})
	if err != nil {
		return err
	}
	p.Props.Change(answer)
	return nil
}

func askTextArea(ctx context.Context, p Prompt) error {
	answer, err := p.Driver.TextArea(ctx, TextAreaConfig{
		Message: p.Props.Label(),
		Default: render.FormatValue(p.Props.Value),
		Help:    p.Help,
	})
	if err != nil {
		return err
	}
	p.Props.Change(answer)
	return nil
}

// askJSON keeps unparsable input as the raw string.
func askJSON(ctx context.Context, p Prompt) error {
	current := ""
	switch v := p.Props.Value.(type) {
	case nil:
	case string:
		current = v
	default:
		if encoded, err := json.Marshal(v); err == nil {
			current = string(encoded)
		}
	}
	answer, err := p.Driver.TextArea(ctx, TextAreaConfig{Message: p.Props.Label(), Default: current, Help: p.Help})
	if err != nil {
		return err
	}
	if strings.TrimSpace(answer) == "" {
		p.Props.Change(nil)
		return nil
	}
	var decoded any
	if err := json.Unmarshal([]byte(answer), &decoded); err != nil {
		p.Props.Change(answer)
		return nil
	}
	p.Props.Change(decoded)
	return nil
}

func askNumber(ctx context.Context, p Prompt) error {
	message := p.Props.Label()
	field := p.Props.Field
	switch {
	case field.MinValue != nil && field.MaxValue != nil:
		message += fmt.Sprintf(" (%s-%s)", render.FormatValue(*field.MinValue), render.FormatValue(*field.MaxValue))
	case field.MinValue != nil:
		message += fmt.Sprintf(" (>= %s)", render.FormatValue(*field.MinValue))
	case field.MaxValue != nil:
		message += fmt.Sprintf(" (<= %s)", render.FormatValue(*field.MaxValue))
	}
	answer, err := p.Driver.Input(ctx, InputConfig{
		Message: message,
		Default: render.FormatValue(p.Props.Value),
		Help:    p.Help,
	})
	if err != nil {
		return err
	}
	p.Props.Change(render.ParseNumber(answer))
	return nil
}

func askChoice(ctx context.Context, p Prompt) error {
	options := p.Props.Options()
	if len(options) == 0 {
		return askText(ctx, p)
	}
	labels := make([]string, len(options))
	defaultIndex := -1
	for i, option := range options {
		labels[i] = option.Label
		if option.Selected && defaultIndex < 0 {
			defaultIndex = i
		}
	}
	idx, err := p.Driver.Select(ctx, SelectConfig{
		Message:      p.Props.Label(),
		Options:      labels,
		DefaultIndex: defaultIndex,
		Help:         p.Help,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(options) {
		return fmt.Errorf("%w: %q", ErrInvalidSelection, p.Props.Field.Key)
	}
	p.Props.Change(options[idx].Value)
	return nil
}

func askMulti(ctx context.Context, p Prompt) error {
	options := p.Props.Options()
	labels := make([]string, len(options))
	var defaults []int
	for i, option := range options {
		labels[i] = option.Label
		if option.Selected {
			defaults = append(defaults, i)
		}
	}
	indices, err := p.Driver.MultiSelect(ctx, SelectConfig{
		Message:  p.Props.Label(),
		Options:  labels,
		Defaults: defaults,
		Help:     p.Help,
	})
	if err != nil {
		return err
	}
	selected := make([]any, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(options) {
			return fmt.Errorf("%w: %q", ErrInvalidSelection, p.Props.Field.Key)
		}
		selected = append(selected, options[idx].Value)
	}
	p.Props.Change(selected)
	return nil
}

func askBool(ctx context.Context, p Prompt) error {
	answer, err := p.Driver.Confirm(ctx, ConfirmConfig{
		Message: p.Props.Label(),
		Default: render.Truthy(p.Props.Value),
		Help:    p.Help,
	})
	if err != nil {
		return err
	}
	p.Props.Change(answer)
	return nil
}
