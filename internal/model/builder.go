package model

import (
	"sort"
	"strings"
)

// Builder normalises wizard definitions fetched from the backend into the
// shape the engine relies on: steps ordered by number, field types
// lower-cased, labels filled from keys when the backend omits them.
type Builder struct {
	opts Options
}

// New creates a Builder with the supplied options.
func New(options Options) *Builder {
	opts := defaultOptions()
	if options.Labeler != nil {
		opts.Labeler = options.Labeler
	}
	opts.Strict = options.Strict
	return &Builder{opts: opts}
}

// BuildWizard returns a normalised copy of the definition.
func (b *Builder) BuildWizard(wizard Wizard) (Wizard, error) {
	out := wizard
	out.Steps = make([]Step, len(wizard.Steps))
	for i, step := range wizard.Steps {
		out.Steps[i] = b.normaliseStep(step)
	}
	sort.SliceStable(out.Steps, func(i, j int) bool {
		return out.Steps[i].StepNumber < out.Steps[j].StepNumber
	})

	if err := ValidateWizard(out); err != nil {
		if IsNoSteps(err) || b.opts.Strict {
			return Wizard{}, err
		}
	}
	return out, nil
}

// BuildStep returns a normalised copy of a single step.
func (b *Builder) BuildStep(step Step) (Step, error) {
	out := b.normaliseStep(step)
	if err := ValidateStep(out); err != nil && b.opts.Strict {
		return Step{}, err
	}
	return out, nil
}

func (b *Builder) normaliseStep(step Step) Step {
	out := step
	out.Fields = make([]Field, len(step.Fields))
	for i, field := range step.Fields {
		out.Fields[i] = b.normaliseField(field)
	}
	return out
}

func (b *Builder) normaliseField(field Field) Field {
	field.Key = strings.TrimSpace(field.Key)
	field.DependsOnField = strings.TrimSpace(field.DependsOnField)
	field.Type = FieldType(strings.ToLower(strings.TrimSpace(string(field.Type))))
	if field.Type == "" {
		field.Type = FieldTypeText
	}
	if field.Label.Empty() && b.opts.Labeler != nil {
		field.Label = Text(b.opts.Labeler(field.Key))
	}
	if len(field.Options) > 0 {
		options := make([]Option, len(field.Options))
		for i, option := range field.Options {
			if option.Label.Empty() {
				option.Label = Text(option.Value)
			}
			options[i] = option
		}
		field.Options = options
	}
	return field
}
