package model

import "github.com/waggy/go-wizard/internal/model"

// Builder normalises backend wizard definitions.
type Builder interface {
	BuildWizard(wizard Wizard) (Wizard, error)
	BuildStep(step Step) (Step, error)
}

// BuilderOption configures the builder behaviour.
type BuilderOption func(*builderOptions)

type builderOptions struct {
	labeler func(string) string
	lenient bool
}

// WithLabeler overrides the default label generation function.
func WithLabeler(labeler func(string) string) BuilderOption {
	return func(opts *builderOptions) {
		opts.labeler = labeler
	}
}

// WithLenientSchema keeps definitions that fail descriptor checks. An empty
// step list is still rejected.
func WithLenientSchema() BuilderOption {
	return func(opts *builderOptions) {
		opts.lenient = true
	}
}

// NewBuilder returns a Builder backed by the internal implementation.
func NewBuilder(options ...BuilderOption) Builder {
	cfg := builderOptions{}
	for _, opt := range options {
		opt(&cfg)
	}

	internalOpts := model.Options{Strict: !cfg.lenient}
	if cfg.labeler != nil {
		internalOpts.Labeler = cfg.labeler
	}

	return model.New(internalOpts)
}
