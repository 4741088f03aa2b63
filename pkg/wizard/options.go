package wizard

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/waggy/go-wizard/pkg/model"
	"github.com/waggy/go-wizard/pkg/validation"
	"github.com/waggy/go-wizard/pkg/visibility"
)

// Option configures a Controller.
type Option func(*Controller)

// WithBuilder replaces the definition normaliser.
func WithBuilder(builder model.Builder) Option {
	return func(c *Controller) {
		if builder != nil {
			c.builder = builder
		}
	}
}

// WithValidator replaces the step validator, for example to enable
// validation.WithConstraints.
func WithValidator(validator *validation.Validator) Option {
	return func(c *Controller) {
		if validator != nil {
			c.validator = validator
		}
	}
}

// WithEvaluator replaces the visibility evaluator.
func WithEvaluator(evaluator visibility.Evaluator) Option {
	return func(c *Controller) {
		if evaluator != nil {
			c.evaluator = evaluator
		}
	}
}

// WithDecorators registers step decorators applied after every fetch.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(c *Controller) {
		for _, decorator := range decorators {
			if decorator != nil {
				c.decorators = append(c.decorators, decorator)
			}
		}
	}
}

// WithHooks registers lifecycle hooks. Repeated calls merge.
func WithHooks(hooks Hooks) Option {
	return func(c *Controller) {
		c.hooks = c.hooks.Merge(hooks)
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source used to measure backend calls.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}
