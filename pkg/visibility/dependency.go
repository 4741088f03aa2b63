package visibility

import "github.com/waggy/go-wizard/pkg/model"

// Option configures the dependency evaluator.
type Option func(*DependencyEvaluator)

// Transitive hides a field whose dependency target is itself hidden. Without
// it only the field's own condition is checked.
func Transitive() Option {
	return func(e *DependencyEvaluator) {
		e.transitive = true
	}
}

// DependencyEvaluator implements the active + depends_on_field rule.
type DependencyEvaluator struct {
	transitive bool
}

// NewDependencyEvaluator constructs the default evaluator.
func NewDependencyEvaluator(options ...Option) *DependencyEvaluator {
	e := &DependencyEvaluator{}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Eval never fails; the error return satisfies Evaluator.
func (e *DependencyEvaluator) Eval(field model.Field, ctx Context) (bool, error) {
	if !e.transitive {
		return directlyVisible(field, ctx.Values), nil
	}
	return e.chainVisible(field, ctx, make(map[string]bool)), nil
}

func (e *DependencyEvaluator) chainVisible(field model.Field, ctx Context, seen map[string]bool) bool {
	if !directlyVisible(field, ctx.Values) {
		return false
	}
	if !field.HasDependency() {
		return true
	}
	if seen[field.Key] {
		return false
	}
	seen[field.Key] = true
	target, ok := ctx.Step.Field(field.DependsOnField)
	if !ok {
		return true
	}
	return e.chainVisible(target, ctx, seen)
}

func directlyVisible(field model.Field, values model.Values) bool {
	if !field.Active {
		return false
	}
	if !field.HasDependency() {
		return true
	}
	current, present := values[field.DependsOnField]
	expected := "undefined"
	if field.DependsOnValue != nil {
		expected = *field.DependsOnValue
	}
	return Stringify(current, present) == expected
}
