package visibility

import "github.com/waggy/go-wizard/pkg/model"

// Evaluator determines whether a field should be visible given the current
// form values and the step it belongs to.
type Evaluator interface {
	Eval(field model.Field, ctx Context) (bool, error)
}

// Context provides inputs to an Evaluator. Step gives access to sibling
// descriptors; Extras lets callers inject arbitrary context such as feature
// flags for custom evaluators.
type Context struct {
	Step   model.Step
	Values model.Values
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(field model.Field, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(field model.Field, ctx Context) (bool, error) {
	return fn(field, ctx)
}

// Filter returns the ordered subset of step fields the evaluator accepts.
func Filter(step model.Step, values model.Values, evaluator Evaluator) ([]model.Field, error) {
	if evaluator == nil {
		evaluator = NewDependencyEvaluator()
	}
	ctx := Context{Step: step, Values: values}
	visible := make([]model.Field, 0, len(step.Fields))
	for _, field := range step.Fields {
		ok, err := evaluator.Eval(field, ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			visible = append(visible, field)
		}
	}
	return visible, nil
}

// VisibleFields applies the direct dependency rule: a field is visible when it
// is active and, if it depends on another field, the stringified value of
// that field equals the stringified expected value. Order is preserved.
func VisibleFields(step model.Step, values model.Values, options ...Option) []model.Field {
	visible, _ := Filter(step, values, NewDependencyEvaluator(options...))
	return visible
}
