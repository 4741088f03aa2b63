package model

// Decorator adjusts a step after it is fetched and normalised, before the
// controller derives values and visibility from it.
type Decorator interface {
	Decorate(*Step) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*Step) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(step *Step) error {
	return fn(step)
}
