package render

import (
	"fmt"
	"sort"
	"sync"

	"github.com/waggy/go-wizard/pkg/model"
)

// Registry maps a field type to an editing strategy. Lookups for types without
// a registered strategy fall back to the text strategy, so unknown or future
// field types still render as a plain input.
type Registry[S any] struct {
	mu         sync.RWMutex
	strategies map[model.FieldType]S
}

// NewRegistry creates an empty registry instance.
func NewRegistry[S any]() *Registry[S] {
	return &Registry[S]{
		strategies: make(map[model.FieldType]S),
	}
}

// Register adds a strategy for a field type. Duplicate types return an error.
func (r *Registry[S]) Register(fieldType model.FieldType, strategy S) error {
	if fieldType == "" {
		return fmt.Errorf("render: field type is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strategies[fieldType]; exists {
		return fmt.Errorf("render: strategy for %q already registered", fieldType)
	}
	r.strategies[fieldType] = strategy
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry[S]) MustRegister(fieldType model.FieldType, strategy S) {
	if err := r.Register(fieldType, strategy); err != nil {
		panic(err)
	}
}

// Lookup returns the strategy for fieldType or the text fallback. It fails
// only when neither is registered.
func (r *Registry[S]) Lookup(fieldType model.FieldType) (S, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if strategy, ok := r.strategies[fieldType]; ok {
		return strategy, nil
	}
	if strategy, ok := r.strategies[model.FieldTypeText]; ok {
		return strategy, nil
	}
	var zero S
	return zero, fmt.Errorf("%w: %q", ErrNoStrategy, fieldType)
}

// Has reports whether a strategy is registered for exactly fieldType.
func (r *Registry[S]) Has(fieldType model.FieldType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.strategies[fieldType]
	return ok
}

// Types returns the registered field types in lexical order.
func (r *Registry[S]) Types() []model.FieldType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]model.FieldType, 0, len(r.strategies))
	for fieldType := range r.strategies {
		types = append(types, fieldType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
