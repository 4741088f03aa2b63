package wizard

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/waggy/go-wizard/pkg/validation"
)

var (
	// ErrBusy is returned when a network operation is already in flight.
	ErrBusy = errors.New("wizard: operation in progress")
	// ErrNoSteps reports a wizard definition without steps.
	ErrNoSteps = errors.New("wizard: wizard has no steps")
	// ErrNoStep is returned by step operations before a step is loaded.
	ErrNoStep = errors.New("wizard: no step loaded")
	// ErrStepNotFound reports a step number or id the definition does not contain.
	ErrStepNotFound = errors.New("wizard: step not found")
	// ErrNoPreviousStep is returned by Back on the first step.
	ErrNoPreviousStep = errors.New("wizard: already on the first step")
	// ErrCompleted is returned by step operations once the wizard is complete.
	ErrCompleted = errors.New("wizard: wizard already completed")
	// ErrStepMismatch is returned by Restore for a draft of another step.
	ErrStepMismatch = errors.New("wizard: draft belongs to another step")
)

// ValidationError blocks an advance. Errors maps field keys to message
// codes (local validation) or backend messages; Form carries messages the
// backend did not attach to a field.
type ValidationError struct {
	Errors validation.Errors
	Form   []string
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "wizard: validation failed"
	}
	keys := make([]string, 0, len(e.Errors))
	for key := range e.Errors {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys)+len(e.Form))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", key, e.Errors[key]))
	}
	parts = append(parts, e.Form...)
	if len(parts) == 0 {
		return "wizard: validation failed"
	}
	return "wizard: validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// FieldErrorer is implemented by backend errors that carry per-field
// validation messages.
type FieldErrorer interface {
	FieldErrors() map[string][]string
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
