// Package memory is an in-process implementation of the wizard backend API.
// It serves a wizard definition loaded from a YAML fixture and keeps
// per-provider progress in memory, both as a wizard.Backend and over HTTP.
package memory

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/waggy/go-wizard/internal/logging"
	"github.com/waggy/go-wizard/pkg/model"
	"github.com/waggy/go-wizard/pkg/validation"
	"github.com/waggy/go-wizard/pkg/visibility"
	"github.com/waggy/go-wizard/pkg/wizard"
)

//go:embed fixtures/dog_walking.yaml
var defaultFixture []byte

var (
	// ErrUnknownStep is returned for step ids outside the definition.
	ErrUnknownStep = errors.New("memory: unknown step")
	// ErrCompleted rejects edits after the wizard was completed.
	ErrCompleted = errors.New("memory: wizard already completed")
)

const (
	statusInProgress = "in_progress"
	statusCompleted  = "completed"
)

// FieldError carries per-field message codes for a rejected save.
type FieldError struct {
	Fields map[string][]string
}

func (e *FieldError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return fmt.Sprintf("memory: invalid fields %v", keys)
}

// FieldErrors exposes the per-field codes to the controller.
func (e *FieldError) FieldErrors() map[string][]string {
	return e.Fields
}

// Option customises a Backend.
type Option func(*Backend)

// WithServerValidation re-checks saved values with constraint validation
// and rejects invalid saves the way a real backend would.
func WithServerValidation() Option {
	return func(b *Backend) {
		b.validator = validation.New(validation.WithConstraints())
	}
}

// WithLogger sets the logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithToken requires HTTP callers to send this bearer token.
func WithToken(token string) Option {
	return func(b *Backend) {
		b.token = token
	}
}

type progress struct {
	current   int
	status    string
	saved     map[int64]model.Values
	completed map[int64]bool
}

// Backend serves one wizard definition to any number of provider services.
type Backend struct {
	definition model.Wizard
	validator  *validation.Validator
	logger     logrus.FieldLogger
	token      string

	mu       sync.Mutex
	services map[int64]*progress
}

var _ wizard.Backend = (*Backend)(nil)

// New builds a backend from a definition. The definition is normalised and
// checked the same way the controller does.
func New(definition model.Wizard, options ...Option) (*Backend, error) {
	built, err := model.NewBuilder().BuildWizard(definition)
	if err != nil {
		return nil, fmt.Errorf("memory: definition: %w", err)
	}
	built.ProviderService = model.ProviderService{}

	b := &Backend{
		definition: built,
		logger:     logging.NewNop(),
		services:   make(map[int64]*progress),
	}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	return b, nil
}

// NewDefault uses the embedded dog-walking fixture.
func NewDefault(options ...Option) (*Backend, error) {
	definition, err := ParseFixture(defaultFixture)
	if err != nil {
		return nil, err
	}
	return New(definition, options...)
}

// LoadFixture reads a YAML wizard definition from disk.
func LoadFixture(path string) (model.Wizard, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Wizard{}, fmt.Errorf("memory: read fixture: %w", err)
	}
	return ParseFixture(raw)
}

// ParseFixture decodes a YAML wizard definition.
func ParseFixture(raw []byte) (model.Wizard, error) {
	var definition model.Wizard
	if err := yaml.Unmarshal(raw, &definition); err != nil {
		return model.Wizard{}, fmt.Errorf("memory: decode fixture: %w", err)
	}
	return definition, nil
}

func (b *Backend) progressLocked(providerServiceID int64) *progress {
	p, ok := b.services[providerServiceID]
	if !ok {
		p = &progress{
			current:   b.definition.Steps[0].StepNumber,
			status:    statusInProgress,
			saved:     make(map[int64]model.Values),
			completed: make(map[int64]bool),
		}
		b.services[providerServiceID] = p
	}
	return p
}

func (b *Backend) stepIndex(number int) int {
	for i, step := range b.definition.Steps {
		if step.StepNumber == number {
			return i
		}
	}
	return -1
}

// FetchWizard returns the definition with this provider's progress.
func (b *Backend) FetchWizard(_ context.Context, providerServiceID int64) (model.Wizard, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.progressLocked(providerServiceID)
	out := b.definition
	out.Steps = append([]model.Step(nil), b.definition.Steps...)
	out.ProviderService = model.ProviderService{
		ID:          providerServiceID,
		CurrentStep: p.current,
		TotalSteps:  len(b.definition.Steps),
		Status:      p.status,
	}
	return out, nil
}

// FetchStep returns one step with its saved values.
func (b *Backend) FetchStep(_ context.Context, providerServiceID, stepID int64) (model.StepDetail, error) {
	step, ok := b.definition.StepByID(stepID)
	if !ok {
		return model.StepDetail{}, fmt.Errorf("%w: %d", ErrUnknownStep, stepID)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.progressLocked(providerServiceID)
	return model.StepDetail{
		Step:       step,
		SavedData:  p.saved[stepID].Clone(),
		IsComplete: p.completed[stepID],
	}, nil
}

// SaveStep replaces the stored values for a step. Saving the same values
// again leaves the state unchanged.
func (b *Backend) SaveStep(_ context.Context, providerServiceID, stepID int64, values model.Values) error {
	step, ok := b.definition.StepByID(stepID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownStep, stepID)
	}

	if b.validator != nil {
		visible := visibility.VisibleFields(step, values)
		if errs := b.validator.Validate(visible, values); len(errs) > 0 {
			fields := make(map[string][]string, len(errs))
			for key, code := range errs {
				fields[key] = []string{code}
			}
			return &FieldError{Fields: fields}
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.progressLocked(providerServiceID)
	if p.status == statusCompleted {
		return ErrCompleted
	}
	p.saved[stepID] = values.Clone()
	p.completed[stepID] = true

	b.logger.WithFields(logrus.Fields{
		"provider_service_id": providerServiceID,
		"step_id":             stepID,
		"keys":                len(values),
	}).Debug("step saved")
	return nil
}

// NextStep advances progress, stopping at the last step.
func (b *Backend) NextStep(_ context.Context, providerServiceID int64) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.progressLocked(providerServiceID)
	if i := b.stepIndex(p.current); i >= 0 && i+1 < len(b.definition.Steps) {
		p.current = b.definition.Steps[i+1].StepNumber
	}
	return p.current, nil
}

// PreviousStep moves progress back, stopping at the first step.
func (b *Backend) PreviousStep(_ context.Context, providerServiceID int64) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.progressLocked(providerServiceID)
	if i := b.stepIndex(p.current); i > 0 {
		p.current = b.definition.Steps[i-1].StepNumber
	}
	return p.current, nil
}

// CompleteWizard marks the provider's wizard finished.
func (b *Backend) CompleteWizard(_ context.Context, providerServiceID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.progressLocked(providerServiceID)
	p.status = statusCompleted
	b.logger.WithField("provider_service_id", providerServiceID).Info("wizard completed")
	return nil
}

// Progress reports the current step number and status for a provider.
func (b *Backend) Progress(providerServiceID int64) (int, string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.progressLocked(providerServiceID)
	return p.current, p.status
}
