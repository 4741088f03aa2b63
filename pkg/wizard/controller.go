package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/waggy/go-wizard/internal/logging"
	"github.com/waggy/go-wizard/pkg/model"
	"github.com/waggy/go-wizard/pkg/render"
	"github.com/waggy/go-wizard/pkg/validation"
	"github.com/waggy/go-wizard/pkg/visibility"
)

// Controller drives one provider service through its wizard. Methods are
// safe for concurrent use; at most one backend operation runs at a time and
// overlapping calls fail fast with ErrBusy.
type Controller struct {
	backend           Backend
	providerServiceID int64
	builder           model.Builder
	validator         *validation.Validator
	evaluator         visibility.Evaluator
	decorators        []model.Decorator
	hooks             Hooks
	logger            logrus.FieldLogger
	now               func() time.Time

	mu           sync.Mutex
	status       Status
	busy         bool
	wizard       model.Wizard
	step         model.Step
	hasStep      bool
	stepComplete bool
	values       model.Values
	errors       validation.Errors
	formErrors   []string
	lastErr      error
}

// New constructs a controller in the idle state. Call LoadWizard to start.
func New(backend Backend, providerServiceID int64, options ...Option) *Controller {
	c := &Controller{
		backend:           backend,
		providerServiceID: providerServiceID,
		builder:           model.NewBuilder(),
		validator:         validation.New(),
		evaluator:         visibility.NewDependencyEvaluator(),
		logger:            logging.NewNop(),
		now:               time.Now,
		status:            StatusIdle,
		errors:            make(validation.Errors),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// ProviderServiceID identifies the offering this controller edits.
func (c *Controller) ProviderServiceID() int64 {
	return c.providerServiceID
}

// Status returns the current state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// LastError returns the failure that moved the controller into StatusError.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// LoadWizard fetches the definition, selects the step matching the
// backend's current_step (the first step otherwise) and loads it with its
// saved values overlaid by field defaults.
func (c *Controller) LoadWizard(ctx context.Context) error {
	if err := c.begin(ctx, StatusLoading, nil); err != nil {
		return err
	}

	var wiz model.Wizard
	err := c.call(ctx, OpFetchWizard, func() error {
		var fetchErr error
		wiz, fetchErr = c.backend.FetchWizard(ctx, c.providerServiceID)
		return fetchErr
	})
	if err != nil {
		return c.fail(ctx, fmt.Errorf("wizard: load definition: %w", err))
	}

	wiz, err = c.builder.BuildWizard(wiz)
	if err != nil {
		if model.IsNoSteps(err) {
			err = fmt.Errorf("%w: provider service %d", ErrNoSteps, c.providerServiceID)
		} else {
			err = fmt.Errorf("wizard: invalid definition: %w", err)
		}
		return c.fail(ctx, err)
	}

	target, ok := wiz.StepByNumber(wiz.ProviderService.CurrentStep)
	if !ok {
		target = wiz.Steps[0]
	}

	detail, step, err := c.fetchStep(ctx, target)
	if err != nil {
		return c.fail(ctx, err)
	}

	c.mu.Lock()
	c.wizard = wiz
	c.installLocked(step, detail)
	c.mu.Unlock()

	c.finish(ctx, StatusStepLoaded, nil)
	return nil
}

// Retry re-runs LoadWizard, typically after a failure.
func (c *Controller) Retry(ctx context.Context) error {
	return c.LoadWizard(ctx)
}

// LoadStep fetches a step of the loaded definition with its saved values and
// resets the error map.
func (c *Controller) LoadStep(ctx context.Context, stepID int64) error {
	var target model.Step
	err := c.begin(ctx, StatusLoading, func() error {
		if len(c.wizard.Steps) == 0 {
			return ErrNoStep
		}
		step, ok := c.wizard.StepByID(stepID)
		if !ok {
			return fmt.Errorf("%w: id %d", ErrStepNotFound, stepID)
		}
		target = step
		return nil
	})
	if err != nil {
		return err
	}

	detail, step, err := c.fetchStep(ctx, target)
	if err != nil {
		return c.fail(ctx, err)
	}
	c.mu.Lock()
	c.installLocked(step, detail)
	c.mu.Unlock()

	c.finish(ctx, StatusStepLoaded, nil)
	return nil
}

// OnFieldChange records a new value and clears any error shown for key. It
// performs no validation and no I/O, so repeating a call is a no-op.
func (c *Controller) OnFieldChange(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values == nil {
		c.values = make(model.Values)
	}
	c.values[key] = value
	delete(c.errors, key)
}

// ToggleOption adds or removes option from a multiselect value.
func (c *Controller) ToggleOption(key, option string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values == nil {
		c.values = make(model.Values)
	}
	c.values[key] = render.ToggleOption(c.values[key], option)
	delete(c.errors, key)
}

// Save persists the current step. With goNext the visible fields are
// validated first and a *ValidationError is returned without any I/O when
// they fail. After a successful save the last step completes the wizard;
// any other step asks the backend to advance and loads the step it reports.
func (c *Controller) Save(ctx context.Context, goNext bool) error {
	var (
		step   model.Step
		values model.Values
		last   bool
	)
	err := c.begin(ctx, StatusSaving, func() error {
		if err := c.editableLocked(); err != nil {
			return err
		}
		if goNext {
			errs, err := c.validateLocked()
			if err != nil {
				return err
			}
			if len(errs) > 0 {
				c.errors = errs
				return &ValidationError{Errors: errs.Clone()}
			}
		}
		step = c.step
		values = c.values.Clone()
		last = step.StepNumber == c.wizard.TotalSteps()
		return nil
	})
	if err != nil {
		return err
	}

	if err := c.saveStep(ctx, step, values); err != nil {
		return err
	}
	if !goNext {
		c.finish(ctx, StatusStepLoaded, nil)
		return nil
	}

	if last {
		err := c.call(ctx, OpCompleteWizard, func() error {
			return c.backend.CompleteWizard(ctx, c.providerServiceID)
		})
		if err != nil {
			return c.fail(ctx, fmt.Errorf("wizard: complete: %w", err))
		}
		c.finish(ctx, StatusCompleted, nil)
		return nil
	}

	var number int
	err = c.call(ctx, OpNextStep, func() error {
		var callErr error
		number, callErr = c.backend.NextStep(ctx, c.providerServiceID)
		return callErr
	})
	if err != nil {
		return c.fail(ctx, fmt.Errorf("wizard: next step: %w", err))
	}
	return c.moveTo(ctx, number)
}

// Back saves the current values without validating them, asks the backend
// to retreat and loads the step it reports.
func (c *Controller) Back(ctx context.Context) error {
	var (
		step   model.Step
		values model.Values
	)
	err := c.begin(ctx, StatusSaving, func() error {
		if err := c.editableLocked(); err != nil {
			return err
		}
		if c.isFirstLocked() {
			return ErrNoPreviousStep
		}
		step = c.step
		values = c.values.Clone()
		return nil
	})
	if err != nil {
		return err
	}

	if err := c.saveStep(ctx, step, values); err != nil {
		return err
	}

	var number int
	err = c.call(ctx, OpPreviousStep, func() error {
		var callErr error
		number, callErr = c.backend.PreviousStep(ctx, c.providerServiceID)
		return callErr
	})
	if err != nil {
		return c.fail(ctx, fmt.Errorf("wizard: previous step: %w", err))
	}
	return c.moveTo(ctx, number)
}

// Dismiss clears a failure and returns to the loaded step, keeping its values.
func (c *Controller) Dismiss(ctx context.Context) {
	c.mu.Lock()
	if c.status != StatusError {
		c.mu.Unlock()
		return
	}
	from := c.status
	c.status = StatusIdle
	if c.hasStep {
		c.status = StatusStepLoaded
	}
	to := c.status
	c.lastErr = nil
	step := c.step.StepNumber
	c.mu.Unlock()

	c.emitTransition(ctx, from, to, step, nil)
}

// Restore overlays draft values and errors onto the loaded step. Draft
// values win over the backend's saved data.
func (c *Controller) Restore(stepID int64, values model.Values, errs map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasStep {
		return ErrNoStep
	}
	if c.step.ID != stepID {
		return fmt.Errorf("%w: have %d, draft %d", ErrStepMismatch, c.step.ID, stepID)
	}
	if c.values == nil {
		c.values = make(model.Values)
	}
	for key, value := range values.Clone() {
		c.values[key] = value
	}
	for key, message := range errs {
		c.errors[key] = message
	}
	return nil
}

// Validate runs the step validator over the visible fields without changing
// state.
func (c *Controller) Validate() (validation.Errors, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasStep {
		return nil, ErrNoStep
	}
	return c.validateLocked()
}

func (c *Controller) editableLocked() error {
	if c.status == StatusCompleted {
		return ErrCompleted
	}
	if !c.hasStep {
		return ErrNoStep
	}
	return nil
}

func (c *Controller) isFirstLocked() bool {
	if len(c.wizard.Steps) == 0 {
		return true
	}
	return c.step.StepNumber <= c.wizard.Steps[0].StepNumber
}

func (c *Controller) validateLocked() (validation.Errors, error) {
	visible, err := visibility.Filter(c.step, c.values, c.evaluator)
	if err != nil {
		return nil, fmt.Errorf("wizard: evaluate visibility: %w", err)
	}
	return c.validator.Validate(visible, c.values), nil
}

func (c *Controller) saveStep(ctx context.Context, step model.Step, values model.Values) error {
	err := c.call(ctx, OpSaveStep, func() error {
		return c.backend.SaveStep(ctx, c.providerServiceID, step.ID, values)
	})
	if err == nil {
		return nil
	}

	var fieldErr FieldErrorer
	if errors.As(err, &fieldErr) {
		mapping := render.MapErrorPayload(step, fieldErr.FieldErrors())
		if !mapping.Empty() {
			c.mu.Lock()
			for key, message := range mapping.First() {
				c.errors[key] = message
			}
			c.formErrors = mapping.Form
			errs := c.errors.Clone()
			c.mu.Unlock()
			c.finish(ctx, StatusStepLoaded, nil)
			return &ValidationError{Errors: errs, Form: mapping.Form, Err: err}
		}
	}
	return c.fail(ctx, fmt.Errorf("wizard: save step %d: %w", step.ID, err))
}

func (c *Controller) moveTo(ctx context.Context, number int) error {
	c.mu.Lock()
	target, ok := c.wizard.StepByNumber(number)
	c.mu.Unlock()
	if !ok {
		return c.fail(ctx, fmt.Errorf("%w: backend reported step %d", ErrStepNotFound, number))
	}

	detail, step, err := c.fetchStep(ctx, target)
	if err != nil {
		return c.fail(ctx, err)
	}
	c.mu.Lock()
	c.installLocked(step, detail)
	c.mu.Unlock()

	c.finish(ctx, StatusStepLoaded, nil)
	return nil
}

func (c *Controller) fetchStep(ctx context.Context, target model.Step) (model.StepDetail, model.Step, error) {
	var detail model.StepDetail
	err := c.call(ctx, OpFetchStep, func() error {
		var fetchErr error
		detail, fetchErr = c.backend.FetchStep(ctx, c.providerServiceID, target.ID)
		return fetchErr
	})
	if err != nil {
		return detail, model.Step{}, fmt.Errorf("wizard: load step %d: %w", target.ID, err)
	}

	step := detail.Step
	if step.ID == 0 && len(step.Fields) == 0 {
		step = target
	}
	if step.ID == 0 {
		step.ID = target.ID
	}
	if step.StepNumber == 0 {
		step.StepNumber = target.StepNumber
	}

	step, err = c.builder.BuildStep(step)
	if err != nil {
		return detail, model.Step{}, fmt.Errorf("wizard: invalid step %d: %w", target.ID, err)
	}
	for _, decorator := range c.decorators {
		if err := decorator.Decorate(&step); err != nil {
			return detail, model.Step{}, fmt.Errorf("wizard: decorate step %d: %w", target.ID, err)
		}
	}
	return detail, step, nil
}

func (c *Controller) installLocked(step model.Step, detail model.StepDetail) {
	c.step = step
	c.hasStep = true
	c.stepComplete = detail.IsComplete
	c.values = model.WithDefaults(step, detail.SavedData)
	c.errors = make(validation.Errors)
	c.formErrors = nil
}

// begin claims the busy flag and moves to status. check runs under the lock
// first; its error aborts the operation without a transition.
func (c *Controller) begin(ctx context.Context, status Status, check func() error) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	if check != nil {
		if err := check(); err != nil {
			c.mu.Unlock()
			return err
		}
	}
	c.busy = true
	from := c.status
	c.status = status
	step := c.step.StepNumber
	c.mu.Unlock()

	c.emitTransition(ctx, from, status, step, nil)
	return nil
}

func (c *Controller) finish(ctx context.Context, status Status, err error) {
	c.mu.Lock()
	from := c.status
	c.status = status
	c.busy = false
	c.lastErr = err
	step := c.step.StepNumber
	c.mu.Unlock()

	c.emitTransition(ctx, from, status, step, err)
}

// fail records err, keeps the current step and values, and returns err.
func (c *Controller) fail(ctx context.Context, err error) error {
	c.logger.WithFields(logrus.Fields{
		"provider_service_id": c.providerServiceID,
		"error":               err.Error(),
	}).Warn("wizard operation failed")
	c.finish(ctx, StatusError, err)
	return err
}

func (c *Controller) call(ctx context.Context, op string, fn func() error) error {
	start := c.now()
	err := fn()
	elapsed := c.now().Sub(start)

	c.logger.WithFields(logrus.Fields{
		"provider_service_id": c.providerServiceID,
		"operation":           op,
		"duration":            elapsed,
	}).Debug("backend call")

	if c.hooks.OnBackendCall != nil {
		c.hooks.OnBackendCall(ctx, &BackendCallEvent{
			ProviderServiceID: c.providerServiceID,
			Operation:         op,
			Duration:          elapsed,
			Err:               err,
		})
	}
	return err
}

func (c *Controller) emitTransition(ctx context.Context, from, to Status, step int, err error) {
	if from == to && err == nil {
		return
	}
	c.logger.WithFields(logrus.Fields{
		"provider_service_id": c.providerServiceID,
		"from":                from,
		"to":                  to,
		"step":                step,
	}).Debug("wizard transition")

	if c.hooks.OnTransition != nil {
		c.hooks.OnTransition(ctx, &TransitionEvent{
			ProviderServiceID: c.providerServiceID,
			From:              from,
			To:                to,
			StepNumber:        step,
			Err:               err,
		})
	}
}
