package wizard

import (
	"github.com/sirupsen/logrus"

	"github.com/waggy/go-wizard/pkg/model"
	"github.com/waggy/go-wizard/pkg/validation"
	"github.com/waggy/go-wizard/pkg/visibility"
)

// Snapshot is an immutable copy of the controller state for rendering.
type Snapshot struct {
	ProviderServiceID int64
	Status            Status
	Busy              bool
	ServiceType       model.ServiceType
	HasStep           bool
	Step              model.Step
	StepComplete      bool
	TotalSteps        int
	IsFirst           bool
	IsLast            bool
	Values            model.Values
	Visible           []model.Field
	Errors            validation.Errors
	FormErrors        []string
	Err               error
}

// Snapshot copies the current state. Visible is evaluated fresh from the
// current values.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		ProviderServiceID: c.providerServiceID,
		Status:            c.status,
		Busy:              c.busy,
		ServiceType:       c.wizard.ServiceType,
		HasStep:           c.hasStep,
		Step:              c.step,
		StepComplete:      c.stepComplete,
		TotalSteps:        c.wizard.TotalSteps(),
		Values:            c.values.Clone(),
		Errors:            c.errors.Clone(),
		FormErrors:        append([]string(nil), c.formErrors...),
		Err:               c.lastErr,
	}
	if !c.hasStep {
		return snap
	}

	snap.IsFirst = c.isFirstLocked()
	snap.IsLast = c.step.StepNumber == snap.TotalSteps
	visible, err := visibility.Filter(c.step, c.values, c.evaluator)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"provider_service_id": c.providerServiceID,
			"error":               err.Error(),
		}).Warn("visibility evaluation failed")
		return snap
	}
	snap.Visible = visible
	return snap
}

// Value returns a field value from the snapshot.
func (s Snapshot) Value(key string) any {
	return s.Values[key]
}
