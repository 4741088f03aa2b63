package wizard_test

import (
	"context"
	"errors"
	"sync"

	"github.com/waggy/go-wizard/pkg/model"
)

var errNetwork = errors.New("network down")

type saveCall struct {
	StepID int64
	Values model.Values
}

// fakeBackend keeps wizard progress in memory and records every call.
type fakeBackend struct {
	mu        sync.Mutex
	wizard    model.Wizard
	saved     map[int64]model.Values
	current   int
	calls     []string
	saves     []saveCall
	completed bool

	failOn    map[string]error
	saveErr   error
	nextTo    int
	blockSave chan struct{}
	saving    chan struct{}
}

func newFakeBackend(wizard model.Wizard) *fakeBackend {
	return &fakeBackend{
		wizard:  wizard,
		saved:   make(map[int64]model.Values),
		current: wizard.ProviderService.CurrentStep,
		failOn:  make(map[string]error),
	}
}

func (b *fakeBackend) record(op string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, op)
	return b.failOn[op]
}

func (b *fakeBackend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *fakeBackend) FetchWizard(_ context.Context, _ int64) (model.Wizard, error) {
	if err := b.record("fetch_wizard"); err != nil {
		return model.Wizard{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	wiz := b.wizard
	wiz.ProviderService.CurrentStep = b.current
	return wiz, nil
}

func (b *fakeBackend) FetchStep(_ context.Context, _ int64, stepID int64) (model.StepDetail, error) {
	if err := b.record("fetch_step"); err != nil {
		return model.StepDetail{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	step, ok := b.wizard.StepByID(stepID)
	if !ok {
		return model.StepDetail{}, errors.New("unknown step")
	}
	_, done := b.saved[stepID]
	return model.StepDetail{Step: step, SavedData: b.saved[stepID].Clone(), IsComplete: done}, nil
}

func (b *fakeBackend) SaveStep(ctx context.Context, _ int64, stepID int64, values model.Values) error {
	if b.saving != nil {
		b.saving <- struct{}{}
	}
	if b.blockSave != nil {
		select {
		case <-b.blockSave:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := b.record("save_step"); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.saveErr != nil {
		return b.saveErr
	}
	b.saves = append(b.saves, saveCall{StepID: stepID, Values: values.Clone()})
	b.saved[stepID] = values.Clone()
	return nil
}

func (b *fakeBackend) NextStep(_ context.Context, _ int64) (int, error) {
	if err := b.record("next_step"); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.nextTo != 0 {
		b.current = b.nextTo
	} else {
		b.current++
	}
	return b.current, nil
}

func (b *fakeBackend) PreviousStep(_ context.Context, _ int64) (int, error) {
	if err := b.record("previous_step"); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current > 1 {
		b.current--
	}
	return b.current, nil
}

func (b *fakeBackend) CompleteWizard(_ context.Context, _ int64) error {
	if err := b.record("complete_wizard"); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.completed = true
	return nil
}

type fieldError struct {
	fields map[string][]string
}

func (e fieldError) Error() string { return "unprocessable entity" }
func (e fieldError) FieldErrors() map[string][]string { return e.fields }

func strptr(s string) *string { return &s }

func threeStepWizard() model.Wizard {
	return model.Wizard{
		ServiceType:     model.ServiceType{ID: 7, Slug: "dog-walking", Name: model.Text("Dog walking")},
		ProviderService: model.ProviderService{ID: 42, CurrentStep: 1, TotalSteps: 3},
		Steps: []model.Step{
			{ID: 11, StepNumber: 1, Title: model.Text("Basics"), Fields: []model.Field{
				{Key: "title", Type: model.FieldTypeText, Required: true, Active: true},
				{Key: "has_yard", Type: model.FieldTypeSelect, Active: true, Options: []model.Option{{Value: "yes"}, {Value: "no"}}},
				{Key: "yard_size", Type: model.FieldTypeNumber, Required: true, Active: true, DependsOnField: "has_yard", DependsOnValue: strptr("yes")},
			}},
			{ID: 12, StepNumber: 2, Title: model.Text("Pricing"), Fields: []model.Field{
				{Key: "rate", Type: model.FieldTypeCurrency, Required: true, Active: true, DefaultValue: float64(20)},
				{Key: "extras", Type: model.FieldTypeMultiselect, Active: true, Options: []model.Option{{Value: "brush"}, {Value: "bath"}}},
			}},
			{ID: 13, StepNumber: 3, Title: model.Text("Terms"), Fields: []model.Field{
				{Key: "agree", Type: model.FieldTypeCheckbox, Required: true, Active: true},
			}},
		},
	}
}
