package wizard_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/waggy/go-wizard/pkg/model"
	"github.com/waggy/go-wizard/pkg/validation"
	"github.com/waggy/go-wizard/pkg/wizard"
)

func loaded(t *testing.T, backend *fakeBackend, opts ...wizard.Option) *wizard.Controller {
	t.Helper()
	ctrl := wizard.New(backend, 42, opts...)
	if err := ctrl.LoadWizard(context.Background()); err != nil {
		t.Fatalf("load wizard: %v", err)
	}
	return ctrl
}

func TestLoadWizard_SelectsCurrentStepAndOverlaysDefaults(t *testing.T) {
	backend := newFakeBackend(threeStepWizard())
	backend.current = 2
	backend.saved[12] = model.Values{"extras": []any{"bath"}}

	ctrl := loaded(t, backend)
	snap := ctrl.Snapshot()

	if snap.Status != wizard.StatusStepLoaded || snap.Step.ID != 12 {
		t.Fatalf("unexpected state: %s step %d", snap.Status, snap.Step.ID)
	}
	want := model.Values{"rate": float64(20), "extras": []any{"bath"}}
	if diff := cmp.Diff(want, snap.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if snap.TotalSteps != 3 || snap.IsFirst || snap.IsLast {
		t.Fatalf("unexpected position: %+v", snap)
	}
}

func TestLoadWizard_UnknownCurrentStepFallsBackToFirst(t *testing.T) {
	backend := newFakeBackend(threeStepWizard())
	backend.current = 0

	snap := loaded(t, backend).Snapshot()
	if snap.Step.StepNumber != 1 || !snap.IsFirst {
		t.Fatalf("expected first step, got %d", snap.Step.StepNumber)
	}
}

func TestLoadWizard_NoStepsIsAnError(t *testing.T) {
	backend := newFakeBackend(model.Wizard{})
	ctrl := wizard.New(backend, 42)

	err := ctrl.LoadWizard(context.Background())
	if !errors.Is(err, wizard.ErrNoSteps) {
		t.Fatalf("expected ErrNoSteps, got %v", err)
	}
	if ctrl.Status() != wizard.StatusError || !errors.Is(ctrl.LastError(), wizard.ErrNoSteps) {
		t.Fatalf("expected error status, got %s / %v", ctrl.Status(), ctrl.LastError())
	}
}

func TestSave_ValidationBlocksAdvanceWithoutIO(t *testing.T) {
	backend := newFakeBackend(threeStepWizard())
	ctrl := loaded(t, backend)
	ctrl.OnFieldChange("has_yard", "yes")

	err := ctrl.Save(context.Background(), true)
	var vErr *wizard.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := validation.Errors{"title": validation.CodeRequired, "yard_size": validation.CodeRequired}
	if diff := cmp.Diff(want, vErr.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	snap := ctrl.Snapshot()
	if snap.Status != wizard.StatusStepLoaded || snap.Step.StepNumber != 1 {
		t.Fatalf("state must not change: %s step %d", snap.Status, snap.Step.StepNumber)
	}
	if diff := cmp.Diff(want, snap.Errors); diff != "" {
		t.Fatalf("snapshot errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"fetch_wizard", "fetch_step"}, backend.Calls()); diff != "" {
		t.Fatalf("unexpected backend calls (-want +got):\n%s", diff)
	}
}

func TestSave_HiddenRequiredFieldDoesNotBlock(t *testing.T) {
	backend := newFakeBackend(threeStepWizard())
	ctrl := loaded(t, backend)
	ctrl.OnFieldChange("title", "Evening walks")
	ctrl.OnFieldChange("has_yard", "no")

	if err := ctrl.Save(context.Background(), true); err != nil {
		t.Fatalf("save: %v", err)
	}
	snap := ctrl.Snapshot()
	if snap.Step.StepNumber != 2 {
		t.Fatalf("expected to advance to step 2, got %d", snap.Step.StepNumber)
	}
	if diff := cmp.Diff(model.Values{"title": "Evening walks", "has_yard": "no"}, backend.saves[0].Values); diff != "" {
		t.Fatalf("saved values mismatch (-want +got):\n%s", diff)
	}
	want := []string{"fetch_wizard", "fetch_step", "save_step", "next_step", "fetch_step"}
	if diff := cmp.Diff(want, backend.Calls()); diff != "" {
		t.Fatalf("backend calls mismatch (-want +got):\n%s", diff)
	}
}

func TestSave_LastStepCompletesWizard(t *testing.T) {
	backend := newFakeBackend(threeStepWizard())
	backend.current = 3
	ctrl := loaded(t, backend)
	ctrl.OnFieldChange("agree", true)

	if err := ctrl.Save(context.Background(), true); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ctrl.Status() != wizard.StatusCompleted || !backend.completed {
		t.Fatalf("expected completed wizard, status %s", ctrl.Status())
	}
	for _, call := range backend.Calls() {
		if call == "next_step" {
			t.Fatalf("next_step must not be called on the last step")
		}
	}
	if err := ctrl.Save(context.Background(), false); !errors.Is(err, wizard.ErrCompleted) {
		t.Fatalf("expected ErrCompleted after completion, got %v", err)
	}
}

func TestSave_WithoutAdvanceSkipsValidation(t *testing.T) {
	backend := newFakeBackend(threeStepWizard())
	ctrl := loaded(t, backend)

	if err := ctrl.Save(context.Background(), false); err != nil {
		t.Fatalf("save draft: %v", err)
	}
	snap := ctrl.Snapshot()
	if snap.Status != wizard.StatusStepLoaded || snap.Step.StepNumber != 1 {
		t.Fatalf("expected to stay on step 1, got %s %d", snap.Status, snap.Step.StepNumber)
	}
	if len(backend.saves) != 1 {
		t.Fatalf("expected one save, got %d", len(backend.saves))
	}
}

func TestOnFieldChange_ClearsErrorAndIsIdempotent(t *testing.T) {
	backend := newFakeBackend(threeStepWizard())
	ctrl := loaded(t, backend)
	_ = ctrl.Save(context.Background(), true)

	ctrl.OnFieldChange("title", "Walks")
	first := ctrl.Snapshot()
	if first.Errors.Has("title") {
		t.Fatalf("error for changed field must clear")
	}

	ctrl.OnFieldChange("title", "Walks")
	second := ctrl.Snapshot()
	if diff := cmp.Diff(first.Values, second.Values); diff != "" {
		t.Fatalf("values changed on repeat (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(first.Errors, second.Errors); diff != "" {
		t.Fatalf("errors changed on repeat (-want +got):\n%s", diff)
	}
}

func TestToggleOption_RoundTrip(t *testing.T) {
	backend := newFakeBackend(threeStepWizard())
	backend.current = 2
	backend.saved[12] = model.Values{"extras": []any{"brush"}}
	ctrl := loaded(t, backend)

	ctrl.ToggleOption("extras", "bath")
	ctrl.ToggleOption("extras", "bath")
	if diff := cmp.Diff([]any{"brush"}, ctrl.Snapshot().Value("extras")); diff != "" {
		t.Fatalf("extras mismatch (-want +got):\n%s", diff)
	}
}

func TestNetworkFailure_KeepsStepAndValues(t *testing.T) {
	backend := newFakeBackend(threeStepWizard())
	ctrl := loaded(t, backend)
	ctrl.OnFieldChange("title", "Walks")
	backend.saveErr = errNetwork

	err := ctrl.Save(context.Background(), true)
	if !errors.Is(err, errNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	snap := ctrl.Snapshot()
	if snap.Status != wizard.StatusError || snap.Step.StepNumber != 1 || snap.Values["title"] != "Walks" {
		t.Fatalf("unexpected state after failure: %+v", snap)
	}

	ctrl.Dismiss(context.Background())
	if ctrl.Status() != wizard.StatusStepLoaded || ctrl.LastError() != nil {
		t.Fatalf("dismiss should return to the loaded step")
	}

	backend.saveErr = nil
	if err := ctrl.Save(context.Background(), true); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if ctrl.Snapshot().Step.StepNumber != 2 {
		t.Fatalf("expected advance after resubmit")
	}
}

func TestRetry_ReloadsWizard(t *testing.T) {
	backend := newFakeBackend(threeStepWizard())
	backend.failOn["fetch_wizard"] = errNetwork
	ctrl := wizard.New(backend, 42)

	if err := ctrl.LoadWizard(context.Background()); !errors.Is(err, errNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	delete(backend.failOn, "fetch_wizard")
	if err := ctrl.Retry(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if ctrl.Status() != wizard.StatusStepLoaded {
		t.Fatalf("expected step loaded, got %s", ctrl.Status())
	}
}

func TestBack_SavesWithoutValidationAndRetreats(t *testing.T) {
	backend := newFakeBackend(threeStepWizard())
	backend.current = 2
	ctrl := loaded(t, backend)
	ctrl.OnFieldChange("rate", "not a number")

	if err := ctrl.Back(context.Background()); err != nil {
		t.Fatalf("back: %v", err)
	}
	snap := ctrl.Snapshot()
	if snap.Step.StepNumber != 1 {
		t.Fatalf("expected step 1, got %d", snap.Step.StepNumber)
	}
	if backend.saves[0].Values["rate"] != "not a number" {
		t.Fatalf("back must persist current values")
	}
	if err := ctrl.Back(context.Background()); !errors.Is(err, wizard.ErrNoPreviousStep) {
		t.Fatalf("expected ErrNoPreviousStep, got %v", err)
	}
}

func TestSave_BackendFieldErrorsBecomeValidationErrors(t *testing.T) {
	backend := newFakeBackend(threeStepWizard())
	ctrl := loaded(t, backend)
	ctrl.OnFieldChange("title", "x")
	backend.saveErr = fieldError{fields: map[string][]string{
		"data.title": {"Title is too short"},
		"base":       {"Listing is locked"},
	}}

	err := ctrl.Save(context.Background(), true)
	var vErr *wizard.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Errors["title"] != "Title is too short" {
		t.Fatalf("unexpected field errors: %v", vErr.Errors)
	}
	snap := ctrl.Snapshot()
	if snap.Status != wizard.StatusStepLoaded {
		t.Fatalf("expected step_loaded, got %s", snap.Status)
	}
	if diff := cmp.Diff([]string{"Listing is locked"}, snap.FormErrors); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestSave_UnknownNextStepIsAnError(t *testing.T) {
	backend := newFakeBackend(threeStepWizard())
	backend.nextTo = 9
	ctrl := loaded(t, backend)
	ctrl.OnFieldChange("title", "Walks")

	if err := ctrl.Save(context.Background(), true); !errors.Is(err, wizard.ErrStepNotFound) {
		t.Fatalf("expected ErrStepNotFound, got %v", err)
	}
	if ctrl.Status() != wizard.StatusError {
		t.Fatalf("expected error status, got %s", ctrl.Status())
	}
}

func TestSave_ConcurrentCallIsRejected(t *testing.T) {
	backend := newFakeBackend(threeStepWizard())
	ctrl := loaded(t, backend)
	backend.blockSave = make(chan struct{})
	backend.saving = make(chan struct{}, 1)

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		firstErr = ctrl.Save(context.Background(), false)
	}()

	select {
	case <-backend.saving:
	case <-time.After(2 * time.Second):
		t.Fatalf("save never reached the backend")
	}
	if ctrl.Status() != wizard.StatusSaving {
		t.Fatalf("expected saving status, got %s", ctrl.Status())
	}
	if err := ctrl.Save(context.Background(), false); !errors.Is(err, wizard.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if err := ctrl.LoadWizard(context.Background()); !errors.Is(err, wizard.ErrBusy) {
		t.Fatalf("expected ErrBusy for load, got %v", err)
	}

	close(backend.blockSave)
	wg.Wait()
	if firstErr != nil {
		t.Fatalf("first save: %v", firstErr)
	}
}

func TestHooks_ObserveTransitionsAndCalls(t *testing.T) {
	backend := newFakeBackend(threeStepWizard())
	var (
		transitions []string
		ops         []string
	)
	hooks := wizard.Hooks{
		OnTransition: func(_ context.Context, e *wizard.TransitionEvent) {
			transitions = append(transitions, string(e.From)+">"+string(e.To))
		},
		OnBackendCall: func(_ context.Context, e *wizard.BackendCallEvent) {
			ops = append(ops, e.Operation)
		},
	}
	ctrl := loaded(t, backend, wizard.WithHooks(hooks))
	ctrl.OnFieldChange("title", "Walks")
	if err := ctrl.Save(context.Background(), true); err != nil {
		t.Fatalf("save: %v", err)
	}

	wantTransitions := []string{"idle>loading", "loading>step_loaded", "step_loaded>saving", "saving>step_loaded"}
	if diff := cmp.Diff(wantTransitions, transitions); diff != "" {
		t.Fatalf("transitions mismatch (-want +got):\n%s", diff)
	}
	wantOps := []string{wizard.OpFetchWizard, wizard.OpFetchStep, wizard.OpSaveStep, wizard.OpNextStep, wizard.OpFetchStep}
	if diff := cmp.Diff(wantOps, ops); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
}

func TestRestore_OverlaysDraft(t *testing.T) {
	backend := newFakeBackend(threeStepWizard())
	ctrl := loaded(t, backend)

	if err := ctrl.Restore(99, model.Values{"title": "x"}, nil); !errors.Is(err, wizard.ErrStepMismatch) {
		t.Fatalf("expected ErrStepMismatch, got %v", err)
	}
	if err := ctrl.Restore(11, model.Values{"title": "Draft"}, map[string]string{"has_yard": "required"}); err != nil {
		t.Fatalf("restore: %v", err)
	}
	snap := ctrl.Snapshot()
	if snap.Values["title"] != "Draft" || snap.Errors["has_yard"] != "required" {
		t.Fatalf("draft not applied: %+v", snap)
	}
}

func TestDecorators_RunAfterFetch(t *testing.T) {
	backend := newFakeBackend(threeStepWizard())
	hideYard := model.DecoratorFunc(func(step *model.Step) error {
		for i := range step.Fields {
			if step.Fields[i].Key == "has_yard" {
				step.Fields[i].Active = false
			}
		}
		return nil
	})
	snap := loaded(t, backend, wizard.WithDecorators(hideYard)).Snapshot()
	for _, field := range snap.Visible {
		if field.Key == "has_yard" {
			t.Fatalf("decorated field should be hidden")
		}
	}
}
