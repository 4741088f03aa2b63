package wizard

import (
	"context"

	"github.com/waggy/go-wizard/pkg/model"
)

// Backend is the remote API that owns wizard progress. NextStep and
// PreviousStep return the backend's new current step number.
type Backend interface {
	FetchWizard(ctx context.Context, providerServiceID int64) (model.Wizard, error)
	FetchStep(ctx context.Context, providerServiceID, stepID int64) (model.StepDetail, error)
	SaveStep(ctx context.Context, providerServiceID, stepID int64, values model.Values) error
	NextStep(ctx context.Context, providerServiceID int64) (int, error)
	PreviousStep(ctx context.Context, providerServiceID int64) (int, error)
	CompleteWizard(ctx context.Context, providerServiceID int64) error
}

// Backend operation names reported to hooks.
const (
	OpFetchWizard    = "fetch_wizard"
	OpFetchStep      = "fetch_step"
	OpSaveStep       = "save_step"
	OpNextStep       = "next_step"
	OpPreviousStep   = "previous_step"
	OpCompleteWizard = "complete_wizard"
)
