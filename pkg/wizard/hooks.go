package wizard

import (
	"context"
	"time"
)

// TransitionEvent describes a status change.
type TransitionEvent struct {
	ProviderServiceID int64
	From              Status
	To                Status
	StepNumber        int
	Err               error
}

// BackendCallEvent describes one completed backend call.
type BackendCallEvent struct {
	ProviderServiceID int64
	Operation         string
	Duration          time.Duration
	Err               error
}

// Hooks observe the controller. Hooks run synchronously on the calling
// goroutine without the controller lock held.
type Hooks struct {
	OnTransition  func(context.Context, *TransitionEvent)
	OnBackendCall func(context.Context, *BackendCallEvent)
}

// Merge returns hooks that call h first and then other.
func (h Hooks) Merge(other Hooks) Hooks {
	return Hooks{
		OnTransition: func(ctx context.Context, e *TransitionEvent) {
			if h.OnTransition != nil {
				h.OnTransition(ctx, e)
			}
			if other.OnTransition != nil {
				other.OnTransition(ctx, e)
			}
		},
		OnBackendCall: func(ctx context.Context, e *BackendCallEvent) {
			if h.OnBackendCall != nil {
				h.OnBackendCall(ctx, e)
			}
			if other.OnBackendCall != nil {
				other.OnBackendCall(ctx, e)
			}
		},
	}
}
