package wizard

// Status is the controller's position in its state machine.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusLoading    Status = "loading"
	StatusStepLoaded Status = "step_loaded"
	StatusSaving     Status = "saving"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Busy reports whether the status blocks new network operations.
func (s Status) Busy() bool {
	return s == StatusLoading || s == StatusSaving
}

func (s Status) String() string { return string(s) }
