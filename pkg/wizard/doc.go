// Package wizard sequences the steps of a provider-onboarding wizard against
// a remote backend. Controller is an explicit state machine: it loads the
// definition, keeps the current step's values and errors, validates visible
// fields before advancing and lets the backend decide which step comes next.
package wizard
