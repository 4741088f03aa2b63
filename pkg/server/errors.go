package server

import (
	"errors"
	"net/http"

	"github.com/waggy/go-wizard/pkg/wizard"
)

// ErrStaleForm reports a form posted for a step that is no longer loaded.
var ErrStaleForm = errors.New("server: form belongs to another step")

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case wizard.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, wizard.ErrBusy), errors.Is(err, ErrStaleForm),
		errors.Is(err, wizard.ErrCompleted), errors.Is(err, wizard.ErrNoPreviousStep):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}
