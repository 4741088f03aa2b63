// Package session persists unsaved wizard input per browser session so it
// survives page reloads between explicit saves.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/waggy/go-wizard/pkg/model"
)

// ErrNotFound is returned when no draft exists for a session.
var ErrNotFound = errors.New("session: draft not found")

// Draft is the client-side state of one wizard step that the backend has
// not necessarily seen yet.
type Draft struct {
	ProviderServiceID int64             `json:"provider_service_id"`
	StepID            int64             `json:"step_id"`
	Locale            string            `json:"locale,omitempty"`
	Values            model.Values      `json:"values,omitempty"`
	Errors            map[string]string `json:"errors,omitempty"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// Clone returns a copy that shares no maps with d.
func (d Draft) Clone() Draft {
	out := d
	out.Values = d.Values.Clone()
	if d.Errors != nil {
		out.Errors = make(map[string]string, len(d.Errors))
		for k, v := range d.Errors {
			out.Errors[k] = v
		}
	}
	return out
}

// Store persists drafts keyed by session id.
type Store interface {
	Save(ctx context.Context, sessionID string, draft Draft) error
	Load(ctx context.Context, sessionID string) (Draft, error)
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]string, error)
}

// NewID returns a fresh random session identifier.
func NewID() string {
	return uuid.NewString()
}
