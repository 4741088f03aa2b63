package memory

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/waggy/go-wizard/pkg/client"
	"github.com/waggy/go-wizard/pkg/model"
)

type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// Handler exposes the backend over the wizard HTTP API.
func (b *Backend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(client.Document())
	})

	r.Route("/provider-services/{id}/wizard", func(r chi.Router) {
		r.Use(b.authenticate)
		r.Get("/", b.handleWizard)
		r.Get("/steps/{stepID}", b.handleStep)
		r.Put("/steps/{stepID}", b.handleSave)
		r.Post("/next", b.handleNext)
		r.Post("/previous", b.handlePrevious)
		r.Post("/complete", b.handleComplete)
	})
	return r
}

func (b *Backend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.token != "" {
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if got != b.token {
				writeError(w, http.StatusUnauthorized, "missing or invalid token", nil)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) handleWizard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	wiz, err := b.FetchWizard(r.Context(), id)
	if err != nil {
		b.writeBackendError(w, err)
		return
	}
	writeData(w, wiz)
}

func (b *Backend) handleStep(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	stepID, ok := pathID(w, r, "stepID")
	if !ok {
		return
	}
	detail, err := b.FetchStep(r.Context(), id, stepID)
	if err != nil {
		b.writeBackendError(w, err)
		return
	}
	writeData(w, detail)
}

func (b *Backend) handleSave(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	stepID, ok := pathID(w, r, "stepID")
	if !ok {
		return
	}

	var body struct {
		Data model.Values `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := b.SaveStep(r.Context(), id, stepID, body.Data); err != nil {
		b.writeBackendError(w, err)
		return
	}
	writeData(w, map[string]any{"saved": true})
}

func (b *Backend) handleNext(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	current, err := b.NextStep(r.Context(), id)
	if err != nil {
		b.writeBackendError(w, err)
		return
	}
	writeData(w, map[string]any{"current_step": current})
}

func (b *Backend) handlePrevious(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	current, err := b.PreviousStep(r.Context(), id)
	if err != nil {
		b.writeBackendError(w, err)
		return
	}
	writeData(w, map[string]any{"current_step": current})
}

func (b *Backend) handleComplete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := b.CompleteWizard(r.Context(), id); err != nil {
		b.writeBackendError(w, err)
		return
	}
	writeData(w, map[string]any{"completed": true})
}

func (b *Backend) writeBackendError(w http.ResponseWriter, err error) {
	var fieldErr *FieldError
	switch {
	case errors.As(err, &fieldErr):
		writeError(w, http.StatusUnprocessableEntity, "validation failed", fieldErr.Fields)
	case errors.Is(err, ErrUnknownStep):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, ErrCompleted):
		writeError(w, http.StatusConflict, err.Error(), nil)
	default:
		b.logger.WithError(err).Error("backend request failed")
		writeError(w, http.StatusInternalServerError, "internal error", nil)
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name, nil)
		return 0, false
	}
	return id, true
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string, fields map[string][]string) {
	writeJSON(w, status, errorBody{Message: message, Errors: fields})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
