package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/waggy/go-wizard/pkg/client"
	"github.com/waggy/go-wizard/pkg/model"
)

const wizardPayload = `{
  "success": true,
  "data": {
    "service_type": {"id": 7, "slug": "dog-walking", "name": {"en": "Dog walking", "ar": "تمشية الكلاب"}},
    "provider_service": {"id": 42, "current_step": 2, "total_steps": 2, "status": "draft"},
    "steps": [
      {"id": 11, "step_number": 1, "title": "Basics", "fields": [
        {"key": "title", "type": "text", "label": "Title", "required": true, "active": true}
      ]},
      {"id": 12, "step_number": 2, "title": {"en": "Pricing"}, "fields": [
        {"key": "rate", "type": "currency", "required": true, "active": true, "min_value": 5, "default_value": 20}
      ]}
    ]
  }
}`

type recorded struct {
	Method string
	Path   string
	Auth   string
	Body   string
}

func newServer(t *testing.T, routes map[string]func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *[]recorded) {
	t.Helper()
	var calls []recorded
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization"), Body: string(body)})
		handler, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func respond(status int, body string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestClient_FetchWizardUnwrapsEnvelope(t *testing.T) {
	server, calls := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /api/provider-services/42/wizard": respond(http.StatusOK, wizardPayload),
	})
	c, err := client.New(server.URL+"/api/", client.WithToken("secret"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	wiz, err := c.FetchWizard(context.Background(), 42)
	if err != nil {
		t.Fatalf("fetch wizard: %v", err)
	}
	if wiz.ProviderService.CurrentStep != 2 || len(wiz.Steps) != 2 {
		t.Fatalf("unexpected wizard: %+v", wiz)
	}
	if wiz.Steps[1].Fields[0].DefaultValue != float64(20) || *wiz.Steps[1].Fields[0].MinValue != 5 {
		t.Fatalf("unexpected field decode: %+v", wiz.Steps[1].Fields[0])
	}
	if got := wiz.ServiceType.Name.Resolve("ar", "en"); got != "تمشية الكلاب" {
		t.Fatalf("localized name: %q", got)
	}
	if (*calls)[0].Auth != "Bearer secret" {
		t.Fatalf("expected bearer token, got %q", (*calls)[0].Auth)
	}
}

func TestClient_FetchStepShapes(t *testing.T) {
	server, _ := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /provider-services/42/wizard/steps/12": respond(http.StatusOK, `{"data":{"step":{"id":12,"step_number":2,"fields":[{"key":"rate","type":"currency","active":true}]},"saved_data":{"rate":35},"is_complete":true}}`),
		"GET /provider-services/42/wizard/steps/13": respond(http.StatusOK, `{"id":13,"step_number":3,"fields":[{"key":"agree","type":"checkbox","active":true}],"saved_data":{"agree":true}}`),
	})
	c, err := client.New(server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	detail, err := c.FetchStep(context.Background(), 42, 12)
	if err != nil {
		t.Fatalf("fetch wrapped step: %v", err)
	}
	if detail.Step.ID != 12 || !detail.IsComplete {
		t.Fatalf("unexpected detail: %+v", detail)
	}
	if diff := cmp.Diff(model.Values{"rate": float64(35)}, detail.SavedData); diff != "" {
		t.Fatalf("saved data mismatch (-want +got):\n%s", diff)
	}

	flat, err := c.FetchStep(context.Background(), 42, 13)
	if err != nil {
		t.Fatalf("fetch flat step: %v", err)
	}
	if flat.Step.ID != 13 || flat.SavedData["agree"] != true {
		t.Fatalf("unexpected flat detail: %+v", flat)
	}
}

func TestClient_SaveAndNavigate(t *testing.T) {
	server, calls := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"PUT /provider-services/42/wizard/steps/11":  respond(http.StatusOK, `{"success":true}`),
		"POST /provider-services/42/wizard/next":     respond(http.StatusOK, `{"success":true,"data":{"current_step":2}}`),
		"POST /provider-services/42/wizard/previous": respond(http.StatusOK, `{"current_step":1}`),
		"POST /provider-services/42/wizard/complete": respond(http.StatusNoContent, ``),
	})
	c, err := client.New(server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx := context.Background()

	if err := c.SaveStep(ctx, 42, 11, model.Values{"title": "Walks"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	var sent map[string]map[string]any
	if err := json.Unmarshal([]byte((*calls)[0].Body), &sent); err != nil {
		t.Fatalf("decode sent body: %v", err)
	}
	if sent["data"]["title"] != "Walks" {
		t.Fatalf("unexpected save body: %s", (*calls)[0].Body)
	}

	next, err := c.NextStep(ctx, 42)
	if err != nil || next != 2 {
		t.Fatalf("next: %d, %v", next, err)
	}
	prev, err := c.PreviousStep(ctx, 42)
	if err != nil || prev != 1 {
		t.Fatalf("previous: %d, %v", prev, err)
	}
	if err := c.CompleteWizard(ctx, 42); err != nil {
		t.Fatalf("complete: %v", err)
	}
}

func TestClient_APIErrors(t *testing.T) {
	server, _ := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"PUT /provider-services/42/wizard/steps/11": respond(http.StatusUnprocessableEntity, `{"message":"Validation failed","errors":{"title":["Title is taken"],"rate":"Too low"}}`),
		"GET /provider-services/42/wizard":          respond(http.StatusUnauthorized, `{"error":"token expired"}`),
		"POST /provider-services/42/wizard/next":    respond(http.StatusOK, `{"success":true}`),
	})
	c, err := client.New(server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx := context.Background()

	err = c.SaveStep(ctx, 42, 11, model.Values{})
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	want := map[string][]string{"title": {"Title is taken"}, "rate": {"Too low"}}
	if diff := cmp.Diff(want, apiErr.FieldErrors()); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	if apiErr.Message != "Validation failed" || apiErr.Temporary() {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}

	if _, err := c.FetchWizard(ctx, 42); !errors.Is(err, client.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := c.FetchStep(ctx, 42, 99); !errors.Is(err, client.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := c.NextStep(ctx, 42); !errors.Is(err, client.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestClient_ContractValidation(t *testing.T) {
	server, _ := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /provider-services/42/wizard":       respond(http.StatusOK, wizardPayload),
		"GET /provider-services/43/wizard":       respond(http.StatusOK, `{"data":{"steps":[{"id":"eleven","step_number":1}]}}`),
		"POST /provider-services/42/wizard/next": respond(http.StatusOK, `{"current_step":"two"}`),
	})
	contract, err := client.DefaultContract(context.Background())
	if err != nil {
		t.Fatalf("load contract: %v", err)
	}
	c, err := client.New(server.URL, client.WithContract(contract))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx := context.Background()

	if _, err := c.FetchWizard(ctx, 42); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}
	var contractErr *client.ContractError
	if _, err := c.FetchWizard(ctx, 43); !errors.As(err, &contractErr) {
		t.Fatalf("expected ContractError, got %v", err)
	}
	if _, err := c.NextStep(ctx, 42); !errors.As(err, &contractErr) {
		t.Fatalf("expected ContractError for next, got %v", err)
	}
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	if _, err := client.New(""); err == nil {
		t.Fatalf("expected error for empty URL")
	}
	if _, err := client.New("ftp://example.com"); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
}
