package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/waggy/go-wizard/internal/logging"
	"github.com/waggy/go-wizard/pkg/model"
	"github.com/waggy/go-wizard/pkg/wizard"
)

const defaultUserAgent = "waggy-wizard/1.0"

// Client talks to the backend wizard API over JSON/HTTP.
type Client struct {
	baseURL     *url.URL
	http        *http.Client
	token       string
	tokenSource func() string
	timeout     time.Duration
	contract    *Contract
	userAgent   string
	logger      logrus.FieldLogger
}

var _ wizard.Backend = (*Client)(nil)

// New constructs a client for the API rooted at baseURL.
func New(baseURL string, options ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errors.New("client: base URL is required")
	}
	parsed, err := url.Parse(strings.TrimRight(trimmed, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parse base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("client: unsupported scheme %q", parsed.Scheme)
	}

	c := &Client{
		baseURL:   parsed,
		http:      http.DefaultClient,
		userAgent: defaultUserAgent,
		logger:    logging.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	if c.timeout > 0 && c.http.Timeout == 0 {
		clone := *c.http
		clone.Timeout = c.timeout
		c.http = &clone
	}
	return c, nil
}

// FetchWizard returns the wizard definition with the provider's progress.
func (c *Client) FetchWizard(ctx context.Context, providerServiceID int64) (model.Wizard, error) {
	var wiz model.Wizard
	body, err := c.do(ctx, http.MethodGet, routeWizard, pathParams(providerServiceID, 0), nil)
	if err != nil {
		return wiz, err
	}
	if err := json.Unmarshal(unwrapData(body), &wiz); err != nil {
		return wiz, fmt.Errorf("%w: wizard: %v", ErrMalformedResponse, err)
	}
	return wiz, nil
}

// FetchStep returns one step with the values previously saved for it.
func (c *Client) FetchStep(ctx context.Context, providerServiceID, stepID int64) (model.StepDetail, error) {
	var detail model.StepDetail
	body, err := c.do(ctx, http.MethodGet, routeStep, pathParams(providerServiceID, stepID), nil)
	if err != nil {
		return detail, err
	}

	payload := unwrapData(body)
	if !gjson.GetBytes(payload, "step").Exists() && gjson.GetBytes(payload, "fields").Exists() {
		if err := json.Unmarshal(payload, &detail.Step); err != nil {
			return detail, fmt.Errorf("%w: step: %v", ErrMalformedResponse, err)
		}
		if saved := gjson.GetBytes(payload, "saved_data"); saved.IsObject() {
			if err := json.Unmarshal([]byte(saved.Raw), &detail.SavedData); err != nil {
				return detail, fmt.Errorf("%w: saved data: %v", ErrMalformedResponse, err)
			}
		}
		detail.IsComplete = gjson.GetBytes(payload, "is_complete").Bool()
		return detail, nil
	}
	if err := json.Unmarshal(payload, &detail); err != nil {
		return detail, fmt.Errorf("%w: step: %v", ErrMalformedResponse, err)
	}
	return detail, nil
}

// SaveStep stores values for a step. Saving identical values twice is
// expected to be idempotent on the backend.
func (c *Client) SaveStep(ctx context.Context, providerServiceID, stepID int64, values model.Values) error {
	if values == nil {
		values = model.Values{}
	}
	_, err := c.do(ctx, http.MethodPut, routeStep, pathParams(providerServiceID, stepID), map[string]any{"data": values})
	return err
}

// NextStep asks the backend to advance and returns its new current step.
func (c *Client) NextStep(ctx context.Context, providerServiceID int64) (int, error) {
	body, err := c.do(ctx, http.MethodPost, routeNext, pathParams(providerServiceID, 0), nil)
	if err != nil {
		return 0, err
	}
	return currentStep(body)
}

// PreviousStep asks the backend to retreat and returns its new current step.
func (c *Client) PreviousStep(ctx context.Context, providerServiceID int64) (int, error) {
	body, err := c.do(ctx, http.MethodPost, routePrevious, pathParams(providerServiceID, 0), nil)
	if err != nil {
		return 0, err
	}
	return currentStep(body)
}

// CompleteWizard marks the wizard finished.
func (c *Client) CompleteWizard(ctx context.Context, providerServiceID int64) error {
	_, err := c.do(ctx, http.MethodPost, routeComplete, pathParams(providerServiceID, 0), nil)
	return err
}

func (c *Client) do(ctx context.Context, method, route string, params map[string]string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("client: encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	target := *c.baseURL
	target.Path = c.baseURL.Path + expandRoute(route, params)

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", method, route, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: read %s %s: %w", method, route, err)
	}

	c.logger.WithFields(logrus.Fields{
		"method":   method,
		"route":    route,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	if c.contract != nil {
		if err := c.contract.ValidateResponse(ctx, req, route, params, resp.StatusCode, resp.Header, body); err != nil {
			return nil, err
		}
	}
	return body, nil
}

func (c *Client) bearer() string {
	if c.tokenSource != nil {
		return strings.TrimSpace(c.tokenSource())
	}
	return c.token
}

func pathParams(providerServiceID, stepID int64) map[string]string {
	params := map[string]string{"id": strconv.FormatInt(providerServiceID, 10)}
	if stepID != 0 {
		params["stepID"] = strconv.FormatInt(stepID, 10)
	}
	return params
}

func expandRoute(route string, params map[string]string) string {
	out := route
	for name, value := range params {
		out = strings.ReplaceAll(out, "{"+name+"}", url.PathEscape(value))
	}
	return out
}

// unwrapData strips a {"success":..,"data":{..}} envelope when present.
func unwrapData(body []byte) []byte {
	if data := gjson.GetBytes(body, "data"); data.IsObject() {
		return []byte(data.Raw)
	}
	return body
}

var currentStepPaths = []string{"data.current_step", "current_step", "data.provider_service.current_step", "provider_service.current_step"}

func currentStep(body []byte) (int, error) {
	for _, path := range currentStepPaths {
		if value := gjson.GetBytes(body, path); value.Exists() && value.Type == gjson.Number {
			return int(value.Int()), nil
		}
	}
	return 0, fmt.Errorf("%w: current_step missing", ErrMalformedResponse)
}
