package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrUnauthorized matches 401 and 403 responses.
	ErrUnauthorized = errors.New("client: unauthorized")
	// ErrNotFound matches 404 responses.
	ErrNotFound = errors.New("client: not found")
	// ErrMalformedResponse reports a 2xx body that could not be decoded.
	ErrMalformedResponse = errors.New("client: malformed response")
)

// APIError is a non-2xx backend response.
type APIError struct {
	Status  int
	Message string
	Fields  map[string][]string
	Body    []byte
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("client: backend returned %d: %s", e.Status, msg)
}

// Is lets errors.Is match the status sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	default:
		return false
	}
}

// FieldErrors exposes per-field validation messages returned with 400/422.
func (e *APIError) FieldErrors() map[string][]string {
	return e.Fields
}

// Temporary reports whether retrying the same request may succeed.
func (e *APIError) Temporary() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Body: body}
	if !gjson.ValidBytes(body) {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}

	parsed := gjson.ParseBytes(body)
	for _, path := range []string{"message", "error.message", "error", "detail"} {
		if value := parsed.Get(path); value.Type == gjson.String && value.String() != "" {
			apiErr.Message = value.String()
			break
		}
	}

	errs := parsed.Get("errors")
	if !errs.Exists() {
		errs = parsed.Get("error.fields")
	}
	if errs.IsObject() {
		apiErr.Fields = make(map[string][]string)
		errs.ForEach(func(key, value gjson.Result) bool {
			if value.IsArray() {
				for _, item := range value.Array() {
					apiErr.Fields[key.String()] = append(apiErr.Fields[key.String()], item.String())
				}
			} else {
				apiErr.Fields[key.String()] = append(apiErr.Fields[key.String()], value.String())
			}
			return true
		})
	}
	return apiErr
}
