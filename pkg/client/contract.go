package client

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
)

//go:embed api/openapi.yaml
var embeddedContract []byte

// Route templates of the wizard API, matching the embedded description.
const (
	routeWizard   = "/provider-services/{id}/wizard"
	routeStep     = "/provider-services/{id}/wizard/steps/{stepID}"
	routeNext     = "/provider-services/{id}/wizard/next"
	routePrevious = "/provider-services/{id}/wizard/previous"
	routeComplete = "/provider-services/{id}/wizard/complete"
)

// Document returns a copy of the embedded API description.
func Document() []byte {
	return append([]byte(nil), embeddedContract...)
}

// ContractError reports a response that does not match the API description.
type ContractError struct {
	Method string
	Route  string
	Status int
	Err    error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("client: %s %s returned %d outside the API contract: %v", e.Method, e.Route, e.Status, e.Err)
}

func (e *ContractError) Unwrap() error { return e.Err }

// Contract validates backend responses against an OpenAPI 3 description.
type Contract struct {
	doc *openapi3.T
}

// DefaultContract loads the embedded description of the wizard API.
func DefaultContract(ctx context.Context) (*Contract, error) {
	return LoadContract(ctx, embeddedContract)
}

// LoadContract parses and validates an OpenAPI 3 document.
func LoadContract(ctx context.Context, raw []byte) (*Contract, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.New("client: contract document is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("client: load contract: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("client: validate contract: %w", err)
	}
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil, errors.New("client: contract does not contain any paths")
	}
	return &Contract{doc: doc}, nil
}

// ValidateResponse checks a successful response for route against the
// description. Undeclared routes and methods are reported as errors.
func (c *Contract) ValidateResponse(ctx context.Context, req *http.Request, route string, params map[string]string, status int, header http.Header, body []byte) error {
	if c == nil || c.doc == nil {
		return nil
	}
	pathItem := c.doc.Paths.Find(route)
	if pathItem == nil {
		return &ContractError{Method: req.Method, Route: route, Status: status, Err: errors.New("route not declared")}
	}
	operation := pathItem.GetOperation(req.Method)
	if operation == nil {
		return &ContractError{Method: req.Method, Route: route, Status: status, Err: errors.New("method not declared")}
	}

	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request:    req,
			PathParams: params,
			Route: &routers.Route{
				Spec:      c.doc,
				Path:      route,
				PathItem:  pathItem,
				Method:    req.Method,
				Operation: operation,
			},
		},
		Status:  status,
		Header:  header,
		Body:    io.NopCloser(bytes.NewReader(body)),
		Options: &openapi3filter.Options{IncludeResponseStatus: true},
	}
	if err := openapi3filter.ValidateResponse(ctx, input); err != nil {
		return &ContractError{Method: req.Method, Route: route, Status: status, Err: err}
	}
	return nil
}
