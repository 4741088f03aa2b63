package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/waggy/go-wizard/pkg/model"
)

// SchemaIssue represents a definition problem with optional location metadata.
type SchemaIssue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// LintResult captures the outcome of checking a wizard definition.
type LintResult struct {
	Valid  bool          `json:"valid"`
	Issues []SchemaIssue `json:"issues,omitempty"`
}

// Format selects the decoder for LintWizard.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath guesses the decoder from a file extension.
func FormatFromPath(path string) Format {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return FormatYAML
	}
	return FormatJSON
}

// LintWizard decodes a wizard definition and reports every descriptor issue.
// JSON payloads may be wrapped in a {"data": ...} envelope.
func LintWizard(raw []byte, format Format) LintResult {
	result := LintResult{Valid: true}

	wizard, err := DecodeWizard(raw, format)
	if err != nil {
		result.Valid = false
		result.Issues = []SchemaIssue{issueFromError(err)}
		return result
	}

	if err := model.ValidateWizard(wizard); err != nil {
		result.Valid = false
		result.Issues = issuesFromError(err)
	}
	return result
}

// DecodeWizard parses a JSON or YAML wizard definition.
func DecodeWizard(raw []byte, format Format) (model.Wizard, error) {
	var wizard model.Wizard
	if len(bytes.TrimSpace(raw)) == 0 {
		return wizard, errors.New("validation: empty definition")
	}

	if format == FormatYAML {
		if err := yaml.Unmarshal(raw, &wizard); err != nil {
			return wizard, fmt.Errorf("validation: decode yaml: %w", err)
		}
		return wizard, nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Data) > 0 {
		raw = envelope.Data
	}
	if err := json.Unmarshal(raw, &wizard); err != nil {
		return wizard, fmt.Errorf("validation: decode json: %w", err)
	}
	return wizard, nil
}

func issuesFromError(err error) []SchemaIssue {
	var schemaErr *model.SchemaError
	if !errors.As(err, &schemaErr) {
		return []SchemaIssue{issueFromError(err)}
	}
	out := make([]SchemaIssue, 0, len(schemaErr.Issues))
	for _, issue := range schemaErr.Issues {
		out = append(out, SchemaIssue{
			Path:    issuePath(issue),
			Field:   issue.Field,
			Message: strings.TrimSpace(issue.Message),
		})
	}
	return out
}

func issueFromError(err error) SchemaIssue {
	if err == nil {
		return SchemaIssue{Message: "unknown error"}
	}
	msg := strings.TrimSpace(err.Error())
	msg = strings.TrimPrefix(msg, "validation: ")
	msg = strings.TrimPrefix(msg, "model: ")
	return SchemaIssue{Message: msg}
}

func issuePath(issue model.SchemaIssue) string {
	var parts []string
	if issue.StepNumber > 0 {
		parts = append(parts, fmt.Sprintf("steps[%d]", issue.StepNumber))
	}
	if issue.Field != "" {
		parts = append(parts, "fields."+issue.Field)
	}
	return strings.Join(parts, ".")
}
