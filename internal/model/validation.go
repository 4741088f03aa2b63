package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var errNoSteps = errors.New("model: wizard defines no steps")

// SchemaIssue locates one problem in a server-supplied descriptor.
type SchemaIssue struct {
	StepNumber int    `json:"step_number,omitempty"`
	Field      string `json:"field,omitempty"`
	Message    string `json:"message"`
}

func (i SchemaIssue) String() string {
	var b strings.Builder
	if i.StepNumber > 0 {
		fmt.Fprintf(&b, "step %d", i.StepNumber)
	}
	if i.Field != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "field %q", i.Field)
	}
	if b.Len() > 0 {
		b.WriteString(": ")
	}
	b.WriteString(i.Message)
	return b.String()
}

// SchemaError reports malformed step or wizard descriptors.
type SchemaError struct {
	Issues []SchemaIssue
}

func (e *SchemaError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "model: invalid schema"
	}
	if len(e.Issues) == 1 {
		return "model: invalid schema: " + e.Issues[0].String()
	}
	return fmt.Sprintf("model: invalid schema: %s (and %d more)", e.Issues[0].String(), len(e.Issues)-1)
}

// ValidateStep checks the invariants a single step must hold: unique non-empty
// keys, dependencies that reference a sibling, and compilable patterns.
func ValidateStep(step Step) error {
	issues := stepIssues(step)
	if len(issues) == 0 {
		return nil
	}
	return &SchemaError{Issues: issues}
}

// ValidateWizard checks every step plus step-number uniqueness.
func ValidateWizard(wizard Wizard) error {
	if len(wizard.Steps) == 0 {
		return errNoSteps
	}
	var issues []SchemaIssue
	seen := make(map[int]struct{}, len(wizard.Steps))
	for _, step := range wizard.Steps {
		if step.StepNumber <= 0 {
			issues = append(issues, SchemaIssue{Message: fmt.Sprintf("step %d has non-positive step number %d", step.ID, step.StepNumber)})
		} else if _, dup := seen[step.StepNumber]; dup {
			issues = append(issues, SchemaIssue{StepNumber: step.StepNumber, Message: "duplicate step number"})
		}
		seen[step.StepNumber] = struct{}{}
		issues = append(issues, stepIssues(step)...)
	}
	if len(issues) == 0 {
		return nil
	}
	return &SchemaError{Issues: issues}
}

// IsNoSteps reports whether err signals an empty wizard definition.
func IsNoSteps(err error) bool {
	return errors.Is(err, errNoSteps)
}

func stepIssues(step Step) []SchemaIssue {
	var issues []SchemaIssue
	keys := make(map[string]struct{}, len(step.Fields))
	for _, field := range step.Fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			issues = append(issues, SchemaIssue{StepNumber: step.StepNumber, Message: "field key is required"})
			continue
		}
		if _, dup := keys[key]; dup {
			issues = append(issues, SchemaIssue{StepNumber: step.StepNumber, Field: key, Message: "duplicate field key"})
		}
		keys[key] = struct{}{}
	}

	for _, field := range step.Fields {
		if field.Pattern != "" {
			if _, err := regexp.Compile(field.Pattern); err != nil {
				issues = append(issues, SchemaIssue{StepNumber: step.StepNumber, Field: field.Key, Message: fmt.Sprintf("invalid pattern: %v", err)})
			}
		}
		if !field.HasDependency() {
			continue
		}
		if field.DependsOnField == field.Key {
			issues = append(issues, SchemaIssue{StepNumber: step.StepNumber, Field: field.Key, Message: "field depends on itself"})
			continue
		}
		if _, ok := keys[field.DependsOnField]; !ok {
			issues = append(issues, SchemaIssue{StepNumber: step.StepNumber, Field: field.Key, Message: fmt.Sprintf("depends on unknown field %q", field.DependsOnField)})
		}
	}
	return issues
}
