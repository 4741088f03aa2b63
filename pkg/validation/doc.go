// Package validation checks step values against their visible field
// descriptors and lints whole wizard definitions.
package validation
