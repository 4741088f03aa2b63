package model

import internalmodel "github.com/waggy/go-wizard/internal/model"

// FieldType re-exports the internal FieldType enumeration.
type FieldType = internalmodel.FieldType

const (
	FieldTypeText        = internalmodel.FieldTypeText
	FieldTypeTextarea    = internalmodel.FieldTypeTextarea
	FieldTypeNumber      = internalmodel.FieldTypeNumber
	FieldTypeCurrency    = internalmodel.FieldTypeCurrency
	FieldTypeEmail       = internalmodel.FieldTypeEmail
	FieldTypePhone       = internalmodel.FieldTypePhone
	FieldTypeURL         = internalmodel.FieldTypeURL
	FieldTypeSelect      = internalmodel.FieldTypeSelect
	FieldTypeMultiselect = internalmodel.FieldTypeMultiselect
	FieldTypeRadio       = internalmodel.FieldTypeRadio
	FieldTypeCheckbox    = internalmodel.FieldTypeCheckbox
	FieldTypeSwitch      = internalmodel.FieldTypeSwitch
	FieldTypeDate        = internalmodel.FieldTypeDate
	FieldTypeTime        = internalmodel.FieldTypeTime
	FieldTypeDatetime    = internalmodel.FieldTypeDatetime
	FieldTypeSlider      = internalmodel.FieldTypeSlider
	FieldTypeFile        = internalmodel.FieldTypeFile
	FieldTypeImage       = internalmodel.FieldTypeImage
	FieldTypeColor       = internalmodel.FieldTypeColor
	FieldTypeJSON        = internalmodel.FieldTypeJSON
	FieldTypeHTML        = internalmodel.FieldTypeHTML
)

// DefaultLocale is tried after the active and fallback locales.
const DefaultLocale = internalmodel.DefaultLocale

type (
	Option          = internalmodel.Option
	Field           = internalmodel.Field
	Step            = internalmodel.Step
	ServiceType     = internalmodel.ServiceType
	ProviderService = internalmodel.ProviderService
	Wizard          = internalmodel.Wizard
	StepDetail      = internalmodel.StepDetail
	WizardState     = internalmodel.WizardState
	Values          = internalmodel.Values
	LocalizedText   = internalmodel.LocalizedText
	SchemaIssue     = internalmodel.SchemaIssue
	SchemaError     = internalmodel.SchemaError
)

// FieldTypes lists every known field type.
func FieldTypes() []FieldType { return internalmodel.FieldTypes() }

// Text builds a locale-neutral LocalizedText.
func Text(value string) LocalizedText { return internalmodel.Text(value) }

// WithDefaults overlays field defaults onto saved values for missing keys.
func WithDefaults(step Step, saved Values) Values { return internalmodel.WithDefaults(step, saved) }

// ValidateStep checks single-step descriptor invariants.
func ValidateStep(step Step) error { return internalmodel.ValidateStep(step) }

// ValidateWizard checks every step plus step-number uniqueness.
func ValidateWizard(wizard Wizard) error { return internalmodel.ValidateWizard(wizard) }

// IsNoSteps reports whether err signals an empty wizard definition.
func IsNoSteps(err error) bool { return internalmodel.IsNoSteps(err) }

// DefaultLabeler turns a field key into a human-friendly label.
func DefaultLabeler(key string) string { return internalmodel.DefaultLabeler(key) }
