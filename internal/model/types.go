package model

// FieldType tags the editing strategy a field descriptor asks for.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeTextarea    FieldType = "textarea"
	FieldTypeNumber      FieldType = "number"
	FieldTypeCurrency    FieldType = "currency"
	FieldTypeEmail       FieldType = "email"
	FieldTypePhone       FieldType = "phone"
	FieldTypeURL         FieldType = "url"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiselect FieldType = "multiselect"
	FieldTypeRadio       FieldType = "radio"
	FieldTypeCheckbox    FieldType = "checkbox"
	FieldTypeSwitch      FieldType = "switch"
	FieldTypeDate        FieldType = "date"
	FieldTypeTime        FieldType = "time"
	FieldTypeDatetime    FieldType = "datetime"
	FieldTypeSlider      FieldType = "slider"
	FieldTypeFile        FieldType = "file"
	FieldTypeImage       FieldType = "image"
	FieldTypeColor       FieldType = "color"
	FieldTypeJSON        FieldType = "json"
	FieldTypeHTML        FieldType = "html"
)

// FieldTypes lists every known field type in declaration order.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText, FieldTypeTextarea, FieldTypeNumber, FieldTypeCurrency,
		FieldTypeEmail, FieldTypePhone, FieldTypeURL, FieldTypeSelect,
		FieldTypeMultiselect, FieldTypeRadio, FieldTypeCheckbox, FieldTypeSwitch,
		FieldTypeDate, FieldTypeTime, FieldTypeDatetime, FieldTypeSlider,
		FieldTypeFile, FieldTypeImage, FieldTypeColor, FieldTypeJSON, FieldTypeHTML,
	}
}

// Known reports whether t is one of the declared field types.
func (t FieldType) Known() bool {
	for _, candidate := range FieldTypes() {
		if candidate == t {
			return true
		}
	}
	return false
}

// Numeric reports whether values of this type must be numbers.
func (t FieldType) Numeric() bool {
	switch t {
	case FieldTypeNumber, FieldTypeCurrency, FieldTypeSlider:
		return true
	default:
		return false
	}
}

// Option is one entry of a select, radio or multiselect field.
type Option struct {
	Value string        `json:"value" yaml:"value"`
	Label LocalizedText `json:"label,omitempty" yaml:"label,omitempty"`
}

// Field describes one server-defined input. Pointer bounds distinguish an
// unset constraint from a zero one.
type Field struct {
	Key            string            `json:"key" yaml:"key"`
	Type           FieldType         `json:"type" yaml:"type"`
	Label          LocalizedText     `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder    LocalizedText     `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	HelpText       LocalizedText     `json:"help_text,omitempty" yaml:"help_text,omitempty"`
	Required       bool              `json:"required" yaml:"required"`
	Active         bool              `json:"active" yaml:"active"`
	MinValue       *float64          `json:"min_value,omitempty" yaml:"min_value,omitempty"`
	MaxValue       *float64          `json:"max_value,omitempty" yaml:"max_value,omitempty"`
	MinLength      *int              `json:"min_length,omitempty" yaml:"min_length,omitempty"`
	MaxLength      *int              `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	Pattern        string            `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	DefaultValue   any               `json:"default_value,omitempty" yaml:"default_value,omitempty"`
	Options        []Option          `json:"options,omitempty" yaml:"options,omitempty"`
	DependsOnField string            `json:"depends_on_field,omitempty" yaml:"depends_on_field,omitempty"`
	DependsOnValue *string           `json:"depends_on_value,omitempty" yaml:"depends_on_value,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// HasDependency reports whether visibility is conditioned on another field.
func (f Field) HasDependency() bool {
	return f.DependsOnField != ""
}

// Step is one page of the wizard.
type Step struct {
	ID          int64         `json:"id" yaml:"id"`
	StepNumber  int           `json:"step_number" yaml:"step_number"`
	Title       LocalizedText `json:"title,omitempty" yaml:"title,omitempty"`
	Description LocalizedText `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []Field       `json:"fields" yaml:"fields"`
	Required    bool          `json:"required" yaml:"required"`
}

// Field returns the field with the given key.
func (s Step) Field(key string) (Field, bool) {
	for _, field := range s.Fields {
		if field.Key == key {
			return field, true
		}
	}
	return Field{}, false
}

// ServiceType identifies the kind of offering a provider is configuring.
type ServiceType struct {
	ID   int64         `json:"id" yaml:"id"`
	Slug string        `json:"slug,omitempty" yaml:"slug,omitempty"`
	Name LocalizedText `json:"name,omitempty" yaml:"name,omitempty"`
}

// ProviderService carries the backend-owned wizard progress for one offering.
type ProviderService struct {
	ID          int64  `json:"id" yaml:"id"`
	CurrentStep int    `json:"current_step" yaml:"current_step"`
	TotalSteps  int    `json:"total_steps" yaml:"total_steps"`
	Status      string `json:"status,omitempty" yaml:"status,omitempty"`
}

// Wizard is the definition payload returned by the backend.
type Wizard struct {
	ServiceType     ServiceType     `json:"service_type" yaml:"service_type"`
	ProviderService ProviderService `json:"provider_service" yaml:"provider_service"`
	Steps           []Step          `json:"steps" yaml:"steps"`
}

// TotalSteps prefers the backend count and falls back to the step list.
func (w Wizard) TotalSteps() int {
	if w.ProviderService.TotalSteps > 0 {
		return w.ProviderService.TotalSteps
	}
	return len(w.Steps)
}

// StepByNumber locates a step by its ordering key.
func (w Wizard) StepByNumber(number int) (Step, bool) {
	for _, step := range w.Steps {
		if step.StepNumber == number {
			return step, true
		}
	}
	return Step{}, false
}

// StepByID locates a step by its backend identifier.
func (w Wizard) StepByID(id int64) (Step, bool) {
	for _, step := range w.Steps {
		if step.ID == id {
			return step, true
		}
	}
	return Step{}, false
}

// StepDetail is a single step with the values previously saved for it.
type StepDetail struct {
	Step       Step   `json:"step"`
	SavedData  Values `json:"saved_data"`
	IsComplete bool   `json:"is_complete"`
}

// WizardState is the backend's progress record for one provider service.
type WizardState struct {
	CurrentStepNumber  int              `json:"current_step"`
	TotalSteps         int              `json:"total_steps"`
	CompletedStepCount int              `json:"completed_step_count"`
	SavedValues        map[int64]Values `json:"saved_values,omitempty"`
}
