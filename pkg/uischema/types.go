package uischema

import "github.com/waggy/go-wizard/pkg/model"

// Store keeps the parsed step overlays. It is safe for concurrent readers
// when treated as immutable after construction.
type Store struct {
	steps map[int64]StepOverlay
}

// StepOverlay describes the overrides for one step, keyed by step id.
type StepOverlay struct {
	StepID      int64
	Source      string
	Title       model.LocalizedText
	Description model.LocalizedText
	Fields      map[string]FieldConfig
}

// FieldConfig customises how one field is presented. Zero values leave the
// backend definition untouched.
type FieldConfig struct {
	Label       model.LocalizedText `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder model.LocalizedText `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	HelpText    model.LocalizedText `json:"help_text,omitempty" yaml:"help_text,omitempty"`
	Order       *int                `json:"order,omitempty" yaml:"order,omitempty"`
	Hidden      bool                `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	CSSClass    string              `json:"css_class,omitempty" yaml:"css_class,omitempty"`
	Icon        string              `json:"icon,omitempty" yaml:"icon,omitempty"`
	Metadata    map[string]string   `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Metadata keys written onto decorated fields. The HTML renderer reads the
// same keys and sanitises icons before output.
const (
	MetadataCSSClass = "css_class"
	MetadataIcon     = "icon"
)
