package render

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/waggy/go-wizard/pkg/model"
)

// ErrNoStrategy is returned when neither the requested type nor the text
// fallback has a registered strategy.
var ErrNoStrategy = errors.New("render: no strategy registered")

// RequiredMarker is appended to labels of required fields.
const RequiredMarker = " *"

// Props is what every field strategy receives. OnChange must be called with
// the type-appropriate value; strategies never talk to the network.
type Props struct {
	Field    model.Field
	Value    any
	Error    string
	OnChange func(value any)
	Context  Context
}

// Change forwards value to OnChange when one is set.
func (p Props) Change(value any) {
	if p.OnChange != nil {
		p.OnChange(value)
	}
}

// Label returns the localized label with the required marker when needed.
func (p Props) Label() string {
	label := p.Context.Text(p.Field.Label)
	if label == "" {
		label = model.DefaultLabeler(p.Field.Key)
	}
	if p.Field.Required {
		label += RequiredMarker
	}
	return label
}

// ErrorMessage localizes the current error code, if any.
func (p Props) ErrorMessage() string {
	if p.Error == "" {
		return ""
	}
	return p.Context.Message(p.Error)
}

// LocalizedOption is an option with its label resolved for the active locale.
type LocalizedOption struct {
	Value    string
	Label    string
	Selected bool
}

// Options resolves option labels and marks the entries present in Value.
func (p Props) Options() []LocalizedOption {
	if len(p.Field.Options) == 0 {
		return nil
	}
	selected := selectedSet(p.Value)
	out := make([]LocalizedOption, 0, len(p.Field.Options))
	for _, option := range p.Field.Options {
		label := p.Context.Text(option.Label)
		if label == "" {
			label = option.Value
		}
		_, isSelected := selected[option.Value]
		out = append(out, LocalizedOption{Value: option.Value, Label: label, Selected: isSelected})
	}
	return out
}

func selectedSet(value any) map[string]struct{} {
	set := make(map[string]struct{})
	switch v := value.(type) {
	case nil:
	case []string:
		for _, item := range v {
			set[item] = struct{}{}
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				set[s] = struct{}{}
			}
		}
	case string:
		set[v] = struct{}{}
	default:
		set[anyToString(v)] = struct{}{}
	}
	return set
}

var numberPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseNumber converts raw numeric input the way parseFloat reads it: empty
// input becomes nil and the longest leading decimal literal becomes a
// float64, so "3.5kg" is 3.5. Input with no leading number, or one that
// overflows, is returned unchanged so the validator can flag it.
func ParseNumber(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	literal := numberPrefix.FindString(trimmed)
	if literal == "" {
		return raw
	}
	number, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return raw
	}
	return number
}

// ToggleOption adds option to a multiselect value when absent and removes it
// when present, keeping the order of the remaining items.
func ToggleOption(current any, option string) []any {
	items := toAnySlice(current)
	out := make([]any, 0, len(items)+1)
	removed := false
	for _, item := range items {
		if !removed && item == option {
			removed = true
			continue
		}
		out = append(out, item)
	}
	if !removed {
		out = append(out, option)
	}
	return out
}

func toAnySlice(value any) []any {
	switch v := value.(type) {
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out
	default:
		return nil
	}
}

// FormatValue renders a value for a text-like control.
func FormatValue(value any) string {
	if value == nil {
		return ""
	}
	return anyToString(value)
}

// Truthy interprets a boolean control value.
func Truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	default:
		return false
	}
}

func anyToString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = anyToString(item)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprint(v)
	}
}
