package validation

import (
	"encoding/json"
	"net/mail"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/waggy/go-wizard/pkg/model"
)

// Message codes reported per field. Renderers localize them through
// render.Context.Message.
const (
	CodeRequired  = "required"
	CodeNumber    = "number"
	CodeMinValue  = "min_value"
	CodeMaxValue  = "max_value"
	CodeMinLength = "min_length"
	CodeMaxLength = "max_length"
	CodePattern   = "pattern"
	CodeEmail     = "email"
	CodeURL       = "url"
)

// Errors maps a field key to the message code of its first failing rule.
type Errors map[string]string

// Has reports whether key carries an error.
func (e Errors) Has(key string) bool {
	_, ok := e[key]
	return ok
}

// Keys returns the failing field keys in lexical order.
func (e Errors) Keys() []string {
	keys := make([]string, 0, len(e))
	for key := range e {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy.
func (e Errors) Clone() Errors {
	if e == nil {
		return nil
	}
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Option configures a Validator.
type Option func(*Validator)

// WithConstraints enables the descriptor bounds, pattern and format checks on
// top of the required and numeric rules.
func WithConstraints() Option {
	return func(v *Validator) {
		v.constraints = true
	}
}

// Validator checks form values against the visible fields of a step.
type Validator struct {
	constraints bool
}

// New constructs a Validator.
func New(options ...Option) *Validator {
	v := &Validator{}
	for _, opt := range options {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Validate applies the default rules: required fields must be non-empty and
// numeric fields must hold numbers when a value is present.
func Validate(visible []model.Field, values model.Values) Errors {
	return New().Validate(visible, values)
}

// Validate returns an empty, non-nil map when every field passes. Only the
// fields passed in are checked; hidden fields never produce errors.
func (v *Validator) Validate(visible []model.Field, values model.Values) Errors {
	errs := make(Errors)
	for _, field := range visible {
		value, present := values[field.Key]
		if code := v.check(field, value, present); code != "" {
			errs[field.Key] = code
		}
	}
	return errs
}

func (v *Validator) check(field model.Field, value any, present bool) string {
	empty := IsEmpty(field, value, present)
	if field.Required && empty {
		return CodeRequired
	}
	if field.Type.Numeric() && !empty && !IsNumeric(value) {
		return CodeNumber
	}
	if !v.constraints || empty {
		return ""
	}
	return constraintCode(field, value)
}

// IsEmpty reports whether value counts as absent for a required check:
// missing, nil, the empty string, an empty list, or for checkboxes anything
// other than true.
func IsEmpty(field model.Field, value any, present bool) bool {
	if field.Type == model.FieldTypeCheckbox {
		b, ok := value.(bool)
		return !present || !ok || !b
	}
	if !present || value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return rv.Len() == 0
	}
	return false
}

// IsNumeric reports whether value holds a Go or JSON number.
func IsNumeric(value any) bool {
	switch v := value.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	case json.Number:
		_, err := v.Float64()
		return err == nil
	default:
		return false
	}
}

func constraintCode(field model.Field, value any) string {
	if number, ok := toFloat(value); ok {
		if field.MinValue != nil && number < *field.MinValue {
			return CodeMinValue
		}
		if field.MaxValue != nil && number > *field.MaxValue {
			return CodeMaxValue
		}
		return ""
	}

	text, ok := value.(string)
	if !ok {
		return ""
	}
	length := utf8.RuneCountInString(text)
	if field.MinLength != nil && length < *field.MinLength {
		return CodeMinLength
	}
	if field.MaxLength != nil && length > *field.MaxLength {
		return CodeMaxLength
	}
	if field.Pattern != "" {
		re, err := regexp.Compile(field.Pattern)
		if err == nil && !re.MatchString(text) {
			return CodePattern
		}
	}
	switch field.Type {
	case model.FieldTypeEmail:
		if _, err := mail.ParseAddress(text); err != nil || strings.ContainsAny(text, "<> ") {
			return CodeEmail
		}
	case model.FieldTypeURL:
		parsed, err := url.ParseRequestURI(text)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return CodeURL
		}
	}
	return ""
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case float32:
		return float64(v), true
	}
	if !IsNumeric(value) {
		return 0, false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	default:
		return float64(rv.Uint()), true
	}
}
