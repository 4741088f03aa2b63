package render

import (
	"errors"
	"strings"

	"github.com/waggy/go-wizard/pkg/model"
)

// ErrMissingTranslator is passed to the missing handler when no translator
// is configured.
var ErrMissingTranslator = errors.New("render: translator not configured")

// Translator resolves a message key for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function into a Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

// Translate delegates to the underlying function.
func (fn TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return fn(locale, key, args...)
}

// MissingTranslationHandler decides what to show when a key cannot be
// translated. args carries a {"default": fallback} map as its first entry
// when a fallback exists.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

func missingTranslationDefault(_ string, key string, args []any, _ error) string {
	if len(args) > 0 {
		if hints, ok := args[0].(map[string]any); ok {
			if fallback, ok := hints["default"].(string); ok && strings.TrimSpace(fallback) != "" {
				return fallback
			}
		}
	}
	return key
}

const (
	fieldLabelKeyHint       = "label_key"
	fieldPlaceholderKeyHint = "placeholder_key"
	fieldHelpTextKeyHint    = "help_text_key"

	messageKeyPrefix = "wizard.validation."
)

var defaultMessages = map[string]map[string]string{
	"en": {
		"required":   "This field is required",
		"number":     "Please enter a valid number",
		"min_value":  "Value is below the minimum",
		"max_value":  "Value is above the maximum",
		"min_length": "Value is too short",
		"max_length": "Value is too long",
		"pattern":    "Value has an invalid format",
		"email":      "Please enter a valid email address",
		"url":        "Please enter a valid URL",
	},
	"ar": {
		"required":   "هذا الحقل مطلوب",
		"number":     "يرجى إدخال رقم صالح",
		"min_value":  "القيمة أقل من الحد الأدنى",
		"max_value":  "القيمة أكبر من الحد الأقصى",
		"min_length": "القيمة قصيرة جدا",
		"max_length": "القيمة طويلة جدا",
		"pattern":    "صيغة القيمة غير صحيحة",
		"email":      "يرجى إدخال بريد إلكتروني صالح",
		"url":        "يرجى إدخال رابط صالح",
	},
}

// Context is the read-only locale configuration handed to every strategy.
type Context struct {
	Locale         string
	FallbackLocale string
	Translator     Translator
	OnMissing      MissingTranslationHandler
}

// Text resolves localized descriptor text for the active locale.
func (c Context) Text(text model.LocalizedText) string {
	return text.Resolve(c.Locale, c.FallbackLocale)
}

// Translate looks key up through the translator, falling back to fallback.
func (c Context) Translate(key, fallback string, args ...any) string {
	onMissing := c.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}
	return translate(c.Locale, key, fallback, c.Translator, onMissing, args...)
}

// Message localizes a validation message code such as "required".
func (c Context) Message(code string) string {
	return c.Translate(messageKeyPrefix+code, c.defaultMessage(code))
}

func (c Context) defaultMessage(code string) string {
	for _, locale := range []string{c.Locale, baseLocale(c.Locale), c.FallbackLocale, model.DefaultLocale} {
		if messages, ok := defaultMessages[locale]; ok {
			if msg, ok := messages[code]; ok {
				return msg
			}
		}
	}
	return code
}

// LocalizeStep replaces field texts whose metadata names a translation key
// (label_key, placeholder_key, help_text_key) with the translated value for
// the active locale. The step is mutated in place.
func LocalizeStep(step *model.Step, ctx Context) {
	if step == nil || ctx.Translator == nil {
		return
	}
	for i := range step.Fields {
		localizeField(&step.Fields[i], ctx)
	}
}

func localizeField(field *model.Field, ctx Context) {
	if len(field.Metadata) == 0 {
		return
	}
	if key := strings.TrimSpace(field.Metadata[fieldLabelKeyHint]); key != "" {
		field.Label = withLocale(field.Label, ctx.Locale, ctx.Translate(key, ctx.Text(field.Label)))
	}
	if key := strings.TrimSpace(field.Metadata[fieldPlaceholderKeyHint]); key != "" {
		field.Placeholder = withLocale(field.Placeholder, ctx.Locale, ctx.Translate(key, ctx.Text(field.Placeholder)))
	}
	if key := strings.TrimSpace(field.Metadata[fieldHelpTextKeyHint]); key != "" {
		field.HelpText = withLocale(field.HelpText, ctx.Locale, ctx.Translate(key, ctx.Text(field.HelpText)))
	}
}

func withLocale(text model.LocalizedText, locale, value string) model.LocalizedText {
	out := make(model.LocalizedText, len(text)+1)
	for k, v := range text {
		out[k] = v
	}
	out[locale] = value
	return out
}

func translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler, args ...any) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}

	hints := append([]any{map[string]any{"default": fallback}}, args...)
	if t == nil {
		return onMissing(locale, key, hints, ErrMissingTranslator)
	}

	result, err := t.Translate(locale, key, args...)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	return onMissing(locale, key, hints, err)
}

func baseLocale(locale string) string {
	if idx := strings.IndexAny(locale, "-_"); idx > 0 {
		return locale[:idx]
	}
	return ""
}
