package render

import (
	"strings"

	"github.com/waggy/go-wizard/pkg/model"
)

// TemplateI18nConfig configures template-level translation helpers.
type TemplateI18nConfig struct {
	// FuncName customizes the translator helper name (defaults to "translate").
	FuncName string
}

// TemplateI18nFuncs returns helpers bound to ctx for injection into the
// template engine as globals:
//
//	translate(key, fallback) string
//	localize(text) string
//	message(code) string
//	current_locale() string
func TemplateI18nFuncs(ctx Context, cfg TemplateI18nConfig) map[string]any {
	translateName := strings.TrimSpace(cfg.FuncName)
	if translateName == "" {
		translateName = "translate"
	}

	return map[string]any{
		translateName: func(key string, fallback ...string) string {
			def := ""
			if len(fallback) > 0 {
				def = fallback[0]
			}
			return ctx.Translate(key, def)
		},
		"localize": func(text any) string {
			return ctx.Text(toLocalizedText(text))
		},
		"message": func(code string) string {
			return ctx.Message(code)
		},
		"current_locale": func() string {
			return ctx.Locale
		},
	}
}

func toLocalizedText(value any) model.LocalizedText {
	switch v := value.(type) {
	case model.LocalizedText:
		return v
	case map[string]string:
		return model.LocalizedText(v)
	case map[string]any:
		out := make(model.LocalizedText, len(v))
		for key, item := range v {
			if s, ok := item.(string); ok {
				out[key] = s
			}
		}
		return out
	case string:
		return model.Text(v)
	default:
		return nil
	}
}
