package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLocale is the last named locale tried before any other translation.
const DefaultLocale = "en"

// LocalizedText maps a locale tag to a translation. The empty key holds text
// the backend sent without a locale.
type LocalizedText map[string]string

// Text builds a locale-neutral LocalizedText.
func Text(value string) LocalizedText {
	if value == "" {
		return nil
	}
	return LocalizedText{"": value}
}

// Resolve returns the best translation for locale, trying fallback, the
// locale-neutral entry and DefaultLocale before any remaining entry in sorted
// key order.
func (t LocalizedText) Resolve(locale, fallback string) string {
	if len(t) == 0 {
		return ""
	}
	for _, candidate := range []string{locale, baseLocale(locale), fallback, "", DefaultLocale} {
		if value, ok := t[candidate]; ok && strings.TrimSpace(value) != "" {
			return value
		}
	}
	keys := make([]string, 0, len(t))
	for key := range t {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if strings.TrimSpace(t[key]) != "" {
			return t[key]
		}
	}
	return ""
}

// Empty reports whether no translation carries text.
func (t LocalizedText) Empty() bool {
	for _, value := range t {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

// UnmarshalJSON accepts either a locale map or a bare string.
func (t *LocalizedText) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = nil
		return nil
	}
	if trimmed[0] == '"' {
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return fmt.Errorf("model: localized text: %w", err)
		}
		*t = Text(value)
		return nil
	}
	var values map[string]string
	if err := json.Unmarshal(trimmed, &values); err != nil {
		return fmt.Errorf("model: localized text: %w", err)
	}
	*t = LocalizedText(values)
	return nil
}

// UnmarshalYAML accepts either a locale mapping or a scalar string.
func (t *LocalizedText) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*t = Text(node.Value)
		return nil
	}
	var values map[string]string
	if err := node.Decode(&values); err != nil {
		return fmt.Errorf("model: localized text: %w", err)
	}
	*t = LocalizedText(values)
	return nil
}

func baseLocale(locale string) string {
	if idx := strings.IndexAny(locale, "-_"); idx > 0 {
		return locale[:idx]
	}
	return ""
}
