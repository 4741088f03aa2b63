package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/sirupsen/logrus"

	"github.com/waggy/go-wizard/pkg/render"
)

// Theme captures optional formatting hints the driver can apply when printing
// messages. Keep minimal to avoid coupling renderer logic to ANSI specifics.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// HelpRenderer turns field help text into what the prompt shows.
type HelpRenderer func(markdown string) string

// MarkdownHelp renders help text as terminal markdown with glamour. An empty
// style picks one from the terminal background.
func MarkdownHelp(style string, wordWrap int) HelpRenderer {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(wordWrap)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return PlainHelp
	}
	return func(markdown string) string {
		if strings.TrimSpace(markdown) == "" {
			return ""
		}
		out, err := renderer.Render(markdown)
		if err != nil {
			return markdown
		}
		return strings.TrimSpace(out)
	}
}

// PlainHelp shows help text unchanged.
func PlainHelp(markdown string) string {
	return strings.TrimSpace(markdown)
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithContext sets the locale used for labels, options and messages.
func WithContext(ctx render.Context) Option {
	return func(r *Renderer) {
		r.locale = ctx
	}
}

// WithHelpRenderer replaces the glamour help renderer.
func WithHelpRenderer(fn HelpRenderer) Option {
	return func(r *Renderer) {
		if fn != nil {
			r.help = fn
		}
	}
}

// WithRegistry replaces the default prompt strategies.
func WithRegistry(registry *render.Registry[Strategy]) Option {
	return func(r *Renderer) {
		if registry != nil {
			r.registry = registry
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithLogger sets the logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}
