// Package tui drives the wizard from a terminal with survey prompts.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/waggy/go-wizard/internal/logging"
	"github.com/waggy/go-wizard/pkg/render"
	"github.com/waggy/go-wizard/pkg/wizard"
)

// Renderer prompts for wizard steps and steers a controller through them.
type Renderer struct {
	driver   PromptDriver
	registry *render.Registry[Strategy]
	locale   render.Context
	help     HelpRenderer
	theme    Theme
	logger   logrus.FieldLogger
}

// New constructs a TUI renderer with defaults (survey driver, glamour help).
func New(options ...Option) *Renderer {
	r := &Renderer{
		registry: DefaultRegistry(),
		theme:    Theme{InfoPrefix: "", ErrorPrefix: "! "},
		logger:   logging.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver()
	}
	if r.help == nil {
		r.help = MarkdownHelp("", 72)
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

type action int

const (
	actionNext action = iota
	actionSave
	actionBack
	actionQuit
	actionRetry
	actionDismiss
)

// Run loads the wizard and walks the user through it until completion or
// until they quit.
func (r *Renderer) Run(ctx context.Context, ctl *wizard.Controller) error {
	if err := ctl.LoadWizard(ctx); err != nil {
		r.logger.WithError(err).Debug("initial load failed")
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		snap := ctl.Snapshot()

		switch snap.Status {
		case wizard.StatusCompleted:
			return r.info(ctx, r.text("wizard.tui.done", "All set! Your service is ready for review."))

		case wizard.StatusError:
			next, err := r.recover(ctx, snap)
			if err != nil {
				return err
			}
			switch next {
			case actionRetry:
				_ = ctl.Retry(ctx)
			case actionDismiss:
				ctl.Dismiss(ctx)
			default:
				return ErrQuit
			}

		case wizard.StatusStepLoaded:
			if err := r.PromptStep(ctx, ctl); err != nil {
				return err
			}
			if err := r.advance(ctx, ctl); err != nil {
				return err
			}

		default:
			return fmt.Errorf("tui: unexpected status %q", snap.Status)
		}
	}
}

// PromptStep asks for every visible field of the current step in order.
// Visibility is re-evaluated after each answer so dependent fields appear
// as soon as their condition holds.
func (r *Renderer) PromptStep(ctx context.Context, ctl *wizard.Controller) error {
	snap := ctl.Snapshot()
	if !snap.HasStep {
		return nil
	}

	header := fmt.Sprintf("%s %d/%d: %s", r.text("wizard.action.step", "Step"), snap.Step.StepNumber, snap.TotalSteps, r.locale.Text(snap.Step.Title))
	if err := r.info(ctx, header); err != nil {
		return err
	}
	if description := r.locale.Text(snap.Step.Description); description != "" {
		if err := r.info(ctx, r.help(description)); err != nil {
			return err
		}
	}
	for _, message := range snap.FormErrors {
		if err := r.info(ctx, r.theme.ErrorPrefix+message); err != nil {
			return err
		}
	}

	for _, field := range snap.Step.Fields {
		current := ctl.Snapshot()
		if !isVisible(current, field.Key) {
			continue
		}
		strategy, err := r.registry.Lookup(field.Type)
		if err != nil {
			return fmt.Errorf("tui: field %q: %w", field.Key, err)
		}

		props := render.Props{
			Field:   field,
			Value:   current.Values[field.Key],
			Error:   current.Errors[field.Key],
			Context: r.locale,
			OnChange: func(value any) {
				ctl.OnFieldChange(field.Key, value)
			},
		}
		if props.Error != "" {
			if err := r.info(ctx, r.theme.ErrorPrefix+props.Label()+": "+props.ErrorMessage()); err != nil {
				return err
			}
		}
		if err := strategy.Ask(ctx, Prompt{
			Props:  props,
			Help:   r.help(r.locale.Text(field.HelpText)),
			Driver: r.driver,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) advance(ctx context.Context, ctl *wizard.Controller) error {
	snap := ctl.Snapshot()

	forward := r.text("wizard.action.next", "Next")
	if snap.IsLast {
		forward = r.text("wizard.action.finish", "Finish")
	}
	labels := []string{forward, r.text("wizard.action.save", "Save")}
	actions := []action{actionNext, actionSave}
	if !snap.IsFirst {
		labels = append(labels, r.text("wizard.action.back", "Back"))
		actions = append(actions, actionBack)
	}
	labels = append(labels, r.text("wizard.action.quit", "Quit"))
	actions = append(actions, actionQuit)

	idx, err := r.driver.Select(ctx, SelectConfig{Message: r.text("wizard.tui.action", "What next?"), Options: labels, DefaultIndex: 0})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(actions) {
		return ErrInvalidSelection
	}

	switch actions[idx] {
	case actionNext:
		err = ctl.Save(ctx, true)
	case actionSave:
		err = ctl.Save(ctx, false)
	case actionBack:
		err = ctl.Back(ctx)
	case actionQuit:
		return ErrQuit
	}

	var verr *wizard.ValidationError
	if errors.As(err, &verr) {
		return r.reportValidation(ctx, ctl, verr)
	}
	if err != nil {
		r.logger.WithError(err).Debug("step action failed")
	}
	return nil
}

func (r *Renderer) reportValidation(ctx context.Context, ctl *wizard.Controller, verr *wizard.ValidationError) error {
	snap := ctl.Snapshot()
	keys := make([]string, 0, len(verr.Errors))
	for key := range verr.Errors {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		label := key
		if field, ok := snap.Step.Field(key); ok {
			label = render.Props{Field: field, Context: r.locale}.Label()
		}
		if err := r.info(ctx, r.theme.ErrorPrefix+label+": "+r.locale.Message(verr.Errors[key])); err != nil {
			return err
		}
	}
	for _, message := range verr.Form {
		if err := r.info(ctx, r.theme.ErrorPrefix+message); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) recover(ctx context.Context, snap wizard.Snapshot) (action, error) {
	message := "unknown error"
	if snap.Err != nil {
		message = snap.Err.Error()
	}
	if err := r.info(ctx, r.theme.ErrorPrefix+message); err != nil {
		return actionQuit, err
	}

	labels := []string{r.text("wizard.action.retry", "Try again")}
	actions := []action{actionRetry}
	if snap.HasStep {
		labels = append(labels, r.text("wizard.action.dismiss", "Keep editing"))
		actions = append(actions, actionDismiss)
	}
	labels = append(labels, r.text("wizard.action.quit", "Quit"))
	actions = append(actions, actionQuit)

	idx, err := r.driver.Select(ctx, SelectConfig{Message: r.text("wizard.tui.recover", "Something went wrong"), Options: labels, DefaultIndex: 0})
	if err != nil {
		return actionQuit, err
	}
	if idx < 0 || idx >= len(actions) {
		return actionQuit, ErrInvalidSelection
	}
	return actions[idx], nil
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	if msg == "" {
		return nil
	}
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) text(key, fallback string) string {
	return r.locale.Translate(key, fallback)
}

func isVisible(snap wizard.Snapshot, key string) bool {
	for _, field := range snap.Visible {
		if field.Key == key {
			return true
		}
	}
	return false
}
