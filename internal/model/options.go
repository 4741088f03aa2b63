package model

// Options tunes how the Builder turns backend payloads into steps. pkg/model
// fills it from BuilderOption values.
type Options struct {
	// Labeler names fields that arrive without a label.
	Labeler func(key string) string
	// Strict rejects wizards that fail ValidateWizard.
	Strict bool
}

func defaultOptions() Options {
	return Options{Labeler: DefaultLabeler, Strict: true}
}
