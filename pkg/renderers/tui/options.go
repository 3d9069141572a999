package tui

import (
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formflow/pkg/session"
)

// OutputFormat controls how collected answers are serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits an indented JSON object.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatPrettyText emits one "key: value" line per answer.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme captures optional prefixes the renderer applies to printed messages.
type Theme struct {
	StepPrefix  string
	InfoPrefix  string
	ErrorPrefix string
}

// DefaultTheme is used when no theme is configured.
func DefaultTheme() Theme {
	return Theme{StepPrefix: "==", InfoPrefix: "", ErrorPrefix: "!"}
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

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithSessionOptions forwards options to every session the renderer starts,
// typically a submitter and a logger. The scheduler is always replaced by a
// manual one so delays elapse without waiting.
func WithSessionOptions(opts ...session.Option) Option {
	return func(r *Renderer) {
		r.sessionOpts = append(r.sessionOpts, opts...)
	}
}

// WithSanitizer replaces the policy applied to helper and help text. The
// default strips all markup.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(r *Renderer) {
		if policy != nil {
			r.policy = policy
		}
	}
}
