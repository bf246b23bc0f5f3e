package tui

import (
	"io"

	"go.uber.org/zap"

	"github.com/goliatone/go-strategy-wizard/pkg/form"
	"github.com/goliatone/go-strategy-wizard/pkg/strategy"
)

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the survey-backed driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithOutput sets where progress, banners and the summary are written.
func WithOutput(w io.Writer) Option {
	return func(s *Session) {
		if w != nil {
			s.out = w
		}
	}
}

// WithTheme overrides DefaultTheme.
func WithTheme(theme Theme) Option {
	return func(s *Session) {
		s.theme = theme
	}
}

// WithRegistry overrides the embedded strategy registry.
func WithRegistry(reg *strategy.Registry) Option {
	return func(s *Session) {
		if reg != nil {
			s.registry = reg
		}
	}
}

// WithInterpreter overrides the default field interpreter.
func WithInterpreter(in *form.Interpreter) Option {
	return func(s *Session) {
		if in != nil {
			s.interpreter = in
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSpinner toggles the spinner shown while a submission runs.
func WithSpinner(enabled bool) Option {
	return func(s *Session) {
		s.spinner = enabled
	}
}
