package generation

import (
	"errors"
)

const fallbackMessage = "An unexpected error occurred."

var (
	// ErrCredentialMissing is wrapped by ConfigurationError when no API key is set.
	ErrCredentialMissing = errors.New("credential not configured")
	// ErrBusy is returned by Submit while a request is outstanding.
	ErrBusy = errors.New("a summary is already being generated")
)

// ConfigurationError blocks a submission before any request is made.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return "API key is not configured. Set your Gemini API key and try again."
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// GenerationError reports a summarizer failure. Message is what the user sees.
type GenerationError struct {
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	return e.Message
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func newGenerationError(err error) *GenerationError {
	msg := err.Error()
	if msg == "" {
		msg = fallbackMessage
	}
	return &GenerationError{Message: msg, Err: err}
}
