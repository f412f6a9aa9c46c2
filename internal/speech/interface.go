package speech

import "errors"

// ErrUnsupported reports that the platform lacks a speech capability.
var ErrUnsupported = errors.New("speech is not supported on this system")

// Recognizer is a platform speech-to-text engine. Start must return an error
// synchronously when the session cannot begin; afterwards the handler is
// called from any goroutine.
type Recognizer interface {
	Start(opts RecognitionOptions, h RecognitionHandler) error
	Stop()
}

type RecognitionOptions struct {
	Language       string
	Continuous     bool
	InterimResults bool
}

// RecognitionHandler receives the events of one recognition session.
type RecognitionHandler interface {
	OnResult(batch ResultBatch)
	OnEnd()
	OnError(err error)
}

// ResultBatch carries the session's results. Entries before ResultIndex were
// already reported in an earlier batch.
type ResultBatch struct {
	ResultIndex int
	Results     []Result
}

type Result struct {
	Transcript string
	Final      bool
}

// Synthesizer is a platform text-to-speech engine with a voice catalogue that
// may be populated after construction.
type Synthesizer interface {
	Voices() []Voice
	OnVoicesChanged(fn func())
	Speak(u Utterance) error
	Cancel()
}

type Voice struct {
	Name string
	Lang string
	// ID is the platform's identifier for the voice, when it has one.
	ID string
}

// Utterance is one unit of speech. Voice nil means the platform default. At
// most one of OnEnd and OnError fires.
type Utterance struct {
	Text    string
	Voice   *Voice
	OnStart func()
	OnEnd   func()
	OnError func(err error)
}
