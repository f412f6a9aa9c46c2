package speech

import (
	"github.com/nguyentantai21042004/chapter-digest/internal/logger"
)

const DefaultLanguage = "en-US"

// NewDictation wraps rec. A nil rec yields an unsupported, inert controller.
// onTranscript receives each finalized, trimmed transcript.
func NewDictation(rec Recognizer, language string, onTranscript func(string), log logger.Logger) *Dictation {
	if language == "" {
		language = DefaultLanguage
	}
	return &Dictation{
		rec:          rec,
		language:     language,
		onTranscript: onTranscript,
		logger:       log,
	}
}

type Option func(*Playback)

// WithVoicePolicy sets what SetVoice does while an utterance is playing.
func WithVoicePolicy(p VoicePolicy) Option {
	return func(pb *Playback) {
		pb.policy = p
	}
}

// WithPreferredLanguage sets the language tag used for default voice selection.
func WithPreferredLanguage(lang string) Option {
	return func(pb *Playback) {
		if lang != "" {
			pb.preferLang = lang
		}
	}
}

// NewPlayback wraps synth. A nil synth yields an unsupported, inert controller.
func NewPlayback(synth Synthesizer, log logger.Logger, opts ...Option) *Playback {
	p := &Playback{
		synth:      synth,
		logger:     log,
		policy:     VoicePolicyNextUtterance,
		preferLang: DefaultLanguage,
	}
	for _, opt := range opts {
		opt(p)
	}

	if synth != nil {
		synth.OnVoicesChanged(p.RefreshVoices)
		p.RefreshVoices()
	}
	return p
}
