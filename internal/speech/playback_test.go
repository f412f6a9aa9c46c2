package speech

import (
	"errors"
	"sync"
	"testing"

	"github.com/nguyentantai21042004/chapter-digest/internal/logger"
)

type fakeSynth struct {
	mu         sync.Mutex
	voices     []Voice
	onChanged  func()
	utterances []Utterance
	cancels    int
	speakErr   error
}

func (s *fakeSynth) Voices() []Voice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Voice(nil), s.voices...)
}

func (s *fakeSynth) OnVoicesChanged(fn func()) {
	s.onChanged = fn
}

func (s *fakeSynth) Speak(u Utterance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.speakErr != nil {
		return s.speakErr
	}
	s.utterances = append(s.utterances, u)
	return nil
}

func (s *fakeSynth) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels++
}

func (s *fakeSynth) last() Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.utterances[len(s.utterances)-1]
}

func (s *fakeSynth) setVoices(v []Voice) {
	s.mu.Lock()
	s.voices = v
	s.mu.Unlock()
	s.onChanged()
}

type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) inc() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
}

func (c *counter) get() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

var (
	gb = Voice{Name: "en-gb", Lang: "en-GB"}
	us = Voice{Name: "en-us", Lang: "en-US"}
	fr = Voice{Name: "fr", Lang: "fr-FR"}
)

func TestPlaybackUnsupported(t *testing.T) {
	p := NewPlayback(nil, logger.NewNop())
	if p.Supported() {
		t.Error("Supported() = true without a synthesizer")
	}
	if p.Speak("hi", nil) {
		t.Error("Speak() accepted on unsupported controller")
	}
	p.Cancel()
	if p.Speaking() {
		t.Error("Speaking() = true")
	}
}

func TestPlaybackDefaultVoice(t *testing.T) {
	tests := []struct {
		name   string
		voices []Voice
		want   Voice
	}{
		{name: "prefers en-US", voices: []Voice{gb, us, fr}, want: us},
		{name: "falls back to first", voices: []Voice{fr, gb}, want: fr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlayback(&fakeSynth{voices: tt.voices}, logger.NewNop())
			got, ok := p.SelectedVoice()
			if !ok || got != tt.want {
				t.Errorf("SelectedVoice() = %v, %v; want %v", got, ok, tt.want)
			}
		})
	}
}

func TestPlaybackVoicesArriveLater(t *testing.T) {
	synth := &fakeSynth{}
	p := NewPlayback(synth, logger.NewNop())

	if _, ok := p.SelectedVoice(); ok {
		t.Fatal("voice selected from empty catalogue")
	}

	synth.setVoices([]Voice{fr, us})
	if got, _ := p.SelectedVoice(); got != us {
		t.Errorf("SelectedVoice() = %v, want %v", got, us)
	}
	if len(p.Voices()) != 2 {
		t.Errorf("Voices() = %v, want 2 voices", p.Voices())
	}

	// Default is applied once; later catalogue changes keep the choice.
	synth.setVoices([]Voice{gb, us})
	if got, _ := p.SelectedVoice(); got != us {
		t.Errorf("SelectedVoice() after refresh = %v, want %v", got, us)
	}

	// An empty catalogue does not clear the known voices.
	synth.setVoices(nil)
	if len(p.Voices()) != 2 {
		t.Errorf("Voices() = %v after empty refresh", p.Voices())
	}
}

func TestPlaybackLifecycle(t *testing.T) {
	synth := &fakeSynth{voices: []Voice{us}}
	p := NewPlayback(synth, logger.NewNop())

	var done counter
	if !p.Speak("hello", done.inc) {
		t.Fatal("Speak() rejected")
	}
	u := synth.last()
	if u.Text != "hello" || u.Voice == nil || *u.Voice != us {
		t.Errorf("utterance = %+v, want hello with %v", u, us)
	}
	if synth.cancels != 1 {
		t.Errorf("stray state not cancelled before speaking")
	}
	if p.Speaking() {
		t.Error("Speaking() = true before start")
	}

	u.OnStart()
	if !p.Speaking() {
		t.Error("Speaking() = false after start")
	}
	if p.Speak("again", done.inc) {
		t.Error("Speak() accepted while speaking")
	}

	u.OnEnd()
	if p.Speaking() {
		t.Error("Speaking() = true after end")
	}
	if done.get() != 1 {
		t.Errorf("onDone called %d times, want 1", done.get())
	}

	// Late duplicate events are ignored.
	u.OnError(errors.New("late"))
	if done.get() != 1 {
		t.Errorf("onDone called %d times after late error", done.get())
	}
}

func TestPlaybackErrorCompletes(t *testing.T) {
	synth := &fakeSynth{}
	p := NewPlayback(synth, logger.NewNop())

	var done counter
	p.Speak("x", done.inc)
	u := synth.last()
	if u.Voice != nil {
		t.Errorf("Voice = %v, want platform default", u.Voice)
	}
	u.OnStart()
	u.OnError(errors.New("synthesis-failed"))

	if p.Speaking() || p.Busy() {
		t.Error("controller not idle after error")
	}
	if done.get() != 1 {
		t.Errorf("onDone called %d times, want 1", done.get())
	}
}

func TestPlaybackSpeakFailure(t *testing.T) {
	synth := &fakeSynth{speakErr: errors.New("no audio device")}
	p := NewPlayback(synth, logger.NewNop())

	var done counter
	p.Speak("x", done.inc)
	if p.Busy() {
		t.Error("Busy() = true after platform refused the utterance")
	}
	if done.get() != 1 {
		t.Errorf("onDone called %d times, want 1", done.get())
	}
}

func TestPlaybackCancel(t *testing.T) {
	synth := &fakeSynth{voices: []Voice{us}}
	p := NewPlayback(synth, logger.NewNop())

	// Idle cancel is harmless.
	p.Cancel()
	p.Cancel()

	var done counter
	p.Speak("hello", done.inc)
	u := synth.last()
	u.OnStart()

	p.Cancel()
	if p.Speaking() || p.Busy() {
		t.Error("controller not idle after Cancel")
	}
	u.OnEnd()
	u.OnError(errors.New("interrupted"))
	if done.get() != 0 {
		t.Errorf("onDone called %d times after Cancel, want 0", done.get())
	}

	// A new utterance can start right away.
	if !p.Speak("next", done.inc) {
		t.Error("Speak() rejected after Cancel")
	}
	u.OnStart()
	if p.Speaking() {
		t.Error("cancelled utterance's start marked the new one as speaking")
	}
}

func TestPlaybackSetVoiceByName(t *testing.T) {
	p := NewPlayback(&fakeSynth{voices: []Voice{us, fr}}, logger.NewNop())

	if !p.SetVoiceByName("fr") {
		t.Fatal("SetVoiceByName(fr) = false")
	}
	if got, _ := p.SelectedVoice(); got != fr {
		t.Errorf("SelectedVoice() = %v, want %v", got, fr)
	}
	if p.SetVoiceByName("klingon") {
		t.Error("SetVoiceByName(unknown) = true")
	}
	if got, _ := p.SelectedVoice(); got != fr {
		t.Errorf("unknown name changed the selection to %v", got)
	}
}

func TestVoicePolicy(t *testing.T) {
	tests := []struct {
		name         string
		policy       VoicePolicy
		wantSpeaking bool
		wantDone     int
	}{
		{name: "next utterance keeps playing", policy: VoicePolicyNextUtterance, wantSpeaking: true, wantDone: 1},
		{name: "interrupt cancels", policy: VoicePolicyInterrupt, wantSpeaking: false, wantDone: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synth := &fakeSynth{voices: []Voice{us, fr}}
			p := NewPlayback(synth, logger.NewNop(), WithVoicePolicy(tt.policy))

			var done counter
			p.Speak("hello", done.inc)
			u := synth.last()
			u.OnStart()
			cancelsBefore := synth.cancels

			p.SetVoice(fr)
			if got, _ := p.SelectedVoice(); got != fr {
				t.Errorf("SelectedVoice() = %v, want %v", got, fr)
			}
			if p.Speaking() != tt.wantSpeaking {
				t.Errorf("Speaking() = %v, want %v", p.Speaking(), tt.wantSpeaking)
			}
			if interrupted := synth.cancels > cancelsBefore; interrupted == tt.wantSpeaking {
				t.Errorf("platform cancel = %v with policy %s", interrupted, tt.policy)
			}

			u.OnEnd()
			if done.get() != tt.wantDone {
				t.Errorf("onDone called %d times, want %d", done.get(), tt.wantDone)
			}

			// The next utterance uses the new voice under either policy.
			p.Speak("again", nil)
			if v := synth.last().Voice; v == nil || *v != fr {
				t.Errorf("next utterance voice = %v, want %v", v, fr)
			}
		})
	}
}

func TestPreferredLanguage(t *testing.T) {
	p := NewPlayback(&fakeSynth{voices: []Voice{us, gb}}, logger.NewNop(), WithPreferredLanguage("en-GB"))
	if got, _ := p.SelectedVoice(); got != gb {
		t.Errorf("SelectedVoice() = %v, want %v", got, gb)
	}
}
