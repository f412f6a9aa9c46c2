package speech

import (
	"context"
	"sync"

	"github.com/nguyentantai21042004/chapter-digest/internal/logger"
)

// VoicePolicy decides what SetVoice does while an utterance is playing.
type VoicePolicy string

const (
	// VoicePolicyNextUtterance only records the choice; the playing utterance
	// keeps its voice.
	VoicePolicyNextUtterance VoicePolicy = "next-utterance"
	// VoicePolicyInterrupt cancels the playing utterance without calling its
	// completion callback.
	VoicePolicyInterrupt VoicePolicy = "interrupt"
)

// Playback plays one utterance at a time.
type Playback struct {
	synth      Synthesizer
	logger     logger.Logger
	policy     VoicePolicy
	preferLang string

	mu       sync.Mutex
	voices   []Voice
	selected *Voice
	speaking bool
	// active is the generation of the utterance in flight, 0 when none.
	active uint64
	gen    uint64
	onDone func()
}

func (p *Playback) Supported() bool {
	return p.synth != nil
}

func (p *Playback) Policy() VoicePolicy {
	return p.policy
}

// Speaking reports whether the platform has started the current utterance.
func (p *Playback) Speaking() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speaking
}

// Busy reports whether an utterance is in flight, started or not.
func (p *Playback) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active != 0
}

// Speak starts text with the selected voice and reports whether it was
// accepted. It is a no-op while another utterance is in flight. onDone runs
// once when the utterance ends or fails, never after Cancel.
func (p *Playback) Speak(text string, onDone func()) bool {
	if p.synth == nil {
		return false
	}

	p.mu.Lock()
	if p.active != 0 {
		p.mu.Unlock()
		return false
	}
	p.gen++
	id := p.gen
	p.active = id
	p.onDone = onDone
	var voice *Voice
	if p.selected != nil {
		v := *p.selected
		voice = &v
	}
	p.mu.Unlock()

	p.synth.Cancel()

	err := p.synth.Speak(Utterance{
		Text:    text,
		Voice:   voice,
		OnStart: func() { p.started(id) },
		OnEnd:   func() { p.finished(id, nil) },
		OnError: func(err error) { p.finished(id, err) },
	})
	if err != nil {
		p.finished(id, err)
	}
	return true
}

func (p *Playback) started(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == id {
		p.speaking = true
	}
}

func (p *Playback) finished(id uint64, err error) {
	p.mu.Lock()
	if p.active != id {
		p.mu.Unlock()
		return
	}
	p.active = 0
	p.speaking = false
	done := p.onDone
	p.onDone = nil
	p.mu.Unlock()

	if err != nil {
		p.logger.Error(context.Background(), "Speech synthesis error: %v", err)
	}
	if done != nil {
		done()
	}
}

// Cancel forces Idle and stops platform playback. Callbacks of the cancelled
// utterance are dropped.
func (p *Playback) Cancel() {
	p.mu.Lock()
	p.active = 0
	p.speaking = false
	p.onDone = nil
	p.mu.Unlock()

	if p.synth != nil {
		p.synth.Cancel()
	}
}

// RefreshVoices re-reads the catalogue. An empty catalogue is ignored. The
// default voice is chosen once: the first voice in the preferred language,
// else the first voice.
func (p *Playback) RefreshVoices() {
	if p.synth == nil {
		return
	}
	voices := p.synth.Voices()
	if len(voices) == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.voices = append([]Voice(nil), voices...)
	if p.selected != nil {
		return
	}
	v := p.voices[0]
	for _, candidate := range p.voices {
		if candidate.Lang == p.preferLang {
			v = candidate
			break
		}
	}
	p.selected = &v
}

func (p *Playback) Voices() []Voice {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Voice(nil), p.voices...)
}

func (p *Playback) SelectedVoice() (Voice, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selected == nil {
		return Voice{}, false
	}
	return *p.selected, true
}

func (p *Playback) SetVoice(v Voice) {
	p.mu.Lock()
	p.selected = &v
	interrupt := p.policy == VoicePolicyInterrupt && p.active != 0
	p.mu.Unlock()

	if interrupt {
		p.Cancel()
	}
}

// SetVoiceByName selects the catalogue voice called name.
func (p *Playback) SetVoiceByName(name string) bool {
	p.mu.Lock()
	var found *Voice
	for i := range p.voices {
		if p.voices[i].Name == name {
			v := p.voices[i]
			found = &v
			break
		}
	}
	p.mu.Unlock()

	if found == nil {
		return false
	}
	p.SetVoice(*found)
	return true
}
