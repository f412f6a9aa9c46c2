// Package app holds the per-session policy that ties the summary collection,
// the generation lifecycle and the speech controllers together.
package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/nguyentantai21042004/chapter-digest/internal/generation"
	"github.com/nguyentantai21042004/chapter-digest/internal/logger"
	"github.com/nguyentantai21042004/chapter-digest/internal/speech"
	"github.com/nguyentantai21042004/chapter-digest/internal/summary"
)

const DefaultMaxChars = 15000

type Deps struct {
	Collection *summary.Collection
	Lifecycle  *generation.Lifecycle
	Playback   *speech.Playback
	// Recognizer may be nil when dictation is unavailable.
	Recognizer speech.Recognizer
	Language   string
	MaxChars   int
}

type Session struct {
	collection *summary.Collection
	lifecycle  *generation.Lifecycle
	playback   *speech.Playback
	dictation  *speech.Dictation
	maxChars   int
	logger     logger.Logger

	// late tracks results still being stored after their caller gave up.
	late sync.WaitGroup

	mu         sync.Mutex
	input      string
	speakingID string
	speechDone chan struct{}
	search     string
}

func NewSession(deps Deps, log logger.Logger) *Session {
	s := &Session{
		collection: deps.Collection,
		lifecycle:  deps.Lifecycle,
		playback:   deps.Playback,
		maxChars:   deps.MaxChars,
		logger:     log,
		speechDone: closedChan(),
	}
	if s.maxChars <= 0 {
		s.maxChars = DefaultMaxChars
	}
	s.dictation = speech.NewDictation(deps.Recognizer, deps.Language, s.AppendTranscript, log)
	return s
}

func (s *Session) Collection() *summary.Collection  { return s.collection }
func (s *Session) Lifecycle() *generation.Lifecycle { return s.lifecycle }
func (s *Session) Playback() *speech.Playback       { return s.playback }
func (s *Session) Dictation() *speech.Dictation     { return s.dictation }

// Input is the pending chapter text.
func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// SetInput replaces the pending text, truncated to the character limit.
func (s *Session) SetInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = truncate(text, s.maxChars)
}

// AppendTranscript adds dictated text to the pending input, separated by a
// space when there is already something there.
func (s *Session) AppendTranscript(t string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := t
	if strings.TrimSpace(s.input) != "" {
		next = s.input + " " + t
	}
	s.input = truncate(next, s.maxChars)
}

// Summarize submits the pending input and inserts the result. The input is
// cleared once the request is accepted. If ctx ends first the request still
// runs and its result is inserted when it arrives, as long as Shutdown is
// called before the process exits.
func (s *Session) Summarize(ctx context.Context) (summary.Summary, error) {
	text := strings.TrimSpace(s.Input())
	if text == "" {
		return summary.Summary{}, ErrEmptyChapter
	}
	if s.lifecycle.Loading() {
		return summary.Summary{}, generation.ErrBusy
	}

	req, err := s.lifecycle.Submit(ctx, text)
	if err != nil {
		return summary.Summary{}, err
	}
	s.SetInput("")

	draft, err := req.Wait(ctx)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			s.late.Add(1)
			go func() {
				defer s.late.Done()
				s.insertLate(context.WithoutCancel(ctx), req)
			}()
		}
		return summary.Summary{}, err
	}
	return s.collection.Insert(ctx, draft), nil
}

func (s *Session) insertLate(ctx context.Context, req *generation.Request) {
	draft, err := req.Wait(ctx)
	if err != nil {
		return
	}
	rec := s.collection.Insert(ctx, draft)
	s.logger.Info(ctx, "Stored summary %s after caller stopped waiting", rec.ID)
}

// SpeakingID is the id of the record being read aloud, or "".
func (s *Session) SpeakingID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speakingID
}

// SpeechDone is closed when the current read-aloud ends for any reason.
func (s *Session) SpeechDone() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speechDone
}

// ToggleSpeak reads record id aloud, or stops it when it is already being
// read and confirm agrees. Reading another record stops the current one
// first. It reports whether reading started.
func (s *Session) ToggleSpeak(id string, confirm Confirmer) (bool, error) {
	if current := s.SpeakingID(); current != "" && current == id {
		if confirm.Confirm(PromptStopSpeaking) {
			s.stopSpeaking()
		}
		return false, nil
	}

	if !s.playback.Supported() {
		return false, speech.ErrUnsupported
	}
	rec, ok := s.collection.Get(id)
	if !ok {
		return false, ErrNotFound
	}

	s.stopSpeaking()

	done := make(chan struct{})
	s.mu.Lock()
	s.speakingID = id
	s.speechDone = done
	s.mu.Unlock()

	if !s.playback.Speak(summary.Narration(rec), func() { s.clearSpeaking(done) }) {
		s.clearSpeaking(done)
		return false, nil
	}
	return true, nil
}

// StopSpeaking ends the current read-aloud without asking. It does nothing
// when nothing is being read.
func (s *Session) StopSpeaking() {
	s.stopSpeaking()
}

func (s *Session) stopSpeaking() {
	s.playback.Cancel()
	s.mu.Lock()
	done := s.speechDone
	s.mu.Unlock()
	s.clearSpeaking(done)
}

// clearSpeaking ends the read-aloud that owns done. Later read-alouds are
// left alone.
func (s *Session) clearSpeaking(done chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.speechDone != done {
		return
	}
	select {
	case <-done:
	default:
		close(done)
	}
	s.speakingID = ""
}

// ChangeVoice selects the voice called name. Under the next-utterance policy
// the current reading carries on in the old voice. Under the interrupt policy
// a change while reading needs confirmation and stops the reading. It reports
// whether the voice changed.
func (s *Session) ChangeVoice(name string, confirm Confirmer) (bool, error) {
	if !hasVoice(s.playback.Voices(), name) {
		return false, ErrUnknownVoice
	}

	if s.playback.Policy() != speech.VoicePolicyInterrupt || !s.playback.Busy() {
		return s.playback.SetVoiceByName(name), nil
	}

	if !confirm.Confirm(PromptChangeVoice) {
		return false, nil
	}
	s.mu.Lock()
	done := s.speechDone
	s.mu.Unlock()

	// SetVoice cancels the utterance and its onDone never runs.
	changed := s.playback.SetVoiceByName(name)
	s.clearSpeaking(done)
	return changed, nil
}

func hasVoice(voices []speech.Voice, name string) bool {
	for _, v := range voices {
		if v.Name == name {
			return true
		}
	}
	return false
}

// Update replaces an existing record.
func (s *Session) Update(ctx context.Context, rec summary.Summary) error {
	if _, ok := s.collection.Get(rec.ID); !ok {
		return ErrNotFound
	}
	s.collection.Update(ctx, rec)
	return nil
}

// Delete removes record id after confirmation, stopping it if it is being
// read. It reports whether the record was removed.
func (s *Session) Delete(ctx context.Context, id string, confirm Confirmer) (bool, error) {
	if _, ok := s.collection.Get(id); !ok {
		return false, ErrNotFound
	}
	if !confirm.Confirm(PromptDelete) {
		return false, nil
	}
	if s.SpeakingID() == id {
		s.stopSpeaking()
	}
	s.collection.Delete(ctx, id)
	return true, nil
}

// ClearAll removes every record after confirmation.
func (s *Session) ClearAll(ctx context.Context, confirm Confirmer) bool {
	if !confirm.Confirm(PromptClearAll) {
		return false
	}
	if s.SpeakingID() != "" {
		s.stopSpeaking()
	}
	s.collection.Clear(ctx)
	return true
}

func (s *Session) SetSearch(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = q
}

func (s *Session) Search() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.search
}

// Visible returns the records matching the current search.
func (s *Session) Visible() []summary.Summary {
	return s.collection.Search(s.Search())
}

// Resolve finds the record whose id is or starts with prefix.
func (s *Session) Resolve(prefix string) (summary.Summary, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return summary.Summary{}, ErrNotFound
	}

	var found []summary.Summary
	for _, rec := range s.collection.All() {
		if rec.ID == prefix {
			return rec, nil
		}
		if strings.HasPrefix(rec.ID, prefix) {
			found = append(found, rec)
		}
	}
	switch len(found) {
	case 0:
		return summary.Summary{}, ErrNotFound
	case 1:
		return found[0], nil
	default:
		return summary.Summary{}, ErrAmbiguousID
	}
}

// Shutdown stops any speech and dictation in progress, then waits for
// abandoned summaries to be stored.
func (s *Session) Shutdown() {
	s.stopSpeaking()
	if s.dictation.Listening() {
		s.dictation.Toggle()
	}
	s.late.Wait()
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max])
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
