// Package command adapts external speech programs to the speech interfaces.
package command

import (
	"context"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/nguyentantai21042004/chapter-digest/internal/logger"
	"github.com/nguyentantai21042004/chapter-digest/internal/speech"
	"github.com/nguyentantai21042004/chapter-digest/pkg/executor"
)

// Available reports whether binary can be found on PATH.
func Available(binary string) bool {
	if binary == "" {
		return false
	}
	_, err := exec.LookPath(binary)
	return err == nil
}

// Synthesizer speaks through an espeak-compatible binary. One process runs
// per utterance.
type Synthesizer struct {
	exec   executor.Executor
	binary string
	logger logger.Logger

	mu        sync.Mutex
	voices    []speech.Voice
	onChanged func()
	current   executor.Process
}

// NewSynthesizer starts loading the voice catalogue in the background and
// fires the voices-changed callback once it arrives.
func NewSynthesizer(ctx context.Context, exec executor.Executor, binary string, log logger.Logger) *Synthesizer {
	s := &Synthesizer{
		exec:   exec,
		binary: binary,
		logger: log,
	}
	go s.loadVoices(ctx)
	return s
}

func (s *Synthesizer) loadVoices(ctx context.Context) {
	out, err := s.exec.Execute(ctx, s.binary, "--voices")
	if err != nil {
		s.logger.Warn(ctx, "Failed to list voices: %v", err)
		return
	}
	voices := parseVoices(out)
	s.logger.Debug(ctx, "Loaded %d voices from %s", len(voices), s.binary)

	s.mu.Lock()
	s.voices = voices
	fn := s.onChanged
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (s *Synthesizer) Voices() []speech.Voice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]speech.Voice(nil), s.voices...)
}

func (s *Synthesizer) OnVoicesChanged(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChanged = fn
}

func (s *Synthesizer) Speak(u speech.Utterance) error {
	var args []string
	if u.Voice != nil {
		args = append(args, "-v", voiceArg(*u.Voice))
	}
	args = append(args, u.Text)

	p, err := s.exec.Start(context.Background(), s.binary, args...)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = p
	s.mu.Unlock()

	go func() {
		if u.OnStart != nil {
			u.OnStart()
		}
		_, _ = io.Copy(io.Discard, p.Stdout())
		err := p.Wait()

		s.mu.Lock()
		if s.current == p {
			s.current = nil
		}
		s.mu.Unlock()

		if err != nil {
			if u.OnError != nil {
				u.OnError(err)
			}
			return
		}
		if u.OnEnd != nil {
			u.OnEnd()
		}
	}()
	return nil
}

// Cancel kills the running utterance, if any.
func (s *Synthesizer) Cancel() {
	s.mu.Lock()
	p := s.current
	s.current = nil
	s.mu.Unlock()

	if p != nil {
		_ = p.Kill()
	}
}

// parseVoices reads the table printed by `espeak-ng --voices`:
//
//	Pty Language       Age/Gender VoiceName          File          Other Languages
//	 5  en-us           --/M      English_(America)  gmw/en-US     (en 2)
func parseVoices(out string) []speech.Voice {
	var voices []speech.Voice
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 || fields[0] == "Pty" {
			continue
		}
		v := speech.Voice{
			Name: fields[3],
			Lang: canonicalLang(fields[1]),
		}
		if len(fields) > 4 {
			v.ID = fields[4]
		}
		voices = append(voices, v)
	}
	return voices
}

// voiceArg picks the -v value for v. Voices sharing a language differ only by
// their file identifier.
func voiceArg(v speech.Voice) string {
	if v.ID != "" {
		return v.ID
	}
	return strings.ToLower(v.Lang)
}

// canonicalLang turns "en-us" into "en-US". Subtags other than a two letter
// region are left alone.
func canonicalLang(tag string) string {
	parts := strings.Split(tag, "-")
	for i := 1; i < len(parts); i++ {
		if len(parts[i]) == 2 {
			parts[i] = strings.ToUpper(parts[i])
		}
	}
	return strings.Join(parts, "-")
}
