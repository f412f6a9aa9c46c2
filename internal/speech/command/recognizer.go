package command

import (
	"bufio"
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/nguyentantai21042004/chapter-digest/internal/logger"
	"github.com/nguyentantai21042004/chapter-digest/internal/speech"
	"github.com/nguyentantai21042004/chapter-digest/pkg/executor"
)

// LanguagePlaceholder in recognizer args is replaced with the session language.
const LanguagePlaceholder = "{lang}"

// Recognizer runs a streaming speech-to-text command that prints one JSON
// object per line: {"text": "...", "final": true}.
type Recognizer struct {
	exec    executor.Executor
	command string
	args    []string
	logger  logger.Logger

	mu      sync.Mutex
	current executor.Process
}

func NewRecognizer(exec executor.Executor, command string, args []string, log logger.Logger) *Recognizer {
	return &Recognizer{
		exec:    exec,
		command: command,
		args:    args,
		logger:  log,
	}
}

type line struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

func (r *Recognizer) Start(opts speech.RecognitionOptions, h speech.RecognitionHandler) error {
	args := make([]string, len(r.args))
	for i, a := range r.args {
		args[i] = strings.ReplaceAll(a, LanguagePlaceholder, opts.Language)
	}

	p, err := r.exec.Start(context.Background(), r.command, args...)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.current = p
	r.mu.Unlock()

	go r.stream(p, opts, h)
	return nil
}

func (r *Recognizer) stream(p executor.Process, opts speech.RecognitionOptions, h speech.RecognitionHandler) {
	ctx := context.Background()
	scanner := bufio.NewScanner(p.Stdout())
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var l line
		if err := json.Unmarshal([]byte(raw), &l); err != nil {
			r.logger.Debug(ctx, "Skipping recognizer output %q: %v", raw, err)
			continue
		}
		if !l.Final && !opts.InterimResults {
			continue
		}
		h.OnResult(speech.ResultBatch{
			Results: []speech.Result{{Transcript: l.Text, Final: l.Final}},
		})
	}

	err := p.Wait()

	r.mu.Lock()
	stopped := r.current != p
	if !stopped {
		r.current = nil
	}
	r.mu.Unlock()

	if err != nil && !stopped {
		h.OnError(err)
		return
	}
	h.OnEnd()
}

// Stop ends the running session. The handler still receives OnEnd.
func (r *Recognizer) Stop() {
	r.mu.Lock()
	p := r.current
	r.current = nil
	r.mu.Unlock()

	if p != nil {
		_ = p.Kill()
	}
}
