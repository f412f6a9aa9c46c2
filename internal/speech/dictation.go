package speech

import (
	"context"
	"strings"
	"sync"

	"github.com/nguyentantai21042004/chapter-digest/internal/logger"
)

// Dictation turns a continuous recognition session into Idle/Listening state
// and delivers only finalized text.
type Dictation struct {
	rec          Recognizer
	language     string
	onTranscript func(string)
	logger       logger.Logger

	mu        sync.Mutex
	listening bool
	session   uint64
}

func (d *Dictation) Supported() bool {
	return d.rec != nil
}

func (d *Dictation) Listening() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.listening
}

// Toggle starts a session when idle and stops it when listening. Results that
// the stopped session still reports before it ends are delivered.
func (d *Dictation) Toggle() {
	if d.rec == nil {
		return
	}

	d.mu.Lock()
	if d.listening {
		d.listening = false
		d.mu.Unlock()
		d.rec.Stop()
		return
	}
	d.session++
	id := d.session
	d.listening = true
	d.mu.Unlock()

	err := d.rec.Start(RecognitionOptions{
		Language:       d.language,
		Continuous:     true,
		InterimResults: true,
	}, &sessionHandler{d: d, id: id})
	if err != nil {
		d.logger.Error(context.Background(), "Speech recognition could not start: %v", err)
		d.end(id)
	}
}

func (d *Dictation) current(id uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session == id
}

func (d *Dictation) end(id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session == id {
		d.listening = false
	}
}

type sessionHandler struct {
	d  *Dictation
	id uint64
}

func (h *sessionHandler) OnResult(batch ResultBatch) {
	if !h.d.current(h.id) {
		return
	}
	text := finalTranscript(batch)
	if text != "" && h.d.onTranscript != nil {
		h.d.onTranscript(text)
	}
}

func (h *sessionHandler) OnEnd() {
	h.d.end(h.id)
}

func (h *sessionHandler) OnError(err error) {
	h.d.logger.Warn(context.Background(), "Speech recognition error: %v", err)
	h.d.end(h.id)
}

func finalTranscript(batch ResultBatch) string {
	start := batch.ResultIndex
	if start < 0 {
		start = 0
	}
	var sb strings.Builder
	for i := start; i < len(batch.Results); i++ {
		if batch.Results[i].Final {
			sb.WriteString(batch.Results[i].Transcript)
		}
	}
	return strings.TrimSpace(sb.String())
}
