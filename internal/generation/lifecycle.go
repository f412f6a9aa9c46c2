// Package generation guards the single outstanding summarization request.
package generation

import (
	"context"
	"sync"
	"time"

	"github.com/nguyentantai21042004/chapter-digest/internal/logger"
	"github.com/nguyentantai21042004/chapter-digest/internal/summary"
)

type State int

const (
	Idle State = iota
	Loading
)

func (s State) String() string {
	if s == Loading {
		return "loading"
	}
	return "idle"
}

// Lifecycle runs at most one summarization at a time. Overlapping submissions
// are rejected, never queued, and an accepted request cannot be cancelled.
type Lifecycle struct {
	summarizer Summarizer
	creds      CredentialSource
	logger     logger.Logger

	mu        sync.Mutex
	loading   bool
	lastError string
}

// Submit starts summarizing text. It fails immediately with a
// *ConfigurationError when no API key is set and with ErrBusy while another
// request is loading.
func (l *Lifecycle) Submit(ctx context.Context, text string) (*Request, error) {
	l.mu.Lock()
	if l.loading {
		l.mu.Unlock()
		return nil, ErrBusy
	}

	key, ok := l.creds.APIKey()
	if !ok {
		err := &ConfigurationError{Err: ErrCredentialMissing}
		l.lastError = err.Error()
		l.mu.Unlock()
		l.logger.Warn(ctx, "Submit rejected: %v", err)
		return nil, err
	}

	l.loading = true
	l.lastError = ""
	l.mu.Unlock()

	req := newRequest()
	go l.run(context.WithoutCancel(ctx), req, text, key)
	return req, nil
}

func (l *Lifecycle) run(ctx context.Context, req *Request, text, key string) {
	start := time.Now()
	l.logger.Info(ctx, "Summarizing chapter (%d chars)", len(text))

	draft, err := l.summarizer.Summarize(ctx, text, key)

	var result error
	l.mu.Lock()
	l.loading = false
	if err != nil {
		genErr := newGenerationError(err)
		l.lastError = genErr.Message
		result = genErr
	}
	l.mu.Unlock()

	if result != nil {
		l.logger.Error(ctx, "Summarization failed after %s: %v", time.Since(start), err)
	} else {
		l.logger.Info(ctx, "Summarized %q in %s", draft.ChapterTitle, time.Since(start))
	}
	req.finish(draft, result)
}

func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loading {
		return Loading
	}
	return Idle
}

func (l *Lifecycle) Loading() bool {
	return l.State() == Loading
}

// LastError is the user-visible message of the last failed submission, or "".
func (l *Lifecycle) LastError() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastError
}

func (l *Lifecycle) DismissError() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastError = ""
}

// Request is the handle for one accepted submission. It completes exactly once.
type Request struct {
	done  chan struct{}
	draft summary.Draft
	err   error
}

func newRequest() *Request {
	return &Request{done: make(chan struct{})}
}

func (r *Request) finish(draft summary.Draft, err error) {
	r.draft = draft
	r.err = err
	close(r.done)
}

// Done is closed when the request has completed.
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the request completes or ctx is done. Giving up on ctx
// does not cancel the request itself.
func (r *Request) Wait(ctx context.Context) (summary.Draft, error) {
	select {
	case <-r.done:
		return r.draft, r.err
	case <-ctx.Done():
		return summary.Draft{}, ctx.Err()
	}
}
