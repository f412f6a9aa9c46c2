package app

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/chapter-digest/internal/config"
	"github.com/nguyentantai21042004/chapter-digest/internal/credential"
	"github.com/nguyentantai21042004/chapter-digest/internal/gemini"
	"github.com/nguyentantai21042004/chapter-digest/internal/generation"
	"github.com/nguyentantai21042004/chapter-digest/internal/logger"
	"github.com/nguyentantai21042004/chapter-digest/internal/persist"
	"github.com/nguyentantai21042004/chapter-digest/internal/speech"
	"github.com/nguyentantai21042004/chapter-digest/internal/speech/command"
	"github.com/nguyentantai21042004/chapter-digest/internal/storage"
	"github.com/nguyentantai21042004/chapter-digest/internal/summary"
	"github.com/nguyentantai21042004/chapter-digest/pkg/executor"
)

// Env is one running context: its storage, its persisted stores and the
// session built on them.
type Env struct {
	Backend    storage.Backend
	Syncer     *persist.Syncer
	Credential *credential.Store
	Theme      *ThemeStore
	Session    *Session
	Logger     logger.Logger

	summaries *persist.Store[[]summary.Summary]
}

// Open builds an Env from cfg. Speech adapters are only created when their
// programs are installed; otherwise the controllers are inert.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (*Env, error) {
	backend, err := storage.Open(cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	return build(ctx, cfg, backend, gemini.New(cfg.Gemini.Model, log), executor.New(), log), nil
}

func build(ctx context.Context, cfg *config.Config, backend storage.Backend, summarizer generation.Summarizer, exec executor.Executor, log logger.Logger) *Env {
	creds := credential.New(ctx, backend, log)
	if cfg.APIKey != "" && creds.Seed(ctx, cfg.APIKey) {
		log.Info(ctx, "Stored API key from GEMINI_API_KEY")
	}

	summaries := persist.New(ctx, backend, summary.StorageKey, []summary.Summary{}, log)
	theme := NewThemeStore(ctx, backend, log)

	var synth speech.Synthesizer
	if command.Available(cfg.Speech.Synthesizer.Binary) {
		synth = command.NewSynthesizer(ctx, exec, cfg.Speech.Synthesizer.Binary, log)
	} else {
		log.Warn(ctx, "Speech synthesis unavailable: %q not found", cfg.Speech.Synthesizer.Binary)
	}

	var rec speech.Recognizer
	if rc := cfg.Speech.Recognizer; command.Available(rc.Command) {
		rec = command.NewRecognizer(exec, rc.Command, rc.Args, log)
	} else if rc.Command != "" {
		log.Warn(ctx, "Dictation unavailable: %q not found", rc.Command)
	}

	session := NewSession(Deps{
		Collection: summary.NewCollection(ctx, summaries, log),
		Lifecycle:  generation.New(summarizer, creds, log),
		Playback: speech.NewPlayback(synth, log,
			speech.WithVoicePolicy(speech.VoicePolicy(cfg.Speech.VoicePolicy)),
			speech.WithPreferredLanguage(cfg.Speech.Language),
		),
		Recognizer: rec,
		Language:   cfg.Speech.Language,
		MaxChars:   cfg.Input.MaxChars,
	}, log)

	syncer := persist.NewSyncer(backend, log)
	syncer.Register(summaries)
	syncer.Register(creds.Persisted())
	syncer.Register(theme.Persisted())

	return &Env{
		Backend:    backend,
		Syncer:     syncer,
		Credential: creds,
		Theme:      theme,
		Session:    session,
		Logger:     log,
		summaries:  summaries,
	}
}

// OnSummariesChanged runs fn with the full collection whenever another
// context changes it. Changes only arrive while Syncer.Run is active.
func (e *Env) OnSummariesChanged(fn func([]summary.Summary)) func() {
	return e.summaries.Subscribe(fn)
}

// Close shuts the session down before closing storage, so a summary that
// finishes after its caller gave up is still persisted.
func (e *Env) Close() error {
	e.Session.Shutdown()
	return e.Backend.Close()
}
