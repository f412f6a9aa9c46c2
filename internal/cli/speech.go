package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/chapter-digest/internal/app"
	"github.com/nguyentantai21042004/chapter-digest/internal/speech"
)

const voiceLoadTimeout = 3 * time.Second

// waitForVoices gives the asynchronously loaded catalogue a moment to arrive.
func waitForVoices(ctx context.Context, p *speech.Playback) []speech.Voice {
	ctx, cancel := context.WithTimeout(ctx, voiceLoadTimeout)
	defer cancel()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		if v := p.Voices(); len(v) > 0 {
			return v
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (r *runner) voicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List the available reading voices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withEnv(cmd, func(env *app.Env) error {
				p := env.Session.Playback()
				if !p.Supported() {
					return fmt.Errorf("voices: %w", speech.ErrUnsupported)
				}

				voices := waitForVoices(cmd.Context(), p)
				if len(voices) == 0 {
					r.printf("No voices available.\n")
					return nil
				}
				selected, _ := p.SelectedVoice()
				for _, v := range voices {
					mark := " "
					if v == selected {
						mark = "*"
					}
					r.printf("%s %-30s %s\n", mark, v.Name, v.Lang)
				}
				return nil
			})
		},
	}
}

func (r *runner) speakCommand() *cobra.Command {
	var voice string

	cmd := &cobra.Command{
		Use:   "speak <id>",
		Short: "Read a summary aloud",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withEnv(cmd, func(env *app.Env) error {
				s := env.Session
				rec, err := s.Resolve(args[0])
				if err != nil {
					return idError(args[0], err)
				}

				if voice != "" {
					waitForVoices(cmd.Context(), s.Playback())
					if _, err := s.ChangeVoice(voice, r); err != nil {
						return fmt.Errorf("voice %q: %w", voice, err)
					}
				}

				started, err := s.ToggleSpeak(rec.ID, r)
				if err != nil {
					return err
				}
				if !started {
					return nil
				}
				r.printf("Reading %q... press Ctrl+C to stop.\n", rec.ChapterTitle)

				select {
				case <-s.SpeechDone():
				case <-cmd.Context().Done():
					s.StopSpeaking()
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&voice, "voice", "", "voice name to read with (see 'voices')")
	return cmd
}
