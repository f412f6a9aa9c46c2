package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/chapter-digest/internal/app"
	"github.com/nguyentantai21042004/chapter-digest/internal/export"
	"github.com/nguyentantai21042004/chapter-digest/internal/speech"
)

func (r *runner) summarizeCommand() *cobra.Command {
	var dictate bool

	cmd := &cobra.Command{
		Use:   "summarize [file|-]",
		Short: "Summarize a chapter from a file, stdin or dictation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withEnv(cmd, func(env *app.Env) error {
				s := env.Session

				if dictate {
					if err := r.dictate(cmd, s); err != nil {
						return err
					}
				} else {
					text, err := r.readChapter(args)
					if err != nil {
						return err
					}
					s.SetInput(text)
				}

				fmt.Fprintln(r.opts.Err, "Summarizing...")
				rec, err := s.Summarize(cmd.Context())
				if errors.Is(err, context.Canceled) {
					fmt.Fprintln(r.opts.Err, "Waiting for the summary in progress so it can be saved...")
				}
				if err != nil {
					return err
				}
				r.printf("%s\nid: %s\n", export.Markdown(rec), rec.ID)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dictate, "dictate", false, "dictate the chapter instead of reading it")
	return cmd
}

func (r *runner) readChapter(args []string) (string, error) {
	var src io.Reader = r.in
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return "", err
		}
		defer f.Close()
		src = f
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("read chapter: %w", err)
	}
	return string(data), nil
}

// dictate listens until the user presses Enter.
func (r *runner) dictate(cmd *cobra.Command, s *app.Session) error {
	d := s.Dictation()
	if !d.Supported() {
		return fmt.Errorf("dictation: %w (set speech.recognizer.command)", speech.ErrUnsupported)
	}

	d.Toggle()
	if !d.Listening() {
		return fmt.Errorf("dictation could not start")
	}
	fmt.Fprintln(r.opts.Err, "Listening... press Enter to stop.")

	enter := make(chan struct{})
	go func() {
		_, _ = r.readLine()
		close(enter)
	}()

	select {
	case <-enter:
	case <-cmd.Context().Done():
	}
	if d.Listening() {
		d.Toggle()
	}
	fmt.Fprintf(r.opts.Err, "Captured %d characters.\n", len([]rune(s.Input())))
	return cmd.Context().Err()
}
