package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/chapter-digest/internal/app"
	"github.com/nguyentantai21042004/chapter-digest/internal/inbox"
)

func (r *runner) inboxCommand() *cobra.Command {
	var doneDir string

	cmd := &cobra.Command{
		Use:   "inbox <dir>",
		Short: "Summarize chapter files as they are dropped into a folder",
		Long: `Watch a folder and summarize every new .txt or .md file saved into it.
Summarized files are moved to the done folder (default <dir>/done); files that
fail stay where they are.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if doneDir == "" {
				doneDir = filepath.Join(dir, "done")
			}
			if err := os.MkdirAll(doneDir, 0755); err != nil {
				return fmt.Errorf("create done dir: %w", err)
			}

			return r.withEnv(cmd, func(env *app.Env) error {
				w, err := inbox.New(dir, r.summarizeFile(env.Session, doneDir), env.Logger)
				if err != nil {
					return err
				}
				defer w.Stop()

				r.printf("Watching %s for chapters... press Ctrl+C to stop.\n", dir)
				if err := w.Start(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&doneDir, "done", "", "folder for summarized files")
	return cmd
}

func (r *runner) summarizeFile(s *app.Session, doneDir string) inbox.Handler {
	return func(ctx context.Context, path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		s.SetInput(string(data))

		rec, err := s.Summarize(ctx)
		if err != nil {
			return err
		}
		r.printf("%-10s %s  (%s)\n", shortID(rec.ID), rec.ChapterTitle, filepath.Base(path))

		if err := os.Rename(path, filepath.Join(doneDir, filepath.Base(path))); err != nil {
			return fmt.Errorf("move %s: %w", path, err)
		}
		return nil
	}
}
