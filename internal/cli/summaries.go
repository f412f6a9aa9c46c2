package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/chapter-digest/internal/app"
	"github.com/nguyentantai21042004/chapter-digest/internal/export"
	"github.com/nguyentantai21042004/chapter-digest/internal/summary"
)

const shortIDLen = 8

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

func (r *runner) printTable(list []summary.Summary) {
	r.printf("%-10s %-9s %-6s %s\n", "ID", "TAKEAWAYS", "QUOTES", "TITLE")
	r.printf("%s\n", strings.Repeat("─", 60))
	for _, s := range list {
		r.printf("%-10s %-9d %-6d %s\n", shortID(s.ID), len(s.Takeaways), len(s.Quotes), s.ChapterTitle)
	}
}

func (r *runner) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored summaries, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withEnv(cmd, func(env *app.Env) error {
				all := env.Session.Collection().All()
				if len(all) == 0 {
					r.printf("Your summaries will appear here. Run 'chapterdigest summarize' to get started.\n")
					return nil
				}
				r.printTable(all)
				return nil
			})
		},
	}
}

func (r *runner) searchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find summaries by title, takeaway or quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withEnv(cmd, func(env *app.Env) error {
				env.Session.SetSearch(args[0])
				found := env.Session.Visible()
				if len(found) == 0 {
					r.printf("Your search for %q did not match any summaries.\n", args[0])
					return nil
				}
				r.printTable(found)
				return nil
			})
		},
	}
}

func (r *runner) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withEnv(cmd, func(env *app.Env) error {
				rec, err := env.Session.Resolve(args[0])
				if err != nil {
					return idError(args[0], err)
				}
				r.printf("%s", export.Markdown(rec))
				return nil
			})
		},
	}
}

func (r *runner) editCommand() *cobra.Command {
	var title, takeawaysFile, quotesFile string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a summary's title, takeaways or quotes",
		Long: `Change a summary. Takeaways and quotes are read from files with one entry
per line; blank lines are ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("title") && !flags.Changed("takeaways-file") && !flags.Changed("quotes-file") {
				return errors.New("nothing to change: use --title, --takeaways-file or --quotes-file")
			}

			return r.withEnv(cmd, func(env *app.Env) error {
				rec, err := env.Session.Resolve(args[0])
				if err != nil {
					return idError(args[0], err)
				}

				if flags.Changed("title") {
					if strings.TrimSpace(title) == "" {
						return errors.New("title cannot be empty")
					}
					rec.ChapterTitle = strings.TrimSpace(title)
				}
				if flags.Changed("takeaways-file") {
					if rec.Takeaways, err = readLines(takeawaysFile); err != nil {
						return err
					}
				}
				if flags.Changed("quotes-file") {
					if rec.Quotes, err = readLines(quotesFile); err != nil {
						return err
					}
				}

				if err := env.Session.Update(cmd.Context(), rec); err != nil {
					return idError(args[0], err)
				}
				r.printf("Updated %s.\n", shortID(rec.ID))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new chapter title")
	cmd.Flags().StringVar(&takeawaysFile, "takeaways-file", "", "file with one takeaway per line")
	cmd.Flags().StringVar(&quotesFile, "quotes-file", "", "file with one quote per line")
	return cmd
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return summary.ParseLines(string(data)), nil
}

func (r *runner) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withEnv(cmd, func(env *app.Env) error {
				rec, err := env.Session.Resolve(args[0])
				if err != nil {
					return idError(args[0], err)
				}
				removed, err := env.Session.Delete(cmd.Context(), rec.ID, r)
				if err != nil {
					return idError(args[0], err)
				}
				if removed {
					r.printf("Deleted %q.\n", rec.ChapterTitle)
				}
				return nil
			})
		},
	}
}

func (r *runner) clearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all summaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withEnv(cmd, func(env *app.Env) error {
				if env.Session.ClearAll(cmd.Context(), r) {
					r.printf("All summaries cleared.\n")
				}
				return nil
			})
		},
	}
}

func (r *runner) copyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "copy <id> <quote-number>",
		Short: "Copy a quote to the clipboard",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quote number %q is not a number", args[1])
			}

			return r.withEnv(cmd, func(env *app.Env) error {
				rec, err := env.Session.Resolve(args[0])
				if err != nil {
					return idError(args[0], err)
				}
				if n < 1 || n > len(rec.Quotes) {
					return fmt.Errorf("quote %d out of range: %q has %d quotes", n, rec.ChapterTitle, len(rec.Quotes))
				}
				if err := clipboard.WriteAll(rec.Quotes[n-1]); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				r.printf("Copied!\n")
				return nil
			})
		},
	}
}

func (r *runner) exportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <id> <out.docx>",
		Short: "Export a summary as a Word document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withEnv(cmd, func(env *app.Env) error {
				rec, err := env.Session.Resolve(args[0])
				if err != nil {
					return idError(args[0], err)
				}
				if err := export.ToDocx(rec, args[1]); err != nil {
					return err
				}
				r.printf("Exported %q to %s\n", rec.ChapterTitle, args[1])
				return nil
			})
		},
	}
}

func idError(id string, err error) error {
	switch {
	case errors.Is(err, app.ErrNotFound):
		return fmt.Errorf("no summary with id %q", id)
	case errors.Is(err, app.ErrAmbiguousID):
		return fmt.Errorf("id %q is ambiguous, use more characters", id)
	}
	return err
}
