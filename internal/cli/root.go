// Package cli is the command-line front end.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/chapter-digest/internal/app"
	"github.com/nguyentantai21042004/chapter-digest/internal/config"
	"github.com/nguyentantai21042004/chapter-digest/internal/logger"
)

const defaultConfigPath = "config.yaml"

// Opener builds the environment for one command invocation.
type Opener func(ctx context.Context, configPath string, stderr io.Writer) (*app.Env, error)

type Options struct {
	In   io.Reader
	Out  io.Writer
	Err  io.Writer
	Open Opener
}

type runner struct {
	opts       Options
	configPath string
	assumeYes  bool

	in *bufio.Reader
}

// OpenDefault loads the config file, falling back to defaults when it does not
// exist, and opens the environment it describes.
func OpenDefault(ctx context.Context, configPath string, stderr io.Writer) (*app.Env, error) {
	cfg, err := config.Load(configPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg = config.Default()
	} else if err != nil {
		return nil, err
	}

	log := logger.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format, stderr)
	return app.Open(ctx, cfg, log)
}

// NewRootCommand builds the command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.Open == nil {
		opts.Open = OpenDefault
	}
	r := &runner{opts: opts, in: bufio.NewReader(opts.In)}

	root := &cobra.Command{
		Use:   "chapterdigest",
		Short: "Summarize book chapters into takeaways and quotes",
		Long: `chapterdigest sends a chapter to Gemini and keeps the five most recent
summaries: an inferred title, key takeaways and memorable quotes. Summaries can
be searched, edited, read aloud, copied and exported to Word.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(opts.In)
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	root.PersistentFlags().StringVar(&r.configPath, "config", defaultConfigPath, "path to config file")
	root.PersistentFlags().BoolVarP(&r.assumeYes, "yes", "y", false, "answer yes to confirmation prompts")

	root.AddCommand(
		r.keyCommand(),
		r.summarizeCommand(),
		r.listCommand(),
		r.searchCommand(),
		r.showCommand(),
		r.editCommand(),
		r.deleteCommand(),
		r.clearCommand(),
		r.copyCommand(),
		r.exportCommand(),
		r.voicesCommand(),
		r.speakCommand(),
		r.themeCommand(),
		r.watchCommand(),
		r.inboxCommand(),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context) int {
	root := NewRootCommand(Options{})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// withEnv opens the environment for the duration of fn.
func (r *runner) withEnv(cmd *cobra.Command, fn func(env *app.Env) error) error {
	env, err := r.opts.Open(cmd.Context(), r.configPath, r.opts.Err)
	if err != nil {
		return err
	}
	defer env.Close()
	return fn(env)
}

func (r *runner) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.opts.Out, format, args...)
}

// Confirm implements app.Confirmer by asking on the terminal.
func (r *runner) Confirm(prompt string) bool {
	if r.assumeYes {
		return true
	}
	fmt.Fprintf(r.opts.Err, "%s [y/N]: ", prompt)
	answer, _ := r.in.ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func (r *runner) readLine() (string, error) {
	line, err := r.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
