package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/chapter-digest/internal/app"
	"github.com/nguyentantai21042004/chapter-digest/internal/config"
	"github.com/nguyentantai21042004/chapter-digest/internal/generation"
	"github.com/nguyentantai21042004/chapter-digest/internal/logger"
	"github.com/nguyentantai21042004/chapter-digest/internal/speech"
	"github.com/nguyentantai21042004/chapter-digest/internal/summary"
)

func testOpener(dir string) Opener {
	return func(ctx context.Context, configPath string, stderr io.Writer) (*app.Env, error) {
		cfg := &config.Config{}
		cfg.Storage.Dir = dir
		cfg.Speech.Synthesizer.Binary = "no-such-tts-binary"
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return app.Open(ctx, cfg, logger.NewNop())
	}
}

func run(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand(Options{
		In:   strings.NewReader(stdin),
		Out:  &out,
		Err:  &errOut,
		Open: testOpener(dir),
	})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// seed stores records directly and returns them, most recent first.
func seed(t *testing.T, dir string, titles ...string) []summary.Summary {
	t.Helper()
	env, err := testOpener(dir)(context.Background(), "", io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	defer env.Close()
	for _, title := range titles {
		env.Session.Collection().Insert(context.Background(), summary.Draft{
			ChapterTitle: title,
			Takeaways:    []string{title + " idea"},
			Quotes:       []string{title + " quote"},
		})
	}
	return env.Session.Collection().All()
}

func TestKeyCommands(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "", "key", "show")
	if err != nil || !strings.Contains(out, "No API key configured") {
		t.Errorf("key show = %q, %v", out, err)
	}

	if _, err := run(t, dir, "AIzaSyExample1234\n", "key", "set"); err != nil {
		t.Fatalf("key set: %v", err)
	}
	out, _ = run(t, dir, "", "key", "show")
	if !strings.Contains(out, "AIza*********1234") {
		t.Errorf("key show = %q, want masked key", out)
	}

	if _, err := run(t, dir, "", "key", "set", "   "); err == nil {
		t.Error("key set with blank key succeeded")
	}

	if _, err := run(t, dir, "", "key", "clear"); err != nil {
		t.Fatalf("key clear: %v", err)
	}
	out, _ = run(t, dir, "", "key", "show")
	if !strings.Contains(out, "No API key configured") {
		t.Errorf("key show after clear = %q", out)
	}
}

func TestMask(t *testing.T) {
	tests := []struct{ in, want string }{
		{"short", "*****"},
		{"12345678", "********"},
		{"abcd1234efgh", "abcd****efgh"},
	}
	for _, tt := range tests {
		if got := mask(tt.in); got != tt.want {
			t.Errorf("mask(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSummarizeValidation(t *testing.T) {
	dir := t.TempDir()

	if _, err := run(t, dir, "  \n", "summarize", "-"); !errors.Is(err, app.ErrEmptyChapter) {
		t.Errorf("summarize empty = %v, want ErrEmptyChapter", err)
	}

	_, err := run(t, dir, "Once upon a time.", "summarize")
	var cfgErr *generation.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Errorf("summarize without key = %v, want ConfigurationError", err)
	}

	if _, err := run(t, dir, "", "summarize", filepath.Join(dir, "missing.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("summarize missing file = %v", err)
	}

	if _, err := run(t, dir, "", "summarize", "--dictate"); !errors.Is(err, speech.ErrUnsupported) {
		t.Errorf("summarize --dictate = %v, want ErrUnsupported", err)
	}
}

func TestListAndSearch(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "", "list")
	if err != nil || !strings.Contains(out, "Your summaries will appear here") {
		t.Errorf("list empty = %q, %v", out, err)
	}

	seed(t, dir, "Alpha", "Beta")
	out, _ = run(t, dir, "", "list")
	if strings.Index(out, "Beta") > strings.Index(out, "Alpha") {
		t.Errorf("list not most recent first:\n%s", out)
	}

	out, _ = run(t, dir, "", "search", "ALPHA IDEA")
	if !strings.Contains(out, "Alpha") || strings.Contains(out, "Beta") {
		t.Errorf("search = %q", out)
	}

	out, _ = run(t, dir, "", "search", "gamma")
	if !strings.Contains(out, `did not match any summaries`) {
		t.Errorf("search miss = %q", out)
	}
}

func TestShowByPrefix(t *testing.T) {
	dir := t.TempDir()
	recs := seed(t, dir, "Alpha")

	out, err := run(t, dir, "", "show", recs[0].ID[:6])
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.HasPrefix(out, "# Alpha") {
		t.Errorf("show = %q", out)
	}

	if _, err := run(t, dir, "", "show", "zzzz"); err == nil || !strings.Contains(err.Error(), "no summary") {
		t.Errorf("show unknown = %v", err)
	}
}

func TestEdit(t *testing.T) {
	dir := t.TempDir()
	recs := seed(t, dir, "Alpha")
	lines := filepath.Join(t.TempDir(), "takeaways.txt")
	if err := os.WriteFile(lines, []byte("first\n\n  second  \n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, dir, "", "edit", recs[0].ID); err == nil {
		t.Error("edit without flags succeeded")
	}

	_, err := run(t, dir, "", "edit", recs[0].ID, "--title", "Alpha Revised", "--takeaways-file", lines)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}

	out, _ := run(t, dir, "", "show", recs[0].ID)
	for _, want := range []string{"# Alpha Revised", "1. first", "2. second", "Alpha quote"} {
		if !strings.Contains(out, want) {
			t.Errorf("show after edit missing %q:\n%s", want, out)
		}
	}
}

func TestDeleteAsks(t *testing.T) {
	dir := t.TempDir()
	recs := seed(t, dir, "Alpha", "Beta")

	if _, err := run(t, dir, "n\n", "delete", recs[0].ID); err != nil {
		t.Fatalf("delete declined: %v", err)
	}
	out, _ := run(t, dir, "", "list")
	if !strings.Contains(out, "Beta") {
		t.Error("declined delete removed the record")
	}

	out, err := run(t, dir, "y\n", "delete", recs[0].ID)
	if err != nil || !strings.Contains(out, `Deleted "Beta"`) {
		t.Errorf("delete = %q, %v", out, err)
	}
	out, _ = run(t, dir, "", "list")
	if strings.Contains(out, "Beta") || !strings.Contains(out, "Alpha") {
		t.Errorf("list after delete = %q", out)
	}
}

func TestClearWithYesFlag(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir, "Alpha", "Beta")

	out, err := run(t, dir, "", "clear", "--yes")
	if err != nil || !strings.Contains(out, "All summaries cleared") {
		t.Errorf("clear = %q, %v", out, err)
	}
	out, _ = run(t, dir, "", "list")
	if !strings.Contains(out, "Your summaries will appear here") {
		t.Errorf("list after clear = %q", out)
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	recs := seed(t, dir, "Alpha")
	dest := filepath.Join(t.TempDir(), "alpha.docx")

	if _, err := run(t, dir, "", "export", recs[0].ID, dest); err != nil {
		t.Fatalf("export: %v", err)
	}
	if info, err := os.Stat(dest); err != nil || info.Size() == 0 {
		t.Errorf("export wrote nothing: %v", err)
	}
}

func TestCopyValidation(t *testing.T) {
	dir := t.TempDir()
	recs := seed(t, dir, "Alpha")

	if _, err := run(t, dir, "", "copy", recs[0].ID, "two"); err == nil {
		t.Error("copy with non-numeric index succeeded")
	}
	if _, err := run(t, dir, "", "copy", recs[0].ID, "5"); err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Errorf("copy out of range = %v", err)
	}
}

func TestTheme(t *testing.T) {
	dir := t.TempDir()

	out, _ := run(t, dir, "", "theme")
	if !strings.Contains(out, "Theme: light") {
		t.Errorf("theme = %q", out)
	}
	out, _ = run(t, dir, "", "theme", "toggle")
	if !strings.Contains(out, "Theme: dark") {
		t.Errorf("theme toggle = %q", out)
	}
	out, _ = run(t, dir, "", "theme")
	if !strings.Contains(out, "Theme: dark") {
		t.Errorf("theme not persisted: %q", out)
	}
	if _, err := run(t, dir, "", "theme", "sepia"); !errors.Is(err, app.ErrUnknownTheme) {
		t.Errorf("theme sepia = %v", err)
	}
}

func TestSpeechCommandsWithoutSynthesizer(t *testing.T) {
	dir := t.TempDir()
	recs := seed(t, dir, "Alpha")

	if _, err := run(t, dir, "", "voices"); !errors.Is(err, speech.ErrUnsupported) {
		t.Errorf("voices = %v, want ErrUnsupported", err)
	}
	if _, err := run(t, dir, "", "speak", recs[0].ID); !errors.Is(err, speech.ErrUnsupported) {
		t.Errorf("speak = %v, want ErrUnsupported", err)
	}
}

func TestInboxHandlerKeepsFailedFile(t *testing.T) {
	dir := t.TempDir()
	env, err := testOpener(dir)(context.Background(), "", io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	defer env.Close()

	chapter := filepath.Join(t.TempDir(), "ch1.txt")
	if err := os.WriteFile(chapter, []byte("It was a bright cold day."), 0o644); err != nil {
		t.Fatal(err)
	}

	r := &runner{opts: Options{Out: io.Discard}}
	handle := r.summarizeFile(env.Session, t.TempDir())

	var cfgErr *generation.ConfigurationError
	if err := handle(context.Background(), chapter); !errors.As(err, &cfgErr) {
		t.Errorf("handler error = %v, want ConfigurationError", err)
	}
	if _, err := os.Stat(chapter); err != nil {
		t.Errorf("failed chapter was moved: %v", err)
	}
}
