package inbox

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nguyentantai21042004/chapter-digest/internal/logger"
)

func TestIsChapterFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"chapter1.txt", true},
		{"/in/Notes.MD", true},
		{"draft.markdown", true},
		{"cover.jpg", false},
		{".hidden.txt", false},
		{"noext", false},
	}
	for _, tt := range tests {
		if got := IsChapterFile(tt.path); got != tt.want {
			t.Errorf("IsChapterFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWatcherHandlesNewChapters(t *testing.T) {
	dir := t.TempDir()
	handled := make(chan string, 4)

	w, err := New(dir, func(ctx context.Context, path string) error {
		handled <- filepath.Base(path)
		return nil
	}, logger.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	w.(*implWatcher).settle = 10 * time.Millisecond
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	if err := os.WriteFile(filepath.Join(dir, "image.png"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "chapter.txt"), []byte("text"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case name := <-handled:
		if name != "chapter.txt" {
			t.Errorf("handled %q, want chapter.txt", name)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("chapter file was not handled")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Start() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestNewMissingDir(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing"), nil, logger.NewNop()); err == nil {
		t.Error("New() on missing dir succeeded")
	}
}
