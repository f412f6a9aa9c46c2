package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nguyentantai21042004/chapter-digest/internal/config"
	"github.com/nguyentantai21042004/chapter-digest/internal/logger"
)

// opener opens a handle on a storage location. Opening two handles on one
// location stands in for two processes sharing state.
type opener func(t *testing.T, location string) Backend

func fileOpener(t *testing.T, dir string) Backend {
	t.Helper()
	b, err := NewFile(dir, logger.NewNop())
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func sqliteOpener(t *testing.T, dir string) Backend {
	t.Helper()
	b, err := NewSQLite(filepath.Join(dir, "state.db"), 20*time.Millisecond, logger.NewNop())
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

var backends = []struct {
	name string
	open opener
}{
	{"file", fileOpener},
	{"sqlite", sqliteOpener},
}

func TestGetSetRemove(t *testing.T) {
	for _, bt := range backends {
		t.Run(bt.name, func(t *testing.T) {
			ctx := context.Background()
			b := bt.open(t, t.TempDir())

			if _, ok, err := b.Get(ctx, "missing"); err != nil || ok {
				t.Fatalf("Get(missing) = ok %v, err %v; want not found", ok, err)
			}

			if err := b.Set(ctx, "chapter-summaries", []byte(`[]`)); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := b.Set(ctx, "chapter-summaries", []byte(`[{"id":"a"}]`)); err != nil {
				t.Fatalf("Set overwrite: %v", err)
			}

			got, ok, err := b.Get(ctx, "chapter-summaries")
			if err != nil || !ok {
				t.Fatalf("Get = ok %v, err %v", ok, err)
			}
			if string(got) != `[{"id":"a"}]` {
				t.Errorf("Get = %s, want %s", got, `[{"id":"a"}]`)
			}

			if err := b.Remove(ctx, "chapter-summaries"); err != nil {
				t.Fatalf("Remove: %v", err)
			}
			if _, ok, _ := b.Get(ctx, "chapter-summaries"); ok {
				t.Error("key still present after Remove")
			}
			if err := b.Remove(ctx, "chapter-summaries"); err != nil {
				t.Errorf("Remove of absent key: %v", err)
			}
		})
	}
}

func TestWatchReportsOtherContexts(t *testing.T) {
	for _, bt := range backends {
		t.Run(bt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			dir := t.TempDir()
			local := bt.open(t, dir)
			remote := bt.open(t, dir)

			changes, err := local.Watch(ctx)
			if err != nil {
				t.Fatalf("Watch: %v", err)
			}

			// Our own writes are never echoed back.
			if err := local.Set(ctx, "theme", []byte(`"dark"`)); err != nil {
				t.Fatalf("local Set: %v", err)
			}
			expectNoChange(t, changes, 200*time.Millisecond)

			if err := remote.Set(ctx, "theme", []byte(`"light"`)); err != nil {
				t.Fatalf("remote Set: %v", err)
			}
			change := expectChange(t, changes)
			if change.Key != "theme" || change.Deleted || string(change.Value) != `"light"` {
				t.Errorf("change = %+v, want theme=\"light\"", change)
			}

			if err := remote.Remove(ctx, "theme"); err != nil {
				t.Fatalf("remote Remove: %v", err)
			}
			change = expectChange(t, changes)
			if change.Key != "theme" || !change.Deleted {
				t.Errorf("change = %+v, want theme deleted", change)
			}
		})
	}
}

func TestWatchStopsWithContext(t *testing.T) {
	for _, bt := range backends {
		t.Run(bt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			b := bt.open(t, t.TempDir())

			changes, err := b.Watch(ctx)
			if err != nil {
				t.Fatalf("Watch: %v", err)
			}
			cancel()

			select {
			case _, ok := <-changes:
				if ok {
					t.Error("expected channel to close without changes")
				}
			case <-time.After(2 * time.Second):
				t.Fatal("channel not closed after cancel")
			}
		})
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	b, err := Open(config.StorageConfig{Backend: config.BackendFile, Dir: dir}, logger.NewNop())
	if err != nil {
		t.Fatalf("Open(file): %v", err)
	}
	b.Close()

	b, err = Open(config.StorageConfig{
		Backend:    config.BackendSQLite,
		SQLitePath: filepath.Join(dir, "kv.db"),
	}, logger.NewNop())
	if err != nil {
		t.Fatalf("Open(sqlite): %v", err)
	}
	b.Close()

	if _, err := Open(config.StorageConfig{Backend: "etcd"}, logger.NewNop()); err == nil {
		t.Error("Open(etcd) should fail")
	}
}

func TestKeyFor(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		want   string
		wantOK bool
	}{
		{"plain key", "/s/gemini-api-key.json", "gemini-api-key", true},
		{"escaped key", "/s/a%2Fb.json", "a/b", true},
		{"temp file", "/s/.tmp-123", "", false},
		{"other extension", "/s/notes.txt", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := keyFor(tt.file)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("keyFor(%q) = %q, %v; want %q, %v", tt.file, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func expectChange(t *testing.T, changes <-chan Change) Change {
	t.Helper()
	select {
	case c, ok := <-changes:
		if !ok {
			t.Fatal("changes channel closed")
		}
		return c
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change")
	}
	return Change{}
}

func expectNoChange(t *testing.T, changes <-chan Change, wait time.Duration) {
	t.Helper()
	select {
	case c := <-changes:
		t.Fatalf("unexpected change %+v", c)
	case <-time.After(wait):
	}
}
