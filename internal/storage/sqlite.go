package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nguyentantai21042004/chapter-digest/internal/logger"

	_ "modernc.org/sqlite"
)

type sqliteBackend struct {
	db           *sql.DB
	logger       logger.Logger
	known        *snapshot
	pollInterval time.Duration

	// writeMu keeps a local write and its snapshot update atomic with
	// respect to diff.
	writeMu sync.Mutex
}

// NewSQLite keeps every key in a single kv table. Other processes' commits are
// detected by polling PRAGMA data_version on a dedicated connection.
func NewSQLite(path string, pollInterval time.Duration, log logger.Logger) (Backend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	s := &sqliteBackend{
		db:           db,
		logger:       log,
		known:        newSnapshot(),
		pollInterval: pollInterval,
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *sqliteBackend) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *sqliteBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		s.known.forget(key)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query %s: %w", key, err)
	}
	s.known.remember(key, value)
	return value, true, nil
}

func (s *sqliteBackend) Set(ctx context.Context, key string, value []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.known.remember(key, value)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *sqliteBackend) Remove(ctx context.Context, key string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.known.forget(key)
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *sqliteBackend) Watch(ctx context.Context) (<-chan Change, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("open watch connection: %w", err)
	}

	version, err := dataVersion(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	changes := make(chan Change, 16)
	go s.poll(ctx, conn, version, changes)
	return changes, nil
}

func (s *sqliteBackend) poll(ctx context.Context, conn *sql.Conn, version int64, changes chan<- Change) {
	defer close(changes)
	defer conn.Close()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		current, err := dataVersion(ctx, conn)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn(ctx, "Failed to poll data_version: %v", err)
			continue
		}
		if current == version {
			continue
		}
		version = current

		diff, err := s.diff(ctx, conn)
		if err != nil {
			s.logger.Warn(ctx, "Failed to diff storage: %v", err)
			continue
		}
		for _, change := range diff {
			select {
			case changes <- change:
			case <-ctx.Done():
				return
			}
		}
	}
}

// diff compares every stored row against the snapshot.
func (s *sqliteBackend) diff(ctx context.Context, conn *sql.Conn) ([]Change, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	rows, err := conn.QueryContext(ctx, "SELECT key, value FROM kv")
	if err != nil {
		return nil, fmt.Errorf("query kv: %w", err)
	}
	defer rows.Close()

	var out []Change
	present := make(map[string]bool)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan kv: %w", err)
		}
		present[key] = true
		if s.known.observe(key, value, false) {
			out = append(out, Change{Key: key, Value: value})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, key := range s.known.keys() {
		if present[key] {
			continue
		}
		if s.known.observe(key, nil, true) {
			out = append(out, Change{Key: key, Deleted: true})
		}
	}
	return out, nil
}

func dataVersion(ctx context.Context, conn *sql.Conn) (int64, error) {
	var v int64
	if err := conn.QueryRowContext(ctx, "PRAGMA data_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read data_version: %w", err)
	}
	return v, nil
}

func (s *sqliteBackend) Close() error {
	return s.db.Close()
}
