package storage

import (
	"fmt"

	"github.com/nguyentantai21042004/chapter-digest/internal/config"
	"github.com/nguyentantai21042004/chapter-digest/internal/logger"
)

// Open creates the backend selected by cfg.Backend.
func Open(cfg config.StorageConfig, log logger.Logger) (Backend, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return NewSQLite(cfg.SQLitePath, cfg.PollInterval, log)
	case config.BackendFile, "":
		return NewFile(cfg.Dir, log)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
