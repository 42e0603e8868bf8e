package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const (
	sqliteFileName = "links.sqlite"
	boltFileName   = "links.bolt"
)

type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendBolt   Backend = "bolt"
	BackendMemory Backend = "memory"
)

func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return "", nil
	case BackendSQLite:
		return BackendSQLite, nil
	case BackendBolt, "bbolt":
		return BackendBolt, nil
	case BackendMemory:
		return BackendMemory, nil
	default:
		return "", errors.Errorf("unknown storage backend: %s", s)
	}
}

// Store locates the substrate files for one installation.
type Store struct {
	Dir string
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) sqlitePath() string {
	return filepath.Join(s.Dir, sqliteFileName)
}

func (s Store) boltPath() string {
	return filepath.Join(s.Dir, boltFileName)
}

// backend resolves the requested backend. An empty request auto-detects:
// an existing bolt file wins, otherwise SQLite (the default).
func (s Store) backend(requested Backend) Backend {
	if requested != "" {
		return requested
	}
	if _, err := os.Stat(s.boltPath()); err == nil {
		if _, err := os.Stat(s.sqlitePath()); err != nil {
			return BackendBolt
		}
	}
	return BackendSQLite
}

// Open opens the substrate for the requested backend.
func (s Store) Open(ctx context.Context, requested Backend) (KV, error) {
	switch s.backend(requested) {
	case BackendMemory:
		return NewMemoryKV(), nil
	case BackendBolt:
		if err := s.Ensure(); err != nil {
			return nil, errors.Wrap(err, "create store dir")
		}
		return openBoltKV(s.boltPath())
	default:
		if err := s.Ensure(); err != nil {
			return nil, errors.Wrap(err, "create store dir")
		}
		return openSQLiteKV(ctx, s.sqlitePath())
	}
}
