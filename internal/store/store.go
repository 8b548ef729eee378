// Package store is the default local task service: a SQLite database (pure-Go
// modernc driver) in the data directory, implementing remote.Backend.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"taskdeck/internal/model"
	"taskdeck/internal/remote"
)

const (
	dirName      = ".taskdeck"
	dbFileName   = "taskdeck.sqlite"
	metaSeededKV = "categories_seeded"
)

type Options struct {
	Logger zerolog.Logger
	Now    func() time.Time
}

type Store struct {
	Dir string

	db  *sql.DB
	log zerolog.Logger
	now func() time.Time

	// writeMu serializes read-modify-write transactions within this process;
	// busy_timeout covers other processes.
	writeMu sync.Mutex
}

var _ remote.Backend = (*Store)(nil)

// DiscoverDir walks up from start looking for a .taskdeck directory.
func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, dirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// DefaultDir returns the nearest .taskdeck directory above the working
// directory, or fallback when there is none.
func DefaultDir(fallback string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDir(cwd); ok {
		return found, nil
	}
	if fallback != "" {
		return fallback, nil
	}
	return filepath.Join(cwd, dirName), nil
}

// Open opens (creating if needed) the database in dir and seeds the default
// categories the first time.
func Open(ctx context.Context, dir string, opts Options) (*Store, error) {
	if dir == "" {
		return nil, errors.New("store: empty dir")
	}
	s := &Store{Dir: dir, log: opts.Logger, now: opts.Now}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	db, err := openSQLite(ctx, s.Path())
	if err != nil {
		return nil, err
	}
	s.db = db
	if err := s.seedCategories(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s *Store) Path() string {
	return filepath.Join(s.Dir, dbFileName)
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return storageErr("begin", err)
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageErr("commit", err)
	}
	return nil
}

// storageErr classifies a database failure as transient for the controller.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var ve remote.ValidationError
	var nf remote.NotFoundError
	if errors.As(err, &ve) || errors.As(err, &nf) {
		return err
	}
	return remote.TransientError{Op: "sqlite " + op, Err: err}
}

func (s *Store) stamp() time.Time {
	return s.now().UTC()
}

func cloneTasks(in []model.Task) []model.Task {
	out := make([]model.Task, 0, len(in))
	for _, t := range in {
		out = append(out, t.Clone())
	}
	return out
}
