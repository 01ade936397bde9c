package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/hitdata/internal/schema"
)

// DefaultBatchSize is the number of writes committed together.
const DefaultBatchSize = 100

// NoID is returned alongside found=false by FindEntryID.
const NoID int64 = -1

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")

// Options configures a Store.
type Options struct {
	// BatchSize is the number of writes per implicit transaction.
	// Zero means DefaultBatchSize.
	BatchSize int

	// Logger receives commit and shutdown diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Store owns the single database connection and the open write batch.
type Store struct {
	mu sync.Mutex

	db        *sql.DB
	reg       *schema.Registry
	batchSize int
	logger    *slog.Logger

	tx     *sql.Tx
	stmts  map[string]*sql.Stmt
	writes int
	closed bool

	// batch numbers the most recently begun transaction.
	batch     Batch
	lost      map[Batch]struct{}
	rollbacks uint64
}

// Open creates or opens a SQLite database at the given path.
//
// Applies required pragmas:
//   - busy_timeout = 5000 (wait on a locked file instead of failing)
//   - journal_mode = WAL
//   - synchronous = NORMAL
//   - foreign_keys = ON
//
// The pool is pinned to one connection, which the open batch transaction
// holds. Missing tables are created from the registry; existing ones are
// left as they are, so opening the same file again is idempotent.
func Open(ctx context.Context, path string, reg *schema.Registry, opts Options) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite allows one writer; the batch transaction pins the only connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	s := New(db, reg, opts)
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// New wraps an already opened database. No pragmas or schema are applied.
func New(db *sql.DB, reg *schema.Registry, opts Options) *Store {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Store{
		db:        db,
		reg:       reg,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Registry returns the schema registry the store validates against.
func (s *Store) Registry() *schema.Registry {
	return s.reg
}

// BatchSize returns the number of writes per implicit transaction.
func (s *Store) BatchSize() int {
	return s.batchSize
}

// Close commits the open batch and closes the connection.
// Calling Close more than once is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.db == nil {
		return nil
	}
	s.closed = true

	commitErr := s.commitLocked()
	if commitErr != nil {
		s.logger.Error("final batch commit failed", "error", commitErr)
	}
	if err := s.db.Close(); err != nil {
		return errors.Join(commitErr, fmt.Errorf("close database: %w", err))
	}
	return commitErr
}

// EnsureSchema creates every registry table that does not exist yet.
// Existing tables are assumed compatible and left untouched.
func (s *Store) EnsureSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	// DDL runs outside the batch so it is durable immediately.
	if err := s.commitLocked(); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	for _, table := range s.reg.Tables() {
		exists, err := s.tableExists(ctx, table.Name)
		if err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		if exists {
			continue
		}

		stmt, err := s.reg.BuildCreateStatement(table.Name)
		if err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: create %s: %w", table.Name, err)
		}
		s.logger.Debug("created table", "table", table.Name)
	}

	return nil
}

// tableExists checks sqlite_master for the table.
func (s *Store) tableExists(ctx context.Context, name string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(name) FROM sqlite_master WHERE type = 'table' AND name = ?", name,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return count > 0, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}
