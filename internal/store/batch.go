package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Flush commits the open batch, if any. The next operation starts a new one.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	return s.commitLocked()
}

// Batch identifies one implicit transaction. Batches are numbered from 1 in
// the order they begin.
type Batch uint64

// Lost reports whether b was rolled back by a failed commit. Every row
// written in a lost batch is gone and its id may be assigned again.
func (s *Store) Lost(b Batch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.lost[b]
	return ok
}

// Rollbacks returns how many batches have been lost to failed commits.
// Holders of row ids compare it against an earlier reading to learn that
// some of their ids may be stale.
func (s *Store) Rollbacks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rollbacks
}

// PendingWrites returns the number of writes in the open batch.
func (s *Store) PendingWrites() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// beginLocked starts the batch transaction if none is open.
func (s *Store) beginLocked(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	if s.tx != nil {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	s.tx = tx
	s.stmts = make(map[string]*sql.Stmt)
	s.writes = 0
	s.batch++
	return nil
}

// commitLocked commits the batch transaction if one is open. The batch is
// discarded even when the commit fails; there is no retry path. The driver
// rolls a failed commit back, so the batch is recorded as lost.
func (s *Store) commitLocked() error {
	if s.tx == nil {
		return nil
	}

	tx, writes := s.tx, s.writes
	s.tx = nil
	s.stmts = nil
	s.writes = 0

	// Statements prepared on the transaction are closed by Commit.
	if err := tx.Commit(); err != nil {
		if s.lost == nil {
			s.lost = make(map[Batch]struct{})
		}
		s.lost[s.batch] = struct{}{}
		s.rollbacks++
		s.logger.Warn("batch rolled back", "batch", uint64(s.batch), "writes", writes, "error", err)
		return fmt.Errorf("commit batch of %d writes: %w", writes, err)
	}
	s.logger.Debug("batch committed", "writes", writes)
	return nil
}

// wroteLocked records one successful write and rolls the batch over once
// it reaches the batch size.
func (s *Store) wroteLocked(ctx context.Context) error {
	s.writes++
	if s.writes < s.batchSize {
		return nil
	}

	if err := s.commitLocked(); err != nil {
		return err
	}
	return s.beginLocked(ctx)
}

// prepareLocked returns a statement prepared on the batch transaction,
// reusing it for the lifetime of the batch.
func (s *Store) prepareLocked(ctx context.Context, query string) (*sql.Stmt, error) {
	if err := s.beginLocked(ctx); err != nil {
		return nil, err
	}
	if stmt, ok := s.stmts[query]; ok {
		return stmt, nil
	}

	stmt, err := s.tx.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}
	s.stmts[query] = stmt
	return stmt, nil
}
