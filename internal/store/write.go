package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/hitdata/internal/ir"
	"github.com/roach88/hitdata/internal/schema"
)

// InsertEntry inserts a row and returns its auto-assigned id.
// The id is usable immediately as a foreign key in the same batch.
func (s *Store) InsertEntry(ctx context.Context, table string, cols ir.Columns) (int64, error) {
	id, _, err := s.InsertBatched(ctx, table, cols)
	return id, err
}

// InsertBatched is InsertEntry that also reports the batch holding the row.
// Lost(batch) later tells whether the row survived its commit.
func (s *Store) InsertBatched(ctx context.Context, table string, cols ir.Columns) (int64, Batch, error) {
	t, err := s.reg.Table(table)
	if err != nil {
		return NoID, 0, fmt.Errorf("insert entry: %w", err)
	}
	args, err := bindColumns(t, cols, false)
	if err != nil {
		return NoID, 0, fmt.Errorf("insert entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stmt, err := s.prepareLocked(ctx, insertQuery(t.Name, cols))
	if err != nil {
		return NoID, 0, fmt.Errorf("insert entry %s: %w", table, err)
	}

	result, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return NoID, 0, fmt.Errorf("insert entry %s: %w", table, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return NoID, 0, fmt.Errorf("insert entry %s: last insert id: %w", table, err)
	}

	batch := s.batch
	if err := s.wroteLocked(ctx); err != nil {
		return id, batch, fmt.Errorf("insert entry %s: %w", table, err)
	}
	return id, batch, nil
}

// UpdateEntry sets the named columns of the row with the given id.
// An absent id matches nothing and is not an error.
func (s *Store) UpdateEntry(ctx context.Context, table string, id int64, cols ir.Columns) error {
	t, err := s.reg.Table(table)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	if len(cols) == 0 {
		return fmt.Errorf("update entry %s: no columns to set", table)
	}
	args, err := bindColumns(t, cols, false)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	args = append(args, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	stmt, err := s.prepareLocked(ctx, updateQuery(t.Name, cols))
	if err != nil {
		return fmt.Errorf("update entry %s: %w", table, err)
	}

	if _, err := stmt.ExecContext(ctx, args...); err != nil {
		return fmt.Errorf("update entry %s: %w", table, err)
	}

	if err := s.wroteLocked(ctx); err != nil {
		return fmt.Errorf("update entry %s: %w", table, err)
	}
	return nil
}

// insertQuery builds "INSERT INTO t (a, b) VALUES (?, ?)".
func insertQuery(table string, cols ir.Columns) string {
	if len(cols) == 0 {
		return "INSERT INTO " + table + " DEFAULT VALUES"
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(table)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(cols.Names(), ", "))
	sb.WriteString(") VALUES (")
	sb.WriteString(placeholders(len(cols)))
	sb.WriteByte(')')
	return sb.String()
}

// updateQuery builds "UPDATE t SET a = ?, b = ? WHERE id = ?".
func updateQuery(table string, cols ir.Columns) string {
	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(table)
	sb.WriteString(" SET ")
	for i, p := range cols {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Column)
		sb.WriteString(" = ?")
	}
	sb.WriteString(" WHERE ")
	sb.WriteString(schema.IDColumn)
	sb.WriteString(" = ?")
	return sb.String()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
