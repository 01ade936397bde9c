package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/hitdata/internal/ir"
	"github.com/roach88/hitdata/internal/schema"
)

// Row maps column names (including id) to values.
type Row map[string]ir.Value

// ID returns the row's id, or NoID if it is missing.
func (r Row) ID() int64 {
	if id, ok := ir.AsInt64(r[schema.IDColumn]); ok {
		return id
	}
	return NoID
}

// FindEntryID returns the id of the first row (lowest id) whose columns equal
// the given values. A miss returns (NoID, false, nil).
func (s *Store) FindEntryID(ctx context.Context, table string, cols ir.Columns) (int64, bool, error) {
	t, err := s.reg.Table(table)
	if err != nil {
		return NoID, false, fmt.Errorf("find entry: %w", err)
	}
	if len(cols) == 0 {
		return NoID, false, fmt.Errorf("find entry %s: no identifying columns", table)
	}
	args, err := bindColumns(t, cols, true)
	if err != nil {
		return NoID, false, fmt.Errorf("find entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stmt, err := s.prepareLocked(ctx, findQuery(t.Name, cols))
	if err != nil {
		return NoID, false, fmt.Errorf("find entry %s: %w", table, err)
	}

	var id int64
	if err := stmt.QueryRowContext(ctx, args...).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NoID, false, nil
		}
		return NoID, false, fmt.Errorf("find entry %s: %w", table, err)
	}
	return id, true, nil
}

// ScanTable returns every row of the table ordered by id.
// Intended for startup hydration, not the per-event path.
func (s *Store) ScanTable(ctx context.Context, table string) ([]Row, error) {
	t, err := s.reg.Table(table)
	if err != nil {
		return nil, fmt.Errorf("scan table: %w", err)
	}
	names := t.ColumnNames()
	kinds := make([]ir.Kind, len(names))
	for i, name := range names {
		col, _ := t.Column(name)
		kinds[i] = col.Type
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.beginLocked(ctx); err != nil {
		return nil, fmt.Errorf("scan table %s: %w", table, err)
	}

	rows, err := s.tx.QueryContext(ctx, "SELECT "+strings.Join(names, ", ")+" FROM "+t.Name+" ORDER BY "+schema.IDColumn)
	if err != nil {
		return nil, fmt.Errorf("scan table %s: %w", table, err)
	}
	defer rows.Close()

	result := []Row{}
	raw := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range raw {
		ptrs[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan table %s: %w", table, err)
		}
		row := make(Row, len(names))
		for i, name := range names {
			v, err := ir.FromDriver(raw[i], kinds[i])
			if err != nil {
				return nil, fmt.Errorf("scan table %s: column %s: %w", table, name, err)
			}
			row[name] = v
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table %s: %w", table, err)
	}
	return result, nil
}

// CountRows returns the number of rows in the table, including the open batch.
func (s *Store) CountRows(ctx context.Context, table string) (int64, error) {
	t, err := s.reg.Table(table)
	if err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.beginLocked(ctx); err != nil {
		return 0, fmt.Errorf("count rows %s: %w", table, err)
	}

	var n int64
	if err := s.tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.Name).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows %s: %w", table, err)
	}
	return n, nil
}

// findQuery builds "SELECT id FROM t WHERE a = ? AND b = ? ORDER BY id LIMIT 1".
func findQuery(table string, cols ir.Columns) string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(schema.IDColumn)
	sb.WriteString(" FROM ")
	sb.WriteString(table)
	sb.WriteString(" WHERE ")
	for i, p := range cols {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		sb.WriteString(p.Column)
		sb.WriteString(" = ?")
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(schema.IDColumn)
	sb.WriteString(" LIMIT 1")
	return sb.String()
}
