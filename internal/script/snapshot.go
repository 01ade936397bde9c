package script

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/hitdata/internal/ir"
	"github.com/roach88/hitdata/internal/store"
)

// Snapshot renders every table of st as text, one row per line in id order.
// Output is stable for a given database, so it can be kept as a golden file.
func Snapshot(ctx context.Context, st *store.Store) ([]byte, error) {
	var sb strings.Builder

	for i, t := range st.Registry().Tables() {
		rows, err := st.ScanTable(ctx, t.Name)
		if err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}

		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "# %s (%d)\n", t.Name, len(rows))

		names := t.ColumnNames()
		for _, row := range rows {
			for j, name := range names {
				if j > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(name)
				sb.WriteByte('=')
				sb.WriteString(ir.FormatValue(row[name]))
			}
			sb.WriteByte('\n')
		}
	}

	return []byte(sb.String()), nil
}
