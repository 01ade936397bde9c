package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/hitdata/internal/ir"
)

// IDColumn is the implicit primary key column of every table.
const IDColumn = "id"

var (
	// ErrUnknownTable is returned when a table is not declared in the registry.
	ErrUnknownTable = errors.New("unknown table")

	// ErrUnknownColumn is returned when a column is not declared on its table.
	ErrUnknownColumn = errors.New("unknown column")
)

// Column declares one column of a table.
type Column struct {
	Name string
	Type ir.Kind

	// References names the parent table whose id this column points at.
	References string

	NotNull bool

	// Default is a SQL literal used as the column default, e.g. "0".
	Default string
}

// Table declares a table. The id column is implicit and must not be listed.
type Table struct {
	Name    string
	Columns []Column

	// Unique lists columns that must be jointly unique, in order.
	Unique []string
}

// Column returns the named column. The implicit id column is reported as an integer.
func (t Table) Column(name string) (Column, bool) {
	if name == IDColumn {
		return Column{Name: IDColumn, Type: ir.KindInteger, NotNull: true}, true
	}
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns id followed by the declared column names.
func (t Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns)+1)
	names = append(names, IDColumn)
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}
	return names
}

// SQLType returns the SQLite declared type for a column kind.
// Timestamps are declared TIMESTAMP so the driver scans them back as time.Time.
func SQLType(k ir.Kind) string {
	switch k {
	case ir.KindText:
		return "TEXT"
	case ir.KindInteger:
		return "INTEGER"
	case ir.KindReal:
		return "REAL"
	case ir.KindTimestamp:
		return "TIMESTAMP"
	default:
		return "BLOB"
	}
}

// Registry is an ordered set of table declarations.
// Tables are kept in declaration order; parents must be declared before children.
type Registry struct {
	tables []Table
	index  map[string]int
}

// NewRegistry validates the declarations and builds a registry.
func NewRegistry(tables ...Table) (*Registry, error) {
	r := &Registry{index: make(map[string]int, len(tables))}

	for _, t := range tables {
		if t.Name == "" {
			return nil, fmt.Errorf("table name is required")
		}
		if _, dup := r.index[t.Name]; dup {
			return nil, fmt.Errorf("table %q declared twice", t.Name)
		}

		seen := make(map[string]bool, len(t.Columns))
		for _, c := range t.Columns {
			if c.Name == "" || c.Name == IDColumn {
				return nil, fmt.Errorf("table %q: invalid column name %q", t.Name, c.Name)
			}
			if seen[c.Name] {
				return nil, fmt.Errorf("table %q: column %q declared twice", t.Name, c.Name)
			}
			seen[c.Name] = true

			if c.Type == ir.KindNull {
				return nil, fmt.Errorf("table %q: column %q has no type", t.Name, c.Name)
			}
			if c.References != "" {
				if _, ok := r.index[c.References]; !ok {
					return nil, fmt.Errorf("table %q: column %q references undeclared table %q", t.Name, c.Name, c.References)
				}
			}
		}

		for _, u := range t.Unique {
			if !seen[u] {
				return nil, fmt.Errorf("table %q: unique column %q is not declared", t.Name, u)
			}
		}

		r.index[t.Name] = len(r.tables)
		r.tables = append(r.tables, t)
	}

	return r, nil
}

// MustRegistry is like NewRegistry but panics on invalid declarations.
func MustRegistry(tables ...Table) *Registry {
	r, err := NewRegistry(tables...)
	if err != nil {
		panic(err)
	}
	return r
}

// Tables returns the declared tables in declaration order.
func (r *Registry) Tables() []Table {
	out := make([]Table, len(r.tables))
	copy(out, r.tables)
	return out
}

// Table returns the named table.
func (r *Registry) Table(name string) (Table, error) {
	i, ok := r.index[name]
	if !ok {
		return Table{}, fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	return r.tables[i], nil
}

// BuildCreateStatement returns the CREATE TABLE statement for the named table.
// Column declarations come first, then FOREIGN KEY clauses, then the UNIQUE clause.
func (r *Registry) BuildCreateStatement(name string) (string, error) {
	t, err := r.Table(name)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	sb.WriteString(t.Name)
	sb.WriteString(" (\n    ")
	sb.WriteString(IDColumn)
	sb.WriteString(" INTEGER PRIMARY KEY AUTOINCREMENT")

	for _, c := range t.Columns {
		sb.WriteString(",\n    ")
		sb.WriteString(c.Name)
		sb.WriteByte(' ')
		sb.WriteString(SQLType(c.Type))
		if c.NotNull {
			sb.WriteString(" NOT NULL")
		}
		if c.Default != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(c.Default)
		}
	}

	for _, c := range t.Columns {
		if c.References == "" {
			continue
		}
		fmt.Fprintf(&sb, ",\n    FOREIGN KEY (%s) REFERENCES %s(%s)", c.Name, c.References, IDColumn)
	}

	if len(t.Unique) > 0 {
		sb.WriteString(",\n    UNIQUE (")
		sb.WriteString(strings.Join(t.Unique, ", "))
		sb.WriteByte(')')
	}

	sb.WriteString("\n)")
	return sb.String(), nil
}
