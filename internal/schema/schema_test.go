package schema

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hitdata/internal/ir"
)

func TestBuildCreateStatement_Golden(t *testing.T) {
	r := HitData()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, table := range r.Tables() {
		t.Run(table.Name, func(t *testing.T) {
			stmt, err := r.BuildCreateStatement(table.Name)
			require.NoError(t, err)
			g.Assert(t, table.Name, []byte(stmt))
		})
	}
}

func TestBuildCreateStatement_Idempotent(t *testing.T) {
	r := HitData()

	for _, table := range r.Tables() {
		first, err := r.BuildCreateStatement(table.Name)
		require.NoError(t, err)
		second, err := r.BuildCreateStatement(table.Name)
		require.NoError(t, err)
		assert.Equal(t, first, second, "table %s", table.Name)
	}
}

func TestBuildCreateStatement_ConstraintsAfterColumns(t *testing.T) {
	r := HitData()

	stmt, err := r.BuildCreateStatement(NoteHits)
	require.NoError(t, err)

	lastColumn := strings.LastIndex(stmt, "accuracy_score INTEGER")
	firstFK := strings.Index(stmt, "FOREIGN KEY")
	require.NotEqual(t, -1, lastColumn)
	require.NotEqual(t, -1, firstFK)
	assert.Less(t, lastColumn, firstFK)

	stmt, err = r.BuildCreateStatement(NoteInfos)
	require.NoError(t, err)
	assert.Less(t, strings.Index(stmt, "line_layer INTEGER"), strings.Index(stmt, "UNIQUE ("))
}

func TestBuildCreateStatement_UnknownTable(t *testing.T) {
	_, err := HitData().BuildCreateStatement("scores")
	require.ErrorIs(t, err, ErrUnknownTable)
}

func TestHitData_ParentsBeforeChildren(t *testing.T) {
	r := HitData()
	position := make(map[string]int)
	for i, table := range r.Tables() {
		position[table.Name] = i
	}

	for _, table := range r.Tables() {
		for _, c := range table.Columns {
			if c.References == "" {
				continue
			}
			assert.Less(t, position[c.References], position[table.Name],
				"%s.%s references %s declared later", table.Name, c.Name, c.References)
		}
	}
}

func TestNewRegistry_Validation(t *testing.T) {
	tests := []struct {
		name    string
		tables  []Table
		wantErr string
	}{
		{
			name:    "empty table name",
			tables:  []Table{{Name: ""}},
			wantErr: "table name is required",
		},
		{
			name:    "duplicate table",
			tables:  []Table{{Name: "a"}, {Name: "a"}},
			wantErr: "declared twice",
		},
		{
			name: "explicit id column",
			tables: []Table{{
				Name:    "a",
				Columns: []Column{{Name: "id", Type: ir.KindInteger}},
			}},
			wantErr: "invalid column name",
		},
		{
			name: "untyped column",
			tables: []Table{{
				Name:    "a",
				Columns: []Column{{Name: "x"}},
			}},
			wantErr: "has no type",
		},
		{
			name: "forward reference",
			tables: []Table{
				{Name: "child", Columns: []Column{{Name: "parent_id", Type: ir.KindInteger, References: "parent"}}},
				{Name: "parent"},
			},
			wantErr: "undeclared table",
		},
		{
			name: "unique on missing column",
			tables: []Table{{
				Name:    "a",
				Columns: []Column{{Name: "x", Type: ir.KindText}},
				Unique:  []string{"y"},
			}},
			wantErr: "unique column",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.tables...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTable_Column(t *testing.T) {
	table, err := HitData().Table(Plays)
	require.NoError(t, err)

	id, ok := table.Column(IDColumn)
	require.True(t, ok)
	assert.Equal(t, ir.KindInteger, id.Type)

	dt, ok := table.Column("play_datetime")
	require.True(t, ok)
	assert.Equal(t, ir.KindTimestamp, dt.Type)

	_, ok = table.Column("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"id", "beatmap_id", "play_datetime", "is_practice", "completed", "failed"}, table.ColumnNames())
}
