package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/roach88/hitdata/internal/ir"
	"github.com/roach88/hitdata/internal/schema"
)

// createTestStore opens a fresh file-backed store for testing.
func createTestStore(t *testing.T, batchSize int) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), path, schema.HitData(), Options{BatchSize: batchSize})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

// createDeferredStore is createTestStore with bomb_hits created beforehand
// so that its play_id reference is checked at commit. A bomb hit for a
// missing play is then accepted and fails the commit of its batch.
func createDeferredStore(t *testing.T, batchSize int) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")

	stmt, err := schema.HitData().BuildCreateStatement(schema.BombHits)
	if err != nil {
		t.Fatalf("build bomb_hits: %v", err)
	}
	stmt = strings.ReplaceAll(stmt, "REFERENCES plays(id)", "REFERENCES plays(id) DEFERRABLE INITIALLY DEFERRED")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if _, err := db.Exec(stmt); err != nil {
		db.Close()
		t.Fatalf("create bomb_hits: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close database: %v", err)
	}

	s, err := Open(context.Background(), path, schema.HitData(), Options{BatchSize: batchSize})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

// orphanBombHit is a bomb hit for a play that never exists.
func orphanBombHit() ir.Columns {
	return ir.Columns{
		ir.P("play_id", ir.NewInteger(999)),
		ir.P("time", ir.NewReal(1)),
	}
}

// beatmapColumns returns the full column set for a test beatmap.
func beatmapColumns(hash, characteristic, difficulty string) ir.Columns {
	return ir.Columns{
		ir.P("level_hash", ir.NewText(hash)),
		ir.P("characteristic", ir.NewText(characteristic)),
		ir.P("difficulty", ir.NewText(difficulty)),
		ir.P("song_name", ir.NewText("Song "+hash)),
		ir.P("song_author_name", ir.NewText("Artist")),
		ir.P("level_author_name", ir.NewText("Mapper")),
		ir.P("length", ir.NewReal(180.5)),
		ir.P("note_count", ir.NewInteger(900)),
	}
}

// countFromOtherConnection counts committed rows through an independent connection.
func countFromOtherConnection(t *testing.T, path, table string) int64 {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open second connection: %v", err)
	}
	defer db.Close()

	var n int64
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func modifierColumns(name string) ir.Columns {
	return ir.Columns{ir.P("modifier_name", ir.NewText(name))}
}

func beatmapRef(id int64) ir.Columns {
	return ir.Columns{ir.P("beatmap_id", ir.NewInteger(id))}
}

func completedColumns() ir.Columns {
	return ir.Columns{ir.P("completed", ir.NewBool(true))}
}
