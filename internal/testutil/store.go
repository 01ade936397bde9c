package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/roach88/hitdata/internal/ir"
	"github.com/roach88/hitdata/internal/schema"
	"github.com/roach88/hitdata/internal/store"
)

// OrphanPlayID is a play id no test ever creates.
const OrphanPlayID int64 = 1 << 40

// OpenDeferredStore opens a hit-data store whose note_hits and bomb_hits
// tables check play_id at commit instead of at insert. A row pointing at a
// missing play is accepted by InsertEntry and then fails the commit of its
// batch, which lets tests lose a batch on demand.
func OpenDeferredStore(t testing.TB, batchSize int) *store.Store {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "deferred.sqlite")
	reg := schema.HitData()

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	for _, table := range []string{schema.NoteHits, schema.BombHits} {
		stmt, err := reg.BuildCreateStatement(table)
		if err != nil {
			db.Close()
			t.Fatalf("build %s: %v", table, err)
		}
		stmt = strings.ReplaceAll(stmt,
			"REFERENCES "+schema.Plays+"(id)",
			"REFERENCES "+schema.Plays+"(id) DEFERRABLE INITIALLY DEFERRED")
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			t.Fatalf("create %s: %v", table, err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close database: %v", err)
	}

	s, err := store.Open(ctx, path, reg, store.Options{BatchSize: batchSize})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// InsertOrphanBombHit writes a bomb hit for OrphanPlayID. On a store from
// OpenDeferredStore the write succeeds unless it fills the batch, and the
// batch holding it fails to commit.
func InsertOrphanBombHit(ctx context.Context, s *store.Store) error {
	_, err := s.InsertEntry(ctx, schema.BombHits, ir.Columns{
		ir.P("play_id", ir.NewInteger(OrphanPlayID)),
		ir.P("time", ir.NewReal(0)),
	})
	return err
}
