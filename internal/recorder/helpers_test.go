package recorder

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/hitdata/internal/ir"
	"github.com/roach88/hitdata/internal/schema"
	"github.com/roach88/hitdata/internal/store"
	"github.com/roach88/hitdata/internal/testutil"
)

var errInjected = errors.New("injected failure")

// faultyBackend fails operations on chosen tables.
type faultyBackend struct {
	*store.Store
	failFind   map[string]bool
	failInsert map[string]bool
	failUpdate map[string]bool
}

func (b *faultyBackend) FindEntryID(ctx context.Context, table string, cols ir.Columns) (int64, bool, error) {
	if b.failFind[table] {
		return store.NoID, false, errInjected
	}
	return b.Store.FindEntryID(ctx, table, cols)
}

func (b *faultyBackend) InsertEntry(ctx context.Context, table string, cols ir.Columns) (int64, error) {
	if b.failInsert[table] {
		return store.NoID, errInjected
	}
	return b.Store.InsertEntry(ctx, table, cols)
}

func (b *faultyBackend) InsertBatched(ctx context.Context, table string, cols ir.Columns) (int64, store.Batch, error) {
	if b.failInsert[table] {
		return store.NoID, 0, errInjected
	}
	return b.Store.InsertBatched(ctx, table, cols)
}

func (b *faultyBackend) UpdateEntry(ctx context.Context, table string, id int64, cols ir.Columns) error {
	if b.failUpdate[table] {
		return errInjected
	}
	return b.Store.UpdateEntry(ctx, table, id, cols)
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "HitDatabase.sqlite")
	s, err := store.Open(context.Background(), path, schema.HitData(), store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testOptions(logger *slog.Logger) Options {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return Options{
		Logger: logger,
		Clock:  testutil.NewFixedClock(testutil.DefaultTime),
		Tokens: testutil.NewFixedTokenGenerator("session-1", "session-2", "session-3"),
	}
}

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler), &buf
}

func hashABeatmap() ir.BeatmapDescriptor {
	return ir.BeatmapDescriptor{
		LevelHash:       "hashA",
		SongName:        "Song A",
		SongAuthorName:  "Artist",
		LevelAuthorName: "Mapper",
		Length:          120,
		Characteristic:  "Standard",
		Difficulty:      "Hard",
		NoteCount:       600,
	}
}

func upNote() ir.NoteInfoKey {
	return ir.NoteInfoKey{IsRightHand: true, Direction: ir.DirectionUp, LineIndex: 2, LineLayer: 1}
}

func scan(t *testing.T, s *store.Store, table string) []store.Row {
	t.Helper()
	rows, err := s.ScanTable(context.Background(), table)
	require.NoError(t, err)
	return rows
}

func count(t *testing.T, s *store.Store, table string) int64 {
	t.Helper()
	n, err := s.CountRows(context.Background(), table)
	require.NoError(t, err)
	return n
}

func intCol(t *testing.T, row store.Row, column string) int64 {
	t.Helper()
	n, ok := ir.AsInt64(row[column])
	require.True(t, ok, "column %s is %v", column, row[column])
	return n
}
