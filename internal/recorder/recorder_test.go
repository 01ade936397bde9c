package recorder

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hitdata/internal/ir"
	"github.com/roach88/hitdata/internal/schema"
	"github.com/roach88/hitdata/internal/store"
)

func TestOpen_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "HitDatabase.sqlite")
	ctx := context.Background()

	rec := Open(ctx, path, testOptions(nil))
	require.NoError(t, rec.Err())
	require.True(t, rec.Enabled())

	sess := rec.Start(ctx, hashABeatmap(), []string{ir.ModNoFail}, false)
	sess.RecordBombHit(ctx, 4)
	sess.Finish(ctx)
	require.NoError(t, rec.Close())
	require.NoError(t, rec.Close())

	s, err := store.Open(ctx, path, schema.HitData(), store.Options{})
	require.NoError(t, err)
	defer s.Close()

	n, err := s.CountRows(ctx, schema.BombHits)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "Close commits the open batch")
}

func TestOpen_HydratesFromExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "HitDatabase.sqlite")
	ctx := context.Background()

	first := Open(ctx, path, testOptions(nil))
	sess := first.Start(ctx, hashABeatmap(), []string{ir.ModProMode}, false)
	sess.RecordNoteHit(ctx, ir.NoteHit{Time: 1, ValidHit: true, Note: upNote()})
	require.NoError(t, first.Close())

	second := Open(ctx, path, testOptions(nil))
	defer second.Close()
	require.True(t, second.Enabled())

	assert.Equal(t, 1, second.NoteInfos().Len())
	assert.Equal(t, 1, second.Modifiers().Len())

	sess = second.Start(ctx, hashABeatmap(), []string{ir.ModProMode}, false)
	sess.RecordNoteHit(ctx, ir.NoteHit{Time: 1, ValidHit: true, Note: upNote()})
	assert.Equal(t, 0, second.NoteInfos().Inserts())
	assert.Equal(t, 0, second.Modifiers().Inserts())
}

func TestOpen_UnreachablePathDisables(t *testing.T) {
	ctx := context.Background()
	logger, logs := captureLogger()

	rec := Open(ctx, "/nonexistent/dir/HitDatabase.sqlite", testOptions(logger))
	require.Error(t, rec.Err())
	assert.False(t, rec.Enabled())

	for i := 0; i < 3; i++ {
		sess := rec.Start(ctx, hashABeatmap(), []string{ir.ModNoFail}, false)
		assert.True(t, sess.Degraded())
		sess.RecordNoteHit(ctx, ir.NoteHit{Time: 1, Note: upNote()})
		sess.Finish(ctx)
	}

	assert.Equal(t, 1, strings.Count(logs.String(), "level=ERROR"))
	assert.NoError(t, rec.Close())
}

func TestDisabled(t *testing.T) {
	cause := errors.New("no UserData directory")
	rec := Disabled(cause, testOptions(nil))

	assert.ErrorIs(t, rec.Err(), cause)
	sess := rec.Start(context.Background(), hashABeatmap(), nil, false)
	assert.True(t, sess.Degraded())
	assert.Equal(t, store.NoID, sess.PlayID())
}

func TestNew_HydrationFailureDisables(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Close())

	rec := New(context.Background(), s, testOptions(nil))
	assert.False(t, rec.Enabled())
	assert.ErrorIs(t, rec.Err(), store.ErrClosed)
}

func TestStart_SessionTokens(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rec := New(ctx, s, testOptions(nil))

	assert.Equal(t, "session-1", rec.Start(ctx, hashABeatmap(), nil, false).Token())
	assert.Equal(t, "session-2", rec.Start(ctx, hashABeatmap(), nil, false).Token())
}

func TestUUIDv7Generator(t *testing.T) {
	token := UUIDv7Generator{}.Generate()

	parsed, err := uuid.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.NotEqual(t, token, UUIDv7Generator{}.Generate())
}

func TestNew_Defaults(t *testing.T) {
	rec := Disabled(errors.New("x"), Options{})

	assert.NotNil(t, rec.logger)
	assert.IsType(t, systemClock{}, rec.clock)
	assert.IsType(t, UUIDv7Generator{}, rec.tokens)
	assert.False(t, rec.RecordsDeviations())
}
