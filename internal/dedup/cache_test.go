package dedup

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hitdata/internal/ir"
	"github.com/roach88/hitdata/internal/schema"
	"github.com/roach88/hitdata/internal/store"
)

// countingBackend wraps a store and counts the calls a cache makes.
type countingBackend struct {
	*store.Store
	scans   int
	inserts int
	finds   int
	scanErr error
}

func (b *countingBackend) ScanTable(ctx context.Context, table string) ([]store.Row, error) {
	b.scans++
	if b.scanErr != nil {
		return nil, b.scanErr
	}
	return b.Store.ScanTable(ctx, table)
}

func (b *countingBackend) InsertEntry(ctx context.Context, table string, cols ir.Columns) (int64, error) {
	b.inserts++
	return b.Store.InsertEntry(ctx, table, cols)
}

func (b *countingBackend) FindEntryID(ctx context.Context, table string, cols ir.Columns) (int64, bool, error) {
	b.finds++
	return b.Store.FindEntryID(ctx, table, cols)
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dedup.db")
	s, err := store.Open(context.Background(), path, schema.HitData(), store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetOrCreate_SameKeySameIDOneInsert(t *testing.T) {
	s := openStore(t)
	backend := &countingBackend{Store: s}
	cache := NewNoteInfos(backend)
	ctx := context.Background()

	key := ir.NoteInfoKey{IsRightHand: true, Direction: ir.DirectionUp, LineIndex: 2, LineLayer: 1}

	first, err := cache.GetOrCreate(ctx, key)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		id, err := cache.GetOrCreate(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, first, id)
	}

	assert.Equal(t, 1, backend.inserts)
	assert.Equal(t, 1, cache.Inserts())
	n, err := s.CountRows(ctx, schema.NoteInfos)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestGetOrCreate_DistinctKeys(t *testing.T) {
	s := openStore(t)
	cache := NewNoteInfos(s)
	ctx := context.Background()

	ids := make(map[int64]bool)
	for _, right := range []bool{false, true} {
		for _, dir := range []string{ir.DirectionUp, ir.DirectionDown} {
			id, err := cache.GetOrCreate(ctx, ir.NoteInfoKey{IsRightHand: right, Direction: dir, LineIndex: 1, LineLayer: 0})
			require.NoError(t, err)
			ids[id] = true
		}
	}

	assert.Len(t, ids, 4)
	assert.Equal(t, 4, cache.Len())
}

func TestHydrate_RunsOnce(t *testing.T) {
	s := openStore(t)
	backend := &countingBackend{Store: s}
	cache := NewModifiers(backend)
	ctx := context.Background()

	require.NoError(t, cache.Hydrate(ctx))
	require.NoError(t, cache.Hydrate(ctx))
	_, err := cache.GetOrCreate(ctx, ir.ModNoFail)
	require.NoError(t, err)

	assert.Equal(t, 1, backend.scans)
}

func TestHydrate_FailureRetries(t *testing.T) {
	s := openStore(t)
	backend := &countingBackend{Store: s, scanErr: errors.New("disk I/O error")}
	cache := NewModifiers(backend)
	ctx := context.Background()

	_, err := cache.GetOrCreate(ctx, ir.ModNoFail)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hydrate modifiers")
	assert.Equal(t, 0, backend.inserts)

	backend.scanErr = nil
	_, err = cache.GetOrCreate(ctx, ir.ModNoFail)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.scans)
}

func TestHydrate_ReusesExistingRows(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	existing, err := s.InsertEntry(ctx, schema.Modifiers, ModifierCodec.Columns(ir.ModProMode))
	require.NoError(t, err)

	backend := &countingBackend{Store: s}
	cache := NewModifiers(backend)

	id, err := cache.GetOrCreate(ctx, ir.ModProMode)
	require.NoError(t, err)
	assert.Equal(t, existing, id)
	assert.Equal(t, 0, backend.inserts)
}

func TestHydrate_NoteInfoRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	key := ir.NoteInfoKey{IsRightHand: false, Direction: ir.DirectionDownLeft, LineIndex: 0, LineLayer: 2}

	first := NewNoteInfos(s)
	id, err := first.GetOrCreate(ctx, key)
	require.NoError(t, err)

	// A second process-scope cache over the same store sees the row.
	second := NewNoteInfos(s)
	require.NoError(t, second.Hydrate(ctx))
	cached, ok := second.Lookup(key)
	require.True(t, ok)
	assert.Equal(t, id, cached)
}

func TestGetOrCreate_UniqueConflictRefinds(t *testing.T) {
	s := openStore(t)
	backend := &countingBackend{Store: s}
	cache := NewModifiers(backend)
	ctx := context.Background()

	require.NoError(t, cache.Hydrate(ctx))

	// Row appears after hydration, behind the cache's back.
	existing, err := s.InsertEntry(ctx, schema.Modifiers, ModifierCodec.Columns(ir.ModSlowerSong))
	require.NoError(t, err)

	id, err := cache.GetOrCreate(ctx, ir.ModSlowerSong)
	require.NoError(t, err)
	assert.Equal(t, existing, id)
	assert.Equal(t, 1, backend.finds)
	assert.Equal(t, 0, cache.Inserts())

	n, err := s.CountRows(ctx, schema.Modifiers)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestGetOrCreate_InsertFailure(t *testing.T) {
	s := openStore(t)
	cache := NewModifiers(s)
	ctx := context.Background()
	require.NoError(t, cache.Hydrate(ctx))
	require.NoError(t, s.Close())

	_, err := cache.GetOrCreate(ctx, ir.ModNoFail)
	require.ErrorIs(t, err, store.ErrClosed)
	_, ok := cache.Lookup(ir.ModNoFail)
	assert.False(t, ok)
}

func TestCodecs_SkipUndecodableRows(t *testing.T) {
	_, ok := NoteInfoCodec.Key(store.Row{"id": ir.Integer(1)})
	assert.False(t, ok)

	_, ok = ModifierCodec.Key(store.Row{"id": ir.Integer(1), "modifier_name": ir.Null{}})
	assert.False(t, ok)
}
