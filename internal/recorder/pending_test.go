package recorder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hitdata/internal/ir"
	"github.com/roach88/hitdata/internal/schema"
)

func TestParkCut_CompleteRecordsScores(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rec := New(ctx, s, testOptions(nil))
	sess := rec.Start(ctx, hashABeatmap(), nil, false)

	cut := sess.ParkCut(ir.NoteHit{Time: 7.5, Note: upNote(), TimeDeviation: 0.03})
	assert.Equal(t, 1, sess.PendingCuts())
	assert.Equal(t, int64(0), count(t, s, schema.NoteHits), "nothing written until scored")

	cut.Complete(ctx, 70, 30, 15)
	assert.Equal(t, 0, sess.PendingCuts())

	hits := scan(t, s, schema.NoteHits)
	require.Len(t, hits, 1)
	assert.Equal(t, ir.Real(7.5), hits[0]["time"])
	assert.Equal(t, ir.Integer(1), hits[0]["valid_hit"])
	assert.Equal(t, ir.Integer(0), hits[0]["is_miss"])
	assert.Equal(t, ir.Integer(70), hits[0]["before_cut_score"])
	assert.Equal(t, ir.Integer(30), hits[0]["after_cut_score"])
	assert.Equal(t, ir.Integer(15), hits[0]["accuracy_score"])
}

func TestParkCut_CompleteTwiceRecordsOnce(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rec := New(ctx, s, testOptions(nil))
	sess := rec.Start(ctx, hashABeatmap(), nil, false)

	cut := sess.ParkCut(ir.NoteHit{Time: 1, Note: upNote()})
	cut.Complete(ctx, 70, 30, 15)
	cut.Complete(ctx, 70, 30, 15)

	assert.Equal(t, int64(1), count(t, s, schema.NoteHits))
}

func TestParkCut_CompletionOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rec := New(ctx, s, testOptions(nil))
	sess := rec.Start(ctx, hashABeatmap(), nil, false)

	early := sess.ParkCut(ir.NoteHit{Time: 1, Note: upNote()})
	sess.RecordNoteHit(ctx, ir.NoteHit{Time: 1.5, IsMiss: true, Note: upNote()})
	early.Complete(ctx, 70, 30, 15)

	hits := scan(t, s, schema.NoteHits)
	require.Len(t, hits, 2)
	assert.Equal(t, ir.Real(1.5), hits[0]["time"])
	assert.Equal(t, ir.Real(1), hits[1]["time"])
}

func TestParkCut_DiscardAndLeak(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rec := New(ctx, s, testOptions(nil))
	sess := rec.Start(ctx, hashABeatmap(), nil, false)

	discarded := sess.ParkCut(ir.NoteHit{Time: 1, Note: upNote()})
	sess.ParkCut(ir.NoteHit{Time: 2, Note: upNote()}) // never scored
	discarded.Discard()

	assert.Equal(t, 1, sess.PendingCuts())
	assert.Equal(t, int64(0), count(t, s, schema.NoteHits))
	sess.Finish(ctx)
	assert.Equal(t, StateFinished, sess.State())
}

func TestParkCut_ScoredAfterFinishIsRecorded(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rec := New(ctx, s, testOptions(nil))
	sess := rec.Start(ctx, hashABeatmap(), nil, false)

	cut := sess.ParkCut(ir.NoteHit{Time: 1, Note: upNote()})
	sess.Finish(ctx)
	cut.Complete(ctx, 70, 30, 15)

	assert.Equal(t, 0, sess.PendingCuts())
	assert.Equal(t, 1, sess.NoteHits())
	hits := scan(t, s, schema.NoteHits)
	require.Len(t, hits, 1)
	assert.Equal(t, sess.PlayID(), intCol(t, hits[0], "play_id"))
	assert.Equal(t, int64(1), intCol(t, hits[0], "valid_hit"))
	assert.Equal(t, int64(70), intCol(t, hits[0], "before_cut_score"))
	assert.Equal(t, int64(30), intCol(t, hits[0], "after_cut_score"))
	assert.Equal(t, int64(15), intCol(t, hits[0], "accuracy_score"))

	plays := scan(t, s, schema.Plays)
	assert.Equal(t, int64(1), intCol(t, plays[0], "completed"))
}

func TestParkCut_ScoredAfterFailIsRecorded(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rec := New(ctx, s, testOptions(nil))
	sess := rec.Start(ctx, hashABeatmap(), nil, false)

	cut := sess.ParkCut(ir.NoteHit{Time: 1, Note: upNote()})
	sess.Fail(ctx)
	cut.Complete(ctx, 60, 20, 10)

	assert.Equal(t, int64(1), count(t, s, schema.NoteHits))
}

func TestParkCut_ParkedAfterFinishIsIgnored(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rec := New(ctx, s, testOptions(nil))
	sess := rec.Start(ctx, hashABeatmap(), nil, false)

	sess.Finish(ctx)
	cut := sess.ParkCut(ir.NoteHit{Time: 1, Note: upNote()})
	cut.Complete(ctx, 70, 30, 15)

	assert.Equal(t, int64(0), count(t, s, schema.NoteHits))
	assert.Equal(t, 0, sess.PendingCuts())
}

func TestParkCut_DegradedSessionIgnoresScore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	backend := &faultyBackend{Store: s, failInsert: map[string]bool{schema.Plays: true}}
	rec := New(ctx, backend, testOptions(nil))
	sess := rec.Start(ctx, hashABeatmap(), nil, false)
	require.True(t, sess.Degraded())

	cut := sess.ParkCut(ir.NoteHit{Time: 1, Note: upNote()})
	sess.Finish(ctx)
	cut.Complete(ctx, 70, 30, 15)

	assert.Equal(t, int64(0), count(t, s, schema.NoteHits))
}

func TestCutPool_PresizedByNoteDensity(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rec := New(ctx, s, testOptions(nil))

	// 600 notes over 120 seconds.
	sess := rec.Start(ctx, hashABeatmap(), nil, false)
	require.Equal(t, 5, sess.pool.allocated)

	cuts := make([]*PendingCut, 0, 7)
	for i := 0; i < 5; i++ {
		cuts = append(cuts, sess.ParkCut(ir.NoteHit{Time: float64(i), Note: upNote()}))
	}
	assert.Equal(t, 5, sess.pool.allocated, "pre-filled handles are reused")

	cuts = append(cuts, sess.ParkCut(ir.NoteHit{Time: 5, Note: upNote()}))
	cuts = append(cuts, sess.ParkCut(ir.NoteHit{Time: 6, Note: upNote()}))
	assert.Equal(t, 7, sess.pool.allocated, "empty free list allocates")

	for _, c := range cuts {
		c.Complete(ctx, 70, 30, 15)
	}
	assert.Equal(t, int64(7), count(t, s, schema.NoteHits))
	assert.Len(t, sess.pool.free, 7)

	sess.ParkCut(ir.NoteHit{Time: 8, Note: upNote()})
	assert.Equal(t, 7, sess.pool.allocated)
}

func TestCutPool_ZeroDensity(t *testing.T) {
	p := newCutPool(-3)
	assert.Empty(t, p.free)

	c := p.acquire()
	require.NotNil(t, c)
	assert.Equal(t, 1, p.allocated)
	p.release(c)
	assert.Same(t, c, p.acquire())
}

func TestParkCut_ZeroSession(t *testing.T) {
	var sess Session
	cut := sess.ParkCut(ir.NoteHit{Time: 1, Note: upNote()})
	cut.Complete(context.Background(), 1, 2, 3)
	assert.Equal(t, 0, sess.NoteHits())
}
