package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/hitdata/internal/ir"
	"github.com/roach88/hitdata/internal/schema"
	"github.com/roach88/hitdata/internal/store"
)

// State is the lifecycle state of a Session.
type State int

const (
	StateUninitialized State = iota
	StateActive
	StateFinished
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateFinished:
		return "finished"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session records one play of one beatmap.
//
// A Session is driven from the host's event thread and is not safe for
// concurrent use. The zero Session is Uninitialized and ignores every call.
type Session struct {
	rec    *Recorder
	logger *slog.Logger
	token  string

	state    State
	degraded bool
	playID   int64

	// playBatch holds the play row. rollbacks is the store's rollback
	// count when the batch was last checked.
	playBatch store.Batch
	rollbacks uint64

	pool *cutPool

	noteHits int
	bombHits int
	dropped  int
}

// Start begins a session. In order it:
//
//   - finds the beatmap row by hash, characteristic and difficulty, or
//     creates it with the full metadata
//   - creates the play row stamped with the recorder's clock
//   - links each active modifier, logging names it does not know
//
// The returned session is Active. If the recorder is disabled, or the
// beatmap or play row cannot be written, the session is degraded and
// records nothing. A failed modifier link only drops that link.
func (r *Recorder) Start(ctx context.Context, beatmap ir.BeatmapDescriptor, modifiers []string, isPractice bool) *Session {
	token := r.tokens.Generate()
	sess := &Session{
		rec:    r,
		token:  token,
		state:  StateActive,
		playID: store.NoID,
		pool:   newCutPool(beatmap.NoteDensity()),
		logger: r.logger.With(
			"session", token,
			"level_hash", beatmap.Hash(),
			"difficulty", beatmap.Difficulty,
		),
	}

	if !r.Enabled() {
		sess.degraded = true
		r.reportFailure(sess.logger, "hit recording disabled", r.err)
		return sess
	}

	beatmapID, err := r.resolveBeatmap(ctx, beatmap)
	if err != nil {
		sess.degrade(err)
		return sess
	}

	sess.rollbacks = r.backend.Rollbacks()
	playID, batch, err := r.backend.InsertBatched(ctx, schema.Plays, ir.Columns{
		ir.P("beatmap_id", ir.NewInteger(beatmapID)),
		ir.P("play_datetime", ir.NewTimestamp(r.clock.Now())),
		ir.P("is_practice", ir.NewBool(isPractice)),
		ir.P("completed", ir.NewBool(false)),
		ir.P("failed", ir.NewBool(false)),
	})
	if err != nil {
		sess.degrade(fmt.Errorf("create play: %w", err))
		return sess
	}
	sess.playID = playID
	sess.playBatch = batch

	for _, name := range modifiers {
		if !sess.alive() {
			return sess
		}
		if err := sess.linkModifier(ctx, name); err != nil {
			sess.drop(schema.PlayModifiers, err)
		}
	}

	sess.logger.Debug("session started",
		"play_id", playID,
		"modifiers", len(modifiers),
		"practice", isPractice,
	)
	return sess
}

// resolveBeatmap returns the id of the beatmap row, creating it with full
// metadata only when no row matches the identifying key.
func (r *Recorder) resolveBeatmap(ctx context.Context, b ir.BeatmapDescriptor) (int64, error) {
	key := ir.Columns{
		ir.P("level_hash", ir.NewText(b.Hash())),
		ir.P("characteristic", ir.NewText(b.Characteristic)),
		ir.P("difficulty", ir.NewText(b.Difficulty)),
	}

	id, found, err := r.backend.FindEntryID(ctx, schema.Beatmaps, key)
	if err != nil {
		return store.NoID, fmt.Errorf("find beatmap: %w", err)
	}
	if found {
		return id, nil
	}

	cols := append(key,
		ir.P("song_name", ir.NewText(b.SongName)),
		ir.P("song_author_name", ir.NewText(b.SongAuthorName)),
		ir.P("level_author_name", ir.NewText(b.LevelAuthorName)),
		ir.P("length", ir.NewReal(b.Length)),
		ir.P("note_count", ir.NewInteger(b.NoteCount)),
	)
	id, err = r.backend.InsertEntry(ctx, schema.Beatmaps, cols)
	if err != nil {
		return store.NoID, fmt.Errorf("create beatmap: %w", err)
	}
	return id, nil
}

func (s *Session) linkModifier(ctx context.Context, name string) error {
	if !ir.IsKnownModifier(name) {
		s.logger.Warn("unknown modifier recorded", "modifier", name)
	}

	modifierID, err := s.rec.modifiers.GetOrCreate(ctx, name)
	if err != nil {
		return err
	}
	_, err = s.rec.backend.InsertEntry(ctx, schema.PlayModifiers, ir.Columns{
		ir.P("play_id", ir.NewInteger(s.playID)),
		ir.P("modifier_id", ir.NewInteger(modifierID)),
	})
	return err
}

// RecordNoteHit appends a note_hits row for hit. The note descriptor is
// resolved through the note cache. A hit_deviations row follows when the
// recorder records deviations.
func (s *Session) RecordNoteHit(ctx context.Context, hit ir.NoteHit) {
	if !s.recording() {
		return
	}
	s.writeNoteHit(ctx, hit)
}

// writeNoteHit writes hit for the session's play regardless of state.
func (s *Session) writeNoteHit(ctx context.Context, hit ir.NoteHit) {
	if !s.alive() {
		return
	}

	noteInfoID, err := s.rec.noteInfos.GetOrCreate(ctx, hit.Note)
	if err != nil {
		s.drop(schema.NoteHits, err)
		return
	}

	hitID, err := s.rec.backend.InsertEntry(ctx, schema.NoteHits, ir.Columns{
		ir.P("play_id", ir.NewInteger(s.playID)),
		ir.P("time", ir.NewReal(hit.Time)),
		ir.P("valid_hit", ir.NewBool(hit.ValidHit)),
		ir.P("is_miss", ir.NewBool(hit.IsMiss)),
		ir.P("note_info_id", ir.NewInteger(noteInfoID)),
		ir.P("before_cut_score", ir.NewInteger(hit.BeforeCutScore)),
		ir.P("after_cut_score", ir.NewInteger(hit.AfterCutScore)),
		ir.P("accuracy_score", ir.NewInteger(hit.AccuracyScore)),
	})
	if err != nil {
		s.drop(schema.NoteHits, err)
		return
	}
	s.noteHits++

	if !s.rec.recordDeviations {
		return
	}
	_, err = s.rec.backend.InsertEntry(ctx, schema.HitDeviations, ir.Columns{
		ir.P("hit_id", ir.NewInteger(hitID)),
		ir.P("time_deviation", ir.NewReal(hit.TimeDeviation)),
		ir.P("dir_deviation", ir.NewReal(hit.DirDeviation)),
	})
	if err != nil {
		s.drop(schema.HitDeviations, err)
	}
}

// RecordBombHit appends a bomb_hits row at time.
func (s *Session) RecordBombHit(ctx context.Context, time float64) {
	if !s.recording() {
		return
	}

	_, err := s.rec.backend.InsertEntry(ctx, schema.BombHits, ir.Columns{
		ir.P("play_id", ir.NewInteger(s.playID)),
		ir.P("time", ir.NewReal(time)),
	})
	if err != nil {
		s.drop(schema.BombHits, err)
		return
	}
	s.bombHits++
}

// Finish marks the play completed. Only an Active session transitions.
func (s *Session) Finish(ctx context.Context) {
	s.end(ctx, StateFinished, "completed")
}

// Fail marks the play failed. Only an Active session transitions.
func (s *Session) Fail(ctx context.Context) {
	s.end(ctx, StateFailed, "failed")
}

func (s *Session) end(ctx context.Context, next State, column string) {
	if s.state != StateActive {
		return
	}
	s.state = next

	if !s.alive() {
		return
	}
	err := s.rec.backend.UpdateEntry(ctx, schema.Plays, s.playID, ir.Columns{
		ir.P(column, ir.NewBool(true)),
	})
	if err != nil {
		s.drop(schema.Plays, err)
		return
	}

	s.logger.Debug("session ended",
		"state", next.String(),
		"note_hits", s.noteHits,
		"bomb_hits", s.bombHits,
		"dropped", s.dropped,
	)
}

// recording reports whether event writes should reach the store.
func (s *Session) recording() bool {
	return s.state == StateActive && s.alive()
}

// alive reports whether the play row can still take writes. After any
// batch rollback it checks the play's own batch, and a lost play degrades
// the session: its id may already belong to another play.
func (s *Session) alive() bool {
	if s.degraded || s.rec == nil {
		return false
	}
	n := s.rec.backend.Rollbacks()
	if n == s.rollbacks {
		return true
	}
	s.rollbacks = n
	if !s.rec.backend.Lost(s.playBatch) {
		return true
	}

	err := fmt.Errorf("play %d rolled back with batch %d", s.playID, uint64(s.playBatch))
	s.playID = store.NoID
	s.degrade(err)
	return false
}

func (s *Session) degrade(err error) {
	s.degraded = true
	s.rec.reportFailure(s.logger, "session not recorded", err)
}

// drop logs a failed write. The event is lost; recording continues.
func (s *Session) drop(table string, err error) {
	s.dropped++
	if errors.Is(err, store.ErrClosed) {
		s.rec.reportClosed(s.logger, table, err)
		return
	}
	s.logger.Warn("dropped hit data write", "table", table, "error", err)
}

// State returns the session's lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Degraded reports whether the session records nothing.
func (s *Session) Degraded() bool {
	return s.degraded
}

// PlayID returns the id of the play row, or store.NoID when degraded.
func (s *Session) PlayID() int64 {
	return s.playID
}

// Token returns the session's log correlation token.
func (s *Session) Token() string {
	return s.token
}

// NoteHits returns the number of note hits written.
func (s *Session) NoteHits() int {
	return s.noteHits
}

// BombHits returns the number of bomb hits written.
func (s *Session) BombHits() int {
	return s.bombHits
}

// Dropped returns the number of writes that failed.
func (s *Session) Dropped() int {
	return s.dropped
}
