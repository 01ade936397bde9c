package script

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/roach88/hitdata/internal/bridge"
	"github.com/roach88/hitdata/internal/config"
	"github.com/roach88/hitdata/internal/recorder"
	"github.com/roach88/hitdata/internal/store"
)

// Options configures a replay.
type Options struct {
	// Config supplies the recording toggles. Nil means config.Default().
	// Script overrides are applied on top.
	Config *config.Config

	// Logger receives recorder diagnostics. Nil discards them.
	Logger *slog.Logger

	// Clock stamps play_datetime. Nil means the system clock.
	Clock recorder.Clock

	// Tokens generates session tokens. Nil means UUIDv7 tokens.
	Tokens recorder.TokenGenerator
}

// Result summarizes a replay.
type Result struct {
	Name  string           `json:"name"`
	Plays []PlayResult     `json:"plays"`
	Rows  map[string]int64 `json:"rows"`
}

// PlayResult summarizes one replayed play.
type PlayResult struct {
	PlayID   int64  `json:"play_id"`
	State    string `json:"state"`
	NoteHits int    `json:"note_hits"`
	BombHits int    `json:"bomb_hits"`
	Dropped  int    `json:"dropped"`
	Pending  int    `json:"pending"`
}

// Effective returns the configuration a script runs with.
func (s *Script) Effective(base *config.Config) config.Config {
	cfg := *config.Default()
	if base != nil {
		cfg = *base
	}
	if s.Config == nil {
		return cfg
	}
	if s.Config.RecordBombHits != nil {
		cfg.RecordBombHits = *s.Config.RecordBombHits
	}
	if s.Config.RecordDeviations != nil {
		cfg.RecordDeviations = *s.Config.RecordDeviations
	}
	if s.Config.BatchSize != nil {
		cfg.BatchSize = *s.Config.BatchSize
	}
	return cfg
}

// Run replays every play of the script into st and counts the rows of
// every table afterwards. The store is not flushed or closed.
func Run(ctx context.Context, s *Script, st *store.Store, opts Options) (*Result, error) {
	cfg := s.Effective(opts.Config)
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	rec := recorder.New(ctx, st, recorder.Options{
		RecordDeviations: cfg.RecordDeviations,
		Logger:           logger,
		Clock:            opts.Clock,
		Tokens:           opts.Tokens,
	})
	if err := rec.Err(); err != nil {
		return nil, fmt.Errorf("replay %s: %w", s.Name, err)
	}

	result := &Result{Name: s.Name}
	for i, p := range s.Plays {
		pr, err := runPlay(ctx, rec, p, bridge.Options{RecordBombHits: cfg.RecordBombHits})
		if err != nil {
			return nil, fmt.Errorf("replay %s: plays[%d]: %w", s.Name, i, err)
		}
		result.Plays = append(result.Plays, pr)
	}

	rows, err := CountRows(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", s.Name, err)
	}
	result.Rows = rows
	return result, nil
}

// scheduled is a parked cut waiting for its score.
type scheduled struct {
	cut       *recorder.PendingCut
	score     Score
	remaining int
}

func runPlay(ctx context.Context, rec *recorder.Recorder, p Play, opts bridge.Options) (PlayResult, error) {
	sess := rec.Start(ctx, p.Beatmap, p.Modifiers, p.Practice)
	b := bridge.New(sess, opts)

	var waiting []*scheduled
	deliver := func(force bool) {
		kept := waiting[:0]
		for _, w := range waiting {
			if force || w.remaining == 0 {
				w.cut.Complete(ctx, w.score.Before, w.score.After, w.score.Accuracy)
				continue
			}
			w.remaining--
			kept = append(kept, w)
		}
		waiting = kept
	}

	for j, e := range p.Events {
		note, err := e.Note.hostNote(e.Time)
		if err != nil {
			return PlayResult{}, fmt.Errorf("events[%d]: %w", j, err)
		}

		deliver(false)

		switch e.Type {
		case EventCut:
			cut := b.NoteWasCut(ctx, note, bridge.NoteCutInfo{
				AllIsOK:         e.OK,
				TimeDeviation:   e.TimeDeviation,
				CutDirDeviation: e.DirDeviation,
			})
			if cut == nil || e.Score == nil {
				continue
			}
			if e.Score.Delay == 0 {
				cut.Complete(ctx, e.Score.Before, e.Score.After, e.Score.Accuracy)
				continue
			}
			waiting = append(waiting, &scheduled{cut: cut, score: *e.Score, remaining: e.Score.Delay})
		case EventMiss:
			b.NoteWasMissed(ctx, note)
		default:
			return PlayResult{}, fmt.Errorf("events[%d]: unknown event type %q", j, e.Type)
		}
	}
	deliver(true)

	switch p.Outcome {
	case OutcomeFinished:
		b.LevelFinished(ctx)
	case OutcomeFailed:
		b.LevelFailed(ctx)
	case OutcomeNone, "":
	default:
		return PlayResult{}, fmt.Errorf("unknown outcome %q", p.Outcome)
	}

	return PlayResult{
		PlayID:   sess.PlayID(),
		State:    sess.State().String(),
		NoteHits: sess.NoteHits(),
		BombHits: sess.BombHits(),
		Dropped:  sess.Dropped(),
		Pending:  sess.PendingCuts(),
	}, nil
}

// hostNote converts a script note into the host's note data.
func (n Note) hostNote(at float64) (bridge.NoteData, error) {
	note := bridge.NoteData{
		Time:      at,
		LineIndex: n.LineIndex,
		LineLayer: n.LineLayer,
	}

	switch n.Color {
	case "left":
		note.ColorType = bridge.ColorA
	case "right":
		note.ColorType = bridge.ColorB
	case "none":
		note.ColorType = bridge.ColorNone
	default:
		return note, fmt.Errorf("unknown note color %q", n.Color)
	}

	if n.Direction == "none" {
		note.CutDirection = bridge.CutNone
		return note, nil
	}
	dir, err := bridge.ParseCutDirection(n.Direction)
	if err != nil {
		return note, err
	}
	note.CutDirection = dir
	return note, nil
}

// CountRows counts the rows of every table in the hit data registry.
func CountRows(ctx context.Context, st *store.Store) (map[string]int64, error) {
	rows := make(map[string]int64)
	for _, t := range st.Registry().Tables() {
		n, err := st.CountRows(ctx, t.Name)
		if err != nil {
			return nil, err
		}
		rows[t.Name] = n
	}
	return rows, nil
}

// Check compares a result against the script's expectations and returns
// every mismatch.
func Check(s *Script, r *Result) []error {
	if s.Expect == nil {
		return nil
	}

	tables := make([]string, 0, len(s.Expect.Rows))
	for table := range s.Expect.Rows {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	var errs []error
	for _, table := range tables {
		want := s.Expect.Rows[table]
		if got := r.Rows[table]; got != want {
			errs = append(errs, fmt.Errorf("%s: expected %d rows, got %d", table, want, got))
		}
	}
	return errs
}
