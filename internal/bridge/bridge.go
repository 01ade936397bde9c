package bridge

import (
	"context"
	"fmt"

	"github.com/roach88/hitdata/internal/ir"
	"github.com/roach88/hitdata/internal/recorder"
)

// Outcome is how a host note event is recorded.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeBombHit
	OutcomeGoodCut
	OutcomeBadCut
	OutcomeMiss
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeBombHit:
		return "bomb_hit"
	case OutcomeGoodCut:
		return "good_cut"
	case OutcomeBadCut:
		return "bad_cut"
	case OutcomeMiss:
		return "miss"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// ClassifyCut returns the outcome of a cut on note.
func ClassifyCut(note NoteData, cut NoteCutInfo) Outcome {
	switch {
	case note.IsBomb():
		return OutcomeBombHit
	case cut.AllIsOK:
		return OutcomeGoodCut
	default:
		return OutcomeBadCut
	}
}

// ClassifyMiss returns the outcome of a missed note.
func ClassifyMiss(note NoteData) Outcome {
	if note.IsBomb() {
		return OutcomeIgnored
	}
	return OutcomeMiss
}

// Options configures a Bridge.
type Options struct {
	// RecordBombHits forwards bomb cuts to the session.
	RecordBombHits bool
}

// Bridge forwards one level's host events to its session.
type Bridge struct {
	session *recorder.Session
	opts    Options
}

// New returns a bridge for session.
func New(session *recorder.Session, opts Options) *Bridge {
	return &Bridge{session: session, opts: opts}
}

// Session returns the session events are forwarded to.
func (b *Bridge) Session() *recorder.Session {
	return b.session
}

// NoteWasCut handles a cut. For a good cut it returns the parked handle;
// the host completes it once the swing is scored. Every other outcome is
// recorded immediately and nil is returned.
func (b *Bridge) NoteWasCut(ctx context.Context, note NoteData, cut NoteCutInfo) *recorder.PendingCut {
	switch ClassifyCut(note, cut) {
	case OutcomeBombHit:
		if b.opts.RecordBombHits {
			b.session.RecordBombHit(ctx, note.Time)
		}
	case OutcomeGoodCut:
		return b.session.ParkCut(ir.NoteHit{
			Time:          note.Time,
			Note:          note.Key(),
			TimeDeviation: cut.TimeDeviation,
			DirDeviation:  cut.CutDirDeviation,
		})
	case OutcomeBadCut:
		b.session.RecordNoteHit(ctx, ir.NoteHit{
			Time:          note.Time,
			Note:          note.Key(),
			TimeDeviation: cut.TimeDeviation,
			DirDeviation:  cut.CutDirDeviation,
		})
	}
	return nil
}

// NoteWasMissed handles a missed note. Missed bombs are not recorded.
func (b *Bridge) NoteWasMissed(ctx context.Context, note NoteData) {
	if ClassifyMiss(note) != OutcomeMiss {
		return
	}
	b.session.RecordNoteHit(ctx, ir.NoteHit{
		Time:   note.Time,
		IsMiss: true,
		Note:   note.Key(),
	})
}

// LevelFinished marks the play completed.
func (b *Bridge) LevelFinished(ctx context.Context) {
	b.session.Finish(ctx)
}

// LevelFailed marks the play failed.
func (b *Bridge) LevelFailed(ctx context.Context) {
	b.session.Fail(ctx)
}
