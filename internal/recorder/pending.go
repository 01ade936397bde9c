package recorder

import (
	"context"

	"github.com/roach88/hitdata/internal/ir"
)

// PendingCut is a parked good cut waiting for its final scores.
// A handle is owned by the session until Complete or Discard returns it
// to the free list; it must not be used afterwards.
type PendingCut struct {
	session *Session
	hit     ir.NoteHit
	parked  bool

	// record is set when the cut was parked during an active play.
	record bool
}

// Hit returns the captured note hit. Scores are zero until Complete.
func (c *PendingCut) Hit() ir.NoteHit {
	return c.hit
}

// Complete records the parked cut as a valid hit with the given scores and
// releases the handle. A cut parked while the play was active is recorded
// even if the play has since finished or failed, since its scores arrive
// after the note.
func (c *PendingCut) Complete(ctx context.Context, beforeCut, afterCut, accuracy int) {
	if c == nil || !c.parked {
		return
	}
	s := c.session
	record := c.record
	hit := c.hit
	hit.ValidHit = true
	hit.IsMiss = false
	hit.BeforeCutScore = beforeCut
	hit.AfterCutScore = afterCut
	hit.AccuracyScore = accuracy

	s.pool.release(c)
	if record {
		s.writeNoteHit(ctx, hit)
	}
}

// Discard releases the handle without recording anything.
func (c *PendingCut) Discard() {
	if c == nil || !c.parked {
		return
	}
	c.session.pool.release(c)
}

// ParkCut captures a good cut whose scores are not known yet.
// The note's time, descriptor and deviations are taken from hit.
func (s *Session) ParkCut(hit ir.NoteHit) *PendingCut {
	if s.pool == nil {
		s.pool = newCutPool(0)
	}
	c := s.pool.acquire()
	c.session = s
	c.hit = hit
	c.parked = true
	c.record = s.recording()
	return c
}

// PendingCuts returns the number of parked cuts not yet completed.
func (s *Session) PendingCuts() int {
	if s.pool == nil {
		return 0
	}
	return s.pool.outstanding
}

// cutPool is a free list of PendingCut handles.
type cutPool struct {
	free        []*PendingCut
	allocated   int
	outstanding int
}

// newCutPool pre-fills the free list with n handles.
func newCutPool(n int) *cutPool {
	if n < 0 {
		n = 0
	}
	p := &cutPool{free: make([]*PendingCut, 0, n)}
	for i := 0; i < n; i++ {
		p.free = append(p.free, &PendingCut{})
	}
	p.allocated = n
	return p
}

// acquire pops a free handle or allocates one when the list is empty.
func (p *cutPool) acquire() *PendingCut {
	p.outstanding++
	if n := len(p.free); n > 0 {
		c := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		return c
	}
	p.allocated++
	return &PendingCut{}
}

func (p *cutPool) release(c *PendingCut) {
	*c = PendingCut{}
	p.outstanding--
	p.free = append(p.free, c)
}
