package bridge

import (
	"fmt"

	"github.com/roach88/hitdata/internal/ir"
)

// CutDirection is the host's note cut direction.
type CutDirection int

const (
	CutUp CutDirection = iota
	CutDown
	CutLeft
	CutRight
	CutUpLeft
	CutUpRight
	CutDownLeft
	CutDownRight
	CutAny
	CutNone
)

var cutDirectionNames = map[CutDirection]string{
	CutUp:        "Up",
	CutDown:      "Down",
	CutLeft:      "Left",
	CutRight:     "Right",
	CutUpLeft:    "UpLeft",
	CutUpRight:   "UpRight",
	CutDownLeft:  "DownLeft",
	CutDownRight: "DownRight",
	CutAny:       "Any",
	CutNone:      "None",
}

func (d CutDirection) String() string {
	if name, ok := cutDirectionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("CutDirection(%d)", int(d))
}

// Code returns the stored direction code. Unknown directions map to "?".
func (d CutDirection) Code() string {
	switch d {
	case CutAny:
		return ir.DirectionAny
	case CutDown:
		return ir.DirectionDown
	case CutDownLeft:
		return ir.DirectionDownLeft
	case CutDownRight:
		return ir.DirectionDownRight
	case CutUp:
		return ir.DirectionUp
	case CutUpLeft:
		return ir.DirectionUpLeft
	case CutUpRight:
		return ir.DirectionUpRight
	case CutLeft:
		return ir.DirectionLeft
	case CutRight:
		return ir.DirectionRight
	default:
		return ir.DirectionUnknown
	}
}

// ParseCutDirection resolves a direction by its host name ("UpLeft") or
// its stored code ("ul").
func ParseCutDirection(s string) (CutDirection, error) {
	for d, name := range cutDirectionNames {
		if s == name {
			return d, nil
		}
	}
	for d := CutUp; d <= CutAny; d++ {
		if s == d.Code() {
			return d, nil
		}
	}
	return CutNone, fmt.Errorf("unknown cut direction %q", s)
}

// ColorType is the saber color a note belongs to.
type ColorType int

const (
	ColorNone ColorType = iota - 1
	ColorA
	ColorB
)

// NoteData is the host's description of one note.
type NoteData struct {
	Time         float64
	LineIndex    int
	LineLayer    int
	ColorType    ColorType
	CutDirection CutDirection
}

// IsBomb reports whether the note is a bomb: it has no direction or no color.
func (n NoteData) IsBomb() bool {
	return n.CutDirection == CutNone || n.ColorType == ColorNone
}

// Key returns the note's descriptor. ColorB notes belong to the right hand.
func (n NoteData) Key() ir.NoteInfoKey {
	return ir.NoteInfoKey{
		IsRightHand: n.ColorType == ColorB,
		Direction:   n.CutDirection.Code(),
		LineIndex:   n.LineIndex,
		LineLayer:   n.LineLayer,
	}
}

// NoteCutInfo is the host's assessment of a cut at the moment of contact.
type NoteCutInfo struct {
	// AllIsOK is set when the right saber cut in the right direction at
	// the right speed.
	AllIsOK         bool
	TimeDeviation   float64
	CutDirDeviation float64
}
