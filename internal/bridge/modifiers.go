package bridge

import "github.com/roach88/hitdata/internal/ir"

// EnergyType is the host's life bar mode.
type EnergyType int

const (
	EnergyBar EnergyType = iota
	EnergyBattery
)

// ObstacleType selects which walls the host spawns.
type ObstacleType int

const (
	ObstaclesAll ObstacleType = iota
	ObstaclesFullHeightOnly
	ObstaclesNone
)

// SongSpeed is the host's song speed modifier.
type SongSpeed int

const (
	SpeedNormal SongSpeed = iota
	SpeedFaster
	SpeedSlower
	SpeedSuperFast
)

// GameplayModifiers mirrors the host's modifier flags.
type GameplayModifiers struct {
	NoFailOn0Energy     bool
	InstaFail           bool
	EnergyType          EnergyType
	NoBombs             bool
	EnabledObstacleType ObstacleType
	NoArrows            bool
	GhostNotes          bool
	DisappearingArrows  bool
	SmallCubes          bool
	ProMode             bool
	StrictAngles        bool
	ZenMode             bool
	SongSpeed           SongSpeed
}

// Names returns the stored modifier names for the active flags, in
// vocabulary order. GhostNotes hides DisappearingArrows, and at most one
// song speed is reported.
func (m GameplayModifiers) Names() []string {
	var names []string
	add := func(on bool, name string) {
		if on {
			names = append(names, name)
		}
	}

	add(m.NoFailOn0Energy, ir.ModNoFail)
	add(m.InstaFail, ir.ModOneLife)
	add(m.EnergyType == EnergyBattery, ir.ModFourLives)
	add(m.NoBombs, ir.ModNoBombs)
	add(m.EnabledObstacleType == ObstaclesNone, ir.ModNoWalls)
	add(m.NoArrows, ir.ModNoArrows)
	add(m.GhostNotes, ir.ModGhostNotes)
	add(!m.GhostNotes && m.DisappearingArrows, ir.ModDisappearingArrows)
	add(m.SmallCubes, ir.ModSmallNotes)
	add(m.ProMode, ir.ModProMode)
	add(m.StrictAngles, ir.ModStrictAngles)
	add(m.ZenMode, ir.ModZenMode)

	switch m.SongSpeed {
	case SpeedSlower:
		names = append(names, ir.ModSlowerSong)
	case SpeedFaster:
		names = append(names, ir.ModFasterSong)
	case SpeedSuperFast:
		names = append(names, ir.ModSuperFastSong)
	}
	return names
}

// ModifiersFromNames sets the flags for a list of stored modifier names.
// Unknown names are returned separately.
func ModifiersFromNames(names []string) (GameplayModifiers, []string) {
	var m GameplayModifiers
	var unknown []string
	for _, name := range names {
		switch name {
		case ir.ModNoFail:
			m.NoFailOn0Energy = true
		case ir.ModOneLife:
			m.InstaFail = true
		case ir.ModFourLives:
			m.EnergyType = EnergyBattery
		case ir.ModNoBombs:
			m.NoBombs = true
		case ir.ModNoWalls:
			m.EnabledObstacleType = ObstaclesNone
		case ir.ModNoArrows:
			m.NoArrows = true
		case ir.ModGhostNotes:
			m.GhostNotes = true
		case ir.ModDisappearingArrows:
			m.DisappearingArrows = true
		case ir.ModSmallNotes:
			m.SmallCubes = true
		case ir.ModProMode:
			m.ProMode = true
		case ir.ModStrictAngles:
			m.StrictAngles = true
		case ir.ModZenMode:
			m.ZenMode = true
		case ir.ModSlowerSong:
			m.SongSpeed = SpeedSlower
		case ir.ModFasterSong:
			m.SongSpeed = SpeedFaster
		case ir.ModSuperFastSong:
			m.SongSpeed = SpeedSuperFast
		default:
			unknown = append(unknown, name)
		}
	}
	return m, unknown
}
