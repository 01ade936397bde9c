package ir

import "slices"

// Modifier names as stored in modifiers.modifier_name.
const (
	ModNoFail             = "NoFail"
	ModOneLife            = "OneLife"
	ModFourLives          = "FourLives"
	ModNoBombs            = "NoBombs"
	ModNoWalls            = "NoWalls"
	ModNoArrows           = "NoArrows"
	ModGhostNotes         = "GhostNotes"
	ModDisappearingArrows = "DisappearingArrows"
	ModSmallNotes         = "SmallNotes"
	ModProMode            = "ProMode"
	ModStrictAngles       = "StrictAngles"
	ModZenMode            = "ZenMode"
	ModSlowerSong         = "SlowerSong"
	ModFasterSong         = "FasterSong"
	ModSuperFastSong      = "SuperFastSong"
)

// ModifierVocabulary is the fixed set of modifier names the host can report.
var ModifierVocabulary = []string{
	ModNoFail, ModOneLife, ModFourLives,
	ModNoBombs, ModNoWalls, ModNoArrows,
	ModGhostNotes, ModDisappearingArrows, ModSmallNotes,
	ModProMode, ModStrictAngles, ModZenMode,
	ModSlowerSong, ModFasterSong, ModSuperFastSong,
}

// IsKnownModifier reports whether name is part of ModifierVocabulary.
func IsKnownModifier(name string) bool {
	return slices.Contains(ModifierVocabulary, name)
}
