package ir

// BeatmapDescriptor describes the song, characteristic and difficulty being played.
// (LevelHash, Characteristic, Difficulty) identifies a beatmap row.
type BeatmapDescriptor struct {
	LevelHash       string  `json:"level_hash" yaml:"level_hash"`
	LevelID         string  `json:"level_id,omitempty" yaml:"level_id,omitempty"`
	SongName        string  `json:"song_name" yaml:"song_name"`
	SongAuthorName  string  `json:"song_author_name" yaml:"song_author_name"`
	LevelAuthorName string  `json:"level_author_name" yaml:"level_author_name"`
	Length          float64 `json:"length" yaml:"length"`
	Characteristic  string  `json:"characteristic" yaml:"characteristic"`
	Difficulty      string  `json:"difficulty" yaml:"difficulty"`
	NoteCount       int     `json:"note_count" yaml:"note_count"`
}

// Hash returns the stored level hash. Levels without a hash (built-in or
// unhashed custom levels) fall back to their level id.
func (b BeatmapDescriptor) Hash() string {
	if IsBlank(b.LevelHash) {
		return b.LevelID
	}
	return b.LevelHash
}

// NoteDensity returns notes per second of song, or 0 when the length is unknown.
func (b BeatmapDescriptor) NoteDensity() int {
	if b.Length <= 0 || b.NoteCount <= 0 {
		return 0
	}
	return int(float64(b.NoteCount) / b.Length)
}

// NoteInfoKey identifies a note's position, orientation and hand on the play grid.
// The set of distinct keys is small and shared by every play.
type NoteInfoKey struct {
	IsRightHand bool   `json:"is_right_hand" yaml:"is_right_hand"`
	Direction   string `json:"direction" yaml:"direction"`
	LineIndex   int    `json:"line_index" yaml:"line_index"`
	LineLayer   int    `json:"line_layer" yaml:"line_layer"`
}

// NoteHit is the outcome of one note: a scored cut, a bad cut, or a miss.
// Scores are zero for misses and bad cuts.
type NoteHit struct {
	Time           float64
	ValidHit       bool
	IsMiss         bool
	Note           NoteInfoKey
	BeforeCutScore int
	AfterCutScore  int
	AccuracyScore  int
	TimeDeviation  float64
	DirDeviation   float64
}

// Cut direction codes as stored in note_infos.note_direction.
const (
	DirectionAny       = "a"
	DirectionDown      = "d"
	DirectionDownLeft  = "dl"
	DirectionDownRight = "dr"
	DirectionUp        = "u"
	DirectionUpLeft    = "ul"
	DirectionUpRight   = "ur"
	DirectionLeft      = "l"
	DirectionRight     = "r"
	DirectionUnknown   = "?"
)

// Directions lists every stored direction code.
var Directions = []string{
	DirectionAny,
	DirectionDown, DirectionDownLeft, DirectionDownRight,
	DirectionUp, DirectionUpLeft, DirectionUpRight,
	DirectionLeft, DirectionRight,
	DirectionUnknown,
}
