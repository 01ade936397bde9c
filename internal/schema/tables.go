package schema

import "github.com/roach88/hitdata/internal/ir"

// Table names of the hit data store.
const (
	Beatmaps      = "beatmaps"
	Modifiers     = "modifiers"
	Plays         = "plays"
	PlayModifiers = "play_modifiers"
	NoteInfos     = "note_infos"
	NoteHits      = "note_hits"
	BombHits      = "bomb_hits"
	HitDeviations = "hit_deviations"
)

// HitData returns the registry for the hit data store.
func HitData() *Registry {
	return MustRegistry(
		Table{
			Name: Beatmaps,
			Columns: []Column{
				{Name: "level_hash", Type: ir.KindText, NotNull: true},
				{Name: "song_name", Type: ir.KindText},
				{Name: "song_author_name", Type: ir.KindText},
				{Name: "level_author_name", Type: ir.KindText},
				{Name: "length", Type: ir.KindReal},
				{Name: "characteristic", Type: ir.KindText, NotNull: true},
				{Name: "difficulty", Type: ir.KindText, NotNull: true},
				{Name: "note_count", Type: ir.KindInteger},
			},
			Unique: []string{"level_hash", "characteristic", "difficulty"},
		},
		Table{
			Name: Modifiers,
			Columns: []Column{
				{Name: "modifier_name", Type: ir.KindText, NotNull: true},
			},
			Unique: []string{"modifier_name"},
		},
		Table{
			Name: Plays,
			Columns: []Column{
				{Name: "beatmap_id", Type: ir.KindInteger, References: Beatmaps, NotNull: true},
				{Name: "play_datetime", Type: ir.KindTimestamp},
				{Name: "is_practice", Type: ir.KindInteger, NotNull: true, Default: "0"},
				{Name: "completed", Type: ir.KindInteger, NotNull: true, Default: "0"},
				{Name: "failed", Type: ir.KindInteger, NotNull: true, Default: "0"},
			},
		},
		Table{
			Name: PlayModifiers,
			Columns: []Column{
				{Name: "play_id", Type: ir.KindInteger, References: Plays, NotNull: true},
				{Name: "modifier_id", Type: ir.KindInteger, References: Modifiers, NotNull: true},
			},
		},
		Table{
			Name: NoteInfos,
			Columns: []Column{
				{Name: "is_right_hand", Type: ir.KindInteger, NotNull: true},
				{Name: "note_direction", Type: ir.KindText, NotNull: true},
				{Name: "line_index", Type: ir.KindInteger, NotNull: true},
				{Name: "line_layer", Type: ir.KindInteger, NotNull: true},
			},
			Unique: []string{"is_right_hand", "note_direction", "line_index", "line_layer"},
		},
		Table{
			Name: NoteHits,
			Columns: []Column{
				{Name: "play_id", Type: ir.KindInteger, References: Plays, NotNull: true},
				{Name: "time", Type: ir.KindReal},
				{Name: "valid_hit", Type: ir.KindInteger},
				{Name: "is_miss", Type: ir.KindInteger},
				{Name: "note_info_id", Type: ir.KindInteger, References: NoteInfos, NotNull: true},
				{Name: "before_cut_score", Type: ir.KindInteger},
				{Name: "after_cut_score", Type: ir.KindInteger},
				{Name: "accuracy_score", Type: ir.KindInteger},
			},
		},
		Table{
			Name: BombHits,
			Columns: []Column{
				{Name: "play_id", Type: ir.KindInteger, References: Plays, NotNull: true},
				{Name: "time", Type: ir.KindReal},
			},
		},
		Table{
			Name: HitDeviations,
			Columns: []Column{
				{Name: "hit_id", Type: ir.KindInteger, References: NoteHits, NotNull: true},
				{Name: "time_deviation", Type: ir.KindReal},
				{Name: "dir_deviation", Type: ir.KindReal},
			},
		},
	)
}
