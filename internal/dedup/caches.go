package dedup

import (
	"github.com/roach88/hitdata/internal/ir"
	"github.com/roach88/hitdata/internal/schema"
	"github.com/roach88/hitdata/internal/store"
)

// NoteInfoCodec maps note descriptors to note_infos rows.
var NoteInfoCodec = Codec[ir.NoteInfoKey]{
	Columns: func(k ir.NoteInfoKey) ir.Columns {
		return ir.Columns{
			ir.P("is_right_hand", ir.NewBool(k.IsRightHand)),
			ir.P("note_direction", ir.NewText(k.Direction)),
			ir.P("line_index", ir.NewInteger(k.LineIndex)),
			ir.P("line_layer", ir.NewInteger(k.LineLayer)),
		}
	},
	Key: func(row store.Row) (ir.NoteInfoKey, bool) {
		hand, ok1 := ir.AsInt64(row["is_right_hand"])
		dir, ok2 := ir.AsString(row["note_direction"])
		index, ok3 := ir.AsInt64(row["line_index"])
		layer, ok4 := ir.AsInt64(row["line_layer"])
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return ir.NoteInfoKey{}, false
		}
		return ir.NoteInfoKey{
			IsRightHand: hand != 0,
			Direction:   dir,
			LineIndex:   int(index),
			LineLayer:   int(layer),
		}, true
	},
}

// ModifierCodec maps modifier names to modifiers rows.
var ModifierCodec = Codec[string]{
	Columns: func(name string) ir.Columns {
		return ir.Columns{ir.P("modifier_name", ir.NewText(name))}
	},
	Key: func(row store.Row) (string, bool) {
		return ir.AsString(row["modifier_name"])
	},
}

// NewNoteInfos creates the note descriptor cache.
func NewNoteInfos(backend Backend) *Cache[ir.NoteInfoKey] {
	return New(backend, schema.NoteInfos, NoteInfoCodec)
}

// NewModifiers creates the modifier name cache.
func NewModifiers(backend Backend) *Cache[string] {
	return New(backend, schema.Modifiers, ModifierCodec)
}
