// Package dedup provides process-wide find-or-create caches for descriptive
// rows shared by every play session.
//
// A Cache maps a composite key to the id of the row that describes it.
// The first use hydrates the map from the backing table; afterwards a key
// costs a store insert only the first time it is seen. The cache is never
// cleared, so each distinct key is inserted at most once per process.
//
// Two caches exist:
//   - NoteInfos: (hand, direction, line index, line layer) -> note_infos.id
//   - Modifiers: modifier name -> modifiers.id
//
// Modifiers are inserted lazily on first sight. The table is never
// pre-seeded with the vocabulary; UNIQUE(modifier_name) backs the cache,
// and an insert that loses to an existing row re-reads its id.
package dedup
