// Package recorder turns gameplay events into rows of the hit data store.
//
// A Recorder lives for the whole process. It owns the store handle, the
// note and modifier dedup caches and the recording options. Each attempt
// at a beatmap is a Session:
//
//	Uninitialized -> Active -> Finished | Failed
//
// Start resolves the beatmap row, creates the play row and links the
// active modifiers. RecordNoteHit and RecordBombHit append event rows in
// call order. Finish and Fail set the play's outcome flag once.
//
// Recording never returns errors to the caller. A recorder whose store
// could not be opened, or a session whose beatmap or play row could not be
// written, is degraded: every call becomes a no-op. The first such failure
// is logged at Error; later ones are logged at Debug. A failed write of a
// single event is logged at Warn and the event is dropped.
//
// # Deferred scoring
//
// A good cut is only scored after the saber leaves the note. ParkCut
// captures the note and timing in a PendingCut taken from the session's
// free list; Complete writes the note hit with the final scores and puts
// the handle back. An empty free list allocates, so pool size never
// affects what gets recorded.
package recorder
