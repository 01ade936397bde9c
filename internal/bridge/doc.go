// Package bridge adapts the host game's scoring callbacks to a recording
// session.
//
// The host reports three kinds of note events: a cut, a miss and the end of
// the level. Bridge classifies them the same way every time:
//
//   - a cut on a bomb is a bomb hit, recorded only with RecordBombHits
//   - a good cut is parked until the host finishes scoring the swing
//   - a bad cut is a note hit with valid_hit=0 and zero scores
//   - a miss on a note is a note hit with is_miss=1 and zero scores
//   - a miss on a bomb is ignored
//
// The types here mirror only the fields of the host's note data, cut info
// and gameplay modifiers that the recorder stores.
package bridge
