// Package script replays recorded play sessions written as YAML.
//
// A play script lists one or more plays of a beatmap: the modifiers that
// were active, every note event in order and how the level ended. Scripts
// are checked against an embedded CUE schema before they are decoded, then
// replayed through the bridge into a recorder exactly as live host events
// would be. The resulting tables can be compared against expected row
// counts or against a golden snapshot.
//
// Example:
//
//	name: single-hit
//	description: one good cut, then the level is finished
//	plays:
//	  - beatmap:
//	      level_hash: hashA
//	      characteristic: Standard
//	      difficulty: Hard
//	      length: 120
//	      note_count: 600
//	    modifiers: [NoFail]
//	    events:
//	      - type: cut
//	        time: 12.5
//	        note: {color: right, direction: u, line_index: 2, line_layer: 1}
//	        ok: true
//	        score: {before: 70, after: 30, accuracy: 15}
//	    outcome: finished
//	expect:
//	  rows: {plays: 1, note_hits: 1}
package script
