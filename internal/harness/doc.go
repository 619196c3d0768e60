// Package harness runs calculator key-sequence scenarios.
//
// A scenario presses keys on a fresh engine backed by an in-memory SQLite
// history store, with a deterministic clock and sequential entry ids, and
// then checks the resulting trace, final state and history.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: add_then_multiply
//	description: "A result feeds the next operation"
//	error_marker: Error        # optional
//	setup:                     # optional, pressed before the traced flow
//	  - "9 + 1 ="
//	flow:
//	  - keys: "2 + 3 ="
//	    expect:
//	      display: "5"
//	      operation: none
//	      clear: AC
//	  - keys: "x 4 ="
//	assertions:
//	  - type: display
//	    value: "20"
//	  - type: history_contains
//	    expression: "5 × 4 = 20"
//	  - type: history_count
//	    count: 3
//	  - type: history_order    # as listed, newest first
//	    expressions: ["5 × 4 = 20", "2 + 3 = 5"]
//	  - type: final_state
//	    expect: { operation: none, current: 20, error: false }
//
// Keys are split with engine.SplitKeys, so "12+3=" and "1 2 + 3 =" are
// equivalent. Fullwidth input is accepted.
//
// # Golden Files
//
// The trace of a run renders as plain text, one line per key:
//
//	step=1 key=2 display=2 op=none clear=C
//	step=1 key=+ display=2 op=add clear=C
//	step=1 key== display=5 op=none clear=AC recorded="2 + 3 = 5"
//
// followed by the history (newest first). RunWithGolden compares that text
// with testdata/golden/<name>.golden using goldie.
package harness
