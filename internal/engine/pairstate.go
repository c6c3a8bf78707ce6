package engine

import "github.com/roach88/hitwire/internal/rules"

// pairKey identifies one pair-state row: a rule applied to an ordered
// (source, target) pair.
type pairKey struct {
	rule string
	a, b string
}

// PairTracker holds the per-pair "was matching last frame" booleans that
// implement the three trigger semantics. Rows are created lazily on
// first evaluation of a pair and MUST be evicted explicitly when either
// object goes away - steady-state row count stays proportional to live
// interacting pairs, not historical ones.
type PairTracker struct {
	prev map[pairKey]bool
}

// NewPairTracker creates an empty tracker.
func NewPairTracker() *PairTracker {
	return &PairTracker{prev: make(map[pairKey]bool)}
}

// Update feeds one frame's condition-match boolean through the trigger
// state machine and reports whether the rule fires for this pair:
//
//	enter:      fire iff matching now and not last frame
//	exit:       fire iff not matching now but matching last frame
//	continuous: fire iff matching now
//
// The new value is stored in all three modes; continuous ignores the
// previous value for the firing decision but keeps the row for API
// symmetry with enter/exit.
func (t *PairTracker) Update(ruleID string, idA, idB string, mode rules.TriggerMode, matches bool) bool {
	key := pairKey{rule: ruleID, a: idA, b: idB}
	prev := t.prev[key]
	t.prev[key] = matches

	switch mode {
	case rules.TriggerEnter:
		return matches && !prev
	case rules.TriggerExit:
		return !matches && prev
	case rules.TriggerContinuous:
		return matches
	default:
		return false
	}
}

// State returns the stored "was matching" flag for a pair and whether a
// row exists. Introspection and testing only.
func (t *PairTracker) State(ruleID, idA, idB string) (matching, exists bool) {
	v, ok := t.prev[pairKey{rule: ruleID, a: idA, b: idB}]
	return v, ok
}

// Clear removes every row referencing the object id in either position.
// Called on object removal and transform so a row never outlives either
// referenced object.
func (t *PairTracker) Clear(objectID string) {
	for key := range t.prev {
		if key.a == objectID || key.b == objectID {
			delete(t.prev, key)
		}
	}
}

// ClearPair removes the single row for (rule, idA, idB).
func (t *PairTracker) ClearPair(ruleID, idA, idB string) {
	delete(t.prev, pairKey{rule: ruleID, a: idA, b: idB})
}

// Reset wipes every row.
func (t *PairTracker) Reset() {
	t.prev = make(map[pairKey]bool)
}

// Len returns the live row count. Used by leak tests.
func (t *PairTracker) Len() int {
	return len(t.prev)
}
