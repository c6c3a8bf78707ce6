package engine

import "sync"

// Retirements tracks (object id, rule id) pairs whose rule has fired and
// is permanently skipped thereafter. This is the monotonic-rule
// optimization: a one-shot rule against a target that can only go
// false-to-true once (an elapsed-time threshold, say) costs O(1) to skip
// on every later frame instead of re-measuring forever, keeping
// steady-state per-frame cost from growing with the count of
// already-resolved rules.
//
// Rows are cleared for an object on destroy or type transform - a fresh
// or re-typed object gets a fresh shot at every rule.
type Retirements struct {
	mu    sync.Mutex
	fired map[string]map[string]bool // object id -> rule id -> retired
}

// NewRetirements creates an empty retirement set.
func NewRetirements() *Retirements {
	return &Retirements{fired: make(map[string]map[string]bool)}
}

// Retired reports whether the rule is retired for the object.
func (r *Retirements) Retired(objectID, ruleID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fired[objectID] == nil {
		return false
	}
	return r.fired[objectID][ruleID]
}

// Record marks the rule as retired for the object. Called after the
// rule's first firing, before the next frame evaluates it again.
func (r *Retirements) Record(objectID, ruleID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fired[objectID] == nil {
		r.fired[objectID] = make(map[string]bool)
	}
	r.fired[objectID][ruleID] = true
}

// Clear removes every retirement row for an object. Called on object
// removal and on type transform.
func (r *Retirements) Clear(objectID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.fired, objectID)
}

// Reset wipes everything.
func (r *Retirements) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fired = make(map[string]map[string]bool)
}

// Size returns the number of objects with at least one retired rule.
// Used for testing and introspection.
func (r *Retirements) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.fired)
}
