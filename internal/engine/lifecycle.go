package engine

import "github.com/roach88/hitwire/internal/rules"

// LifecycleKind is the kind of a lifecycle pseudo-interaction.
type LifecycleKind string

const (
	LifecycleSpawn   LifecycleKind = "spawn"
	LifecycleUpdate  LifecycleKind = "update"
	LifecycleDestroy LifecycleKind = "destroy"
)

// LifecycleEvent is one spawn/update/destroy notification, modeled as
// an interaction against the level pseudo-object. Cause defaults to the
// kind name; transform-generated pairs carry cause "transform" so
// level-scoped rules can tell a type change from a genuine removal.
type LifecycleEvent struct {
	ObjectID string
	Kind     LifecycleKind
	Cause    string
}

// LifecycleTracker is the known-id set behind spawn/update/destroy
// semantics. It deduplicates: spawn only fires for unknown ids, update
// and destroy only for known ones. Destroy un-marks the id, so a later
// respawn with the same id fires spawn again.
type LifecycleTracker struct {
	known map[string]bool
}

// NewLifecycleTracker creates an empty tracker.
func NewLifecycleTracker() *LifecycleTracker {
	return &LifecycleTracker{known: make(map[string]bool)}
}

// OnSpawn emits a spawn event iff the id is not already known, then
// marks it known.
func (t *LifecycleTracker) OnSpawn(id string) (LifecycleEvent, bool) {
	if t.known[id] {
		return LifecycleEvent{}, false
	}
	t.known[id] = true
	return LifecycleEvent{ObjectID: id, Kind: LifecycleSpawn, Cause: rules.CauseSpawn}, true
}

// OnUpdate emits an update event iff the id is known. Unknown ids are a
// silent no-op, never an error.
func (t *LifecycleTracker) OnUpdate(id string) (LifecycleEvent, bool) {
	if !t.known[id] {
		return LifecycleEvent{}, false
	}
	return LifecycleEvent{ObjectID: id, Kind: LifecycleUpdate, Cause: rules.CauseUpdate}, true
}

// OnDestroy emits a destroy event iff the id is known, then un-marks it.
func (t *LifecycleTracker) OnDestroy(id string) (LifecycleEvent, bool) {
	if !t.known[id] {
		return LifecycleEvent{}, false
	}
	delete(t.known, id)
	return LifecycleEvent{ObjectID: id, Kind: LifecycleDestroy, Cause: rules.CauseDestroy}, true
}

// OnTransform optionally emits a destroy-then-spawn pair tagged with
// cause "transform". With fire == false the tracker state is adjusted
// without emitting anything.
func (t *LifecycleTracker) OnTransform(id string, fire bool) []LifecycleEvent {
	wasKnown := t.known[id]
	t.known[id] = true

	if !fire || !wasKnown {
		return nil
	}
	return []LifecycleEvent{
		{ObjectID: id, Kind: LifecycleDestroy, Cause: rules.CauseTransform},
		{ObjectID: id, Kind: LifecycleSpawn, Cause: rules.CauseTransform},
	}
}

// Known reports whether the id is currently known to exist.
func (t *LifecycleTracker) Known(id string) bool {
	return t.known[id]
}

// Reset wipes the known set.
func (t *LifecycleTracker) Reset() {
	t.known = make(map[string]bool)
}
