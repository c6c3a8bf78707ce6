package engine

import "github.com/roach88/hitwire/internal/geom"

// Names of the five always-present system pseudo-objects. They expose
// attribute views so the rule language applies to them exactly as to
// regular objects.
const (
	PseudoPointer = "pointer"
	PseudoScreen  = "screen"
	PseudoLevel   = "level"
	PseudoGame    = "game"
	PseudoTime    = "time"
)

// IsPseudo reports whether name is one of the system pseudo-objects.
func IsPseudo(name string) bool {
	switch name {
	case PseudoPointer, PseudoScreen, PseudoLevel, PseudoGame, PseudoTime:
		return true
	}
	return false
}

// Screen is the static play-area pseudo-object.
type Screen struct {
	Bounds geom.Rect
}

// View materializes the screen as a tracked-object view.
func (s *Screen) View() *Object {
	return &Object{
		ID:   PseudoScreen,
		Type: PseudoScreen,
		Rect: s.Bounds,
		Attrs: map[string]any{
			"width":  s.Bounds.W,
			"height": s.Bounds.H,
		},
	}
}

// Level is the current-level pseudo-object: a name and an elapsed-time
// counter reset on level change.
type Level struct {
	Name    string
	Elapsed float64
}

// Set switches to a new level and resets the elapsed counter.
func (l *Level) Set(name string) {
	l.Name = name
	l.Elapsed = 0
}

// Advance adds one frame's dt to the elapsed counter.
func (l *Level) Advance(dt float64) {
	l.Elapsed += dt
}

// View materializes the level as a tracked-object view. Level has no
// geometry; it exposes a zero rectangle, so geometric conditions against
// it evaluate normally (and rarely match) rather than erroring.
func (l *Level) View() *Object {
	return &Object{
		ID:   PseudoLevel,
		Type: PseudoLevel,
		Attrs: map[string]any{
			"name":    l.Name,
			"elapsed": l.Elapsed,
		},
	}
}

// TimeKeeper is the time pseudo-object: a per-object elapsed-since-spawn
// clock and a level-wide absolute clock, both advanced once per Evaluate
// tick.
type TimeKeeper struct {
	absolute float64
	spawned  map[string]float64 // object id -> absolute time at spawn
}

// NewTimeKeeper creates a time keeper at absolute zero.
func NewTimeKeeper() *TimeKeeper {
	return &TimeKeeper{spawned: make(map[string]float64)}
}

// Advance moves the absolute clock forward one frame.
func (t *TimeKeeper) Advance(dt float64) {
	t.absolute += dt
}

// Absolute returns the level-wide clock.
func (t *TimeKeeper) Absolute() float64 {
	return t.absolute
}

// MarkSpawn starts an object's elapsed clock at the current absolute
// time. Re-marking (respawn, transform) restarts the clock.
func (t *TimeKeeper) MarkSpawn(id string) {
	t.spawned[id] = t.absolute
}

// Forget drops an object's spawn mark.
func (t *TimeKeeper) Forget(id string) {
	delete(t.spawned, id)
}

// Elapsed returns how long the object has existed. Unknown ids read as
// zero elapsed.
func (t *TimeKeeper) Elapsed(id string) float64 {
	spawnAt, ok := t.spawned[id]
	if !ok {
		return 0
	}
	return t.absolute - spawnAt
}

// ResetClock rewinds the absolute clock (level change) while keeping
// spawn marks coherent: every living object's spawn time shifts so its
// elapsed value is preserved.
func (t *TimeKeeper) ResetClock() {
	for id := range t.spawned {
		t.spawned[id] -= t.absolute
	}
	t.absolute = 0
}

// View materializes the time pseudo-object for one source object. The
// elapsed attribute depends on which object is evaluating, so the view
// is built per pair, not once per frame.
func (t *TimeKeeper) View(sourceID string) *Object {
	return &Object{
		ID:   PseudoTime,
		Type: PseudoTime,
		Attrs: map[string]any{
			"elapsed":  t.Elapsed(sourceID),
			"absolute": t.absolute,
		},
	}
}
