package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/hitwire/internal/condition"
	"github.com/roach88/hitwire/internal/geom"
	"github.com/roach88/hitwire/internal/rules"
)

// Sentinel errors for object registry operations.
var (
	ErrUnknownObject   = errors.New("unknown object id")
	ErrDuplicateObject = errors.New("object id already tracked")
)

// Engine is the unified interaction engine: it owns the live object set,
// the per-type rule lists, the pair-state and lifecycle trackers, the
// retirement set, and the action dispatch registry. Once per frame the
// host calls Evaluate(dt); the engine decides which (source, target)
// pairs satisfy their declared conditions and dispatches a firing for
// each, synchronously, in sweep order.
//
// INVARIANTS:
//   - rule lists keep declaration order after registration
//   - objects iterate in insertion order; the full sweep order is
//     object order, then rule declaration order, then target order -
//     deterministic but unprioritized across independent objects
//   - an object never matches against itself, even as both source and
//     potential target of a same-type rule
//
// Thread-safety: none by design. There is exactly one logical thread of
// control - the host's frame loop. A host embedding the engine in a
// multi-threaded environment must serialize all calls into it.
type Engine struct {
	clock     *Clock
	ruleSets  map[string][]rules.Rule
	monotonic rules.MonotonicConfig

	objects map[string]*Object
	order   []string // insertion order, drives the sweep

	pairs     *PairTracker
	lifecycle *LifecycleTracker
	retired   *Retirements
	disp      *dispatcher
	deferred  *mutationQueue

	pointer *Pointer
	screen  *Screen
	level   *Level
	game    *Game
	timek   *TimeKeeper

	observers []FiringObserver

	// Construction-time choices, kept so Reset can rebuild the
	// pseudo-objects as configured.
	device     DeviceKind
	startLives int

	// sweeping guards the per-type grouping snapshot: add/remove/
	// transform requests arriving while a frame is in flight are
	// deferred to the next frame boundary.
	sweeping bool
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithDevice selects the input device kind sizing the pointer's hit
// rectangle. Default: mouse (point-sized).
func WithDevice(kind DeviceKind) Option {
	return func(e *Engine) {
		e.device = kind
		e.pointer = NewPointer(kind)
	}
}

// WithLives sets the game pseudo-object's starting lives. Default: 3.
func WithLives(n int) Option {
	return func(e *Engine) {
		e.startLives = n
		e.game = NewGame(n)
	}
}

// WithObserver attaches a firing observer (e.g. the trace recorder).
func WithObserver(obs FiringObserver) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, obs)
	}
}

// New creates an engine for the given play area. The monotonic config
// is an explicit constructor parameter - two engines can carry
// different retirement policies; there is no package-level state.
// A nil config disables retirement entirely.
func New(screen geom.Rect, monotonic rules.MonotonicConfig, opts ...Option) *Engine {
	e := &Engine{
		clock:     NewClock(),
		ruleSets:  make(map[string][]rules.Rule),
		monotonic: monotonic,
		objects:   make(map[string]*Object),
		pairs:     NewPairTracker(),
		lifecycle: NewLifecycleTracker(),
		retired:   NewRetirements(),
		disp:      newDispatcher(),
		deferred:  newMutationQueue(),
		pointer:   NewPointer(DeviceMouse),
		screen:    &Screen{Bounds: screen},
		level:     &Level{},
		game:      NewGame(3),
		timek:     NewTimeKeeper(),

		device:     DeviceMouse,
		startLives: 3,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RegisterType parses the decoded YAML interactions block for one
// entity type and binds the resulting rules to it, replacing any
// previous registration. The parsed rules are returned for inspection.
func (e *Engine) RegisterType(typeName string, doc map[string]any) ([]rules.Rule, error) {
	parsed, err := rules.ParseInteractions(typeName, doc)
	if err != nil {
		return nil, fmt.Errorf("register type %s: %w", typeName, err)
	}
	e.ruleSets[typeName] = parsed
	slog.Debug("type registered", "type", typeName, "rules", len(parsed))
	return parsed, nil
}

// RegisterRules binds already-parsed rules to a type. Declaration order
// is preserved; it is the per-object evaluation order.
func (e *Engine) RegisterRules(typeName string, rs []rules.Rule) {
	cp := make([]rules.Rule, len(rs))
	copy(cp, rs)
	e.ruleSets[typeName] = cp
}

// RegisterAction binds an action name to a handler.
func (e *Engine) RegisterAction(name string, h Handler) {
	e.disp.register(name, h)
}

// RegisterActions binds a table of action names to handlers.
func (e *Engine) RegisterActions(table map[string]Handler) {
	for name, h := range table {
		e.disp.register(name, h)
	}
}

// SetDefaultHandler installs the fallback for unregistered action names.
func (e *Engine) SetDefaultHandler(h Handler) {
	e.disp.setFallback(h)
}

// AddObserver attaches a firing observer after construction.
func (e *Engine) AddObserver(obs FiringObserver) {
	e.observers = append(e.observers, obs)
}

// UpdatePointer moves the pointer and sets its activity for the coming
// frame. The host calls this before Evaluate; Active should be true
// only on the frame of a press/click/hit.
func (e *Engine) UpdatePointer(x, y float64, active bool) {
	e.pointer.Update(x, y, active)
}

// ResizePointer overrides the pointer's hit rectangle for this frame,
// e.g. with the detected object's measured size.
func (e *Engine) ResizePointer(w, h float64) {
	e.pointer.Resize(w, h)
}

// Pointer exposes the pointer pseudo-object.
func (e *Engine) Pointer() *Pointer { return e.pointer }

// Game exposes the game pseudo-object.
func (e *Engine) Game() *Game { return e.game }

// Level exposes the level pseudo-object.
func (e *Engine) Level() *Level { return e.level }

// Time exposes the time pseudo-object.
func (e *Engine) Time() *TimeKeeper { return e.timek }

// SetLevel switches levels: the level's name and elapsed counter reset,
// and the time pseudo-object's absolute clock rewinds while preserving
// per-object elapsed values.
func (e *Engine) SetLevel(name string) {
	e.level.Set(name)
	e.timek.ResetClock()
}

// AddObject starts tracking an object. Requests made while a frame is
// in flight are deferred to the next frame boundary (and any duplicate
// is then dropped with a log instead of an error).
func (e *Engine) AddObject(obj *Object) error {
	if e.sweeping {
		e.deferred.push(func() {
			if err := e.AddObject(obj); err != nil {
				slog.Warn("deferred add dropped", "id", obj.ID, "error", err)
			}
		})
		return nil
	}

	if obj.ID == "" {
		return fmt.Errorf("add object: empty id")
	}
	if _, exists := e.objects[obj.ID]; exists {
		return fmt.Errorf("add object %q: %w", obj.ID, ErrDuplicateObject)
	}
	e.objects[obj.ID] = obj
	e.order = append(e.order, obj.ID)
	e.timek.MarkSpawn(obj.ID)
	return nil
}

// RemoveObject stops tracking an object, evicting its pair-state and
// retirement rows. The eviction is what bounds engine-owned memory: a
// host that never removes dead objects leaks one boolean row per
// (rule, id) pair.
func (e *Engine) RemoveObject(id string) {
	if e.sweeping {
		e.deferred.push(func() { e.RemoveObject(id) })
		return
	}

	if _, exists := e.objects[id]; !exists {
		return
	}
	delete(e.objects, id)
	for i, oid := range e.order {
		if oid == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	e.pairs.Clear(id)
	e.retired.Clear(id)
	e.timek.Forget(id)
}

// UpdateObject applies a host mutation to a tracked object. Position
// and attribute changes are safe mid-frame; they do not invalidate the
// sweep's grouping snapshot.
func (e *Engine) UpdateObject(id string, mutate func(*Object)) error {
	obj, ok := e.objects[id]
	if !ok {
		return fmt.Errorf("update object %q: %w", id, ErrUnknownObject)
	}
	mutate(obj)
	return nil
}

// GetObject returns the tracked object and whether it exists.
func (e *Engine) GetObject(id string) (*Object, bool) {
	obj, ok := e.objects[id]
	return obj, ok
}

// Objects returns the tracked object count.
func (e *Engine) Objects() int {
	return len(e.objects)
}

// TransformObject re-types an object: its pair-state and retirement
// rows are cleared, its spawn clock restarts, and it re-binds to the
// new type's rule list. With fireLifecycle, a destroy-then-spawn pair
// tagged with cause "transform" is fired against level-scoped rules so
// authors can distinguish a transform from a genuine removal.
func (e *Engine) TransformObject(id, newType string, fireLifecycle bool) ([]Firing, error) {
	if e.sweeping {
		e.deferred.push(func() {
			if _, err := e.TransformObject(id, newType, fireLifecycle); err != nil {
				slog.Warn("deferred transform dropped", "id", id, "error", err)
			}
		})
		return nil, nil
	}

	obj, ok := e.objects[id]
	if !ok {
		return nil, fmt.Errorf("transform object %q: %w", id, ErrUnknownObject)
	}

	oldType := obj.Type
	obj.Type = newType
	e.pairs.Clear(id)
	e.retired.Clear(id)
	e.timek.MarkSpawn(id)

	events := e.lifecycle.OnTransform(id, fireLifecycle)
	// The destroy half fires against the old type's rules, the spawn
	// half against the new type's.
	var fired []Firing
	for _, ev := range events {
		ruleType := newType
		if ev.Kind == LifecycleDestroy {
			ruleType = oldType
		}
		fired = append(fired, e.fireLifecycle(ruleType, ev)...)
	}
	return fired, nil
}

// HandleLifecycle is the explicit spawn/update/destroy hook, independent
// of Evaluate. The lifecycle tracker deduplicates (spawn of a known id
// and update/destroy of an unknown id emit nothing); a non-empty cause
// overrides the event's default cause tag.
func (e *Engine) HandleLifecycle(id, objType string, kind LifecycleKind, cause string) []Firing {
	var ev LifecycleEvent
	var ok bool
	switch kind {
	case LifecycleSpawn:
		ev, ok = e.lifecycle.OnSpawn(id)
	case LifecycleUpdate:
		ev, ok = e.lifecycle.OnUpdate(id)
	case LifecycleDestroy:
		ev, ok = e.lifecycle.OnDestroy(id)
	}
	if !ok {
		return nil
	}
	if cause != "" {
		ev.Cause = cause
	}
	return e.fireLifecycle(objType, ev)
}

// fireLifecycle matches one lifecycle event against the type's rules
// that target level AND carry a cause filter. Cause-less level rules
// belong to the geometric sweep; a cause filter never matches there.
// The split keeps each rule owned by exactly one evaluation path.
func (e *Engine) fireLifecycle(objType string, ev LifecycleEvent) []Firing {
	var fired []Firing
	levelView := e.level.View()

	src, tracked := e.objects[ev.ObjectID]
	if !tracked {
		// Destroy events often arrive after removal; attribute
		// conditions then see an empty object.
		src = &Object{ID: ev.ObjectID, Type: objType}
	}

	for _, rule := range e.ruleSets[objType] {
		if rule.Target != PseudoLevel || rule.When.Cause == "" {
			continue
		}
		if rule.When.Cause != ev.Cause {
			continue
		}
		if !attrsMatch(rule.When.Self, src) || !attrsMatch(rule.When.Other, levelView) {
			continue
		}
		fired = append(fired, Firing{
			Seq:      e.clock.Next(),
			Rule:     rule.ID,
			SourceID: ev.ObjectID,
			TargetID: PseudoLevel,
			Context: Context{
				Action:   rule.Action,
				Trigger:  rule.Trigger,
				Target:   rule.Target,
				Cause:    ev.Cause,
				Modifier: rule.Modifier,
			},
		})
	}

	for _, f := range fired {
		e.dispatch(f)
	}
	return fired
}

// Evaluate runs one frame: apply deferred mutations, advance the system
// pseudo-objects' clocks, sweep every (source object, rule, target)
// candidate, then synchronously dispatch every firing in the order
// produced. The returned slice is the same sequence, for inspection and
// testing.
func (e *Engine) Evaluate(dt float64) []Firing {
	e.deferred.drain()

	e.level.Advance(dt)
	e.timek.Advance(dt)

	// Group live objects by type once per call.
	ids := make([]string, len(e.order))
	copy(ids, e.order)
	byType := make(map[string][]*Object, len(e.ruleSets))
	for _, id := range ids {
		obj := e.objects[id]
		byType[obj.Type] = append(byType[obj.Type], obj)
	}

	e.sweeping = true
	defer func() { e.sweeping = false }()

	var fired []Firing
	for _, id := range ids {
		src := e.objects[id]
		for _, rule := range e.ruleSets[src.Type] {
			if e.retired.Retired(src.ID, rule.ID) {
				continue
			}
			ruleFired := false
			for _, tgt := range e.resolveTargets(rule, src, byType) {
				if tgt == src {
					// Self excluded by identity, not by value.
					continue
				}
				matched, dist, ang := evalPair(rule.When, src, tgt)
				if !e.pairs.Update(rule.ID, src.ID, tgt.ID, rule.Trigger, matched) {
					continue
				}
				ruleFired = true
				fired = append(fired, Firing{
					Seq:      e.clock.Next(),
					Rule:     rule.ID,
					SourceID: src.ID,
					TargetID: tgt.ID,
					Context: Context{
						Action:   rule.Action,
						Trigger:  rule.Trigger,
						Target:   rule.Target,
						Distance: dist,
						Angle:    ang,
						Modifier: rule.Modifier,
					},
				})
			}
			if ruleFired && e.monotonic.Eligible(rule) {
				e.retired.Record(src.ID, rule.ID)
			}
		}
	}

	for _, f := range fired {
		e.dispatch(f)
	}
	return fired
}

// dispatch delivers one firing to its handler and notifies observers.
func (e *Engine) dispatch(f Firing) {
	e.disp.dispatch(f)
	for _, obs := range e.observers {
		obs.ObserveFiring(f)
	}
}

// resolveTargets returns the rule's candidate target set: the single
// pseudo-object view if the target names one, else every live object of
// the target type. The time view is built per source - its elapsed
// attribute depends on who is asking.
func (e *Engine) resolveTargets(rule rules.Rule, src *Object, byType map[string][]*Object) []*Object {
	switch rule.Target {
	case PseudoPointer:
		return []*Object{e.pointer.View()}
	case PseudoScreen:
		return []*Object{e.screen.View()}
	case PseudoLevel:
		return []*Object{e.level.View()}
	case PseudoGame:
		return []*Object{e.game.View()}
	case PseudoTime:
		return []*Object{e.timek.View(src.ID)}
	default:
		return byType[rule.Target]
	}
}

// evalPair measures the pair's geometry and evaluates the full
// condition set. The measurements are returned regardless of the match
// outcome so firings carry them in their context.
func evalPair(when rules.ConditionSet, src, tgt *Object) (matched bool, dist, ang float64) {
	dist = geom.Distance(src.Rect, tgt.Rect, when.From, when.To)
	ang = geom.Angle(src.Rect, tgt.Rect)

	// A lifecycle-cause filter never matches in the geometric sweep;
	// those rules fire from the lifecycle path only.
	if when.Cause != "" {
		return false, dist, ang
	}
	if !when.Distance.Matches(dist) {
		return false, dist, ang
	}
	if !when.Angle.Matches(ang) || !when.Spans.Contains(ang) {
		return false, dist, ang
	}
	if !attrsMatch(when.Self, src) || !attrsMatch(when.Other, tgt) {
		return false, dist, ang
	}
	return true, dist, ang
}

// attrsMatch checks a side's attribute conditions against an object.
// A missing attribute is a non-match ("missing means false"), never an
// error.
func attrsMatch(conds map[string]condition.Condition, obj *Object) bool {
	for name, cond := range conds {
		v, _ := obj.Attr(name)
		if !cond.Matches(v) {
			return false
		}
	}
	return true
}

// Reset wipes every piece of engine-owned state: objects, pair-state,
// lifecycle, retirements, clocks, and the pseudo-objects. Registered
// rules, handlers, and observers survive.
func (e *Engine) Reset() {
	e.objects = make(map[string]*Object)
	e.order = nil
	e.pairs.Reset()
	e.lifecycle.Reset()
	e.retired.Reset()
	e.clock.Reset()
	e.level = &Level{}
	e.game = NewGame(e.startLives)
	e.timek = NewTimeKeeper()
	e.pointer = NewPointer(e.device)
}
