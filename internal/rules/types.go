package rules

import (
	"github.com/roach88/hitwire/internal/condition"
	"github.com/roach88/hitwire/internal/geom"
)

// TriggerMode selects the firing semantics of a rule.
type TriggerMode string

const (
	// TriggerEnter fires once on the transition from non-matching to
	// matching. The default.
	TriggerEnter TriggerMode = "enter"
	// TriggerExit fires once on the transition from matching to
	// non-matching.
	TriggerExit TriggerMode = "exit"
	// TriggerContinuous fires every frame the condition matches.
	TriggerContinuous TriggerMode = "continuous"
)

// ValidTriggerModes defines the allowed trigger values.
var ValidTriggerModes = map[TriggerMode]bool{
	TriggerEnter:      true,
	TriggerExit:       true,
	TriggerContinuous: true,
}

// Lifecycle causes usable in a when-clause cause filter.
//
// NOTE: the source DSL this grammar descends from overloaded a single
// `because` keyword for both the trigger mode and the lifecycle cause.
// The two meanings are deliberately split here: `trigger:` at the rule
// level, `cause:` inside `when`.
const (
	CauseSpawn     = "spawn"
	CauseUpdate    = "update"
	CauseDestroy   = "destroy"
	CauseTransform = "transform"
)

// ValidCauses defines the allowed when.cause values.
var ValidCauses = map[string]bool{
	CauseSpawn:     true,
	CauseUpdate:    true,
	CauseDestroy:   true,
	CauseTransform: true,
}

// ConditionSet bundles every constraint a rule can place on a
// (source, target) pair. Unset members impose no constraint; the zero
// ConditionSet always matches.
type ConditionSet struct {
	// Distance constrains the measured distance between the pair.
	Distance condition.Condition

	// From and To select the measurement origin for the source and
	// target side. Empty defaults to edge-to-edge.
	From geom.Origin
	To   geom.Origin

	// Angle constrains the direction angle (degrees, 0 = rightward,
	// 90 = upward) with the generic comparison forms.
	Angle condition.Condition

	// Spans constrains the direction angle to a union of windows. This
	// is the native multi-window form the edge shorthand expands into;
	// it represents conditions wrapping the 0/360 seam exactly.
	Spans geom.SpanSet

	// Cause filters lifecycle pseudo-interactions by their cause.
	Cause string

	// Self holds attribute conditions on the rule-owning object
	// (`a.<attr>` keys); Other holds conditions on the target side
	// (`b.<attr>` keys).
	Self  map[string]condition.Condition
	Other map[string]condition.Condition
}

// NeedsGeometry reports whether evaluating the set requires measuring
// distance or angle between the pair.
func (cs ConditionSet) NeedsGeometry() bool {
	return !cs.Distance.IsZero() || !cs.Angle.IsZero() || len(cs.Spans) > 0
}

// Rule is one parsed interaction declaration, scoped to a source object
// type and aimed at a target type or pseudo-object.
type Rule struct {
	// ID identifies the rule inside the engine's pair-state and
	// retirement tables. Assigned at parse time from the source type,
	// target, and declaration index; stable for a given rule source.
	ID string

	// SourceType is the object type the rule was declared on. Kept for
	// diagnostics and logging.
	SourceType string

	// Target names the object type or pseudo-object the rule matches
	// against.
	Target string

	// When is the full condition set.
	When ConditionSet

	// Trigger selects enter/exit/continuous semantics.
	Trigger TriggerMode

	// Edges records the author's edge shorthand, already expanded into
	// When. Kept for diagnostics.
	Edges []geom.Edge

	// Action names the handler to dispatch to. Empty when the author
	// omitted it; the engine then falls back to the default handler.
	Action string

	// Modifier is the opaque configuration payload forwarded verbatim
	// to the handler.
	Modifier map[string]any
}
