package engine

import "github.com/roach88/hitwire/internal/rules"

// Context is the bundle a handler receives alongside the pair of object
// ids: what fired, why, and the measurements taken when it fired. The
// Modifier map is the rule author's opaque payload, forwarded untouched.
type Context struct {
	Action   string            `json:"action"`
	Trigger  rules.TriggerMode `json:"trigger"`
	Target   string            `json:"target"`
	Distance float64           `json:"distance"`
	Angle    float64           `json:"angle"`
	Cause    string            `json:"cause,omitempty"`
	Modifier map[string]any    `json:"modifier,omitempty"`
}

// Firing is one fired rule: the pair, the context, the rule identity,
// and the clock stamp fixing its place in the frame's dispatch order.
type Firing struct {
	Seq      int64  `json:"seq"`
	Rule     string `json:"rule"`
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Context
}

// Handler is the action-side of the late-binding boundary: rule authors
// name actions in data, handler implementers register named Handler
// values in code, and the engine joins the two at dispatch time. Side
// effects only - handlers mutate host state, they return nothing.
type Handler interface {
	HandleAction(sourceID, targetID string, ctx Context)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(sourceID, targetID string, ctx Context)

// HandleAction implements Handler.
func (f HandlerFunc) HandleAction(sourceID, targetID string, ctx Context) {
	f(sourceID, targetID, ctx)
}

// FiringObserver is notified of every dispatched firing. The trace
// recorder hooks in here; observers must not mutate engine state.
type FiringObserver interface {
	ObserveFiring(f Firing)
}
