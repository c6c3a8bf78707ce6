package engine

import "log/slog"

// dispatcher owns the action-name registry and the panic isolation
// around handler invocation.
type dispatcher struct {
	handlers map[string]Handler
	fallback Handler
}

func newDispatcher() *dispatcher {
	return &dispatcher{handlers: make(map[string]Handler)}
}

// register binds an action name to a handler, replacing any previous
// binding for that name.
func (d *dispatcher) register(name string, h Handler) {
	d.handlers[name] = h
}

// setFallback installs the default handler for unregistered action
// names.
func (d *dispatcher) setFallback(h Handler) {
	d.fallback = h
}

// dispatch delivers one firing. Unregistered action names fall back to
// the default handler if one is set, else are silently dropped (logged
// at debug - a missing handler is a wiring gap worth noticing, not an
// error the frame loop should surface).
//
// Each invocation is wrapped so a panicking handler cannot prevent
// delivery of subsequently queued firings; the panic is reported via
// slog rather than swallowed.
func (d *dispatcher) dispatch(f Firing) {
	h, ok := d.handlers[f.Action]
	if !ok {
		h = d.fallback
	}
	if h == nil {
		slog.Debug("no handler for action, dropping firing",
			"action", f.Action,
			"rule", f.Rule,
			"source", f.SourceID,
			"target", f.TargetID,
		)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("action handler panicked",
				"action", f.Action,
				"rule", f.Rule,
				"source", f.SourceID,
				"target", f.TargetID,
				"panic", r,
			)
		}
	}()
	h.HandleAction(f.SourceID, f.TargetID, f.Context)
}
