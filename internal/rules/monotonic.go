package rules

import "fmt"

// MonotonicEntry describes which of a target's attributes can only
// transition false-to-true once per object lifetime.
type MonotonicEntry struct {
	// All marks every attribute of the target as monotonic.
	All bool
	// Attrs lists the monotonic attribute names when All is false.
	Attrs map[string]bool
}

// MonotonicConfig maps a target (pseudo-object) name to its monotonic
// entry. The config is an explicit constructor parameter of the engine,
// not package state, so two engines can carry different configs.
type MonotonicConfig map[string]MonotonicEntry

// ParseMonotonicConfig parses the decoded YAML companion configuration:
// a mapping from target name to either a boolean ("all attributes are
// monotonic") or a list of attribute names.
func ParseMonotonicConfig(doc map[string]any) (MonotonicConfig, error) {
	cfg := make(MonotonicConfig, len(doc))
	for target, raw := range doc {
		switch val := raw.(type) {
		case bool:
			cfg[target] = MonotonicEntry{All: val}
		case []any:
			attrs := make(map[string]bool, len(val))
			for i, item := range val {
				name, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("monotonic[%s][%d]: expected an attribute name, got %T", target, i, item)
				}
				attrs[name] = true
			}
			cfg[target] = MonotonicEntry{Attrs: attrs}
		default:
			return nil, fmt.Errorf("monotonic[%s]: expected a boolean or list of attribute names, got %T", target, raw)
		}
	}
	return cfg, nil
}

// Eligible reports whether a rule qualifies for permanent retirement
// after its first firing:
//
//   - trigger mode is enter (exit and continuous must keep evaluating),
//   - no attribute conditions on the rule-owning side (those can still
//     change later),
//   - the target is registered as monotonic, and every target-side
//     attribute the rule conditions on is covered by the registration.
func (c MonotonicConfig) Eligible(r Rule) bool {
	if r.Trigger != TriggerEnter {
		return false
	}
	if len(r.When.Self) > 0 {
		return false
	}
	entry, ok := c[r.Target]
	if !ok {
		return false
	}
	if entry.All {
		return true
	}
	for attr := range r.When.Other {
		if !entry.Attrs[attr] {
			return false
		}
	}
	return len(r.When.Other) > 0
}
