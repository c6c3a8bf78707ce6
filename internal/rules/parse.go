// Package rules turns a per-entity-type YAML `interactions` block into
// structured rule records and knows which rules are eligible for
// monotonic retirement.
//
// Parsing is permissive: missing action, empty condition set, a single
// body where a list is allowed - all accepted. The strict schema pass
// (ValidateStrict) exists for authors who want every typo reported
// before an engine is built.
package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/hitwire/internal/condition"
	"github.com/roach88/hitwire/internal/geom"
)

// ParseInteractions parses the decoded YAML `interactions` mapping for
// one entity type. Each key is a target name; its value is either a
// single rule body or a list of rule bodies.
//
// Targets are iterated in sorted order so rule IDs and declaration
// order are stable for a given document regardless of map iteration.
func ParseInteractions(sourceType string, doc map[string]any) ([]Rule, error) {
	targets := make([]string, 0, len(doc))
	for target := range doc {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	var out []Rule
	for _, target := range targets {
		bodies, err := asBodyList(doc[target])
		if err != nil {
			return nil, fmt.Errorf("interactions[%s]: %w", target, err)
		}
		for i, body := range bodies {
			rule, err := parseBody(sourceType, target, i, body)
			if err != nil {
				return nil, fmt.Errorf("interactions[%s][%d]: %w", target, i, err)
			}
			out = append(out, rule)
		}
	}
	return out, nil
}

// asBodyList normalizes the single-body and list-of-bodies forms.
func asBodyList(v any) ([]map[string]any, error) {
	switch val := v.(type) {
	case nil:
		// Bare target with no body: a rule with no constraints.
		return []map[string]any{{}}, nil
	case map[string]any:
		return []map[string]any{val}, nil
	case []any:
		bodies := make([]map[string]any, 0, len(val))
		for i, item := range val {
			body, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("rule %d: expected a mapping, got %T", i, item)
			}
			bodies = append(bodies, body)
		}
		return bodies, nil
	default:
		return nil, fmt.Errorf("expected a rule body or list of bodies, got %T", v)
	}
}

func parseBody(sourceType, target string, index int, body map[string]any) (Rule, error) {
	rule := Rule{
		ID:         fmt.Sprintf("%s/%s#%d", sourceType, target, index),
		SourceType: sourceType,
		Target:     target,
		Trigger:    TriggerEnter,
	}

	if raw, ok := body["when"]; ok && raw != nil {
		when, ok := raw.(map[string]any)
		if !ok {
			return Rule{}, fmt.Errorf("when: expected a mapping, got %T", raw)
		}
		cs, err := parseConditionSet(when)
		if err != nil {
			return Rule{}, err
		}
		rule.When = cs
	}

	if raw, ok := body["trigger"]; ok {
		mode, ok := raw.(string)
		if !ok {
			return Rule{}, fmt.Errorf("trigger: expected a string, got %T", raw)
		}
		if !ValidTriggerModes[TriggerMode(mode)] {
			return Rule{}, fmt.Errorf("trigger: unknown mode %q", mode)
		}
		rule.Trigger = TriggerMode(mode)
	}

	if raw, ok := body["edges"]; ok {
		edges, err := parseEdges(raw)
		if err != nil {
			return Rule{}, err
		}
		rule.Edges = edges
		expandEdges(&rule)
	}

	if raw, ok := body["action"]; ok {
		name, ok := raw.(string)
		if !ok {
			return Rule{}, fmt.Errorf("action: expected a string, got %T", raw)
		}
		rule.Action = name
	}

	if raw, ok := body["modifier"]; ok && raw != nil {
		mod, ok := raw.(map[string]any)
		if !ok {
			return Rule{}, fmt.Errorf("modifier: expected a mapping, got %T", raw)
		}
		rule.Modifier = mod
	}

	return rule, nil
}

// parseConditionSet parses a when-clause. Keys other than the known
// structural ones must carry an `a.` or `b.` attribute prefix; anything
// else is ignored here and left for the strict schema pass to reject.
func parseConditionSet(when map[string]any) (ConditionSet, error) {
	var cs ConditionSet

	for key, raw := range when {
		switch key {
		case "distance":
			c, err := condition.Parse(raw)
			if err != nil {
				return ConditionSet{}, fmt.Errorf("when.distance: %w", err)
			}
			cs.Distance = c

		case "from", "to":
			origin, ok := raw.(string)
			if !ok {
				return ConditionSet{}, fmt.Errorf("when.%s: expected a string, got %T", key, raw)
			}
			if origin != string(geom.OriginEdge) && origin != string(geom.OriginCenter) {
				return ConditionSet{}, fmt.Errorf("when.%s: unknown origin %q", key, origin)
			}
			if key == "from" {
				cs.From = geom.Origin(origin)
			} else {
				cs.To = geom.Origin(origin)
			}

		case "angle":
			if err := parseAngle(&cs, raw); err != nil {
				return ConditionSet{}, err
			}

		case "cause":
			cause, ok := raw.(string)
			if !ok {
				return ConditionSet{}, fmt.Errorf("when.cause: expected a string, got %T", raw)
			}
			if !ValidCauses[cause] {
				return ConditionSet{}, fmt.Errorf("when.cause: unknown cause %q", cause)
			}
			cs.Cause = cause

		default:
			side, attr, ok := splitAttrKey(key)
			if !ok {
				// Unknown key: the permissive parser skips it and the
				// strict schema pass reports it.
				continue
			}
			c, err := condition.Parse(raw)
			if err != nil {
				return ConditionSet{}, fmt.Errorf("when.%s: %w", key, err)
			}
			if side == "a" {
				if cs.Self == nil {
					cs.Self = make(map[string]condition.Condition)
				}
				cs.Self[attr] = c
			} else {
				if cs.Other == nil {
					cs.Other = make(map[string]condition.Condition)
				}
				cs.Other[attr] = c
			}
		}
	}

	return cs, nil
}

// parseAngle accepts either the generic comparison forms or a list of
// {min, max} windows. The window list is the native multi-range form,
// required for conditions wrapping the 0/360 seam.
func parseAngle(cs *ConditionSet, raw any) error {
	if list, ok := raw.([]any); ok {
		if allWindowMaps(list) {
			spans, err := parseSpans(list)
			if err != nil {
				return err
			}
			cs.Spans = spans
			return nil
		}
		// A list of scalars is set membership on the measured angle.
	}
	c, err := condition.Parse(raw)
	if err != nil {
		return fmt.Errorf("when.angle: %w", err)
	}
	cs.Angle = c
	return nil
}

func allWindowMaps(list []any) bool {
	if len(list) == 0 {
		return false
	}
	for _, item := range list {
		if _, ok := item.(map[string]any); !ok {
			return false
		}
	}
	return true
}

func parseSpans(list []any) (geom.SpanSet, error) {
	spans := make(geom.SpanSet, 0, len(list))
	for i, item := range list {
		m := item.(map[string]any)
		min, okMin := condition.AsFloat(m["min"])
		max, okMax := condition.AsFloat(m["max"])
		if !okMin || !okMax {
			return nil, fmt.Errorf("when.angle[%d]: window needs numeric min and max", i)
		}
		spans = append(spans, geom.Span{Min: min, Max: max})
	}
	return spans, nil
}

func parseEdges(raw any) ([]geom.Edge, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("edges: expected a list, got %T", raw)
	}
	edges := make([]geom.Edge, 0, len(list))
	for i, item := range list {
		name, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("edges[%d]: expected a string, got %T", i, item)
		}
		if _, known := geom.SpansForEdge(geom.Edge(name)); !known {
			return nil, fmt.Errorf("edges[%d]: unknown edge %q", i, name)
		}
		edges = append(edges, geom.Edge(name))
	}
	return edges, nil
}

// expandEdges merges the edge shorthand into the condition set: the
// union of each edge's angle windows plus an implied distance-zero
// condition. Explicit when-clause values win over the shorthand.
func expandEdges(rule *Rule) {
	if len(rule.Edges) == 0 {
		return
	}

	if rule.When.Angle.IsZero() && len(rule.When.Spans) == 0 {
		var spans geom.SpanSet
		for _, edge := range rule.Edges {
			ss, _ := geom.SpansForEdge(edge)
			spans = append(spans, ss...)
		}
		rule.When.Spans = spans
	}

	if rule.When.Distance.IsZero() {
		rule.When.Distance = condition.Eq(0)
	}
}

// splitAttrKey splits "a.speed" into ("a", "speed", true).
func splitAttrKey(key string) (side, attr string, ok bool) {
	if !strings.HasPrefix(key, "a.") && !strings.HasPrefix(key, "b.") {
		return "", "", false
	}
	attr = key[2:]
	if attr == "" {
		return "", "", false
	}
	return key[:1], attr, true
}
