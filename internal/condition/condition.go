// Package condition implements the value-matching primitive used
// everywhere rule conditions appear: exact match, ordered comparisons,
// inclusive range, and set membership.
//
// A Condition matches a single observed value. All specified
// sub-conditions are ANDed; a sub-condition that was never set imposes
// no constraint, so the zero Condition matches everything.
//
// MISSING MEANS FALSE: comparing against a missing or non-numeric
// observed value is a non-match, never an error. Rule evaluation must be
// total - an author referencing an attribute an object does not carry
// gets "condition not satisfied", not a crash.
package condition

import (
	"fmt"
	"reflect"
)

// Condition is the tagged variant over the supported match forms.
// Pointer fields distinguish "unset" from a zero bound.
type Condition struct {
	// Exact requires the observed value to equal this value. Numeric
	// equality is value-based: int 3 matches float64 3.0.
	Exact any
	// hasExact distinguishes "no exact constraint" from Exact == nil.
	hasExact bool

	// Ordered comparison bounds, nil when unset.
	Lt  *float64
	Gt  *float64
	Lte *float64
	Gte *float64

	// Inclusive numeric range, both set together or neither.
	Min *float64
	Max *float64

	// In requires the observed value to equal one of the members.
	In []any
}

// Eq returns a condition requiring an exact match against v.
func Eq(v any) Condition {
	return Condition{Exact: v, hasExact: true}
}

// IsZero reports whether no sub-condition is set, i.e. the condition
// imposes no constraint.
func (c Condition) IsZero() bool {
	return !c.hasExact && c.Lt == nil && c.Gt == nil && c.Lte == nil &&
		c.Gte == nil && c.Min == nil && c.Max == nil && c.In == nil
}

// Matches reports whether the observed value satisfies every set
// sub-condition. An unset sub-condition imposes no constraint; a numeric
// comparison against a non-numeric or missing observed value is false.
func (c Condition) Matches(observed any) bool {
	if c.hasExact && !valuesEqual(c.Exact, observed) {
		return false
	}

	if c.In != nil {
		found := false
		for _, member := range c.In {
			if valuesEqual(member, observed) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	// Numeric sub-conditions require a numeric observed value.
	needsNumber := c.Lt != nil || c.Gt != nil || c.Lte != nil ||
		c.Gte != nil || c.Min != nil || c.Max != nil
	if !needsNumber {
		return true
	}
	n, ok := asFloat(observed)
	if !ok {
		return false
	}

	if c.Lt != nil && !(n < *c.Lt) {
		return false
	}
	if c.Gt != nil && !(n > *c.Gt) {
		return false
	}
	if c.Lte != nil && !(n <= *c.Lte) {
		return false
	}
	if c.Gte != nil && !(n >= *c.Gte) {
		return false
	}
	if c.Min != nil && n < *c.Min {
		return false
	}
	if c.Max != nil && n > *c.Max {
		return false
	}
	return true
}

// Parse builds a Condition from a decoded YAML value:
//
//   - scalar        -> exact match
//   - list          -> set membership
//   - mapping       -> comparison keys: lt, gt, lte, gte, min, max
//
// A min/max pair forms the inclusive range; min and max may also appear
// individually. Unknown mapping keys are an error - they are almost
// always a typo in a rule file.
func Parse(v any) (Condition, error) {
	switch val := v.(type) {
	case nil:
		return Condition{}, nil
	case []any:
		return Condition{In: val}, nil
	case map[string]any:
		return parseComparisons(val)
	default:
		return Eq(val), nil
	}
}

func parseComparisons(m map[string]any) (Condition, error) {
	var c Condition
	for key, raw := range m {
		n, ok := asFloat(raw)
		if !ok {
			return Condition{}, fmt.Errorf("comparison %q: value %v is not a number", key, raw)
		}
		switch key {
		case "lt":
			c.Lt = &n
		case "gt":
			c.Gt = &n
		case "lte":
			c.Lte = &n
		case "gte":
			c.Gte = &n
		case "min":
			c.Min = &n
		case "max":
			c.Max = &n
		default:
			return Condition{}, fmt.Errorf("unknown comparison key %q", key)
		}
	}
	return c, nil
}

// valuesEqual compares two observed/expected values, treating numerics
// of different Go types as equal when their values are equal. YAML
// decoding yields int for whole numbers and float64 otherwise, so a
// plain == would reject "speed: 3" against a float attribute.
func valuesEqual(a, b any) bool {
	an, aok := asFloat(a)
	bn, bok := asFloat(b)
	if aok && bok {
		return an == bn
	}
	if aok != bok {
		return false
	}
	// Lists and maps reach here from permissively parsed rule files and
	// host attribute bags; == panics on them, so equality must be
	// structural.
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	return reflect.DeepEqual(a, b)
}

// asFloat coerces the numeric types produced by YAML decoding and by
// host code into float64.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	default:
		return 0, false
	}
}

// AsFloat exposes the numeric coercion for other packages that must
// apply the same rules (attribute evaluation, monotonic checks).
func AsFloat(v any) (float64, bool) {
	return asFloat(v)
}
