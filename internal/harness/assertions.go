package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/hitwire/internal/engine"
)

// ExpectationError describes one failed expectation with enough context
// to debug it without re-running the scenario.
type ExpectationError struct {
	Kind     string
	Expected string
	Actual   string
	Firings  []engine.Firing
}

func (e *ExpectationError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "expectation failed: %s\n", e.Kind)
	fmt.Fprintf(&buf, "  expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  actual: %s\n", e.Actual)
	fmt.Fprintf(&buf, "\nfirings:\n")
	for i, f := range e.Firings {
		fmt.Fprintf(&buf, "  [%d] seq=%d %s %s->%s action=%s\n",
			i+1, f.Seq, f.Rule, f.SourceID, f.TargetID, f.Action)
	}
	return buf.String()
}

// EvaluateExpectations checks every expectation against the run and
// returns one message per failure. An empty result means the run
// passed.
func EvaluateExpectations(result *Result, expect Expectations) []string {
	var errs []string
	report := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	for _, fe := range expect.Firings {
		report(assertFiringContains(result.Firings, fe))
	}
	if len(expect.Order) > 0 {
		report(assertOrder(result.Firings, expect.Order))
	}
	for _, ce := range expect.Counts {
		report(assertCount(result.Firings, ce))
	}
	if expect.Total != nil && len(result.Firings) != *expect.Total {
		report(&ExpectationError{
			Kind:     "total",
			Expected: fmt.Sprintf("%d firings", *expect.Total),
			Actual:   fmt.Sprintf("%d firings", len(result.Firings)),
			Firings:  result.Firings,
		})
	}
	if expect.Game != nil {
		report(assertGame(result, expect.Game))
	}
	return errs
}

// assertFiringContains passes when at least one firing matches every
// set field of the expectation.
func assertFiringContains(firings []engine.Firing, fe FiringExpect) error {
	for _, f := range firings {
		if matchFiring(f, fe) {
			return nil
		}
	}
	return &ExpectationError{
		Kind:     "firing",
		Expected: describeExpect(fe),
		Actual:   "no matching firing",
		Firings:  firings,
	}
}

func matchFiring(f engine.Firing, fe FiringExpect) bool {
	if fe.Rule != "" && f.Rule != fe.Rule {
		return false
	}
	if fe.Action != "" && f.Action != fe.Action {
		return false
	}
	if fe.Source != "" && f.SourceID != fe.Source {
		return false
	}
	if fe.Target != "" && f.TargetID != fe.Target {
		return false
	}
	if fe.Cause != "" && f.Cause != fe.Cause {
		return false
	}
	return true
}

// assertOrder passes when the listed actions first occur in the given
// relative order. Intervening firings are allowed.
func assertOrder(firings []engine.Firing, order []string) error {
	positions := make(map[string]int)
	for i, f := range firings {
		if _, seen := positions[f.Action]; !seen {
			positions[f.Action] = i + 1
		}
	}

	for _, action := range order {
		if positions[action] == 0 {
			return &ExpectationError{
				Kind:     "order",
				Expected: fmt.Sprintf("all actions present: %v", order),
				Actual:   fmt.Sprintf("action %q never fired", action),
				Firings:  firings,
			}
		}
	}
	for i := 1; i < len(order); i++ {
		prev, curr := order[i-1], order[i]
		if positions[prev] >= positions[curr] {
			return &ExpectationError{
				Kind:     "order",
				Expected: fmt.Sprintf("actions in order: %v", order),
				Actual: fmt.Sprintf("%q (pos %d) fired after %q (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Firings: firings,
			}
		}
	}
	return nil
}

func assertCount(firings []engine.Firing, ce CountExpect) error {
	count := 0
	for _, f := range firings {
		if f.Action == ce.Action {
			count++
		}
	}
	if count != ce.Count {
		return &ExpectationError{
			Kind:     "count",
			Expected: fmt.Sprintf("action %q fired %d times", ce.Action, ce.Count),
			Actual:   fmt.Sprintf("fired %d times", count),
			Firings:  firings,
		}
	}
	return nil
}

func assertGame(result *Result, ge *GameExpect) error {
	g := result.Game
	if ge.Lives != nil && g.Lives != *ge.Lives {
		return &ExpectationError{
			Kind:     "game",
			Expected: fmt.Sprintf("lives=%d", *ge.Lives),
			Actual:   fmt.Sprintf("lives=%d", g.Lives),
			Firings:  result.Firings,
		}
	}
	if ge.Score != nil && g.Score != *ge.Score {
		return &ExpectationError{
			Kind:     "game",
			Expected: fmt.Sprintf("score=%d", *ge.Score),
			Actual:   fmt.Sprintf("score=%d", g.Score),
			Firings:  result.Firings,
		}
	}
	if ge.State != "" && string(g.State) != ge.State {
		return &ExpectationError{
			Kind:     "game",
			Expected: fmt.Sprintf("state=%s", ge.State),
			Actual:   fmt.Sprintf("state=%s", g.State),
			Firings:  result.Firings,
		}
	}
	return nil
}

func describeExpect(fe FiringExpect) string {
	var parts []string
	if fe.Rule != "" {
		parts = append(parts, "rule="+fe.Rule)
	}
	if fe.Action != "" {
		parts = append(parts, "action="+fe.Action)
	}
	if fe.Source != "" {
		parts = append(parts, "source="+fe.Source)
	}
	if fe.Target != "" {
		parts = append(parts, "target="+fe.Target)
	}
	if fe.Cause != "" {
		parts = append(parts, "cause="+fe.Cause)
	}
	return strings.Join(parts, " ")
}
