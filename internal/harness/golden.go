package harness

import (
	"strconv"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/hitwire/internal/engine"
	"github.com/roach88/hitwire/internal/trace"
)

// TraceSnapshot is the golden-file form of a run: scenario name plus
// the full firing sequence.
type TraceSnapshot struct {
	ScenarioName string
	Firings      []engine.Firing
}

// toCanonicalMap flattens the snapshot for canonical JSON. The float
// measurements are formatted as 9-significant-digit strings: canonical
// JSON has no float form, and nine digits are stable across replays
// while still catching real geometry regressions.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	firingList := make([]any, len(s.Firings))
	for i, f := range s.Firings {
		entry := map[string]any{
			"seq":      f.Seq,
			"rule":     f.Rule,
			"source":   f.SourceID,
			"target":   f.TargetID,
			"action":   f.Action,
			"trigger":  string(f.Trigger),
			"distance": strconv.FormatFloat(f.Distance, 'g', 9, 64),
			"angle":    strconv.FormatFloat(f.Angle, 'g', 9, 64),
		}
		if f.Cause != "" {
			entry["cause"] = f.Cause
		}
		firingList[i] = entry
	}
	return map[string]any{
		"scenario": s.ScenarioName,
		"firings":  firingList,
	}
}

// RunWithGolden executes a scenario, checks its expectations, and
// compares the firing sequence against testdata/golden/{name}.golden.
// Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already-obtained result against the golden
// file for scenarioName.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Firings:      result.Firings,
	}
	traceJSON, err := trace.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}
