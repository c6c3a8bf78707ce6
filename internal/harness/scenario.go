package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/hitwire/internal/geom"
)

// Scenario is one declarative conformance test: rules, a starting
// world, a frame script, and expectations.
type Scenario struct {
	// Name uniquely identifies this scenario; it is also the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Screen is the play area.
	Screen RectSpec `yaml:"screen"`

	// Device selects the pointer's hit rectangle (mouse, finger,
	// thrown, laser). Empty means mouse.
	Device string `yaml:"device,omitempty"`

	// Lives sets the game pseudo-object's starting lives. Zero means
	// the engine default.
	Lives int `yaml:"lives,omitempty"`

	// Rules maps each entity type to its interactions document, inline.
	Rules map[string]map[string]any `yaml:"rules"`

	// Monotonic is the optional retirement companion configuration.
	Monotonic map[string]any `yaml:"monotonic,omitempty"`

	// Objects is the world before the first frame.
	Objects []ObjectSpec `yaml:"objects,omitempty"`

	// Frames is the script, one entry per Evaluate call.
	Frames []Frame `yaml:"frames"`

	// Expect validates the collected firings and final state.
	Expect Expectations `yaml:"expect,omitempty"`
}

// RectSpec is a YAML-friendly rectangle.
type RectSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// Rect converts to the geometry type.
func (r RectSpec) Rect() geom.Rect {
	return geom.NewRect(r.X, r.Y, r.W, r.H)
}

// ObjectSpec describes one object, in the initial set or added later.
// In a frame's moves list only the named fields change: a zero rect
// keeps the old rect, attrs merge over the existing ones.
type ObjectSpec struct {
	ID    string         `yaml:"id"`
	Type  string         `yaml:"type,omitempty"`
	Rect  *RectSpec      `yaml:"rect,omitempty"`
	Attrs map[string]any `yaml:"attrs,omitempty"`
}

// PointerSpec positions the pointer for one frame.
type PointerSpec struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Active bool    `yaml:"active,omitempty"`
}

// LifecycleStep injects a spawn/update/destroy/transform event before
// the frame evaluates.
type LifecycleStep struct {
	ID    string `yaml:"id"`
	Type  string `yaml:"type"`
	Kind  string `yaml:"kind"`
	Cause string `yaml:"cause,omitempty"`

	// NewType is the transform target type; only read when Kind is
	// "transform".
	NewType string `yaml:"new_type,omitempty"`
}

// Frame is one scripted engine tick. Mutations apply before Evaluate,
// in field order: level switch, pointer, adds, removes, moves,
// lifecycle events.
type Frame struct {
	// DT is the frame delta in seconds; zero defaults to 1/60.
	DT float64 `yaml:"dt,omitempty"`

	Level     string          `yaml:"level,omitempty"`
	Pointer   *PointerSpec    `yaml:"pointer,omitempty"`
	Add       []ObjectSpec    `yaml:"add,omitempty"`
	Remove    []string        `yaml:"remove,omitempty"`
	Moves     []ObjectSpec    `yaml:"moves,omitempty"`
	Lifecycle []LifecycleStep `yaml:"lifecycle,omitempty"`

	// Repeat runs the frame this many times (1 when zero). Useful for
	// "nothing changes for N frames" stretches.
	Repeat int `yaml:"repeat,omitempty"`
}

// FiringExpect is a subset match against one collected firing.
// Zero-valued fields are not checked.
type FiringExpect struct {
	Rule   string `yaml:"rule,omitempty"`
	Action string `yaml:"action,omitempty"`
	Source string `yaml:"source,omitempty"`
	Target string `yaml:"target,omitempty"`
	Cause  string `yaml:"cause,omitempty"`
}

// CountExpect pins how many times an action fired over the whole run.
type CountExpect struct {
	Action string `yaml:"action"`
	Count  int    `yaml:"count"`
}

// GameExpect validates the game pseudo-object after the last frame.
// Nil members are not checked.
type GameExpect struct {
	Lives *int   `yaml:"lives,omitempty"`
	Score *int   `yaml:"score,omitempty"`
	State string `yaml:"state,omitempty"`
}

// Expectations validates the run. All lists are conjunctive.
type Expectations struct {
	// Firings must each match at least one collected firing.
	Firings []FiringExpect `yaml:"firings,omitempty"`

	// Order lists actions that must appear in this relative order
	// (intervening firings allowed).
	Order []string `yaml:"order,omitempty"`

	// Counts pins exact per-action firing counts.
	Counts []CountExpect `yaml:"counts,omitempty"`

	// Total pins the total firing count. Nil means unchecked; use a
	// pointer so zero is expressible.
	Total *int `yaml:"total,omitempty"`

	// Game validates final game state.
	Game *GameExpect `yaml:"game,omitempty"`
}

// LoadScenario reads and parses a scenario file. Unknown YAML fields
// are rejected so a typo like "frame:" fails loudly instead of
// silently skipping the script.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML bytes.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Rules) == 0 {
		return fmt.Errorf("rules mapping is required and must be non-empty")
	}
	if len(s.Frames) == 0 {
		return fmt.Errorf("frames list is required and must be non-empty")
	}
	if s.Screen.W <= 0 || s.Screen.H <= 0 {
		return fmt.Errorf("screen needs a positive w and h")
	}

	for i, obj := range s.Objects {
		if obj.ID == "" {
			return fmt.Errorf("objects[%d]: id is required", i)
		}
		if obj.Type == "" {
			return fmt.Errorf("objects[%d]: type is required", i)
		}
	}

	for i, frame := range s.Frames {
		if frame.Repeat < 0 {
			return fmt.Errorf("frames[%d]: repeat must be non-negative", i)
		}
		for j, obj := range frame.Add {
			if obj.ID == "" || obj.Type == "" {
				return fmt.Errorf("frames[%d].add[%d]: id and type are required", i, j)
			}
		}
		for j, mv := range frame.Moves {
			if mv.ID == "" {
				return fmt.Errorf("frames[%d].moves[%d]: id is required", i, j)
			}
		}
		for j, lc := range frame.Lifecycle {
			if lc.ID == "" || lc.Type == "" {
				return fmt.Errorf("frames[%d].lifecycle[%d]: id and type are required", i, j)
			}
			switch lc.Kind {
			case "spawn", "update", "destroy":
			case "transform":
				if lc.NewType == "" {
					return fmt.Errorf("frames[%d].lifecycle[%d]: transform needs new_type", i, j)
				}
			default:
				return fmt.Errorf("frames[%d].lifecycle[%d]: unknown kind %q", i, j, lc.Kind)
			}
		}
	}

	for i, c := range s.Expect.Counts {
		if c.Action == "" {
			return fmt.Errorf("expect.counts[%d]: action is required", i)
		}
		if c.Count < 0 {
			return fmt.Errorf("expect.counts[%d]: count must be non-negative", i)
		}
	}
	for i, f := range s.Expect.Firings {
		if f == (FiringExpect{}) {
			return fmt.Errorf("expect.firings[%d]: at least one field is required", i)
		}
	}

	return nil
}
