package harness

import (
	"fmt"

	"github.com/roach88/hitwire/internal/engine"
	"github.com/roach88/hitwire/internal/rules"
)

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation held.
	Pass bool

	// Firings is the full dispatch sequence, frame order preserved.
	// Lifecycle firings injected by a frame precede that frame's sweep
	// firings.
	Firings []engine.Firing

	// Errors lists every failed expectation. Empty when Pass.
	Errors []string

	// Game is the game pseudo-object after the last frame.
	Game *engine.Game
}

func (r *Result) addError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// Run executes a scenario against a fresh engine and evaluates its
// expectations. A scenario error (bad rules, bad script) is returned;
// a failed expectation is reported in the Result instead.
func Run(scenario *Scenario) (*Result, error) {
	eng, err := buildEngine(scenario)
	if err != nil {
		return nil, err
	}

	result := &Result{Pass: true}

	for i, obj := range scenario.Objects {
		if err := eng.AddObject(specToObject(obj)); err != nil {
			return nil, fmt.Errorf("objects[%d]: %w", i, err)
		}
	}

	for i, frame := range scenario.Frames {
		repeat := frame.Repeat
		if repeat == 0 {
			repeat = 1
		}
		for range repeat {
			fired, err := runFrame(eng, frame)
			if err != nil {
				return nil, fmt.Errorf("frames[%d]: %w", i, err)
			}
			result.Firings = append(result.Firings, fired...)
		}
	}

	result.Game = eng.Game()

	for _, msg := range EvaluateExpectations(result, scenario.Expect) {
		result.addError(msg)
	}
	return result, nil
}

// buildEngine constructs and configures an engine from the scenario
// header: screen, device, lives, monotonic config, and rule documents.
func buildEngine(scenario *Scenario) (*engine.Engine, error) {
	var monotonic rules.MonotonicConfig
	if scenario.Monotonic != nil {
		cfg, err := rules.ParseMonotonicConfig(scenario.Monotonic)
		if err != nil {
			return nil, fmt.Errorf("monotonic: %w", err)
		}
		monotonic = cfg
	}

	var opts []engine.Option
	if scenario.Device != "" {
		opts = append(opts, engine.WithDevice(engine.DeviceKind(scenario.Device)))
	}
	if scenario.Lives > 0 {
		opts = append(opts, engine.WithLives(scenario.Lives))
	}

	eng := engine.New(scenario.Screen.Rect(), monotonic, opts...)
	for typeName, doc := range scenario.Rules {
		if _, err := eng.RegisterType(typeName, doc); err != nil {
			return nil, err
		}
	}
	return eng, nil
}

// runFrame applies one frame's mutations, injects its lifecycle events,
// and evaluates. Mutation order is fixed: level, pointer, adds,
// removes, moves, lifecycle, then the sweep.
func runFrame(eng *engine.Engine, frame Frame) ([]engine.Firing, error) {
	if frame.Level != "" {
		eng.SetLevel(frame.Level)
	}
	if frame.Pointer != nil {
		eng.UpdatePointer(frame.Pointer.X, frame.Pointer.Y, frame.Pointer.Active)
	}

	for _, obj := range frame.Add {
		if err := eng.AddObject(specToObject(obj)); err != nil {
			return nil, fmt.Errorf("add %q: %w", obj.ID, err)
		}
	}
	for _, id := range frame.Remove {
		eng.RemoveObject(id)
	}
	for _, mv := range frame.Moves {
		err := eng.UpdateObject(mv.ID, func(o *engine.Object) {
			if mv.Rect != nil {
				o.Rect = mv.Rect.Rect()
			}
			for k, v := range mv.Attrs {
				o.SetAttr(k, v)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("move %q: %w", mv.ID, err)
		}
	}

	var fired []engine.Firing
	for _, lc := range frame.Lifecycle {
		fs, err := runLifecycleStep(eng, lc)
		if err != nil {
			return nil, err
		}
		fired = append(fired, fs...)
	}

	dt := frame.DT
	if dt == 0 {
		dt = 1.0 / 60
	}
	fired = append(fired, eng.Evaluate(dt)...)
	return fired, nil
}

func runLifecycleStep(eng *engine.Engine, lc LifecycleStep) ([]engine.Firing, error) {
	switch lc.Kind {
	case "spawn":
		return eng.HandleLifecycle(lc.ID, lc.Type, engine.LifecycleSpawn, lc.Cause), nil
	case "update":
		return eng.HandleLifecycle(lc.ID, lc.Type, engine.LifecycleUpdate, lc.Cause), nil
	case "destroy":
		return eng.HandleLifecycle(lc.ID, lc.Type, engine.LifecycleDestroy, lc.Cause), nil
	case "transform":
		fired, err := eng.TransformObject(lc.ID, lc.NewType, true)
		if err != nil {
			return nil, fmt.Errorf("transform %q: %w", lc.ID, err)
		}
		return fired, nil
	default:
		return nil, fmt.Errorf("lifecycle %q: unknown kind %q", lc.ID, lc.Kind)
	}
}

func specToObject(spec ObjectSpec) *engine.Object {
	obj := &engine.Object{
		ID:    spec.ID,
		Type:  spec.Type,
		Attrs: spec.Attrs,
	}
	if spec.Rect != nil {
		obj.Rect = spec.Rect.Rect()
	}
	return obj
}
