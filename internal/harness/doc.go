// Package harness runs declarative conformance scenarios against the
// interaction engine.
//
// A scenario is a YAML file bundling rule documents, an initial object
// set, a frame-by-frame script (moves, pointer input, lifecycle events),
// and expectations over the fired actions. The harness builds a fresh
// engine per run, drives the script through Evaluate, and checks the
// expectations - so the same file doubles as an executable example and
// a regression test. Golden traces pin the exact firing sequence.
package harness
