// Package engine implements the unified interaction engine: the
// per-frame evaluation sweep that decides which pairs of game objects
// satisfy author-declared geometric and attribute conditions, and which
// of those satisfactions fire a named action once, continuously, or on
// exit.
//
// ARCHITECTURE:
//
// Single-threaded frame loop. The host drives everything with one call
// per frame to Evaluate(dt); there are no internal goroutines, no
// suspension points, no blocking I/O. Action handlers run synchronously
// inline during the dispatch phase of Evaluate.
//
// Frame processing:
//  1. Deferred add/remove/transform requests from the previous frame's
//     handlers are applied.
//  2. System pseudo-object clocks advance (level elapsed, per-object
//     and absolute time).
//  3. The live object set is grouped by type once (amortized O(n)).
//  4. For every object, for every rule on its type in declaration
//     order, the rule's target set is resolved and each candidate pair
//     fed through the pair-state tracker. Retired monotonic rules are
//     skipped in O(1).
//  5. Every firing is dispatched synchronously, in the order produced:
//     object insertion order, then rule declaration order, then target
//     order. Deterministic but unprioritized - no ordering promise
//     across independent rules beyond that iteration contract.
//
// The engine owns only pair-state rows, lifecycle rows, and retirement
// rows; their lifetime is bounded by RemoveObject, TransformObject, and
// Reset, not by any collector. Everything else about an object (its
// movement, richer state, scoring) belongs to the host, which mutates
// objects between frames and reacts to dispatched firings.
package engine
