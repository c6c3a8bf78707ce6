package engine

import "sync"

// mutationQueue defers object add/remove/transform requests made while a
// frame is in flight. The sweep groups objects by type once per
// Evaluate; a handler that added or removed tracked objects inline
// would invalidate that snapshot mid-iteration. Deferred mutations are
// applied at the next frame boundary, in the order requested.
//
// Thread-safety is provided for hosts that feed the engine from input
// callbacks; the engine itself drains the queue from its single frame
// loop.
type mutationQueue struct {
	mu      sync.Mutex
	pending []func()
}

func newMutationQueue() *mutationQueue {
	return &mutationQueue{pending: make([]func(), 0, 16)}
}

// push appends a deferred mutation.
func (q *mutationQueue) push(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, fn)
}

// drain runs every pending mutation in request order and empties the
// queue. Mutations enqueued while draining (a deferred add whose
// application defers another) run in the same drain.
func (q *mutationQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.mu.Unlock()
			return
		}
		fn := q.pending[0]
		// Nil out the slot so the closure is collectable before the
		// slice is reallocated.
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()

		fn()
	}
}

// len returns the number of pending mutations. Testing only.
func (q *mutationQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
