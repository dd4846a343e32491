// Package registry implements the commander's assignment bookkeeping: the
// not-yet-assigned and finished key sets, per-key attempt counts, and the
// termination predicate derived from them.
package registry

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

// RetryCap is the fixed number of dispatches a key may receive before it is
// permanently counted as a failure.
const RetryCap = 3

// Registry guards the three coupled collections with one assignment lock,
// and the completion condition with a separate completion lock so the two
// never nest.
type Registry struct {
	mu          sync.Mutex
	notAssigned mapset.Set[string]
	finished    mapset.Set[string]
	attempts    map[string]int

	totalAssignments int

	completionMu   sync.Mutex
	completionCond *sync.Cond
	done           bool
}

// New constructs a registry already populated with keys, so that
// totalAssignments and the termination predicate are correct from the very
// first call to Done.
func New(keys []string) *Registry {
	r := &Registry{
		notAssigned: mapset.NewThreadUnsafeSet[string](),
		finished:    mapset.NewThreadUnsafeSet[string](),
		attempts:    make(map[string]int, len(keys)),
	}
	for _, k := range keys {
		r.notAssigned.Add(k)
		r.attempts[k] = 0
	}
	r.totalAssignments = len(keys)
	r.completionCond = sync.NewCond(&r.completionMu)
	r.recomputeDone()
	return r
}

// TotalAssignments returns the immutable snapshot taken at construction.
func (r *Registry) TotalAssignments() int {
	return r.totalAssignments
}

// PopNext removes and returns an arbitrary element of notAssigned. If that
// key has already exhausted its retry budget it is treated as absent (the
// key is simply dropped; it is already accounted for as exhausted).
func (r *Registry) PopNext() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		keys := r.notAssigned.ToSlice()
		if len(keys) == 0 {
			return "", false
		}
		key := keys[0]
		r.notAssigned.Remove(key)

		if r.attempts[key] >= RetryCap {
			continue
		}
		return key, true
	}
}

// MarkAssigned increments the attempt count for key. It is called
// immediately after a successful PopNext for that key.
func (r *Registry) MarkAssigned(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[key]++
}

// OnTimeout re-queues key if it has not already finished, and reports
// whether it did so (the caller uses this to decide whether to invoke the
// failure callback, per the "re-queue if not yet finished" fix to the
// original's inverted check).
func (r *Registry) OnTimeout(key string) (requeued bool) {
	r.mu.Lock()
	if !r.finished.Contains(key) {
		r.notAssigned.Add(key)
		requeued = true
	}
	r.mu.Unlock()

	r.signalIfDone()
	return requeued
}

// OnResult records key as finished. Idempotent: a repeat call for an
// already-finished key does not double count.
func (r *Registry) OnResult(key string) {
	r.mu.Lock()
	r.notAssigned.Remove(key)
	r.finished.Add(key)
	r.mu.Unlock()

	r.signalIfDone()
}

// Done reports whether the termination predicate currently holds.
func (r *Registry) Done() bool {
	r.completionMu.Lock()
	defer r.completionMu.Unlock()
	return r.done
}

// WaitForDone blocks until Done() is true.
func (r *Registry) WaitForDone() {
	r.completionMu.Lock()
	defer r.completionMu.Unlock()
	for !r.done {
		r.completionCond.Wait()
	}
}

// Snapshot returns the current sizes of the three collections plus the
// exhausted count, for diagnostics and tests (§8 invariant 6).
type Snapshot struct {
	NotAssigned int
	Finished    int
	Exhausted   int
	InFlight    int
	Total       int
}

func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	exhausted := 0
	for k, n := range r.attempts {
		if n >= RetryCap && !r.finished.Contains(k) {
			exhausted++
		}
	}
	notAssigned := r.notAssigned.Cardinality()
	finished := r.finished.Cardinality()
	inFlight := r.totalAssignments - notAssigned - finished - exhausted

	return Snapshot{
		NotAssigned: notAssigned,
		Finished:    finished,
		Exhausted:   exhausted,
		InFlight:    inFlight,
		Total:       r.totalAssignments,
	}
}

// recomputeDone must be called with mu NOT held; it acquires the assignment
// lock itself to read the collections, then updates the completion state
// under the completion lock, acquired strictly after the assignment lock is
// released.
func (r *Registry) recomputeDone() {
	r.mu.Lock()
	finishedCount := r.finished.Cardinality()
	exhausted := 0
	for k, n := range r.attempts {
		if n >= RetryCap && !r.finished.Contains(k) {
			exhausted++
		}
	}
	total := r.totalAssignments
	r.mu.Unlock()

	isDone := finishedCount+exhausted >= total

	r.completionMu.Lock()
	if isDone && !r.done {
		r.done = true
		r.completionCond.Broadcast()
	}
	r.completionMu.Unlock()
}

func (r *Registry) signalIfDone() {
	r.recomputeDone()
}
