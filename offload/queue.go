// Package offload implements the thread-pool offload subsystem: a
// lock-free MPSC intake queue, an MPSC-to-single-consumer completion
// queue, semaphore-gated worker threads, and the reactor-side drain
// that turns a finished Task back into an Event dispatch.
package offload

import (
	"sync/atomic"
	"unsafe"
)

// queue is a Michael-Scott-style lock-free singly linked queue,
// simplified for the access pattern spec §4.5 describes: many
// producers linking new tails, and either many consumers racing to
// pop the head (the intake queue) or exactly one consumer with no
// rivals (the completion queue, which skips the head CAS below).
//
// first is the head pointer. lastP holds the address of the tail
// link cell: either &first itself (queue empty) or the &task.next of
// the current tail task. Publishing a new tail is a CAS of lastP from
// its old value to &task.next, immediately followed by an atomic store
// of task through the old link — the two-step "reserve then publish"
// sequence is what makes concurrent enqueue safe without a lock.
type queue struct {
	first unsafe.Pointer // *Task
	lastP unsafe.Pointer // *unsafe.Pointer, aliases &first or &tail.next
}

func newQueue() *queue {
	q := &queue{}
	q.lastP = unsafe.Pointer(&q.first)
	return q
}

// push enqueues t. Safe to call from any number of goroutines
// concurrently against the same queue.
func (q *queue) push(t *Task) {
	atomic.StorePointer((*unsafe.Pointer)(unsafe.Pointer(&t.next)), nil)
	nextLink := unsafe.Pointer(&t.next)

	for {
		lp := atomic.LoadPointer(&q.lastP)
		if lp == unsafe.Pointer(&q.first) {
			// Queue observed empty: this is the "first task" path.
			// Claim the empty queue by CASing lastP from &first to
			// &t.next, then publish t with an atomic store to first.
			// A pusher that loses the CAS retries and links behind
			// t; a popper sees first == nil until the store lands and
			// reports a transient miss. recoverTail's CAS back to
			// &first is the other half of this invariant.
			if atomic.CompareAndSwapPointer(&q.lastP, lp, nextLink) {
				atomic.StorePointer(&q.first, unsafe.Pointer(t))
				return
			}
			continue
		}
		if atomic.CompareAndSwapPointer(&q.lastP, lp, nextLink) {
			// Publish t through the old tail link. This store is
			// release-ordered with respect to every prior write to
			// t (its ctx, handler, id), which is what lets a
			// consumer's acquire-load of this same cell observe a
			// fully initialized Task.
			atomic.StorePointer((*unsafe.Pointer)(lp), unsafe.Pointer(t))
			return
		}
	}
}

// popMulti dequeues one Task, for the MPSC intake queue where
// multiple workers race on the head. Returns nil if the queue is
// transiently or genuinely empty; callers must yield and retry on a
// transient miss (the enqueuer-between-CAS-and-publish race, spec
// §4.5 step 2 / §8 boundary case 10).
func (q *queue) popMulti() *Task {
	for {
		t := (*Task)(atomic.LoadPointer(&q.first))
		if t == nil {
			return nil
		}
		next := atomic.LoadPointer((*unsafe.Pointer)(unsafe.Pointer(&t.next)))
		if !atomic.CompareAndSwapPointer(&q.first, unsafe.Pointer(t), next) {
			continue
		}
		q.recoverTail(t, next)
		return t
	}
}

// popSingle dequeues one Task for the completion queue, where exactly
// one consumer (the reactor drain loop) ever calls it, so the head
// transition needs no CAS — a plain store suffices (spec §4.6: "the
// consumer side omits the head-CAS because it has no rivals").
func (q *queue) popSingle() *Task {
	t := (*Task)(atomic.LoadPointer(&q.first))
	if t == nil {
		return nil
	}
	next := atomic.LoadPointer((*unsafe.Pointer)(unsafe.Pointer(&t.next)))
	atomic.StorePointer(&q.first, next)
	q.recoverTail(t, next)
	return t
}

// recoverTail restores the empty-queue invariant (lastP == &first)
// after popping t left first == nil, unless a concurrent pusher has
// already linked a new tail through t.next — the same tail-fix CAS is
// shared by intake dequeue (§4.5 step 4) and completion drain (§4.7
// step 2).
func (q *queue) recoverTail(t *Task, next unsafe.Pointer) {
	if next != nil {
		return
	}
	tNextLink := unsafe.Pointer(&t.next)
	if atomic.CompareAndSwapPointer(&q.lastP, tNextLink, unsafe.Pointer(&q.first)) {
		return
	}
	// A pusher has already observed lastP == &t.next and is mid-way
	// through (or has finished) linking its new tail; spin until that
	// publish becomes visible rather than leaving first permanently
	// nil with a pending task orphaned.
	for {
		n := atomic.LoadPointer((*unsafe.Pointer)(unsafe.Pointer(&t.next)))
		if n != nil {
			atomic.StorePointer(&q.first, n)
			return
		}
	}
}

// empty reports whether the queue currently has no linked task. Best
// effort: a concurrent push may complete immediately after this
// returns true.
func (q *queue) empty() bool {
	return atomic.LoadPointer(&q.first) == nil
}
