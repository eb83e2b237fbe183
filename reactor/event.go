// Package reactor provides the event abstraction and capability-driven
// readiness helpers that let a single-threaded event loop register,
// dispatch and retire file-descriptor readiness and asynchronous I/O
// completion uniformly across level-triggered, edge-triggered and
// completion-port style kernel notification mechanisms.
package reactor

import (
	"sync"

	"trpc.group/trpc-go/evcore/log"
)

// notRegistered is the sentinel Index value meaning "this Event is not
// currently held by any Driver".
const notRegistered int32 = -0x2f2f2f30 // 0xd0d0d0d0 as a signed int32

// Flag is a bit in Event's flag vector. All flags default to unset and
// are owned by exactly one goroutine at a time (see spec §5): the
// submitter before registration, the Driver while active, the worker
// pool while a Task tied to the Event is in flight, and the reactor
// once a completion has been drained. No flag requires atomic
// manipulation under that discipline.
type Flag uint32

// Flag bits. See spec §3.
const (
	FlagOneshot Flag = 1 << iota
	FlagWrite
	FlagUseInstance
	FlagInstance
	FlagReturnedInstance
	FlagActive
	FlagDisabled
	FlagPosted
	FlagReady
	FlagComplete
	FlagEOF
	FlagError
	FlagTimedOut
	FlagTimerSet
	FlagDelayed
	FlagReadDiscarded
	FlagUnexpectedEOF
	FlagAccept
	FlagDeferredAccept
	FlagOverflow
	// FlagPendingEOF unifies the source's aio_eof/kq_eof duplication
	// (spec §9 open question) into a single pending-eof bit.
	FlagPendingEOF
	// FlagKQVnode is kqueue-specific: EVFILT_VNODE fired alongside a
	// read/write filter.
	FlagKQVnode
	// FlagAcceptContextUpdated is IOCP-specific: AcceptEx's context
	// has been applied to the accepted socket.
	FlagAcceptContextUpdated
)

// Direction is the I/O direction an Event monitors.
type Direction uint8

// Directions.
const (
	Read Direction = iota
	Write
)

// Handler is invoked by the Driver when an Event fires. It runs
// synchronously on the reactor thread; it must not block.
type Handler func(ev *Event)

// Event represents one direction (read or write) on one descriptor, or
// one asynchronous operation. It is owned by its containing connection
// or task: created when the owner is created, Reset on reuse, and
// never copied while Active.
type Event struct {
	mu sync.Mutex

	// Data is an opaque back-reference to the owning connection/task.
	Data interface{}
	// Handler is invoked when the event fires.
	Handler Handler
	// Log is this event's diagnostic sink; defaults to log.Default.
	Log log.Logger

	// FD is the file descriptor this Event monitors. Unused for pure
	// AIO/IOCP completion events.
	FD int
	// Dir is the direction this Event monitors.
	Dir Direction

	// Available is the number of bytes known readable/writable, as
	// reported by backends that supply it (Capability Kqueue); on
	// backends that only supply a boolean, it is 0 or 1.
	Available int

	// index is the reactor-private registration slot. notRegistered
	// means the Event is not currently held by any Driver.
	index int32

	// slot is this Event's fixed position in the process-wide cache,
	// assigned once at allocation and never touched by Reset.
	slot int32

	// next chains this Event on the timer/posted/queue/free linkage
	// list it currently belongs to (mutually exclusive uses).
	next *Event

	// Timer-wheel linkage. The wheel itself is an external
	// collaborator (out of scope, spec §1); evcore only carries the
	// bookkeeping fields it would read and write.
	timerKey    int64 // absolute deadline, milliseconds
	timerLeft   *Event
	timerRight  *Event
	timerParent *Event
	timerColor  uint8

	flags Flag
}

// NewEvent allocates an Event from the process-wide free list.
func NewEvent() *Event {
	return alloc()
}

// FreeEvent returns ev to the free list. The caller must guarantee ev
// is not Active and has no Task completion pending.
func FreeEvent(ev *Event) {
	markFree(ev)
}

// Reset clears every flag and handler so the Event can be reused by a
// new owner. It must not be called while Active.
func (ev *Event) Reset() {
	ev.Data = nil
	ev.Handler = nil
	ev.Log = nil
	ev.FD = 0
	ev.Dir = Read
	ev.Available = 0
	ev.index = notRegistered
	ev.next = nil
	ev.timerKey = 0
	ev.timerLeft, ev.timerRight, ev.timerParent = nil, nil, nil
	ev.timerColor = 0
	ev.flags = 0
}

func (ev *Event) logger() log.Logger {
	if ev.Log != nil {
		return ev.Log
	}
	return log.Default
}

// Has reports whether every bit in want is set.
func (ev *Event) Has(want Flag) bool {
	return ev.flags&want == want
}

// set sets or clears every bit in f.
func (ev *Event) set(f Flag, v bool) {
	if v {
		ev.flags |= f
	} else {
		ev.flags &^= f
	}
}

// Active reports whether the Event is currently registered with a Driver.
func (ev *Event) Active() bool { return ev.Has(FlagActive) }

// SetActive sets or clears the Active flag. Owned by whoever currently
// holds the Event per spec §5: the Driver while registered, the caller
// otherwise.
func (ev *Event) SetActive(v bool) { ev.set(FlagActive, v) }

// Ready reports whether at least one byte of I/O is known possible
// without blocking.
func (ev *Event) Ready() bool { return ev.Has(FlagReady) }

// SetReady sets or clears Ready. Consumers must clear it once they
// observe EAGAIN.
func (ev *Event) SetReady(v bool) { ev.set(FlagReady, v) }

// Oneshot reports whether this registration consumes itself at fire time.
func (ev *Event) Oneshot() bool { return ev.Has(FlagOneshot) }

// SetOneshot sets or clears Oneshot.
func (ev *Event) SetOneshot(v bool) { ev.set(FlagOneshot, v) }

// Complete reports whether an offloaded Task tied to this Event has
// finished and been drained on the reactor thread.
func (ev *Event) Complete() bool { return ev.Has(FlagComplete) }

// SetComplete sets or clears Complete.
func (ev *Event) SetComplete(v bool) { ev.set(FlagComplete, v) }

// Posted reports whether the Event is currently linked on a posted
// (deferred-invocation) queue. Equivalent to list membership (spec
// invariant 6); evcore has no posted queue of its own, so the flag is
// kept in sync by whoever owns that queue, through SetPosted.
func (ev *Event) Posted() bool { return ev.Has(FlagPosted) }

// SetPosted sets or clears Posted.
func (ev *Event) SetPosted(v bool) { ev.set(FlagPosted, v) }

// TimerSet reports whether the Event is currently linked into the
// timer wheel's tree. Equivalent to tree membership (spec invariant 5).
func (ev *Event) TimerSet() bool { return ev.Has(FlagTimerSet) }

// SetTimerSet sets or clears TimerSet.
func (ev *Event) SetTimerSet(v bool) { ev.set(FlagTimerSet, v) }

// Instance returns the instance/generation bit recorded at
// registration time, used by Instance-capable backends to filter
// stale notifications (spec invariant 3).
func (ev *Event) Instance() bool { return ev.Has(FlagInstance) }

// SetInstance sets or clears the instance bit.
func (ev *Event) SetInstance(v bool) { ev.set(FlagInstance, v) }

// ReturnedInstance returns the instance bit echoed back by the
// backend on the most recently dispatched notification.
func (ev *Event) ReturnedInstance() bool { return ev.Has(FlagReturnedInstance) }

// SetReturnedInstance sets or clears the returned-instance bit.
func (ev *Event) SetReturnedInstance(v bool) { ev.set(FlagReturnedInstance, v) }

// Stale reports whether the most recently recorded ReturnedInstance
// disagrees with Instance — i.e. whether this notification must be
// dropped without invoking Handler (spec invariant 3).
func (ev *Event) Stale() bool {
	return ev.Has(FlagUseInstance) && ev.Instance() != ev.ReturnedInstance()
}

// Lock/Unlock let callers that mutate Event.Data or handler pointers
// across goroutines (e.g. a connection swapping its request handler
// while the reactor may be dispatching) do so safely; the hot path
// (flags, Active/Ready transitions) is single-owner per spec §5 and
// does not take this lock.
func (ev *Event) Lock()   { ev.mu.Lock() }
func (ev *Event) Unlock() { ev.mu.Unlock() }
