package offload

import (
	"trpc.group/trpc-go/evcore/log"
	"trpc.group/trpc-go/evcore/reactor"
)

// Handler is the work a Task runs on a worker thread. It receives the
// Task's opaque ctx and a per-worker log carrying a distinct thread
// id, and must encode any failure through ctx rather than panicking
// across the worker boundary (spec §4.9). A Handler has no access to
// the Task's completion Event, so ctx is the only channel through
// which the completion handler learns of a failure.
type Handler func(ctx interface{}, log log.Logger)

// Task is one unit of offloaded work. Allocated by Pool.Post, it
// carries a monotonic id, the Handler to run, the opaque ctx passed
// to it, and the completion Event whose handler runs on the reactor
// once the Task finishes. next links it on whichever queue currently
// holds it (intake or completion), matching Event's own single-next
// linkage discipline.
type Task struct {
	ID      uint64
	Handler Handler
	Ctx     interface{}
	Event   *reactor.Event

	next *Task
}
