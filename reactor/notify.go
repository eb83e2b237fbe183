package reactor

import "go.uber.org/atomic"

// notifyHandler abstracts the platform-specific one-shot edge a Notify
// binds to: an eventfd on Linux, a self-pipe elsewhere. See
// notify_linux.go / notify_other.go.
type notifyHandler interface {
	// signal wakes the bound reactor. Must be safe to call from any
	// thread, lock-free, and idempotent between re-arms.
	signal() error
	// drain re-arms the channel after the reactor has woken, consuming
	// whatever byte(s) the kernel primitive used to wake it.
	drain() error
	// close releases the underlying descriptor(s).
	close() error
	// fd is the descriptor a Driver registers for readability, the
	// "pseudo-connection the reactor can poll" of spec §4.4.
	fd() int
}

// Notify is the cross-thread wakeup primitive of spec §4.4: create,
// signal, handle. A Notify is bound to exactly one Handler, invoked by
// the reactor thread once per wake after the channel is re-armed.
//
// signal coalesces: multiple calls between two drains collapse into at
// most one underlying kernel write, via the armed/disarmed
// CompareAndSwap pattern the teacher's poller uses for its own wakeup
// eventfd (ep.notified in poller_epoll.go).
type Notify struct {
	handler notifyHandler
	armed   atomic.Bool
	// OnWake is invoked by the reactor after drain, on the reactor
	// thread. It is expected to drain whatever cross-thread queue
	// this Notify guards (the offload completion queue).
	OnWake func()

	event *Event
}

// NewNotify binds a freshly created platform notifyHandler to onWake.
func NewNotify(onWake func()) (*Notify, error) {
	h, err := newNotifyHandler()
	if err != nil {
		return nil, err
	}
	n := &Notify{handler: h, OnWake: onWake}
	n.armed.Store(true)
	return n, nil
}

// Signal wakes the reactor at most once per pending batch. Safe to
// call from any goroutine, including concurrently with itself; only
// the goroutine that wins the CompareAndSwap issues the underlying
// kernel write, establishing the happens-before edge from its prior
// stores to the reactor's post-wake reads (spec §4.4).
func (n *Notify) Signal() error {
	if n.armed.CompareAndSwap(true, false) {
		return n.handler.signal()
	}
	return nil
}

// Handle is invoked by the reactor Driver when this Notify's fd
// becomes readable. It re-arms the channel and runs OnWake.
func (n *Notify) Handle() error {
	if err := n.handler.drain(); err != nil {
		return err
	}
	n.armed.Store(true)
	if n.OnWake != nil {
		n.OnWake()
	}
	return nil
}

// Close releases the underlying descriptor(s). No further Signal or
// Handle calls may be made afterward.
func (n *Notify) Close() error {
	return n.handler.close()
}

// FD returns the descriptor a Driver should register for readability
// to deliver wakeups from this Notify. It is the "pseudo-connection"
// returned by the source's create operation (spec §4.4).
func (n *Notify) FD() int {
	return n.handler.fd()
}

// Event returns the Event a Driver registers for this Notify's FD,
// with Handler wired to Handle. Built lazily and cached; callers
// register it once at reactor startup the same way the teacher
// registers its own wakeup eventfd in newPoller.
func (n *Notify) Event() *Event {
	if n.event == nil {
		n.event = NewEvent()
		n.event.FD = n.FD()
		n.event.Dir = Read
		n.event.Handler = func(ev *Event) {
			_ = n.Handle()
		}
	}
	return n.event
}
