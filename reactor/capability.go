package reactor

import "strings"

// Capability is a bitset describing which readiness/completion
// semantics the bound Driver provides. Every helper in readiness.go
// branches on these bits, so a backend writes them once at Init and
// all event-management logic above it is capability-driven rather
// than backend-typed.
type Capability uint32

// Capability bits. See spec §4.1.
const (
	// Level means the filter re-arms automatically; readiness is
	// reported again every Process cycle until drained (select, poll,
	// epoll in level-triggered mode).
	Level Capability = 1 << iota
	// Oneshot means the filter is consumed on notification; no
	// explicit Del is needed to stop further delivery.
	Oneshot
	// Clear means edge-triggered: only transitions are reported, with
	// the initial level reported exactly once (kqueue, epoll-ET).
	Clear
	// Kqueue means the backend reports eof, errno and an available
	// byte count per event.
	Kqueue
	// Lowat means the backend supports low-water-mark registration.
	Lowat
	// Instance means the backend carries a generation bit that can be
	// used to filter stale notifications delivered after a
	// registration was cancelled and reused.
	Instance
	// Greedy means the caller must drain to EAGAIN per notification
	// (epoll, real-time signals).
	Greedy
	// Edge means transitions only, with no initial level reported
	// (historical backend behavior, distinct from Clear).
	Edge
	// RTSig means there is no per-event register/unregister;
	// registration is global to the process.
	RTSig
	// AIO means completion semantics with no readiness model at all.
	AIO
	// IOCP means the handle is registered once for the lifetime of
	// the descriptor (completion port style).
	IOCP
)

var capabilityNames = [...]struct {
	bit  Capability
	name string
}{
	{Level, "level"},
	{Oneshot, "oneshot"},
	{Clear, "clear"},
	{Kqueue, "kqueue"},
	{Lowat, "lowat"},
	{Instance, "instance"},
	{Greedy, "greedy"},
	{Edge, "edge"},
	{RTSig, "rtsig"},
	{AIO, "aio"},
	{IOCP, "iocp"},
}

// Has reports whether c contains every bit in want.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}

// String implements fmt.Stringer, mostly for diagnostics and tests.
func (c Capability) String() string {
	if c == 0 {
		return "none"
	}
	var names []string
	for _, e := range capabilityNames {
		if c.Has(e.bit) {
			names = append(names, e.name)
		}
	}
	return strings.Join(names, "|")
}
