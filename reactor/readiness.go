package reactor

// handleDirection implements handle_read/handle_write (spec §4.3): it
// consults cap and the event's current active/ready state and decides
// whether to register or unregister ev with drv, or to leave the
// registration untouched because the backend's semantics make it
// implicit (AIO, IOCP, a pure-edge rt-signal backend).
//
// Invariants enforced here, by construction:
//  1. add is never called while ev is Active; del is never called
//     while ev is not Active.
//  2. Under LEVEL, an event whose consumer observed readiness but has
//     not yet drained is unregistered, to avoid a wake-up storm; it is
//     re-registered once the consumer reports "not ready".
//  3. Under CLEAR, registration happens once and relies on edge
//     delivery; ready never triggers a del.
func handleDirection(drv Driver, ev *Event, cap Capability, flags ControlFlag) error {
	switch {
	case cap.Has(Clear):
		if !ev.Active() && !ev.Ready() {
			return drv.Add(ev, flags|CtlClear)
		}
		return nil
	case cap.Has(Level):
		if !ev.Active() && !ev.Ready() {
			return drv.Add(ev, flags|CtlLevel)
		}
		if ev.Active() && (ev.Ready() || flags&CtlCloseEvent != 0) {
			return drv.Del(ev, flags)
		}
		return nil
	default:
		// AIO / IOCP / EDGE-with-rtsig / epoll-ET-auto: registration
		// is implicit, nothing to do here.
		return nil
	}
}

// HandleRead is handle_read(ev, flags) from spec §4.3, applied to ev's
// read direction.
func HandleRead(drv Driver, cap Capability, ev *Event, flags ControlFlag) error {
	ev.Dir = Read
	return handleDirection(drv, ev, cap, flags)
}

// HandleWrite is the symmetric write variant of handle_read.
func HandleWrite(drv Driver, cap Capability, ev *Event, flags ControlFlag) error {
	ev.Dir = Write
	return handleDirection(drv, ev, cap, flags)
}

// HandleLevelRead is handle_level_read(ev): the LEVEL-only variant
// used when the caller already knows the backend is level-triggered
// and is toggling registration purely in response to ev's own
// reported readiness. It is handleDirection with the LEVEL branch
// taken unconditionally, matching the source's dedicated fast path.
func HandleLevelRead(drv Driver, ev *Event) error {
	if !ev.Active() && !ev.Ready() {
		return drv.Add(ev, CtlLevel)
	}
	if ev.Active() && ev.Ready() {
		return drv.Del(ev, 0)
	}
	return nil
}
