package reactor

import "unsafe"

// taggedPointer packs ev's address together with its current instance
// bit into the low bit of the pointer. Event is always heap-allocated
// through eventCache in blocks and is at least pointer-aligned, so the
// low bit is otherwise always zero; stealing it lets the kernel's own
// copy of the registration data carry the generation that was live at
// Add/Enable time, which is what a stale, already-delivered
// notification must be checked against (spec invariant 3). Used by
// both the epoll and kqueue backends, whose userdata fields are wide
// enough to carry a full pointer.
func taggedPointer(ev *Event) uintptr {
	p := uintptr(unsafe.Pointer(ev))
	if ev.Instance() {
		p |= 1
	}
	return p
}

func untaggedPointer(p uintptr) (*Event, bool) {
	instance := p&1 != 0
	ev := (*Event)(unsafe.Pointer(p &^ 1))
	return ev, instance
}
