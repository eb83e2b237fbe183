//go:build linux
// +build linux

package reactor

// epollEvent mirrors the kernel's struct epoll_event but widens the
// union field to 8 bytes so it can carry an *Event pointer directly,
// the same layout trick the teacher's internal/poller/event package
// uses instead of golang.org/x/sys/unix.EpollEvent (whose Fd field is
// too narrow to hold a pointer on 64-bit platforms).
type epollEvent struct {
	Events uint32
	_      uint32
	Data   [8]byte
}
