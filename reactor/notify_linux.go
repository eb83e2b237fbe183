//go:build linux
// +build linux

package reactor

import (
	"encoding/binary"
	"os"

	"golang.org/x/sys/unix"
)

// eventfdNotify implements notifyHandler with a non-blocking Linux
// eventfd, the same primitive the teacher binds its own poller wakeup
// to (newPoller in poller_epoll.go).
type eventfdNotify struct {
	efd int
	buf [8]byte
}

func newNotifyHandler() (notifyHandler, error) {
	efd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		return nil, os.NewSyscallError("eventfd", err)
	}
	h := &eventfdNotify{efd: efd}
	binary.LittleEndian.PutUint64(h.buf[:], 1)
	return h, nil
}

func (e *eventfdNotify) signal() error {
	for {
		_, err := unix.Write(e.efd, e.buf[:])
		if err != unix.EINTR {
			if err != nil && err != unix.EAGAIN {
				return os.NewSyscallError("write", err)
			}
			return nil
		}
	}
}

func (e *eventfdNotify) drain() error {
	_, err := unix.Read(e.efd, e.buf[:])
	if err != nil && err != unix.EAGAIN {
		return os.NewSyscallError("read", err)
	}
	return nil
}

func (e *eventfdNotify) close() error {
	return os.NewSyscallError("close", unix.Close(e.efd))
}

func (e *eventfdNotify) fd() int {
	return e.efd
}
