//go:build !linux
// +build !linux

package reactor

import (
	"os"

	"golang.org/x/sys/unix"
)

// selfPipeNotify implements notifyHandler with the classic self-pipe
// trick, for platforms without eventfd (kqueue/BSD/Darwin).
type selfPipeNotify struct {
	r, w int
}

func newNotifyHandler() (notifyHandler, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return nil, os.NewSyscallError("pipe", err)
	}
	for _, fd := range fds {
		unix.CloseOnExec(fd)
		if err := unix.SetNonblock(fd, true); err != nil {
			_ = unix.Close(fds[0])
			_ = unix.Close(fds[1])
			return nil, os.NewSyscallError("fcntl", err)
		}
	}
	return &selfPipeNotify{r: fds[0], w: fds[1]}, nil
}

func (s *selfPipeNotify) signal() error {
	var b [1]byte
	for {
		_, err := unix.Write(s.w, b[:])
		if err != unix.EINTR {
			if err != nil && err != unix.EAGAIN {
				return os.NewSyscallError("write", err)
			}
			return nil
		}
	}
}

func (s *selfPipeNotify) drain() error {
	var b [64]byte
	for {
		n, err := unix.Read(s.r, b[:])
		if err != nil {
			if err == unix.EAGAIN {
				return nil
			}
			if err == unix.EINTR {
				continue
			}
			return os.NewSyscallError("read", err)
		}
		if n < len(b) {
			return nil
		}
	}
}

func (s *selfPipeNotify) close() error {
	if err := unix.Close(s.w); err != nil {
		return os.NewSyscallError("close", err)
	}
	return os.NewSyscallError("close", unix.Close(s.r))
}

func (s *selfPipeNotify) fd() int {
	return s.r
}
