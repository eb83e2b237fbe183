// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

//go:build linux
// +build linux

package reactor

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
	"trpc.group/trpc-go/evcore/metrics"
)

const (
	epollReadFlags  = unix.EPOLLIN | unix.EPOLLRDHUP | unix.EPOLLHUP | unix.EPOLLERR | unix.EPOLLPRI
	epollWriteFlags = unix.EPOLLOUT | unix.EPOLLHUP | unix.EPOLLERR
	defaultEpollCap = 128
)

// epollDriver is the Linux Driver backend. It supports LEVEL by
// default and CLEAR (edge) mode when CtlClear is passed to Add, plus
// INSTANCE via a per-Event instance bit, flipped on every Add and
// carried in the low bit of the registered pointer, so a Control churn
// (Del immediately followed by Add, reusing the same Event) cannot
// resurrect a notification belonging to the old registration.
type epollDriver struct {
	fd     int
	events []epollEvent
	notify *Notify
}

// NewDriver returns the epoll-backed Driver for this platform.
func NewDriver() Driver {
	return &epollDriver{}
}

func (d *epollDriver) Init() (Capability, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return 0, errPlatform(Add, os.NewSyscallError("epoll_create1", err))
	}
	d.fd = fd
	d.events = make([]epollEvent, defaultEpollCap)

	n, err := NewNotify(nil)
	if err != nil {
		return 0, errPlatform(Add, err)
	}
	d.notify = n
	if err := d.Add(n.Event(), CtlLevel); err != nil {
		return 0, err
	}
	return Level | Oneshot | Clear | Instance | Greedy, nil
}

func (d *epollDriver) Done() error {
	if d.notify != nil {
		_ = d.notify.Close()
	}
	return errPlatform(Del, os.NewSyscallError("close", unix.Close(d.fd)))
}

func (d *epollDriver) Notify() *Notify { return d.notify }

func epollFlagsFor(ev *Event, flags ControlFlag) uint32 {
	var e uint32
	if ev.Dir == Write {
		e = epollWriteFlags
	} else {
		e = epollReadFlags
	}
	if flags&CtlOneshot != 0 {
		e |= unix.EPOLLONESHOT
	}
	if flags&CtlClear != 0 {
		e |= unix.EPOLLET
	}
	return e
}

func (d *epollDriver) ctl(op int, ev *Event, flags ControlFlag) error {
	evt := epollEvent{Events: epollFlagsFor(ev, flags)}
	*(*uintptr)(unsafe.Pointer(&evt.Data)) = taggedPointer(ev)
	_, _, errno := unix.RawSyscall6(unix.SYS_EPOLL_CTL,
		uintptr(d.fd), uintptr(op), uintptr(ev.FD), uintptr(unsafe.Pointer(&evt)), 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}

func (d *epollDriver) Add(ev *Event, flags ControlFlag) error {
	if ev.Active() {
		return nil
	}
	ev.set(FlagUseInstance, true)
	ev.SetInstance(!ev.Instance())
	if err := d.ctl(unix.EPOLL_CTL_ADD, ev, flags); err != nil {
		return errPlatform(Add, os.NewSyscallError("epoll_ctl add", err))
	}
	ev.SetActive(true)
	if flags&CtlOneshot != 0 {
		ev.SetOneshot(true)
	}
	return nil
}

func (d *epollDriver) Del(ev *Event, flags ControlFlag) error {
	if !ev.Active() {
		return nil
	}
	if err := d.ctl(unix.EPOLL_CTL_DEL, ev, flags); err != nil {
		return errPlatform(Del, os.NewSyscallError("epoll_ctl del", err))
	}
	ev.SetActive(false)
	return nil
}

func (d *epollDriver) Enable(ev *Event, flags ControlFlag) error {
	// Disable unregisters ev, so a Disabled Event is registered anew.
	if !ev.Active() {
		return d.Add(ev, flags)
	}
	if err := d.ctl(unix.EPOLL_CTL_MOD, ev, flags); err != nil {
		return errPlatform(Enable, os.NewSyscallError("epoll_ctl mod", err))
	}
	ev.SetActive(true)
	return nil
}

func (d *epollDriver) Disable(ev *Event, flags ControlFlag) error {
	return d.Del(ev, flags)
}

func (d *epollDriver) AddConn(read, write *Event) error {
	if err := d.Add(read, CtlLevel); err != nil {
		return err
	}
	return d.Add(write, CtlLevel)
}

func (d *epollDriver) DelConn(read, write *Event, flags ControlFlag) error {
	if err := d.Del(read, flags); err != nil {
		return err
	}
	return d.Del(write, flags)
}

func (d *epollDriver) Process(timeoutMillis int) (int, error) {
	n, err := epollWait(d.fd, d.events, timeoutMillis)
	if err != nil && err != unix.EINTR {
		return 0, errPlatform(Add, os.NewSyscallError("epoll_pwait", err))
	}
	metrics.Add(metrics.PollerWait, 1)
	if n <= 0 {
		return 0, nil
	}
	metrics.Add(metrics.PollerEvents, uint64(n))
	dispatched := 0
	for i := 0; i < n; i++ {
		if d.processEvent(d.events[i]) {
			dispatched++
		}
	}
	return dispatched, nil
}

// processEvent decodes one raw epoll_event's tagged pointer, drops it
// if it is stale (belongs to an Event generation the Del+Add churn
// already superseded), and otherwise dispatches it. Returns whether a
// Handler was invoked. Split out from Process so the stale-drop path
// is independently testable without a live epoll_wait round trip.
func (d *epollDriver) processEvent(e epollEvent) bool {
	tagged := *(*uintptr)(unsafe.Pointer(&e.Data))
	ev, returnedInstance := untaggedPointer(tagged)
	if ev == nil {
		return false
	}
	ev.SetReturnedInstance(returnedInstance)
	if ev.Stale() {
		metrics.Add(metrics.PollerStaleDropped, 1)
		return false
	}
	d.dispatch(ev, e.Events)
	return true
}

func (d *epollDriver) dispatch(ev *Event, mask uint32) {
	if ev.Oneshot() {
		ev.SetActive(false)
	}
	if mask&(unix.EPOLLHUP|unix.EPOLLRDHUP|unix.EPOLLERR) != 0 {
		ev.set(FlagEOF, true)
	}
	ev.SetReady(true)
	if ev.Handler != nil {
		ev.Handler(ev)
	}
}

func epollWait(epfd int, events []epollEvent, msec int) (int, error) {
	var r0 uintptr
	var err error
	if msec == 0 {
		r0, _, err = unix.RawSyscall6(unix.SYS_EPOLL_PWAIT,
			uintptr(epfd), uintptr(unsafe.Pointer(&events[0])), uintptr(len(events)), 0, 0, 0)
		metrics.Add(metrics.PollerNoWait, 1)
	} else {
		r0, _, err = unix.Syscall6(unix.SYS_EPOLL_PWAIT,
			uintptr(epfd), uintptr(unsafe.Pointer(&events[0])), uintptr(len(events)), uintptr(msec), 0, 0)
	}
	if err == unix.Errno(0) {
		err = nil
	}
	return int(r0), err
}
