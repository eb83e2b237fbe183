// Tencent is pleased to support the open source community by making tnet available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tnet source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License can be found in the LICENSE file.

//go:build freebsd || dragonfly || darwin
// +build freebsd dragonfly darwin

package reactor

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
	"trpc.group/trpc-go/evcore/metrics"
)

const defaultKeventCap = 128

// kqueueDriver is the BSD/Darwin Driver backend. It advertises CLEAR,
// KQUEUE (eof/errno/available reported per event), INSTANCE and
// LOWAT, matching the teacher's kqueue poller.
type kqueueDriver struct {
	fd     int
	events []unix.Kevent_t
	notify *Notify
}

// NewDriver returns the kqueue-backed Driver for this platform.
func NewDriver() Driver {
	return &kqueueDriver{}
}

func (d *kqueueDriver) Init() (Capability, error) {
	fd, err := unix.Kqueue()
	if err != nil {
		return 0, errPlatform(Add, os.NewSyscallError("kqueue", err))
	}
	if _, err := unix.FcntlInt(uintptr(fd), unix.F_SETFD, unix.FD_CLOEXEC); err != nil {
		return 0, errPlatform(Add, err)
	}
	d.fd = fd
	d.events = make([]unix.Kevent_t, defaultKeventCap)

	n, err := NewNotify(nil)
	if err != nil {
		return 0, errPlatform(Add, err)
	}
	d.notify = n
	if err := d.Add(n.Event(), CtlLevel); err != nil {
		return 0, err
	}
	return Clear | Kqueue | Instance | Lowat, nil
}

func (d *kqueueDriver) Done() error {
	if d.notify != nil {
		_ = d.notify.Close()
	}
	return errPlatform(Del, os.NewSyscallError("close", unix.Close(d.fd)))
}

func (d *kqueueDriver) Notify() *Notify { return d.notify }

func kqFilter(ev *Event) int16 {
	if ev.Dir == Write {
		return unix.EVFILT_WRITE
	}
	return unix.EVFILT_READ
}

func (d *kqueueDriver) event(ev *Event, kqFlags uint16) unix.Kevent_t {
	ev.set(FlagUseInstance, true)
	ev.SetInstance(!ev.Instance())
	evt := unix.Kevent_t{
		Ident:  uint64(ev.FD),
		Filter: kqFilter(ev),
		Flags:  kqFlags,
	}
	*(*uintptr)(unsafe.Pointer(&evt.Udata)) = taggedPointer(ev)
	return evt
}

func (d *kqueueDriver) submit(evs ...unix.Kevent_t) error {
	_, err := unix.Kevent(d.fd, evs, nil, nil)
	return err
}

func (d *kqueueDriver) Add(ev *Event, flags ControlFlag) error {
	if ev.Active() {
		return nil
	}
	kqFlags := uint16(unix.EV_ADD | unix.EV_ENABLE)
	if flags&CtlClear != 0 {
		kqFlags |= unix.EV_CLEAR
	}
	if flags&CtlOneshot != 0 {
		kqFlags |= unix.EV_ONESHOT
	}
	if err := d.submit(d.event(ev, kqFlags)); err != nil {
		return errPlatform(Add, os.NewSyscallError("kevent add", err))
	}
	ev.SetActive(true)
	if flags&CtlOneshot != 0 {
		ev.SetOneshot(true)
	}
	return nil
}

func (d *kqueueDriver) Del(ev *Event, flags ControlFlag) error {
	if !ev.Active() {
		return nil
	}
	evt := unix.Kevent_t{Ident: uint64(ev.FD), Filter: kqFilter(ev), Flags: unix.EV_DELETE}
	if err := d.submit(evt); err != nil {
		return errPlatform(Del, os.NewSyscallError("kevent del", err))
	}
	ev.SetActive(false)
	return nil
}

func (d *kqueueDriver) Enable(ev *Event, flags ControlFlag) error {
	if err := d.submit(d.event(ev, unix.EV_ADD|unix.EV_ENABLE)); err != nil {
		return errPlatform(Enable, os.NewSyscallError("kevent enable", err))
	}
	ev.SetActive(true)
	return nil
}

func (d *kqueueDriver) Disable(ev *Event, flags ControlFlag) error {
	evt := unix.Kevent_t{Ident: uint64(ev.FD), Filter: kqFilter(ev), Flags: unix.EV_DISABLE}
	if err := d.submit(evt); err != nil {
		return errPlatform(Disable, os.NewSyscallError("kevent disable", err))
	}
	return nil
}

func (d *kqueueDriver) AddConn(read, write *Event) error {
	rEvt := d.event(read, unix.EV_ADD|unix.EV_ENABLE)
	wEvt := d.event(write, unix.EV_ADD|unix.EV_ENABLE)
	if err := d.submit(rEvt, wEvt); err != nil {
		return errPlatform(AddConn, os.NewSyscallError("kevent add_conn", err))
	}
	read.SetActive(true)
	write.SetActive(true)
	return nil
}

func (d *kqueueDriver) DelConn(read, write *Event, flags ControlFlag) error {
	rEvt := unix.Kevent_t{Ident: uint64(read.FD), Filter: unix.EVFILT_READ, Flags: unix.EV_DELETE}
	wEvt := unix.Kevent_t{Ident: uint64(write.FD), Filter: unix.EVFILT_WRITE, Flags: unix.EV_DELETE}
	if err := d.submit(rEvt, wEvt); err != nil {
		return errPlatform(DelConn, os.NewSyscallError("kevent del_conn", err))
	}
	read.SetActive(false)
	write.SetActive(false)
	return nil
}

func (d *kqueueDriver) Process(timeoutMillis int) (int, error) {
	var ts *unix.Timespec
	if timeoutMillis >= 0 {
		t := unix.NsecToTimespec(int64(timeoutMillis) * int64(1e6))
		ts = &t
	}
	n, err := unix.Kevent(d.fd, nil, d.events, ts)
	if err != nil && err != unix.EINTR {
		return 0, errPlatform(Add, os.NewSyscallError("kevent", err))
	}
	metrics.Add(metrics.PollerWait, 1)
	if n <= 0 {
		return 0, nil
	}
	metrics.Add(metrics.PollerEvents, uint64(n))
	dispatched := 0
	for i := 0; i < n; i++ {
		e := d.events[i]
		tagged := *(*uintptr)(unsafe.Pointer(&e.Udata))
		ev, returnedInstance := untaggedPointer(tagged)
		if ev == nil {
			continue
		}
		ev.SetReturnedInstance(returnedInstance)
		if ev.Stale() {
			metrics.Add(metrics.PollerStaleDropped, 1)
			continue
		}
		ev.Available = int(e.Data)
		d.dispatch(ev, e.Flags)
		dispatched++
	}
	return dispatched, nil
}

func (d *kqueueDriver) dispatch(ev *Event, kqFlags uint16) {
	if ev.Oneshot() {
		ev.SetActive(false)
	}
	if kqFlags&unix.EV_EOF != 0 {
		ev.set(FlagPendingEOF, true)
	}
	if kqFlags&unix.EV_ERROR != 0 {
		ev.set(FlagError, true)
	}
	ev.SetReady(true)
	if ev.Handler != nil {
		ev.Handler(ev)
	}
}
