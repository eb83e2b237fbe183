// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

package reactor

import (
	"fmt"

	"github.com/pkg/errors"
	"trpc.group/trpc-go/evcore/everr"
)

// Op identifies the registration change a caller asks a Driver to
// perform. It names the six registration operations of Driver (Add,
// Del, Enable, Disable, AddConn, DelConn).
type Op int

// Operations.
const (
	Add Op = iota
	Del
	Enable
	Disable
	AddConn
	DelConn
)

// String implements fmt.Stringer.
func (o Op) String() string {
	switch o {
	case Add:
		return "Add"
	case Del:
		return "Del"
	case Enable:
		return "Enable"
	case Disable:
		return "Disable"
	case AddConn:
		return "AddConn"
	case DelConn:
		return "DelConn"
	default:
		return fmt.Sprintf("Op(%d)", o)
	}
}

// Driver is the nine-operation plug-in contract a backend (epoll,
// kqueue, an rt-signal queue, an IOCP handle, an AIO ring) implements
// to participate in the reactor. Exactly one Driver backs a process
// (selected at build time via the platform-specific file, see §9); a
// reactor loop holds one Driver instance for its lifetime.
type Driver interface {
	// Init prepares the Driver for use and returns its Capability set.
	Init() (Capability, error)
	// Done releases every resource the Driver holds. No further calls
	// are made to the Driver afterward.
	Done() error

	// Add registers ev for notification. ev.FD and ev.Dir must be set.
	Add(ev *Event, flags ControlFlag) error
	// Del unregisters ev. It is a no-op if ev is not Active.
	Del(ev *Event, flags ControlFlag) error
	// Enable re-arms a Disabled registration without losing its
	// instance/generation bookkeeping.
	Enable(ev *Event, flags ControlFlag) error
	// Disable suppresses further notification for ev. The kqueue
	// backend keeps the registration and disables it in place; the
	// epoll backend unregisters ev, the same as Del. Backends lacking
	// a cheap disable (RTSig, AIO) return errors wrapping everr.Backend
	// and the caller must Del instead.
	Disable(ev *Event, flags ControlFlag) error

	// AddConn registers a whole connection (its FD, read and write
	// Event in one call) where the backend can do so more cheaply
	// than two Add calls (e.g. a single epoll_ctl with both flags).
	// May be left unimplemented (returning everr.Backend) when the
	// backend has no efficiency gain over two Add calls.
	AddConn(read, write *Event) error
	// DelConn unregisters both directions of a connection in one call.
	DelConn(read, write *Event, flags ControlFlag) error

	// Process blocks up to timeoutMillis (or indefinitely if negative,
	// or returns immediately if zero) waiting for notifications, then
	// dispatches each ready Event's Handler before returning. It
	// returns the number of events dispatched.
	Process(timeoutMillis int) (int, error)

	// Notify returns the cross-thread wakeup channel bound to this
	// Driver (spec §4.4), used by the offload subsystem to interrupt
	// a blocked Process call.
	Notify() *Notify
}

// ControlFlag carries per-registration modifiers a Driver may honor if
// its Capability advertises support; an unsupported flag is ignored
// rather than rejected, matching the teacher's permissive Control.
type ControlFlag uint32

// Control flags. See spec §4.2.
const (
	// CtlLevel requests level-triggered delivery.
	CtlLevel ControlFlag = 1 << iota
	// CtlOneshot requests the registration be consumed on first fire.
	CtlOneshot
	// CtlClear requests edge-triggered delivery.
	CtlClear
	// CtlCloseEvent marks the descriptor as about to be closed: under
	// Level, HandleRead/HandleWrite unregister an Active Event when it
	// is set. The epoll and kqueue backends ignore it.
	CtlCloseEvent
	// CtlDisableEvent asks the backend to register in a pre-disabled state.
	CtlDisableEvent
	// CtlLowatEvent sets a low-water-mark threshold (Capability Lowat only).
	CtlLowatEvent
	// CtlVnodeEvent asks a kqueue backend to also watch EVFILT_VNODE.
	CtlVnodeEvent
)

// errBackendUnsupported builds a Backend-kind error naming the
// operation and capability that was missing.
func errBackendUnsupported(op Op, cap Capability) error {
	return everr.Wrapf(everr.Backend, "%s requires a capability not in %s", op, cap)
}

// errPlatform wraps a raw platform/syscall error.
func errPlatform(op Op, err error) error {
	if err == nil {
		return nil
	}
	return everr.Wrap(everr.PlatformError, errors.Wrapf(err, "%s", op).Error())
}
