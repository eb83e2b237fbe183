package reactor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"trpc.group/trpc-go/evcore/reactor"
)

// fakeDriver records Add/Del calls instead of touching a real kernel
// facility, so handleDirection's branching can be exercised without an
// epoll/kqueue backend.
type fakeDriver struct {
	adds, dels int
	lastFlags  reactor.ControlFlag
}

func (d *fakeDriver) Init() (reactor.Capability, error) { return 0, nil }
func (d *fakeDriver) Done() error                        { return nil }
func (d *fakeDriver) Add(ev *reactor.Event, flags reactor.ControlFlag) error {
	d.adds++
	d.lastFlags = flags
	ev.SetActive(true)
	return nil
}
func (d *fakeDriver) Del(ev *reactor.Event, flags reactor.ControlFlag) error {
	d.dels++
	d.lastFlags = flags
	ev.SetActive(false)
	return nil
}
func (d *fakeDriver) Enable(ev *reactor.Event, flags reactor.ControlFlag) error  { return nil }
func (d *fakeDriver) Disable(ev *reactor.Event, flags reactor.ControlFlag) error { return nil }
func (d *fakeDriver) AddConn(read, write *reactor.Event) error                  { return nil }
func (d *fakeDriver) DelConn(read, write *reactor.Event, flags reactor.ControlFlag) error {
	return nil
}
func (d *fakeDriver) Process(timeoutMillis int) (int, error) { return 0, nil }
func (d *fakeDriver) Notify() *reactor.Notify                 { return nil }

func TestHandleReadLevelRegistersOnce(t *testing.T) {
	drv := &fakeDriver{}
	ev := reactor.NewEvent()
	defer reactor.FreeEvent(ev)

	assert.NoError(t, reactor.HandleRead(drv, reactor.Level, ev, 0))
	assert.Equal(t, 1, drv.adds)
	assert.True(t, ev.Active())

	// Already active and not ready: stays registered, invariant 2.
	assert.NoError(t, reactor.HandleRead(drv, reactor.Level, ev, 0))
	assert.Equal(t, 1, drv.adds)
}

func TestHandleReadLevelUnregistersOnceReady(t *testing.T) {
	drv := &fakeDriver{}
	ev := reactor.NewEvent()
	defer reactor.FreeEvent(ev)

	assert.NoError(t, reactor.HandleRead(drv, reactor.Level, ev, 0))
	ev.SetReady(true)

	assert.NoError(t, reactor.HandleRead(drv, reactor.Level, ev, 0))
	assert.Equal(t, 1, drv.dels)
	assert.False(t, ev.Active())
}

func TestHandleReadClearRegistersOnceAndIgnoresReady(t *testing.T) {
	drv := &fakeDriver{}
	ev := reactor.NewEvent()
	defer reactor.FreeEvent(ev)

	assert.NoError(t, reactor.HandleRead(drv, reactor.Clear, ev, 0))
	assert.Equal(t, 1, drv.adds)

	ev.SetReady(true)
	assert.NoError(t, reactor.HandleRead(drv, reactor.Clear, ev, 0))
	assert.Equal(t, 0, drv.dels, "edge-triggered delivery must never del on ready, invariant 3")
}

// TestHandleReadClearIdempotentAcrossTenCalls is Scenario C: ten
// consecutive handle_read calls against a not-ready CLEAR Event, which
// becomes active after the first call, must produce exactly one Add
// and zero Dels in total, not just across the first two calls.
func TestHandleReadClearIdempotentAcrossTenCalls(t *testing.T) {
	drv := &fakeDriver{}
	ev := reactor.NewEvent()
	defer reactor.FreeEvent(ev)

	for i := 0; i < 10; i++ {
		ev.SetReady(false)
		assert.NoError(t, reactor.HandleRead(drv, reactor.Clear, ev, 0))
	}
	assert.Equal(t, 1, drv.adds, "edge-triggered delivery must register exactly once across repeated calls")
	assert.Equal(t, 0, drv.dels, "edge-triggered delivery must never del, invariant 3")
}

func TestHandleReadAIONoRegistration(t *testing.T) {
	drv := &fakeDriver{}
	ev := reactor.NewEvent()
	defer reactor.FreeEvent(ev)

	assert.NoError(t, reactor.HandleRead(drv, reactor.AIO, ev, 0))
	assert.Equal(t, 0, drv.adds)
	assert.Equal(t, 0, drv.dels)
}

func TestHandleLevelReadToggles(t *testing.T) {
	drv := &fakeDriver{}
	ev := reactor.NewEvent()
	defer reactor.FreeEvent(ev)

	assert.NoError(t, reactor.HandleLevelRead(drv, ev))
	assert.True(t, ev.Active())

	ev.SetReady(true)
	assert.NoError(t, reactor.HandleLevelRead(drv, ev))
	assert.False(t, ev.Active())
}

func TestHandleReadCloseEventForcesDelUnderLevel(t *testing.T) {
	drv := &fakeDriver{}
	ev := reactor.NewEvent()
	defer reactor.FreeEvent(ev)

	assert.NoError(t, reactor.HandleRead(drv, reactor.Level, ev, 0))
	assert.NoError(t, reactor.HandleRead(drv, reactor.Level, ev, reactor.CtlCloseEvent))
	assert.Equal(t, 1, drv.dels)
	assert.False(t, ev.Active())
}

func TestHandleWriteSetsDirection(t *testing.T) {
	drv := &fakeDriver{}
	ev := reactor.NewEvent()
	defer reactor.FreeEvent(ev)

	assert.NoError(t, reactor.HandleWrite(drv, reactor.Level, ev, 0))
	assert.Equal(t, reactor.Write, ev.Dir)
}
