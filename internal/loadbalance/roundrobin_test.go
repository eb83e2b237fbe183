package loadbalance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"trpc.group/trpc-go/evcore/internal/loadbalance"
	"trpc.group/trpc-go/evcore/reactor"
)

type stubDriver struct{ id int }

func (d *stubDriver) Init() (reactor.Capability, error) { return 0, nil }
func (d *stubDriver) Done() error                        { return nil }
func (d *stubDriver) Add(ev *reactor.Event, flags reactor.ControlFlag) error    { return nil }
func (d *stubDriver) Del(ev *reactor.Event, flags reactor.ControlFlag) error    { return nil }
func (d *stubDriver) Enable(ev *reactor.Event, flags reactor.ControlFlag) error { return nil }
func (d *stubDriver) Disable(ev *reactor.Event, flags reactor.ControlFlag) error {
	return nil
}
func (d *stubDriver) AddConn(read, write *reactor.Event) error { return nil }
func (d *stubDriver) DelConn(read, write *reactor.Event, flags reactor.ControlFlag) error {
	return nil
}
func (d *stubDriver) Process(timeoutMillis int) (int, error) { return 0, nil }
func (d *stubDriver) Notify() *reactor.Notify                 { return nil }

func TestRoundRobinPickCycles(t *testing.T) {
	builder := loadbalance.Get(loadbalance.RoundRobin)
	require.NotNil(t, builder)
	lb := builder()

	drivers := []*stubDriver{{id: 0}, {id: 1}, {id: 2}}
	for _, d := range drivers {
		lb.Register(d)
	}
	require.Equal(t, 3, lb.Len())

	picked := make(map[reactor.Driver]int)
	for i := 0; i < 9; i++ {
		picked[lb.Pick()]++
	}
	for _, d := range drivers {
		assert.Equal(t, 3, picked[d])
	}
}

func TestRoundRobinIterateStopsEarly(t *testing.T) {
	builder := loadbalance.Get(loadbalance.RoundRobin)
	lb := builder()
	lb.Register(&stubDriver{id: 0})
	lb.Register(&stubDriver{id: 1})
	lb.Register(&stubDriver{id: 2})

	var visited int
	lb.Iterate(func(i int, drv reactor.Driver) bool {
		visited++
		return i < 0 // stop immediately after the first
	})
	assert.Equal(t, 1, visited)
}
