package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"trpc.group/trpc-go/evcore/config"
	"trpc.group/trpc-go/evcore/reactor"
)

// noopDriver is a minimal reactor.Driver fake that accepts every
// registration without touching any kernel facility, enough to drive
// StartAll's wiring logic under test.
type noopDriver struct {
	adds int
}

func (d *noopDriver) Init() (reactor.Capability, error) { return reactor.Level, nil }
func (d *noopDriver) Done() error                        { return nil }
func (d *noopDriver) Add(ev *reactor.Event, flags reactor.ControlFlag) error {
	d.adds++
	return nil
}
func (d *noopDriver) Del(ev *reactor.Event, flags reactor.ControlFlag) error { return nil }
func (d *noopDriver) Enable(ev *reactor.Event, flags reactor.ControlFlag) error  { return nil }
func (d *noopDriver) Disable(ev *reactor.Event, flags reactor.ControlFlag) error { return nil }
func (d *noopDriver) AddConn(read, write *reactor.Event) error                  { return nil }
func (d *noopDriver) DelConn(read, write *reactor.Event, flags reactor.ControlFlag) error {
	return nil
}
func (d *noopDriver) Process(timeoutMillis int) (int, error) { return 0, nil }
func (d *noopDriver) Notify() *reactor.Notify                 { return nil }

func TestStartAllNoopForMaster(t *testing.T) {
	drv := &noopDriver{}
	pools, err := config.StartAll(config.Master, drv)
	require.NoError(t, err)
	assert.Nil(t, pools)
	assert.Equal(t, 0, drv.adds)
}

func TestStartAllInstantiatesDeclaredPools(t *testing.T) {
	config.Declare(config.Directive{Name: "start-all-test-pool", Threads: 2, MaxQueue: 32})

	drv := &noopDriver{}
	pools, err := config.StartAll(config.Worker, drv)
	require.NoError(t, err)
	require.Contains(t, pools, "start-all-test-pool")
	require.Contains(t, pools, "default")

	p := pools["start-all-test-pool"]
	assert.Contains(t, p.String(), "start-all-test-pool")
	assert.Greater(t, drv.adds, 0, "StartAll must register each pool's Notify with the driver")

	for _, p := range pools {
		require.NoError(t, p.Close())
	}
}
