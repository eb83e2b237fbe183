// Package loadbalance spreads work across more than one reactor loop
// running in the same worker process. Nothing in package reactor
// requires more than one Driver instance, but a worker that runs
// several reactor goroutines (one per CPU, say) needs a way to assign
// an incoming connection's registration to one of them; this package
// is that assignment layer, kept separate from reactor itself the same
// way the teacher keeps its own poller selection out of the Poller
// interface.
package loadbalance

import (
	"reflect"
	"sync"

	"trpc.group/trpc-go/evcore/reactor"
)

var (
	builders    = make(map[string]Builder)
	buildersMux sync.RWMutex
)

// Builder constructs a fresh Balancer.
type Builder func() Balancer

// Balancer picks one reactor.Driver out of a registered set to host a
// new registration.
type Balancer interface {
	// Name returns the balancer's registered name.
	Name() string
	// Register adds drv to the set this Balancer picks from.
	Register(drv reactor.Driver)
	// Pick returns one of the registered Drivers.
	Pick() reactor.Driver
	// Iterate invokes f for every registered Driver in registration
	// order, stopping early if f returns false.
	Iterate(f func(int, reactor.Driver) bool)
	// Len returns the number of registered Drivers.
	Len() int
}

// Get returns the Builder registered under name, or nil if none was.
func Get(name string) Builder {
	buildersMux.RLock()
	b := builders[name]
	buildersMux.RUnlock()
	return b
}

// Register registers builder under name. Panics on a nil builder or
// empty name, matching the teacher's fail-fast registration contract
// for a programming error that can only happen at init time.
func Register(name string, builder Builder) {
	v := reflect.ValueOf(builder)
	if builder == nil || (v.Kind() == reflect.Ptr && v.IsNil()) {
		panic("loadbalance: register nil balancer builder")
	}
	if name == "" {
		panic("loadbalance: register empty balancer name")
	}
	buildersMux.Lock()
	builders[name] = builder
	buildersMux.Unlock()
}
