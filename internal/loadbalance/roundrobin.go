package loadbalance

import (
	"sync/atomic"

	"trpc.group/trpc-go/evcore/reactor"
)

// RoundRobin is the name Register files this balancer under.
const RoundRobin = "RoundRobinLB"

func init() {
	Register(RoundRobin, func() Balancer { return &roundRobinBalancer{} })
}

type roundRobinBalancer struct {
	drivers  []reactor.Driver
	accepted uintptr
}

func (r *roundRobinBalancer) Name() string { return RoundRobin }

func (r *roundRobinBalancer) Register(drv reactor.Driver) {
	r.drivers = append(r.drivers, drv)
}

func (r *roundRobinBalancer) Pick() reactor.Driver {
	if len(r.drivers) == 0 {
		return nil
	}
	idx := int(atomic.AddUintptr(&r.accepted, 1)) % len(r.drivers)
	return r.drivers[idx]
}

func (r *roundRobinBalancer) Len() int {
	return len(r.drivers)
}

func (r *roundRobinBalancer) Iterate(f func(int, reactor.Driver) bool) {
	for i, drv := range r.drivers {
		if !f(i, drv) {
			break
		}
	}
}
