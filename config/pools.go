package config

import (
	"trpc.group/trpc-go/evcore/internal/loadbalance"
	"trpc.group/trpc-go/evcore/offload"
	"trpc.group/trpc-go/evcore/reactor"
)

// StartAll instantiates and starts every pool declared on the default
// Registry, for a worker/single-process role (spec §4.8 Worker
// Lifecycle). Every driver in drivers must already be initialized
// (Init called). When more than one reactor loop is run per worker,
// each pool's completion Notify is assigned to one of them by the
// round-robin loadbalance.Balancer (spec §2), so completions fan out
// across reactor threads instead of all waking the first one. A
// Master-role call is a no-op, returning nil.
func StartAll(role Role, drivers ...reactor.Driver) (map[string]*offload.Pool, error) {
	if !ShouldStartPools(role) {
		return nil, nil
	}
	lb := loadbalance.Get(loadbalance.RoundRobin)()
	for _, drv := range drivers {
		lb.Register(drv)
	}

	defaultRegistry.mu.RLock()
	directives := make([]Directive, 0, len(defaultRegistry.pools))
	for _, d := range defaultRegistry.pools {
		directives = append(directives, d)
	}
	defaultRegistry.mu.RUnlock()

	pools := make(map[string]*offload.Pool, len(directives))
	for _, d := range directives {
		drv := lb.Pick()
		if drv == nil {
			continue
		}
		n, err := reactor.NewNotify(nil)
		if err != nil {
			return nil, err
		}
		if err := drv.Add(n.Event(), reactor.CtlLevel); err != nil {
			return nil, err
		}
		p := offload.New(d.Name, d.Threads, d.MaxQueue, n)
		offload.BindNotify(p, n)
		if err := p.Start(); err != nil {
			return nil, err
		}
		pools[d.Name] = p
	}
	return pools, nil
}
