package offload

import "trpc.group/trpc-go/evcore/reactor"

// BindNotify wires p's completion drain as the OnWake callback of n,
// so that every time the reactor wakes on n it drains p's completion
// queue before returning to Process (spec §4.7). Call once per pool
// after both the Pool and its Notify exist.
func BindNotify(p *Pool, n *reactor.Notify) {
	n.OnWake = func() {
		p.Drain()
	}
}
