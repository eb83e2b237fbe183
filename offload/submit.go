package offload

import "github.com/panjf2000/ants/v2"

// SubmitPool is a secondary, general-purpose goroutine pool for
// fire-and-forget work that has no completion Event and does not
// need the intake/completion queue discipline of Pool — the same
// role tnet's own Submit/usrPool plays for its business goroutines.
// It is unrelated to Pool's lock-free queues and is not on the path
// of any spec §4.5–§4.7 operation.
var SubmitPool, _ = ants.NewPool(0) // 0 means unbounded (ants.DefaultAntsPoolSize-like behavior via 0 -> math.MaxInt32 internally)

// Submit runs task on the shared general-purpose pool.
func Submit(task func()) error {
	return SubmitPool.Submit(task)
}
