// Package metrics provides runtime monitoring counters for the event
// reactor and offload subsystem, useful for tuning pool sizing and
// diagnosing queue-overflow conditions.
package metrics

import (
	"fmt"
	"time"

	"go.uber.org/atomic"
)

// All metrics definitions.
const (
	// Reactor / poller metrics.
	PollerWait = iota
	PollerNoWait
	PollerEvents
	PollerStaleDropped

	// Offload metrics.
	TaskPosted
	TaskPostFailed
	TaskExecuted
	TaskCompleted
	QueueOverflow
	NotifySignal
	NotifyDrain
	ThreadStartFailed

	Max
)

var metricsTable [Max]atomic.Uint64

// Add adds delta to the metrics counter identified by name.
func Add(name int, delta uint64) {
	if name >= Max {
		return
	}
	metricsTable[name].Add(delta)
}

// Get returns one metrics counter.
func Get(name int) uint64 {
	if name >= Max {
		return 0
	}
	return metricsTable[name].Load()
}

// GetAll returns all metrics counters.
func GetAll() [Max]uint64 {
	var m [Max]uint64
	for i := range metricsTable {
		m[i] = metricsTable[i].Load()
	}
	return m
}

// ShowMetricsOfPeriod shows metric info of duration d from now on.
// It blocks for d and then prints the delta.
func ShowMetricsOfPeriod(d time.Duration) {
	old := GetAll()
	<-time.After(d)
	newer := GetAll()
	var m [Max]uint64
	for i := range metricsTable {
		m[i] = newer[i] - old[i]
	}
	showAll(m)
}

// ShowMetrics prints the current metrics snapshot to stdout.
func ShowMetrics() {
	showAll(GetAll())
}

func showAll(m [Max]uint64) {
	fmt.Println("######### evcore metrics (", time.Now().Format("2006-01-02 15:04:05"), ") ###########")
	fmt.Printf("%-59s: %d\n", "# REACTOR - number of poller wait returns", m[PollerWait])
	fmt.Printf("%-59s: %d\n", "# REACTOR - number of poller wait called with no timeout", m[PollerNoWait])
	fmt.Printf("%-59s: %d\n", "# REACTOR - total events delivered", m[PollerEvents])
	fmt.Printf("%-59s: %d\n", "# REACTOR - stale (instance-mismatch) events dropped", m[PollerStaleDropped])
	fmt.Printf("%-59s: %d\n", "# OFFLOAD - tasks posted", m[TaskPosted])
	fmt.Printf("%-59s: %d\n", "# OFFLOAD - tasks rejected (queue overflow)", m[TaskPostFailed])
	fmt.Printf("%-59s: %d\n", "# OFFLOAD - tasks executed by a worker", m[TaskExecuted])
	fmt.Printf("%-59s: %d\n", "# OFFLOAD - completions drained on reactor", m[TaskCompleted])
	fmt.Printf("%-59s: %d\n", "# OFFLOAD - queue overflow events", m[QueueOverflow])
	fmt.Printf("%-59s: %d\n", "# OFFLOAD - notify channel signals", m[NotifySignal])
	fmt.Printf("%-59s: %d\n", "# OFFLOAD - notify channel drains", m[NotifyDrain])
	fmt.Printf("%-59s: %d\n", "# OFFLOAD - worker thread start failures", m[ThreadStartFailed])
	fmt.Printf("\n")
}
