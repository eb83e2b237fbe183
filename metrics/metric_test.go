package metrics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"trpc.group/trpc-go/evcore/metrics"
)

func TestMetrics(t *testing.T) {
	metrics.Add(metrics.TaskPosted, 1)
	assert.Equal(t, uint64(1), metrics.Get(metrics.TaskPosted))
	metrics.Add(metrics.TaskPosted, 1)
	assert.Equal(t, uint64(2), metrics.Get(metrics.TaskPosted))
	metrics.Add(metrics.Max+1, 1)
	assert.Equal(t, uint64(0), metrics.Get(metrics.Max+1))
	metrics.Add(metrics.QueueOverflow, 3)
	metrics.Add(metrics.PollerWait, 9)
	metrics.Add(metrics.PollerEvents, 99)
	metrics.ShowMetrics()
	metrics.ShowMetricsOfPeriod(time.Millisecond)
}
