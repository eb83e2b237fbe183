package offload

import (
	"strconv"

	"trpc.group/trpc-go/evcore/log"
)

// threadLogger wraps a Pool's log with the pool name and worker
// thread id, matching the per-thread-log copy the source makes before
// entering each worker's cycle (spec §4.6).
type threadLogger struct {
	log.Logger
	pool   string
	thread int
}

func (t *threadLogger) prefix() string {
	return "[pool=" + t.pool + " thread=" + strconv.Itoa(t.thread) + "] "
}

func (t *threadLogger) Debug(args ...any) { t.Logger.Debug(append([]any{t.prefix()}, args...)...) }
func (t *threadLogger) Debugf(format string, args ...any) {
	t.Logger.Debugf(t.prefix()+format, args...)
}
func (t *threadLogger) Info(args ...any) { t.Logger.Info(append([]any{t.prefix()}, args...)...) }
func (t *threadLogger) Infof(format string, args ...any) {
	t.Logger.Infof(t.prefix()+format, args...)
}
func (t *threadLogger) Warn(args ...any) { t.Logger.Warn(append([]any{t.prefix()}, args...)...) }
func (t *threadLogger) Warnf(format string, args ...any) {
	t.Logger.Warnf(t.prefix()+format, args...)
}
func (t *threadLogger) Error(args ...any) { t.Logger.Error(append([]any{t.prefix()}, args...)...) }
func (t *threadLogger) Errorf(format string, args ...any) {
	t.Logger.Errorf(t.prefix()+format, args...)
}
