package offload

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Debug(args ...any)                 { r.lines = append(r.lines, fmt.Sprint(args...)) }
func (r *recordingLogger) Debugf(format string, args ...any)  { r.lines = append(r.lines, fmt.Sprintf(format, args...)) }
func (r *recordingLogger) Info(args ...any)                  { r.lines = append(r.lines, fmt.Sprint(args...)) }
func (r *recordingLogger) Infof(format string, args ...any)  { r.lines = append(r.lines, fmt.Sprintf(format, args...)) }
func (r *recordingLogger) Warn(args ...any)                  { r.lines = append(r.lines, fmt.Sprint(args...)) }
func (r *recordingLogger) Warnf(format string, args ...any)  { r.lines = append(r.lines, fmt.Sprintf(format, args...)) }
func (r *recordingLogger) Error(args ...any)                 { r.lines = append(r.lines, fmt.Sprint(args...)) }
func (r *recordingLogger) Errorf(format string, args ...any) { r.lines = append(r.lines, fmt.Sprintf(format, args...)) }
func (r *recordingLogger) Fatal(args ...any)                 { r.lines = append(r.lines, fmt.Sprint(args...)) }
func (r *recordingLogger) Fatalf(format string, args ...any) { r.lines = append(r.lines, fmt.Sprintf(format, args...)) }

func TestThreadLoggerPrefixesEveryLine(t *testing.T) {
	rec := &recordingLogger{}
	tl := &threadLogger{Logger: rec, pool: "io", thread: 3}

	tl.Infof("started %d", 1)
	tl.Errorf("failed: %v", "boom")

	require := assert.New(t)
	require.Len(rec.lines, 2)
	require.Contains(rec.lines[0], "[pool=io thread=3]")
	require.Contains(rec.lines[0], "started 1")
	require.Contains(rec.lines[1], "[pool=io thread=3]")
	require.Contains(rec.lines[1], "failed: boom")
}
