package offload_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"trpc.group/trpc-go/evcore/log"
	"trpc.group/trpc-go/evcore/offload"
	"trpc.group/trpc-go/evcore/reactor"
)

func TestBindNotifyDrainsPoolOnWake(t *testing.T) {
	n, err := reactor.NewNotify(nil)
	require.NoError(t, err)
	defer n.Close()

	p := offload.New("bound", 2, 16, n)
	offload.BindNotify(p, n)
	require.NoError(t, p.Start())
	defer p.Close()

	done := make(chan struct{})
	ev := reactor.NewEvent()
	defer reactor.FreeEvent(ev)
	ev.Handler = func(ev *reactor.Event) { close(done) }

	_, err = p.Post(func(ctx interface{}, l log.Logger) {}, nil, ev)
	require.NoError(t, err)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-done:
			return
		case <-deadline:
			t.Fatal("BindNotify never drained the pool on wake")
		default:
			_ = n.Handle()
			time.Sleep(time.Millisecond)
		}
	}
}
