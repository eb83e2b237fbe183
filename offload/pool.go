package offload

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"trpc.group/trpc-go/evcore/everr"
	"trpc.group/trpc-go/evcore/internal/safejob"
	"trpc.group/trpc-go/evcore/log"
	"trpc.group/trpc-go/evcore/metrics"
	"trpc.group/trpc-go/evcore/reactor"
)

// DefaultThreads and DefaultMaxQueue are the sizing of the
// auto-provisioned "default" pool (spec §4.8).
const (
	DefaultThreads  = 32
	DefaultMaxQueue = 65536
)

// Pool is a named set of worker threads sharing a counting semaphore,
// a lock-free MPSC intake queue and MPSC-to-single-consumer
// completion queue, a Notify channel back to the reactor, a log and a
// monotonic task-id counter (spec §3 Pool).
type Pool struct {
	Name string

	threads  int
	maxQueue int64

	sem *semaphore.Weighted
	// pending is the "Wait semaphore" of spec §4.6 step 1: Post
	// releases one unit per enqueued Task, workerLoop blocks acquiring
	// one before every dequeue attempt, so an idle worker parks
	// instead of spinning.
	pending *semaphore.Weighted
	depth   atomic.Int64
	nextID  atomic.Uint64

	intake     *queue
	completion *queue
	notify     *reactor.Notify

	log log.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running safejob.ConcurrentJob
	started atomic.Bool
}

// New builds a Pool named name with the given thread count and
// max_queue depth, wired to notify for its completion wakeups. It
// does not start worker threads; call Start for that (spec §4.8:
// pools are instantiated only in worker or single-process roles).
func New(name string, threads int, maxQueue int, notify *reactor.Notify) *Pool {
	if threads <= 0 {
		threads = DefaultThreads
	}
	if maxQueue <= 0 {
		maxQueue = DefaultMaxQueue
	}
	ctx, cancel := context.WithCancel(context.Background())
	// pending starts fully held so a worker's first Acquire blocks
	// until Post releases a unit.
	pending := semaphore.NewWeighted(int64(maxQueue))
	pending.TryAcquire(int64(maxQueue))
	p := &Pool{
		Name:       name,
		threads:    threads,
		maxQueue:   int64(maxQueue),
		sem:        semaphore.NewWeighted(int64(maxQueue)),
		pending:    pending,
		intake:     newQueue(),
		completion: newQueue(),
		notify:     notify,
		log:        log.Default,
		ctx:        ctx,
		cancel:     cancel,
	}
	return p
}

// Start launches the pool's worker goroutines. Safe to call once;
// a second call is a no-op.
func (p *Pool) Start() error {
	if !p.started.CompareAndSwap(false, true) {
		return nil
	}
	for i := 0; i < p.threads; i++ {
		p.wg.Add(1)
		go p.workerLoop(i)
	}
	return nil
}

// Close stops accepting new work and joins every worker thread. Tasks
// still in the intake queue when Close is called are run by the
// workers before they exit, because a worker's Acquire on pending
// succeeds without blocking while units remain; Close does not drain
// the completion queue (spec §9 open question: thread termination has
// no source precedent, so evcore adds this context-cancellation/join
// path as a minimal, additive safety net).
func (p *Pool) Close() error {
	if !p.started.Load() {
		return nil
	}
	p.running.Close()
	p.cancel()
	p.wg.Wait()
	return nil
}

// Post enqueues a Task running handler with ctx, completing on
// completionEvent. It returns everr.ResourceExhaustion if the pool is
// at max_queue capacity (spec §4.5 Enqueue step 1, §8 property 6/11).
func (p *Pool) Post(handler Handler, ctx interface{}, completionEvent *reactor.Event) (uint64, error) {
	if !p.running.Begin() {
		return 0, everr.Wrap(everr.ResourceExhaustion, "pool closed")
	}
	defer p.running.End()

	if !p.sem.TryAcquire(1) {
		metrics.Add(metrics.TaskPostFailed, 1)
		metrics.Add(metrics.QueueOverflow, 1)
		p.log.Errorf("offload: pool %q queue overflow at depth %d", p.Name, p.depth.Load())
		return 0, everr.Wrapf(everr.ResourceExhaustion, "pool %q at max_queue", p.Name)
	}

	id := p.nextID.Add(1)
	t := &Task{ID: id, Handler: handler, Ctx: ctx, Event: completionEvent}
	if completionEvent != nil {
		completionEvent.SetActive(true)
	}
	p.depth.Add(1)
	p.intake.push(t)
	p.pending.Release(1)
	metrics.Add(metrics.TaskPosted, 1)
	p.log.Debugf("offload: pool %q posted task %d", p.Name, id)
	return id, nil
}

// workerLoop is the per-thread cycle of spec §4.6: wait semaphore
// (block on pending until a Task is available), dequeue, execute,
// clear next, enqueue completion, signal Notify. Once Close cancels
// p.ctx it exits at the first Acquire that would have to block, that
// is, once no queued Task is left for it.
func (p *Pool) workerLoop(workerID int) {
	defer p.wg.Done()
	// threadLog carries a distinct thread id on every line it emits,
	// the same way the source copies its pool log into a per-thread
	// log before entering the worker cycle (spec §4.6).
	threadLog := &threadLogger{Logger: p.log, pool: p.Name, thread: workerID}

	for {
		if err := p.pending.Acquire(p.ctx, 1); err != nil {
			return
		}

		// Post always completes its push before releasing the matching
		// pending unit, so this pop must succeed; the retry only guards
		// against the transient CAS-vs-publish window popMulti itself
		// documents, never genuine emptiness.
		t := p.intake.popMulti()
		for t == nil {
			runtime.Gosched()
			t = p.intake.popMulti()
		}

		p.depth.Add(-1)
		p.sem.Release(1)

		t.Handler(t.Ctx, threadLog)
		metrics.Add(metrics.TaskExecuted, 1)

		t.next = nil
		p.completion.push(t)
		if p.notify != nil {
			if err := p.notify.Signal(); err != nil {
				threadLog.Errorf("offload: pool %q notify signal failed: %v", p.Name, err)
			} else {
				metrics.Add(metrics.NotifySignal, 1)
			}
		}
	}
}

// Drain runs on the reactor thread in response to a Notify wakeup. It
// pops every completed Task, marks its Event complete/inactive, and
// invokes the Event's Handler synchronously (spec §4.7). Returns the
// number of completions dispatched.
func (p *Pool) Drain() int {
	metrics.Add(metrics.NotifyDrain, 1)
	n := 0
	for {
		t := p.completion.popSingle()
		if t == nil {
			return n
		}
		metrics.Add(metrics.TaskCompleted, 1)
		ev := t.Event
		n++
		if ev == nil {
			continue
		}
		ev.SetComplete(true)
		ev.SetActive(false)
		if ev.Handler != nil {
			ev.Handler(ev)
		}
	}
}

// Depth returns the pool's current approximate queue depth, for
// diagnostics and the overflow log line (spec §6 Observability).
func (p *Pool) Depth() int64 {
	return p.depth.Load()
}

// String implements fmt.Stringer.
func (p *Pool) String() string {
	return fmt.Sprintf("offload.Pool{name=%s threads=%d max_queue=%d}", p.Name, p.threads, p.maxQueue)
}
