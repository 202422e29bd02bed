package task

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// ErrUnknownTask is reported for a Task the worker has no dispatch case for.
var ErrUnknownTask = errors.New("unknown task")

// Handler executes each task variant. Every method runs on the worker goroutine.
type Handler interface {
	HandleDownload(ctx context.Context, t Download) (DownloadResult, error)
	HandleUpload(ctx context.Context, t Upload) (ImageResult, error)
	HandleSegment(ctx context.Context, t Segment) (SegmentResult, error)
}

// Poster receives completions from the worker.
type Poster interface {
	Post(Finished)
}

// Stats is a snapshot of queue counters.
type Stats struct {
	Queued    int
	Running   bool
	Submitted uint64
	Completed uint64
	Failed    uint64
}

// Queue is an unbounded FIFO consumed by exactly one worker goroutine.
// Submit never blocks. A running task cannot be cancelled; Close lets it finish
// and discards whatever is still queued.
type Queue struct {
	handler Handler
	out     Poster
	logger  *slog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	pending []Task
	closed  bool

	running   atomic.Bool
	submitted atomic.Uint64
	completed atomic.Uint64
	failed    atomic.Uint64

	ctx       context.Context
	cancel    context.CancelFunc
	startOnce sync.Once
	started   atomic.Bool
	done      chan struct{}
}

// NewQueue creates a stopped queue. Call Start to launch the worker.
func NewQueue(h Handler, out Poster, logger *slog.Logger) *Queue {
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{handler: h, out: out, logger: logger, ctx: ctx, cancel: cancel, done: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Start launches the worker goroutine once.
func (q *Queue) Start() {
	q.startOnce.Do(func() {
		q.started.Store(true)
		go q.run()
	})
}

// Submit appends t to the tail of the queue. It reports false after Close.
func (q *Queue) Submit(t Task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.pending = append(q.pending, t)
	q.submitted.Add(1)
	if q.logger != nil {
		q.logger.Debug("task queued", "task", t.ID(), "kind", t.Kind(), "depth", len(q.pending))
	}
	q.cond.Signal()
	return true
}

// Len returns the number of tasks waiting to run.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Stats returns a snapshot of the counters.
func (q *Queue) Stats() Stats {
	return Stats{
		Queued:    q.Len(),
		Running:   q.running.Load(),
		Submitted: q.submitted.Load(),
		Completed: q.completed.Load(),
		Failed:    q.failed.Load(),
	}
}

// Close stops accepting tasks and waits for the running task, if any, to
// return. Queued tasks are dropped. The worker context is cancelled so a
// handler blocked on I/O returns promptly at shutdown.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	dropped := len(q.pending)
	q.pending = nil
	q.cond.Broadcast()
	q.mu.Unlock()

	q.cancel()
	q.startOnce.Do(func() {})
	if q.started.Load() {
		<-q.done
	}
	if dropped > 0 && q.logger != nil {
		q.logger.Info("task queue closed", "dropped", dropped)
	}
	return nil
}

func (q *Queue) next() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.pending) == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		return nil, false
	}
	t := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]
	return t, true
}

func (q *Queue) run() {
	defer close(q.done)
	for {
		t, ok := q.next()
		if !ok {
			return
		}
		q.running.Store(true)
		res := q.execute(t)
		q.running.Store(false)
		if res.State == StateFailed {
			q.failed.Add(1)
		} else {
			q.completed.Add(1)
		}
		if q.out != nil {
			q.out.Post(res)
		}
	}
}

// execute dispatches t to the handler. Handler panics become failures so the
// worker survives to take the next task.
func (q *Queue) execute(t Task) (res Finished) {
	res = Finished{Task: t, State: StateRunning}
	start := time.Now()
	if q.logger != nil {
		q.logger.Debug("task running", "task", t.ID(), "kind", t.Kind())
	}
	defer func() {
		if r := recover(); r != nil {
			res.Result = nil
			res.Err = errors.Errorf("%s task panicked: %v", t.Kind(), r)
			if q.logger != nil {
				q.logger.Error("task panic", "task", t.ID(), "error", r, "stack", string(debug.Stack()))
			}
		}
		res.Duration = time.Since(start)
		if res.Err != nil {
			res.State = StateFailed
		} else {
			res.State = StateCompleted
		}
		if q.logger != nil {
			q.logger.Debug("task "+res.State.String(), "task", t.ID(), "kind", t.Kind(), "took", res.Duration)
		}
	}()

	switch v := t.(type) {
	case Download:
		res.Result, res.Err = q.handler.HandleDownload(q.ctx, v)
	case Upload:
		res.Result, res.Err = q.handler.HandleUpload(q.ctx, v)
	case Segment:
		res.Result, res.Err = q.handler.HandleSegment(q.ctx, v)
	default:
		res.Err = errors.Wrapf(ErrUnknownTask, "%T", t)
	}
	if res.Err != nil {
		res.Result = nil
	}
	return res
}
