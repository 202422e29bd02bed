package task

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/soocke/microseg-go/domain/segment"
)

type recordingHandler struct {
	mu      sync.Mutex
	order   []string
	active  atomic.Int32
	overlap atomic.Bool
	hold    chan struct{}
	fail    map[string]error
	panics  map[string]bool
}

func (h *recordingHandler) enter(kind string) error {
	if h.active.Add(1) > 1 {
		h.overlap.Store(true)
	}
	defer h.active.Add(-1)
	if h.hold != nil {
		<-h.hold
	}
	time.Sleep(time.Millisecond)
	h.mu.Lock()
	h.order = append(h.order, kind)
	h.mu.Unlock()
	if h.panics[kind] {
		panic("boom")
	}
	return h.fail[kind]
}

func (h *recordingHandler) HandleDownload(context.Context, Download) (DownloadResult, error) {
	return DownloadResult{Path: "data/x.png"}, h.enter("download")
}

func (h *recordingHandler) HandleUpload(_ context.Context, t Upload) (ImageResult, error) {
	return ImageResult{Path: t.Path}, h.enter("upload:" + t.Path)
}

func (h *recordingHandler) HandleSegment(_ context.Context, t Segment) (SegmentResult, error) {
	return SegmentResult{Mode: t.Mode}, h.enter("segment:" + t.Mode.String())
}

func (h *recordingHandler) seen() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.order...)
}

func collect(t *testing.T, in *Inbox, n int) []Finished {
	t.Helper()
	var out []Finished
	deadline := time.Now().Add(2 * time.Second)
	for len(out) < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d completions, got %d", n, len(out))
		}
		in.Drain(func(f Finished) { out = append(out, f) })
		time.Sleep(time.Millisecond)
	}
	return out
}

func TestQueue_RunsInSubmissionOrderWithoutOverlap(t *testing.T) {
	h := &recordingHandler{}
	in := NewInbox()
	q := NewQueue(h, in, nil)
	defer q.Close()

	box := segment.Box{XMin: 1, YMin: 1, XMax: 5, YMax: 5}
	tasks := []Task{NewDownload(), NewUpload("a.png"), NewSegment(segment.ModeBox, segment.Prompt{Box: &box})}
	for _, tk := range tasks {
		test.That(t, q.Submit(tk), test.ShouldBeTrue)
	}
	q.Start()

	got := collect(t, in, 3)
	test.That(t, h.seen(), test.ShouldResemble, []string{"download", "upload:a.png", "segment:Box"})
	test.That(t, h.overlap.Load(), test.ShouldBeFalse)
	for i, f := range got {
		test.That(t, f.Task.ID(), test.ShouldEqual, tasks[i].ID())
		test.That(t, f.State, test.ShouldEqual, StateCompleted)
		test.That(t, f.Err, test.ShouldBeNil)
	}
	res, ok := got[1].Result.(ImageResult)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, res.Path, test.ShouldEqual, "a.png")

	st := q.Stats()
	test.That(t, st.Completed, test.ShouldEqual, uint64(3))
	test.That(t, st.Failed, test.ShouldEqual, uint64(0))
	test.That(t, st.Queued, test.ShouldEqual, 0)
}

func TestQueue_FailuresAndPanicsDoNotStopWorker(t *testing.T) {
	netErr := errors.New("connection refused")
	h := &recordingHandler{
		fail:   map[string]error{"download": netErr},
		panics: map[string]bool{"upload:bad.png": true},
	}
	in := NewInbox()
	q := NewQueue(h, in, nil)
	q.Start()
	defer q.Close()

	q.Submit(NewDownload())
	q.Submit(NewUpload("bad.png"))
	q.Submit(NewUpload("good.png"))

	got := collect(t, in, 3)
	test.That(t, got[0].State, test.ShouldEqual, StateFailed)
	test.That(t, errors.Is(got[0].Err, netErr), test.ShouldBeTrue)
	test.That(t, got[0].Result, test.ShouldBeNil)
	test.That(t, got[1].State, test.ShouldEqual, StateFailed)
	test.That(t, got[1].Err.Error(), test.ShouldContainSubstring, "panicked")
	test.That(t, got[2].State, test.ShouldEqual, StateCompleted)

	st := q.Stats()
	test.That(t, st.Failed, test.ShouldEqual, uint64(2))
	test.That(t, st.Completed, test.ShouldEqual, uint64(1))
}

func TestQueue_SubmitDoesNotBlockWhileRunning(t *testing.T) {
	h := &recordingHandler{hold: make(chan struct{})}
	in := NewInbox()
	q := NewQueue(h, in, nil)
	q.Start()

	q.Submit(NewDownload())
	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			q.Submit(NewUpload("x.png"))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked behind a running task")
	}
	test.That(t, q.Len() >= 50, test.ShouldBeTrue)
	for deadline := time.Now().Add(time.Second); !q.Stats().Running; {
		if time.Now().After(deadline) {
			t.Fatal("worker never picked up the first task")
		}
		time.Sleep(time.Millisecond)
	}

	// Let the running task finish; Close drops the rest.
	go func() { h.hold <- struct{}{} }()
	test.That(t, q.Close(), test.ShouldBeNil)
	test.That(t, q.Submit(NewDownload()), test.ShouldBeFalse)
	test.That(t, in.Len(), test.ShouldEqual, 1)
	test.That(t, h.seen(), test.ShouldResemble, []string{"download"})
}

func TestQueue_CloseBeforeStart(t *testing.T) {
	q := NewQueue(&recordingHandler{}, NewInbox(), nil)
	q.Submit(NewSegment(segment.ModePointAndClick, segment.Prompt{Points: []image.Point{{1, 1}}}))
	test.That(t, q.Close(), test.ShouldBeNil)
	q.Start()
	test.That(t, q.Stats().Queued, test.ShouldEqual, 0)
}

func TestInbox_DrainPreservesOrder(t *testing.T) {
	in := NewInbox()
	a, b := NewDownload(), NewUpload("p.png")
	in.Post(Finished{Task: a})
	in.Post(Finished{Task: b})

	var ids []Task
	n := in.Drain(func(f Finished) { ids = append(ids, f.Task) })
	test.That(t, n, test.ShouldEqual, 2)
	test.That(t, ids[0].ID(), test.ShouldEqual, a.ID())
	test.That(t, ids[1].ID(), test.ShouldEqual, b.ID())
	test.That(t, in.Drain(func(Finished) {}), test.ShouldEqual, 0)
}

func TestState_String(t *testing.T) {
	test.That(t, StateQueued.String(), test.ShouldEqual, "queued")
	test.That(t, StateFailed.String(), test.ShouldEqual, "failed")
	test.That(t, State(42).String(), test.ShouldEqual, "unknown")
}
