package presenter

import (
	"testing"
	"time"

	"github.com/soocke/microseg-go/ui/model"
)

type mockStatusView struct {
	calls int
	last  string
}

func (v *mockStatusView) SetStatus(s string) { v.calls++; v.last = s }

func TestStatusPresenter_ShowsLatestOnly(t *testing.T) {
	v := &mockStatusView{}
	p := NewStatusPresenter(v)
	p.OnStatus("Downloading last capture")
	p.OnStatus("Loading img.png")
	p.Tick(time.Now())
	if v.calls != 1 || v.last != "Loading img.png" {
		t.Fatalf("expected single update with latest status, got calls=%d last=%q", v.calls, v.last)
	}
	// Same status again is not re-rendered.
	p.OnStatus("Loading img.png")
	p.Tick(time.Now())
	if v.calls != 1 {
		t.Fatalf("unchanged status should not update view, calls=%d", v.calls)
	}
	// Empty tick is a no-op.
	p.Tick(time.Now())
	if v.calls != 1 {
		t.Fatalf("idle tick updated view")
	}
}

type fakeBusy struct{ busy bool }

func (b *fakeBusy) Busy() bool { return b.busy }

type mockBusyView struct{ cur, total time.Duration }

func (v *mockBusyView) SetBusyTime(cur, total time.Duration) { v.cur, v.total = cur, total }

func TestBusyPresenter_Accumulates(t *testing.T) {
	src := &fakeBusy{busy: true}
	v := &mockBusyView{}
	p := NewBusyPresenter(model.NewBusyTimer(), src, v)
	base := time.Unix(100, 0)
	p.Tick(base)
	p.Tick(base.Add(2 * time.Second))
	src.busy = false
	p.Tick(base.Add(3 * time.Second))
	if v.cur != 3*time.Second || v.total != 3*time.Second {
		t.Fatalf("expected 3s/3s, got %v/%v", v.cur, v.total)
	}
}

func TestLoop_TicksAndSchedules(t *testing.T) {
	var nilLoop *Loop
	nilLoop.Tick()

	v := &mockStatusView{}
	status := NewStatusPresenter(v)
	status.OnStatus("Ready")
	scheduled := 0
	l := NewLoop(nil, status, nil, func() { scheduled++ })
	l.Tick()
	if scheduled != 1 || v.last != "Ready" {
		t.Fatalf("loop did not tick: scheduled=%d status=%q", scheduled, v.last)
	}
}
