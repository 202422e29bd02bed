package presenter

import (
	"time"
)

// StatusView sets the status label in the view.
type StatusView interface{ SetStatus(string) }

// StatusPresenter collects status updates between ticks and shows only the
// most recent one.
type StatusPresenter struct {
	view    StatusView
	latest  string // last reflected status
	pending []string
}

func NewStatusPresenter(view StatusView) *StatusPresenter {
	return &StatusPresenter{view: view}
}

// OnStatus queues a status line. The latest queued line is shown on the next Tick.
func (p *StatusPresenter) OnStatus(s string) {
	if p == nil {
		return
	}
	p.pending = append(p.pending, s)
}

// Tick reflects the newest pending status and clears the queue.
func (p *StatusPresenter) Tick(now time.Time) {
	if p == nil || p.view == nil {
		return
	}
	if len(p.pending) > 0 {
		last := p.pending[len(p.pending)-1]
		p.pending = p.pending[:0]
		if last != p.latest {
			p.latest = last
			p.view.SetStatus(last)
		}
	}
}
