package presenter

import (
	"time"

	"github.com/soocke/microseg-go/ui/model"
)

// BusySource reports whether a task is in flight.
type BusySource interface{ Busy() bool }

// BusyView displays the duration of the current busy stretch and the session total.
type BusyView interface {
	SetBusyTime(current, total time.Duration)
}

// BusyPresenter feeds the busy flag into the timer and pushes durations to the view.
type BusyPresenter struct {
	timer  *model.BusyTimer
	source BusySource
	view   BusyView
}

func NewBusyPresenter(timer *model.BusyTimer, source BusySource, view BusyView) *BusyPresenter {
	return &BusyPresenter{timer: timer, source: source, view: view}
}

// Tick advances the timer and updates the view.
func (p *BusyPresenter) Tick(now time.Time) {
	if p == nil || p.timer == nil || p.source == nil || p.view == nil {
		return
	}
	p.timer.OnTick(p.source.Busy(), now)
	cur, total := p.timer.Values()
	p.view.SetBusyTime(cur, total)
}
