package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It ticks the segmentation presenter first so completions drained in this
// round are already reflected in the status and busy time, then invokes a
// scheduler callback. The zero value is usable (methods are nil-safe).
type Loop struct {
	Segment  *SegmentationPresenter
	Status   *StatusPresenter
	Busy     *BusyPresenter
	Schedule func()
}

func NewLoop(seg *SegmentationPresenter, status *StatusPresenter, busy *BusyPresenter, schedule func()) *Loop {
	return &Loop{Segment: seg, Status: status, Busy: busy, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	if l.Segment != nil {
		l.Segment.Tick()
	}
	if l.Status != nil {
		l.Status.Tick(now)
	}
	if l.Busy != nil {
		l.Busy.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
