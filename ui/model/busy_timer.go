package model

import (
	"time"
)

// BusyTimer tracks how long the worker has been busy with the current run of
// tasks and the busy time accumulated over the session. Presenters feed it the
// busy flag on every tick and poll Values for the status line.
// The zero value is ready to use.
type BusyTimer struct {
	active  bool
	start   time.Time
	last    time.Duration
	total   time.Duration
	batches int
}

// NewBusyTimer returns a ready-to-use BusyTimer.
func NewBusyTimer() *BusyTimer { return &BusyTimer{} }

// OnTick records the busy flag observed at now.
func (m *BusyTimer) OnTick(busy bool, now time.Time) {
	if m == nil {
		return
	}
	if busy {
		if !m.active { // idle -> busy
			m.active = true
			m.start = now
			m.last = 0
		}
		m.last = now.Sub(m.start)
	} else if m.active { // busy -> idle
		m.last = now.Sub(m.start)
		m.total += m.last
		m.batches++
		m.active = false
	}
}

// Values returns the duration of the current (or last) busy stretch and the
// total busy time, which includes the ongoing stretch.
func (m *BusyTimer) Values() (current, total time.Duration) {
	if m == nil {
		return 0, 0
	}
	current = m.last
	total = m.total
	if m.active {
		total += current
	}
	return
}

// Batches counts completed busy stretches.
func (m *BusyTimer) Batches() int {
	if m == nil {
		return 0
	}
	return m.batches
}
