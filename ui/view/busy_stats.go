package view

import (
	"fmt"
	"time"

	"github.com/soocke/microseg-go/ui/theme"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// BusyStats shows how long the current task run has taken and the session total.
type BusyStats interface {
	SetCurrent(d time.Duration)
	SetTotal(d time.Duration)
}

type busyStats struct {
	currentLbl *TLabelWidget
	totalLbl   *TLabelWidget
}

// NewBusyStats creates the two duration labels stacked in parent starting at row.
func NewBusyStats(parent *FrameWidget, row int) BusyStats {
	s := &busyStats{
		currentLbl: TLabel(Width(18), Anchor("w"), Style(theme.StyleMutedLabel)),
		totalLbl:   TLabel(Width(18), Anchor("w"), Style(theme.StyleMutedLabel)),
	}
	Grid(s.currentLbl, In(parent), Row(row), Column(0), Sticky("w"), Padx("2m"))
	Grid(s.totalLbl, In(parent), Row(row+1), Column(0), Sticky("w"), Padx("2m"))
	s.currentLbl.Configure(Txt("Last run: 00:00.0"))
	s.totalLbl.Configure(Txt("Busy total: 00:00"))
	return s
}

// SetCurrent updates the current run duration display.
func (s *busyStats) SetCurrent(d time.Duration) {
	if s == nil || s.currentLbl == nil {
		return
	}
	tenths := int(d / (100 * time.Millisecond))
	min, sec, frac := tenths/600, (tenths/10)%60, tenths%10
	s.currentLbl.Configure(Txt(fmt.Sprintf("Last run: %02d:%02d.%d", min, sec, frac)))
}

// SetTotal updates the accumulated busy time display.
func (s *busyStats) SetTotal(d time.Duration) {
	if s == nil || s.totalLbl == nil {
		return
	}
	seconds := int(d.Seconds())
	min, sec := seconds/60, seconds%60
	s.totalLbl.Configure(Txt(fmt.Sprintf("Busy total: %02d:%02d", min, sec)))
}
