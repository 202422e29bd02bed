package model

import (
	"image"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/soocke/microseg-go/domain/segment"
)

// loaded returns a state with a 100x50 image centered on a 200x150 canvas,
// so the display box is (50,50)-(150,100).
func loaded(mode segment.Mode) *State {
	s := NewState(mode)
	s.Resize(image.Pt(200, 150))
	s.SetImage(image.NewNRGBA(image.Rect(0, 0, 100, 50)))
	return s
}

func TestState_LayoutFollowsCanvas(t *testing.T) {
	s := loaded(segment.ModeBox)
	test.That(t, s.DisplayBox(), test.ShouldResemble, image.Rect(50, 50, 150, 100))

	test.That(t, s.Resize(image.Pt(200, 150)), test.ShouldBeFalse)
	test.That(t, s.Resize(image.Pt(99, 49)), test.ShouldBeTrue)
	test.That(t, s.DisplayBox(), test.ShouldResemble, image.Rect(-1, -1, 99, 49))
}

func TestState_BoxDrawing(t *testing.T) {
	s := loaded(segment.ModeBox)
	test.That(t, s.CanRun(), test.ShouldBeFalse)

	test.That(t, s.PointerDown(image.Pt(10, 10)), test.ShouldBeFalse) // outside image
	test.That(t, s.PointerDown(image.Pt(120, 90)), test.ShouldBeTrue)
	test.That(t, s.Phase(), test.ShouldEqual, PhaseDrawing)
	test.That(t, s.CanRun(), test.ShouldBeFalse)

	test.That(t, s.PointerDrag(image.Pt(0, 0)), test.ShouldBeTrue) // clamped to the box corner
	r, has, _ := s.Overlay()
	test.That(t, has, test.ShouldBeTrue)
	test.That(t, r, test.ShouldResemble, image.Rect(50, 50, 120, 90))

	test.That(t, s.PointerUp(image.Pt(60, 55)), test.ShouldBeTrue)
	test.That(t, s.Phase(), test.ShouldEqual, PhaseHasPrompt)
	test.That(t, s.CanRun(), test.ShouldBeTrue)

	p, err := s.PromptSnapshot()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, *p.Box, test.ShouldResemble, segment.Box{XMin: 10, YMin: 5, XMax: 70, YMax: 40})

	// a new press replaces the box
	s.PointerDown(image.Pt(100, 60))
	r, _, _ = s.Overlay()
	test.That(t, r, test.ShouldResemble, image.Rect(100, 60, 100, 60))
}

func TestState_ModeChangeMidDragClearsBoxAndDisablesRun(t *testing.T) {
	s := loaded(segment.ModeBox)
	s.PointerDown(image.Pt(60, 60))
	s.PointerDrag(image.Pt(90, 80))
	test.That(t, s.Phase(), test.ShouldEqual, PhaseDrawing)

	test.That(t, s.SetMode(segment.ModePointAndClick), test.ShouldBeTrue)
	_, has, pts := s.Overlay()
	test.That(t, has, test.ShouldBeFalse)
	test.That(t, pts, test.ShouldBeEmpty)
	test.That(t, s.Phase(), test.ShouldEqual, PhaseIdle)
	test.That(t, s.CanRun(), test.ShouldBeFalse)

	// the release that ends the interrupted drag is ignored
	test.That(t, s.PointerUp(image.Pt(100, 90)), test.ShouldBeFalse)
	test.That(t, s.CanRun(), test.ShouldBeFalse)
	_, err := s.PromptSnapshot()
	test.That(t, errors.Is(err, segment.ErrUnsupportedMode), test.ShouldBeTrue)
}

func TestState_PointsAccumulate(t *testing.T) {
	s := loaded(segment.ModePointAndClick)
	test.That(t, s.CanRun(), test.ShouldBeFalse)
	s.PointerDown(image.Pt(50, 50))
	s.PointerDown(image.Pt(150, 100))
	test.That(t, s.PointerDown(image.Pt(151, 100)), test.ShouldBeFalse)
	test.That(t, s.CanRun(), test.ShouldBeTrue)

	p, err := s.PromptSnapshot()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Box, test.ShouldBeNil)
	test.That(t, p.Points, test.ShouldResemble, []image.Point{{0, 0}, {100, 50}})

	test.That(t, s.PointerDrag(image.Pt(60, 60)), test.ShouldBeFalse)
	s.Clear()
	test.That(t, s.CanRun(), test.ShouldBeFalse)
}

func TestState_EverythingUsesFullImageBox(t *testing.T) {
	s := NewState(segment.ModeEverything)
	test.That(t, s.CanRun(), test.ShouldBeFalse)
	_, err := s.PromptSnapshot()
	test.That(t, errors.Is(err, segment.ErrNoImage), test.ShouldBeTrue)

	s.Resize(image.Pt(300, 300))
	s.SetImage(image.NewNRGBA(image.Rect(0, 0, 64, 32)))
	test.That(t, s.CanRun(), test.ShouldBeTrue)
	test.That(t, s.PointerDown(image.Pt(150, 150)), test.ShouldBeFalse)

	p, err := s.PromptSnapshot()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, *p.Box, test.ShouldResemble, segment.Box{XMin: 0, YMin: 0, XMax: 63, YMax: 31})
}

func TestState_BusyBlocksInputAndRun(t *testing.T) {
	s := loaded(segment.ModePointAndClick)
	s.PointerDown(image.Pt(70, 70))
	s.SetBusy(true)
	test.That(t, s.CanRun(), test.ShouldBeFalse)
	test.That(t, s.PointerDown(image.Pt(80, 80)), test.ShouldBeFalse)
	s.SetBusy(false)
	test.That(t, s.CanRun(), test.ShouldBeTrue)
}

func TestState_ResultAndClear(t *testing.T) {
	s := loaded(segment.ModePointAndClick)
	orig := s.Original()
	s.PointerDown(image.Pt(70, 70))

	res := image.NewNRGBA(image.Rect(0, 0, 100, 50))
	s.ShowResult(res)
	test.That(t, s.Current(), test.ShouldEqual, res)
	test.That(t, s.Original(), test.ShouldEqual, orig)
	test.That(t, s.Phase(), test.ShouldEqual, PhaseIdle)

	s.Clear()
	test.That(t, s.Current(), test.ShouldEqual, orig)

	s.Resize(image.Pt(10, 10))
	s.PointerDown(image.Pt(5, 5))
	s.Resize(image.Pt(20, 20))
	test.That(t, s.Phase(), test.ShouldEqual, PhaseIdle)

	s.Unload()
	test.That(t, s.HasImage(), test.ShouldBeFalse)
	test.That(t, s.CanRun(), test.ShouldBeFalse)
	test.That(t, PhaseDrawing.String(), test.ShouldEqual, "drawing")
}
