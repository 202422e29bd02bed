// Package model holds UI-thread state. Nothing here is safe for concurrent use;
// every method must be called from the Tk event loop.
package model

import (
	"image"

	"github.com/pkg/errors"

	"github.com/soocke/microseg-go/domain/geometry"
	"github.com/soocke/microseg-go/domain/segment"
)

// Phase is the prompt-editing state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDrawing
	PhaseHasPrompt
)

func (p Phase) String() string {
	switch p {
	case PhaseDrawing:
		return "drawing"
	case PhaseHasPrompt:
		return "prompt ready"
	default:
		return "idle"
	}
}

// State is the single owner of what the canvas shows and what the user has
// drawn. Prompt geometry is kept in canvas space, as drawn, and converted to
// image space only when a segmentation is requested.
type State struct {
	mode segment.Mode

	original *image.NRGBA
	current  *image.NRGBA

	canvas image.Point
	box    geometry.DisplayBox

	anchor  image.Point
	rect    image.Rectangle
	hasRect bool
	drawing bool
	points  []image.Point

	busy bool
}

// NewState starts in mode with no image.
func NewState(mode segment.Mode) *State { return &State{mode: mode} }

func (s *State) Mode() segment.Mode { return s.mode }

// SetMode switches mode, dropping any prompt and restoring the unsegmented
// image. It reports whether anything changed.
func (s *State) SetMode(m segment.Mode) bool {
	if m == s.mode {
		return false
	}
	s.mode = m
	s.Clear()
	return true
}

// SetImage installs a freshly loaded image as both the original and the
// displayed image.
func (s *State) SetImage(img *image.NRGBA) {
	s.original = img
	s.current = img
	s.relayout()
	s.ClearPrompt()
}

// ShowResult displays a composited segmentation result. The original stays
// the base for the next run.
func (s *State) ShowResult(img *image.NRGBA) {
	if img == nil {
		return
	}
	s.current = img
	s.relayout()
	s.ClearPrompt()
}

// Unload forgets the image, e.g. after a failed load.
func (s *State) Unload() {
	s.original, s.current = nil, nil
	s.box = geometry.DisplayBox{}
	s.ClearPrompt()
}

func (s *State) HasImage() bool         { return s.original != nil }
func (s *State) Original() *image.NRGBA { return s.original }
func (s *State) Current() *image.NRGBA  { return s.current }

// Canvas is the last known canvas size.
func (s *State) Canvas() image.Point { return s.canvas }

// DisplayBox is where the current image sits on the canvas.
func (s *State) DisplayBox() geometry.DisplayBox { return s.box }

// Resize records a new canvas size. A real change recomputes the display box
// and discards the prompt, whose canvas coordinates no longer line up.
func (s *State) Resize(canvas image.Point) bool {
	if canvas == s.canvas {
		return false
	}
	s.canvas = canvas
	s.relayout()
	s.ClearPrompt()
	return true
}

func (s *State) relayout() {
	if s.current == nil {
		s.box = geometry.DisplayBox{}
		return
	}
	s.box = geometry.ComputeDisplayBox(s.canvas, s.current.Bounds().Size())
}

// SetBusy marks a task in flight. Pointer input is ignored while busy.
func (s *State) SetBusy(b bool) { s.busy = b }
func (s *State) Busy() bool     { return s.busy }

// PointerDown starts a box or adds a point, depending on mode. Presses
// outside the image are ignored. It reports whether the overlay changed.
func (s *State) PointerDown(p image.Point) bool {
	if s.busy || s.current == nil || !geometry.IsInside(p, s.box) {
		return false
	}
	switch s.mode {
	case segment.ModeBox:
		s.drawing = true
		s.anchor = p
		s.rect = geometry.NormalizeRect(p, p)
		s.hasRect = true
		return true
	case segment.ModePointAndClick:
		s.points = append(s.points, p)
		return true
	}
	return false
}

// PointerDrag stretches the box being drawn, clamped to the image.
func (s *State) PointerDrag(p image.Point) bool {
	if !s.drawing {
		return false
	}
	s.rect = geometry.NormalizeRect(s.anchor, geometry.ClampToBox(p, s.box))
	return true
}

// PointerUp completes the box being drawn.
func (s *State) PointerUp(p image.Point) bool {
	if !s.drawing {
		return false
	}
	s.rect = geometry.NormalizeRect(s.anchor, geometry.ClampToBox(p, s.box))
	s.drawing = false
	return true
}

// ClearPrompt drops the box and points.
func (s *State) ClearPrompt() {
	s.drawing = false
	s.hasRect = false
	s.rect = image.Rectangle{}
	s.points = nil
}

// Clear drops the prompt and reverts the display to the unsegmented image.
func (s *State) Clear() {
	s.ClearPrompt()
	if s.original != nil && s.current != s.original {
		s.current = s.original
		s.relayout()
	}
}

// Phase reports the prompt-editing state.
func (s *State) Phase() Phase {
	switch {
	case s.drawing:
		return PhaseDrawing
	case s.hasRect || len(s.points) > 0:
		return PhaseHasPrompt
	default:
		return PhaseIdle
	}
}

// CanRun reports whether Run should be enabled: an image is loaded, nothing is
// in flight and the prompt has the shape the mode needs.
func (s *State) CanRun() bool {
	if s.busy || s.original == nil {
		return false
	}
	switch s.mode {
	case segment.ModeEverything:
		return true
	case segment.ModeBox:
		return s.hasRect && !s.drawing
	case segment.ModePointAndClick:
		return len(s.points) > 0
	}
	return false
}

// Overlay returns the prompt in canvas space for drawing.
func (s *State) Overlay() (rect image.Rectangle, hasRect bool, points []image.Point) {
	return s.rect, s.hasRect, s.points
}

// PromptSnapshot converts the active prompt to image space. Everything mode
// uses a box covering the whole original image. ErrUnsupportedMode is returned
// when the mode's prompt is missing.
func (s *State) PromptSnapshot() (segment.Prompt, error) {
	if s.original == nil {
		return segment.Prompt{}, segment.ErrNoImage
	}
	switch s.mode {
	case segment.ModeEverything:
		b := segment.FullImageBox(s.original.Bounds().Size())
		return segment.Prompt{Box: &b}, nil
	case segment.ModeBox:
		if s.hasRect && !s.drawing {
			r := image.Rectangle{
				Min: geometry.ToImageSpace(s.rect.Min, s.box),
				Max: geometry.ToImageSpace(s.rect.Max, s.box),
			}
			b := segment.BoxFromRect(r)
			return segment.Prompt{Box: &b}, nil
		}
	case segment.ModePointAndClick:
		if len(s.points) > 0 {
			pts := make([]image.Point, len(s.points))
			for i, p := range s.points {
				pts[i] = geometry.ToImageSpace(p, s.box)
			}
			return segment.Prompt{Points: pts}, nil
		}
	}
	return segment.Prompt{}, errors.Wrapf(segment.ErrUnsupportedMode, "%s mode without prompt", s.mode)
}
