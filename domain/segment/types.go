package segment

import (
	"fmt"
	"image"
	"strings"

	"github.com/pkg/errors"
)

// Mode selects which prompt shape is collected and which segmentation call runs.
type Mode int

const (
	ModeEverything Mode = iota
	ModeBox
	ModePointAndClick
)

// Modes lists all modes in menu order.
var Modes = []Mode{ModeEverything, ModeBox, ModePointAndClick}

func (m Mode) String() string {
	switch m {
	case ModeEverything:
		return "Everything"
	case ModeBox:
		return "Box"
	case ModePointAndClick:
		return "Point & Click"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts the menu label or a compact spelling ("point", "box").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "everything", "all":
		return ModeEverything, nil
	case "box":
		return ModeBox, nil
	case "point & click", "point", "points", "pointandclick":
		return ModePointAndClick, nil
	}
	return ModeEverything, errors.Errorf("unknown mode %q", s)
}

// Box is an inclusive image-space rectangle [XMin, YMin, XMax, YMax].
type Box struct {
	XMin, YMin, XMax, YMax int
}

// FullImageBox covers every pixel of an image of the given size.
func FullImageBox(size image.Point) Box {
	return Box{XMin: 0, YMin: 0, XMax: size.X - 1, YMax: size.Y - 1}
}

// BoxFromRect converts a normalized rectangle to a Box using its corners as is.
func BoxFromRect(r image.Rectangle) Box {
	r = r.Canon()
	return Box{XMin: r.Min.X, YMin: r.Min.Y, XMax: r.Max.X, YMax: r.Max.Y}
}

func (b Box) valid() bool { return b.XMin <= b.XMax && b.YMin <= b.YMax }

// Prompt is the spatial hint handed to the model: either a box or a set of
// positive points, never both.
type Prompt struct {
	Box    *Box
	Points []image.Point
}

// Mask is a boolean per-pixel mask with the model's confidence score.
type Mask struct {
	Width, Height int
	Bits          []bool
	Score         float64
}

// NewMask allocates an empty w x h mask.
func NewMask(w, h int, score float64) Mask {
	return Mask{Width: w, Height: h, Bits: make([]bool, w*h), Score: score}
}

// At reports whether (x, y) is set. Out-of-range coordinates are unset.
func (m Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Bits[y*m.Width+x]
}

// Set marks (x, y). Out-of-range coordinates are ignored.
func (m Mask) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Bits[y*m.Width+x] = v
}

// Area counts set pixels.
func (m Mask) Area() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// MaskSet is the output of one segmentation call.
type MaskSet []Mask

// Best returns the highest scoring mask; the first wins on ties.
func (ms MaskSet) Best() (Mask, bool) {
	if len(ms) == 0 {
		return Mask{}, false
	}
	best := 0
	for i := 1; i < len(ms); i++ {
		if ms[i].Score > ms[best].Score {
			best = i
		}
	}
	return ms[best], true
}
