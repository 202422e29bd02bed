// Package geometry maps points between canvas space (widget pixels) and image
// space (pixels of the displayed image).
//
// The displayed image is never scaled by the canvas: a pre-sized thumbnail is
// centered inside the canvas, so the mapping is a pure translation by the
// DisplayBox origin.
package geometry

import (
	"image"
	"strconv"
)

// DisplayBox is the canvas-space rectangle occupied by the rendered image.
// Min is the top-left corner; Max is Min plus the image size.
type DisplayBox = image.Rectangle

// ComputeDisplayBox centers an image of size img inside a canvas of size canvas.
// Offsets use floor division, so an image larger than the canvas gets a
// negative origin and the box extends past the visible area.
func ComputeDisplayBox(canvas, img image.Point) DisplayBox {
	x0 := floorDiv(canvas.X-img.X, 2)
	y0 := floorDiv(canvas.Y-img.Y, 2)
	return image.Rect(x0, y0, x0+img.X, y0+img.Y)
}

// ToImageSpace subtracts the box origin. No clamping is performed; callers
// validate with IsInside first or accept out-of-range results.
func ToImageSpace(p image.Point, box DisplayBox) image.Point {
	return p.Sub(box.Min)
}

// ToCanvasSpace is the inverse of ToImageSpace.
func ToCanvasSpace(p image.Point, box DisplayBox) image.Point {
	return p.Add(box.Min)
}

// IsInside reports whether p lies within box, edges included.
func IsInside(p image.Point, box DisplayBox) bool {
	return box.Min.X <= p.X && p.X <= box.Max.X && box.Min.Y <= p.Y && p.Y <= box.Max.Y
}

// ClampToBox pins p to the box edges (inclusive).
func ClampToBox(p image.Point, box DisplayBox) image.Point {
	return image.Pt(clamp(p.X, box.Min.X, box.Max.X), clamp(p.Y, box.Min.Y, box.Max.Y))
}

// NormalizeRect orders two arbitrary corners into a rectangle whose Min holds
// the smaller coordinates.
func NormalizeRect(a, b image.Point) image.Rectangle {
	return image.Rectangle{Min: a, Max: b}.Canon()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ParseSize reads a widget size reported as decimal strings, as Tk event
// fields are. It reports false unless both parse and are positive.
func ParseSize(w, h string) (image.Point, bool) {
	x, err := strconv.Atoi(w)
	if err != nil {
		return image.Point{}, false
	}
	y, err := strconv.Atoi(h)
	if err != nil || x <= 0 || y <= 0 {
		return image.Point{}, false
	}
	return image.Pt(x, y), true
}
