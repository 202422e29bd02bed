package images

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/soocke/microseg-go/domain/segment"
)

const (
	maskKeep  = 0.6
	maskTint  = 0.4
	dotRadius = 5
	boxStroke = 5
)

var (
	promptRed   = color.NRGBA{R: 255, A: 255}
	promptWhite = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// Palette returns n fully saturated hues spaced evenly around the HSV circle,
// starting at red.
func Palette(n int) []color.NRGBA {
	out := make([]color.NRGBA, n)
	for i := range out {
		r, g, b := colorful.Hsv(360*float64(i)/float64(n), 1, 1).RGB255()
		out[i] = color.NRGBA{R: r, G: g, B: b, A: 255}
	}
	return out
}

// Composite returns a copy of base with each mask blended in its own hue.
// Masks are applied in order, so overlapping regions carry every tint.
func Composite(base image.Image, masks segment.MaskSet) *image.NRGBA {
	out := clone(base)
	if len(masks) == 0 {
		return out
	}
	pal := Palette(len(masks))
	b := out.Bounds()
	for i, m := range masks {
		c := pal[i]
		for y := 0; y < b.Dy() && y < m.Height; y++ {
			for x := 0; x < b.Dx() && x < m.Width; x++ {
				if !m.At(x, y) {
					continue
				}
				o := out.PixOffset(b.Min.X+x, b.Min.Y+y)
				px := out.Pix[o : o+3 : o+3]
				px[0] = blend(px[0], c.R)
				px[1] = blend(px[1], c.G)
				px[2] = blend(px[2], c.B)
			}
		}
	}
	return out
}

func blend(p, c uint8) uint8 {
	return uint8(maskKeep*float64(p) + maskTint*float64(c) + 0.5)
}

// Frame renders a canvas-sized image: bg everywhere, img placed with its
// top-left at box.Min. Parts of img outside the canvas are cut off.
func Frame(canvas image.Point, img image.Image, box image.Rectangle, bg color.Color) *image.NRGBA {
	if canvas.X < 1 {
		canvas.X = 1
	}
	if canvas.Y < 1 {
		canvas.Y = 1
	}
	out := image.NewNRGBA(image.Rectangle{Max: canvas})
	draw.Draw(out, out.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	if img != nil {
		b := img.Bounds()
		draw.Draw(out, image.Rectangle{Min: box.Min, Max: box.Min.Add(b.Size())}, img, b.Min, draw.Src)
	}
	return out
}

// DrawPrompt draws the in-progress prompt onto dst: a red outline for r when
// hasRect is set and a red dot with a white rim per point.
func DrawPrompt(dst draw.Image, r image.Rectangle, hasRect bool, points []image.Point) {
	if hasRect {
		DrawRect(dst, r, boxStroke, promptRed)
	}
	for _, p := range points {
		DrawDot(dst, p, dotRadius, promptRed, promptWhite)
	}
}

// DrawRect strokes r inclusively with the given width, clipped to dst.
func DrawRect(dst draw.Image, r image.Rectangle, width int, c color.Color) {
	r = r.Canon()
	if width < 1 {
		width = 1
	}
	u := image.NewUniform(c)
	// inclusive corners: widen Max by one so a zero-size drag still shows
	outer := image.Rect(r.Min.X, r.Min.Y, r.Max.X+1, r.Max.Y+1)
	half := width / 2
	outer = image.Rect(outer.Min.X-half, outer.Min.Y-half, outer.Max.X+half, outer.Max.Y+half)
	clip := dst.Bounds()
	edges := []image.Rectangle{
		image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, outer.Min.Y+width),
		image.Rect(outer.Min.X, outer.Max.Y-width, outer.Max.X, outer.Max.Y),
		image.Rect(outer.Min.X, outer.Min.Y, outer.Min.X+width, outer.Max.Y),
		image.Rect(outer.Max.X-width, outer.Min.Y, outer.Max.X, outer.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(clip), u, image.Point{}, draw.Src)
	}
}

// DrawDot fills a disc of radius rad at p with fill and a one pixel rim.
func DrawDot(dst draw.Image, p image.Point, rad int, fill, rim color.Color) {
	clip := dst.Bounds()
	outer := rad * rad
	inner := (rad - 1) * (rad - 1)
	for dy := -rad; dy <= rad; dy++ {
		for dx := -rad; dx <= rad; dx++ {
			d := dx*dx + dy*dy
			if d > outer {
				continue
			}
			q := image.Pt(p.X+dx, p.Y+dy)
			if !q.In(clip) {
				continue
			}
			if d > inner {
				dst.Set(q.X, q.Y, rim)
			} else {
				dst.Set(q.X, q.Y, fill)
			}
		}
	}
}

func clone(img image.Image) *image.NRGBA {
	if img == nil {
		return image.NewNRGBA(image.Rectangle{})
	}
	b := img.Bounds()
	out := image.NewNRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)
	return out
}
