package view

import (
	"image"

	"github.com/soocke/microseg-go/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// CanvasView shows pre-rendered canvas frames in a label. Pointer events are
// bound on the label itself, so event coordinates are canvas coordinates.
type CanvasView interface {
	Show(img image.Image)
	Reset()
	Widget() *LabelWidget
}

type canvasView struct {
	label     *LabelWidget
	prevPhoto *Img // last Tk photo image instance
	bg        string
}

// NewCanvasView creates the label inside parent and grids it to fill the cell.
func NewCanvasView(parent *FrameWidget, bg string) CanvasView {
	photo := NewPhoto(Data(images.EncodePNG(image.NewNRGBA(image.Rect(0, 0, 1, 1)))))
	label := Label(Image(photo), Background(bg), Borderwidth(0), Padx(0), Pady(0), Highlightthickness(0))
	Grid(label, In(parent), Row(0), Column(0), Sticky("nsew"))
	GridRowConfigure(parent, 0, Weight(1))
	GridColumnConfigure(parent, 0, Weight(1))
	return &canvasView{label: label, prevPhoto: photo, bg: bg}
}

func (v *canvasView) Widget() *LabelWidget { return v.label }

// Show replaces the displayed frame. The previous photo is deleted so old
// pixel buffers do not accumulate inside Tk.
func (v *canvasView) Show(img image.Image) {
	if v.label == nil || img == nil {
		return
	}
	pngBytes := images.EncodePNG(img)
	if v.prevPhoto != nil {
		v.prevPhoto.Delete()
	}
	newPhoto := NewPhoto(Data(pngBytes))
	v.prevPhoto = newPhoto
	v.label.Configure(Image(newPhoto))
}

// Reset shows an empty canvas.
func (v *canvasView) Reset() {
	if v.label == nil {
		return
	}
	placeholder := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	if v.prevPhoto != nil {
		v.prevPhoto.Delete()
	}
	v.prevPhoto = NewPhoto(Data(images.EncodePNG(placeholder)))
	v.label.Configure(Image(v.prevPhoto))
}
