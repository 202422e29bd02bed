package worker

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/soocke/microseg-go/domain/capture"
	"github.com/soocke/microseg-go/domain/segment"
	"github.com/soocke/microseg-go/domain/task"
	"github.com/soocke/microseg-go/ui/images"
)

type fakeCaptures struct {
	cp      capture.Capture
	listErr error
	dlErr   error
	path    string
}

func (f *fakeCaptures) GetLastCapture(context.Context) (capture.Capture, error) {
	return f.cp, f.listErr
}

func (f *fakeCaptures) DownloadCapture(_ context.Context, cp capture.Capture) (string, error) {
	if f.dlErr != nil {
		return "", f.dlErr
	}
	return f.path, nil
}

type fakeSegmenter struct {
	setCalls   int
	setErr     error
	lastBox    *segment.Box
	lastPoints []image.Point
	size       image.Point
}

func (f *fakeSegmenter) SetImage(img image.Image) error {
	f.setCalls++
	f.size = img.Bounds().Size()
	return f.setErr
}

func (f *fakeSegmenter) SegmentWithBox(_ context.Context, b segment.Box) (segment.MaskSet, error) {
	f.lastBox = &b
	m1 := segment.NewMask(f.size.X, f.size.Y, 0.9)
	m1.Set(0, 0, true)
	m2 := segment.NewMask(f.size.X, f.size.Y, 0.4)
	return segment.MaskSet{m1, m2}, nil
}

func (f *fakeSegmenter) SegmentWithPoints(_ context.Context, pts []image.Point) (segment.Mask, error) {
	f.lastPoints = pts
	m := segment.NewMask(f.size.X, f.size.Y, 0.7)
	m.Set(1, 1, true)
	return m, nil
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	f, err := os.Create(path)
	test.That(t, err, test.ShouldBeNil)
	defer f.Close()
	test.That(t, png.Encode(f, img), test.ShouldBeNil)
}

func TestHandleDownload(t *testing.T) {
	caps := &fakeCaptures{cp: capture.Capture{ID: "2", Name: "b.png"}, path: "data/b.png"}
	h := New(caps, &fakeSegmenter{}, image.Pt(100, 100), nil)

	res, err := h.HandleDownload(context.Background(), task.NewDownload())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Path, test.ShouldEqual, "data/b.png")
	test.That(t, res.Capture.ID, test.ShouldEqual, "2")

	caps.listErr = errors.Wrap(capture.ErrNoCapturesFound, "list captures")
	_, err = h.HandleDownload(context.Background(), task.NewDownload())
	test.That(t, errors.Is(err, capture.ErrNoCapturesFound), test.ShouldBeTrue)
}

func TestHandleUpload_FitsAndEmbedsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.png")
	writePNG(t, path, 400, 200)
	seg := &fakeSegmenter{}
	h := New(&fakeCaptures{}, seg, image.Pt(100, 100), nil)

	res, err := h.HandleUpload(context.Background(), task.NewUpload(path))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Image.Bounds().Size(), test.ShouldResemble, image.Pt(100, 50))
	test.That(t, seg.setCalls, test.ShouldEqual, 1)
	test.That(t, seg.size, test.ShouldResemble, image.Pt(100, 50))

	// Segmenting reuses the embedding.
	box := segment.FullImageBox(image.Pt(100, 50))
	_, err = h.HandleSegment(context.Background(), task.NewSegment(segment.ModeEverything, segment.Prompt{Box: &box}))
	test.That(t, err, test.ShouldBeNil)
	_, err = h.HandleSegment(context.Background(), task.NewSegment(segment.ModeEverything, segment.Prompt{Box: &box}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, seg.setCalls, test.ShouldEqual, 1)
}

func TestHandleUpload_Failures(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.jpg")
	test.That(t, os.WriteFile(bad, []byte("nope"), 0o644), test.ShouldBeNil)
	h := New(&fakeCaptures{}, &fakeSegmenter{}, image.Pt(100, 100), nil)

	_, err := h.HandleUpload(context.Background(), task.NewUpload(bad))
	test.That(t, errors.Is(err, images.ErrImageDecode), test.ShouldBeTrue)

	good := filepath.Join(dir, "ok.png")
	writePNG(t, good, 10, 10)
	seg := &fakeSegmenter{setErr: errors.Wrap(segment.ErrModelInference, "encoder")}
	h = New(&fakeCaptures{}, seg, image.Pt(100, 100), nil)
	_, err = h.HandleUpload(context.Background(), task.NewUpload(good))
	test.That(t, errors.Is(err, segment.ErrModelInference), test.ShouldBeTrue)

	// A failed embedding leaves nothing to segment.
	box := segment.FullImageBox(image.Pt(10, 10))
	_, err = h.HandleSegment(context.Background(), task.NewSegment(segment.ModeBox, segment.Prompt{Box: &box}))
	test.That(t, errors.Is(err, segment.ErrNoImage), test.ShouldBeTrue)
}

func TestHandleSegment_ModesAndComposite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.png")
	writePNG(t, path, 4, 4)
	seg := &fakeSegmenter{}
	h := New(&fakeCaptures{}, seg, image.Pt(100, 100), nil)
	_, err := h.HandleUpload(context.Background(), task.NewUpload(path))
	test.That(t, err, test.ShouldBeNil)

	box := segment.Box{XMin: 0, YMin: 0, XMax: 2, YMax: 2}
	res, err := h.HandleSegment(context.Background(), task.NewSegment(segment.ModeBox, segment.Prompt{Box: &box}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, *seg.lastBox, test.ShouldResemble, box)
	test.That(t, res.Masks, test.ShouldHaveLength, 2)
	test.That(t, res.Scores, test.ShouldResemble, []float64{0.9, 0.4})
	// first hue is red: 0.6*0 + 0.4*255 rounded
	test.That(t, res.Image.NRGBAAt(0, 0), test.ShouldResemble, color.NRGBA{R: 102, A: 255})
	test.That(t, res.Image.NRGBAAt(3, 3), test.ShouldResemble, color.NRGBA{A: 255})

	res, err = h.HandleSegment(context.Background(), task.NewSegment(segment.ModePointAndClick, segment.Prompt{Points: []image.Point{{1, 1}}}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Masks, test.ShouldHaveLength, 1)
	test.That(t, seg.lastPoints, test.ShouldResemble, []image.Point{{1, 1}})

	_, err = h.HandleSegment(context.Background(), task.NewSegment(segment.ModeBox, segment.Prompt{}))
	test.That(t, errors.Is(err, segment.ErrUnsupportedMode), test.ShouldBeTrue)
	_, err = h.HandleSegment(context.Background(), task.NewSegment(segment.ModePointAndClick, segment.Prompt{}))
	test.That(t, errors.Is(err, segment.ErrUnsupportedMode), test.ShouldBeTrue)
}
