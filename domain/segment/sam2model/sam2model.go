// Package sam2model backs segment.Model with the SAM2 ONNX engine.
package sam2model

import (
	"context"
	"image"
	"image/color"
	"log/slog"

	"github.com/getcharzp/go-vision/sam2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/soocke/microseg-go/domain/segment"
)

// Config locates the ONNX runtime and the two SAM2 model halves.
type Config struct {
	OnnxRuntimeLibPath string
	EncoderModelPath   string
	DecoderModelPath   string
	UseCuda            bool
}

// Model implements segment.Model. The engine decodes one mask per request, so
// multimask requests yield a single candidate.
type Model struct {
	logger *slog.Logger
	size   image.Point

	encode        func(image.Image) error
	decode        func([]sam2.Point) (image.Image, float64, error)
	releaseImage  func()
	destroyEngine func()
}

var _ segment.Model = (*Model)(nil)

// New loads the engine. It fails when the runtime library or weights are missing.
func New(cfg Config, logger *slog.Logger) (*Model, error) {
	sc := sam2.DefaultConfig()
	if cfg.OnnxRuntimeLibPath != "" {
		sc.OnnxRuntimeLibPath = cfg.OnnxRuntimeLibPath
	}
	if cfg.EncoderModelPath != "" {
		sc.EncodeModelPath = cfg.EncoderModelPath
	}
	if cfg.DecoderModelPath != "" {
		sc.DecodeModelPath = cfg.DecoderModelPath
	}
	sc.UseCuda = cfg.UseCuda

	engine, err := sam2.NewEngine(sc)
	if err != nil {
		return nil, errors.Wrap(err, "sam2 engine")
	}
	m := &Model{logger: logger}
	m.destroyEngine = func() { engine.Destroy() }
	m.encode = func(img image.Image) error {
		imgCtx, err := engine.EncodeImage(img)
		if err != nil {
			return err
		}
		m.decode = func(pts []sam2.Point) (image.Image, float64, error) {
			mask, score, err := imgCtx.Decode(pts)
			if err != nil {
				return nil, 0, err
			}
			return mask, float64(score), nil
		}
		m.releaseImage = func() { imgCtx.Destroy() }
		return nil
	}
	if logger != nil {
		logger.Info("sam2 engine loaded", "encoder", sc.EncodeModelPath, "decoder", sc.DecodeModelPath, "cuda", sc.UseCuda)
	}
	return m, nil
}

// SetImage encodes img, replacing the previous embedding.
func (m *Model) SetImage(img image.Image) error {
	if m.releaseImage != nil {
		m.releaseImage()
		m.releaseImage, m.decode = nil, nil
	}
	if err := m.encode(img); err != nil {
		return errors.Wrap(err, "encode image")
	}
	m.size = img.Bounds().Size()
	return nil
}

// Predict decodes one mask for the prompt.
func (m *Model) Predict(ctx context.Context, p segment.Prompt, _ bool) (segment.MaskSet, error) {
	if m.decode == nil {
		return nil, segment.ErrNoImage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pts := toPoints(p)
	if len(pts) == 0 {
		return nil, segment.ErrInvalidPrompt
	}
	out, score, err := m.decode(pts)
	if err != nil {
		return nil, errors.Wrap(err, "decode mask")
	}
	return segment.MaskSet{FromImage(out, m.size, score)}, nil
}

// Close releases the image context and the engine.
func (m *Model) Close() error {
	var err error
	if m.releaseImage != nil {
		err = multierr.Append(err, guard("release image context", m.releaseImage))
		m.releaseImage, m.decode = nil, nil
	}
	if m.destroyEngine != nil {
		err = multierr.Append(err, guard("destroy engine", m.destroyEngine))
		m.destroyEngine = nil
	}
	return err
}

func toPoints(p segment.Prompt) []sam2.Point {
	if p.Box != nil {
		return []sam2.Point{
			{X: float32(p.Box.XMin), Y: float32(p.Box.YMin), Label: sam2.LabelBoxTopLeft},
			{X: float32(p.Box.XMax), Y: float32(p.Box.YMax), Label: sam2.LabelBoxBotRight},
		}
	}
	pts := make([]sam2.Point, 0, len(p.Points))
	for _, pt := range p.Points {
		pts = append(pts, sam2.Point{X: float32(pt.X), Y: float32(pt.Y), Label: sam2.LabelForeground})
	}
	return pts
}

// FromImage thresholds a decoded mask image into a segment.Mask of the given
// size, sampling nearest-neighbour when the sizes differ.
func FromImage(src image.Image, size image.Point, score float64) segment.Mask {
	if size.X <= 0 || size.Y <= 0 {
		size = src.Bounds().Size()
	}
	out := segment.NewMask(size.X, size.Y, score)
	b := src.Bounds()
	if b.Empty() {
		return out
	}
	for y := 0; y < size.Y; y++ {
		sy := b.Min.Y + y*b.Dy()/size.Y
		for x := 0; x < size.X; x++ {
			sx := b.Min.X + x*b.Dx()/size.X
			g := color.GrayModel.Convert(src.At(sx, sy)).(color.Gray)
			if g.Y > 127 {
				out.Set(x, y, true)
			}
		}
	}
	return out
}

func guard(op string, f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("%s: %v", op, r)
		}
	}()
	f()
	return nil
}
