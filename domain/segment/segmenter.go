// Package segment adapts a pretrained promptable segmentation model. The model
// itself is a black box behind the Model interface; Segmenter adds prompt
// validation, candidate selection and error classification.
package segment

import (
	"context"
	"image"
	"log/slog"
	"time"

	"github.com/pkg/errors"
)

// MaxCandidates bounds the masks kept from a multimask request.
const MaxCandidates = 3

// Model is the capability a segmentation backend provides. Implementations are
// used from a single goroutine and need not be safe for concurrent use.
type Model interface {
	// SetImage computes the image embedding used by subsequent Predict calls.
	SetImage(img image.Image) error
	// Predict returns candidate masks for p. With multimask false the model
	// returns its single consensus mask.
	Predict(ctx context.Context, p Prompt, multimask bool) (MaskSet, error)
}

// Segmenter runs box and point prompts against a Model.
type Segmenter struct {
	model  Model
	logger *slog.Logger
	size   image.Point
	ready  bool
}

// NewSegmenter wraps model.
func NewSegmenter(model Model, logger *slog.Logger) *Segmenter {
	return &Segmenter{model: model, logger: logger}
}

// SetImage (re)initializes the model embedding for img. It is expensive and
// should run once per distinct loaded image.
func (s *Segmenter) SetImage(img image.Image) error {
	s.ready = false
	if img == nil {
		return inferenceError("set image", errors.New("nil image"))
	}
	start := time.Now()
	if err := s.model.SetImage(img); err != nil {
		return inferenceError("set image", err)
	}
	s.size = img.Bounds().Size()
	s.ready = true
	if s.logger != nil {
		s.logger.Debug("image embedded", "width", s.size.X, "height", s.size.Y, "took", time.Since(start))
	}
	return nil
}

// ImageSize returns the size passed to the last successful SetImage.
func (s *Segmenter) ImageSize() (image.Point, bool) { return s.size, s.ready }

// SegmentWithBox returns every candidate mask for box, unfiltered.
func (s *Segmenter) SegmentWithBox(ctx context.Context, box Box) (MaskSet, error) {
	const op = "segment box"
	if !s.ready {
		return nil, inferenceError(op, ErrNoImage)
	}
	if !box.valid() {
		return nil, inferenceError(op, errors.Wrapf(ErrInvalidPrompt, "box %v", box))
	}
	masks, err := s.model.Predict(ctx, Prompt{Box: &box}, true)
	if err != nil {
		return nil, inferenceError(op, err)
	}
	if len(masks) > MaxCandidates {
		masks = masks[:MaxCandidates]
	}
	return masks, nil
}

// SegmentWithPoints returns one mask for positive points. A single point asks
// for several candidates and keeps the best scoring one; two or more points
// ask the model for its single consensus mask directly.
func (s *Segmenter) SegmentWithPoints(ctx context.Context, points []image.Point) (Mask, error) {
	const op = "segment points"
	if !s.ready {
		return Mask{}, inferenceError(op, ErrNoImage)
	}
	if len(points) == 0 {
		return Mask{}, inferenceError(op, errors.Wrap(ErrInvalidPrompt, "no points"))
	}
	multimask := len(points) == 1
	masks, err := s.model.Predict(ctx, Prompt{Points: points}, multimask)
	if err != nil {
		return Mask{}, inferenceError(op, err)
	}
	best, ok := masks.Best()
	if !ok {
		return Mask{}, inferenceError(op, errors.New("model returned no masks"))
	}
	return best, nil
}
