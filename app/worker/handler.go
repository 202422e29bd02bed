// Package worker executes queued tasks against the capture service and the
// segmentation model.
package worker

import (
	"context"
	"image"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/soocke/microseg-go/domain/capture"
	"github.com/soocke/microseg-go/domain/segment"
	"github.com/soocke/microseg-go/domain/task"
	"github.com/soocke/microseg-go/ui/images"
)

// CaptureSource is the part of the capture client the worker needs.
type CaptureSource interface {
	GetLastCapture(ctx context.Context) (capture.Capture, error)
	DownloadCapture(ctx context.Context, cp capture.Capture) (string, error)
}

// Segmenter is the part of segment.Segmenter the worker needs.
type Segmenter interface {
	SetImage(img image.Image) error
	SegmentWithBox(ctx context.Context, box segment.Box) (segment.MaskSet, error)
	SegmentWithPoints(ctx context.Context, points []image.Point) (segment.Mask, error)
}

// Handler implements task.Handler. It owns the loaded image on the worker
// goroutine; the UI receives the same pixels through ImageResult and never
// writes to them.
type Handler struct {
	captures  CaptureSource
	segmenter Segmenter
	maxSize   image.Point
	logger    *slog.Logger

	loaded *image.NRGBA
}

var _ task.Handler = (*Handler)(nil)

// New returns a handler that fits loaded images within maxSize.
func New(captures CaptureSource, segmenter Segmenter, maxSize image.Point, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{captures: captures, segmenter: segmenter, maxSize: maxSize, logger: logger}
}

// HandleDownload fetches the newest capture into the data directory. The
// presenter chains the follow-up upload.
func (w *Handler) HandleDownload(ctx context.Context, t task.Download) (task.DownloadResult, error) {
	cp, err := w.captures.GetLastCapture(ctx)
	if err != nil {
		return task.DownloadResult{}, err
	}
	w.logger.Info("newest capture", "task", t.ID().String(), "id", cp.ID, "name", cp.Name, "time", cp.RawTime)
	path, err := w.captures.DownloadCapture(ctx, cp)
	if err != nil {
		return task.DownloadResult{}, err
	}
	return task.DownloadResult{Capture: cp, Path: path}, nil
}

// HandleUpload decodes a local file, fits it to the display bound and embeds
// it in the model. The embedding is computed once here and reused by every
// segmentation of this image.
func (w *Handler) HandleUpload(ctx context.Context, t task.Upload) (task.ImageResult, error) {
	img, err := images.Load(t.Path)
	if err != nil {
		return task.ImageResult{}, err
	}
	src := img.Bounds().Size()
	img = images.ScaleToFit(img, w.maxSize.X, w.maxSize.Y)
	w.loaded = nil
	if err := w.segmenter.SetImage(img); err != nil {
		return task.ImageResult{}, errors.Wrapf(err, "prepare %s", t.Path)
	}
	w.loaded = img
	w.logger.Info("image loaded", "task", t.ID().String(), "path", t.Path,
		"source", src.String(), "display", img.Bounds().Size().String())
	return task.ImageResult{Path: t.Path, Image: img}, nil
}

// HandleSegment runs the prompt for the task's mode and composites the masks
// over the loaded image.
func (w *Handler) HandleSegment(ctx context.Context, t task.Segment) (task.SegmentResult, error) {
	if w.loaded == nil {
		return task.SegmentResult{}, segment.ErrNoImage
	}
	var masks segment.MaskSet
	switch t.Mode {
	case segment.ModeEverything, segment.ModeBox:
		if t.Prompt.Box == nil {
			return task.SegmentResult{}, errors.Wrapf(segment.ErrUnsupportedMode, "%s without box", t.Mode)
		}
		ms, err := w.segmenter.SegmentWithBox(ctx, *t.Prompt.Box)
		if err != nil {
			return task.SegmentResult{}, err
		}
		masks = ms
	case segment.ModePointAndClick:
		if len(t.Prompt.Points) == 0 {
			return task.SegmentResult{}, errors.Wrapf(segment.ErrUnsupportedMode, "%s without points", t.Mode)
		}
		m, err := w.segmenter.SegmentWithPoints(ctx, t.Prompt.Points)
		if err != nil {
			return task.SegmentResult{}, err
		}
		masks = segment.MaskSet{m}
	default:
		return task.SegmentResult{}, errors.Wrapf(segment.ErrUnsupportedMode, "%s", t.Mode)
	}

	scores := make([]float64, len(masks))
	for i, m := range masks {
		scores[i] = m.Score
	}
	w.logger.Info("segmented", "task", t.ID().String(), "mode", t.Mode.String(), "masks", len(masks), "scores", scores)
	return task.SegmentResult{
		Mode:   t.Mode,
		Masks:  masks,
		Image:  images.Composite(w.loaded, masks),
		Scores: scores,
	}, nil
}
