package task

import (
	"image"
	"time"

	"github.com/soocke/microseg-go/domain/capture"
	"github.com/soocke/microseg-go/domain/segment"
)

// DownloadResult is produced by a successful Download.
type DownloadResult struct {
	Capture capture.Capture
	Path    string
}

// ImageResult is produced by a successful Upload. Image is never mutated after
// it is handed over.
type ImageResult struct {
	Path  string
	Image *image.NRGBA
}

// SegmentResult carries the composited image for display.
type SegmentResult struct {
	Mode   segment.Mode
	Masks  segment.MaskSet
	Image  *image.NRGBA
	Scores []float64
}

// Finished is posted to the inbox once per executed task.
type Finished struct {
	Task     Task
	State    State
	Result   any
	Err      error
	Duration time.Duration
}
