package segment

import (
	"context"
	"image"

	"github.com/pkg/errors"
)

// Unavailable returns a Model that fails every call with cause. It stands in
// when the real backend cannot be loaded so the rest of the UI stays usable.
func Unavailable(cause error) Model {
	if cause == nil {
		cause = errors.New("segmentation model not loaded")
	}
	return unavailable{cause: cause}
}

type unavailable struct{ cause error }

func (u unavailable) SetImage(image.Image) error { return u.cause }

func (u unavailable) Predict(context.Context, Prompt, bool) (MaskSet, error) {
	return nil, u.cause
}
