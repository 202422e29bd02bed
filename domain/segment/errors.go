package segment

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrModelInference marks every failure raised while talking to the model.
	ErrModelInference = errors.New("model inference failed")
	// ErrNoImage is returned when segmenting before SetImage succeeded.
	ErrNoImage = errors.New("no image set")
	// ErrInvalidPrompt is returned for empty point lists or inverted boxes.
	ErrInvalidPrompt = errors.New("invalid prompt")
)

// InferenceError wraps a model failure so callers can match ErrModelInference
// and the underlying cause.
type InferenceError struct {
	Op  string
	Err error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrModelInference, e.Err)
}

func (e *InferenceError) Unwrap() []error { return []error{ErrModelInference, e.Err} }

func inferenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	var ie *InferenceError
	if errors.As(err, &ie) {
		return err
	}
	return &InferenceError{Op: op, Err: err}
}

// ErrUnsupportedMode is returned when a segmentation request carries no prompt
// of the shape its mode needs. It signals caller misuse and is not shown to the
// user.
var ErrUnsupportedMode = errors.New("segmentation mode not supported")
