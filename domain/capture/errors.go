package capture

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds returned by Client. Match with errors.Is.
var (
	ErrNetwork         = errors.New("network error")
	ErrNoCapturesFound = errors.New("no captures found")
	ErrParse           = errors.New("malformed response")
)

// Error records the failing operation, the error kind and the cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}
