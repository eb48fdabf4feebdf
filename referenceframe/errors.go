package referenceframe

import "github.com/pkg/errors"

// ErrFrameMismatch is returned when two geometric values expressed in different frames are combined.
var ErrFrameMismatch = errors.New("frame mismatch")

// NewFrameMismatchError returns an error indicating that the expected frame does not match the given one.
func NewFrameMismatchError(expected, actual string) error {
	return errors.Wrapf(ErrFrameMismatch, "expected frame %q but got %q", expected, actual)
}
