package rimage

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

var (
	// ErrInvalidData is returned when raw data violates the invariants of an image variant.
	ErrInvalidData = errors.New("invalid image data")
	// ErrNotSupported is returned when an operation is not defined for an image variant.
	ErrNotSupported = errors.New("operation not supported")
)

func newInvalidDataError(kind Kind, format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidData, "%s image: "+format, append([]interface{}{kind}, args...)...)
}

func newDtypeError(kind Kind, got tensor.Dtype, want ...tensor.Dtype) error {
	return newInvalidDataError(kind, "illegal data type %v, expected one of %v", got, want)
}

func newChannelsError(kind Kind, got int, want ...int) error {
	return newInvalidDataError(kind, "illegal number of channels %d, expected one of %v", got, want)
}

func newNotSupportedError(kind Kind, op string) error {
	return errors.Wrapf(ErrNotSupported, "%s on %s image", op, kind)
}
