package utils

import (
	"github.com/pkg/errors"
)

// ErrUnsupportedExtension is returned when a file extension cannot be read or written.
var ErrUnsupportedExtension = errors.New("unsupported file extension")

// NewUnsupportedExtensionError is used when a path has an extension that is not one of the supported ones.
func NewUnsupportedExtensionError(path string, supported ...string) error {
	if len(supported) == 0 {
		return errors.Wrapf(ErrUnsupportedExtension, "%q", path)
	}
	return errors.Wrapf(ErrUnsupportedExtension, "%q (expected one of %v)", path, supported)
}

// NewUnexpectedTypeError is used when there is a type mismatch.
func NewUnexpectedTypeError(expected interface{}, actual interface{}) error {
	return errors.Errorf("expected %T but got %T", expected, actual)
}
