// Package referenceframe tags geometric values with the name of the coordinate
// system they are expressed in. Frames are compared, never transformed: two
// values may be combined only if their frames are equal.
package referenceframe

// Unspecified is the frame given to values constructed without one.
const Unspecified = "unspecified"

// Framed is implemented by anything that carries a frame tag.
type Framed interface {
	Frame() string
}

// OrDefault returns frame, or Unspecified when frame is empty.
func OrDefault(frame string) string {
	if frame == "" {
		return Unspecified
	}
	return frame
}

// Compatible reports whether two frame tags name the same coordinate system.
func Compatible(a, b string) bool {
	return a == b
}

// CheckCompatible returns a frame mismatch error if the frames of a and b differ.
func CheckCompatible(a, b Framed) error {
	if !Compatible(a.Frame(), b.Frame()) {
		return NewFrameMismatchError(a.Frame(), b.Frame())
	}
	return nil
}
