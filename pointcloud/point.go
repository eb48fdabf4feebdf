package pointcloud

import (
	"image"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/perception/referenceframe"
)

// NewVector convenience method for creating a vector.
func NewVector(x, y, z float64) r3.Vector {
	return r3.Vector{X: x, Y: y, Z: z}
}

// Point is a single 3D point tagged with the frame it is expressed in.
type Point struct {
	Vec   r3.Vector
	frame string
}

// NewPoint returns a 3D point in the given frame.
func NewPoint(v r3.Vector, frame string) Point {
	return Point{Vec: v, frame: referenceframe.OrDefault(frame)}
}

// Frame returns the frame of the point.
func (p Point) Frame() string {
	return p.frame
}

// Point2D is a single 2D point, typically a pixel (X is the column, Y is the row).
type Point2D struct {
	Vec   r2.Point
	frame string
}

// NewPoint2D returns a 2D point in the given frame.
func NewPoint2D(v r2.Point, frame string) Point2D {
	return Point2D{Vec: v, frame: referenceframe.OrDefault(frame)}
}

// Frame returns the frame of the point.
func (p Point2D) Frame() string {
	return p.frame
}

// ImageCoords is an ordered collection of integer pixel coordinates (X is the column, Y is the row).
type ImageCoords struct {
	coords []image.Point
	frame  string
}

// NewImageCoords returns a collection of pixel coordinates in the given frame. coords is not copied.
func NewImageCoords(coords []image.Point, frame string) *ImageCoords {
	return &ImageCoords{coords: coords, frame: referenceframe.OrDefault(frame)}
}

// Frame returns the frame of the coordinates.
func (ic *ImageCoords) Frame() string {
	return ic.frame
}

// Len returns the number of coordinates.
func (ic *ImageCoords) Len() int {
	return len(ic.coords)
}

// At returns the i-th coordinate.
func (ic *ImageCoords) At(i int) image.Point {
	return ic.coords[i]
}

// Coords returns a copy of the coordinates.
func (ic *ImageCoords) Coords() []image.Point {
	return append([]image.Point(nil), ic.coords...)
}

// Box is an axis aligned pixel box. Min and Max are both inclusive corners.
type Box struct {
	Min, Max image.Point
	frame    string
}

// NewBox returns a box spanning min to max in the given frame.
func NewBox(minPt, maxPt image.Point, frame string) (Box, error) {
	if minPt.X > maxPt.X || minPt.Y > maxPt.Y {
		return Box{}, errors.Errorf("box min %v must not exceed max %v", minPt, maxPt)
	}
	return Box{Min: minPt, Max: maxPt, frame: referenceframe.OrDefault(frame)}, nil
}

// Frame returns the frame of the box.
func (b Box) Frame() string {
	return b.frame
}

// Width is the number of columns covered by the box, both corners included.
func (b Box) Width() int {
	return b.Max.X - b.Min.X + 1
}

// Height is the number of rows covered by the box, both corners included.
func (b Box) Height() int {
	return b.Max.Y - b.Min.Y + 1
}

// Center returns the center of the box, rounded towards the min corner.
func (b Box) Center() image.Point {
	return image.Point{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
}
