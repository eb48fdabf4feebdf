// Package rimage holds typed image containers. Each variant (color, depth, ir,
// grayscale, binary, point cloud and normal cloud) wraps a rank 3
// (rows x cols x channels) buffer with a frame tag and enforces its own element
// type, channel count and value invariants on construction. Every operation
// returns a new image and leaves its receiver untouched.
package rimage

import (
	"image"

	"github.com/golang/geo/r2"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gorgonia.org/tensor"
)

const (
	// MaxDepth is the depth that maps to full white when a depth image is displayed.
	MaxDepth = 1.0
	// MaxIR is the ir value that maps to full white when an ir image is displayed.
	MaxIR = 65535
	// DefaultBinaryThreshold is the threshold NewBinaryImage binarizes with.
	DefaultBinaryThreshold = 128
	// NormalTolerance is how far from 1 the norm of a non-zero normal may be.
	NormalTolerance = 1e-4
)

// Kind names an image variant.
type Kind string

// The image variants.
const (
	KindColor       Kind = "color"
	KindDepth       Kind = "depth"
	KindIr          Kind = "ir"
	KindGrayscale   Kind = "grayscale"
	KindBinary      Kind = "binary"
	KindPointCloud  Kind = "pointcloud"
	KindNormalCloud Kind = "normalcloud"
)

// Kinds lists every image variant.
var Kinds = []Kind{KindColor, KindDepth, KindIr, KindGrayscale, KindBinary, KindPointCloud, KindNormalCloud}

// ParseKind returns the Kind named by s.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !lo.Contains(Kinds, k) {
		return "", errors.Errorf("unknown image kind %q, expected one of %v", s, Kinds)
	}
	return k, nil
}

// Image is the behavior shared by every image variant.
type Image interface {
	Kind() Kind
	Frame() string
	Height() int
	Width() int
	Channels() int
	Shape() (height, width, channels int)
	Dtype() tensor.Dtype
	// Raw returns a copy of the underlying data with shape (height, width, channels).
	Raw() *tensor.Dense
	// Validate checks the variant's invariants against the current data.
	Validate() error
	// EncodeForDisplay renders the image as 8 bit color or gray.
	EncodeForDisplay() (image.Image, error)

	rasterData() raster
}

// base implements the operations shared by all variants. I is the concrete variant
// type, so that operations on a *DepthImage return a *DepthImage.
type base[I any] struct {
	raster
	wrap func(raster) I
}

func (b *base[I]) rasterData() raster {
	return b.raster
}

func (b *base[I]) rewrap(r raster) I {
	return b.wrap(r)
}

// Frame returns the frame the image is expressed in.
func (b *base[I]) Frame() string {
	return b.frame
}

// Height returns the number of rows.
func (b *base[I]) Height() int {
	return b.height
}

// Width returns the number of columns.
func (b *base[I]) Width() int {
	return b.width
}

// Channels returns the number of channels.
func (b *base[I]) Channels() int {
	return b.channels
}

// Shape returns the height, width and number of channels.
func (b *base[I]) Shape() (int, int, int) {
	return b.height, b.width, b.channels
}

// Dtype returns the element type of the image data.
func (b *base[I]) Dtype() tensor.Dtype {
	return b.dtype
}

// Raw returns a copy of the image data as a (height, width, channels) tensor.
func (b *base[I]) Raw() *tensor.Dense {
	return b.tensor()
}

// At returns a copy of the channel values at (row, col). It panics if the pixel is out of bounds.
func (b *base[I]) At(row, col int) []float64 {
	if !b.inBounds(image.Point{X: col, Y: row}) {
		panic(errors.Errorf("pixel (row %d, col %d) out of bounds for %dx%d image", row, col, b.height, b.width))
	}
	return append([]float64(nil), b.pixel(row, col)...)
}

// IsSameShape reports whether other has the same height and width, and the same number
// of channels when checkChannels is set.
func (b *base[I]) IsSameShape(other Image, checkChannels bool) bool {
	return b.sameShape(other.rasterData(), checkChannels)
}

// IJToLinear returns the row-major linear index of pixel p (X is the column, Y is the row).
func (b *base[I]) IJToLinear(p image.Point) int {
	return p.Y*b.width + p.X
}

// LinearToIJ is the converse of IJToLinear.
func (b *base[I]) LinearToIJ(i int) image.Point {
	return image.Point{X: i % b.width, Y: i / b.width}
}

// NonzeroPixels returns every pixel with at least one non-zero channel, in row-major order.
func (b *base[I]) NonzeroPixels() []image.Point {
	var pts []image.Point
	for row := 0; row < b.height; row++ {
		for col := 0; col < b.width; col++ {
			if b.nonzero(row, col) {
				pts = append(pts, image.Point{X: col, Y: row})
			}
		}
	}
	return pts
}

// Crop returns the height x width window centered at center, clipped to the image.
// A nil center means the image center.
func (b *base[I]) Crop(height, width int, center *image.Point) (I, error) {
	r, err := b.crop(height, width, center)
	if err != nil {
		var zero I
		return zero, err
	}
	return b.wrap(r), nil
}

// Focus is like Crop but keeps the full image size, zeroing everything outside the window.
func (b *base[I]) Focus(height, width int, center *image.Point) (I, error) {
	r, err := b.focus(height, width, center)
	if err != nil {
		var zero I
		return zero, err
	}
	return b.wrap(r), nil
}

// Transform translates the image by translation (X is columns, Y is rows), then rotates
// it counter-clockwise by degrees about the image center. Pixels are resampled with
// nearest neighbor and anything mapped from outside the image is zero.
func (b *base[I]) Transform(translation r2.Point, degrees float64) I {
	return b.wrap(b.transform(translation, degrees))
}

// MaskByIndices zeroes every pixel except those listed (X is the column, Y is the row).
func (b *base[I]) MaskByIndices(pixels []image.Point) (I, error) {
	r, err := b.maskByIndices(pixels)
	if err != nil {
		var zero I
		return zero, err
	}
	return b.wrap(r), nil
}

// MaskByLinearIndices zeroes every pixel except those with the given row-major indices.
func (b *base[I]) MaskByLinearIndices(indices []int) (I, error) {
	n := b.height * b.width
	for _, i := range indices {
		if i < 0 || i >= n {
			var zero I
			return zero, errors.Wrapf(ErrInvalidData, "linear index %d out of bounds for %d pixels", i, n)
		}
	}
	return b.MaskByIndices(lo.Map(indices, func(i, _ int) image.Point {
		return b.LinearToIJ(i)
	}))
}

// MaskByBinary zeroes every pixel where mask is zero. mask must have the same height and width.
func (b *base[I]) MaskByBinary(mask *BinaryImage) (I, error) {
	if !b.sameShape(mask.raster, false) {
		var zero I
		return zero, errors.Wrapf(ErrInvalidData, "mask is %dx%d but image is %dx%d",
			mask.height, mask.width, b.height, b.width)
	}
	out := b.clone()
	for row := 0; row < b.height; row++ {
		for col := 0; col < b.width; col++ {
			if mask.data[mask.idx(row, col, 0)] == 0 {
				clear(out.pixel(row, col))
			}
		}
	}
	return b.wrap(out), nil
}

// CenterNonzero shifts the non-zero pixels so that their centroid lies at the image
// center. It returns the new image and the shift applied (X is columns, Y is rows).
func (b *base[I]) CenterNonzero() (I, r2.Point) {
	r, shift := b.centerNonzero()
	return b.wrap(r), shift
}

type imageOf[I any] interface {
	Image
	rewrap(raster) I
}

// MedianImages returns the per-element median of images, which must all share a shape.
func MedianImages[I imageOf[I]](images []I) (I, error) {
	var zero I
	if len(images) == 0 {
		return zero, errors.New("no images to take the median of")
	}
	first := images[0].rasterData()
	rasters := make([]raster, len(images))
	for i, img := range images {
		rasters[i] = img.rasterData()
		if !first.sameShape(rasters[i], true) {
			return zero, errors.Wrapf(ErrInvalidData, "image %d has a different shape", i)
		}
	}

	out := first.blank()
	values := make(stats.Float64Data, len(rasters))
	for j := range out.data {
		for i, r := range rasters {
			values[i] = r.data[j]
		}
		m, err := stats.Median(values)
		if err != nil {
			return zero, err
		}
		out.data[j] = m
	}
	return images[0].rewrap(out), nil
}
