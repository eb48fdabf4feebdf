package rimage

import (
	"image"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// BinaryImage is a single channel uint8 image whose pixels are either 0 or 255.
type BinaryImage struct {
	base[*BinaryImage]
	threshold float64
}

func wrapBinary(r raster) *BinaryImage {
	return wrapBinaryWithThreshold(r, DefaultBinaryThreshold)
}

func wrapBinaryWithThreshold(r raster, threshold float64) *BinaryImage {
	im := &BinaryImage{threshold: threshold}
	im.base = base[*BinaryImage]{raster: r, wrap: func(r raster) *BinaryImage {
		return wrapBinaryWithThreshold(r, threshold)
	}}
	return im
}

// NewBinaryImage binarizes data at DefaultBinaryThreshold. data must be uint8 with 1 channel.
func NewBinaryImage(data *tensor.Dense, frame string) (*BinaryImage, error) {
	return NewBinaryImageWithThreshold(data, DefaultBinaryThreshold, frame)
}

// NewBinaryImageWithThreshold returns a binary image that is 255 wherever data exceeds
// threshold and 0 elsewhere. data must be uint8 with 1 channel.
func NewBinaryImageWithThreshold(data *tensor.Dense, threshold float64, frame string) (*BinaryImage, error) {
	r, err := rasterFromTensor(KindBinary, data, frame)
	if err != nil {
		return nil, err
	}
	binarize(r.data, threshold)
	im := wrapBinaryWithThreshold(r, threshold)
	if err := im.Validate(); err != nil {
		return nil, err
	}
	return im, nil
}

func binarize(data []float64, threshold float64) {
	for i, v := range data {
		if v > threshold {
			data[i] = math.MaxUint8
		} else {
			data[i] = 0
		}
	}
}

// Kind returns KindBinary.
func (im *BinaryImage) Kind() Kind {
	return KindBinary
}

// Threshold returns the threshold the image was binarized with.
func (im *BinaryImage) Threshold() float64 {
	return im.threshold
}

// Validate checks that the data is uint8 with 1 channel and only holds 0 and 255.
func (im *BinaryImage) Validate() error {
	if im.dtype != tensor.Uint8 {
		return newDtypeError(KindBinary, im.dtype, tensor.Uint8)
	}
	if im.channels != 1 {
		return newChannelsError(KindBinary, im.channels, 1)
	}
	for i, v := range im.data {
		if v != 0 && v != math.MaxUint8 {
			return newInvalidDataError(KindBinary, "value %v at index %d is neither 0 nor 255", v, i)
		}
	}
	return nil
}

// ToColor replicates the mask into 3 channels.
func (im *BinaryImage) ToColor() *ColorImage {
	return wrapColor(im.withChannels(3, tensor.Uint8, func(pix []float64, row, col int) {
		v := im.data[im.idx(row, col, 0)]
		pix[0], pix[1], pix[2] = v, v, v
	}))
}

// Invert swaps black and white.
func (im *BinaryImage) Invert() *BinaryImage {
	out := im.clone()
	for i, v := range out.data {
		out.data[i] = math.MaxUint8 - v
	}
	return im.wrap(out)
}

// Resize resamples the mask with imaging and binarizes the result again.
func (im *BinaryImage) Resize(size Size, interp Interpolation) (*BinaryImage, error) {
	r, err := im.resize8(size, interp)
	if err != nil {
		return nil, err
	}
	binarize(r.data, im.threshold)
	return im.wrap(r), nil
}

// EncodeForDisplay returns an *image.Gray.
func (im *BinaryImage) EncodeForDisplay() (image.Image, error) {
	return im.toStdImage(), nil
}

// ClosestNonzeroPixel walks from pixel along direction in steps of t until the w x w
// window around the current location holds no pixel at or above the binarization
// threshold, and returns that location. Window pixels outside the image are ignored and
// the walk also stops once the location leaves the image. X is the column, Y is the row.
func (im *BinaryImage) ClosestNonzeroPixel(pixel, direction r2.Point, w int, t float64) (r2.Point, error) {
	if w <= 0 {
		return r2.Point{}, errors.Errorf("window size must be positive, got %d", w)
	}
	if t <= 0 || direction.Norm() == 0 {
		return r2.Point{}, errors.New("walk needs a positive step and a non-zero direction")
	}

	inImage := func(p r2.Point) bool {
		return p.X >= 0 && p.Y >= 0 && p.X < float64(im.width) && p.Y < float64(im.height)
	}
	occupied := func(p r2.Point) bool {
		for dy := -w / 2; dy < w-w/2; dy++ {
			for dx := -w / 2; dx < w-w/2; dx++ {
				q := image.Point{X: int(p.X + float64(dx)), Y: int(p.Y + float64(dy))}
				if p.X+float64(dx) < 0 || p.Y+float64(dy) < 0 || !im.inBounds(q) {
					continue
				}
				if im.data[im.idx(q.Y, q.X, 0)] >= im.threshold {
					return true
				}
			}
		}
		return false
	}

	for inImage(pixel) && occupied(pixel) {
		pixel = pixel.Add(direction.Mul(t))
	}
	return pixel, nil
}
