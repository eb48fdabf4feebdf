package rimage

import (
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"

	"go.viam.com/perception/utils"
)

// DepthImage is a single channel float32 or float64 image of depths. A depth of 0 means
// no return.
type DepthImage struct {
	base[*DepthImage]
}

func wrapDepth(r raster) *DepthImage {
	im := &DepthImage{}
	im.base = base[*DepthImage]{raster: r, wrap: wrapDepth}
	return im
}

// NewDepthImage returns a depth image over data, which must be float32 or float64 with 1 channel.
func NewDepthImage(data *tensor.Dense, frame string) (*DepthImage, error) {
	r, err := rasterFromTensor(KindDepth, data, frame)
	if err != nil {
		return nil, err
	}
	im := wrapDepth(r)
	if err := im.Validate(); err != nil {
		return nil, err
	}
	return im, nil
}

// NewDepthImageFromValues returns a float64 depth image with the given row-major depths.
func NewDepthImageFromValues(height, width int, depths []float64, frame string) (*DepthImage, error) {
	if height <= 0 || width <= 0 || len(depths) != height*width {
		return nil, newInvalidDataError(KindDepth, "cannot lay out %d depths as %dx%d", len(depths), height, width)
	}
	return NewDepthImage(tensor.New(tensor.WithShape(height, width), tensor.WithBacking(depths)), frame)
}

// Kind returns KindDepth.
func (im *DepthImage) Kind() Kind {
	return KindDepth
}

// Validate checks that the data is float32 or float64 with 1 channel.
func (im *DepthImage) Validate() error {
	if im.dtype != tensor.Float32 && im.dtype != tensor.Float64 {
		return newDtypeError(KindDepth, im.dtype, tensor.Float32, tensor.Float64)
	}
	if im.channels != 1 {
		return newChannelsError(KindDepth, im.channels, 1)
	}
	return nil
}

// Depth returns the depth at (row, col).
func (im *DepthImage) Depth(row, col int) float64 {
	return im.At(row, col)[0]
}

// Gradients returns the derivative of depth along rows (gx) and along columns (gy).
func (im *DepthImage) Gradients() (gx, gy *mat.Dense) {
	dRow, dCol := gradient(im.data, im.height, im.width)
	return mat.NewDense(im.height, im.width, dRow), mat.NewDense(im.height, im.width, dCol)
}

// Threshold zeroes every depth closer than front or farther than rear.
func (im *DepthImage) Threshold(front, rear float64) *DepthImage {
	out := im.clone()
	for i, d := range out.data {
		if d < front || d > rear {
			out.data[i] = 0
		}
	}
	return wrapDepth(out)
}

// ThresholdGradients zeroes every depth whose gradient magnitude exceeds gradThresh.
func (im *DepthImage) ThresholdGradients(gradThresh float64) *DepthImage {
	dRow, dCol := gradient(im.data, im.height, im.width)
	out := im.clone()
	for i := range out.data {
		if math.Hypot(dRow[i], dCol[i]) > gradThresh {
			out.data[i] = 0
		}
	}
	return wrapDepth(out)
}

// ToBinary returns a binary image that is white wherever depth exceeds threshold.
func (im *DepthImage) ToBinary(threshold float64) *BinaryImage {
	return wrapBinary(im.withChannels(1, tensor.Uint8, func(pix []float64, row, col int) {
		if im.data[im.idx(row, col, 0)] > threshold {
			pix[0] = math.MaxUint8
		}
	}))
}

func depthDisplayValue(d float64) uint8 {
	if d == 0 {
		return math.MaxUint8
	}
	return uint8(utils.ClampFloat(d*math.MaxUint8/MaxDepth, 0, math.MaxUint8))
}

// ToColor returns the display rendering of the depths as a 3 channel gray color image.
// Depths are scaled by 255/MaxDepth and clipped to [0, 255]. Pixels with no depth are drawn white.
func (im *DepthImage) ToColor() *ColorImage {
	return wrapColor(im.withChannels(3, tensor.Uint8, func(pix []float64, row, col int) {
		v := float64(depthDisplayValue(im.data[im.idx(row, col, 0)]))
		pix[0], pix[1], pix[2] = v, v, v
	}))
}

// EncodeForDisplay renders the image as ToColor does.
func (im *DepthImage) EncodeForDisplay() (image.Image, error) {
	return im.ToColor().EncodeForDisplay()
}

// MinMax returns the smallest and largest non-zero depth, or 0, 0 if there is none.
func (im *DepthImage) MinMax() (float64, float64) {
	minDepth, maxDepth := math.Inf(1), math.Inf(-1)
	for _, d := range im.data {
		if d == 0 {
			continue
		}
		minDepth = math.Min(minDepth, d)
		maxDepth = math.Max(maxDepth, d)
	}
	if math.IsInf(minDepth, 1) {
		return 0, 0
	}
	return minDepth, maxDepth
}

// ToPrettyPicture renders depths on a hue ramp from orange (near) to blue (far), with
// the range clamped to [hardMin, hardMax]. Pixels without depth are black.
func (im *DepthImage) ToPrettyPicture(hardMin, hardMax float64) *ColorImage {
	minDepth, maxDepth := im.MinMax()
	minDepth = math.Max(minDepth, hardMin)
	maxDepth = math.Min(maxDepth, hardMax)
	span := maxDepth - minDepth

	return wrapColor(im.withChannels(3, tensor.Uint8, func(pix []float64, row, col int) {
		z := im.data[im.idx(row, col, 0)]
		if z == 0 {
			return
		}
		ratio := 0.0
		if span > 0 {
			ratio = (utils.ClampFloat(z, minDepth, maxDepth) - minDepth) / span
		}
		hue := 30 + (200.0 * ratio)
		c := color.NRGBAModel.Convert(colorful.Hsv(hue, 1.0, 1.0)).(color.NRGBA)
		pix[0], pix[1], pix[2] = float64(c.R), float64(c.G), float64(c.B)
	}))
}

// Resize resamples the depths without quantizing them.
func (im *DepthImage) Resize(size Size, interp Interpolation) (*DepthImage, error) {
	r, err := im.resizeFloat(size, interp)
	if err != nil {
		return nil, err
	}
	return wrapDepth(r), nil
}
