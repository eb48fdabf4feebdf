package rimage

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"gorgonia.org/tensor"

	"go.viam.com/perception/pointcloud"
	"go.viam.com/perception/referenceframe"
)

// ColorImage is an 8 bit image with 1 or 3 channels (RGB order).
type ColorImage struct {
	base[*ColorImage]
}

func wrapColor(r raster) *ColorImage {
	im := &ColorImage{}
	im.base = base[*ColorImage]{raster: r, wrap: wrapColor}
	return im
}

// NewColorImage returns a color image over data, which must be uint8 with 1 or 3 channels.
func NewColorImage(data *tensor.Dense, frame string) (*ColorImage, error) {
	r, err := rasterFromTensor(KindColor, data, frame)
	if err != nil {
		return nil, err
	}
	im := wrapColor(r)
	if err := im.Validate(); err != nil {
		return nil, err
	}
	return im, nil
}

// Kind returns KindColor.
func (im *ColorImage) Kind() Kind {
	return KindColor
}

// Validate checks that the data is uint8 with 1 or 3 channels.
func (im *ColorImage) Validate() error {
	if im.dtype != tensor.Uint8 {
		return newDtypeError(KindColor, im.dtype, tensor.Uint8)
	}
	if im.channels != 1 && im.channels != 3 {
		return newChannelsError(KindColor, im.channels, 1, 3)
	}
	return nil
}

// R returns the red channel as a grayscale image.
func (im *ColorImage) R() *GrayscaleImage {
	return im.channel(0)
}

// G returns the green channel as a grayscale image. A 1 channel image has no green
// channel and returns its only channel, as R does.
func (im *ColorImage) G() *GrayscaleImage {
	return im.channel(1)
}

// B returns the blue channel as a grayscale image. A 1 channel image returns its only channel.
func (im *ColorImage) B() *GrayscaleImage {
	return im.channel(2)
}

// channel falls back to the first channel when ch is out of range.
func (im *ColorImage) channel(ch int) *GrayscaleImage {
	if ch >= im.channels {
		ch = 0
	}
	return wrapGrayscale(im.withChannels(1, tensor.Uint8, func(pix []float64, row, col int) {
		pix[0] = im.pixel(row, col)[ch]
	}))
}

// ToGrayscale converts the image to luminance.
func (im *ColorImage) ToGrayscale() *GrayscaleImage {
	if im.channels == 1 {
		return wrapGrayscale(im.clone())
	}
	gray := imaging.Grayscale(im.toStdImage())
	return wrapGrayscale(im.withChannels(1, tensor.Uint8, func(pix []float64, row, col int) {
		pix[0] = float64(gray.NRGBAAt(col, row).R)
	}))
}

// DrawBox draws the outline of box in white. The parts of the outline outside the image are skipped.
func (im *ColorImage) DrawBox(box pointcloud.Box) (*ColorImage, error) {
	if err := referenceframe.CheckCompatible(im, box); err != nil {
		return nil, err
	}
	out := im.clone()
	paint := func(row, col int) {
		if out.inBounds(image.Point{X: col, Y: row}) {
			for ch := range out.pixel(row, col) {
				out.pixel(row, col)[ch] = math.MaxUint8
			}
		}
	}
	for col := box.Min.X; col <= box.Max.X; col++ {
		paint(box.Min.Y, col)
		paint(box.Max.Y, col)
	}
	for row := box.Min.Y; row <= box.Max.Y; row++ {
		paint(row, box.Min.X)
		paint(row, box.Max.X)
	}
	return wrapColor(out), nil
}

// Resize resamples the image with imaging.
func (im *ColorImage) Resize(size Size, interp Interpolation) (*ColorImage, error) {
	r, err := im.resize8(size, interp)
	if err != nil {
		return nil, err
	}
	return wrapColor(r), nil
}

// EncodeForDisplay returns an *image.NRGBA for 3 channel images and an *image.Gray otherwise.
func (im *ColorImage) EncodeForDisplay() (image.Image, error) {
	return im.toStdImage(), nil
}

// FromStdImage converts any standard library image to a 3 channel color image.
func FromStdImage(img image.Image, frame string) *ColorImage {
	b := img.Bounds()
	r := newRaster(b.Dy(), b.Dx(), 3, tensor.Uint8, frame)
	for row := 0; row < r.height; row++ {
		for col := 0; col < r.width; col++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+col, b.Min.Y+row)).(color.NRGBA)
			pix := r.pixel(row, col)
			pix[0], pix[1], pix[2] = float64(c.R), float64(c.G), float64(c.B)
		}
	}
	return wrapColor(r)
}
