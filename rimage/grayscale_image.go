package rimage

import (
	"image"

	"gorgonia.org/tensor"
)

// GrayscaleImage is a single channel uint8 intensity image.
type GrayscaleImage struct {
	base[*GrayscaleImage]
}

func wrapGrayscale(r raster) *GrayscaleImage {
	im := &GrayscaleImage{}
	im.base = base[*GrayscaleImage]{raster: r, wrap: wrapGrayscale}
	return im
}

// NewGrayscaleImage returns a grayscale image over data, which must be uint8 with 1 channel.
func NewGrayscaleImage(data *tensor.Dense, frame string) (*GrayscaleImage, error) {
	r, err := rasterFromTensor(KindGrayscale, data, frame)
	if err != nil {
		return nil, err
	}
	im := wrapGrayscale(r)
	if err := im.Validate(); err != nil {
		return nil, err
	}
	return im, nil
}

// Kind returns KindGrayscale.
func (im *GrayscaleImage) Kind() Kind {
	return KindGrayscale
}

// Validate checks that the data is uint8 with 1 channel.
func (im *GrayscaleImage) Validate() error {
	if im.dtype != tensor.Uint8 {
		return newDtypeError(KindGrayscale, im.dtype, tensor.Uint8)
	}
	if im.channels != 1 {
		return newChannelsError(KindGrayscale, im.channels, 1)
	}
	return nil
}

// ToColor replicates the intensity into 3 channels.
func (im *GrayscaleImage) ToColor() *ColorImage {
	return wrapColor(im.withChannels(3, tensor.Uint8, func(pix []float64, row, col int) {
		v := im.data[im.idx(row, col, 0)]
		pix[0], pix[1], pix[2] = v, v, v
	}))
}

// Resize resamples the image with imaging.
func (im *GrayscaleImage) Resize(size Size, interp Interpolation) (*GrayscaleImage, error) {
	r, err := im.resize8(size, interp)
	if err != nil {
		return nil, err
	}
	return wrapGrayscale(r), nil
}

// EncodeForDisplay returns an *image.Gray.
func (im *GrayscaleImage) EncodeForDisplay() (image.Image, error) {
	return im.toStdImage(), nil
}
