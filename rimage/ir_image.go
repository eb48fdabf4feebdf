package rimage

import (
	"image"
	"image/color"
	"math"

	"gorgonia.org/tensor"
)

// IrImage is a single channel uint16 infrared intensity image.
type IrImage struct {
	base[*IrImage]
}

func wrapIr(r raster) *IrImage {
	im := &IrImage{}
	im.base = base[*IrImage]{raster: r, wrap: wrapIr}
	return im
}

// NewIrImage returns an ir image over data, which must be uint16 with 1 channel.
func NewIrImage(data *tensor.Dense, frame string) (*IrImage, error) {
	r, err := rasterFromTensor(KindIr, data, frame)
	if err != nil {
		return nil, err
	}
	im := wrapIr(r)
	if err := im.Validate(); err != nil {
		return nil, err
	}
	return im, nil
}

// Kind returns KindIr.
func (im *IrImage) Kind() Kind {
	return KindIr
}

// Validate checks that the data is uint16 with 1 channel.
func (im *IrImage) Validate() error {
	if im.dtype != tensor.Uint16 {
		return newDtypeError(KindIr, im.dtype, tensor.Uint16)
	}
	if im.channels != 1 {
		return newChannelsError(KindIr, im.channels, 1)
	}
	return nil
}

// Resize resamples the image at 16 bits with nfnt/resize.
func (im *IrImage) Resize(size Size, interp Interpolation) (*IrImage, error) {
	r, err := im.resize16(size, interp)
	if err != nil {
		return nil, err
	}
	return wrapIr(r), nil
}

// EncodeForDisplay returns an *image.Gray with intensities scaled by 255/MaxIR.
func (im *IrImage) EncodeForDisplay() (image.Image, error) {
	img := image.NewGray(image.Rect(0, 0, im.width, im.height))
	for row := 0; row < im.height; row++ {
		for col := 0; col < im.width; col++ {
			v := im.data[im.idx(row, col, 0)] * math.MaxUint8 / MaxIR
			img.SetGray(col, row, color.Gray{Y: uint8(v)})
		}
	}
	return img, nil
}
