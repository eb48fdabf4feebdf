package rimage

import (
	"image"
	"math"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"go.viam.com/perception/referenceframe"
)

// raster is the working form of every image: a row-major (row, col, channel) buffer
// widened to float64, plus the element type it is stored as.
type raster struct {
	height, width, channels int
	dtype                   tensor.Dtype
	data                    []float64
	frame                   string
}

var supportedDtypes = []tensor.Dtype{tensor.Uint8, tensor.Uint16, tensor.Float32, tensor.Float64}

func rasterFromTensor(kind Kind, t *tensor.Dense, frame string) (raster, error) {
	if t == nil {
		return raster{}, newInvalidDataError(kind, "no data")
	}
	if t.RequiresIterator() {
		materialized, ok := t.Materialize().(*tensor.Dense)
		if !ok {
			return raster{}, newInvalidDataError(kind, "cannot materialize view")
		}
		t = materialized
	}

	shape := t.Shape()
	h, w, c := 0, 1, 1
	switch len(shape) {
	case 1:
		h = shape[0]
	case 2:
		h, w = shape[0], shape[1]
	case 3:
		h, w, c = shape[0], shape[1], shape[2]
	default:
		return raster{}, newInvalidDataError(kind, "illegal rank %d, expected 1, 2 or 3", len(shape))
	}
	if h <= 0 || w <= 0 || c <= 0 {
		return raster{}, newInvalidDataError(kind, "empty shape %v", shape)
	}

	n := h * w * c
	data := make([]float64, n)
	switch backing := t.Data().(type) {
	case []uint8:
		for i := range data {
			data[i] = float64(backing[i])
		}
	case []uint16:
		for i := range data {
			data[i] = float64(backing[i])
		}
	case []float32:
		for i := range data {
			data[i] = float64(backing[i])
		}
	case []float64:
		copy(data, backing)
	default:
		return raster{}, newDtypeError(kind, t.Dtype(), supportedDtypes...)
	}

	return raster{
		height:   h,
		width:    w,
		channels: c,
		dtype:    t.Dtype(),
		data:     data,
		frame:    referenceframe.OrDefault(frame),
	}, nil
}

func newRaster(height, width, channels int, dtype tensor.Dtype, frame string) raster {
	return raster{
		height:   height,
		width:    width,
		channels: channels,
		dtype:    dtype,
		data:     make([]float64, height*width*channels),
		frame:    referenceframe.OrDefault(frame),
	}
}

// blank returns an all-zero raster of the same shape, type and frame.
func (r raster) blank() raster {
	return newRaster(r.height, r.width, r.channels, r.dtype, r.frame)
}

func (r raster) clone() raster {
	out := r
	out.data = append([]float64(nil), r.data...)
	return out
}

// tensor converts the raster back to its element type. Integer types are rounded and
// saturated.
func (r raster) tensor() *tensor.Dense {
	var backing interface{}
	switch r.dtype {
	case tensor.Uint8:
		b := make([]uint8, len(r.data))
		for i, v := range r.data {
			b[i] = uint8(saturate(v, math.MaxUint8))
		}
		backing = b
	case tensor.Uint16:
		b := make([]uint16, len(r.data))
		for i, v := range r.data {
			b[i] = uint16(saturate(v, math.MaxUint16))
		}
		backing = b
	case tensor.Float32:
		b := make([]float32, len(r.data))
		for i, v := range r.data {
			b[i] = float32(v)
		}
		backing = b
	default:
		backing = append([]float64(nil), r.data...)
	}
	return tensor.New(tensor.WithShape(r.height, r.width, r.channels), tensor.WithBacking(backing))
}

func saturate(v, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(hi, math.Round(v)))
}

func (r raster) idx(row, col, ch int) int {
	return (row*r.width+col)*r.channels + ch
}

func (r raster) inBounds(p image.Point) bool {
	return p.X >= 0 && p.X < r.width && p.Y >= 0 && p.Y < r.height
}

// pixel returns the channel values at (row, col) without copying.
func (r raster) pixel(row, col int) []float64 {
	i := r.idx(row, col, 0)
	return r.data[i : i+r.channels]
}

func (r raster) nonzero(row, col int) bool {
	for _, v := range r.pixel(row, col) {
		if v != 0 {
			return true
		}
	}
	return false
}

func (r raster) copyPixel(dst raster, srcRow, srcCol, dstRow, dstCol int) {
	copy(dst.pixel(dstRow, dstCol), r.pixel(srcRow, srcCol))
}

// plane returns channel ch as a row-major height x width slice.
func (r raster) plane(ch int) []float64 {
	out := make([]float64, r.height*r.width)
	for i := range out {
		out[i] = r.data[i*r.channels+ch]
	}
	return out
}

func (r raster) withChannels(channels int, dtype tensor.Dtype, fill func(pix []float64, row, col int)) raster {
	out := newRaster(r.height, r.width, channels, dtype, r.frame)
	for row := 0; row < r.height; row++ {
		for col := 0; col < r.width; col++ {
			fill(out.pixel(row, col), row, col)
		}
	}
	return out
}

func (r raster) sameShape(other raster, checkChannels bool) bool {
	if r.height != other.height || r.width != other.width {
		return false
	}
	return !checkChannels || r.channels == other.channels
}

func (r raster) checkIndex(p image.Point) error {
	if !r.inBounds(p) {
		return errors.Wrapf(ErrInvalidData, "pixel (row %d, col %d) out of bounds for %dx%d image", p.Y, p.X, r.height, r.width)
	}
	return nil
}

// cast changes the element type, rounding and saturating for integer types.
func (r raster) cast(dtype tensor.Dtype) raster {
	out := r.clone()
	out.dtype = dtype
	var hi float64
	switch dtype {
	case tensor.Uint8:
		hi = math.MaxUint8
	case tensor.Uint16:
		hi = math.MaxUint16
	default:
		return out
	}
	for i, v := range out.data {
		out.data[i] = saturate(v, hi)
	}
	return out
}
