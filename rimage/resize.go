package rimage

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Size describes the output size of a resize: a scale factor, a percentage or an explicit shape.
type Size struct {
	scale         float64
	height, width int
}

// Fraction scales both dimensions by f.
func Fraction(f float64) Size {
	return Size{scale: f}
}

// Percent scales both dimensions by p percent.
func Percent(p int) Size {
	return Size{scale: float64(p) / 100}
}

// Dimensions resizes to exactly height x width.
func Dimensions(height, width int) Size {
	return Size{height: height, width: width}
}

func (s Size) target(height, width int) (int, int, error) {
	h, w := s.height, s.width
	if s.scale != 0 {
		h, w = int(float64(height)*s.scale), int(float64(width)*s.scale)
	}
	if h <= 0 || w <= 0 {
		return 0, 0, errors.Errorf("resize to %dx%d: dimensions must be positive", h, w)
	}
	return h, w, nil
}

// Interpolation selects the resampling filter of a resize.
type Interpolation int

// The supported resampling filters.
const (
	Nearest Interpolation = iota
	Bilinear
	Bicubic
	Lanczos
)

var interpolationNames = map[Interpolation]string{
	Nearest:  "nearest",
	Bilinear: "bilinear",
	Bicubic:  "bicubic",
	Lanczos:  "lanczos",
}

func (i Interpolation) String() string {
	if name, ok := interpolationNames[i]; ok {
		return name
	}
	return "unknown"
}

// ParseInterpolation returns the Interpolation named s.
func ParseInterpolation(s string) (Interpolation, error) {
	for interp, name := range interpolationNames {
		if name == s {
			return interp, nil
		}
	}
	if s == "cubic" {
		return Bicubic, nil
	}
	return 0, errors.Errorf("unknown interpolation %q", s)
}

func (i Interpolation) imagingFilter() imaging.ResampleFilter {
	switch i {
	case Bilinear:
		return imaging.Linear
	case Bicubic:
		return imaging.CatmullRom
	case Lanczos:
		return imaging.Lanczos
	default:
		return imaging.NearestNeighbor
	}
}

func (i Interpolation) nfntFunction() resize.InterpolationFunction {
	switch i {
	case Bilinear:
		return resize.Bilinear
	case Bicubic:
		return resize.Bicubic
	case Lanczos:
		return resize.Lanczos3
	default:
		return resize.NearestNeighbor
	}
}

// resize8 resamples a 1 or 3 channel 8 bit raster.
func (r raster) resize8(size Size, interp Interpolation) (raster, error) {
	h, w, err := size.target(r.height, r.width)
	if err != nil {
		return raster{}, err
	}
	resized := imaging.Resize(r.toStdImage(), w, h, interp.imagingFilter())
	out := newRaster(h, w, r.channels, tensor.Uint8, r.frame)
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			c := resized.NRGBAAt(col, row)
			pix := out.pixel(row, col)
			pix[0] = float64(c.R)
			if r.channels == 3 {
				pix[1], pix[2] = float64(c.G), float64(c.B)
			}
		}
	}
	return out, nil
}

// resize16 resamples a single channel 16 bit raster.
func (r raster) resize16(size Size, interp Interpolation) (raster, error) {
	h, w, err := size.target(r.height, r.width)
	if err != nil {
		return raster{}, err
	}
	src := image.NewGray16(image.Rect(0, 0, r.width, r.height))
	for row := 0; row < r.height; row++ {
		for col := 0; col < r.width; col++ {
			src.SetGray16(col, row, color.Gray16{Y: uint16(saturate(r.data[r.idx(row, col, 0)], math.MaxUint16))})
		}
	}
	resized := resize.Resize(uint(w), uint(h), src, interp.nfntFunction())
	bounds := resized.Bounds()
	out := newRaster(h, w, 1, tensor.Uint16, r.frame)
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			c := color.Gray16Model.Convert(resized.At(bounds.Min.X+col, bounds.Min.Y+row)).(color.Gray16)
			out.data[out.idx(row, col, 0)] = float64(c.Y)
		}
	}
	return out, nil
}

// toStdImage converts a 1 or 3 channel 8 bit raster to a standard library image.
func (r raster) toStdImage() image.Image {
	rect := image.Rect(0, 0, r.width, r.height)
	if r.channels == 1 {
		img := image.NewGray(rect)
		for row := 0; row < r.height; row++ {
			for col := 0; col < r.width; col++ {
				img.SetGray(col, row, color.Gray{Y: uint8(saturate(r.data[r.idx(row, col, 0)], math.MaxUint8))})
			}
		}
		return img
	}
	img := image.NewNRGBA(rect)
	for row := 0; row < r.height; row++ {
		for col := 0; col < r.width; col++ {
			pix := r.pixel(row, col)
			img.SetNRGBA(col, row, color.NRGBA{
				R: uint8(saturate(pix[0], math.MaxUint8)),
				G: uint8(saturate(pix[1], math.MaxUint8)),
				B: uint8(saturate(pix[2], math.MaxUint8)),
				A: math.MaxUint8,
			})
		}
	}
	return img
}

type tap struct {
	index  int
	weight float64
}

type kernel struct {
	support float64
	at      func(x float64) float64
}

var kernels = map[Interpolation]kernel{
	Bilinear: {1, func(x float64) float64 {
		x = math.Abs(x)
		if x < 1 {
			return 1 - x
		}
		return 0
	}},
	Bicubic: {2, func(x float64) float64 {
		// Catmull-Rom
		x = math.Abs(x)
		switch {
		case x < 1:
			return (1.5*x-2.5)*x*x + 1
		case x < 2:
			return ((-0.5*x+2.5)*x-4)*x + 2
		default:
			return 0
		}
	}},
	Lanczos: {3, func(x float64) float64 {
		x = math.Abs(x)
		if x == 0 {
			return 1
		}
		if x >= 3 {
			return 0
		}
		px := math.Pi * x
		return 3 * math.Sin(px) * math.Sin(px/3) / (px * px)
	}},
}

// resampleTaps returns, for each of dstN output samples, the weighted source samples it
// is built from.
func resampleTaps(srcN, dstN int, interp Interpolation) [][]tap {
	scale := float64(srcN) / float64(dstN)
	taps := make([][]tap, dstN)
	k, ok := kernels[interp]
	if !ok {
		for i := range taps {
			idx := int(math.Min(math.Floor((float64(i)+0.5)*scale), float64(srcN-1)))
			taps[i] = []tap{{idx, 1}}
		}
		return taps
	}

	filterScale := math.Max(scale, 1)
	radius := k.support * filterScale
	for i := range taps {
		center := (float64(i)+0.5)*scale - 0.5
		lo, hi := int(math.Ceil(center-radius)), int(math.Floor(center+radius))
		var sum float64
		for j := lo; j <= hi; j++ {
			w := k.at((float64(j) - center) / filterScale)
			if w == 0 {
				continue
			}
			idx := j
			if idx < 0 {
				idx = 0
			} else if idx >= srcN {
				idx = srcN - 1
			}
			taps[i] = append(taps[i], tap{idx, w})
			sum += w
		}
		for j := range taps[i] {
			taps[i][j].weight /= sum
		}
	}
	return taps
}

// resizeFloat resamples a floating point raster separably without quantizing values.
func (r raster) resizeFloat(size Size, interp Interpolation) (raster, error) {
	h, w, err := size.target(r.height, r.width)
	if err != nil {
		return raster{}, err
	}
	colTaps := resampleTaps(r.width, w, interp)
	rowTaps := resampleTaps(r.height, h, interp)

	// columns first into an r.height x w intermediate
	mid := newRaster(r.height, w, r.channels, r.dtype, r.frame)
	for row := 0; row < r.height; row++ {
		for col, taps := range colTaps {
			dst := mid.pixel(row, col)
			for _, t := range taps {
				for ch, v := range r.pixel(row, t.index) {
					dst[ch] += t.weight * v
				}
			}
		}
	}
	out := newRaster(h, w, r.channels, r.dtype, r.frame)
	for row, taps := range rowTaps {
		for col := 0; col < w; col++ {
			dst := out.pixel(row, col)
			for _, t := range taps {
				for ch, v := range mid.pixel(t.index, col) {
					dst[ch] += t.weight * v
				}
			}
		}
	}
	return out, nil
}
