package rimage

import (
	"image"
	"math"

	"github.com/golang/geo/r2"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/perception/utils"
)

// window returns the clipped [r0, r1) x [c0, c1) window of size height x width around
// center, which defaults to the image center.
func (r raster) window(height, width int, center *image.Point) (image.Rectangle, error) {
	if height <= 0 || width <= 0 {
		return image.Rectangle{}, errors.Errorf("window must have positive size, got %dx%d", height, width)
	}
	c := image.Point{X: r.width / 2, Y: r.height / 2}
	if center != nil {
		c = *center
	}
	win := image.Rect(c.X-width/2, c.Y-height/2, c.X-width/2+width, c.Y-height/2+height)
	win = win.Intersect(image.Rect(0, 0, r.width, r.height))
	if win.Empty() {
		return image.Rectangle{}, errors.Wrapf(ErrInvalidData, "%dx%d window at %v does not overlap the %dx%d image",
			height, width, c, r.height, r.width)
	}
	return win, nil
}

func (r raster) crop(height, width int, center *image.Point) (raster, error) {
	win, err := r.window(height, width, center)
	if err != nil {
		return raster{}, err
	}
	out := newRaster(win.Dy(), win.Dx(), r.channels, r.dtype, r.frame)
	for row := win.Min.Y; row < win.Max.Y; row++ {
		for col := win.Min.X; col < win.Max.X; col++ {
			r.copyPixel(out, row, col, row-win.Min.Y, col-win.Min.X)
		}
	}
	return out, nil
}

func (r raster) focus(height, width int, center *image.Point) (raster, error) {
	win, err := r.window(height, width, center)
	if err != nil {
		return raster{}, err
	}
	out := r.blank()
	for row := win.Min.Y; row < win.Max.Y; row++ {
		for col := win.Min.X; col < win.Max.X; col++ {
			r.copyPixel(out, row, col, row, col)
		}
	}
	return out, nil
}

// affine returns the 3x3 matrix that translates by t and then rotates counter-clockwise by
// degrees about (cx, cy), in (x=col, y=row) pixel coordinates.
func affine(t r2.Point, degrees, cx, cy float64) *mat.Dense {
	theta := utils.DegToRad(degrees)
	alpha, beta := math.Cos(theta), math.Sin(theta)
	rot := mat.NewDense(3, 3, []float64{
		alpha, beta, (1-alpha)*cx - beta*cy,
		-beta, alpha, beta*cx + (1-alpha)*cy,
		0, 0, 1,
	})
	trans := mat.NewDense(3, 3, []float64{
		1, 0, t.X,
		0, 1, t.Y,
		0, 0, 1,
	})
	var full mat.Dense
	full.Mul(rot, trans)
	return &full
}

func (r raster) transform(translation r2.Point, degrees float64) raster {
	full := affine(translation, degrees, float64(r.width)/2, float64(r.height)/2)
	var inv mat.Dense
	if err := inv.Inverse(full); err != nil {
		// rotations and translations are always invertible
		panic(err)
	}

	out := r.blank()
	src := mat.NewVecDense(3, nil)
	dst := mat.NewVecDense(3, nil)
	for row := 0; row < r.height; row++ {
		for col := 0; col < r.width; col++ {
			dst.SetVec(0, float64(col))
			dst.SetVec(1, float64(row))
			dst.SetVec(2, 1)
			src.MulVec(&inv, dst)
			p := image.Point{
				X: utils.PixelCoord(math.Floor(src.AtVec(0) + 0.5)),
				Y: utils.PixelCoord(math.Floor(src.AtVec(1) + 0.5)),
			}
			if r.inBounds(p) {
				r.copyPixel(out, p.Y, p.X, row, col)
			}
		}
	}
	return out
}

func (r raster) maskByIndices(pixels []image.Point) (raster, error) {
	out := r.blank()
	for _, p := range pixels {
		if err := r.checkIndex(p); err != nil {
			return raster{}, err
		}
		r.copyPixel(out, p.Y, p.X, p.Y, p.X)
	}
	return out, nil
}

func (r raster) centerNonzero() (raster, r2.Point) {
	var rows, cols stats.Float64Data
	for row := 0; row < r.height; row++ {
		for col := 0; col < r.width; col++ {
			if r.nonzero(row, col) {
				rows = append(rows, float64(row))
				cols = append(cols, float64(col))
			}
		}
	}
	if len(rows) == 0 {
		return r.clone(), r2.Point{}
	}

	meanRow, _ := stats.Mean(rows)
	meanCol, _ := stats.Mean(cols)
	shift := r2.Point{
		X: float64(r.width)/2 - meanCol,
		Y: float64(r.height)/2 - meanRow,
	}

	out := r.blank()
	for i := range rows {
		row, col := int(rows[i]), int(cols[i])
		dstRow := int(utils.ClampFloat(rows[i]+shift.Y, 0, float64(r.height-1)))
		dstCol := int(utils.ClampFloat(cols[i]+shift.X, 0, float64(r.width-1)))
		r.copyPixel(out, row, col, dstRow, dstCol)
	}
	return out, shift
}
