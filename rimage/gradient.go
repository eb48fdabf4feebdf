package rimage

import (
	"github.com/golang/geo/r3"
)

// gradient returns the derivative of a row-major height x width plane along rows and
// along columns. Interior samples use central differences and border samples one-sided
// differences. An axis of length 1 has a zero derivative.
func gradient(plane []float64, height, width int) (dRow, dCol []float64) {
	dRow = make([]float64, len(plane))
	dCol = make([]float64, len(plane))
	at := func(row, col int) float64 { return plane[row*width+col] }

	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			i := row*width + col
			switch {
			case height == 1:
			case row == 0:
				dRow[i] = at(1, col) - at(0, col)
			case row == height-1:
				dRow[i] = at(row, col) - at(row-1, col)
			default:
				dRow[i] = (at(row+1, col) - at(row-1, col)) / 2
			}
			switch {
			case width == 1:
			case col == 0:
				dCol[i] = at(row, 1) - at(row, 0)
			case col == width-1:
				dCol[i] = at(row, col) - at(row, col-1)
			default:
				dCol[i] = (at(row, col+1) - at(row, col-1)) / 2
			}
		}
	}
	return dRow, dCol
}

// vectorGradient applies gradient to each of the 3 channels of r.
func (r raster) vectorGradient() (dRow, dCol []r3.Vector) {
	n := r.height * r.width
	dRow = make([]r3.Vector, n)
	dCol = make([]r3.Vector, n)
	for ch := 0; ch < 3; ch++ {
		gr, gc := gradient(r.plane(ch), r.height, r.width)
		for i := 0; i < n; i++ {
			setComponent(&dRow[i], ch, gr[i])
			setComponent(&dCol[i], ch, gc[i])
		}
	}
	return dRow, dCol
}

func setComponent(v *r3.Vector, ch int, f float64) {
	switch ch {
	case 0:
		v.X = f
	case 1:
		v.Y = f
	default:
		v.Z = f
	}
}

// surfaceNormal returns the unit normal of the surface with tangents dRow and dCol, or
// the zero vector when the tangents are parallel or degenerate.
func surfaceNormal(dRow, dCol r3.Vector) r3.Vector {
	n := dRow.Cross(dCol)
	norm := n.Norm()
	if norm == 0 {
		return r3.Vector{}
	}
	return n.Mul(1 / norm)
}
