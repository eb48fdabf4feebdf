package utils

import "gonum.org/v1/gonum/mat"

// HomogeneousPixelGrid generates the pixel grid of a height x width image as a 3xN
// matrix of homogeneous coordinates (col, row, 1). Column i of the result holds the
// pixel with linear index i in row-major order.
func HomogeneousPixelGrid(height, width int) *mat.Dense {
	dims := []int{height, width}
	sz := size(dims)
	if sz == 0 {
		return &mat.Dense{}
	}
	grid := mat.NewDense(3, sz, nil)
	sub := make([]int, 2)
	for i := 0; i < sz; i++ {
		SubFor(sub, i, dims)
		grid.Set(0, i, float64(sub[1]))
		grid.Set(1, i, float64(sub[0]))
		grid.Set(2, i, 1)
	}
	return grid
}

func size(dims []int) int {
	n := 1
	for _, v := range dims {
		n *= v
	}
	return n
}

// SubFor constructs the multi-dimensional subscript for the input linear index.
// Dims specifies the maximum size in each dimension.
//
// If sub is non-nil the result is stored in-place into sub. If it is nil a new
// slice of the appropriate length is allocated.
func SubFor(sub []int, idx int, dims []int) []int {
	for _, v := range dims {
		if v <= 0 {
			panic("bad dims")
		}
	}
	if sub == nil {
		sub = make([]int, len(dims))
	}
	if len(sub) != len(dims) {
		panic("size mismatch")
	}
	if idx < 0 {
		panic("bad index")
	}
	stride := 1
	for i := len(dims) - 1; i >= 1; i-- {
		stride *= dims[i]
	}
	for i := 0; i < len(dims)-1; i++ {
		v := idx / stride
		if v >= dims[i] {
			panic("bad index")
		}
		sub[i] = v
		idx -= v * stride
		stride /= dims[i+1]
	}
	if idx >= dims[len(sub)-1] {
		panic("bad index")
	}
	sub[len(sub)-1] = idx
	return sub
}
