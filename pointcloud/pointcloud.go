// Package pointcloud defines the frame tagged point, pixel and point cloud containers
// exchanged with the camera model, along with PCD file support.
package pointcloud

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/perception/referenceframe"
)

type vectorSet struct {
	vecs  []r3.Vector
	frame string
}

// Frame returns the frame of the set.
func (vs *vectorSet) Frame() string {
	return vs.frame
}

// Len returns the number of vectors.
func (vs *vectorSet) Len() int {
	return len(vs.vecs)
}

// At returns the i-th vector.
func (vs *vectorSet) At(i int) r3.Vector {
	return vs.vecs[i]
}

// Vectors returns a copy of the vectors.
func (vs *vectorSet) Vectors() []r3.Vector {
	return append([]r3.Vector(nil), vs.vecs...)
}

// Data returns the vectors as the columns of a 3xN matrix. An empty set returns an empty matrix.
func (vs *vectorSet) Data() *mat.Dense {
	if len(vs.vecs) == 0 {
		return &mat.Dense{}
	}
	m := mat.NewDense(3, len(vs.vecs), nil)
	for i, v := range vs.vecs {
		m.Set(0, i, v.X)
		m.Set(1, i, v.Y)
		m.Set(2, i, v.Z)
	}
	return m
}

func vectorsFromMatrix(m mat.Matrix) []r3.Vector {
	rows, cols := m.Dims()
	if rows != 3 {
		return nil
	}
	vecs := make([]r3.Vector, cols)
	for i := range vecs {
		vecs[i] = r3.Vector{X: m.At(0, i), Y: m.At(1, i), Z: m.At(2, i)}
	}
	return vecs
}

// PointCloud is an ordered set of 3D points in one frame.
type PointCloud struct {
	vectorSet
}

// New returns a point cloud over points in the given frame. points is not copied.
func New(points []r3.Vector, frame string) *PointCloud {
	return &PointCloud{vectorSet{vecs: points, frame: referenceframe.OrDefault(frame)}}
}

// NewFromMatrix returns a point cloud whose points are the columns of a 3xN matrix.
func NewFromMatrix(m mat.Matrix, frame string) (*PointCloud, error) {
	if r, _ := m.Dims(); r != 3 {
		return nil, errNotThreeRows(r)
	}
	return New(vectorsFromMatrix(m), frame), nil
}

// NormalCloud is an ordered set of surface normals in one frame.
type NormalCloud struct {
	vectorSet
}

// NewNormalCloud returns a normal cloud over normals in the given frame. normals is not copied.
func NewNormalCloud(normals []r3.Vector, frame string) *NormalCloud {
	return &NormalCloud{vectorSet{vecs: normals, frame: referenceframe.OrDefault(frame)}}
}

// PointNormalCloud pairs each point of a cloud with the surface normal at that point.
type PointNormalCloud struct {
	Points  *PointCloud
	Normals *NormalCloud
}

// NewPointNormalCloud pairs points with normals. Both must share a frame and a length.
func NewPointNormalCloud(points *PointCloud, normals *NormalCloud) (*PointNormalCloud, error) {
	if err := referenceframe.CheckCompatible(points, normals); err != nil {
		return nil, err
	}
	if points.Len() != normals.Len() {
		return nil, errLengthMismatch(points.Len(), normals.Len())
	}
	return &PointNormalCloud{Points: points, Normals: normals}, nil
}

// Frame returns the frame shared by the points and normals.
func (pnc *PointNormalCloud) Frame() string {
	return pnc.Points.Frame()
}

// Len returns the number of points.
func (pnc *PointNormalCloud) Len() int {
	return pnc.Points.Len()
}
