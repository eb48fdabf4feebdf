package pointcloud

import (
	"errors"
	"image"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/perception/referenceframe"
)

func TestPointCloudBasic(t *testing.T) {
	pts := []r3.Vector{NewVector(1, 2, 3), NewVector(-1, 0, 4)}
	pc := New(pts, "camera")
	test.That(t, pc.Frame(), test.ShouldEqual, "camera")
	test.That(t, pc.Len(), test.ShouldEqual, 2)
	test.That(t, pc.At(1), test.ShouldResemble, NewVector(-1, 0, 4))

	copied := pc.Vectors()
	copied[0] = NewVector(9, 9, 9)
	test.That(t, pc.At(0), test.ShouldResemble, NewVector(1, 2, 3))

	data := pc.Data()
	r, c := data.Dims()
	test.That(t, r, test.ShouldEqual, 3)
	test.That(t, c, test.ShouldEqual, 2)
	test.That(t, data.At(2, 0), test.ShouldEqual, 3.0)
	test.That(t, data.At(0, 1), test.ShouldEqual, -1.0)

	back, err := NewFromMatrix(data, "camera")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back.Vectors(), test.ShouldResemble, pts)

	_, err = NewFromMatrix(mat.NewDense(2, 2, nil), "camera")
	test.That(t, err, test.ShouldNotBeNil)

	empty := New(nil, "")
	test.That(t, empty.Frame(), test.ShouldEqual, referenceframe.Unspecified)
	test.That(t, empty.Data().IsEmpty(), test.ShouldBeTrue)
}

func TestPointNormalCloud(t *testing.T) {
	pc := New([]r3.Vector{NewVector(0, 0, 1)}, "camera")
	nc := NewNormalCloud([]r3.Vector{NewVector(0, 0, -1)}, "camera")
	pnc, err := NewPointNormalCloud(pc, nc)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pnc.Len(), test.ShouldEqual, 1)
	test.That(t, pnc.Frame(), test.ShouldEqual, "camera")

	_, err = NewPointNormalCloud(pc, NewNormalCloud([]r3.Vector{NewVector(0, 0, -1)}, "world"))
	test.That(t, errors.Is(err, referenceframe.ErrFrameMismatch), test.ShouldBeTrue)

	_, err = NewPointNormalCloud(pc, NewNormalCloud(nil, "camera"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "1 points but 0 normals")
}

func TestPointsAndBoxes(t *testing.T) {
	p := NewPoint(NewVector(1, 2, 3), "camera")
	test.That(t, p.Frame(), test.ShouldEqual, "camera")
	p2 := NewPoint2D(r2.Point{X: 4, Y: 5}, "")
	test.That(t, p2.Frame(), test.ShouldEqual, referenceframe.Unspecified)

	coords := NewImageCoords([]image.Point{{1, 2}, {3, 4}}, "camera")
	test.That(t, coords.Len(), test.ShouldEqual, 2)
	test.That(t, coords.At(1), test.ShouldResemble, image.Point{3, 4})
	test.That(t, coords.Coords(), test.ShouldResemble, []image.Point{{1, 2}, {3, 4}})

	box, err := NewBox(image.Point{2, 3}, image.Point{10, 7}, "camera")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, box.Width(), test.ShouldEqual, 9)
	test.That(t, box.Height(), test.ShouldEqual, 5)
	test.That(t, box.Center(), test.ShouldResemble, image.Point{6, 5})
	test.That(t, box.Frame(), test.ShouldEqual, "camera")

	pixel, err := NewBox(image.Point{4, 4}, image.Point{4, 4}, "camera")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pixel.Width(), test.ShouldEqual, 1)
	test.That(t, pixel.Height(), test.ShouldEqual, 1)
	test.That(t, pixel.Center(), test.ShouldResemble, image.Point{4, 4})

	_, err = NewBox(image.Point{10, 3}, image.Point{2, 7}, "camera")
	test.That(t, err, test.ShouldNotBeNil)
}
