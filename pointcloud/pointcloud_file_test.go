package pointcloud

import (
	"bytes"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestPCD(t *testing.T) {
	cloud := New([]r3.Vector{NewVector(-1, -2, 5), NewVector(582, 12, 0), NewVector(0.5, 0.25, 1.125)}, "camera")

	for _, pcdType := range []PCDType{PCDAscii, PCDBinary} {
		t.Run(pcdType.String(), func(t *testing.T) {
			var buf bytes.Buffer
			test.That(t, ToPCD(cloud, &buf, pcdType), test.ShouldBeNil)
			header := buf.String()
			test.That(t, header, test.ShouldStartWith, "VERSION .7\nFIELDS x y z\n")
			test.That(t, header, test.ShouldContainSubstring, "WIDTH 3\nHEIGHT 1\n")
			test.That(t, header, test.ShouldContainSubstring, "POINTS 3\nDATA "+pcdType.String()+"\n")

			got, normals, err := ReadPCD(&buf, "camera")
			test.That(t, err, test.ShouldBeNil)
			test.That(t, normals, test.ShouldBeNil)
			test.That(t, got.Vectors(), test.ShouldResemble, cloud.Vectors())
		})
	}

	t.Run("ascii values", func(t *testing.T) {
		var buf bytes.Buffer
		test.That(t, ToPCD(cloud, &buf, PCDAscii), test.ShouldBeNil)
		test.That(t, buf.String(), test.ShouldEndWith, "-1.000000 -2.000000 5.000000\n582.000000 12.000000 0.000000\n0.500000 0.250000 1.125000\n")
	})

	t.Run("compressed", func(t *testing.T) {
		var buf bytes.Buffer
		err := ToPCD(cloud, &buf, PCDCompressed)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "not yet implemented")
	})
}

func TestPCDWithNormals(t *testing.T) {
	points := New([]r3.Vector{NewVector(0, 0, 1), NewVector(1, 1, 2)}, "camera")
	normals := NewNormalCloud([]r3.Vector{NewVector(0, 0, -1), NewVector(0, 1, 0)}, "camera")
	pnc, err := NewPointNormalCloud(points, normals)
	test.That(t, err, test.ShouldBeNil)

	for _, pcdType := range []PCDType{PCDAscii, PCDBinary} {
		var buf bytes.Buffer
		test.That(t, ToPCDWithNormals(pnc, &buf, pcdType), test.ShouldBeNil)
		test.That(t, buf.String(), test.ShouldContainSubstring, "FIELDS x y z normal_x normal_y normal_z\nSIZE 4 4 4 4 4 4\n")

		gotPoints, gotNormals, err := ReadPCD(&buf, "camera")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, gotPoints.Vectors(), test.ShouldResemble, points.Vectors())
		test.That(t, gotNormals, test.ShouldNotBeNil)
		test.That(t, gotNormals.Vectors(), test.ShouldResemble, normals.Vectors())
	}
}

func TestReadPCDErrors(t *testing.T) {
	_, _, err := ReadPCD(strings.NewReader("VERSION .6\n"), "camera")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unsupported pcd version")

	bad := "VERSION .7\nFIELDS x y z rgb\n"
	_, _, err = ReadPCD(strings.NewReader(bad), "camera")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unsupported pcd fields")

	truncated := "VERSION .7\nFIELDS x y z\nSIZE 4 4 4\nTYPE F F F\nCOUNT 1 1 1\nWIDTH 2\nHEIGHT 1\n" +
		"VIEWPOINT 0 0 0 1 0 0 0\nPOINTS 2\nDATA ascii\n1 2 3\n"
	_, _, err = ReadPCD(strings.NewReader(truncated), "camera")
	test.That(t, err, test.ShouldNotBeNil)

	_, err = ParsePCDType("zip")
	test.That(t, err, test.ShouldNotBeNil)
}
