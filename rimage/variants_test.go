package rimage

import (
	"image"
	"image/color"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"gorgonia.org/tensor"

	"go.viam.com/perception/pointcloud"
	"go.viam.com/perception/referenceframe"
)

func constantColor(t *testing.T, height, width int, v uint8) *ColorImage {
	t.Helper()
	backing := make([]uint8, height*width*3)
	for i := range backing {
		backing[i] = v
	}
	img, err := NewColorImage(tensor.New(tensor.WithShape(height, width, 3), tensor.WithBacking(backing)), "")
	test.That(t, err, test.ShouldBeNil)
	return img
}

func TestColorImage(t *testing.T) {
	img := constantColor(t, 2, 2, 90)
	test.That(t, img.R().At(0, 0), test.ShouldResemble, []float64{90})
	test.That(t, img.B().Kind(), test.ShouldEqual, KindGrayscale)
	test.That(t, img.ToGrayscale().At(1, 1), test.ShouldResemble, []float64{90})

	display, err := img.EncodeForDisplay()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, display.At(1, 0), test.ShouldResemble, color.NRGBA{R: 90, G: 90, B: 90, A: 255})

	back := FromStdImage(display, "")
	test.That(t, back.Raw().Data(), test.ShouldResemble, img.Raw().Data())

	single, err := NewColorImage(tensor.New(tensor.WithShape(1, 2, 1), tensor.WithBacking([]uint8{7, 9})), "")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, single.G().Raw().Data(), test.ShouldResemble, []uint8{7, 9})
	test.That(t, single.B().Raw().Data(), test.ShouldResemble, single.R().Raw().Data())
}

func TestDrawBox(t *testing.T) {
	img := constantColor(t, 5, 5, 0)
	box, err := pointcloud.NewBox(image.Point{X: 1, Y: 1}, image.Point{X: 3, Y: 3}, "")
	test.That(t, err, test.ShouldBeNil)

	drawn, err := img.DrawBox(box)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, drawn.At(1, 1), test.ShouldResemble, []float64{255, 255, 255})
	test.That(t, drawn.At(2, 3), test.ShouldResemble, []float64{255, 255, 255})
	test.That(t, drawn.At(2, 2), test.ShouldResemble, []float64{0, 0, 0})
	test.That(t, drawn.At(0, 0), test.ShouldResemble, []float64{0, 0, 0})
	test.That(t, img.At(1, 1), test.ShouldResemble, []float64{0, 0, 0})

	offImage, err := pointcloud.NewBox(image.Point{X: 3, Y: 3}, image.Point{X: 8, Y: 8}, "")
	test.That(t, err, test.ShouldBeNil)
	drawn, err = img.DrawBox(offImage)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, drawn.At(4, 3), test.ShouldResemble, []float64{255, 255, 255})

	elsewhere, err := pointcloud.NewBox(image.Point{}, image.Point{X: 1, Y: 1}, "world")
	test.That(t, err, test.ShouldBeNil)
	_, err = img.DrawBox(elsewhere)
	test.That(t, errors.Is(err, referenceframe.ErrFrameMismatch), test.ShouldBeTrue)
}

func TestDepthImage(t *testing.T) {
	img, err := NewDepthImageFromValues(1, 4, []float64{0, 0.5, 0.75, 2}, "")
	test.That(t, err, test.ShouldBeNil)

	t.Run("display", func(t *testing.T) {
		display, err := img.EncodeForDisplay()
		test.That(t, err, test.ShouldBeNil)
		gray := func(col int) uint8 { return color.GrayModel.Convert(display.At(col, 0)).(color.Gray).Y }
		test.That(t, gray(0), test.ShouldEqual, uint8(255))
		test.That(t, gray(1), test.ShouldEqual, uint8(127))
		test.That(t, gray(2), test.ShouldEqual, uint8(191))
		test.That(t, gray(3), test.ShouldEqual, uint8(255))

		near, err := NewDepthImageFromValues(1, 4, []float64{0, 0.002, -0.5, 0.5}, "")
		test.That(t, err, test.ShouldBeNil)
		rendered := near.ToColor()
		test.That(t, rendered.At(0, 0), test.ShouldResemble, []float64{255, 255, 255})
		test.That(t, rendered.At(0, 1), test.ShouldResemble, []float64{0, 0, 0})
		test.That(t, rendered.At(0, 2), test.ShouldResemble, []float64{0, 0, 0})
		test.That(t, rendered.At(0, 3), test.ShouldResemble, []float64{127, 127, 127})
	})

	t.Run("threshold", func(t *testing.T) {
		test.That(t, img.Threshold(0.6, 1).Raw().Data(), test.ShouldResemble, []float64{0, 0, 0.75, 0})
		test.That(t, img.ToBinary(0.6).Raw().Data(), test.ShouldResemble, []uint8{0, 0, 255, 255})
	})

	t.Run("gradients", func(t *testing.T) {
		gx, gy := img.Gradients()
		test.That(t, gx.At(0, 1), test.ShouldEqual, 0.0)
		test.That(t, gy.At(0, 0), test.ShouldEqual, 0.5)
		test.That(t, gy.At(0, 1), test.ShouldEqual, 0.375)
		test.That(t, gy.At(0, 3), test.ShouldEqual, 1.25)
		smooth := img.ThresholdGradients(1)
		test.That(t, smooth.Raw().Data(), test.ShouldResemble, []float64{0, 0.5, 0.75, 0})
	})

	t.Run("pretty", func(t *testing.T) {
		minDepth, maxDepth := img.MinMax()
		test.That(t, minDepth, test.ShouldEqual, 0.5)
		test.That(t, maxDepth, test.ShouldEqual, 2.0)
		pretty := img.ToPrettyPicture(0, 10)
		test.That(t, pretty.At(0, 0), test.ShouldResemble, []float64{0, 0, 0})
		test.That(t, pretty.At(0, 1), test.ShouldNotResemble, pretty.At(0, 3))
	})
}

func TestIrDisplay(t *testing.T) {
	img, err := NewIrImage(tensor.New(tensor.WithShape(1, 3), tensor.WithBacking([]uint16{0, 257, 65535})), "")
	test.That(t, err, test.ShouldBeNil)
	display, err := img.EncodeForDisplay()
	test.That(t, err, test.ShouldBeNil)
	gray, ok := display.(*image.Gray)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, gray.Pix, test.ShouldResemble, []uint8{0, 1, 255})
}

func TestResize(t *testing.T) {
	t.Run("nearest depth", func(t *testing.T) {
		img, err := NewDepthImageFromValues(1, 4, []float64{1, 2, 3, 4}, "")
		test.That(t, err, test.ShouldBeNil)
		resized, err := img.Resize(Dimensions(1, 2), Nearest)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, resized.Raw().Data(), test.ShouldResemble, []float64{2, 4})
	})
	t.Run("fraction", func(t *testing.T) {
		resized, err := rampDepth(t, 4, 6).Resize(Fraction(0.5), Bilinear)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, resized.Height(), test.ShouldEqual, 2)
		test.That(t, resized.Width(), test.ShouldEqual, 3)
		_, err = rampDepth(t, 4, 4).Resize(Fraction(0.1), Bilinear)
		test.That(t, err, test.ShouldNotBeNil)
	})
	t.Run("constant color", func(t *testing.T) {
		for _, interp := range []Interpolation{Nearest, Bilinear, Bicubic, Lanczos} {
			resized, err := constantColor(t, 8, 8, 100).Resize(Percent(50), interp)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, resized.Height(), test.ShouldEqual, 4)
			test.That(t, resized.At(2, 2), test.ShouldResemble, []float64{100, 100, 100})
		}
	})
	t.Run("constant depth", func(t *testing.T) {
		depths := make([]float64, 36)
		for i := range depths {
			depths[i] = 0.25
		}
		img, err := NewDepthImageFromValues(6, 6, depths, "")
		test.That(t, err, test.ShouldBeNil)
		resized, err := img.Resize(Dimensions(3, 4), Bicubic)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, resized.Depth(1, 2), test.ShouldAlmostEqual, 0.25)
	})
	t.Run("binary stays binary", func(t *testing.T) {
		img, err := NewBinaryImage(tensor.New(tensor.WithShape(4, 4), tensor.WithBacking([]uint8{
			255, 255, 0, 0,
			255, 255, 0, 0,
			0, 0, 0, 0,
			0, 0, 0, 0,
		})), "")
		test.That(t, err, test.ShouldBeNil)
		resized, err := img.Resize(Dimensions(3, 3), Bilinear)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, resized.Validate(), test.ShouldBeNil)
	})
	t.Run("ir", func(t *testing.T) {
		backing := make([]uint16, 16)
		for i := range backing {
			backing[i] = 1000
		}
		img, err := NewIrImage(tensor.New(tensor.WithShape(4, 4), tensor.WithBacking(backing)), "")
		test.That(t, err, test.ShouldBeNil)
		resized, err := img.Resize(Dimensions(2, 2), Nearest)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, resized.Raw().Data(), test.ShouldResemble, []uint16{1000, 1000, 1000, 1000})
	})
	t.Run("normal cloud", func(t *testing.T) {
		img, err := NewNormalCloudImage(tensor.New(tensor.WithShape(1, 1, 3), tensor.WithBacking([]float64{0, 0, 1})), "")
		test.That(t, err, test.ShouldBeNil)
		_, err = img.Resize(Fraction(2), Nearest)
		test.That(t, errors.Is(err, ErrNotSupported), test.ShouldBeTrue)
	})
}

func TestParseInterpolation(t *testing.T) {
	interp, err := ParseInterpolation("cubic")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, interp, test.ShouldEqual, Bicubic)
	interp, err = ParseInterpolation("lanczos")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, interp.String(), test.ShouldEqual, "lanczos")
	_, err = ParseInterpolation("area")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestClosestNonzeroPixel(t *testing.T) {
	img, err := NewBinaryImage(tensor.New(tensor.WithShape(3, 5), tensor.WithBacking([]uint8{
		255, 255, 0, 0, 0,
		255, 255, 255, 0, 0,
		0, 0, 0, 0, 0,
	})), "")
	test.That(t, err, test.ShouldBeNil)

	p, err := img.ClosestNonzeroPixel(r2.Point{}, r2.Point{X: 1}, 1, 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p, test.ShouldResemble, r2.Point{X: 2})

	p, err = img.ClosestNonzeroPixel(r2.Point{}, r2.Point{X: 1}, 3, 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p, test.ShouldResemble, r2.Point{X: 4})

	p, err = img.ClosestNonzeroPixel(r2.Point{X: 4, Y: 2}, r2.Point{X: 1}, 1, 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p, test.ShouldResemble, r2.Point{X: 4, Y: 2})

	_, err = img.ClosestNonzeroPixel(r2.Point{}, r2.Point{X: 1}, 0, 1)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = img.ClosestNonzeroPixel(r2.Point{}, r2.Point{}, 1, 1)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNormalCloudImage(t *testing.T) {
	var vecs []r3.Vector
	for row := 0; row < 3; row++ {
		for col := 0; col < 4; col++ {
			vecs = append(vecs, r3.Vector{X: float64(col), Y: float64(row), Z: 5})
		}
	}
	cloud := pointcloud.New(vecs, "camera")
	img, err := NewPointCloudImageFromCloud(cloud, 3, 4)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.ToPointCloud().Vectors(), test.ShouldResemble, vecs)

	normals := img.NormalCloudImage()
	test.That(t, normals.Validate(), test.ShouldBeNil)
	test.That(t, normals.Frame(), test.ShouldEqual, "camera")
	for _, n := range normals.ToNormalCloud().Vectors() {
		test.That(t, n, test.ShouldResemble, r3.Vector{Z: -1})
	}

	_, err = NewPointCloudImageFromCloud(cloud, 2, 4)
	test.That(t, errors.Is(err, ErrInvalidData), test.ShouldBeTrue)

	_, err = img.EncodeForDisplay()
	test.That(t, errors.Is(err, ErrNotSupported), test.ShouldBeTrue)

	flat := pointcloud.New(make([]r3.Vector, 4), "")
	degenerate, err := NewPointCloudImageFromCloud(flat, 2, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, degenerate.NormalCloudImage().NonzeroPixels(), test.ShouldBeEmpty)
}
