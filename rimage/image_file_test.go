package rimage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
	"gorgonia.org/tensor"

	"go.viam.com/perception/logging"
	"go.viam.com/perception/utils"
)

func TestRawRoundTrip(t *testing.T) {
	logger := logging.NewTestLogger(t)
	dir := t.TempDir()
	img, err := NewDepthImage(tensor.New(tensor.WithShape(2, 3), tensor.WithBacking([]float32{0, 0.5, 1, 1.5, 2, 2.5})), "camera")
	test.That(t, err, test.ShouldBeNil)

	for _, ext := range RawExtensions {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(dir, "depth"+ext)
			test.That(t, SaveImage(img, path, logger), test.ShouldBeNil)

			data, err := LoadData(path, logger)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, []int(data.Shape()), test.ShouldResemble, []int{2, 3, 1})
			test.That(t, data.Dtype(), test.ShouldResemble, tensor.Float32)

			loaded, err := OpenDepthImage(path, "camera", logger)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, loaded.Raw().Data(), test.ShouldResemble, img.Raw().Data())
			test.That(t, loaded.Frame(), test.ShouldEqual, "camera")
		})
	}
}

func TestRasterRoundTrip(t *testing.T) {
	logger := logging.NewTestLogger(t)
	dir := t.TempDir()
	backing := make([]uint8, 4*5*3)
	for i := range backing {
		backing[i] = uint8(i * 4)
	}
	img, err := NewColorImage(tensor.New(tensor.WithShape(4, 5, 3), tensor.WithBacking(backing)), "")
	test.That(t, err, test.ShouldBeNil)

	for _, ext := range []string{".png", ".bmp", ".tiff", ".ppm", ".qoi"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(dir, "color"+ext)
			test.That(t, SaveImage(img, path, logger), test.ShouldBeNil)
			loaded, err := OpenColorImage(path, "", logger)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, loaded.Raw().Data(), test.ShouldResemble, backing)
		})
	}

	t.Run("grayscale", func(t *testing.T) {
		gray := img.R()
		path := filepath.Join(dir, "gray.png")
		test.That(t, SaveImage(gray, path, logger), test.ShouldBeNil)
		data, err := LoadData(path, logger)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, []int(data.Shape()), test.ShouldResemble, []int{4, 5})
		loaded, err := OpenGrayscaleImage(path, "", logger)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, loaded.Raw().Data(), test.ShouldResemble, gray.Raw().Data())
	})

	t.Run("binary", func(t *testing.T) {
		mask, err := NewBinaryImage(tensor.New(tensor.WithShape(2, 2), tensor.WithBacking([]uint8{0, 255, 255, 0})), "")
		test.That(t, err, test.ShouldBeNil)
		path := filepath.Join(dir, "mask.png")
		test.That(t, SaveImage(mask, path, logger), test.ShouldBeNil)
		loaded, err := Open(KindBinary, path, "", logger)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, loaded.Kind(), test.ShouldEqual, KindBinary)
		test.That(t, loaded.Raw().Data(), test.ShouldResemble, []uint8{0, 255, 255, 0})
	})

	t.Run("gray ppm", func(t *testing.T) {
		gray := img.G()
		path := filepath.Join(dir, "gray.ppm")
		test.That(t, SaveImage(gray, path, logger), test.ShouldBeNil)
		loaded, err := OpenGrayscaleImage(path, "", logger)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, loaded.Raw().Data(), test.ShouldResemble, gray.Raw().Data())

		mask, err := NewBinaryImage(tensor.New(tensor.WithShape(1, 3), tensor.WithBacking([]uint8{255, 0, 255})), "")
		test.That(t, err, test.ShouldBeNil)
		maskPath := filepath.Join(dir, "mask.ppm")
		test.That(t, SaveImage(mask, maskPath, logger), test.ShouldBeNil)
		loadedMask, err := OpenBinaryImage(maskPath, "", logger)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, loadedMask.Raw().Data(), test.ShouldResemble, []uint8{255, 0, 255})
	})
}

func TestOpenBinaryImageDtype(t *testing.T) {
	logger := logging.NewTestLogger(t)
	dir := t.TempDir()

	writeNpy := func(name string, data *tensor.Dense) string {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		test.That(t, err, test.ShouldBeNil)
		defer f.Close()
		test.That(t, data.WriteNpy(f), test.ShouldBeNil)
		return path
	}

	floats := writeNpy("floats.npy", tensor.New(tensor.WithShape(1, 2), tensor.WithBacking([]float64{300, 0.5})))
	_, err := OpenBinaryImage(floats, "", logger)
	test.That(t, errors.Is(err, ErrInvalidData), test.ShouldBeTrue)
	_, err = Open(KindBinary, floats, "", logger)
	test.That(t, errors.Is(err, ErrInvalidData), test.ShouldBeTrue)

	masks := writeNpy("masks.npy", tensor.New(tensor.WithShape(1, 2, 2), tensor.WithBacking([]uint8{200, 0, 3, 255})))
	mask, err := OpenBinaryImage(masks, "", logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mask.Raw().Data(), test.ShouldResemble, []uint8{255, 0})
}

func TestRasterLoadScaling(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	dir := t.TempDir()

	ir, err := NewIrImage(tensor.New(tensor.WithShape(1, 3), tensor.WithBacking([]uint16{0, 257, 65535})), "")
	test.That(t, err, test.ShouldBeNil)
	irPath := filepath.Join(dir, "ir.png")
	test.That(t, SaveImage(ir, irPath, logger), test.ShouldBeNil)
	test.That(t, logs.FilterMessageSnippet("quantized").Len(), test.ShouldEqual, 1)
	loadedIr, err := OpenIrImage(irPath, "", logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, loadedIr.Raw().Data(), test.ShouldResemble, []uint16{0, 257, 65535})

	depth, err := NewDepthImageFromValues(1, 2, []float64{0.2, 1}, "")
	test.That(t, err, test.ShouldBeNil)
	depthPath := filepath.Join(dir, "depth.png")
	test.That(t, SaveImage(depth, depthPath, logger), test.ShouldBeNil)
	loadedDepth, err := OpenDepthImage(depthPath, "", logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, loadedDepth.Dtype(), test.ShouldResemble, tensor.Float32)
	test.That(t, loadedDepth.Depth(0, 0), test.ShouldAlmostEqual, 0.2, 1e-6)
	test.That(t, loadedDepth.Depth(0, 1), test.ShouldAlmostEqual, 1.0, 1e-6)

	jpegPath := filepath.Join(dir, "color.jpg")
	test.That(t, SaveImage(constantColor(t, 8, 8, 128), jpegPath, logger), test.ShouldBeNil)
	test.That(t, logs.FilterMessageSnippet("lossy").Len(), test.ShouldEqual, 1)
	loaded, err := OpenColorImage(jpegPath, "", logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, loaded.At(4, 4)[0], test.ShouldAlmostEqual, 128.0, 2)
}

func TestSaveImageErrors(t *testing.T) {
	logger := logging.NewTestLogger(t)
	dir := t.TempDir()
	img := constantColor(t, 2, 2, 0)

	err := SaveImage(img, filepath.Join(dir, "color.gif"), logger)
	test.That(t, errors.Is(err, utils.ErrUnsupportedExtension), test.ShouldBeTrue)

	normals, err := NewNormalCloudImage(tensor.New(tensor.WithShape(1, 1, 3), tensor.WithBacking([]float64{0, 1, 0})), "")
	test.That(t, err, test.ShouldBeNil)
	err = SaveImage(normals, filepath.Join(dir, "normals.png"), logger)
	test.That(t, errors.Is(err, ErrNotSupported), test.ShouldBeTrue)
	test.That(t, SaveImage(normals, filepath.Join(dir, "normals.npz"), logger), test.ShouldBeNil)
	loaded, err := OpenNormalCloudImage(filepath.Join(dir, "normals.npz"), "", logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, loaded.At(0, 0), test.ShouldResemble, []float64{0, 1, 0})

	_, err = LoadData(filepath.Join(dir, "missing.npy"), logger)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = LoadData(filepath.Join(dir, "data.csv"), logger)
	test.That(t, errors.Is(err, utils.ErrUnsupportedExtension), test.ShouldBeTrue)

	garbage := filepath.Join(dir, "garbage.png")
	test.That(t, os.WriteFile(garbage, []byte("not a png"), 0o600), test.ShouldBeNil)
	_, err = OpenColorImage(garbage, "", logger)
	test.That(t, err, test.ShouldNotBeNil)

	wrongKind := filepath.Join(dir, "ir.npy")
	ir, err := NewIrImage(tensor.New(tensor.WithShape(1, 1), tensor.WithBacking([]uint16{3})), "")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, SaveImage(ir, wrongKind, logger), test.ShouldBeNil)
	_, err = OpenDepthImage(wrongKind, "", logger)
	test.That(t, errors.Is(err, ErrInvalidData), test.ShouldBeTrue)
}
