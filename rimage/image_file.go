package rimage

import (
	"archive/zip"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"strings"

	"github.com/lmittmann/ppm"
	"github.com/pkg/errors"
	"github.com/xfmoulet/qoi"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"gorgonia.org/tensor"

	"go.viam.com/perception/logging"
	"go.viam.com/perception/utils"
)

// File extensions understood by SaveImage and the loaders.
var (
	RasterExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".ppm", ".qoi"}
	RawExtensions    = []string{".npy", ".npz"}
)

// npzEntry is the archive member holding the array, as numpy names the first positional array.
const npzEntry = "arr_0.npy"

func supportedExtensions() []string {
	return append(append([]string(nil), RasterExtensions...), RawExtensions...)
}

// SaveImage writes img to path. Raster formats store the display encoding of the image,
// .npy stores the raw data and .npz stores the raw data in a deflated zip archive.
func SaveImage(img Image, path string, logger logging.Logger) (err error) {
	ext := utils.LowerExt(path)
	var encode func(io.Writer) error
	switch {
	case utils.HasExt(path, RawExtensions...):
		raw := img.Raw()
		if ext == ".npy" {
			encode = raw.WriteNpy
		} else {
			encode = func(w io.Writer) error { return writeNpz(w, raw) }
		}
	case utils.HasExt(path, RasterExtensions...):
		display, err := img.EncodeForDisplay()
		if err != nil {
			return errors.Wrapf(err, "cannot save %s image as %s", img.Kind(), ext)
		}
		if img.Kind() == KindDepth || img.Kind() == KindIr {
			logger.Warnw("raster formats store the display encoding, depth and ir values are quantized",
				"path", path, "kind", img.Kind())
		}
		if ext == ".jpg" || ext == ".jpeg" {
			logger.Warnw("jpeg compression is lossy", "path", path)
		}
		encode = func(w io.Writer) error { return encodeRaster(w, ext, display) }
	default:
		return utils.NewUnsupportedExtensionError(path, supportedExtensions()...)
	}

	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	if err := encode(f); err != nil {
		return errors.Wrapf(err, "error encoding %q", path)
	}
	h, w, c := img.Shape()
	logger.Debugw("saved image", "path", path, "kind", img.Kind(), "shape", []int{h, w, c}, "dtype", img.Dtype().String())
	return nil
}

func encodeRaster(w io.Writer, ext string, img image.Image) error {
	switch ext {
	case ".png":
		return png.Encode(w, img)
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	case ".bmp":
		return bmp.Encode(w, img)
	case ".tif", ".tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case ".ppm":
		// ppm only writes the RGBA color model
		rgba := image.NewRGBA(img.Bounds())
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
		return ppm.Encode(w, rgba)
	case ".qoi":
		return qoi.Encode(w, img)
	default:
		return utils.NewUnsupportedExtensionError(ext, RasterExtensions...)
	}
}

func writeNpz(w io.Writer, raw *tensor.Dense) error {
	zw := zip.NewWriter(w)
	entry, err := zw.CreateHeader(&zip.FileHeader{Name: npzEntry, Method: zip.Deflate})
	if err != nil {
		return err
	}
	if err := raw.WriteNpy(entry); err != nil {
		return multierr.Combine(err, zw.Close())
	}
	return zw.Close()
}

// LoadData reads the array stored at path. Raster files decode to (height, width) uint8
// or uint16 data for gray images and (height, width, 3) uint8 data otherwise.
func LoadData(path string, logger logging.Logger) (*tensor.Dense, error) {
	var data *tensor.Dense
	var err error
	switch {
	case utils.HasExt(path, ".npy"):
		data, err = readNpyFile(path)
	case utils.HasExt(path, ".npz"):
		data, err = readNpzFile(path)
	case utils.HasExt(path, RasterExtensions...):
		data, err = readRasterFile(path, logger)
	default:
		return nil, utils.NewUnsupportedExtensionError(path, supportedExtensions()...)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error loading %q", path)
	}
	logger.Debugw("loaded data", "path", path, "shape", []int(data.Shape()), "dtype", data.Dtype().String())
	return data, nil
}

func readNpyFile(path string) (*tensor.Dense, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer goutils.UncheckedErrorFunc(f.Close)
	data := &tensor.Dense{}
	if err := data.ReadNpy(f); err != nil {
		return nil, err
	}
	return data, nil
}

func readNpzFile(path string) (*tensor.Dense, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer goutils.UncheckedErrorFunc(zr.Close)

	var member *zip.File
	for _, f := range zr.File {
		if f.Name == npzEntry {
			member = f
			break
		}
		if member == nil && strings.HasSuffix(f.Name, ".npy") {
			member = f
		}
	}
	if member == nil {
		return nil, errors.New("archive holds no .npy array")
	}
	rc, err := member.Open()
	if err != nil {
		return nil, err
	}
	defer goutils.UncheckedErrorFunc(rc.Close)
	data := &tensor.Dense{}
	if err := data.ReadNpy(rc); err != nil {
		return nil, err
	}
	return data, nil
}

func readRasterFile(path string, logger logging.Logger) (*tensor.Dense, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer goutils.UncheckedErrorFunc(f.Close)
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	logger.Debugw("decoded raster", "path", path, "format", format, "bounds", img.Bounds().String())
	return stdImageToTensor(img), nil
}

func stdImageToTensor(img image.Image) *tensor.Dense {
	b := img.Bounds()
	h, w := b.Dy(), b.Dx()
	switch gray := img.(type) {
	case *image.Gray:
		backing := make([]uint8, 0, h*w)
		for row := b.Min.Y; row < b.Max.Y; row++ {
			for col := b.Min.X; col < b.Max.X; col++ {
				backing = append(backing, gray.GrayAt(col, row).Y)
			}
		}
		return tensor.New(tensor.WithShape(h, w), tensor.WithBacking(backing))
	case *image.Gray16:
		backing := make([]uint16, 0, h*w)
		for row := b.Min.Y; row < b.Max.Y; row++ {
			for col := b.Min.X; col < b.Max.X; col++ {
				backing = append(backing, gray.Gray16At(col, row).Y)
			}
		}
		return tensor.New(tensor.WithShape(h, w), tensor.WithBacking(backing))
	default:
		return FromStdImage(img, "").Raw()
	}
}

// loadRaster loads path for an image of the given kind. convert only applies to files in a
// raster format.
func loadRaster(kind Kind, path, frame string, logger logging.Logger, convert func(raster) raster) (raster, error) {
	data, err := LoadData(path, logger)
	if err != nil {
		return raster{}, err
	}
	r, err := rasterFromTensor(kind, data, frame)
	if err != nil {
		return raster{}, err
	}
	if convert != nil && utils.HasExt(path, RasterExtensions...) {
		r = convert(r)
	}
	return r, nil
}

// firstChannelScaled keeps the first channel, multiplied by scale and stored as dtype.
// Integer dtypes truncate and saturate.
func firstChannelScaled(dtype tensor.Dtype, scale float64) func(raster) raster {
	return func(r raster) raster {
		out := newRaster(r.height, r.width, 1, dtype, r.frame)
		for i := range out.data {
			v := r.data[i*r.channels] * scale
			switch dtype {
			case tensor.Uint8:
				v = utils.ClampFloat(math.Trunc(v), 0, math.MaxUint8)
			case tensor.Uint16:
				v = utils.ClampFloat(math.Trunc(v), 0, math.MaxUint16)
			}
			out.data[i] = v
		}
		return out
	}
}

// firstChannel keeps the first channel with the element type unchanged.
func firstChannel(r raster) raster {
	if r.channels == 1 {
		return r
	}
	return firstChannelScaled(r.dtype, 1)(r)
}

func open[I Image](kind Kind, path, frame string, logger logging.Logger, convert func(raster) raster, wrap func(raster) I) (I, error) {
	var zero I
	r, err := loadRaster(kind, path, frame, logger, convert)
	if err != nil {
		return zero, err
	}
	im := wrap(r)
	if err := im.Validate(); err != nil {
		return zero, errors.Wrapf(err, "error loading %q", path)
	}
	return im, nil
}

// OpenColorImage loads a color image. Raw data of any supported element type is cast to uint8.
func OpenColorImage(path, frame string, logger logging.Logger) (*ColorImage, error) {
	return open(KindColor, path, frame, logger, nil, func(r raster) *ColorImage {
		return wrapColor(r.cast(tensor.Uint8))
	})
}

// OpenDepthImage loads a depth image. Raster files are read as their first channel
// scaled by MaxDepth/255 into float32.
func OpenDepthImage(path, frame string, logger logging.Logger) (*DepthImage, error) {
	return open(KindDepth, path, frame, logger, firstChannelScaled(tensor.Float32, MaxDepth/math.MaxUint8), wrapDepth)
}

// OpenIrImage loads an ir image. Raster files are read as their first channel scaled by
// MaxIR/255 into uint16.
func OpenIrImage(path, frame string, logger logging.Logger) (*IrImage, error) {
	return open(KindIr, path, frame, logger, firstChannelScaled(tensor.Uint16, MaxIR/math.MaxUint8), wrapIr)
}

// OpenGrayscaleImage loads a grayscale image. Raster files are read as their first channel.
func OpenGrayscaleImage(path, frame string, logger logging.Logger) (*GrayscaleImage, error) {
	return open(KindGrayscale, path, frame, logger, firstChannelScaled(tensor.Uint8, 1), wrapGrayscale)
}

// OpenBinaryImage loads a binary image from its first channel, binarized at DefaultBinaryThreshold.
// Raw data must already be uint8.
func OpenBinaryImage(path, frame string, logger logging.Logger) (*BinaryImage, error) {
	return open(KindBinary, path, frame, logger, firstChannelScaled(tensor.Uint8, 1), func(r raster) *BinaryImage {
		r = firstChannel(r)
		binarize(r.data, DefaultBinaryThreshold)
		return wrapBinary(r)
	})
}

// OpenPointCloudImage loads a point cloud image from raw data.
func OpenPointCloudImage(path, frame string, logger logging.Logger) (*PointCloudImage, error) {
	return open(KindPointCloud, path, frame, logger, nil, wrapPointCloud)
}

// OpenNormalCloudImage loads a normal cloud image from raw data.
func OpenNormalCloudImage(path, frame string, logger logging.Logger) (*NormalCloudImage, error) {
	return open(KindNormalCloud, path, frame, logger, nil, wrapNormalCloud)
}

// Open loads an image of the given kind.
func Open(kind Kind, path, frame string, logger logging.Logger) (Image, error) {
	var img Image
	var err error
	switch kind {
	case KindColor:
		img, err = asImage(OpenColorImage(path, frame, logger))
	case KindDepth:
		img, err = asImage(OpenDepthImage(path, frame, logger))
	case KindIr:
		img, err = asImage(OpenIrImage(path, frame, logger))
	case KindGrayscale:
		img, err = asImage(OpenGrayscaleImage(path, frame, logger))
	case KindBinary:
		img, err = asImage(OpenBinaryImage(path, frame, logger))
	case KindPointCloud:
		img, err = asImage(OpenPointCloudImage(path, frame, logger))
	case KindNormalCloud:
		img, err = asImage(OpenNormalCloudImage(path, frame, logger))
	default:
		return nil, errors.Errorf("unknown image kind %q", kind)
	}
	if err != nil {
		return nil, err
	}
	return img, nil
}

// asImage keeps a failed load from producing a non-nil Image holding a nil pointer.
func asImage[I Image](img I, err error) (Image, error) {
	if err != nil {
		return nil, err
	}
	return img, nil
}
