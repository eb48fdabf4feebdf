package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"go.viam.com/perception/logging"
	"go.viam.com/perception/pointcloud"
	"go.viam.com/perception/rimage"
	"go.viam.com/perception/rimage/transform"
)

func printf(w io.Writer, format string, a ...interface{}) {
	if w == nil {
		return
	}
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

func newLogger(c *cli.Context) logging.Logger {
	level := zapcore.InfoLevel
	if c.Bool(debugFlag) {
		level = zapcore.DebugLevel
	}
	return logging.NewWriterLogger("perception", level, c.App.ErrWriter)
}

// IntrinsicsAction is the corresponding Action for 'intrinsics'.
func IntrinsicsAction(c *cli.Context) error {
	ci, err := transform.NewCameraIntrinsics(transform.IntrinsicsConfig{
		Frame:  c.String(frameFlag),
		Fx:     c.Float64(fxFlag),
		Fy:     c.Float64(fyFlag),
		Cx:     c.Float64(cxFlag),
		Cy:     c.Float64(cyFlag),
		Skew:   c.Float64(skewFlag),
		Height: c.Int(heightFlag),
		Width:  c.Int(widthFlag),
	})
	if err != nil {
		return err
	}
	if err := ci.Save(c.Path(outFlag)); err != nil {
		return errors.Wrap(err, "could not save intrinsics")
	}
	printf(c.App.Writer, "wrote %s intrinsics (fx %g, fy %g, cx %g, cy %g) to %s",
		ci.Frame(), ci.Fx(), ci.Fy(), ci.Cx(), ci.Cy(), c.Path(outFlag))
	return nil
}

// loadCameraInputs reads the intrinsics and depth image named by cameraInputFlags.
func loadCameraInputs(c *cli.Context, logger logging.Logger) (*transform.CameraIntrinsics, *rimage.DepthImage, error) {
	ci, err := transform.LoadCameraIntrinsics(c.Path(intrinsicsFlag))
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not load intrinsics")
	}
	frame := c.String(frameFlag)
	if frame == "" {
		frame = ci.Frame()
	}
	depth, err := rimage.OpenDepthImage(c.Path(depthFlag), frame, logger)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not load depth image")
	}
	logger.Infow("loaded depth image", "height", depth.Height(), "width", depth.Width(), "frame", depth.Frame())
	return ci, depth, nil
}

// DeprojectAction is the corresponding Action for 'deproject'.
func DeprojectAction(c *cli.Context) (err error) {
	logger := newLogger(c)
	ci, depth, err := loadCameraInputs(c, logger)
	if err != nil {
		return err
	}
	pcdType := pointcloud.PCDBinary
	if c.Bool(asciiFlag) {
		pcdType = pointcloud.PCDAscii
	}

	var write func(io.Writer) error
	var n int
	if c.Bool(normalsFlag) {
		cloud, err := ci.PointNormalCloud(depth)
		if err != nil {
			return err
		}
		n = cloud.Len()
		write = func(w io.Writer) error { return pointcloud.ToPCDWithNormals(cloud, w, pcdType) }
	} else {
		cloud, err := ci.Deproject(depth)
		if err != nil {
			return err
		}
		n = cloud.Len()
		write = func(w io.Writer) error { return pointcloud.ToPCD(cloud, w, pcdType) }
	}

	//nolint:gosec
	f, err := os.Create(c.Path(outFlag))
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	if err := write(f); err != nil {
		return errors.Wrap(err, "could not write point cloud")
	}
	logger.Infow("wrote point cloud", "points", n, "format", pcdType.String(), "path", c.Path(outFlag))
	printf(c.App.Writer, "wrote %d points to %s", n, c.Path(outFlag))
	return nil
}

// NormalsAction is the corresponding Action for 'normals'.
func NormalsAction(c *cli.Context) error {
	logger := newLogger(c)
	ci, depth, err := loadCameraInputs(c, logger)
	if err != nil {
		return err
	}
	points, err := ci.DeprojectToImage(depth)
	if err != nil {
		return err
	}
	normals := points.NormalCloudImage()
	if err := rimage.SaveImage(normals, c.Path(outFlag), logger); err != nil {
		return errors.Wrap(err, "could not save normals")
	}
	printf(c.App.Writer, "wrote %dx%d normals to %s", normals.Height(), normals.Width(), c.Path(outFlag))
	return nil
}

// RenderAction is the corresponding Action for 'render'.
func RenderAction(c *cli.Context) error {
	logger := newLogger(c)
	kind, err := rimage.ParseKind(c.String(kindFlag))
	if err != nil {
		return err
	}
	img, err := rimage.Open(kind, c.Path(inFlag), "", logger)
	if err != nil {
		return errors.Wrapf(err, "could not open %s image", kind)
	}
	if c.Bool(prettyFlag) {
		depth, ok := img.(*rimage.DepthImage)
		if !ok {
			return errors.Errorf("--%s only applies to depth images, not %s", prettyFlag, kind)
		}
		img = depth.ToPrettyPicture(c.Float64(minDepthFlag), c.Float64(maxDepthFlag))
	}
	if err := rimage.SaveImage(img, c.Path(outFlag), logger); err != nil {
		return errors.Wrap(err, "could not render image")
	}
	printf(c.App.Writer, "rendered %s image to %s", kind, c.Path(outFlag))
	return nil
}
