// Package transform holds the pinhole camera model used to move between 3D points
// and pixels.
package transform

import (
	"fmt"
	"image"
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/perception/pointcloud"
	"go.viam.com/perception/referenceframe"
	"go.viam.com/perception/rimage"
	"go.viam.com/perception/utils"
)

// ErrNoIntrinsics is when a camera does not have intrinsics parameters or other parameters.
var ErrNoIntrinsics = errors.New("camera intrinsic parameters are not available")

// NewNoIntrinsicsError is used when the intrinsics are missing or invalid.
func NewNoIntrinsicsError(msg string) error {
	return errors.Wrap(ErrNoIntrinsics, msg)
}

// IntrinsicsConfig is the persisted form of CameraIntrinsics. A zero Fy means Fy equals Fx.
type IntrinsicsConfig struct {
	Frame  string  `json:"frame"`
	Fx     float64 `json:"fx"`
	Fy     float64 `json:"fy"`
	Cx     float64 `json:"cx"`
	Cy     float64 `json:"cy"`
	Skew   float64 `json:"skew"`
	Height int     `json:"height"`
	Width  int     `json:"width"`
}

// CheckValid checks if the fields for IntrinsicsConfig have valid inputs.
func (cfg *IntrinsicsConfig) CheckValid() error {
	if cfg == nil {
		return NewNoIntrinsicsError("Intrinsics do not exist")
	}
	if !utils.IsFinite(cfg.Fx) || cfg.Fx <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid focal length Fx = %#v", cfg.Fx))
	}
	if !utils.IsFinite(cfg.Fy) || cfg.Fy < 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid focal length Fy = %#v", cfg.Fy))
	}
	for name, v := range map[string]float64{"Cx": cfg.Cx, "Cy": cfg.Cy, "Skew": cfg.Skew} {
		if !utils.IsFinite(v) {
			return NewNoIntrinsicsError(fmt.Sprintf("Invalid %s = %#v", name, v))
		}
	}
	if cfg.Height < 0 || cfg.Width < 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid size (%#v, %#v)", cfg.Width, cfg.Height))
	}
	return nil
}

// CameraIntrinsics is an immutable pinhole camera model. The projection matrix
// K = [[fx, skew, cx], [0, fy, cy], [0, 0, 1]] and its inverse are computed once.
type CameraIntrinsics struct {
	cfg  IntrinsicsConfig
	k    *mat.Dense
	kInv *mat.Dense
}

// NewCameraIntrinsics validates cfg and builds the camera model.
func NewCameraIntrinsics(cfg IntrinsicsConfig) (*CameraIntrinsics, error) {
	if err := cfg.CheckValid(); err != nil {
		return nil, err
	}
	if cfg.Fy == 0 {
		cfg.Fy = cfg.Fx
	}
	cfg.Frame = referenceframe.OrDefault(cfg.Frame)

	k := mat.NewDense(3, 3, []float64{
		cfg.Fx, cfg.Skew, cfg.Cx,
		0, cfg.Fy, cfg.Cy,
		0, 0, 1,
	})
	var kInv mat.Dense
	if err := kInv.Inverse(k); err != nil {
		return nil, NewNoIntrinsicsError(fmt.Sprintf("projection matrix is not invertible: %v", err))
	}
	return &CameraIntrinsics{cfg: cfg, k: k, kInv: &kInv}, nil
}

// Config returns the parameters the camera was built from, with Fy filled in.
func (ci *CameraIntrinsics) Config() IntrinsicsConfig {
	return ci.cfg
}

// Frame returns the frame of the camera.
func (ci *CameraIntrinsics) Frame() string {
	return ci.cfg.Frame
}

// Fx is the x-axis focal length in pixels.
func (ci *CameraIntrinsics) Fx() float64 {
	return ci.cfg.Fx
}

// Fy is the y-axis focal length in pixels.
func (ci *CameraIntrinsics) Fy() float64 {
	return ci.cfg.Fy
}

// Cx is the x-axis optical center in pixels.
func (ci *CameraIntrinsics) Cx() float64 {
	return ci.cfg.Cx
}

// Cy is the y-axis optical center in pixels.
func (ci *CameraIntrinsics) Cy() float64 {
	return ci.cfg.Cy
}

// Skew returns the skew in pixels.
func (ci *CameraIntrinsics) Skew() float64 {
	return ci.cfg.Skew
}

// Height of the camera image in pixels.
func (ci *CameraIntrinsics) Height() int {
	return ci.cfg.Height
}

// Width of the camera image in pixels.
func (ci *CameraIntrinsics) Width() int {
	return ci.cfg.Width
}

// K returns a copy of the 3x3 projection matrix.
func (ci *CameraIntrinsics) K() *mat.Dense {
	return mat.DenseCopyOf(ci.k)
}

// ProjectionMatrix is an alias for K.
func (ci *CameraIntrinsics) ProjectionMatrix() *mat.Dense {
	return ci.K()
}

// WithOpticalCenter returns a copy of the camera with its optical center moved to (cx, cy).
func (ci *CameraIntrinsics) WithOpticalCenter(cx, cy float64) (*CameraIntrinsics, error) {
	cfg := ci.cfg
	cfg.Cx, cfg.Cy = cx, cy
	return NewCameraIntrinsics(cfg)
}

// WithCx returns a copy of the camera with a new x-axis optical center.
func (ci *CameraIntrinsics) WithCx(cx float64) (*CameraIntrinsics, error) {
	return ci.WithOpticalCenter(cx, ci.cfg.Cy)
}

// WithCy returns a copy of the camera with a new y-axis optical center.
func (ci *CameraIntrinsics) WithCy(cy float64) (*CameraIntrinsics, error) {
	return ci.WithOpticalCenter(ci.cfg.Cx, cy)
}

// project applies K to the columns of points and divides by the third row. It returns
// the pixel of every point along with its depth before the division.
func (ci *CameraIntrinsics) project(points *mat.Dense, roundPx bool) ([]image.Point, []float64) {
	if points.IsEmpty() {
		return nil, nil
	}
	var homog mat.Dense
	homog.Mul(ci.k, points)
	_, n := homog.Dims()
	pixels := make([]image.Point, n)
	depths := make([]float64, n)
	for i := 0; i < n; i++ {
		z := homog.At(2, i)
		u, v := homog.At(0, i)/z, homog.At(1, i)/z
		if roundPx {
			u, v = math.RoundToEven(u), math.RoundToEven(v)
		}
		pixels[i] = image.Point{X: utils.PixelCoord(u), Y: utils.PixelCoord(v)}
		depths[i] = z
	}
	return pixels, depths
}

func pointMatrix(v r3.Vector) *mat.Dense {
	return mat.NewDense(3, 1, []float64{v.X, v.Y, v.Z})
}

// ProjectPoint projects a single 3D point onto the image plane. When roundPx is set the
// pixel is rounded to the nearest integer, otherwise it is truncated. Points that do not
// project to a finite pixel, such as those at depth 0, get utils.OutOfFrame coordinates.
func (ci *CameraIntrinsics) ProjectPoint(pt pointcloud.Point, roundPx bool) (pointcloud.Point2D, error) {
	if err := referenceframe.CheckCompatible(ci, pt); err != nil {
		return pointcloud.Point2D{}, err
	}
	pixels, _ := ci.project(pointMatrix(pt.Vec), roundPx)
	return pointcloud.NewPoint2D(r2.Point{X: float64(pixels[0].X), Y: float64(pixels[0].Y)}, ci.Frame()), nil
}

// ProjectCloud projects every point of cloud onto the image plane, in order.
func (ci *CameraIntrinsics) ProjectCloud(cloud *pointcloud.PointCloud, roundPx bool) (*pointcloud.ImageCoords, error) {
	if err := referenceframe.CheckCompatible(ci, cloud); err != nil {
		return nil, err
	}
	pixels, _ := ci.project(cloud.Data(), roundPx)
	return pointcloud.NewImageCoords(pixels, ci.Frame()), nil
}

// ProjectToImage renders cloud into a float64 depth image of the camera's size. Each
// pixel holds the depth of the last point projected onto it, and 0 if none was.
func (ci *CameraIntrinsics) ProjectToImage(cloud *pointcloud.PointCloud, roundPx bool) (*rimage.DepthImage, error) {
	if err := referenceframe.CheckCompatible(ci, cloud); err != nil {
		return nil, err
	}
	return ci.rasterize(cloud.Data(), roundPx)
}

// ProjectPointToImage renders a single point into a float64 depth image of the camera's size.
func (ci *CameraIntrinsics) ProjectPointToImage(pt pointcloud.Point, roundPx bool) (*rimage.DepthImage, error) {
	if err := referenceframe.CheckCompatible(ci, pt); err != nil {
		return nil, err
	}
	return ci.rasterize(pointMatrix(pt.Vec), roundPx)
}

func (ci *CameraIntrinsics) rasterize(points *mat.Dense, roundPx bool) (*rimage.DepthImage, error) {
	height, width := ci.cfg.Height, ci.cfg.Width
	if height <= 0 || width <= 0 {
		return nil, NewNoIntrinsicsError(fmt.Sprintf("cannot render into a %dx%d image", height, width))
	}
	pixels, depths := ci.project(points, roundPx)
	bounds := image.Rect(0, 0, width, height)
	data := make([]float64, height*width)
	for i, p := range pixels {
		if p.In(bounds) {
			data[p.Y*width+p.X] = depths[i]
		}
	}
	return rimage.NewDepthImageFromValues(height, width, data, ci.Frame())
}

// Deproject lifts every pixel of depth into 3D as depth * K^-1 * (col, row, 1), in
// row-major pixel order. Pixels with no return become the camera origin.
func (ci *CameraIntrinsics) Deproject(depth *rimage.DepthImage) (*pointcloud.PointCloud, error) {
	if err := referenceframe.CheckCompatible(ci, depth); err != nil {
		return nil, err
	}
	grid := utils.HomogeneousPixelGrid(depth.Height(), depth.Width())
	var rays mat.Dense
	rays.Mul(ci.kInv, grid)
	_, n := rays.Dims()

	raw := depth.Raw()
	depths := make([]float64, n)
	switch backing := raw.Data().(type) {
	case []float32:
		for i := range depths {
			depths[i] = float64(backing[i])
		}
	case []float64:
		copy(depths, backing)
	default:
		return nil, utils.NewUnexpectedTypeError([]float64{}, backing)
	}

	for i, d := range depths {
		for row := 0; row < 3; row++ {
			rays.Set(row, i, d*rays.At(row, i))
		}
	}
	return pointcloud.NewFromMatrix(&rays, ci.Frame())
}

// DeprojectToImage deprojects depth and lays the points out as a point cloud image of
// the same size.
func (ci *CameraIntrinsics) DeprojectToImage(depth *rimage.DepthImage) (*rimage.PointCloudImage, error) {
	cloud, err := ci.Deproject(depth)
	if err != nil {
		return nil, err
	}
	return rimage.NewPointCloudImageFromCloud(cloud, depth.Height(), depth.Width())
}

// DeprojectPixel lifts a single pixel observed at depth into 3D.
func (ci *CameraIntrinsics) DeprojectPixel(depth float64, pixel pointcloud.Point2D) (pointcloud.Point, error) {
	if err := referenceframe.CheckCompatible(ci, pixel); err != nil {
		return pointcloud.Point{}, err
	}
	var ray mat.VecDense
	ray.MulVec(ci.kInv, mat.NewVecDense(3, []float64{pixel.Vec.X, pixel.Vec.Y, 1}))
	ray.ScaleVec(depth, &ray)
	return pointcloud.NewPoint(pointcloud.NewVector(ray.AtVec(0), ray.AtVec(1), ray.AtVec(2)), ci.Frame()), nil
}

// PointNormalCloud deprojects depth and pairs every point with the surface normal
// estimated from its neighbors.
func (ci *CameraIntrinsics) PointNormalCloud(depth *rimage.DepthImage) (*pointcloud.PointNormalCloud, error) {
	pointImage, err := ci.DeprojectToImage(depth)
	if err != nil {
		return nil, err
	}
	normals := pointImage.NormalCloudImage()
	return pointcloud.NewPointNormalCloud(pointImage.ToPointCloud(), normals.ToNormalCloud())
}
