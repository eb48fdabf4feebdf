package rimage

import (
	"image"
	"math"

	"github.com/golang/geo/r3"
	"gorgonia.org/tensor"

	"go.viam.com/perception/pointcloud"
	"go.viam.com/perception/utils"
)

// PointCloudImage is a 3 channel float32 or float64 image holding the (x, y, z) point
// observed at each pixel.
type PointCloudImage struct {
	base[*PointCloudImage]
}

func wrapPointCloud(r raster) *PointCloudImage {
	im := &PointCloudImage{}
	im.base = base[*PointCloudImage]{raster: r, wrap: wrapPointCloud}
	return im
}

// NewPointCloudImage returns a point cloud image over data, which must be float32 or
// float64 with 3 channels.
func NewPointCloudImage(data *tensor.Dense, frame string) (*PointCloudImage, error) {
	r, err := rasterFromTensor(KindPointCloud, data, frame)
	if err != nil {
		return nil, err
	}
	im := wrapPointCloud(r)
	if err := im.Validate(); err != nil {
		return nil, err
	}
	return im, nil
}

// NewPointCloudImageFromCloud lays a cloud of height*width points out row-major as a
// float64 image in the cloud's frame.
func NewPointCloudImageFromCloud(cloud *pointcloud.PointCloud, height, width int) (*PointCloudImage, error) {
	r, err := rasterFromVectors(KindPointCloud, cloud.Vectors(), height, width, cloud.Frame())
	if err != nil {
		return nil, err
	}
	return wrapPointCloud(r), nil
}

func rasterFromVectors(kind Kind, vecs []r3.Vector, height, width int, frame string) (raster, error) {
	if height <= 0 || width <= 0 || len(vecs) != height*width {
		return raster{}, newInvalidDataError(kind, "cannot lay out %d vectors as %dx%d", len(vecs), height, width)
	}
	r := newRaster(height, width, 3, tensor.Float64, frame)
	for i, v := range vecs {
		r.data[3*i], r.data[3*i+1], r.data[3*i+2] = v.X, v.Y, v.Z
	}
	return r, nil
}

func (r raster) vectors() []r3.Vector {
	vecs := make([]r3.Vector, r.height*r.width)
	for i := range vecs {
		vecs[i] = r3.Vector{X: r.data[3*i], Y: r.data[3*i+1], Z: r.data[3*i+2]}
	}
	return vecs
}

// Kind returns KindPointCloud.
func (im *PointCloudImage) Kind() Kind {
	return KindPointCloud
}

// Validate checks that the data is float32 or float64 with 3 channels.
func (im *PointCloudImage) Validate() error {
	if im.dtype != tensor.Float32 && im.dtype != tensor.Float64 {
		return newDtypeError(KindPointCloud, im.dtype, tensor.Float32, tensor.Float64)
	}
	if im.channels != 3 {
		return newChannelsError(KindPointCloud, im.channels, 3)
	}
	return nil
}

// ToPointCloud flattens the image into a cloud in row-major pixel order.
func (im *PointCloudImage) ToPointCloud() *pointcloud.PointCloud {
	return pointcloud.New(im.vectors(), im.frame)
}

// NormalCloudImage estimates the surface normal at every pixel as the normalized cross
// product of the derivatives of the points along rows and along columns. Normals point
// towards the camera for surfaces facing it. Where the cross product vanishes the
// normal is the zero vector.
func (im *PointCloudImage) NormalCloudImage() *NormalCloudImage {
	dRow, dCol := im.vectorGradient()
	normals := make([]r3.Vector, len(dRow))
	for i := range normals {
		normals[i] = surfaceNormal(dRow[i], dCol[i])
	}
	// same layout as the receiver, so this cannot fail
	r, _ := rasterFromVectors(KindNormalCloud, normals, im.height, im.width, im.frame)
	return wrapNormalCloud(r)
}

// Resize resamples the points without quantizing them.
func (im *PointCloudImage) Resize(size Size, interp Interpolation) (*PointCloudImage, error) {
	r, err := im.resizeFloat(size, interp)
	if err != nil {
		return nil, err
	}
	return wrapPointCloud(r), nil
}

// EncodeForDisplay is not supported for point cloud images.
func (im *PointCloudImage) EncodeForDisplay() (image.Image, error) {
	return nil, newNotSupportedError(KindPointCloud, "display encoding")
}

// NormalCloudImage is a 3 channel float32 or float64 image of surface normals. Every
// normal is either unit length or exactly zero.
type NormalCloudImage struct {
	base[*NormalCloudImage]
}

func wrapNormalCloud(r raster) *NormalCloudImage {
	im := &NormalCloudImage{}
	im.base = base[*NormalCloudImage]{raster: r, wrap: wrapNormalCloud}
	return im
}

// NewNormalCloudImage returns a normal cloud image over data, which must be float32 or
// float64 with 3 channels whose vectors are unit length or zero.
func NewNormalCloudImage(data *tensor.Dense, frame string) (*NormalCloudImage, error) {
	r, err := rasterFromTensor(KindNormalCloud, data, frame)
	if err != nil {
		return nil, err
	}
	im := wrapNormalCloud(r)
	if err := im.Validate(); err != nil {
		return nil, err
	}
	return im, nil
}

// NewNormalCloudImageFromCloud lays a cloud of height*width normals out row-major as a
// float64 image in the cloud's frame.
func NewNormalCloudImageFromCloud(cloud *pointcloud.NormalCloud, height, width int) (*NormalCloudImage, error) {
	r, err := rasterFromVectors(KindNormalCloud, cloud.Vectors(), height, width, cloud.Frame())
	if err != nil {
		return nil, err
	}
	im := wrapNormalCloud(r)
	if err := im.Validate(); err != nil {
		return nil, err
	}
	return im, nil
}

// Kind returns KindNormalCloud.
func (im *NormalCloudImage) Kind() Kind {
	return KindNormalCloud
}

// Validate checks that the data is float32 or float64 with 3 channels and that every
// vector has norm 0 or a norm within NormalTolerance of 1.
func (im *NormalCloudImage) Validate() error {
	if im.dtype != tensor.Float32 && im.dtype != tensor.Float64 {
		return newDtypeError(KindNormalCloud, im.dtype, tensor.Float32, tensor.Float64)
	}
	if im.channels != 3 {
		return newChannelsError(KindNormalCloud, im.channels, 3)
	}
	for i, v := range im.vectors() {
		norm := v.Norm()
		if math.IsNaN(norm) || (norm != 0 && !utils.Float64AlmostEqual(norm, 1, NormalTolerance)) {
			return newInvalidDataError(KindNormalCloud, "normal %d has norm %v", i, norm)
		}
	}
	return nil
}

// ToNormalCloud flattens the image into a normal cloud in row-major pixel order.
func (im *NormalCloudImage) ToNormalCloud() *pointcloud.NormalCloud {
	return pointcloud.NewNormalCloud(im.vectors(), im.frame)
}

// Resize is not supported for normal cloud images since resampling breaks unit length.
func (im *NormalCloudImage) Resize(Size, Interpolation) (*NormalCloudImage, error) {
	return nil, newNotSupportedError(KindNormalCloud, "resize")
}

// EncodeForDisplay is not supported for normal cloud images.
func (im *NormalCloudImage) EncodeForDisplay() (image.Image, error) {
	return nil, newNotSupportedError(KindNormalCloud, "display encoding")
}
