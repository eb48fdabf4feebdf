package transform

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/perception/utils"
)

// IntrinsicsExtension is the file extension camera intrinsics are stored with.
const IntrinsicsExtension = ".intr"

// MarshalJSON writes the camera parameters. K is derived and never stored.
func (ci *CameraIntrinsics) MarshalJSON() ([]byte, error) {
	return json.Marshal(ci.cfg)
}

// UnmarshalJSON reads and validates camera parameters, recomputing K.
func (ci *CameraIntrinsics) UnmarshalJSON(data []byte) error {
	var cfg IntrinsicsConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return errors.Wrap(err, "error parsing intrinsics")
	}
	parsed, err := NewCameraIntrinsics(cfg)
	if err != nil {
		return err
	}
	*ci = *parsed
	return nil
}

// Save writes the camera parameters to path, which must have the .intr extension.
func (ci *CameraIntrinsics) Save(path string) (err error) {
	if !utils.HasExt(path, IntrinsicsExtension) {
		return utils.NewUnsupportedExtensionError(path, IntrinsicsExtension)
	}
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return json.NewEncoder(f).Encode(ci)
}

// LoadCameraIntrinsics reads camera parameters saved with Save.
func LoadCameraIntrinsics(path string) (*CameraIntrinsics, error) {
	if !utils.HasExt(path, IntrinsicsExtension) {
		return nil, utils.NewUnsupportedExtensionError(path, IntrinsicsExtension)
	}
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "error opening intrinsics file")
	}
	defer goutils.UncheckedErrorFunc(f.Close)
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrap(err, "error reading intrinsics file")
	}
	ci := &CameraIntrinsics{}
	if err := json.Unmarshal(data, ci); err != nil {
		return nil, err
	}
	return ci, nil
}
