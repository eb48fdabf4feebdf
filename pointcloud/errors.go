package pointcloud

import "github.com/pkg/errors"

func errNotThreeRows(rows int) error {
	return errors.Errorf("expected a matrix with 3 rows but got %d", rows)
}

func errLengthMismatch(points, normals int) error {
	return errors.Errorf("cloud has %d points but %d normals", points, normals)
}
