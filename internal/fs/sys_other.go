//go:build !linux && !darwin

package fs

import (
	"errors"
	iofs "io/fs"
)

// access falls back to the owner permission bits.
func access(_ string, mode iofs.FileMode) (r, w, x bool) {
	perm := mode.Perm()
	return perm&0o400 != 0, perm&0o200 != 0, perm&0o100 != 0
}

func statVolume(string) (VolumeInfo, error) {
	return VolumeInfo{}, errors.ErrUnsupported
}
