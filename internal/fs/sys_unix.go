//go:build linux || darwin

package fs

import (
	iofs "io/fs"

	"golang.org/x/sys/unix"
)

func access(path string, _ iofs.FileMode) (r, w, x bool) {
	r = unix.Access(path, unix.R_OK) == nil
	w = unix.Access(path, unix.W_OK) == nil
	x = unix.Access(path, unix.X_OK) == nil
	return r, w, x
}

func statVolume(path string) (VolumeInfo, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return VolumeInfo{}, err
	}
	return VolumeInfo{
		BlockSize:       uint64(st.Bsize),
		Blocks:          uint64(st.Blocks),
		AvailableBlocks: uint64(st.Bavail),
	}, nil
}
