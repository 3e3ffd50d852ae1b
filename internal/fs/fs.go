// Package fs provides filesystem abstractions for browsing local disk or git refs.
package fs

import (
	"errors"
	iofs "io/fs"
	"strings"
	"time"
)

// ErrReadOnly is returned when a mutating operation targets a read-only filesystem.
var ErrReadOnly = errors.New("filesystem is read-only")

// FileInfo holds file metadata as observed at stat time.
type FileInfo struct {
	Name       string
	Path       string // absolute path of the node
	IsDir      bool
	Hidden     bool
	Size       int64
	ModTime    time.Time
	Mode       iofs.FileMode
	CanRead    bool
	CanWrite   bool
	CanExecute bool
}

// DirEntry represents a single directory entry.
type DirEntry struct {
	Name  string
	IsDir bool
}

// VolumeInfo holds block-level statistics of the volume containing a path.
type VolumeInfo struct {
	BlockSize       uint64
	Blocks          uint64
	AvailableBlocks uint64
}

// FileSystem abstracts file operations so callers can work with either
// the local filesystem or a git object database.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	Stat(path string) (FileInfo, error)
	ReadDir(path string) ([]DirEntry, error)
}

// VolumeReader is implemented by filesystems backed by a real volume.
type VolumeReader interface {
	Volume(path string) (VolumeInfo, error)
}

// IsHidden reports whether name follows the dot-file hidden convention.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// Join joins a relative directory path and a child name using forward slashes.
func Join(dir, name string) string {
	if dir == "" || dir == "." {
		return name
	}
	return strings.TrimSuffix(dir, "/") + "/" + name
}
