package fs

import (
	"os"
	"path/filepath"
	"strings"
)

// LocalFS implements FileSystem using the local filesystem.
type LocalFS struct {
	root string
}

// NewLocalFS creates a LocalFS rooted at the given directory.
func NewLocalFS(root string) *LocalFS {
	return &LocalFS{root: root}
}

// Root returns the directory the filesystem is rooted at.
func (l *LocalFS) Root() string {
	return l.root
}

// Abs returns the OS path for a path relative to the root.
func (l *LocalFS) Abs(path string) string {
	if path == "" || path == "." {
		return l.root
	}
	return filepath.Join(l.root, filepath.FromSlash(path))
}

// ReadFile reads the contents of the file at the given path relative to the root.
// A symlink whose target lies outside the root fails with os.ErrPermission.
func (l *LocalFS) ReadFile(path string) ([]byte, error) {
	abs := l.Abs(path)
	if err := l.contain(abs); err != nil {
		return nil, err
	}
	return os.ReadFile(abs)
}

// contain checks that abs, with symlinks resolved, stays under the root.
func (l *LocalFS) contain(abs string) error {
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return err
	}
	root, err := filepath.EvalSymlinks(l.root)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return &os.PathError{Op: "open", Path: abs, Err: os.ErrPermission}
	}
	return nil
}

// Stat returns metadata for the file or directory at the given path relative to the root.
// Symlinks are followed, matching what a directory listing shows.
func (l *LocalFS) Stat(path string) (FileInfo, error) {
	abs := l.Abs(path)
	info, err := os.Stat(abs)
	if err != nil {
		return FileInfo{}, err
	}
	r, w, x := access(abs, info.Mode())
	fi := FileInfo{
		Name:       info.Name(),
		Path:       abs,
		IsDir:      info.IsDir(),
		Hidden:     IsHidden(info.Name()),
		Size:       info.Size(),
		ModTime:    info.ModTime(),
		Mode:       info.Mode(),
		CanRead:    r,
		CanWrite:   w,
		CanExecute: x,
	}
	if fi.IsDir {
		fi.Size = 0
	}
	return fi, nil
}

// ReadDir lists the immediate children of the directory at the given path relative to the root.
func (l *LocalFS) ReadDir(path string) ([]DirEntry, error) {
	entries, err := os.ReadDir(l.Abs(path))
	if err != nil {
		return nil, err
	}
	result := make([]DirEntry, len(entries))
	for i, e := range entries {
		result[i] = DirEntry{
			Name:  e.Name(),
			IsDir: e.IsDir(),
		}
	}
	return result, nil
}

// Volume returns block statistics for the volume holding path.
func (l *LocalFS) Volume(path string) (VolumeInfo, error) {
	return statVolume(l.Abs(path))
}
