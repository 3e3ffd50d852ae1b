// Package fileops implements the copy, move, delete and rename utilities
// behind the browser's file operations.
package fileops

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/CageChen/filehub/internal/logging"
	"github.com/CageChen/filehub/internal/metrics"
	"go.uber.org/zap"
)

// ErrInvalidName is returned for names that are empty or contain a path separator.
var ErrInvalidName = errors.New("invalid file name")

// ErrSameFile is returned when a copy or move would write a file onto itself.
var ErrSameFile = errors.New("source and destination are the same file")

// DeleteRecursive removes path, deleting directory children first. Each
// child is attempted independently; failures are logged, not collected.
// The returned error is nil only if path itself was removed.
func DeleteRecursive(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		children, err := os.ReadDir(path)
		if err != nil {
			logging.L().Warn("cannot list directory for delete", zap.String("path", path), zap.Error(err))
		}
		for _, child := range children {
			childPath := filepath.Join(path, child.Name())
			if err := DeleteRecursive(childPath); err != nil {
				logging.L().Warn("delete failed", zap.String("path", childPath), zap.Error(err))
			}
		}
	}
	return os.Remove(path)
}

// CopyFile copies the bytes of source to destination, creating missing
// parent directories. An existing destination is overwritten unless it is
// source itself, through any path or link. A failed copy leaves partial
// output in place.
func CopyFile(source, destination string) error {
	_, err := copyFile(source, destination)
	return err
}

func copyFile(source, destination string) (int64, error) {
	src, err := os.Open(source)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, fmt.Errorf("copy %s: is a directory", source)
	}
	if err := checkDistinct(info, source, destination); err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return 0, err
	}
	dst, err := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(dst, src)
	metrics.RecordBytesCopied(n)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, fmt.Errorf("copy %s to %s: %w", source, destination, err)
	}
	return n, nil
}

// MoveFile copies source to destination and then deletes source. When
// the copy fails the source is untouched. When only the delete fails the
// data exists at both paths and the error says so.
func MoveFile(source, destination string) error {
	if err := CopyFile(source, destination); err != nil {
		return err
	}
	if err := DeleteRecursive(source); err != nil {
		return fmt.Errorf("copied to %s but could not remove source: %w", destination, err)
	}
	return nil
}

// CopyTree copies a file or a directory tree to destination.
func CopyTree(source, destination string) error {
	info, err := os.Stat(source)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return CopyFile(source, destination)
	}
	if isWithin(destination, source) {
		return fmt.Errorf("cannot copy %s into itself", source)
	}

	return filepath.WalkDir(source, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		target := filepath.Join(destination, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return CopyFile(path, target)
	})
}

// Rename renames path to newName within the same parent directory and
// returns the new path.
func Rename(path, newName string) (string, error) {
	if err := validName(newName); err != nil {
		return "", err
	}
	target := filepath.Join(filepath.Dir(path), newName)
	if _, err := os.Lstat(target); err == nil {
		return "", fmt.Errorf("rename %s: %w", newName, os.ErrExist)
	}
	if err := os.Rename(path, target); err != nil {
		return "", err
	}
	return target, nil
}

// CreateFolder creates a new directory named name inside parent.
func CreateFolder(parent, name string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	target := filepath.Join(parent, name)
	if err := os.Mkdir(target, 0o755); err != nil {
		return "", err
	}
	return target, nil
}

// FolderSize returns the total size of regular files below path.
// Unreadable subdirectories count as empty.
func FolderSize(path string) int64 {
	var total int64
	_ = filepath.WalkDir(path, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				total += info.Size()
			}
		}
		return nil
	})
	return total
}

// checkDistinct fails with ErrSameFile when destination names the file
// described by srcInfo.
func checkDistinct(srcInfo os.FileInfo, source, destination string) error {
	dstInfo, err := os.Stat(destination)
	if err != nil {
		return nil
	}
	if os.SameFile(srcInfo, dstInfo) {
		return fmt.Errorf("%s to %s: %w", source, destination, ErrSameFile)
	}
	return nil
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
