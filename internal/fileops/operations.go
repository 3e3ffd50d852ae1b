package fileops

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/CageChen/filehub/internal/filekind"
	"github.com/CageChen/filehub/internal/logging"
	"github.com/CageChen/filehub/internal/metrics"
	"github.com/CageChen/filehub/internal/snapshot"
	"go.uber.org/zap"
)

// ErrNoSelection is returned when a batch operation is given no paths.
var ErrNoSelection = errors.New("no files selected")

// ItemResult is the outcome of a batch operation for one source path.
type ItemResult struct {
	Source string `json:"source"`
	Target string `json:"target,omitempty"`
	Error  string `json:"error,omitempty"`
}

// BatchResult collects per-item outcomes of a batch operation.
type BatchResult struct {
	Items []ItemResult `json:"items"`
}

// Failed returns the number of items that did not succeed.
func (b BatchResult) Failed() int {
	n := 0
	for _, it := range b.Items {
		if it.Error != "" {
			n++
		}
	}
	return n
}

// Properties describes a selected file or directory.
type Properties struct {
	snapshot.Entry
	Category      filekind.Category `json:"category"`
	MIMEType      string            `json:"mimeType"`
	TotalSize     int64             `json:"totalSize"`
	FormattedSize string            `json:"formattedSize"`
	Modified      string            `json:"modified"`
	Items         int               `json:"items,omitempty"`
}

// Operations is the capability the UI layer invokes for selected entries.
type Operations interface {
	Copy(ctx context.Context, sources []string, destDir string) (BatchResult, error)
	Move(ctx context.Context, sources []string, destDir string) (BatchResult, error)
	Delete(ctx context.Context, paths []string) (BatchResult, error)
	Rename(ctx context.Context, path, newName string) (string, error)
	CreateFolder(ctx context.Context, parent, name string) (string, error)
	Properties(ctx context.Context, paths []string) ([]Properties, error)
}

// Local implements Operations on the local filesystem.
type Local struct{}

var _ Operations = Local{}

// Copy copies each source into destDir. A source whose name is already
// taken in destDir fails with os.ErrExist and nothing is overwritten.
func (Local) Copy(ctx context.Context, sources []string, destDir string) (BatchResult, error) {
	return batch(ctx, "copy", sources, func(src string) (string, error) {
		target := filepath.Join(destDir, filepath.Base(src))
		if err := claim(src, target); err != nil {
			return target, err
		}
		return target, CopyTree(src, target)
	})
}

// Move moves each source into destDir, renaming when possible and
// falling back to copy and delete across volumes. Existing targets are
// refused the same way Copy refuses them.
func (Local) Move(ctx context.Context, sources []string, destDir string) (BatchResult, error) {
	return batch(ctx, "move", sources, func(src string) (string, error) {
		target := filepath.Join(destDir, filepath.Base(src))
		if err := claim(src, target); err != nil {
			return target, err
		}
		if err := os.Rename(src, target); err == nil {
			return target, nil
		}
		if err := CopyTree(src, target); err != nil {
			return target, err
		}
		return target, DeleteRecursive(src)
	})
}

// Delete removes each path recursively.
func (Local) Delete(ctx context.Context, paths []string) (BatchResult, error) {
	return batch(ctx, "delete", paths, func(p string) (string, error) {
		return "", DeleteRecursive(p)
	})
}

// Rename renames a single path.
func (Local) Rename(_ context.Context, path, newName string) (string, error) {
	target, err := Rename(path, newName)
	metrics.RecordFileOp("rename", err)
	return target, err
}

// CreateFolder creates a directory inside parent.
func (Local) CreateFolder(_ context.Context, parent, name string) (string, error) {
	target, err := CreateFolder(parent, name)
	metrics.RecordFileOp("mkdir", err)
	return target, err
}

// Properties describes each path. Directory sizes are computed recursively.
func (Local) Properties(ctx context.Context, paths []string) ([]Properties, error) {
	if len(paths) == 0 {
		return nil, ErrNoSelection
	}
	props := make([]Properties, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return props, err
		}
		prop, err := describe(p)
		if err != nil {
			return props, err
		}
		props = append(props, prop)
	}
	return props, nil
}

func describe(path string) (Properties, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Properties{}, err
	}
	entry := snapshot.Entry{
		Name:      info.Name(),
		Path:      path,
		IsDir:     info.IsDir(),
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		Extension: snapshot.Extension(info.Name()),
	}
	prop := Properties{
		Entry:     entry,
		Category:  filekind.Classify(entry),
		TotalSize: info.Size(),
		Modified:  snapshot.FormatDate(info.ModTime()),
	}
	if info.IsDir() {
		prop.Entry.Size = 0
		prop.TotalSize = FolderSize(path)
		if children, err := os.ReadDir(path); err == nil {
			prop.Items = len(children)
		}
	} else {
		prop.MIMEType = filekind.Detect(path)
	}
	prop.FormattedSize = snapshot.FormatSize(prop.TotalSize)
	return prop, nil
}

// claim checks that target is free to receive src. A target that is src
// itself fails with ErrSameFile, any other existing entry with os.ErrExist.
func claim(src, target string) error {
	if _, err := os.Lstat(target); errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	if dstInfo, err := os.Stat(target); err == nil && os.SameFile(srcInfo, dstInfo) {
		return fmt.Errorf("%s: %w", filepath.Base(target), ErrSameFile)
	}
	return fmt.Errorf("%s: %w", filepath.Base(target), os.ErrExist)
}

func batch(ctx context.Context, op string, paths []string, fn func(string) (string, error)) (BatchResult, error) {
	if len(paths) == 0 {
		return BatchResult{}, ErrNoSelection
	}
	start := time.Now()
	result := BatchResult{Items: make([]ItemResult, 0, len(paths))}
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		target, err := fn(p)
		metrics.RecordFileOp(op, err)
		item := ItemResult{Source: p, Target: target}
		if err != nil {
			item.Error = err.Error()
		}
		result.Items = append(result.Items, item)
	}
	logging.L().Info("batch operation finished",
		zap.String("op", op),
		zap.Int("items", len(paths)),
		zap.Int("failed", result.Failed()),
		zap.Duration("duration", time.Since(start)))
	return result, nil
}
