package snapshot

import (
	"errors"
	iofs "io/fs"

	mfs "github.com/CageChen/filehub/internal/fs"
	"github.com/CageChen/filehub/internal/logging"
	"go.uber.org/zap"
)

// Status classifies the outcome of a directory listing.
type Status int

// Listing outcomes.
const (
	StatusOK Status = iota
	StatusNotFound
	StatusNotDirectory
	StatusPermissionDenied
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not_found"
	case StatusNotDirectory:
		return "not_directory"
	case StatusPermissionDenied:
		return "permission_denied"
	default:
		return "failed"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Listing is the result of enumerating one directory. Entries is empty
// unless Status is StatusOK.
type Listing struct {
	Path    string  `json:"path"`
	Entries []Entry `json:"entries"`
	Status  Status  `json:"status"`
	Err     error   `json:"-"`
}

// OK reports whether the directory was read.
func (l Listing) OK() bool {
	return l.Status == StatusOK
}

// List enumerates the directory at path. Directories come first, then
// regular files, then hidden entries of any kind when includeHidden is
// set; each group keeps enumeration order. Failures never escape: they
// are reported through the listing's Status with no entries.
func List(fsys mfs.FileSystem, path string, includeHidden bool) Listing {
	result := Listing{Path: path, Entries: []Entry{}}

	info, err := fsys.Stat(path)
	if err != nil {
		return failed(result, err)
	}
	if !info.IsDir {
		result.Status = StatusNotDirectory
		return result
	}

	children, err := fsys.ReadDir(path)
	if err != nil {
		return failed(result, err)
	}

	var dirs, files, hidden []Entry
	for _, child := range children {
		childInfo, err := fsys.Stat(mfs.Join(path, child.Name))
		if err != nil {
			logging.L().Debug("skipping unreadable entry",
				zap.String("dir", path), zap.String("name", child.Name), zap.Error(err))
			continue
		}
		entry := newEntry(childInfo)
		switch {
		case entry.Hidden:
			hidden = append(hidden, entry)
		case entry.IsDir:
			dirs = append(dirs, entry)
		default:
			files = append(files, entry)
		}
	}

	result.Entries = append(result.Entries, dirs...)
	result.Entries = append(result.Entries, files...)
	if includeHidden {
		result.Entries = append(result.Entries, hidden...)
	}
	return result
}

func failed(result Listing, err error) Listing {
	result.Err = err
	switch {
	case errors.Is(err, iofs.ErrNotExist):
		result.Status = StatusNotFound
	case errors.Is(err, iofs.ErrPermission):
		result.Status = StatusPermissionDenied
	default:
		result.Status = StatusFailed
		logging.L().Warn("directory listing failed", zap.String("path", result.Path), zap.Error(err))
	}
	return result
}

// Unavailable returns the listing reported for path when the directory could
// not be reached at all, classified the same way List classifies errors.
func Unavailable(path string, err error) Listing {
	return failed(Listing{Path: path, Entries: []Entry{}}, err)
}

// UnavailableSnapshot wraps Unavailable for a query that never reached a filesystem.
func UnavailableSnapshot(q Query, err error) Snapshot {
	return Snapshot{
		Query:     q,
		Listing:   Unavailable(q.Path, err),
		VolumeErr: err,
		Storage:   StorageUnavailable,
	}
}
