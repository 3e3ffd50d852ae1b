// Package snapshot builds ordered directory snapshots and volume capacity summaries.
package snapshot

import (
	"strings"
	"time"

	mfs "github.com/CageChen/filehub/internal/fs"
)

// Entry is one filesystem node captured at load time.
type Entry struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	IsDir      bool      `json:"isDir"`
	Hidden     bool      `json:"hidden"`
	Size       int64     `json:"size"`
	ModTime    time.Time `json:"modTime"`
	Extension  string    `json:"extension"`
	CanRead    bool      `json:"canRead"`
	CanWrite   bool      `json:"canWrite"`
	CanExecute bool      `json:"canExecute"`
}

// ModifiedMillis returns the modification time in epoch milliseconds.
func (e Entry) ModifiedMillis() int64 {
	return e.ModTime.UnixMilli()
}

func newEntry(info mfs.FileInfo) Entry {
	return Entry{
		Name:       info.Name,
		Path:       info.Path,
		IsDir:      info.IsDir,
		Hidden:     info.Hidden,
		Size:       info.Size,
		ModTime:    info.ModTime,
		Extension:  Extension(info.Name),
		CanRead:    info.CanRead,
		CanWrite:   info.CanWrite,
		CanExecute: info.CanExecute,
	}
}

// Extension returns the lowercased suffix after the last dot of name.
// A leading dot does not start an extension, so ".bashrc" has none.
func Extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}
