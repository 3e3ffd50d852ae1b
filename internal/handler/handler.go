// Package handler provides HTTP handlers for the FileHub REST and WebSocket API.
package handler

import (
	"errors"
	"net/http"
	"os"

	"github.com/CageChen/filehub/internal/filekind"
	"github.com/CageChen/filehub/internal/fileops"
	mfs "github.com/CageChen/filehub/internal/fs"
	"github.com/CageChen/filehub/internal/roots"
	"github.com/CageChen/filehub/internal/snapshot"
	"github.com/gin-gonic/gin"
)

// EntryView is an entry as presented to clients: addressed by virtual path
// and decorated with its display resources.
type EntryView struct {
	Name          string            `json:"name"`
	Path          string            `json:"path"`
	IsDir         bool              `json:"isDir"`
	Hidden        bool              `json:"hidden"`
	Size          int64             `json:"size"`
	FormattedSize string            `json:"formattedSize"`
	Modified      string            `json:"modified"`
	ModTime       int64             `json:"modTime"`
	Extension     string            `json:"extension"`
	Category      filekind.Category `json:"category"`
	Icon          string            `json:"icon"`
	Color         string            `json:"color"`
	Badge         string            `json:"badge,omitempty"`
	MIMEType      string            `json:"mimeType,omitempty"`
	CanRead       bool              `json:"canRead"`
	CanWrite      bool              `json:"canWrite"`
	CanExecute    bool              `json:"canExecute"`
}

// SnapshotView is a snapshot as presented to clients.
type SnapshotView struct {
	Path       string                `json:"path"`
	Parent     string                `json:"parent,omitempty"`
	Sort       snapshot.SortKey      `json:"sort"`
	ShowHidden bool                  `json:"showHidden"`
	Status     snapshot.Status       `json:"status"`
	Error      string                `json:"error,omitempty"`
	Writable   bool                  `json:"writable"`
	Entries    []EntryView           `json:"entries"`
	Storage    string                `json:"storage"`
	Volume     *snapshot.VolumeStats `json:"volume,omitempty"`
}

func newEntryView(dir string, e snapshot.Entry) EntryView {
	v := EntryView{
		Name:       e.Name,
		Path:       dir + "/" + e.Name,
		IsDir:      e.IsDir,
		Hidden:     e.Hidden,
		Size:       e.Size,
		Modified:   snapshot.FormatDate(e.ModTime),
		ModTime:    e.ModifiedMillis(),
		Extension:  e.Extension,
		Category:   filekind.Classify(e),
		Icon:       filekind.Icon(e),
		Color:      filekind.Color(e),
		CanRead:    e.CanRead,
		CanWrite:   e.CanWrite,
		CanExecute: e.CanExecute,
	}
	if !e.IsDir {
		v.FormattedSize = snapshot.FormatSize(e.Size)
		v.Badge = filekind.Badge(e.Extension)
		v.MIMEType = filekind.MIMEType(e.Extension)
	}
	return v
}

func newSnapshotView(set *roots.Set, snap snapshot.Snapshot) SnapshotView {
	v := SnapshotView{
		Path:       snap.Query.Path,
		Sort:       snap.Query.Sort,
		ShowHidden: snap.Query.ShowHidden,
		Status:     snap.Listing.Status,
		Entries:    make([]EntryView, 0, len(snap.Entries())),
		Storage:    snap.Storage,
	}
	if snap.Listing.Err != nil {
		v.Error = snap.Listing.Err.Error()
	}
	if snap.VolumeErr == nil {
		vol := snap.Volume
		v.Volume = &vol
	}
	if parent, err := set.Parent(snap.Query.Path); err == nil {
		v.Parent = parent
	}
	if target, err := set.Resolve(snap.Query.Path); err == nil {
		v.Writable = target.Writable()
	}
	for _, e := range snap.Entries() {
		v.Entries = append(v.Entries, newEntryView(v.Path, e))
	}
	return v
}

// listingCode maps a listing status to its HTTP status code.
func listingCode(s snapshot.Status) int {
	switch s {
	case snapshot.StatusOK:
		return http.StatusOK
	case snapshot.StatusNotFound:
		return http.StatusNotFound
	case snapshot.StatusPermissionDenied:
		return http.StatusForbidden
	case snapshot.StatusNotDirectory:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// errorCode maps an error to its HTTP status code.
func errorCode(err error) int {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, os.ErrPermission), errors.Is(err, mfs.ErrReadOnly):
		return http.StatusForbidden
	case errors.Is(err, os.ErrExist), errors.Is(err, fileops.ErrSameFile):
		return http.StatusConflict
	case errors.Is(err, fileops.ErrNoSelection), errors.Is(err, fileops.ErrInvalidName),
		errors.Is(err, roots.ErrAtRoot):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// abortWithError writes the error response for err.
func abortWithError(c *gin.Context, err error) {
	code := errorCode(err)
	msg := err.Error()
	switch code {
	case http.StatusNotFound:
		msg = "file not found"
	case http.StatusForbidden:
		if errors.Is(err, mfs.ErrReadOnly) {
			msg = "storage is read-only"
		} else {
			msg = "access denied"
		}
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}
