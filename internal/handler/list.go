package handler

import (
	"net/http"
	"strconv"

	"github.com/CageChen/filehub/internal/browser"
	"github.com/CageChen/filehub/internal/roots"
	"github.com/CageChen/filehub/internal/snapshot"
	"github.com/gin-gonic/gin"
	"github.com/gocarina/gocsv"
)

// RootView describes a configured storage root.
type RootView struct {
	Alias    string                `json:"alias"`
	Path     string                `json:"path"`
	GitRef   string                `json:"gitRef,omitempty"`
	Home     bool                  `json:"home"`
	Writable bool                  `json:"writable"`
	Storage  string                `json:"storage"`
	Volume   *snapshot.VolumeStats `json:"volume,omitempty"`
}

// csvRow is one entry of a listing exported with ?format=csv.
type csvRow struct {
	Name     string `csv:"name"`
	Path     string `csv:"path"`
	Type     string `csv:"type"`
	Size     int64  `csv:"size"`
	Modified string `csv:"modified"`
	MIMEType string `csv:"mime_type"`
}

// ListHandler serves directory listings and storage information
type ListHandler struct {
	roots    *roots.Set
	browser  *browser.Browser
	defaults snapshot.Query
}

// NewListHandler creates a new list handler. defaults supplies the sort key
// and hidden flag for requests that omit them.
func NewListHandler(set *roots.Set, b *browser.Browser, defaults snapshot.Query) *ListHandler {
	return &ListHandler{roots: set, browser: b, defaults: defaults}
}

// GetRoots returns every configured root with its storage summary
func (h *ListHandler) GetRoots(c *gin.Context) {
	views := make([]RootView, 0, len(h.roots.Roots()))
	for _, r := range h.roots.Roots() {
		view := RootView{
			Alias:    r.Alias,
			Path:     r.Path,
			GitRef:   r.GitRef,
			Home:     r.Alias == h.roots.Home(),
			Writable: r.Writable(),
			Storage:  snapshot.StorageUnavailable,
		}
		if vol, err := snapshot.Volume(r.FS, ""); err == nil {
			view.Storage = vol.Summary()
			view.Volume = &vol
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{
		"home":  h.roots.Home(),
		"roots": views,
	})
}

// GetList returns a freshly loaded snapshot for ?path=&sort=&hidden=.
// It does not touch the shared browsing session.
func (h *ListHandler) GetList(c *gin.Context) {
	q := h.defaults
	q.Path = c.Query("path")

	if s := c.Query("sort"); s != "" {
		key, err := snapshot.ParseSortKey(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		q.Sort = key
	}
	if s := c.Query("hidden"); s != "" {
		show, err := strconv.ParseBool(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hidden flag"})
			return
		}
		q.ShowHidden = show
	}

	snap := h.browser.Load(q)
	view := newSnapshotView(h.roots, snap)
	if c.Query("format") == "csv" {
		h.writeCSV(c, listingCode(snap.Listing.Status), view)
		return
	}
	c.JSON(listingCode(snap.Listing.Status), view)
}

func (h *ListHandler) writeCSV(c *gin.Context, code int, view SnapshotView) {
	rows := make([]csvRow, 0, len(view.Entries))
	for _, e := range view.Entries {
		kind := "file"
		if e.IsDir {
			kind = "dir"
		}
		rows = append(rows, csvRow{
			Name:     e.Name,
			Path:     e.Path,
			Type:     kind,
			Size:     e.Size,
			Modified: e.Modified,
			MIMEType: e.MIMEType,
		})
	}
	data, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(code, "text/csv; charset=utf-8", data)
}

// GetStorage returns the capacity of the volume holding ?path=
func (h *ListHandler) GetStorage(c *gin.Context) {
	target, err := h.roots.Resolve(c.Query("path"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := gin.H{
		"path":    target.Virtual,
		"summary": snapshot.StorageUnavailable,
	}
	if vol, err := snapshot.Volume(target.FS(), target.Rel); err == nil {
		resp["summary"] = vol.Summary()
		resp["total"] = vol.Total
		resp["used"] = vol.Used
		resp["free"] = vol.Free
	}
	c.JSON(http.StatusOK, resp)
}

// GetSession returns the shared session's last presented snapshot
func (h *ListHandler) GetSession(c *gin.Context) {
	snap, ok := h.browser.Current()
	if !ok {
		c.JSON(http.StatusAccepted, gin.H{"query": h.browser.Query()})
		return
	}
	c.JSON(http.StatusOK, newSnapshotView(h.roots, snap))
}
