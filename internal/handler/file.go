package handler

import (
	"errors"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/CageChen/filehub/internal/filekind"
	"github.com/CageChen/filehub/internal/logging"
	"github.com/CageChen/filehub/internal/preview"
	"github.com/CageChen/filehub/internal/recent"
	"github.com/CageChen/filehub/internal/roots"
	"github.com/CageChen/filehub/internal/snapshot"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PreviewResponse represents the response for a preview request
type PreviewResponse struct {
	Path     string            `json:"path"`
	Title    string            `json:"title"`
	Kind     preview.Kind      `json:"kind"`
	HTML     string            `json:"html"`
	TOC      []preview.Heading `json:"toc,omitempty"`
	Modified string            `json:"modified"`
	Size     string            `json:"size"`
}

// FileHandler handles file content API requests
type FileHandler struct {
	roots    *roots.Set
	renderer *preview.Renderer
	recent   *recent.Store
	limit    int
}

// NewFileHandler creates a new file handler. store may be nil, which
// disables the recent files list.
func NewFileHandler(set *roots.Set, renderer *preview.Renderer, store *recent.Store, limit int) *FileHandler {
	return &FileHandler{
		roots:    set,
		renderer: renderer,
		recent:   store,
		limit:    limit,
	}
}

// read loads the file named by the path parameter.
func (h *FileHandler) read(c *gin.Context) (roots.Target, []byte, bool) {
	target, err := h.roots.Resolve(c.Param("path"))
	if err != nil {
		abortWithError(c, err)
		return roots.Target{}, nil, false
	}

	info, err := target.FS().Stat(target.Rel)
	if err != nil {
		abortWithError(c, err)
		return roots.Target{}, nil, false
	}
	if info.IsDir {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is a directory"})
		return roots.Target{}, nil, false
	}

	content, err := target.FS().ReadFile(target.Rel)
	if err != nil {
		abortWithError(c, err)
		return roots.Target{}, nil, false
	}
	return target, content, true
}

// GetRaw returns the file content with its detected MIME type and records
// the open in the recent files list
func (h *FileHandler) GetRaw(c *gin.Context) {
	target, content, ok := h.read(c)
	if !ok {
		return
	}

	var mime string
	if osPath, err := target.OSPath(); err == nil {
		mime = filekind.Detect(osPath)
	} else {
		mime = filekind.DetectBytes(snapshot.Extension(path.Base(target.Virtual)), content)
	}
	if mime == filekind.Wildcard {
		mime = "application/octet-stream"
	}

	h.remember(c, target.Virtual)
	c.Data(http.StatusOK, mime, content)
}

// GetPreview returns the rendered preview of a text file
func (h *FileHandler) GetPreview(c *gin.Context) {
	target, content, ok := h.read(c)
	if !ok {
		return
	}

	result, err := h.renderer.Render(target.Virtual, content)
	if err != nil {
		if errors.Is(err, preview.ErrBinary) {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to render preview: " + err.Error(),
		})
		return
	}

	resp := PreviewResponse{
		Path:  target.Virtual,
		Title: result.Title,
		Kind:  result.Kind,
		HTML:  result.HTML,
		TOC:   result.TOC,
		Size:  snapshot.FormatSize(int64(len(content))),
	}
	if info, err := target.FS().Stat(target.Rel); err == nil {
		resp.Modified = snapshot.FormatDate(info.ModTime)
	}
	h.remember(c, target.Virtual)
	c.JSON(http.StatusOK, resp)
}

// GetRecent returns recently opened files, newest first
func (h *FileHandler) GetRecent(c *gin.Context) {
	if h.recent == nil {
		c.JSON(http.StatusOK, gin.H{"items": []recent.Item{}})
		return
	}

	limit := h.limit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	items, err := h.recent.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// DeleteRecent removes ?path= from the recent files list
func (h *FileHandler) DeleteRecent(c *gin.Context) {
	p := strings.Trim(c.Query("path"), "/")
	if p == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}
	if h.recent != nil {
		if err := h.recent.Forget(c.Request.Context(), p); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *FileHandler) remember(c *gin.Context, virtual string) {
	if h.recent == nil {
		return
	}
	if err := h.recent.Record(c.Request.Context(), virtual, time.Now()); err != nil {
		logging.L().Warn("recording recent file failed", zap.String("path", virtual), zap.Error(err))
		return
	}
	if h.limit > 0 {
		if _, err := h.recent.Prune(c.Request.Context(), h.limit); err != nil {
			logging.L().Warn("pruning recent files failed", zap.Error(err))
		}
	}
}
