package handler

import (
	"context"
	"net/http"
	"path"
	"path/filepath"

	"github.com/CageChen/filehub/internal/browser"
	"github.com/CageChen/filehub/internal/fileops"
	"github.com/CageChen/filehub/internal/roots"
	"github.com/gin-gonic/gin"
)

// BatchRequest selects entries and, for copy and move, a destination directory.
type BatchRequest struct {
	Paths []string `json:"paths"`
	Dest  string   `json:"dest"`
}

// RenameRequest renames one entry in place.
type RenameRequest struct {
	Path string `json:"path" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// MkdirRequest creates a folder inside Parent.
type MkdirRequest struct {
	Parent string `json:"parent" binding:"required"`
	Name   string `json:"name" binding:"required"`
}

// OpsHandler handles file operation requests on selected entries
type OpsHandler struct {
	roots   *roots.Set
	ops     fileops.Operations
	browser *browser.Browser
}

// NewOpsHandler creates a new operations handler. b may be nil; when set it
// is refreshed after every mutation.
func NewOpsHandler(set *roots.Set, ops fileops.Operations, b *browser.Browser) *OpsHandler {
	return &OpsHandler{roots: set, ops: ops, browser: b}
}

// localPaths maps virtual paths to paths on disk. Storage roots themselves
// are only accepted when allowRoot is set.
func (h *OpsHandler) localPaths(virtual []string, allowRoot bool) ([]string, error) {
	if len(virtual) == 0 {
		return nil, fileops.ErrNoSelection
	}
	out := make([]string, len(virtual))
	for i, v := range virtual {
		target, err := h.roots.Resolve(v)
		if err != nil {
			return nil, err
		}
		if target.IsRoot() && !allowRoot {
			return nil, roots.ErrAtRoot
		}
		if out[i], err = target.OSPath(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Copy copies the selected entries into the destination directory
func (h *OpsHandler) Copy(c *gin.Context) {
	h.transfer(c, h.ops.Copy)
}

// Move moves the selected entries into the destination directory
func (h *OpsHandler) Move(c *gin.Context) {
	h.transfer(c, h.ops.Move)
}

func (h *OpsHandler) transfer(c *gin.Context, op func(context.Context, []string, string) (fileops.BatchResult, error)) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	sources, err := h.localPaths(req.Paths, false)
	if err != nil {
		abortWithError(c, err)
		return
	}
	dest, err := h.roots.Resolve(req.Dest)
	if err != nil {
		abortWithError(c, err)
		return
	}
	destDir, err := dest.OSPath()
	if err != nil {
		abortWithError(c, err)
		return
	}

	result, err := op(c.Request.Context(), sources, destDir)
	if err != nil {
		abortWithError(c, err)
		return
	}
	for i := range result.Items {
		result.Items[i].Source = req.Paths[i]
		if result.Items[i].Target != "" {
			result.Items[i].Target = dest.Child(filepath.Base(result.Items[i].Target))
		}
	}
	h.respond(c, result)
}

// Delete removes the selected entries recursively
func (h *OpsHandler) Delete(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	paths, err := h.localPaths(req.Paths, false)
	if err != nil {
		abortWithError(c, err)
		return
	}

	result, err := h.ops.Delete(c.Request.Context(), paths)
	if err != nil {
		abortWithError(c, err)
		return
	}
	for i := range result.Items {
		result.Items[i].Source = req.Paths[i]
	}
	h.respond(c, result)
}

// Rename renames a single entry
func (h *OpsHandler) Rename(c *gin.Context) {
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	target, err := h.roots.Resolve(req.Path)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if target.IsRoot() {
		abortWithError(c, roots.ErrAtRoot)
		return
	}
	local, err := target.OSPath()
	if err != nil {
		abortWithError(c, err)
		return
	}

	if _, err := h.ops.Rename(c.Request.Context(), local, req.Name); err != nil {
		abortWithError(c, err)
		return
	}
	h.refresh()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"path":    path.Dir(target.Virtual) + "/" + req.Name,
	})
}

// Mkdir creates a folder
func (h *OpsHandler) Mkdir(c *gin.Context) {
	var req MkdirRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	parent, err := h.roots.Resolve(req.Parent)
	if err != nil {
		abortWithError(c, err)
		return
	}
	local, err := parent.OSPath()
	if err != nil {
		abortWithError(c, err)
		return
	}

	if _, err := h.ops.CreateFolder(c.Request.Context(), local, req.Name); err != nil {
		abortWithError(c, err)
		return
	}
	h.refresh()
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"path":    parent.Child(req.Name),
	})
}

// GetProperties describes each ?path= entry
func (h *OpsHandler) GetProperties(c *gin.Context) {
	virtual := c.QueryArray("path")
	paths, err := h.localPaths(virtual, true)
	if err != nil {
		abortWithError(c, err)
		return
	}

	props, err := h.ops.Properties(c.Request.Context(), paths)
	if err != nil {
		abortWithError(c, err)
		return
	}
	for i := range props {
		props[i].Path = virtual[i]
	}
	c.JSON(http.StatusOK, gin.H{"items": props})
}

func (h *OpsHandler) respond(c *gin.Context, result fileops.BatchResult) {
	h.refresh()
	code := http.StatusOK
	if result.Failed() > 0 {
		code = http.StatusMultiStatus
	}
	c.JSON(code, result)
}

func (h *OpsHandler) refresh() {
	if h.browser != nil {
		_, _ = h.browser.Refresh()
	}
}
