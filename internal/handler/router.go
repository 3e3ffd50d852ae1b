package handler

import "github.com/gin-gonic/gin"

// Handlers groups the API handlers for route registration.
type Handlers struct {
	List *ListHandler
	File *FileHandler
	Ops  *OpsHandler
	WS   *WSHandler
}

// Register mounts the API routes on r, typically the /api group.
func (h Handlers) Register(r gin.IRouter) {
	// Listing APIs
	r.GET("/roots", h.List.GetRoots)
	r.GET("/list", h.List.GetList)
	r.GET("/storage", h.List.GetStorage)
	r.GET("/session", h.List.GetSession)

	// File content APIs
	r.GET("/raw/*path", h.File.GetRaw)
	r.GET("/preview/*path", h.File.GetPreview)
	r.GET("/recent", h.File.GetRecent)
	r.DELETE("/recent", h.File.DeleteRecent)

	// File operation APIs
	ops := r.Group("/ops")
	{
		ops.POST("/copy", h.Ops.Copy)
		ops.POST("/move", h.Ops.Move)
		ops.POST("/delete", h.Ops.Delete)
		ops.POST("/rename", h.Ops.Rename)
		ops.POST("/mkdir", h.Ops.Mkdir)
	}
	r.GET("/properties", h.Ops.GetProperties)

	if h.WS != nil {
		r.GET("/ws", h.WS.HandleWS)
	}
}
