package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/CageChen/filehub/internal/browser"
	"github.com/CageChen/filehub/internal/logging"
	"github.com/CageChen/filehub/internal/metrics"
	"github.com/CageChen/filehub/internal/roots"
	"github.com/CageChen/filehub/internal/snapshot"
	"github.com/CageChen/filehub/internal/watcher"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WSCommand is a navigation request sent by a client.
type WSCommand struct {
	Action string `json:"action"` // navigate, up, home, refresh, sort, hidden
	Path   string `json:"path,omitempty"`
	Sort   string `json:"sort,omitempty"`
	Hidden *bool  `json:"hidden,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// WSHandler drives the shared browsing session over WebSocket and pushes
// every presented snapshot and file change to all clients
type WSHandler struct {
	roots   *roots.Set
	browser *browser.Browser
	clients map[*websocket.Conn]*wsClient
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewWSHandler creates a new WebSocket handler
func NewWSHandler(set *roots.Set, b *browser.Browser) *WSHandler {
	return &WSHandler{
		roots:   set,
		browser: b,
		clients: make(map[*websocket.Conn]*wsClient),
		logger:  logging.Named("ws"),
	}
}

// HandleWS handles WebSocket upgrade and connection
func (h *WSHandler) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	client := h.addClient(conn)
	defer func() {
		h.removeClient(conn)
		_ = conn.Close()
	}()

	if snap, ok := h.browser.Current(); ok {
		h.send(client, WSMessage{Type: "snapshot", Payload: newSnapshotView(h.roots, snap)})
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var cmd WSCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			h.send(client, WSMessage{Type: "error", Payload: gin.H{"error": "invalid command"}})
			continue
		}
		if err := h.dispatch(cmd); err != nil {
			h.send(client, WSMessage{Type: "error", Payload: gin.H{
				"action": cmd.Action,
				"error":  err.Error(),
			}})
		}
	}
}

// dispatch applies a client command to the session. The resulting snapshot
// reaches every client through OnSnapshot.
func (h *WSHandler) dispatch(cmd WSCommand) error {
	var err error
	switch cmd.Action {
	case "navigate":
		_, err = h.browser.Navigate(cmd.Path)
	case "up":
		_, err = h.browser.Up()
	case "home":
		_, err = h.browser.Home()
	case "refresh":
		_, err = h.browser.Refresh()
	case "sort":
		var key snapshot.SortKey
		if key, err = snapshot.ParseSortKey(cmd.Sort); err == nil {
			_, err = h.browser.SetSort(key)
		}
	case "hidden":
		if cmd.Hidden == nil {
			_, err = h.browser.ToggleHidden()
		} else {
			_, err = h.browser.SetShowHidden(*cmd.Hidden)
		}
	default:
		err = errors.New("unknown action " + cmd.Action)
	}
	return err
}

// OnSnapshot is called when the session presents a new snapshot
func (h *WSHandler) OnSnapshot(snap snapshot.Snapshot) {
	h.broadcast(WSMessage{Type: "snapshot", Payload: newSnapshotView(h.roots, snap)})
}

// OnFileChange is called when a file change is detected
func (h *WSHandler) OnFileChange(event watcher.Event) {
	var eventType string
	switch event.Type {
	case watcher.EventCreate:
		eventType = "create"
	case watcher.EventWrite:
		eventType = "update"
	case watcher.EventRemove:
		eventType = "remove"
	case watcher.EventRename:
		eventType = "rename"
	default:
		return
	}

	dir := h.browser.Query().Path
	msg := WSMessage{
		Type: "fileChange",
		Payload: map[string]string{
			"event": eventType,
			"dir":   dir,
			"path":  dir + "/" + filepath.Base(event.Path),
		},
	}

	h.broadcast(msg)
}

// Clients returns the number of connected clients
func (h *WSHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *WSHandler) addClient(conn *websocket.Conn) *wsClient {
	h.mu.Lock()
	defer h.mu.Unlock()
	client := &wsClient{conn: conn}
	h.clients[conn] = client
	metrics.SetWSConnectionsActive(len(h.clients))
	return client
}

func (h *WSHandler) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	metrics.SetWSConnectionsActive(len(h.clients))
}

func (h *WSHandler) send(client *wsClient, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := client.write(data); err != nil {
		h.logger.Debug("write failed", zap.Error(err))
	}
}

func (h *WSHandler) broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Warn("encoding message failed", zap.String("type", msg.Type), zap.Error(err))
		return
	}

	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if err := client.write(data); err != nil {
			h.removeClient(client.conn)
		}
	}
}
