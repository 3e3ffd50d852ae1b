// Package watcher monitors the presented directory and broadcasts change events via callbacks.
package watcher

import (
	"path/filepath"
	"sync"

	"github.com/CageChen/filehub/internal/logging"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// EventType represents the type of file system event
type EventType int

// File system event types.
const (
	EventCreate EventType = iota
	EventWrite
	EventRemove
	EventRename
)

func (t EventType) String() string {
	switch t {
	case EventCreate:
		return "create"
	case EventWrite:
		return "write"
	case EventRemove:
		return "remove"
	case EventRename:
		return "rename"
	}
	return "unknown"
}

// MarshalText encodes the event type by name.
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Event represents a file system change event
type Event struct {
	Type EventType `json:"type"`
	Path string    `json:"path"`
	Dir  string    `json:"dir"`
}

// Callback is a function called when file changes occur
type Callback func(Event)

// Watcher follows a single directory at a time. Listings are not recursive,
// so neither is the watch.
type Watcher struct {
	watcher   *fsnotify.Watcher
	exclude   func(string) bool
	callbacks []Callback
	mu        sync.RWMutex
	dir       string
	done      chan struct{}
	stopOnce  sync.Once
	logger    *zap.Logger
}

// New creates a new watcher. Events whose path satisfies exclude are dropped;
// exclude may be nil.
func New(exclude func(string) bool) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if exclude == nil {
		exclude = func(string) bool { return false }
	}

	return &Watcher{
		watcher: w,
		exclude: exclude,
		done:    make(chan struct{}),
		logger:  logging.Named("watcher"),
	}, nil
}

// OnChange registers a callback for file change events
func (w *Watcher) OnChange(cb Callback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Start begins delivering events
func (w *Watcher) Start() {
	go w.eventLoop()
}

// Watch replaces the watched directory with dir. An empty dir only clears
// the current watch.
func (w *Watcher) Watch(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if dir == w.dir {
		return nil
	}
	if w.dir != "" {
		if err := w.watcher.Remove(w.dir); err != nil {
			w.logger.Debug("unwatch failed", zap.String("dir", w.dir), zap.Error(err))
		}
		w.dir = ""
	}
	if dir == "" {
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	w.dir = dir
	w.logger.Debug("watching", zap.String("dir", dir))
	return nil
}

// Dir returns the directory currently watched
func (w *Watcher) Dir() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.dir
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if w.exclude(event.Name) {
		return
	}

	var eventType EventType
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		eventType = EventCreate
	case event.Op&fsnotify.Write == fsnotify.Write:
		eventType = EventWrite
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		eventType = EventRemove
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		eventType = EventRename
	default:
		return
	}

	e := Event{
		Type: eventType,
		Path: event.Name,
		Dir:  filepath.Dir(event.Name),
	}

	w.mu.RLock()
	callbacks := make([]Callback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.RUnlock()

	for _, cb := range callbacks {
		cb(e)
	}
}
