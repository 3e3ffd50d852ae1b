// Package browser holds a browsing session: the requested query, the last
// presented snapshot and the navigation actions that move between them.
package browser

import (
	"errors"
	"sync"
	"time"

	"github.com/CageChen/filehub/internal/loader"
	"github.com/CageChen/filehub/internal/logging"
	"github.com/CageChen/filehub/internal/roots"
	"github.com/CageChen/filehub/internal/snapshot"
	"github.com/CageChen/filehub/internal/watcher"
	"go.uber.org/zap"
)

// ErrAtRoot is returned by Up when the current directory is a storage root.
var ErrAtRoot = roots.ErrAtRoot

// DefaultDebounce is how long file change events are coalesced before a refresh.
const DefaultDebounce = 300 * time.Millisecond

// Listener receives every presented snapshot.
type Listener func(snapshot.Snapshot)

// Options configures a Browser.
type Options struct {
	Sort       snapshot.SortKey
	ShowHidden bool
	// Watcher, when set, follows the presented directory and triggers refreshes.
	Watcher  *watcher.Watcher
	Debounce time.Duration
}

// Browser is a single browsing session. Actions update the requested query
// and submit it to the loader; the snapshot is only replaced when the
// loader presents a current result.
type Browser struct {
	roots    *roots.Set
	loader   *loader.Loader
	watcher  *watcher.Watcher
	debounce time.Duration

	mu         sync.Mutex
	query      snapshot.Query
	current    snapshot.Snapshot
	hasCurrent bool
	listeners  []Listener
	refresh    *time.Timer

	logger *zap.Logger
}

// New creates a session positioned at the home root. Call Start to load it.
func New(set *roots.Set, opts Options) *Browser {
	b := &Browser{
		roots:    set,
		watcher:  opts.Watcher,
		debounce: opts.Debounce,
		query: snapshot.Query{
			Path:       set.Home(),
			Sort:       opts.Sort,
			ShowHidden: opts.ShowHidden,
		},
		logger: logging.Named("browser"),
	}
	if b.debounce <= 0 {
		b.debounce = DefaultDebounce
	}
	b.loader = loader.New(b.Load, b.present)
	return b
}

// Start launches the loader and requests the initial directory.
func (b *Browser) Start() error {
	b.loader.Start()
	if b.watcher != nil {
		b.watcher.OnChange(b.onFileChange)
	}
	_, err := b.Refresh()
	return err
}

// Stop halts pending refreshes and the loader.
func (b *Browser) Stop() {
	b.mu.Lock()
	if b.refresh != nil {
		b.refresh.Stop()
	}
	b.mu.Unlock()
	b.loader.Stop()
}

// OnSnapshot registers a listener for presented snapshots. Listeners run on
// the loader's presenter goroutine, one at a time.
func (b *Browser) OnSnapshot(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, l)
}

// Query returns the most recently requested query.
func (b *Browser) Query() snapshot.Query {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.query
}

// Current returns the last presented snapshot, if any.
func (b *Browser) Current() (snapshot.Snapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current, b.hasCurrent
}

// Navigate opens the directory at a virtual path.
func (b *Browser) Navigate(path string) (uint64, error) {
	target, err := b.roots.Resolve(path)
	if err != nil {
		return 0, err
	}
	return b.update(func(q *snapshot.Query) { q.Path = target.Virtual })
}

// Up opens the parent directory. It returns ErrAtRoot at the top of a root.
func (b *Browser) Up() (uint64, error) {
	parent, err := b.roots.Parent(b.Query().Path)
	if err != nil {
		return 0, err
	}
	return b.update(func(q *snapshot.Query) { q.Path = parent })
}

// Home opens the home root. Nothing is loaded when already there.
func (b *Browser) Home() (uint64, error) {
	if b.roots.IsHome(b.Query().Path) {
		return 0, nil
	}
	return b.update(func(q *snapshot.Query) { q.Path = b.roots.Home() })
}

// Refresh reloads the current query.
func (b *Browser) Refresh() (uint64, error) {
	return b.update(func(*snapshot.Query) {})
}

// SetSort changes the sort key and reloads.
func (b *Browser) SetSort(key snapshot.SortKey) (uint64, error) {
	return b.update(func(q *snapshot.Query) { q.Sort = key })
}

// SetShowHidden changes hidden file visibility and reloads.
func (b *Browser) SetShowHidden(show bool) (uint64, error) {
	return b.update(func(q *snapshot.Query) { q.ShowHidden = show })
}

// ToggleHidden flips hidden file visibility and reloads.
func (b *Browser) ToggleHidden() (uint64, error) {
	return b.update(func(q *snapshot.Query) { q.ShowHidden = !q.ShowHidden })
}

// Load computes the snapshot for a query synchronously, without touching
// the session. The loader uses it on its worker goroutine.
func (b *Browser) Load(q snapshot.Query) snapshot.Snapshot {
	target, err := b.roots.Resolve(q.Path)
	if err != nil {
		return snapshot.UnavailableSnapshot(q, err)
	}
	q.Path = target.Virtual

	snap := snapshot.Load(target.FS(), snapshot.Query{
		Path:       target.Rel,
		Sort:       q.Sort,
		ShowHidden: q.ShowHidden,
	})
	snap.Query = q
	snap.Listing.Path = target.Virtual
	return snap
}

// update applies fn to the requested query under the lock and submits the
// result. The loader token orders submissions, so the newest always wins.
func (b *Browser) update(fn func(*snapshot.Query)) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	fn(&b.query)
	return b.loader.Submit(b.query)
}

func (b *Browser) present(r loader.Result) {
	b.mu.Lock()
	b.current = r.Snapshot
	b.hasCurrent = true
	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.Unlock()

	b.follow(r.Snapshot)

	for _, l := range listeners {
		l(r.Snapshot)
	}
}

// follow points the watcher at the presented directory.
func (b *Browser) follow(snap snapshot.Snapshot) {
	if b.watcher == nil {
		return
	}
	dir := ""
	if snap.Listing.OK() {
		if target, err := b.roots.Resolve(snap.Query.Path); err == nil {
			dir, _ = target.OSPath()
		}
	}
	if err := b.watcher.Watch(dir); err != nil {
		b.logger.Warn("cannot watch directory", zap.String("dir", dir), zap.Error(err))
	}
}

func (b *Browser) onFileChange(e watcher.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.refresh != nil {
		b.refresh.Stop()
	}
	b.refresh = time.AfterFunc(b.debounce, func() {
		if _, err := b.Refresh(); err != nil && !errors.Is(err, loader.ErrStopped) {
			b.logger.Warn("refresh after file change failed", zap.Error(err))
		}
	})
	b.logger.Debug("file change", zap.Stringer("type", e.Type), zap.String("path", e.Path))
}
