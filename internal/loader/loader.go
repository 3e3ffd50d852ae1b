// Package loader runs directory loads on a single background worker and
// delivers the results, newest request only, on a presenter goroutine.
package loader

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/CageChen/filehub/internal/logging"
	"github.com/CageChen/filehub/internal/metrics"
	"github.com/CageChen/filehub/internal/snapshot"
	"go.uber.org/zap"
)

// ErrStopped is returned by Submit after Stop.
var ErrStopped = errors.New("loader stopped")

// LoadFunc produces the snapshot for a query. It runs on the worker goroutine.
type LoadFunc func(snapshot.Query) snapshot.Snapshot

// Result is a finished load tagged with the token of its request.
type Result struct {
	Token    uint64
	Snapshot snapshot.Snapshot
	Duration time.Duration
}

// Loader serializes loads: one worker scans tasks in submission order and
// one presenter hands fresh results to the callback. Scans are never run in
// parallel and an in-flight scan is never cancelled.
type Loader struct {
	load    LoadFunc
	present func(Result)

	mu      sync.Mutex
	queue   []task
	stopped bool
	wake    chan struct{}
	done    chan struct{}
	results chan Result
	wg      sync.WaitGroup

	latest atomic.Uint64
	logger *zap.Logger
}

type task struct {
	token uint64
	query snapshot.Query
}

// New creates a loader. present is called for every result that is still
// current when it reaches the presenter; calls never overlap.
func New(load LoadFunc, present func(Result)) *Loader {
	return &Loader{
		load:    load,
		present: present,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		results: make(chan Result, 16),
		logger:  logging.Named("loader"),
	}
}

// Start launches the worker and presenter goroutines.
func (l *Loader) Start() {
	l.wg.Add(2)
	go l.work()
	go l.deliver()
}

// Submit queues a load and returns its token. Tokens increase with every
// call; only the result of the largest token issued so far is presented.
func (l *Loader) Submit(q snapshot.Query) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return 0, ErrStopped
	}

	token := l.latest.Add(1)
	l.queue = append(l.queue, task{token: token, query: q})
	metrics.SetLoadQueueDepth(len(l.queue))

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return token, nil
}

// Latest returns the most recently issued token.
func (l *Loader) Latest() uint64 {
	return l.latest.Load()
}

// Stop lets the in-flight scan finish, drops queued tasks that have not
// started, delivers what is already pending and waits for both goroutines.
func (l *Loader) Stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	l.queue = nil
	metrics.SetLoadQueueDepth(0)
	l.mu.Unlock()

	close(l.done)
	l.wg.Wait()
}

func (l *Loader) next() (task, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return task{}, false
	}
	t := l.queue[0]
	l.queue = l.queue[1:]
	metrics.SetLoadQueueDepth(len(l.queue))
	return t, true
}

func (l *Loader) work() {
	defer l.wg.Done()
	defer close(l.results)

	for {
		t, ok := l.next()
		if !ok {
			select {
			case <-l.wake:
				continue
			case <-l.done:
				return
			}
		}

		start := time.Now()
		snap := l.load(t.query)
		elapsed := time.Since(start)
		metrics.RecordScan(snap.Listing.Status.String(), len(snap.Listing.Entries), elapsed)

		l.results <- Result{Token: t.token, Snapshot: snap, Duration: elapsed}
	}
}

func (l *Loader) deliver() {
	defer l.wg.Done()

	for r := range l.results {
		if r.Token < l.latest.Load() {
			metrics.RecordStaleResult()
			l.logger.Debug("discarding stale result",
				zap.Uint64("token", r.Token),
				zap.String("path", r.Snapshot.Query.Path))
			continue
		}
		l.present(r)
	}
}
