package imageloader

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KreesoAuriga/ImageLoader/internal/imagecache"
)

// dispatchInterval is how often the dispatcher goroutine wakes to look for
// queued, unstarted tasks. Matches the polling cadence of the design this
// loader is modeled on: a single background thread, not a notify channel,
// so SetMaxThreadCount changes are picked up on the very next pass.
const dispatchInterval = 10 * time.Millisecond

// Config configures a Loader.
type Config struct {
	// MaxThreadCount bounds how many decode/resize tasks run concurrently.
	// 0 means "implementation chooses" (runtime.NumCPU()).
	MaxThreadCount int
}

// Loader dispatches decode/resize work against a shared Cache, deduplicating
// concurrent requests for the same path+size and bounding concurrency.
type Loader[T imagecache.Sized] struct {
	cache   *imagecache.Cache[T]
	decoder Decoder
	factory Factory[T]

	maxThreads atomic.Int64
	running    atomic.Int64
	abort      atomic.Bool

	queueMu sync.Mutex
	queue   map[string]*task[T]
}

// New creates a loader backed by cache, decoder and factory, and starts its
// dispatcher goroutine immediately.
func New[T imagecache.Sized](cache *imagecache.Cache[T], decoder Decoder, factory Factory[T], cfg Config) *Loader[T] {
	if cache == nil {
		panic("imageloader: cache cannot be nil")
	}
	if decoder == nil {
		panic("imageloader: decoder cannot be nil")
	}
	if factory == nil {
		panic("imageloader: factory cannot be nil")
	}

	l := &Loader[T]{
		cache:   cache,
		decoder: decoder,
		factory: factory,
		queue:   make(map[string]*task[T]),
	}
	l.maxThreads.Store(int64(normalizeThreadCount(cfg.MaxThreadCount)))

	go l.dispatch()
	return l
}

func normalizeThreadCount(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// SetMaxThreadCount atomically updates the concurrency cap. 0 resets it to
// the implementation-defined default.
func (l *Loader[T]) SetMaxThreadCount(n int) {
	l.maxThreads.Store(int64(normalizeThreadCount(n)))
}

// RunningThreadsCount returns the current number of in-flight tasks.
func (l *Loader[T]) RunningThreadsCount() int {
	return int(l.running.Load())
}

// QueuedCount returns the number of tasks currently queued (running or not).
func (l *Loader[T]) QueuedCount() int {
	l.queueMu.Lock()
	defer l.queueMu.Unlock()
	return len(l.queue)
}

func identifier(path string, width, height int) string {
	return fmt.Sprintf("%s:%dx%d", path, width, height)
}

// TryGetImage requests the image at path at its native size.
func (l *Loader[T]) TryGetImage(path string, callback Callback[T]) TryGetStatus {
	return l.TryGetImageAtSize(path, 0, 0, callback)
}

// TryGetImageAtSize requests the image at path resized to (width, height).
// (0, 0) means "native size". If a task for the same path+size is already
// queued, this is a no-op dedup hit: the caller will not receive a
// callback of its own — only the original task's callback fires.
func (l *Loader[T]) TryGetImageAtSize(path string, width, height int, callback Callback[T]) TryGetStatus {
	l.queueMu.Lock()
	defer l.queueMu.Unlock()

	id := identifier(path, width, height)
	if _, exists := l.queue[id]; exists {
		return TaskAlreadyExistsAndIsQueued
	}

	l.queue[id] = &task[T]{
		id:       id,
		path:     path,
		width:    width,
		height:   height,
		loader:   l,
		cache:    l.cache,
		callback: callback,
	}
	return PlacedNewTaskInQueue
}

// ReleaseImage drops path's entry from the cache immediately. It does not
// cancel any in-flight task for path.
func (l *Loader[T]) ReleaseImage(path string) bool {
	return l.cache.ReleaseImage(path)
}

// Close stops the dispatcher. It does not wait for or cancel in-flight
// tasks: their callbacks may still fire after Close returns. Callers must
// keep the Loader (and its Cache, Decoder, Factory) alive until they are
// done observing callbacks.
func (l *Loader[T]) Close() {
	l.abort.Store(true)
	// The dispatcher holds queueMu for the duration of each pass. Acquiring
	// it here blocks until the dispatcher has released it at least once
	// after abort was set, proving it observed the flag (or will on its
	// very next wakeup, after which it exits without re-acquiring).
	l.queueMu.Lock()
	l.queueMu.Unlock()
}

func (l *Loader[T]) dispatch() {
	ticker := time.NewTicker(dispatchInterval)
	defer ticker.Stop()

	for !l.abort.Load() {
		l.queueMu.Lock()
		available := int(l.maxThreads.Load()) - int(l.running.Load())
		if available > 0 {
			started := 0
			for _, t := range l.queue {
				if started >= available {
					break
				}
				if t.started {
					continue
				}
				t.started = true
				l.running.Add(1)
				started++
				go t.startAndDelete()
			}
		}
		l.queueMu.Unlock()

		<-ticker.C
	}
}

// signalCompleted removes the task from the queue and frees its concurrency
// slot. Must run before the task's callback so the slot is released
// promptly rather than being held open until the callback returns.
func (l *Loader[T]) signalCompleted(t *task[T]) {
	l.queueMu.Lock()
	delete(l.queue, t.id)
	l.running.Add(-1)
	l.queueMu.Unlock()
}
