package imageloader

import (
	"fmt"
	"sync"

	"github.com/KreesoAuriga/ImageLoader/internal/imagecache"
)

// task is a single pending load: lookup -> (decode?) -> resize -> publish.
// It is created by Loader.TryGetImageAtSize, lives in the queue until the
// dispatcher starts it, and destroys its own entry in the queue (via
// Loader.signalCompleted) before its callback fires.
type task[T imagecache.Sized] struct {
	id            string
	path          string
	width, height int

	loader *Loader[T]
	cache  *imagecache.Cache[T]

	callback Callback[T]

	mu      sync.Mutex
	started bool // transitions false->true exactly once, under loader.queueMu
}

// startAndDelete runs the task body, reports completion to the loader, and
// invokes the callback exactly once. Named "delete" in spirit: by the time
// it returns, this task's entry in the loader's queue is already gone.
func (t *task[T]) startAndDelete() {
	t.mu.Lock()
	result := t.run()
	t.mu.Unlock()

	t.loader.signalCompleted(t)
	t.callback(result)
}

func (t *task[T]) run() (result Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			result = Result[T]{
				Status: StatusFailedToLoad,
				Err:    fmt.Errorf("%s %v", t.path, r),
			}
		}
	}()

	var (
		getResult imagecache.TryGetResult
		handle    imagecache.Handle[T]
		source    *imagecache.SourceImage
	)
	if t.width != 0 || t.height != 0 {
		getResult, handle, source = t.cache.TryGetAtSize(t.path, t.width, t.height)
	} else {
		getResult, handle, source = t.cache.TryGetSourceOrVariant(t.path, imagecache.Handle[T]{})
	}

	switch getResult {
	case imagecache.FoundExactMatch:
		return Result[T]{Status: StatusSuccess, Image: handle}

	case imagecache.FoundSourceImageOfDifferentDimensions:
		return t.resize(source)

	case imagecache.NotFound:
		return t.loadAndResize()

	default:
		panic(fmt.Sprintf("unknown TryGetResult value %v", getResult))
	}
}

func (t *task[T]) loadAndResize() Result[T] {
	width, height, pixels, err := t.loader.decoder.Decode(t.path)
	if err != nil {
		return Result[T]{Status: StatusFailedToLoad, Err: fmt.Errorf("%s %w", t.path, err)}
	}

	source, err := imagecache.NewSourceImage(t.path, width, height, pixels)
	if err != nil {
		return Result[T]{Status: StatusFailedToLoad, Err: fmt.Errorf("%s %w", t.path, err)}
	}

	if t.width == 0 && t.height == 0 {
		t.width, t.height = width, height
	}

	switch t.cache.TryAddSource(source) {
	case imagecache.Added:
		return t.resize(source)

	case imagecache.NoChange:
		// Another goroutine admitted a source for this path first; our
		// decode becomes garbage (Go's GC reclaims it, there is nothing to
		// explicitly free) and we look the entry up fresh before resizing
		// against whichever source instance actually won the race.
		getResult, handle, wonSource := t.cache.TryGetAtSize(t.path, t.width, t.height)
		switch getResult {
		case imagecache.FoundExactMatch:
			return Result[T]{Status: StatusSuccess, Image: handle}
		case imagecache.FoundSourceImageOfDifferentDimensions:
			return t.resize(wonSource)
		default:
			panic("source image disappeared from the cache immediately after admission")
		}

	case imagecache.OutOfMemory:
		return Result[T]{Status: StatusOutOfMemory, Err: fmt.Errorf("%s image cache is out of memory", t.path)}

	default:
		panic("unknown TryAddResult value for source admission")
	}
}

func (t *task[T]) resize(source *imagecache.SourceImage) Result[T] {
	width, height := t.width, t.height
	if width == 0 && height == 0 {
		width, height = source.Width, source.Height
	}

	pixels, err := resizePixels(source, width, height)
	if err != nil {
		return Result[T]{Status: StatusFailedToLoad, Err: fmt.Errorf("%s resize failed: %w", t.path, err)}
	}

	raw, err := t.loader.factory.Construct(width, height, t.path, pixels)
	if err != nil {
		return Result[T]{Status: StatusFailedToLoad, Err: fmt.Errorf("%s %w", t.path, err)}
	}

	handle := t.cache.MakeSharedHandle(raw)
	addResult, _ := t.cache.TryAddVariant(handle)
	switch addResult {
	case imagecache.AddedAsResizedImage:
		return Result[T]{Status: StatusSuccess, Image: handle}

	case imagecache.OutOfMemory:
		handle.Release()
		return Result[T]{Status: StatusOutOfMemory, Err: fmt.Errorf("%s image cache is out of memory", t.path)}

	default:
		handle.Release()
		panic("resize produced a variant that already existed in the cache")
	}
}
