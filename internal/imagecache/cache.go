// Package imagecache implements a two-level keyed store (path -> source
// entry -> size -> resized variant) with a bounded-memory admission policy
// and lifetime-driven eviction of resized variants through weak references.
//
// Eviction of a variant happens only when the last strong Handle returned to
// a caller is released; set_max_memory-style budget changes never forcibly
// evict a live variant. Source images are dropped only when their entry's
// variant map becomes empty, never by LRU.
package imagecache

import (
	"fmt"
	"sync"
)

// TryGetResult is the outcome of a lookup.
type TryGetResult int

const (
	NotFound TryGetResult = iota
	FoundExactMatch
	FoundSourceImageOfDifferentDimensions
)

func (r TryGetResult) String() string {
	switch r {
	case NotFound:
		return "NotFound"
	case FoundExactMatch:
		return "FoundExactMatch"
	case FoundSourceImageOfDifferentDimensions:
		return "FoundSourceImageOfDifferentDimensions"
	default:
		return fmt.Sprintf("TryGetResult(%d)", int(r))
	}
}

// TryAddResult is the outcome of an admission attempt.
type TryAddResult int

const (
	NoChange TryAddResult = iota
	Added
	AddedAsResizedImage
	OutOfMemory
)

func (r TryAddResult) String() string {
	switch r {
	case NoChange:
		return "NoChange"
	case Added:
		return "Added"
	case AddedAsResizedImage:
		return "AddedAsResizedImage"
	case OutOfMemory:
		return "OutOfMemory"
	default:
		return fmt.Sprintf("TryAddResult(%d)", int(r))
	}
}

// Cache is a thread-safe path -> entry store bounded by a memory budget.
type Cache[T Sized] struct {
	mu           sync.Mutex
	maxMemory    int64
	currentUsage int64
	entries      map[string]*entry[T]
}

// New creates a cache with the given memory budget in bytes.
func New[T Sized](maxMemoryBytes int64) *Cache[T] {
	if maxMemoryBytes < 0 {
		panic("imagecache: max memory must be >= 0")
	}
	return &Cache[T]{
		maxMemory: maxMemoryBytes,
		entries:   make(map[string]*entry[T]),
	}
}

// SetMaxMemory updates the budget. Reducing it below current usage does not
// retroactively evict anything; subsequent admissions simply start failing
// with OutOfMemory until enough live handles are released. Forced eviction
// of live variants would violate the guarantee that a held handle is never
// dangling.
func (c *Cache[T]) SetMaxMemory(bytes int64) {
	if bytes < 0 {
		panic("imagecache: max memory must be >= 0")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxMemory = bytes
}

// GetMaxMemory returns the current budget in bytes.
func (c *Cache[T]) GetMaxMemory() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxMemory
}

// CurrentUsage returns current tracked usage in bytes.
func (c *Cache[T]) CurrentUsage() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentUsage
}

// EntryCount returns the number of distinct paths currently cached.
func (c *Cache[T]) EntryCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// EntryUsage reports the live byte footprint of the entry at path: the
// source image's bytes plus every variant slot whose weak handle still
// upgrades (§4.2's total_live_bytes). Reaps any expired slots it
// encounters along the way. Returns false if there is no entry at path.
func (c *Cache[T]) EntryUsage(path string) (bytes int64, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[path]
	if !exists {
		return 0, false
	}
	return e.totalLiveBytes(), true
}

// TryGetSourceOrVariant looks up the entry at path. If found, it attempts to
// find a variant matching the dimensions of sizeHint *as supplied by the
// caller*, not the dimensions actually requested — this is a deliberately
// preserved API quirk: the lookup key comes from whatever handle the caller
// currently happens to be holding (the zero Handle for a fresh native-size
// request, which reads as size (0,0) and therefore never matches a real
// variant). Callers that want to look up a specific size should use
// TryGetAtSize instead.
func (c *Cache[T]) TryGetSourceOrVariant(path string, sizeHint Handle[T]) (TryGetResult, Handle[T], *SourceImage) {
	w, h := 0, 0
	if sizeHint.Valid() {
		v := sizeHint.Value()
		w, h = int(v.Width()), int(v.Height())
	}
	return c.tryGetAtSize(path, w, h)
}

// TryGetAtSize looks up the entry at path and attempts to find a variant at
// exactly (width, height).
func (c *Cache[T]) TryGetAtSize(path string, width, height int) (TryGetResult, Handle[T], *SourceImage) {
	return c.tryGetAtSize(path, width, height)
}

func (c *Cache[T]) tryGetAtSize(path string, width, height int) (TryGetResult, Handle[T], *SourceImage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[path]
	if !ok {
		return NotFound, Handle[T]{}, nil
	}

	if strong, ok := e.tryGetVariant(width, height); ok {
		return FoundExactMatch, strong, e.source
	}
	return FoundSourceImageOfDifferentDimensions, Handle[T]{}, e.source
}

// TryAddSource admits a freshly decoded source image. A nil source or one
// whose path already has an entry is reported as NoChange — in either case
// the caller should simply discard its copy.
func (c *Cache[T]) TryAddSource(source *SourceImage) TryAddResult {
	if source == nil {
		return NoChange
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[source.Path]; exists {
		return NoChange
	}

	size := source.SizeInBytes()
	if c.currentUsage+size > c.maxMemory {
		return OutOfMemory
	}

	c.entries[source.Path] = newEntry[T](source)
	c.currentUsage += size
	return Added
}

// TryAddVariant admits a resized variant produced via MakeSharedHandle. It
// is a programming error to call this before the variant's source has been
// admitted. existing is populated (and NoChange returned) when a variant
// already occupies the same size slot, whether it is the same object
// (first-writer-wins on a duplicate admission) or a different one
// (first-writer-wins across a race).
func (c *Cache[T]) TryAddVariant(variant Handle[T]) (result TryAddResult, existing T) {
	v := variant.Value()
	path := v.Path()
	width, height := int(v.Width()), int(v.Height())

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[path]
	if !ok {
		panic(fmt.Sprintf("imagecache: cannot add variant for %q before its source image has been added", path))
	}

	if already, ok := e.tryGetVariant(width, height); ok {
		existing = already.Value()
		already.Release()
		return NoChange, existing
	}

	size := int64(v.SizeInBytes())
	if c.currentUsage+size > c.maxMemory {
		var zero T
		return OutOfMemory, zero
	}

	e.insertVariant(width, height, variant)
	c.currentUsage += size
	var zero T
	return AddedAsResizedImage, zero
}

// TryRemoveVariant erases the (width, height) slot belonging to image's
// path, decrementing current usage by its byte size. A slot that still holds
// a live variant is left in place and false is returned. If the entry's variant
// map becomes empty, the entry itself (and its source) is removed too.
func (c *Cache[T]) TryRemoveVariant(image T) bool {
	path := image.Path()
	width, height := int(image.Width()), int(image.Height())

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[path]
	if !ok {
		return false
	}

	// A slot whose handle is still alive belongs to a different variant of
	// the same size (image lost a first-writer-wins admission); keep it.
	if weak, ok := e.variants[sizeKey{width, height}]; ok && weak.ctrl != nil && weak.ctrl.count.Load() > 0 {
		return false
	}

	removed := e.removeVariant(width, height)
	if !removed {
		return false
	}
	c.currentUsage -= int64(image.SizeInBytes())

	if len(e.variants) == 0 {
		c.currentUsage -= e.source.SizeInBytes()
		delete(c.entries, path)
	}
	return true
}

// MakeSharedHandle wraps raw in a strong Handle whose destruction hook calls
// TryRemoveVariant and then lets raw be garbage collected. This is the only
// mechanism by which a live variant leaves the cache. The hook never holds
// the cache mutex across its own acquisition of it (Release runs outside
// any cache-held lock), so no re-entrant locking is required even though
// the hook may run on a goroutine that admitted a completely unrelated
// entry moments earlier.
func (c *Cache[T]) MakeSharedHandle(raw T) Handle[T] {
	return NewHandle(raw, func(v T) {
		c.TryRemoveVariant(v)
	})
}

// ReleaseImage drops the cache's bookkeeping for path immediately: the
// source image and every variant slot are forgotten and usage is
// decremented for all of it, even variant slots whose strong handle is
// still alive elsewhere. Those live handles keep their pixels alive as
// always, but from this point the cache no longer accounts for their bytes
// against the budget — the caller has taken over responsibility for the
// path by asking for it to be released. Reports whether an entry existed.
func (c *Cache[T]) ReleaseImage(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[path]
	if !ok {
		return false
	}

	freed := e.source.SizeInBytes()
	for key, weak := range e.variants {
		if strong, ok := weak.Upgrade(); ok {
			freed += int64(strong.Value().SizeInBytes())
			strong.Release()
		}
		delete(e.variants, key)
	}

	c.currentUsage -= freed
	delete(c.entries, path)
	return true
}
