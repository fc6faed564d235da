package imagecache

// sizeKey identifies a resized variant within an entry.
type sizeKey struct {
	Width, Height int
}

// entry binds one path to its source image plus a size-keyed map of weak
// handles to resized variants. All methods assume the cache's mutex is
// already held by the caller.
type entry[T Sized] struct {
	path     string
	source   *SourceImage
	variants map[sizeKey]WeakHandle[T]
}

func newEntry[T Sized](source *SourceImage) *entry[T] {
	return &entry[T]{
		path:     source.Path,
		source:   source,
		variants: make(map[sizeKey]WeakHandle[T]),
	}
}

// tryGetVariant upgrades the weak slot at (w,h), reaping it if the upgrade
// fails (the variant was already destroyed).
func (e *entry[T]) tryGetVariant(w, h int) (Handle[T], bool) {
	key := sizeKey{w, h}
	weak, ok := e.variants[key]
	if !ok {
		return Handle[T]{}, false
	}
	strong, ok := weak.Upgrade()
	if !ok {
		delete(e.variants, key)
		return Handle[T]{}, false
	}
	return strong, true
}

// insertVariant stores a weak reference derived from strong. Calling this
// when a live variant already occupies (w,h) is a usage error; admission
// rules in Cache.TryAddVariant must rule that out first.
func (e *entry[T]) insertVariant(w, h int, strong Handle[T]) {
	key := sizeKey{w, h}
	if existing, ok := e.tryGetVariant(w, h); ok {
		existing.Release()
		panic("imagecache: insertVariant called with a live variant already present at this size")
	}
	e.variants[key] = strong.Weak()
}

// removeVariant erases the weak slot for (w,h), reporting whether one was
// present.
func (e *entry[T]) removeVariant(w, h int) bool {
	key := sizeKey{w, h}
	if _, ok := e.variants[key]; ok {
		delete(e.variants, key)
		return true
	}
	return false
}

// totalLiveBytes sums the source's bytes plus every variant slot whose weak
// handle still upgrades, reaping any that don't.
func (e *entry[T]) totalLiveBytes() int64 {
	total := e.source.SizeInBytes()
	for key, weak := range e.variants {
		strong, ok := weak.Upgrade()
		if !ok {
			delete(e.variants, key)
			continue
		}
		total += int64(strong.Value().SizeInBytes())
		strong.Release()
	}
	return total
}
