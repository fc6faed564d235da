package imageloader

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KreesoAuriga/ImageLoader/internal/imagecache"
)

func newCache(t *testing.T, maxMemoryBytes int64) *imagecache.Cache[*fakeImage] {
	t.Helper()
	return imagecache.New[*fakeImage](maxMemoryBytes)
}

// fakeImage is a minimal imagecache.Sized implementation for these tests.
type fakeImage struct {
	path          string
	width, height int32
	pixels        []byte
}

func (f *fakeImage) Width() int32        { return f.width }
func (f *fakeImage) Height() int32       { return f.height }
func (f *fakeImage) Path() string        { return f.path }
func (f *fakeImage) SizeInBytes() uint32 { return uint32(f.width) * uint32(f.height) * 4 }

type fakeFactory struct{}

func (fakeFactory) Construct(width, height int, path string, pixels []byte) (*fakeImage, error) {
	return &fakeImage{path: path, width: int32(width), height: int32(height), pixels: pixels}, nil
}

// fakeDecoder simulates the external pixel decoder. All images it "decodes"
// share the same dimensions; paths listed in missing fail with a
// not-found-flavored error. An optional delay lets tests observe the
// loader's concurrency governor.
type fakeDecoder struct {
	width, height int
	delay         time.Duration
	missing       map[string]bool

	running atomic.Int64
	peak    atomic.Int64
}

func (d *fakeDecoder) Decode(path string) (int, int, []byte, error) {
	if d.missing[path] {
		return 0, 0, nil, fmt.Errorf("%s: %w", path, os.ErrNotExist)
	}

	cur := d.running.Add(1)
	defer d.running.Add(-1)
	for {
		p := d.peak.Load()
		if cur <= p {
			break
		}
		if d.peak.CompareAndSwap(p, cur) {
			break
		}
	}

	if d.delay > 0 {
		time.Sleep(d.delay)
	}

	pixels := make([]byte, d.width*d.height*4)
	return d.width, d.height, pixels, nil
}

func waitForResult(t *testing.T, recv <-chan Result[*fakeImage]) Result[*fakeImage] {
	t.Helper()
	select {
	case r := <-recv:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
		panic("unreachable")
	}
}

func TestBasicLoadScenario(t *testing.T) {
	const width, height = 1920, 1080
	cache := newCache(t, 16*1024*1024)
	decoder := &fakeDecoder{width: width, height: height}
	loader := New[*fakeImage](cache, decoder, fakeFactory{}, Config{MaxThreadCount: 4})
	defer loader.Close()

	results := make(chan Result[*fakeImage], 1)
	status := loader.TryGetImage("/img.png", func(r Result[*fakeImage]) { results <- r })
	if status != PlacedNewTaskInQueue {
		t.Fatalf("TryGetImage status = %v, want PlacedNewTaskInQueue", status)
	}

	r := waitForResult(t, results)
	if r.Status != StatusSuccess {
		t.Fatalf("Status = %v (%s), want Success", r.Status, r.Message())
	}
	if cache.EntryCount() != 1 {
		t.Fatalf("EntryCount = %d, want 1", cache.EntryCount())
	}

	want := int64(width) * int64(height) * 4 * 2 // source + one native-size variant
	if got := cache.CurrentUsage(); got != want {
		t.Fatalf("CurrentUsage = %d, want %d", got, want)
	}

	r.Image.Release()
	if cache.EntryCount() != 0 {
		t.Fatalf("EntryCount after release = %d, want 0", cache.EntryCount())
	}
	if cache.CurrentUsage() != 0 {
		t.Fatalf("CurrentUsage after release = %d, want 0", cache.CurrentUsage())
	}
}

func TestDedupScenario(t *testing.T) {
	cache := newCache(t, 16*1024*1024)
	decoder := &fakeDecoder{width: 64, height: 64}
	loader := New[*fakeImage](cache, decoder, fakeFactory{}, Config{MaxThreadCount: 4})
	defer loader.Close()

	results := make(chan Result[*fakeImage], 2)
	cb := func(r Result[*fakeImage]) { results <- r }

	first := loader.TryGetImage("/same.png", cb)
	second := loader.TryGetImage("/same.png", cb)

	if first != PlacedNewTaskInQueue {
		t.Fatalf("first status = %v, want PlacedNewTaskInQueue", first)
	}
	if second != TaskAlreadyExistsAndIsQueued {
		t.Fatalf("second status = %v, want TaskAlreadyExistsAndIsQueued", second)
	}

	r := waitForResult(t, results)
	if r.Status != StatusSuccess {
		t.Fatalf("Status = %v (%s)", r.Status, r.Message())
	}
	select {
	case <-results:
		t.Fatal("received a second callback; only the deduplicated task should have fired one")
	case <-time.After(50 * time.Millisecond):
	}
	r.Image.Release()
}

func TestMissingFileScenario(t *testing.T) {
	cache := newCache(t, 16*1024*1024)
	path := "@does_not_exist.jpg"
	decoder := &fakeDecoder{width: 64, height: 64, missing: map[string]bool{path: true}}
	loader := New[*fakeImage](cache, decoder, fakeFactory{}, Config{MaxThreadCount: 2})
	defer loader.Close()

	results := make(chan Result[*fakeImage], 1)
	loader.TryGetImage(path, func(r Result[*fakeImage]) { results <- r })

	r := waitForResult(t, results)
	if r.Status != StatusFailedToLoad {
		t.Fatalf("Status = %v, want FailedToLoad", r.Status)
	}
	if len(r.Message()) < len(path) || r.Message()[:len(path)] != path {
		t.Fatalf("message %q does not begin with path %q", r.Message(), path)
	}
	if cache.EntryCount() != 0 {
		t.Fatalf("EntryCount = %d, want 0 (cache must be unaffected by a failed decode)", cache.EntryCount())
	}
}

func TestBudgetExhaustionScenario(t *testing.T) {
	const (
		width, height = 100, 100
		numImages     = 35
	)
	perImage := int64(width) * int64(height) * 4 * 2 // source + native variant
	budget := (perImage*numImages + 1024) / 2

	cache := newCache(t, budget)
	decoder := &fakeDecoder{width: width, height: height}
	loader := New[*fakeImage](cache, decoder, fakeFactory{}, Config{MaxThreadCount: 8})
	defer loader.Close()

	var wg sync.WaitGroup
	var sawOutOfMemory atomic.Bool
	var handlesMu sync.Mutex
	var handles []imagecache.Handle[*fakeImage]
	for i := 0; i < numImages; i++ {
		wg.Add(1)
		path := fmt.Sprintf("/img-%d.png", i)
		loader.TryGetImage(path, func(r Result[*fakeImage]) {
			defer wg.Done()
			if r.Status == StatusOutOfMemory {
				sawOutOfMemory.Store(true)
			}
			if r.Status == StatusSuccess {
				// Hold every handle until the end: releasing it here would
				// evict the entry and the budget would never fill up.
				handlesMu.Lock()
				handles = append(handles, r.Image)
				handlesMu.Unlock()
			}
		})
	}
	wg.Wait()
	defer func() {
		for _, h := range handles {
			h.Release()
		}
	}()

	if !sawOutOfMemory.Load() {
		t.Fatal("expected at least one OutOfMemory result when budget cannot fit all images")
	}
	if got := cache.CurrentUsage(); got > budget {
		t.Fatalf("CurrentUsage = %d exceeds budget %d", got, budget)
	}
}

func TestThreadCapScenario(t *testing.T) {
	const maxThreads = 2
	cache := newCache(t, 64*1024*1024)
	decoder := &fakeDecoder{width: 32, height: 32, delay: 15 * time.Millisecond}
	loader := New[*fakeImage](cache, decoder, fakeFactory{}, Config{MaxThreadCount: maxThreads})
	defer loader.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		path := fmt.Sprintf("/cap-%d.png", i)
		loader.TryGetImage(path, func(r Result[*fakeImage]) {
			defer wg.Done()
			if r.Status == StatusSuccess {
				r.Image.Release()
			}
		})
	}
	wg.Wait()

	if peak := decoder.peak.Load(); peak > maxThreads {
		t.Fatalf("observed peak concurrent decode count %d exceeds max thread count %d", peak, maxThreads)
	}
}

func TestReleaseImageRemovesEntryImmediately(t *testing.T) {
	cache := newCache(t, 16*1024*1024)
	decoder := &fakeDecoder{width: 32, height: 32}
	loader := New[*fakeImage](cache, decoder, fakeFactory{}, Config{MaxThreadCount: 2})
	defer loader.Close()

	results := make(chan Result[*fakeImage], 1)
	loader.TryGetImage("/release-me.png", func(r Result[*fakeImage]) { results <- r })
	r := waitForResult(t, results)
	if r.Status != StatusSuccess {
		t.Fatalf("Status = %v (%s)", r.Status, r.Message())
	}

	if !loader.ReleaseImage("/release-me.png") {
		t.Fatal("ReleaseImage = false, want true")
	}
	if cache.EntryCount() != 0 {
		t.Fatalf("EntryCount after ReleaseImage = %d, want 0", cache.EntryCount())
	}

	// The still-live handle keeps its pixels readable; releasing it later
	// must not panic even though the cache has already forgotten the path.
	r.Image.Release()
}
