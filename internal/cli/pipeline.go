package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/KreesoAuriga/ImageLoader/internal/decoder"
	"github.com/KreesoAuriga/ImageLoader/internal/demoimage"
	"github.com/KreesoAuriga/ImageLoader/internal/imagecache"
	"github.com/KreesoAuriga/ImageLoader/internal/imagefactory"
	"github.com/KreesoAuriga/ImageLoader/internal/imageloader"
	"github.com/KreesoAuriga/ImageLoader/internal/scan"
)

// result is one task's outcome, captured for the final report.
type result struct {
	path   string
	status imageloader.Status
	bytes  int64
	errMsg string
}

// runResult is what a full CLI pipeline run produced: every task's outcome,
// the cache it ran against, and the strong handles successes produced so
// the caller can decide when to drop them.
type runResult struct {
	results []result
	cache   *imagecache.Cache[*demoimage.Image]
	handles []imagecache.Handle[*demoimage.Image]
	elapsed time.Duration
}

// loadTree scans dir for supported files and submits every one to a fresh
// Loader/Cache pair, fanning the TryGetImage calls out with an errgroup (a
// genuine bounded-wait-for-N-callbacks concern, distinct from the loader's
// own internal concurrency governor) and waiting for every callback before
// returning. Repeated rounds resubmit the same file set without releasing
// the previous round's handles. With an explicit width and height, later
// rounds are cache hits (FoundExactMatch) rather than fresh decodes. At
// native size (0, 0) the task's lookup is keyed on (0, 0) and never matches
// the cached variant, so it resizes again, finds the size slot taken and
// reports FailedToLoad.
func loadTree(dir string, width, height, workers int, memoryMiB int64, rounds int) (*runResult, error) {
	files, err := scan.Walk(dir, decoder.IsSupported)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no supported images found under %s (extensions: %v)", dir, decoder.SupportedExtensions())
	}

	logVerbose("found %d supported file(s) under %s", len(files), dir)

	cache := imagecache.New[*demoimage.Image](memoryMiB * 1 << 20)
	loader := imageloader.New[*demoimage.Image](cache, decoder.New(), imagefactory.New(), imageloader.Config{
		MaxThreadCount: workers,
	})
	defer loader.Close()

	out := &runResult{cache: cache}
	var mu sync.Mutex
	start := time.Now()

	for round := 0; round < rounds; round++ {
		g, _ := errgroup.WithContext(context.Background())
		for _, path := range files {
			path := path
			done := make(chan struct{}, 1)

			status := loader.TryGetImageAtSize(path, width, height, func(r imageloader.Result[*demoimage.Image]) {
				res := result{path: path, status: r.Status, errMsg: r.Message()}
				if r.Status == imageloader.StatusSuccess {
					res.bytes = int64(r.Image.Value().SizeInBytes())
				}

				mu.Lock()
				out.results = append(out.results, res)
				if r.Status == imageloader.StatusSuccess {
					out.handles = append(out.handles, r.Image)
				}
				mu.Unlock()

				done <- struct{}{}
			})
			if status == imageloader.TaskAlreadyExistsAndIsQueued {
				logVerbose("dedup hit: %s already queued at %dx%d", path, width, height)
				continue
			}
			logVerbose("queued %s (%s)", path, contentKey(path))

			g.Go(func() error {
				<-done
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	out.elapsed = time.Since(start)
	return out, nil
}
