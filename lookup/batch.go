package lookup

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/symc/symcache"
)

// BatchResolve resolves every address in addrs against cache concurrently,
// bounded to concurrency goroutines at a time, mirroring the teacher's
// errgroup-based batch builder. Results are returned in the same order
// as addrs.
//
// A Corrupt error on one address does not abort the batch or poison the
// rest: that address's entry holds whatever frames were yielded before
// the corruption (possibly none), and the batch continues. The returned
// error is non-nil only when ctx is canceled or deadlined.
func BatchResolve(ctx context.Context, cache *SymCache, addrs []symcache.RelativeAddress, concurrency int) ([][]Frame, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([][]Frame, len(addrs))
	g, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, concurrency)

	for i, addr := range addrs {
		i, addr := i, addr
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			_ = g.Wait()
			return nil, ctx.Err()
		}
		g.Go(func() error {
			defer func() { <-sem }()
			frames, _ := Frames(cache, addr)
			results[i] = frames
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
