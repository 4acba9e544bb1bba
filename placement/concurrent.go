package placement

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tsawler/textpos/contentstream"
)

// Page is one page's operations, labelled with its page number.
type Page struct {
	Number     int
	Operations []contentstream.Operation
}

// ExtractPages runs Extract over every page using at most workers
// goroutines (all available pages when workers < 1). Results are returned
// in the order of pages. The only error is the context's, once it is
// cancelled; pages not yet started are then left out.
//
// An observer passed in opts is called from one goroutine at a time.
func ExtractPages(ctx context.Context, pages []Page, workers int, opts ...Option) ([][]TextItem, error) {
	cfg := newConfig(opts)
	if cfg.observer != nil {
		var mu sync.Mutex
		fn := cfg.observer
		opts = append(opts[:len(opts):len(opts)], WithObserver(func(s Skip) {
			mu.Lock()
			defer mu.Unlock()
			fn(s)
		}))
	}

	results := make([][]TextItem, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, page := range pages {
		if err := gctx.Err(); err != nil {
			break
		}
		i, page := i, page
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pageOpts := append(opts[:len(opts):len(opts)], WithPage(page.Number))
			results[i] = Extract(page.Operations, pageOpts...)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
