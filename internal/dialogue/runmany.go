package dialogue

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunMany runs independent sessions concurrently, at most limit at a time,
// each with its own registry. Results are returned in request order. The
// first invalid request cancels the sessions not yet finished and its error
// is returned; completion failures do not, since they are reported per
// Result.
func (o *Orchestrator) RunMany(ctx context.Context, reqs []Request, limit int) ([]*Result, error) {
	results := make([]*Result, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, req := range reqs {
		g.Go(func() error {
			res, err := o.Analyze(gctx, req)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
