package diff

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Pair is one (before, after) comparison.
type Pair struct {
	Before string
	After  string
}

// Computer produces a diff for one pair. Engine and *Cache both satisfy it.
type Computer interface {
	Compute(before, after string) (*Diff, error)
}

// ComputeBatch diffs pairs concurrently with at most limit diffs in flight (limit <= 0 means no
// limit). Results are in the order of pairs. The first failure, or cancellation of ctx, stops
// the batch and is returned with no results.
func ComputeBatch(ctx context.Context, c Computer, pairs []Pair, limit int) ([]*Diff, error) {
	results := make([]*Diff, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, p := range pairs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := c.Compute(p.Before, p.After)
			if err != nil {
				return fmt.Errorf("pair %d: %w", i, err)
			}
			results[i] = d
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// The group context is always done after Wait; only the caller's context matters here.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
