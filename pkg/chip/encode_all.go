package chip

import (
	"context"
	"fmt"

	"github.com/braheezy/chipenc/pkg/score"
	"golang.org/x/sync/errgroup"
)

// EncodeAll encodes one note list per channel, assigning parts[i] to
// Channels[i]. Parts beyond the last channel are ignored. Channels are
// encoded concurrently; the first failure cancels the rest and is returned.
// Results are in channel order.
func EncodeAll(ctx context.Context, parts [][]score.Note, opts Options) ([]*Result, error) {
	n := min(len(parts), len(Channels))
	results := make([]*Result, n)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := Encode(Channels[i], parts[i], opts)
			if err != nil {
				return fmt.Errorf("encode %v: %w", Channels[i], err)
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
