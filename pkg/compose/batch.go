// batch.go - Render many variants of one cutout in parallel.
package compose

import (
	"context"
	"fmt"
	"image"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xob0t/GoCard/pkg/errors"
	"github.com/xob0t/GoCard/pkg/palette"
	"github.com/xob0t/GoCard/pkg/template"
	"github.com/xob0t/GoCard/pkg/textlayout"
)

// Result is the outcome of one variant in a batch. Exactly one of Card and
// Err is set.
type Result struct {
	Variant  template.Variant
	Card     *Card
	Err      error
	Duration time.Duration
}

// Skipped returns the truncated roles of a successful render.
func (r Result) Skipped() []textlayout.Role {
	if r.Card == nil {
		return nil
	}
	return r.Card.Skipped
}

// VariantRNG returns the source a batch with seed uses for variant id.
func VariantRNG(seed uint64, id int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(id)))
}

// RenderAll renders variants with at most Config.Workers in flight. The
// cutout is trimmed once: an empty sprite fails the whole call, as does any
// variant needing an empty asset pool, before anything is drawn. Other
// failures, panics included, are confined to their variant's Result.
// Results keep the order of variants.
func (c *Composer) RenderAll(ctx context.Context, in Input, variants []template.Variant, seed uint64) ([]Result, error) {
	sprite, avg, err := c.Prepare(in)
	if err != nil {
		return nil, err
	}
	for _, v := range variants {
		if err := c.pools.Require(v.Pools()...); err != nil {
			return nil, fmt.Errorf("variant %d: %w", v.ID, err)
		}
	}

	run := uuid.NewString()
	logger := c.logger.With("run", run)
	logger.Debug("batch started", "variants", len(variants), "workers", c.cfg.Workers, "seed", seed)

	results := make([]Result, len(variants))
	sem := make(chan struct{}, c.cfg.Workers)
	var wg sync.WaitGroup

	for i, v := range variants {
		results[i].Variant = v

		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		select {
		case <-ctx.Done():
			results[i].Err = ctx.Err()
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(r *Result) {
			defer wg.Done()
			defer func() { <-sem }()

			start := time.Now()
			r.Card, r.Err = c.safeRender(sprite, avg, in, r.Variant, VariantRNG(seed, r.Variant.ID))
			r.Duration = time.Since(start)
			if r.Err != nil {
				logger.Error("variant failed", "variant", r.Variant.ID, "name", r.Variant.Name, "err", r.Err)
			}
		}(&results[i])
	}
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	logger.Info("batch finished", "rendered", len(results)-failed, "failed", failed)
	return results, nil
}

func (c *Composer) safeRender(sprite *image.NRGBA, avg palette.Color, in Input, v template.Variant, rng *rand.Rand) (card *Card, err error) {
	defer func() {
		if p := recover(); p != nil {
			card = nil
			err = errors.New(errors.ErrCodeInternal, "variant %d panicked: %v", v.ID, p)
		}
	}()
	return c.render(sprite, avg, in, v, rng)
}
