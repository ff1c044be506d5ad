package collector

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"
)

// pacer spaces out page requests: a token bucket enforces a floor between
// calls and a random jitter is added on top
type pacer struct {
	limiter   *rate.Limiter
	maxJitter time.Duration
}

func newPacer(minInterval, maxJitter time.Duration) *pacer {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &pacer{
		limiter:   rate.NewLimiter(limit, 1),
		maxJitter: maxJitter,
	}
}

// Wait blocks until the next request may go out. Jitter only applies to
// follow-up pages, so the first page of a run is not delayed by it.
func (p *pacer) Wait(ctx context.Context, followUp bool) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	if !followUp || p.maxJitter <= 0 {
		return nil
	}
	t := time.NewTimer(rand.N(p.maxJitter))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
