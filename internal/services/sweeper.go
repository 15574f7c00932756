package services

import (
	"context"
	"time"

	applog "storefront/internal/log"
)

// RunSweeper cancels stale pending orders every interval until ctx ends.
func (s *OrderService) RunSweeper(ctx context.Context, ttl, every time.Duration) {
	if ttl <= 0 {
		return
	}
	if every <= 0 {
		every = 10 * time.Minute
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.SweepStale(ctx, ttl)
			if err != nil {
				applog.Error(nil, "orders.sweep.fail", err, nil)
				continue
			}
			if n > 0 {
				applog.Audit(nil, "orders.sweep", map[string]any{"cancelled": n, "ttl": ttl.String()})
			}
		}
	}
}
