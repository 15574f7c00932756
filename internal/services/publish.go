package services

import (
	"context"
	"time"

	"storefront/internal/events"
	applog "storefront/internal/log"
)

// publishTimeout bounds one batch of event writes. Events go out after the
// state change has committed, so a slow broker must not hold the caller.
var publishTimeout = 2 * time.Second

type outbound struct {
	topic string
	ev    events.Event
}

// publish delivers events best effort under a single deadline; failures are logged.
func publish(ctx context.Context, p events.Publisher, out ...outbound) {
	if p == nil || len(out) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	for _, o := range out {
		if err := p.Publish(ctx, o.topic, o.ev); err != nil {
			applog.Error(nil, "events.publish.fail", err, map[string]any{"type": o.ev.Type, "key": o.ev.Key})
		}
	}
}
