package notification

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Source is the feed the poller drains: all messages newer than sinceID,
// across tenants, in ascending ID order.
type Source interface {
	FetchSince(ctx context.Context, sinceID int64, limit int) ([]*Message, error)
}

// DeliverFunc pushes one batch to the delivery channel (mail relay,
// webhook, log). A non-nil error leaves the cursor where it was so the
// batch is retried on the next tick.
type DeliverFunc func(ctx context.Context, messages []*Message) error

// Poller drives message delivery on a fixed interval. The last-seen
// cursor only advances after a batch is fetched and delivered
// successfully; failures are logged and retried, never skipped.
type Poller struct {
	source    Source
	deliver   DeliverFunc
	interval  time.Duration
	batchSize int
	lastSeen  atomic.Int64
	logger    *slog.Logger
}

func NewPoller(source Source, deliver DeliverFunc, interval time.Duration, batchSize int, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Poller{
		source:    source,
		deliver:   deliver,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
}

// LastSeen reports the current cursor position.
func (p *Poller) LastSeen() int64 {
	return p.lastSeen.Load()
}

// Run polls until ctx is cancelled. One tick in flight at a time; a slow
// delivery simply delays the next tick.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("notification poller started", "interval", p.interval, "batch_size", p.batchSize)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("notification poller stopped", "last_seen", p.LastSeen())
			return ctx.Err()
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick performs a single fetch-and-deliver pass.
func (p *Poller) Tick(ctx context.Context) {
	cursor := p.lastSeen.Load()

	messages, err := p.source.FetchSince(ctx, cursor, p.batchSize)
	if err != nil {
		p.logger.Error("poll fetch failed", "last_seen", cursor, "error", err)
		return
	}
	if len(messages) == 0 {
		return
	}

	if err := p.deliver(ctx, messages); err != nil {
		p.logger.Error("delivery failed, cursor not advanced",
			"last_seen", cursor,
			"batch", len(messages),
			"error", err)
		return
	}

	p.lastSeen.Store(messages[len(messages)-1].ID)
	p.logger.Debug("batch delivered", "count", len(messages), "last_seen", p.LastSeen())
}
