package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/brokerx/crypto-brokerage-app/backend/internal/core/ports"
)

type Reporting interface {
	Dashboard(ctx context.Context) (*ports.DashboardStats, error)
}

type BroadcastSink interface {
	Broadcast(v any)
	SubscriberCount() int
}

// DashboardBroadcaster periodically pushes the dashboard snapshot to
// connected admin websocket subscribers.
type DashboardBroadcaster struct {
	logger    *slog.Logger
	reporting Reporting
	sink      BroadcastSink

	interval time.Duration
}

func NewDashboardBroadcaster(
	logger *slog.Logger,
	reporting Reporting,
	sink BroadcastSink,
	interval time.Duration,
) *DashboardBroadcaster {
	return &DashboardBroadcaster{
		logger:    logger,
		reporting: reporting,
		sink:      sink,
		interval:  interval,
	}
}

// Start begins the periodic broadcast loop.
func (b *DashboardBroadcaster) Start(ctx context.Context) {
	b.logger.Info("Starting dashboard broadcaster", "interval", b.interval.String())

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Dashboard broadcaster stopped")
			return
		case <-ticker.C:
			if err := b.broadcastOnce(ctx); err != nil {
				b.logger.Error("Dashboard broadcast failed", "error", err)
			}
		}
	}
}

func (b *DashboardBroadcaster) broadcastOnce(ctx context.Context) error {
	// No point hitting the database with nobody listening.
	if b.sink.SubscriberCount() == 0 {
		return nil
	}

	stats, err := b.reporting.Dashboard(ctx)
	if err != nil {
		return err
	}

	b.sink.Broadcast(stats)
	b.logger.Debug("Dashboard snapshot broadcast",
		"pending", stats.PendingTransactions, "subscribers", b.sink.SubscriberCount())

	return nil
}
