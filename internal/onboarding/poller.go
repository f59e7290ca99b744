package onboarding

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/glintlabs/glint/internal/model"
	"github.com/glintlabs/glint/internal/service"
)

// GateSatisfied decides when partially-synced data is enough to proceed: when
// every tracked entity reports complete, or when the designated primary entity
// alone does. The asymmetry lets the wizard run on partial-but-sufficient data
// instead of waiting for slower, less critical entity types.
func GateSatisfied(status model.SyncStatus, primaryEntity string) bool {
	if len(status.Entities) == 0 {
		return false
	}

	allComplete := true
	for _, e := range status.Entities {
		if e.State != model.EntityComplete {
			allComplete = false
			break
		}
	}
	if allComplete {
		return true
	}

	if primary, ok := status.Entity(primaryEntity); ok {
		return primary.State == model.EntityComplete
	}
	return false
}

// poller periodically fetches sync status while the machine sits in
// sync-wait. It issues one immediate check, then one per interval, strictly
// sequentially, and reports every result through onStatus. The poller never
// gives up on its own; it runs until Stop or context cancellation.
type poller struct {
	gateway  service.Gateway
	logger   *slog.Logger
	onStatus func(model.SyncStatus)
	stop     chan struct{}
	interval time.Duration
	stopOnce sync.Once
}

func startPoller(ctx context.Context, gw service.Gateway, interval time.Duration, onStatus func(model.SyncStatus)) *poller {
	p := &poller{
		gateway:  gw,
		interval: interval,
		onStatus: onStatus,
		logger:   slog.Default().With("component", "sync-poller"),
		stop:     make(chan struct{}),
	}
	go p.run(ctx)
	return p
}

// Stop halts polling. Safe to call more than once and from the onStatus
// callback. A check already in flight will still deliver its result; the
// machine's staleness guard discards it.
func (p *poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
}

func (p *poller) run(ctx context.Context) {
	p.check(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.check(ctx)
		}
	}
}

func (p *poller) check(ctx context.Context) {
	status, err := p.gateway.GetSyncStatus(ctx)
	if err != nil {
		// A failed check is not fatal; the next tick tries again.
		p.logger.Warn("Sync status check failed", "error", err)
		return
	}
	select {
	case <-p.stop:
		return
	default:
	}
	p.onStatus(*status)
}
