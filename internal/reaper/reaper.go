// Package reaper runs the background sweeps: closing idle sessions and
// purging closed sessions and served orders past their retention window.
package reaper

import (
	"context"
	"time"

	"github.com/tableserve/api/internal/core"
)

type Reaper struct {
	svc *core.Service
}

func New(svc *core.Service) *Reaper { return &Reaper{svc: svc} }

// Run blocks until ctx is done, driving both sweeps on their own tickers.
// Sweeps log failures and carry on; a bad cycle is retried on the next tick.
func (r *Reaper) Run(ctx context.Context) {
	cfg := r.svc.Cfg
	inactivity := time.NewTicker(cfg.InactivitySweep)
	purge := time.NewTicker(cfg.PurgeSweep)
	defer inactivity.Stop()
	defer purge.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-inactivity.C:
			r.closeInactive(ctx)
		case <-purge.C:
			r.purgeExpired(ctx)
		}
	}
}

// closeInactive closes OPEN sessions whose last activity is older than the
// inactivity window. Each close goes through the service so tokens are
// revoked and the room is told.
func (r *Reaper) closeInactive(ctx context.Context) {
	svc := r.svc
	cutoff := time.Now().Add(-svc.Cfg.SessionInactivity)
	ids, err := svc.Sessions.ListInactiveOpen(ctx, cutoff)
	if err != nil {
		svc.Log.ErrorSuppressed("reaper.list_inactive", err, nil)
		return
	}
	for _, id := range ids {
		if err := svc.CloseSession(ctx, id, "inactive"); err != nil {
			svc.Log.ErrorSuppressed("reaper.close_session", err, map[string]any{"sessionId": id})
		}
	}
	if len(ids) > 0 {
		svc.Log.Info("reaper.closed_inactive", map[string]any{"count": len(ids)})
	}
}

// purgeExpired hard-deletes sessions closed longer than the retention TTL
// (with everything hanging off them) and served orders past their own TTL.
func (r *Reaper) purgeExpired(ctx context.Context) {
	svc := r.svc
	now := time.Now()

	sessionIDs, err := svc.Sessions.ListClosedBefore(ctx, now.Add(-svc.Cfg.ClosedSessionTTL))
	if err != nil {
		svc.Log.ErrorSuppressed("reaper.list_closed", err, nil)
	} else if len(sessionIDs) > 0 {
		if err := svc.Sessions.PurgeSessions(ctx, sessionIDs); err != nil {
			svc.Log.ErrorSuppressed("reaper.purge_sessions", err, nil)
		} else {
			for _, id := range sessionIDs {
				svc.Tokens.RevokeAll(id)
			}
			svc.Log.Info("reaper.purged_sessions", map[string]any{"count": len(sessionIDs)})
		}
	}

	orderIDs, err := svc.Orders.ListServedBefore(ctx, now.Add(-svc.Cfg.ServedOrderTTL))
	if err != nil {
		svc.Log.ErrorSuppressed("reaper.list_served", err, nil)
		return
	}
	if len(orderIDs) > 0 {
		if err := svc.Orders.PurgeOrders(ctx, orderIDs); err != nil {
			svc.Log.ErrorSuppressed("reaper.purge_orders", err, nil)
			return
		}
		svc.Log.Info("reaper.purged_orders", map[string]any{"count": len(orderIDs)})
	}
}
