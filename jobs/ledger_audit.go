package jobs

import (
	"context"
	"time"

	"wintoday/logger"
	"wintoday/services"

	"go.uber.org/zap"
)

// StartLedgerAuditScheduler replays every player's ledger on each tick until
// ctx is done. A non-positive interval disables it.
func StartLedgerAuditScheduler(ctx context.Context, svc *services.GameService, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runLedgerAudit(ctx, svc)
			}
		}
	}()
}

func runLedgerAudit(ctx context.Context, svc *services.GameService) {
	started := time.Now()
	mismatches, err := svc.AuditAll(ctx)
	if err != nil {
		logger.Error("❌ ledger audit failed", zap.Error(err))
		return
	}
	if mismatches > 0 {
		logger.Warn("⚠️ ledger audit found mismatches", zap.Int("players", mismatches), zap.Duration("took", time.Since(started)))
		return
	}
	logger.Debug("🧾 ledger audit clean", zap.Duration("took", time.Since(started)))
}
