package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/campusconnect/campusconnect/pkg/slogx"
)

// RunHousekeeping purges expired refresh-token rows on the given interval
// until ctx is cancelled. Expired grants are already unusable, the purge only
// keeps the table from growing without bound.
func (a *Auth) RunHousekeeping(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	log := slogx.FromContext(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.store.RefreshTokens().DeleteExpiredRefreshTokens(ctx); err != nil {
				log.Error("refresh token purge failed", slog.String("error", err.Error()))
			}
		}
	}
}
