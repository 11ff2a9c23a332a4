package state

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/menfes/core/logger"
)

// RunJanitor sweeps b every interval until ctx is cancelled.
// Backends without Sweep return immediately.
func RunJanitor(ctx context.Context, b Backend, interval time.Duration) {
	sw, ok := b.(Sweeper)
	if !ok || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			n, err := sw.Sweep(ctx)
			if err != nil {
				logger.Warn(ctx, logger.CompStore, "state.sweep",
					slog.String("status", "fail"),
					slog.String("err", err.Error()),
				)
				continue
			}
			if n > 0 {
				logger.Debug(ctx, logger.CompStore, "state.sweep",
					slog.String("status", "ok"),
					slog.Int("count", n),
					slog.Duration("duration", logger.Took(start)),
				)
			}
		}
	}
}
