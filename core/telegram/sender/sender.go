// Package sender wraps outbound Bot API calls with logging, metrics and error classification.
package sender

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/menfes/core/logger"
	"github.com/m3rciful/menfes/core/metrics"
)

// Call runs one Bot API request synchronously. The error from run is returned unchanged;
// failures are logged with the token redacted.
func Call(ctx context.Context, method string, run func() error) error {
	start := time.Now()
	err := run()
	took := logger.Took(start)

	if err != nil {
		kind := classifyError(err)
		metrics.IncTelegramCall(method, kind)
		attrs := []slog.Attr{
			slog.String("status", "fail"),
			slog.String("method", method),
			slog.String("err", sanitizeErrorMessage(err)),
			slog.String("err_code", kind),
			slog.Duration("duration", took),
		}
		if code := httpStatusFromError(err); code != 0 {
			attrs = append(attrs, slog.Int("http_code", code))
		}
		logger.Warn(ctx, logger.CompSender, "send.fail", attrs...)
		return err
	}

	metrics.IncTelegramCall(method, "ok")
	logger.Debug(ctx, logger.CompSender, "send.ok",
		slog.String("status", "ok"),
		slog.String("method", method),
		slog.Duration("duration", took),
	)
	return nil
}
