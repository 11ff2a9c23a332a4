package middleware

import (
	"github.com/m3rciful/menfes/core/logger"
	"github.com/m3rciful/menfes/core/metrics"
	tghelpers "github.com/m3rciful/menfes/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// MetricsMiddleware counts handled updates by kind and outcome.
func MetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		err := next(c)
		upd := c.Update()
		metrics.IncTelegramUpdate(tghelpers.UpdateKind(&upd), logger.Status(err))
		return err
	}
}
