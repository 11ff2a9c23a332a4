// Package middleware holds the telebot middlewares shared by every route.
package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/menfes/core/logger"
	tghelpers "github.com/m3rciful/menfes/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RecoverMiddleware turns a panic in a handler into an error so one bad
// update cannot take the process down.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("telegram: panic handling update: %v", r)
				logger.Error(tghelpers.BuildContext(c), logger.CompTelegram, "tg.panic",
					slog.Any("err", r),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()
		return next(c)
	}
}

// CaptureError records the chain's result on c so callers driving
// Bot.ProcessContext can read it back with helpers.ErrorFrom.
func CaptureError(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		err := next(c)
		tghelpers.StoreError(c, err)
		return err
	}
}
