package telegram

import (
	"github.com/m3rciful/menfes/core/telegram/middleware"
)

// DefaultMiddlewares builds the shared middleware chain: recovery outermost,
// then logging, then metrics.
func DefaultMiddlewares() []Middleware {
	return []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
		{Name: "logger", Use: middleware.LoggerMiddleware},
		{Name: "metrics", Use: middleware.MetricsMiddleware},
	}
}
