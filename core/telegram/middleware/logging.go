package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/menfes/core/logger"
	tghelpers "github.com/m3rciful/menfes/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

type seenUpdate struct {
	id int
	at time.Time
}

// recentUpdates remembers processed update IDs for a while; Telegram
// redelivers an update when the webhook answered with an error. Entries are
// kept in arrival order so expiry only touches the oldest ones.
type recentUpdates struct {
	mu    sync.Mutex
	index map[int]struct{}
	order []seenUpdate
	keep  time.Duration
	limit int
	now   func() time.Time
}

func newRecentUpdates(keep time.Duration, limit int) *recentUpdates {
	return &recentUpdates{
		index: make(map[int]struct{}),
		keep:  keep,
		limit: limit,
		now:   time.Now,
	}
}

var recent = newRecentUpdates(10*time.Minute, 4096)

// seen reports whether id was recorded within the window and records it otherwise.
func (r *recentUpdates) seen(id int) bool {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	for len(r.order) > 0 && (now.Sub(r.order[0].at) > r.keep || len(r.order) >= r.limit) {
		delete(r.index, r.order[0].id)
		r.order = r.order[1:]
	}
	if _, ok := r.index[id]; ok {
		return true
	}
	r.index[id] = struct{}{}
	r.order = append(r.order, seenUpdate{id: id, at: now})
	return false
}

// LoggerMiddleware sets the rid and update metadata on the stored context,
// logs receipt at debug and one summary line once the update has been handled.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		upd := c.Update()
		start := time.Now()

		attrs := []slog.Attr{
			slog.Int("update_id", upd.ID),
			slog.String("kind", tghelpers.UpdateKind(&upd)),
		}
		if chat := c.Chat(); chat != nil {
			attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
		}
		if user := c.Sender(); user != nil {
			if user.Username != "" {
				attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
			}
			if user.LanguageCode != "" {
				attrs = append(attrs, slog.String("lang", user.LanguageCode))
			}
		}
		switch {
		case upd.Callback != nil:
			attrs = append(attrs, slog.String("cb_data", logger.SanitizeLimit(upd.Callback.Data, 64)))
		case upd.Message != nil:
			// Message bodies are anonymous submissions; only their size is logged.
			attrs = append(attrs, slog.Int("text_len", len([]rune(upd.Message.Text))))
		}
		if recent.seen(upd.ID) {
			attrs = append(attrs, slog.Bool("redelivered", true))
		}
		logger.LogEvent(ctx, nil, slog.LevelDebug, "update.received", attrs...)

		err := next(c)

		level := slog.LevelDebug
		done := []slog.Attr{
			slog.String("status", logger.Status(err)),
			slog.Duration("duration", logger.Took(start)),
		}
		if err != nil {
			level = slog.LevelError
			done = append(done, slog.String("err", err.Error()))
		}
		logger.LogEvent(ctx, nil, level, "update.handled", done...)
		return err
	}
}
