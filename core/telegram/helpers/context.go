package helpers

import (
	"context"

	"github.com/m3rciful/menfes/core/logger"

	tele "gopkg.in/telebot.v4"
)

const (
	contextKey = "ctx"
	errorKey   = "handler_err"
)

// StoreContext attaches reusable context to tele.Context for downstream helpers.
func StoreContext(c tele.Context, ctx context.Context) {
	if c == nil || ctx == nil {
		return
	}
	c.Set(contextKey, ctx)
}

// ContextFrom returns the context previously stored on c.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	if v := c.Get(contextKey); v != nil {
		if ctx, ok := v.(context.Context); ok {
			return ctx, true
		}
	}
	return nil, false
}

// BuildContext returns the context carrying the rid and update/user/chat
// metadata for c. A stored context that already has a rid is reused; a stored
// context without one is used as the parent.
func BuildContext(c tele.Context) context.Context {
	parent, ok := ContextFrom(c)
	if !ok {
		parent = context.Background()
	}
	if logger.RIDFrom(parent) != "" || c == nil {
		return parent
	}

	var chatID, userID int64
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	if user := c.Sender(); user != nil {
		userID = user.ID
	}
	updateID := c.Update().ID

	ctx := logger.WithRID(parent, logger.BuildRID(updateID, chatID, userID))
	ctx = logger.WithUpdateMeta(ctx, updateID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.Component(logger.CompTelegram))
	StoreContext(c, ctx)
	return ctx
}

// StoreError records the error returned by the handler chain for c.
func StoreError(c tele.Context, err error) {
	if c == nil || err == nil {
		return
	}
	c.Set(errorKey, err)
}

// ErrorFrom returns the handler error recorded on c, if any.
func ErrorFrom(c tele.Context) error {
	if c == nil {
		return nil
	}
	if err, ok := c.Get(errorKey).(error); ok {
		return err
	}
	return nil
}

// UpdateKind names the payload carried by an update for logs and metrics.
func UpdateKind(upd *tele.Update) string {
	switch {
	case upd == nil:
		return "none"
	case upd.Message != nil:
		if upd.Message.Text != "" {
			return "message"
		}
		return "media"
	case upd.Callback != nil:
		return "callback"
	case upd.EditedMessage != nil:
		return "edited_message"
	case upd.ChannelPost != nil:
		return "channel_post"
	}
	return "other"
}
