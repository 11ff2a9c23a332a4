package telegram

import (
	"time"

	tele "gopkg.in/telebot.v4"
)

const defaultLongPollTimeout = 10 * time.Second

// AllowedUpdates lists the update kinds the relay consumes.
var AllowedUpdates = []string{"message", "callback_query"}

// LongPollTimeout converts the configured seconds into a poll timeout.
func LongPollTimeout(seconds int) time.Duration {
	if seconds <= 0 {
		return defaultLongPollTimeout
	}
	return time.Duration(seconds) * time.Second
}

// BuildPoller returns the long poller used when no webhook is configured.
func BuildPoller(timeout time.Duration) *tele.LongPoller {
	return &tele.LongPoller{Timeout: timeout, AllowedUpdates: AllowedUpdates}
}
