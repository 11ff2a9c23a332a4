// Package callbacks decodes inline keyboard callback data.
package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ParseData splits callback data into its key and optional payload.
// Both raw data ("check_join") and telebot's "\f<unique>|<payload>"
// encoding are accepted.
func ParseData(data string) (string, string) {
	raw := strings.TrimPrefix(data, "\f")
	key, payload, _ := strings.Cut(raw, "|")
	return strings.TrimSpace(key), payload
}

// Key returns the callback key, preferring cb.Unique when telebot resolved it.
func Key(cb *tele.Callback) string {
	if cb == nil {
		return ""
	}
	if cb.Unique != "" {
		return cb.Unique
	}
	k, _ := ParseData(cb.Data)
	return k
}
