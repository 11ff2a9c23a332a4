package bot

import (
	"github.com/m3rciful/menfes/core/telegram/callbacks"
	"github.com/m3rciful/menfes/internal/relay"

	tele "gopkg.in/telebot.v4"
)

// privateOrigin returns the sender and chat of a private-chat message.
// ok is false for anything else, including messages without a sender.
func privateOrigin(c tele.Context) (*tele.User, *tele.Chat, bool) {
	msg := c.Message()
	if msg == nil || msg.Sender == nil || msg.Chat == nil || msg.Chat.Type != tele.ChatPrivate {
		return nil, nil, false
	}
	return msg.Sender, msg.Chat, true
}

func startEvent(c tele.Context) (relay.Event, bool) {
	user, chat, ok := privateOrigin(c)
	if !ok {
		return nil, false
	}
	return relay.Start{UserID: user.ID, ChatID: chat.ID, FirstName: user.FirstName}, true
}

// textEvent covers every non-command message. Captions are ignored, so
// media arrives with an empty Text.
func textEvent(c tele.Context) (relay.Event, bool) {
	user, chat, ok := privateOrigin(c)
	if !ok {
		return nil, false
	}
	return relay.Text{UserID: user.ID, ChatID: chat.ID, Text: c.Message().Text}, true
}

func pressEvent(c tele.Context) (relay.Event, bool) {
	cb := c.Callback()
	if cb == nil || cb.Sender == nil {
		return nil, false
	}
	press := relay.Press{
		UserID:     cb.Sender.ID,
		ChatID:     cb.Sender.ID,
		CallbackID: cb.ID,
		Data:       callbacks.Key(cb),
	}
	if cb.Message != nil {
		if cb.Message.Chat != nil {
			if cb.Message.Chat.Type != tele.ChatPrivate {
				return nil, false
			}
			press.ChatID = cb.Message.Chat.ID
		}
		press.MessageID = cb.Message.ID
	}
	return press, true
}
