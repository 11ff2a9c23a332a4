package bot

import (
	"context"
	"strconv"

	"github.com/m3rciful/menfes/core/telegram/keyboard"
	"github.com/m3rciful/menfes/core/telegram/sender"
	"github.com/m3rciful/menfes/internal/relay"

	tele "gopkg.in/telebot.v4"
)

// API is the part of *tele.Bot the relay adapters use.
type API interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
	Respond(c *tele.Callback, resp ...*tele.CallbackResponse) error
	ChatMemberOf(chat, user tele.Recipient) (*tele.ChatMember, error)
}

// Dispatcher delivers relay messages through the Bot API in HTML parse mode.
type Dispatcher struct {
	api API
}

// NewDispatcher binds a Dispatcher to api.
func NewDispatcher(api API) *Dispatcher {
	return &Dispatcher{api: api}
}

func (d *Dispatcher) Send(ctx context.Context, chatID int64, text string, kb relay.Keyboard) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: markup(kb)}
	return sender.Call(ctx, "sendMessage", func() error {
		_, err := d.api.Send(tele.ChatID(chatID), text, opts)
		return err
	})
}

// Edit replaces the text of a message and drops its keyboard.
func (d *Dispatcher) Edit(ctx context.Context, chatID int64, messageID int, text string) error {
	msg := tele.StoredMessage{MessageID: strconv.Itoa(messageID), ChatID: chatID}
	return sender.Call(ctx, "editMessageText", func() error {
		_, err := d.api.Edit(msg, text, &tele.SendOptions{ParseMode: tele.ModeHTML})
		return err
	})
}

func (d *Dispatcher) Acknowledge(ctx context.Context, callbackID string) error {
	return sender.Call(ctx, "answerCallbackQuery", func() error {
		return d.api.Respond(&tele.Callback{ID: callbackID})
	})
}

func markup(kb relay.Keyboard) *tele.ReplyMarkup {
	rows := make([][]keyboard.InlineBtn, 0, len(kb))
	for _, row := range kb {
		btns := make([]keyboard.InlineBtn, 0, len(row))
		for _, b := range row {
			btns = append(btns, keyboard.InlineBtn{Text: b.Text, Data: b.Data, URL: b.URL})
		}
		rows = append(rows, btns)
	}
	return keyboard.InlineButtonsRows(rows...)
}
