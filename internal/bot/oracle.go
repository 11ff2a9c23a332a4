package bot

import (
	"context"
	"strconv"
	"strings"

	"github.com/m3rciful/menfes/core/telegram/sender"
	"github.com/m3rciful/menfes/internal/relay"

	tele "gopkg.in/telebot.v4"
)

// chatRef addresses a chat by @username or numeric id.
type chatRef string

func (c chatRef) Recipient() string { return string(c) }

func communityRecipient(id string) tele.Recipient {
	id = strings.TrimSpace(id)
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return tele.ChatID(n)
	}
	return chatRef(id)
}

// Oracle answers membership questions with getChatMember.
type Oracle struct {
	api API
}

// NewOracle binds an Oracle to api.
func NewOracle(api API) *Oracle {
	return &Oracle{api: api}
}

func (o *Oracle) Standing(ctx context.Context, community string, userID int64) (relay.Standing, error) {
	var member *tele.ChatMember
	err := sender.Call(ctx, "getChatMember", func() error {
		var err error
		member, err = o.api.ChatMemberOf(communityRecipient(community), &tele.User{ID: userID})
		return err
	})
	if err != nil {
		return "", err
	}
	return relay.Standing(member.Role), nil
}
