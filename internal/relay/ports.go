package relay

import "context"

// Button is an inline keyboard button. URL buttons open a link; others carry Data.
type Button struct {
	Text string
	Data string
	URL  string
}

// Keyboard is a list of button rows.
type Keyboard [][]Button

// Dispatcher delivers messages to Telegram chats.
type Dispatcher interface {
	Send(ctx context.Context, chatID int64, text string, kb Keyboard) error
	Edit(ctx context.Context, chatID int64, messageID int, text string) error
	Acknowledge(ctx context.Context, callbackID string) error
}

// Standing is a user's membership role in a community.
type Standing string

const (
	StandingCreator       Standing = "creator"
	StandingAdministrator Standing = "administrator"
	StandingMember        Standing = "member"
	StandingRestricted    Standing = "restricted"
	StandingLeft          Standing = "left"
	StandingKicked        Standing = "kicked"
)

// Satisfied reports whether the standing passes the membership gate.
func (s Standing) Satisfied() bool {
	switch s {
	case StandingMember, StandingAdministrator, StandingCreator:
		return true
	}
	return false
}

// Oracle reports a user's standing in a community.
type Oracle interface {
	Standing(ctx context.Context, community string, userID int64) (Standing, error)
}

// Community is a chat users must join before submitting.
type Community struct {
	ID    string
	Title string
	URL   string
}

// Settings are the relay constants read once at startup.
type Settings struct {
	ChannelID   int64
	ChannelName string
	BotUsername string
	Communities []Community
}
