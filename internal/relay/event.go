package relay

import "strings"

// Callback payloads carried by inline buttons.
const (
	DataLanguagePrefix = "lang_"
	DataLanguageID     = DataLanguagePrefix + "id"
	DataLanguageEN     = DataLanguagePrefix + "en"
	DataCheckJoin      = "check_join"
	DataEditMessage    = "edit_msg"
	DataSendNow        = "send_now"
)

// Event is a decoded inbound occurrence routed to the Machine.
type Event interface {
	// Sender is the user whose conversation the event belongs to.
	Sender() int64
	// Chat is where replies go.
	Chat() int64
	kind() string
}

// Start is the /start command.
type Start struct {
	UserID    int64
	ChatID    int64
	FirstName string
}

// Text is any other message. Non-text messages arrive with an empty Text.
type Text struct {
	UserID int64
	ChatID int64
	Text   string
}

// Press is an inline button press.
type Press struct {
	UserID     int64
	ChatID     int64
	MessageID  int
	CallbackID string
	Data       string
}

func (e Start) Sender() int64 { return e.UserID }
func (e Text) Sender() int64  { return e.UserID }
func (e Press) Sender() int64 { return e.UserID }

func (e Start) Chat() int64 { return e.ChatID }
func (e Text) Chat() int64  { return e.ChatID }
func (e Press) Chat() int64 { return e.ChatID }

func (Start) kind() string { return "start" }
func (Text) kind() string  { return "text" }
func (Press) kind() string { return "button" }

// language returns the code of a lang_<code> payload.
func (e Press) language() (string, bool) {
	code, ok := strings.CutPrefix(e.Data, DataLanguagePrefix)
	if !ok {
		return "", false
	}
	switch code {
	case "id", "en":
		return code, true
	}
	return "", false
}
