package relay

import "errors"

// ErrUnknownState is returned when a state value is not one of the known variants.
var ErrUnknownState = errors.New("relay: unknown state")

// ErrCorruptState is returned when a persisted record cannot be decoded.
var ErrCorruptState = errors.New("relay: corrupt state")

// State is the conversation position of one user. The set of variants is closed:
// Absent, ChoosingLanguage, Verifying, AwaitingMessage and PreviewingMessage.
type State interface {
	Kind() string
	isState()
}

// Absent means the user never started or the conversation was reset.
type Absent struct{}

// ChoosingLanguage follows /start until a language button is pressed.
type ChoosingLanguage struct{}

// Verifying holds the chosen language while membership is unconfirmed.
// Language is stored only; no text depends on it.
type Verifying struct {
	Language string
}

// AwaitingMessage accepts the anonymous text.
type AwaitingMessage struct{}

// PreviewingMessage holds the non-empty text awaiting publish or edit.
type PreviewingMessage struct {
	Text string
}

const (
	KindAbsent     = "absent"
	KindChoosing   = "choosing_language"
	KindVerifying  = "verifying"
	KindAwaiting   = "awaiting"
	KindPreviewing = "previewing"
)

func (Absent) Kind() string            { return KindAbsent }
func (ChoosingLanguage) Kind() string  { return KindChoosing }
func (Verifying) Kind() string         { return KindVerifying }
func (AwaitingMessage) Kind() string   { return KindAwaiting }
func (PreviewingMessage) Kind() string { return KindPreviewing }

func (Absent) isState()            {}
func (ChoosingLanguage) isState()  {}
func (Verifying) isState()         {}
func (AwaitingMessage) isState()   {}
func (PreviewingMessage) isState() {}
