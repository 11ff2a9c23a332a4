package relay

import (
	"encoding/json"
	"fmt"
	"strings"
)

type stateRecord struct {
	Kind     string `json:"kind"`
	Language string `json:"language,omitempty"`
	Text     string `json:"text,omitempty"`
}

// EncodeState renders s as the persisted JSON record.
func EncodeState(s State) ([]byte, error) {
	var rec stateRecord
	switch v := s.(type) {
	case Absent, ChoosingLanguage, AwaitingMessage:
		rec.Kind = v.Kind()
	case Verifying:
		rec = stateRecord{Kind: KindVerifying, Language: v.Language}
	case PreviewingMessage:
		if strings.TrimSpace(v.Text) == "" {
			return nil, fmt.Errorf("encode state: empty preview text")
		}
		rec = stateRecord{Kind: KindPreviewing, Text: v.Text}
	default:
		return nil, fmt.Errorf("encode state %T: %w", s, ErrUnknownState)
	}
	return json.Marshal(rec)
}

// DecodeState parses a persisted record. Unknown kinds wrap ErrUnknownState,
// malformed records wrap ErrCorruptState.
func DecodeState(data []byte) (State, error) {
	var rec stateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode state: %w: %w", ErrCorruptState, err)
	}
	switch rec.Kind {
	case KindAbsent:
		return Absent{}, nil
	case KindChoosing:
		return ChoosingLanguage{}, nil
	case KindVerifying:
		return Verifying{Language: rec.Language}, nil
	case KindAwaiting:
		return AwaitingMessage{}, nil
	case KindPreviewing:
		if strings.TrimSpace(rec.Text) == "" {
			return nil, fmt.Errorf("decode state: empty preview text: %w", ErrCorruptState)
		}
		return PreviewingMessage{Text: rec.Text}, nil
	default:
		return nil, fmt.Errorf("decode state kind %q: %w", rec.Kind, ErrUnknownState)
	}
}
