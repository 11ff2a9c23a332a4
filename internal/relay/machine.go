package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/menfes/core/logger"
	"github.com/m3rciful/menfes/core/metrics"
)

// Machine drives the per-user conversation: language, membership, message, preview, publish.
type Machine struct {
	store    Store
	disp     Dispatcher
	oracle   Oracle
	settings Settings
	maxText  int
	locks    *userLocks
}

// NewMachine wires the conversation machine. Duplicate community ids are dropped.
func NewMachine(store Store, disp Dispatcher, oracle Oracle, settings Settings) *Machine {
	seen := make(map[string]struct{}, len(settings.Communities))
	communities := make([]Community, 0, len(settings.Communities))
	for _, c := range settings.Communities {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		communities = append(communities, c)
	}
	settings.Communities = communities

	return &Machine{
		store:    store,
		disp:     disp,
		oracle:   oracle,
		settings: settings,
		maxText:  maxSubmission(settings),
		locks:    newUserLocks(),
	}
}

// Handle applies one event to the sender's conversation. Only store failures are
// returned; delivery failures are logged and answered with a notice.
func (m *Machine) Handle(ctx context.Context, ev Event) error {
	metrics.IncRelayEvent(ev.kind())

	if p, ok := ev.(Press); ok && p.CallbackID != "" {
		if err := m.disp.Acknowledge(ctx, p.CallbackID); err != nil {
			logger.Debug(ctx, logger.CompRelay, "callback.ack",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		}
	}

	unlock := m.locks.Lock(ev.Sender())
	defer unlock()

	cur, err := m.store.Get(ctx, ev.Sender())
	switch {
	case errors.Is(err, ErrUnknownState), errors.Is(err, ErrCorruptState):
		// Unreadable records are treated as Absent; the next transition overwrites them.
		logger.Warn(ctx, logger.CompRelay, "state.unreadable",
			slog.String("event", ev.kind()),
			slog.String("err", err.Error()),
		)
		cur = Absent{}
	case err != nil:
		return fmt.Errorf("relay: get state: %w", err)
	}

	switch e := ev.(type) {
	case Start:
		return m.onStart(ctx, cur, e)
	case Text:
		return m.onText(ctx, cur, e)
	case Press:
		return m.onPress(ctx, cur, e)
	default:
		return fmt.Errorf("relay: unsupported event %T", ev)
	}
}

func (m *Machine) onStart(ctx context.Context, cur State, e Start) error {
	if err := m.move(ctx, e.UserID, cur, ChoosingLanguage{}); err != nil {
		return err
	}
	m.send(ctx, e.ChatID, welcomeText(e.FirstName), languageKeyboard())
	return nil
}

func (m *Machine) onText(ctx context.Context, cur State, e Text) error {
	switch cur.(type) {
	case AwaitingMessage:
		text := strings.TrimSpace(e.Text)
		if text == "" {
			m.send(ctx, e.ChatID, textEmpty, nil)
			return nil
		}
		if n := textLen(text); n > m.maxText {
			logger.Info(ctx, logger.CompRelay, "message.too_long",
				slog.Int("text_len", n),
				slog.Int("limit", m.maxText),
			)
			m.send(ctx, e.ChatID, tooLongText(m.maxText, n), nil)
			return nil
		}
		if err := m.move(ctx, e.UserID, cur, PreviewingMessage{Text: text}); err != nil {
			return err
		}
		logger.Info(ctx, logger.CompRelay, "message.received",
			slog.Int("text_len", len([]rune(text))),
		)
		m.send(ctx, e.ChatID, previewText(text, m.settings.ChannelName), previewKeyboard())
		return nil
	case Absent:
		m.send(ctx, e.ChatID, textStartHint, nil)
		return nil
	case ChoosingLanguage, Verifying, PreviewingMessage:
		m.send(ctx, e.ChatID, textUnknownCommand, nil)
		return nil
	default:
		return fmt.Errorf("relay: text in %T: %w", cur, ErrUnknownState)
	}
}

func (m *Machine) onPress(ctx context.Context, cur State, e Press) error {
	switch st := cur.(type) {
	case Absent, AwaitingMessage:
		return m.stale(ctx, cur, e)
	case ChoosingLanguage:
		code, ok := e.language()
		if !ok {
			return m.stale(ctx, cur, e)
		}
		return m.chooseLanguage(ctx, cur, e, code)
	case Verifying:
		if e.Data != DataCheckJoin {
			return m.stale(ctx, cur, e)
		}
		return m.checkJoin(ctx, st, e)
	case PreviewingMessage:
		switch e.Data {
		case DataSendNow:
			return m.publish(ctx, st, e)
		case DataEditMessage:
			if err := m.move(ctx, e.UserID, cur, AwaitingMessage{}); err != nil {
				return err
			}
			m.send(ctx, e.ChatID, textResend, nil)
			return nil
		}
		return m.stale(ctx, cur, e)
	default:
		return fmt.Errorf("relay: press in %T: %w", cur, ErrUnknownState)
	}
}

func (m *Machine) chooseLanguage(ctx context.Context, cur State, e Press, code string) error {
	if err := m.move(ctx, e.UserID, cur, Verifying{Language: code}); err != nil {
		return err
	}
	if e.MessageID != 0 {
		if err := m.disp.Edit(ctx, e.ChatID, e.MessageID, textChecking); err != nil {
			logger.Warn(ctx, logger.CompRelay, "prompt.edit",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		}
	}
	m.send(ctx, e.ChatID, textJoinPrompt, joinKeyboard(m.settings.Communities))
	return nil
}

func (m *Machine) checkJoin(ctx context.Context, cur Verifying, e Press) error {
	notJoined := m.missingCommunities(ctx, e.UserID)
	if len(notJoined) > 0 {
		logger.Info(ctx, logger.CompRelay, "membership.missing",
			slog.Int("count", len(notJoined)),
			slog.String("communities", strings.Join(notJoined, ",")),
		)
		m.send(ctx, e.ChatID, missingText(notJoined), joinKeyboard(m.settings.Communities))
		return nil
	}
	if err := m.move(ctx, e.UserID, cur, AwaitingMessage{}); err != nil {
		return err
	}
	m.send(ctx, e.ChatID, textVerified, nil)
	return nil
}

func (m *Machine) publish(ctx context.Context, cur PreviewingMessage, e Press) error {
	err := m.disp.Send(ctx, m.settings.ChannelID, ChannelText(cur.Text, m.settings.BotUsername), nil)
	if err != nil {
		metrics.IncPublish("fail")
		logger.Error(ctx, logger.CompRelay, "channel.publish",
			slog.String("status", "fail"),
			slog.Int64("channel_id", m.settings.ChannelID),
			slog.String("err", err.Error()),
		)
		m.send(ctx, e.ChatID, textPublishFailed, nil)
		return nil
	}
	metrics.IncPublish("ok")
	logger.Info(ctx, logger.CompRelay, "channel.publish",
		slog.String("status", "ok"),
		slog.Int64("channel_id", m.settings.ChannelID),
	)
	if err := m.move(ctx, e.UserID, cur, Absent{}); err != nil {
		return err
	}
	m.send(ctx, e.ChatID, sentText(m.settings.ChannelName), nil)
	return nil
}

// stale answers buttons that do not belong to the current state. State is unchanged.
func (m *Machine) stale(ctx context.Context, cur State, e Press) error {
	logger.Debug(ctx, logger.CompRelay, "button.stale",
		slog.String("state", cur.Kind()),
		slog.String("payload", logger.SanitizeLimit(e.Data, 64)),
	)
	switch {
	case e.Data == DataSendNow:
		m.send(ctx, e.ChatID, textNothingToSend, nil)
	case cur.Kind() == KindAbsent:
		m.send(ctx, e.ChatID, textStartHint, nil)
	default:
		m.send(ctx, e.ChatID, textUnknownCommand, nil)
	}
	return nil
}

func (m *Machine) move(ctx context.Context, userID int64, from, to State) error {
	if err := m.store.Set(ctx, userID, to); err != nil {
		return fmt.Errorf("relay: set state %s: %w", to.Kind(), err)
	}
	metrics.IncRelayTransition(from.Kind(), to.Kind())
	logger.Info(ctx, logger.CompRelay, "state.transition",
		slog.String("from", from.Kind()),
		slog.String("to", to.Kind()),
	)
	return nil
}

// send delivers text best-effort; on failure it tries the generic error notice once.
func (m *Machine) send(ctx context.Context, chatID int64, text string, kb Keyboard) {
	err := m.disp.Send(ctx, chatID, text, kb)
	if err == nil {
		return
	}
	logger.Warn(ctx, logger.CompRelay, "reply.send",
		slog.String("status", "fail"),
		slog.String("err", err.Error()),
	)
	if text == textGenericError {
		return
	}
	if err := m.disp.Send(ctx, chatID, textGenericError, nil); err != nil {
		logger.Warn(ctx, logger.CompRelay, "reply.notice",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
}
