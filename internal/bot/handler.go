// Package bot adapts Telegram updates and the Bot API to the relay machine.
package bot

import (
	"log/slog"

	"github.com/m3rciful/menfes/core/logger"
	coretelegram "github.com/m3rciful/menfes/core/telegram"
	tghelpers "github.com/m3rciful/menfes/core/telegram/helpers"
	"github.com/m3rciful/menfes/internal/relay"

	tele "gopkg.in/telebot.v4"
)

// Handler feeds telebot updates to a relay machine.
type Handler struct {
	machine *relay.Machine
}

// NewHandler wires the Telegram adapters around a relay machine over store.
func NewHandler(api API, store relay.Store, settings relay.Settings) *Handler {
	return &Handler{
		machine: relay.NewMachine(store, NewDispatcher(api), NewOracle(api), settings),
	}
}

// OnStart handles the /start command.
func (h *Handler) OnStart(c tele.Context) error { return h.dispatch(c, startEvent) }

// OnMessage handles any other private message.
func (h *Handler) OnMessage(c tele.Context) error { return h.dispatch(c, textEvent) }

// OnCallback handles inline button presses.
func (h *Handler) OnCallback(c tele.Context) error { return h.dispatch(c, pressEvent) }

// Routes binds the non-command endpoints.
func (h *Handler) Routes() []coretelegram.Route {
	routes := []coretelegram.Route{{Endpoint: tele.OnCallback, Handler: h.OnCallback}}
	for _, end := range []string{tele.OnText, tele.OnMedia, tele.OnContact, tele.OnLocation, tele.OnVenue, tele.OnDice} {
		routes = append(routes, coretelegram.Route{Endpoint: end, Handler: h.OnMessage})
	}
	return routes
}

func (h *Handler) dispatch(c tele.Context, decode func(tele.Context) (relay.Event, bool)) error {
	ctx := tghelpers.BuildContext(c)
	ev, ok := decode(c)
	if !ok {
		upd := c.Update()
		logger.Debug(ctx, logger.CompRelay, "update.ignored", slog.String("kind", tghelpers.UpdateKind(&upd)))
		return nil
	}
	return h.machine.Handle(ctx, ev)
}
