// Package app assembles the menfes relay from configuration and infrastructure.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/m3rciful/menfes/core/bootstrap"
	coreconfig "github.com/m3rciful/menfes/core/config"
	coretelegram "github.com/m3rciful/menfes/core/telegram"
	"github.com/m3rciful/menfes/core/telegram/commands"
	"github.com/m3rciful/menfes/core/telegram/state"
	"github.com/m3rciful/menfes/internal/bot"
	"github.com/m3rciful/menfes/internal/relay"

	tele "gopkg.in/telebot.v4"
)

// Registry returns the relay's slash commands bound to h.
func Registry(h *bot.Handler) *coretelegram.Registry {
	reg := coretelegram.NewRegistry()
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.OnStart,
		Description: "Kirim pesan anonim / Send an anonymous message",
	})
	return reg
}

// Settings maps the relay configuration onto machine settings.
func Settings(cfg coreconfig.RelayConfig) relay.Settings {
	communities := make([]relay.Community, 0, len(cfg.Communities))
	for _, c := range cfg.Communities {
		communities = append(communities, relay.Community{ID: c.ID, Title: c.Title, URL: c.URL})
	}
	return relay.Settings{
		ChannelID:   cfg.ChannelID,
		ChannelName: cfg.ChannelName,
		BotUsername: cfg.BotUsername,
		Communities: communities,
	}
}

// Build produces the Telegram run options for the relay over the
// bootstrapped state backend.
func Build(cfg *coreconfig.Config, res *bootstrap.Result) (coretelegram.RunOptions, error) {
	if cfg == nil || res == nil || res.Backend == nil {
		return coretelegram.RunOptions{}, fmt.Errorf("app: config and state backend are required")
	}
	store := relay.NewStore(res.Backend, cfg.Store.TTL)
	settings := Settings(cfg.Relay)

	return coretelegram.RunOptions{
		Config:      cfg,
		Middlewares: coretelegram.DefaultMiddlewares(),
		Routes: func(b *tele.Bot) (*coretelegram.Registry, []coretelegram.Route) {
			s := settings
			if s.BotUsername == "" && b.Me != nil {
				s.BotUsername = strings.TrimPrefix(b.Me.Username, "@")
			}
			h := bot.NewHandler(b, store, s)
			return Registry(h), h.Routes()
		},
		OnStart: func(ctx context.Context, _ coretelegram.Runtime) error {
			go state.RunJanitor(ctx, res.Backend, cfg.Store.SweepInterval)
			return nil
		},
	}, nil
}
