package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	coreconfig "github.com/m3rciful/menfes/core/config"
	"github.com/m3rciful/menfes/core/logger"
	tghelpers "github.com/m3rciful/menfes/core/telegram/helpers"
	"github.com/m3rciful/menfes/core/telegram/middleware"
	"github.com/m3rciful/menfes/core/telegram/sender"
	"github.com/m3rciful/menfes/core/webhook"

	tele "gopkg.in/telebot.v4"
)

// Middleware describes a global bot middleware to be registered via bot.Use.
type Middleware struct {
	Name string
	Use  tele.MiddlewareFunc
}

// Route declares a single bot handler bound to an arbitrary endpoint.
// Endpoint values are passed directly to tele.Bot.Handle.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls the behaviour of RunTelegram.
type RunOptions struct {
	Config      *coreconfig.Config
	Middlewares []Middleware

	// Routes builds the command registry and the remaining routes once the
	// bot exists. Command routes are taken from the registry.
	Routes func(bot *tele.Bot) (*Registry, []Route)

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime exposes runtime components to lifecycle hooks. Bot is nil when the
// bot could not be initialized in webhook mode.
type Runtime struct {
	Bot      *tele.Bot
	Registry *Registry
}

// NewBot creates a synchronous telebot client for cfg: every update is handled
// on the goroutine that delivers it. Sends default to HTML parse mode.
func NewBot(cfg *coreconfig.Config, poller tele.Poller) (*tele.Bot, error) {
	pollTimeout := time.Duration(0)
	if lp, ok := poller.(*tele.LongPoller); ok {
		pollTimeout = lp.Timeout
	}
	settings := tele.Settings{
		Token:       cfg.Telegram.Token,
		URL:         cfg.Telegram.APIURL,
		Poller:      poller,
		Client:      BuildHTTPClient(pollTimeout),
		ParseMode:   tele.ModeHTML,
		Synchronous: true,
		OnError: func(err error, c tele.Context) {
			if c != nil {
				// Handler errors are already reported by the middleware chain.
				return
			}
			logger.Warn(context.Background(), logger.CompTelegram, "tg.error",
				slog.String("err", sender.SanitizeError(err)),
			)
		},
	}
	bot, err := tele.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %s", sender.SanitizeError(err))
	}
	return bot, nil
}

// Mount registers mws and then every route on bot. CaptureError always
// wraps the chain so UpdateProcessor can report handler failures.
func Mount(bot *tele.Bot, mws []Middleware, reg *Registry, routes []Route) {
	bot.Use(middleware.CaptureError)
	for _, mw := range mws {
		if mw.Use == nil {
			continue
		}
		bot.Use(mw.Use)
	}

	all := append(reg.CommandRoutes(), routes...)
	mounted := 0
	for _, route := range all {
		if route.Endpoint == nil || route.Handler == nil {
			continue
		}
		bot.Handle(route.Endpoint, route.Handler)
		mounted++
	}
	logger.Debug(context.Background(), logger.CompTelegram, "tg.wire",
		slog.Int("middlewares", len(mws)),
		slog.Int("routes", mounted),
	)
}

// UpdateProcessor feeds webhook updates through telebot's dispatcher on the
// caller's goroutine and returns the handler error. bot must be synchronous.
func UpdateProcessor(bot *tele.Bot) webhook.UpdateFunc {
	return func(ctx context.Context, upd *tele.Update) error {
		c := bot.NewContext(*upd)
		tghelpers.StoreContext(c, ctx)
		bot.ProcessContext(c)
		return tghelpers.ErrorFrom(c)
	}
}

// BotInfo asks the Bot API who the bot is.
func BotInfo(bot *tele.Bot) func(ctx context.Context) (webhook.BotInfo, error) {
	return func(ctx context.Context) (webhook.BotInfo, error) {
		var raw []byte
		err := sender.Call(ctx, "getMe", func() error {
			var err error
			raw, err = bot.Raw("getMe", nil)
			return err
		})
		if err != nil {
			return webhook.BotInfo{}, errors.New(sender.SanitizeError(err))
		}
		var resp struct {
			Result tele.User `json:"result"`
		}
		if err := json.Unmarshal(raw, &resp); err != nil {
			return webhook.BotInfo{}, fmt.Errorf("telegram: decode getMe: %w", err)
		}
		return webhook.BotInfo{
			ID:        resp.Result.ID,
			Username:  resp.Result.Username,
			FirstName: resp.Result.FirstName,
		}, nil
	}
}

// RunTelegram composes and runs a Telegram bot until the provided context is done.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Config == nil {
		return fmt.Errorf("telegram: nil config provided")
	}
	if opts.Routes == nil {
		return fmt.Errorf("telegram: nil routes")
	}

	switch opts.Config.Telegram.RunMode {
	case coreconfig.RunModeLongpoll:
		return runLongpoll(ctx, opts.Config, opts)
	default:
		return runWebhook(ctx, opts.Config, opts)
	}
}

// setup builds the routes for bot and mounts them.
func setup(bot *tele.Bot, opts RunOptions) Runtime {
	reg, routes := opts.Routes(bot)
	if reg == nil {
		reg = NewRegistry()
	}
	Mount(bot, opts.Middlewares, reg, routes)
	return Runtime{Bot: bot, Registry: reg}
}

func runWebhook(ctx context.Context, cfg *coreconfig.Config, opts RunOptions) error {
	buildStart := time.Now()
	var rt Runtime
	routes := webhook.Options{}

	bot, err := NewBot(cfg, nil)
	if err != nil {
		// The HTTP surface still comes up and reports the bot as inactive.
		logger.Error(ctx, logger.CompTelegram, "bot.init", slog.String("err", err.Error()))
	} else {
		rt = setup(bot, opts)
		routes.Updates = UpdateProcessor(bot)
		routes.Info = BotInfo(bot)
	}

	addr := net.JoinHostPort(cfg.Webhook.Listen, strconv.Itoa(cfg.Webhook.Port))
	logger.Info(ctx, logger.CompTelegram, "mode",
		slog.String("mode", coreconfig.RunModeWebhook),
		slog.String("listen", addr),
		slog.String("public_url", cfg.Webhook.URL),
		slog.Bool("bot_active", bot != nil),
		slog.Duration("duration", logger.Took(buildStart)),
	)

	if bot != nil && cfg.Webhook.URL != "" {
		err := sender.Call(ctx, "setWebhook", func() error {
			return bot.SetWebhook(&tele.Webhook{
				Endpoint:       &tele.WebhookEndpoint{PublicURL: cfg.Webhook.URL},
				AllowedUpdates: AllowedUpdates,
			})
		})
		if err != nil {
			logger.Warn(ctx, logger.CompTelegram, "webhook.set_failed", slog.String("err", sender.SanitizeError(err)))
		}
	}

	return runWithHooks(ctx, rt, opts, func(ctx context.Context) error {
		return webhook.Serve(ctx, addr, webhook.NewRouter(routes))
	})
}

func runLongpoll(ctx context.Context, cfg *coreconfig.Config, opts RunOptions) error {
	buildStart := time.Now()
	poller := BuildPoller(LongPollTimeout(cfg.Telegram.LongPollTimeoutSeconds))
	bot, err := NewBot(cfg, poller)
	if err != nil {
		return err
	}
	logger.Info(ctx, logger.CompTelegram, "mode",
		slog.String("mode", coreconfig.RunModeLongpoll),
		slog.Duration("timeout", poller.Timeout),
		slog.Duration("duration", logger.Took(buildStart)),
	)

	if err := sender.Call(ctx, "deleteWebhook", func() error { return bot.RemoveWebhook(false) }); err != nil {
		logger.Warn(ctx, logger.CompTelegram, "delete_webhook", slog.String("err", sender.SanitizeError(err)))
	}

	rt := setup(bot, opts)
	return runWithHooks(ctx, rt, opts, func(ctx context.Context) error {
		startPolling(ctx, bot)
		return nil
	})
}

// startPolling runs bot.Start until ctx is done. The bot is synchronous, so
// updates are handled one at a time in arrival order.
func startPolling(ctx context.Context, bot *tele.Bot) {
	runDone := make(chan struct{})
	go func() {
		bot.Start()
		close(runDone)
	}()

	select {
	case <-ctx.Done():
		bot.Stop()
		<-runDone
	case <-runDone:
	}
}

func runWithHooks(ctx context.Context, rt Runtime, opts RunOptions, run func(ctx context.Context) error) error {
	if rt.Bot != nil {
		InitBotCommands(ctx, rt.Bot, rt.Registry)
	}
	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			return err
		}
	}

	runErr := run(ctx)

	var stopErr error
	if opts.OnStop != nil {
		stopErr = opts.OnStop(context.WithoutCancel(ctx), rt)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return stopErr
}
