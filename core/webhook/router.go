// Package webhook serves the HTTP surface of the bot: health, Telegram update
// delivery, bot info and metrics.
package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/m3rciful/menfes/core/logger"
	"github.com/m3rciful/menfes/core/metrics"

	tele "gopkg.in/telebot.v4"
)

const (
	healthStatus  = "Menfes API Aktif"
	maxUpdateSize = 1 << 20

	// inactiveDetail is reported when the bot could not be initialized.
	inactiveDetail = "Bot not initialized"
)

// BotInfo is the identity reported by getMe.
type BotInfo struct {
	ID        int64
	Username  string
	FirstName string
}

// UpdateFunc handles one decoded Telegram update. A non-nil error is answered
// with 500 so Telegram redelivers the update.
type UpdateFunc func(ctx context.Context, upd *tele.Update) error

// Options wires the router to the bot. A nil Updates marks the bot inactive.
type Options struct {
	Updates UpdateFunc
	Info    func(ctx context.Context) (BotInfo, error)
}

// NewRouter builds the chi router serving the webhook endpoints.
func NewRouter(opts Options) http.Handler {
	h := &handlers{opts: opts}

	r := chi.NewRouter()
	r.Use(requestID, instrument, chimw.Recoverer)

	r.Get("/", h.health)
	r.Post("/", h.update)
	r.Get("/bot/info", h.botInfo)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}

type handlers struct {
	opts Options
}

func (h *handlers) active() bool { return h.opts.Updates != nil }

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	status := "inactive"
	if h.active() {
		status = "active"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": healthStatus, "bot_status": status})
}

func (h *handlers) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.active() {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": inactiveDetail})
		return
	}

	var upd tele.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateSize)).Decode(&upd); err != nil {
		logger.Warn(ctx, logger.CompHTTP, "webhook.decode", slog.String("err", err.Error()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"detail": fmt.Sprintf("Error processing webhook: %s", err),
		})
		return
	}
	if err := h.opts.Updates(ctx, &upd); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"detail": fmt.Sprintf("Error processing webhook: %s", err),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *handlers) botInfo(w http.ResponseWriter, r *http.Request) {
	if !h.active() || h.opts.Info == nil {
		writeJSON(w, http.StatusOK, map[string]string{"error": inactiveDetail})
		return
	}
	info, err := h.opts.Info(r.Context())
	if err != nil {
		logger.Warn(r.Context(), logger.CompHTTP, "bot.info", slog.String("err", err.Error()))
		writeJSON(w, http.StatusOK, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"bot_id":         info.ID,
		"bot_username":   info.Username,
		"bot_first_name": info.FirstName,
		"status":         "active",
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// requestID tags each request with an X-Request-Id and a scoped logger.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		ctx := logger.WithLogger(r.Context(), logger.Component(logger.CompHTTP).With("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// instrument logs and counts every request by matched route and status code.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		metrics.IncWebhookRequest(route, strconv.Itoa(code))
		logger.LogEvent(r.Context(), nil, slog.LevelDebug, "http.request",
			slog.String("method", r.Method),
			slog.String("route", route),
			slog.Int("code", code),
			slog.Duration("duration", logger.Took(start)),
		)
	})
}
