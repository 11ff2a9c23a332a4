package middleware

import (
	"errors"
	"testing"
	"time"

	"github.com/m3rciful/menfes/core/logger"
	tghelpers "github.com/m3rciful/menfes/core/telegram/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"
)

func textContext(t *testing.T, id int) tele.Context {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)
	return b.NewContext(tele.Update{ID: id, Message: &tele.Message{
		Sender: &tele.User{ID: 5, Username: "anon"},
		Chat:   &tele.Chat{ID: 5, Type: tele.ChatPrivate},
		Text:   "rahasia",
	}})
}

func chain(h tele.HandlerFunc, mws ...tele.MiddlewareFunc) tele.HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func TestRecoverConvertsPanic(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	err := h(textContext(t, 2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestLoggerStoresContext(t *testing.T) {
	c := textContext(t, 3)
	h := LoggerMiddleware(func(c tele.Context) error {
		ctx, ok := tghelpers.ContextFrom(c)
		require.True(t, ok)
		assert.Equal(t, logger.BuildRID(3, 5, 5), logger.RIDFrom(ctx))
		assert.Equal(t, int64(5), logger.UserIDFrom(ctx))
		return nil
	})
	require.NoError(t, h(c))
}

func TestChainCapturesErrors(t *testing.T) {
	want := errors.New("store down")
	c := textContext(t, 4)
	h := chain(func(tele.Context) error { return want },
		CaptureError, RecoverMiddleware, LoggerMiddleware, MetricsMiddleware)
	assert.ErrorIs(t, h(c), want)
	assert.ErrorIs(t, tghelpers.ErrorFrom(c), want)

	c = textContext(t, 5)
	h = chain(func(tele.Context) error { panic("nil map") },
		CaptureError, RecoverMiddleware, LoggerMiddleware, MetricsMiddleware)
	assert.Error(t, h(c))
	assert.Error(t, tghelpers.ErrorFrom(c))

	c = textContext(t, 6)
	h = chain(func(tele.Context) error { return nil }, CaptureError, RecoverMiddleware)
	assert.NoError(t, h(c))
	assert.NoError(t, tghelpers.ErrorFrom(c))
}

func TestRecentUpdatesExpire(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	r := newRecentUpdates(time.Minute, 100)
	r.now = func() time.Time { return now }

	assert.False(t, r.seen(1))
	assert.True(t, r.seen(1))

	now = now.Add(2 * time.Minute)
	assert.False(t, r.seen(2))
	assert.False(t, r.seen(1))
	assert.Len(t, r.order, 2)
}

func TestRecentUpdatesBounded(t *testing.T) {
	r := newRecentUpdates(time.Hour, 3)
	for id := 1; id <= 5; id++ {
		assert.False(t, r.seen(id))
	}
	assert.Len(t, r.order, 3)
	assert.Len(t, r.index, 3)
	assert.True(t, r.seen(5))
	assert.False(t, r.seen(1))
}
