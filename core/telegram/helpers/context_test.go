package helpers

import (
	"context"
	"errors"
	"testing"

	"github.com/m3rciful/menfes/core/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"
)

func newContext(t *testing.T, upd tele.Update) tele.Context {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)
	return b.NewContext(upd)
}

func TestUpdateKind(t *testing.T) {
	user := &tele.User{ID: 7}
	chat := &tele.Chat{ID: 70, Type: tele.ChatPrivate}

	assert.Equal(t, "message", UpdateKind(&tele.Update{Message: &tele.Message{Sender: user, Chat: chat, Text: "hi"}}))
	assert.Equal(t, "media", UpdateKind(&tele.Update{Message: &tele.Message{Sender: user, Chat: chat, Photo: &tele.Photo{}}}))
	assert.Equal(t, "callback", UpdateKind(&tele.Update{Callback: &tele.Callback{Sender: user}}))
	assert.Equal(t, "edited_message", UpdateKind(&tele.Update{EditedMessage: &tele.Message{Chat: chat}}))
	assert.Equal(t, "other", UpdateKind(&tele.Update{ID: 5}))
	assert.Equal(t, "none", UpdateKind(nil))
}

func TestBuildContext(t *testing.T) {
	c := newContext(t, tele.Update{ID: 42, Message: &tele.Message{
		Sender: &tele.User{ID: 7},
		Chat:   &tele.Chat{ID: 70},
		Text:   "hi",
	}})

	ctx := BuildContext(c)
	require.Equal(t, logger.BuildRID(42, 70, 7), logger.RIDFrom(ctx))
	assert.Equal(t, 42, logger.UpdateIDFrom(ctx))
	assert.Equal(t, int64(7), logger.UserIDFrom(ctx))
	assert.Equal(t, int64(70), logger.ChatIDFrom(ctx))

	stored, ok := ContextFrom(c)
	require.True(t, ok)
	assert.Equal(t, ctx, stored)
	assert.Equal(t, ctx, BuildContext(c))
}

type ctxKey struct{}

func TestBuildContextKeepsStoredParent(t *testing.T) {
	c := newContext(t, tele.Update{ID: 3, Callback: &tele.Callback{
		Sender:  &tele.User{ID: 7},
		Message: &tele.Message{Chat: &tele.Chat{ID: 70}},
	}})
	parent := context.WithValue(context.Background(), ctxKey{}, "request")
	StoreContext(c, parent)

	ctx := BuildContext(c)
	assert.Equal(t, "request", ctx.Value(ctxKey{}))
	assert.Equal(t, logger.BuildRID(3, 70, 7), logger.RIDFrom(ctx))
}

func TestStoreError(t *testing.T) {
	c := newContext(t, tele.Update{ID: 1})
	assert.NoError(t, ErrorFrom(c))

	want := errors.New("store down")
	StoreError(c, want)
	StoreError(c, nil)
	assert.ErrorIs(t, ErrorFrom(c), want)
	assert.NoError(t, ErrorFrom(nil))
}
